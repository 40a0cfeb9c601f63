// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package xbrl

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Facts are stored as NUMERIC(38,6): 32 integer digits and 6 fractional digits
const storedScale = 6

var maxStoredValue = decimal.New(1, 32)

var filedLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// groupedNumber matches values that use ',' to group thousands. Groups are only allowed in the
// integer part and must hold exactly three digits.
var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?([eE][+-]?\d+)?$`)

// ParseDecimal parses a reported value using invariant formatting: '.' is the decimal point,
// ',' may group thousands, and a sign or exponent is allowed.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		if !groupedNumber.MatchString(s) {
			return decimal.Zero, false
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// Storable reports whether d fits the fact value column without rounding
func Storable(d decimal.Decimal) bool {
	return d.Abs().LessThan(maxStoredValue) && d.Equal(d.Round(storedScale))
}

// ParseFiled parses a filing date. Dates without a zone are read as UTC.
func ParseFiled(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range filedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
