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
	"time"

	"github.com/penny-vault/secfacts/edgar"
	"github.com/shopspring/decimal"
)

// LatestValue returns the most recent parsable value reported for a concept in a unit.
// Values are ranked by fiscal year and then by filing date; a value missing either ranks
// lowest on that key. Ties go to the earlier entry in the document. Form type is not
// considered.
func LatestValue(doc *edgar.CompanyFacts, taxonomy, concept, unit string) (decimal.Decimal, bool) {
	if doc == nil || doc.Facts == nil {
		return decimal.Zero, false
	}

	concepts := doc.Facts[taxonomy]
	if concepts == nil {
		return decimal.Zero, false
	}

	tag := concepts[concept]
	if tag == nil || tag.Units == nil {
		return decimal.Zero, false
	}

	var (
		best      decimal.Decimal
		bestYear  int
		bestFiled time.Time
		found     bool
	)

	for _, value := range tag.Units[unit] {
		if value == nil || value.Val == nil {
			continue
		}

		amount, ok := ParseDecimal(value.Val.String())
		if !ok {
			continue
		}

		year := minYear
		if value.FY != nil {
			year = *value.FY
		}

		var filed time.Time
		if value.Filed != nil {
			filed, _ = ParseFiled(*value.Filed)
		}

		if found && (year < bestYear || (year == bestYear && !filed.After(bestFiled))) {
			continue
		}

		best, bestYear, bestFiled, found = amount, year, filed, true
	}

	return best, found
}

const minYear = -1 << 31
