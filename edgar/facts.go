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
package edgar

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// CompanyFacts is the document served by the companyfacts endpoint. Every nested level may be
// missing in the source data: a taxonomy may map to null, a concept may have no units, and a
// unit may carry an empty list.
type CompanyFacts struct {
	CIK        CIK                            `json:"cik"`
	EntityName string                         `json:"entityName"`
	Facts      map[string]map[string]*Concept `json:"facts"`
}

// Concept holds every reported value for a single XBRL tag, keyed by unit code
type Concept struct {
	Label       *string                 `json:"label"`
	Description *string                 `json:"description"`
	Units       map[string][]*UnitValue `json:"units"`
}

// UnitValue is one reported value. All fields are optional on the wire.
type UnitValue struct {
	Start *string    `json:"start"`
	End   *string    `json:"end"`
	Val   *RawNumber `json:"val"`
	Accn  *string    `json:"accn"`
	FY    *int       `json:"fy"`
	FP    *string    `json:"fp"`
	Form  *string    `json:"form"`
	Filed *string    `json:"filed"`
	Frame *string    `json:"frame"`
}

// RawNumber keeps the literal text of a value so that it can be parsed as an exact decimal
// instead of passing through float64. Both JSON numbers and JSON strings are accepted.
type RawNumber string

func (n *RawNumber) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = RawNumber(s)
		return nil
	}

	if raw == "null" {
		*n = ""
		return nil
	}

	*n = RawNumber(raw)
	return nil
}

func (n RawNumber) String() string {
	return string(n)
}

// DecodeCompanyFacts parses a companyfacts response body. Any failure is reported as ErrDecode.
func DecodeCompanyFacts(body []byte) (*CompanyFacts, error) {
	var doc CompanyFacts
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, eris.Wrapf(ErrDecode, "company facts: %v", err)
	}
	return &doc, nil
}
