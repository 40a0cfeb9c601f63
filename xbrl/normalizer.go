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

// Package xbrl flattens EDGAR company facts documents into candidate fact rows.
package xbrl

import (
	"iter"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/penny-vault/secfacts/edgar"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CandidateFact is one reported value that passed filtering and parsing
type CandidateFact struct {
	Taxonomy     string
	Concept      string
	Unit         string
	Value        decimal.Decimal
	FiscalYear   int
	FiscalPeriod string
	Form         string
	Filed        *time.Time
	Accession    *string
}

func (fact CandidateFact) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Taxonomy", fact.Taxonomy)
	e.Str("Concept", fact.Concept)
	e.Str("Unit", fact.Unit)
	e.Int("FiscalYear", fact.FiscalYear)
	e.Str("FiscalPeriod", fact.FiscalPeriod)
	e.Str("Form", fact.Form)
}

// Normalizer walks a company facts document. A zero Normalizer recognizes DefaultForms.
type Normalizer struct {
	Forms FormSet
}

func New(forms FormSet) *Normalizer {
	return &Normalizer{Forms: forms}
}

// Normalize is shorthand for a Normalizer with the default form set
func Normalize(doc *edgar.CompanyFacts) iter.Seq[CandidateFact] {
	return (&Normalizer{}).Facts(doc)
}

// Facts returns the filtered candidates of doc. Taxonomies, concepts and units are visited in
// sorted key order; values keep their document order. The sequence holds no state between
// iterations and may be ranged over again.
func (normalizer *Normalizer) Facts(doc *edgar.CompanyFacts) iter.Seq[CandidateFact] {
	forms := normalizer.Forms
	if forms == nil {
		forms = DefaultForms
	}

	return func(yield func(CandidateFact) bool) {
		if doc == nil || doc.Facts == nil {
			return
		}

		for _, taxonomy := range slices.Sorted(maps.Keys(doc.Facts)) {
			concepts := doc.Facts[taxonomy]
			if concepts == nil {
				continue
			}

			for _, conceptName := range slices.Sorted(maps.Keys(concepts)) {
				concept := concepts[conceptName]
				if concept == nil || concept.Units == nil {
					continue
				}

				for _, unit := range slices.Sorted(maps.Keys(concept.Units)) {
					for _, value := range concept.Units[unit] {
						fact, ok := candidate(forms, value)
						if !ok {
							continue
						}

						fact.Taxonomy = taxonomy
						fact.Concept = conceptName
						fact.Unit = unit

						if !yield(fact) {
							return
						}
					}
				}
			}
		}
	}
}

func candidate(forms FormSet, value *edgar.UnitValue) (CandidateFact, bool) {
	if value == nil || value.Val == nil {
		return CandidateFact{}, false
	}

	if value.Form == nil || !forms.Contains(*value.Form) {
		return CandidateFact{}, false
	}

	if value.FY == nil {
		return CandidateFact{}, false
	}

	if value.FP == nil || strings.TrimSpace(*value.FP) == "" {
		return CandidateFact{}, false
	}

	amount, ok := ParseDecimal(value.Val.String())
	if !ok {
		return CandidateFact{}, false
	}

	if !Storable(amount) {
		log.Debug().Str("Value", value.Val.String()).Str("Form", *value.Form).Int("FiscalYear", *value.FY).
			Msg("dropping value outside of the stored precision")
		return CandidateFact{}, false
	}

	fact := CandidateFact{
		Value:        amount,
		FiscalYear:   *value.FY,
		FiscalPeriod: *value.FP,
		Form:         *value.Form,
	}

	if value.Filed != nil {
		if filed, ok := ParseFiled(*value.Filed); ok {
			fact.Filed = &filed
		}
	}

	if value.Accn != nil && strings.TrimSpace(*value.Accn) != "" {
		accn := strings.TrimSpace(*value.Accn)
		fact.Accession = &accn
	}

	return fact, true
}
