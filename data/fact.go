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
package data

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Fact is one stored value. Its identity is company, concept, unit, fiscal year, fiscal
// period and form type.
type Fact struct {
	CompanyID    int64
	ConceptID    int64
	UnitID       int64
	FiscalYear   int
	FiscalPeriod string
	FormType     string
	Value        decimal.Decimal
	FiledDate    *time.Time
	Accession    *string
}

// SaveDB upserts the fact by its identity and reports whether a new row was inserted. An
// existing row has its value, filed date and accession replaced.
func (fact *Fact) SaveDB(ctx context.Context, dbConn Querier) (bool, error) {
	sql := `INSERT INTO facts (
		"company_id",
		"concept_id",
		"unit_id",
		"fiscal_year",
		"fiscal_period",
		"form_type",
		"value",
		"filed_date",
		"accession"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9
	) ON CONFLICT ON CONSTRAINT facts_identity_key DO UPDATE SET
		value = EXCLUDED.value,
		filed_date = EXCLUDED.filed_date,
		accession = EXCLUDED.accession,
		updated_at = now()
	RETURNING (xmax = 0) AS inserted`

	var inserted bool
	err := dbConn.QueryRow(ctx, sql,
		fact.CompanyID,
		fact.ConceptID,
		fact.UnitID,
		fact.FiscalYear,
		fact.FiscalPeriod,
		fact.FormType,
		fact.Value,
		fact.FiledDate,
		fact.Accession,
	).Scan(&inserted)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Object("Fact", fact).Msg("save fact to DB failed")
		return false, eris.Wrap(err, "save fact")
	}

	return inserted, nil
}

func (fact *Fact) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("CompanyID", fact.CompanyID)
	e.Int64("ConceptID", fact.ConceptID)
	e.Int64("UnitID", fact.UnitID)
	e.Int("FiscalYear", fact.FiscalYear)
	e.Str("FiscalPeriod", fact.FiscalPeriod)
	e.Str("FormType", fact.FormType)
	e.Str("Value", fact.Value.String())
}
