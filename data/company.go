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
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type Company struct {
	ID               int64
	CIK              string
	Ticker           string
	Name             string
	FactsRefreshedAt time.Time
}

// SaveDB creates the company or refreshes its ticker, name and refresh time, and stores the
// row id on the receiver
func (company *Company) SaveDB(ctx context.Context, dbConn Querier) error {
	sql := `INSERT INTO companies (
		"cik",
		"ticker",
		"name",
		"facts_refreshed_at"
	) VALUES (
		$1, $2, $3, $4
	) ON CONFLICT ON CONSTRAINT companies_cik_key DO UPDATE SET
		ticker = EXCLUDED.ticker,
		name = EXCLUDED.name,
		facts_refreshed_at = EXCLUDED.facts_refreshed_at,
		updated_at = now()
	RETURNING id`

	err := dbConn.QueryRow(ctx, sql,
		company.CIK,
		nullIfBlank(strings.TrimSpace(company.Ticker)),
		nullIfBlank(strings.TrimSpace(company.Name)),
		company.FactsRefreshedAt,
	).Scan(&company.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Object("Company", company).Msg("save company to DB failed")
		return eris.Wrapf(err, "save company %s", company.CIK)
	}

	return nil
}

func (company *Company) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CIK", company.CIK)
	e.Str("Ticker", company.Ticker)
	e.Str("Name", company.Name)
}
