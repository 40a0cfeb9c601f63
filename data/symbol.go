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

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Symbol maps an exchange ticker to the company's CIK
type Symbol struct {
	Ticker string
	CIK    string
	Title  string
}

// SaveDB upserts the symbol keyed by ticker. A blank title falls back to the ticker.
func (symbol *Symbol) SaveDB(ctx context.Context, dbConn Querier) error {
	title := strings.TrimSpace(symbol.Title)
	if title == "" {
		title = symbol.Ticker
	}

	sql := `INSERT INTO symbols (
		"ticker",
		"cik",
		"title"
	) VALUES (
		$1, $2, $3
	) ON CONFLICT ON CONSTRAINT symbols_pkey DO UPDATE SET
		cik = EXCLUDED.cik,
		title = EXCLUDED.title,
		updated_at = now()`

	if _, err := dbConn.Exec(ctx, sql, symbol.Ticker, symbol.CIK, title); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Object("Symbol", symbol).Msg("save symbol to DB failed")
		return eris.Wrapf(err, "save symbol %s", symbol.Ticker)
	}

	return nil
}

func (symbol *Symbol) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", symbol.Ticker)
	e.Str("CIK", symbol.CIK)
}
