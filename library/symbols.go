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
package library

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/penny-vault/secfacts/data"
	"github.com/penny-vault/secfacts/edgar"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// SaveSymbols upserts the SEC ticker listing into the symbols table in a single transaction
// and returns the number of symbols written. Entries without a ticker or with an out of range
// CIK are skipped.
func (myLibrary *Library) SaveSymbols(ctx context.Context, tickers []*edgar.Ticker) (int, error) {
	logger := zerolog.Ctx(ctx)

	tx, err := myLibrary.Pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "begin symbols transaction")
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			if !errors.Is(err, pgx.ErrTxClosed) {
				logger.Error().Err(err).Msg("error rollingback tx")
			}
		}
	}()

	count := 0
	for _, ticker := range tickers {
		if ticker == nil || strings.TrimSpace(ticker.Ticker) == "" {
			continue
		}

		cik, err := edgar.FormatCIK(ticker.CIK)
		if err != nil {
			logger.Warn().Err(err).Str("Ticker", ticker.Ticker).Msg("skipping ticker with invalid cik")
			continue
		}

		symbol := &data.Symbol{
			Ticker: strings.TrimSpace(ticker.Ticker),
			CIK:    cik,
			Title:  ticker.Title,
		}

		if err := symbol.SaveDB(ctx, tx); err != nil {
			return 0, err
		}

		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "commit symbols transaction")
	}

	logger.Info().Int("NumSymbols", count).Msg("saved sec ticker listing")
	return count, nil
}
