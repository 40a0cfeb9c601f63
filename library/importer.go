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
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/penny-vault/secfacts/data"
	"github.com/penny-vault/secfacts/edgar"
	"github.com/penny-vault/secfacts/xbrl"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// TxBeginner starts the per-company transaction
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CompanyRef identifies the company a document belongs to
type CompanyRef struct {
	CIK    string
	Ticker string
	Name   string
}

type ImportResult struct {
	CompanyID int64
	NumFacts  int
	Inserted  int
	Updated   int
}

func (result *ImportResult) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("CompanyID", result.CompanyID)
	e.Int("NumFacts", result.NumFacts)
	e.Int("Inserted", result.Inserted)
	e.Int("Updated", result.Updated)
}

// Importer writes one company's facts at a time. It is safe for concurrent use; concurrent
// imports share the resolver's reference caches.
type Importer struct {
	db       TxBeginner
	resolver *Resolver
	now      func() time.Time
}

func NewImporter(db TxBeginner, resolver *Resolver) *Importer {
	return &Importer{
		db:       db,
		resolver: resolver,
		now:      time.Now,
	}
}

// ImportFacts upserts the company and every candidate fact in a single transaction. Either all
// rows are written or none are. Importing the same facts twice leaves the table unchanged
// apart from updated_at.
func (importer *Importer) ImportFacts(ctx context.Context, company CompanyRef, facts iter.Seq[xbrl.CandidateFact]) (result *ImportResult, err error) {
	cik, err := edgar.NormalizeCIK(company.CIK)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("CIK", cik).Logger()

	tx, err := importer.db.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "begin import transaction")
	}

	defer func() {
		if err == nil {
			return
		}

		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error().Err(rbErr).Msg("error rollingback tx")
		}
	}()

	row := &data.Company{
		CIK:              cik,
		Ticker:           company.Ticker,
		Name:             company.Name,
		FactsRefreshedAt: importer.now(),
	}

	if err = row.SaveDB(ctx, tx); err != nil {
		return nil, err
	}

	result = &ImportResult{
		CompanyID: row.ID,
	}

	for candidate := range facts {
		if err = ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "import cancelled")
		}

		var fact *data.Fact
		fact, err = importer.toFact(ctx, row.ID, candidate)
		if err != nil {
			return nil, err
		}

		var inserted bool
		inserted, err = fact.SaveDB(ctx, tx)
		if err != nil {
			return nil, err
		}

		result.NumFacts++
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "commit import transaction")
	}

	logger.Info().Object("Result", result).Msg("imported company facts")

	return result, nil
}

func (importer *Importer) toFact(ctx context.Context, companyID int64, candidate xbrl.CandidateFact) (*data.Fact, error) {
	conceptID, err := importer.resolver.Concept(ctx, candidate.Taxonomy, candidate.Concept)
	if err != nil {
		return nil, err
	}

	unitID, err := importer.resolver.Unit(ctx, candidate.Unit)
	if err != nil {
		return nil, err
	}

	return &data.Fact{
		CompanyID:    companyID,
		ConceptID:    conceptID,
		UnitID:       unitID,
		FiscalYear:   candidate.FiscalYear,
		FiscalPeriod: candidate.FiscalPeriod,
		FormType:     candidate.Form,
		Value:        candidate.Value,
		FiledDate:    candidate.Filed,
		Accession:    candidate.Accession,
	}, nil
}
