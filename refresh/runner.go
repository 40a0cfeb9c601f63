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

// Package refresh drives a batch import of company facts from EDGAR into the fact library.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/penny-vault/secfacts/data"
	"github.com/penny-vault/secfacts/edgar"
	"github.com/penny-vault/secfacts/library"
	"github.com/penny-vault/secfacts/xbrl"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// DefaultDelay is the pause after each company required by the EDGAR fair access policy
const DefaultDelay = 3 * time.Second

const auditProcess = "SecFact"

type CompanySource interface {
	CompaniesNeedingRefresh(ctx context.Context, opts library.ListOptions) ([]*library.CompanyListing, error)
}

type Fetcher interface {
	CompanyFacts(ctx context.Context, cik string) (*edgar.CompanyFacts, error)
	FactsURL(cik string) string
}

type Importer interface {
	ImportFacts(ctx context.Context, company library.CompanyRef, facts iter.Seq[xbrl.CandidateFact]) (*library.ImportResult, error)
}

type AuditSink interface {
	Record(ctx context.Context, entry *data.AuditEntry)
}

type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

type CompanyOutcome struct {
	CIK     string
	Ticker  string
	Outcome Outcome
	Result  *library.ImportResult
	Err     error
}

type Summary struct {
	RunID    uuid.UUID
	Total    int
	OK       int
	Skipped  int
	Errors   int
	NumFacts int
	Elapsed  time.Duration
	Outcomes []*CompanyOutcome
}

func (summary *Summary) add(outcome *CompanyOutcome) {
	summary.Outcomes = append(summary.Outcomes, outcome)
	switch outcome.Outcome {
	case OutcomeOK:
		summary.OK++
		if outcome.Result != nil {
			summary.NumFacts += outcome.Result.NumFacts
		}
	case OutcomeSkipped:
		summary.Skipped++
	case OutcomeError:
		summary.Errors++
	}
}

func (summary *Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("RunID", summary.RunID.String())
	e.Int("Total", summary.Total)
	e.Int("OK", summary.OK)
	e.Int("Skipped", summary.Skipped)
	e.Int("Errors", summary.Errors)
	e.Int("NumFacts", summary.NumFacts)
	e.Str("Elapsed", durafmt.Parse(summary.Elapsed.Round(time.Second)).String())
}

// Runner imports every company returned by Source, one at a time
type Runner struct {
	Source     CompanySource
	Fetcher    Fetcher
	Normalizer *xbrl.Normalizer
	Importer   Importer
	Audit      AuditSink

	// Delay is slept between companies, however long the previous one took. Zero disables it.
	Delay   time.Duration
	Options library.ListOptions

	Sleep edgar.SleepFunc
}

func NewRunner(source CompanySource, fetcher Fetcher, importer Importer, audit AuditSink) *Runner {
	return &Runner{
		Source:     source,
		Fetcher:    fetcher,
		Normalizer: xbrl.New(xbrl.DefaultForms),
		Importer:   importer,
		Audit:      audit,
		Delay:      DefaultDelay,
		Sleep:      edgar.SleepContext,
	}
}

// Run refreshes the listed companies. Failures of individual companies are recorded in the
// summary and do not stop the batch; only a failed listing or a cancelled context does.
func (runner *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID: uuid.New(),
	}

	logger := zerolog.Ctx(ctx).With().Str("RunID", summary.RunID.String()).Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()

	listings, err := runner.Source.CompaniesNeedingRefresh(ctx, runner.Options)
	if err != nil {
		logger.Error().Err(err).Msg("could not list companies to refresh")
		return nil, eris.Wrap(err, "list companies")
	}

	summary.Total = len(listings)
	logger.Info().Int("NumCompanies", summary.Total).Bool("OnlyNew", runner.Options.OnlyNew).Msg("starting refresh")

	for idx, listing := range listings {
		var err error
		if idx > 0 && runner.Delay > 0 {
			err = runner.sleep(ctx, runner.Delay)
		}
		if err == nil {
			err = ctx.Err()
		}

		if err != nil {
			summary.Elapsed = time.Since(start)
			logger.Warn().Object("Summary", summary).Msg("refresh cancelled")
			return summary, eris.Wrap(err, "refresh cancelled")
		}

		outcome := runner.refreshCompany(ctx, summary.RunID, listing)
		summary.add(outcome)

		event := logger.Info()
		if outcome.Outcome == OutcomeError {
			event = logger.Error().Err(outcome.Err)
		}

		event.Str("CIK", outcome.CIK).
			Str("Ticker", outcome.Ticker).
			Str("Outcome", string(outcome.Outcome)).
			Str("Progress", fmt.Sprintf("%d/%d", idx+1, summary.Total)).
			Msg("company refreshed")
	}

	summary.Elapsed = time.Now().Sub(start)
	logger.Info().Object("Summary", summary).Msg("refresh finished")

	return summary, nil
}

func (runner *Runner) refreshCompany(ctx context.Context, runID uuid.UUID, listing *library.CompanyListing) *CompanyOutcome {
	outcome := &CompanyOutcome{
		CIK:    listing.CIK,
		Ticker: listing.Ticker,
	}

	cik, err := edgar.NormalizeCIK(listing.CIK)
	if err != nil {
		outcome.Outcome = OutcomeSkipped
		outcome.Err = err
		runner.record(ctx, runID, "", time.Time{}, outcome)
		return outcome
	}
	outcome.CIK = cik

	logger := zerolog.Ctx(ctx).With().Str("CIK", cik).Logger()
	ctx = logger.WithContext(ctx)

	sent := time.Now()
	doc, err := runner.Fetcher.CompanyFacts(ctx, cik)
	switch {
	case errors.Is(err, edgar.ErrNotFound):
		outcome.Outcome = OutcomeSkipped
		outcome.Err = err
	case err != nil:
		outcome.Outcome = OutcomeError
		outcome.Err = err
	default:
		company := library.CompanyRef{
			CIK:    cik,
			Ticker: listing.Ticker,
			Name:   doc.EntityName,
		}

		result, err := runner.Importer.ImportFacts(ctx, company, runner.normalizer().Facts(doc))
		if err != nil {
			outcome.Outcome = OutcomeError
			outcome.Err = err
		} else {
			outcome.Outcome = OutcomeOK
			outcome.Result = result
		}
	}

	runner.record(ctx, runID, runner.Fetcher.FactsURL(cik), sent, outcome)
	return outcome
}

func (runner *Runner) record(ctx context.Context, runID uuid.UUID, request string, sent time.Time, outcome *CompanyOutcome) {
	if runner.Audit == nil {
		return
	}

	entry := &data.AuditEntry{
		RunID:      runID,
		Process:    auditProcess,
		Request:    request,
		SentAt:     sent,
		ReceivedAt: time.Now(),
	}

	switch outcome.Outcome {
	case OutcomeOK:
		entry.Response = fmt.Sprintf("[OK] %d facts", outcome.Result.NumFacts)
	case OutcomeSkipped:
		entry.Response = "[SKIP]"
	case OutcomeError:
		entry.Response = "[ERROR]"
	}

	if outcome.Err != nil {
		entry.Exception = fmt.Sprintf("%s - %v", outcome.CIK, outcome.Err)
	}

	runner.Audit.Record(ctx, entry)
}

func (runner *Runner) sleep(ctx context.Context, d time.Duration) error {
	if runner.Sleep == nil {
		return edgar.SleepContext(ctx, d)
	}
	return runner.Sleep(ctx, d)
}

func (runner *Runner) normalizer() *xbrl.Normalizer {
	if runner.Normalizer == nil {
		return xbrl.New(xbrl.DefaultForms)
	}
	return runner.Normalizer
}
