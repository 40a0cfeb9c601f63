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

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/rotisserie/eris"
)

// DefaultLastHours is the look-back window used when listing companies to refresh
const DefaultLastHours = 24

// CompanyListing is one company queued for import
type CompanyListing struct {
	CIK    string `db:"cik"`
	Ticker string `db:"ticker"`
}

type ListOptions struct {
	// OnlyNew lists symbols whose company has never been imported
	OnlyNew bool

	// LastHours skips companies refreshed within this many hours. Zero means DefaultLastHours.
	LastHours int
}

const newCompaniesSQL = `SELECT DISTINCT ON (s.cik) s.cik, s.ticker
FROM symbols s
WHERE NOT EXISTS (SELECT 1 FROM companies c WHERE c.cik = s.cik)
ORDER BY s.cik, s.ticker`

const staleCompaniesSQL = `SELECT cik, ticker FROM (
	SELECT DISTINCT ON (s.cik) s.cik, s.ticker, c.facts_refreshed_at
	FROM symbols s
	LEFT JOIN companies c ON c.cik = s.cik
	WHERE c.facts_refreshed_at IS NULL
		OR c.facts_refreshed_at < now() - make_interval(hours => $1)
	ORDER BY s.cik, s.ticker
) stale
ORDER BY facts_refreshed_at NULLS FIRST, cik`

// CompaniesNeedingRefresh lists the companies a refresh run should import, one entry per CIK.
// Companies never imported come first followed by the stalest.
func (myLibrary *Library) CompaniesNeedingRefresh(ctx context.Context, opts ListOptions) ([]*CompanyListing, error) {
	var listings []*CompanyListing

	if opts.OnlyNew {
		if err := pgxscan.Select(ctx, myLibrary.Pool, &listings, newCompaniesSQL); err != nil {
			return nil, eris.Wrap(err, "list new companies")
		}
		return listings, nil
	}

	lastHours := opts.LastHours
	if lastHours <= 0 {
		lastHours = DefaultLastHours
	}

	if err := pgxscan.Select(ctx, myLibrary.Pool, &listings, staleCompaniesSQL, lastHours); err != nil {
		return nil, eris.Wrap(err, "list companies to refresh")
	}

	return listings, nil
}
