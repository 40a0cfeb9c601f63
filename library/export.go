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
	"github.com/penny-vault/secfacts/data"
	"github.com/penny-vault/secfacts/edgar"
	"github.com/rotisserie/eris"
)

const companyFactsSQL = `SELECT
	c.cik,
	coalesce(c.ticker, '') AS ticker,
	k.taxonomy,
	k.name AS concept,
	u.code AS unit,
	f.fiscal_year,
	f.fiscal_period,
	f.form_type,
	f.value::text AS value,
	coalesce(to_char(f.filed_date, 'YYYY-MM-DD'), '') AS filed_date,
	coalesce(f.accession, '') AS accession
FROM facts f
JOIN companies c ON c.id = f.company_id
JOIN concepts k ON k.id = f.concept_id
JOIN units u ON u.id = f.unit_id
WHERE c.cik = $1
ORDER BY k.taxonomy, k.name, u.code, f.fiscal_year, f.fiscal_period, f.form_type`

// FactsForCompany returns every stored fact for a company in a stable order
func (myLibrary *Library) FactsForCompany(ctx context.Context, cik string) ([]*data.FactRecord, error) {
	padded, err := edgar.NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}

	var records []*data.FactRecord
	if err := pgxscan.Select(ctx, myLibrary.Pool, &records, companyFactsSQL, padded); err != nil {
		return nil, eris.Wrapf(err, "load facts for %s", padded)
	}

	return records, nil
}
