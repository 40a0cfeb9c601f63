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

// FactRecord is the flat, denormalized shape of a stored fact used for exports
type FactRecord struct {
	CIK          string `db:"cik" csv:"cik" json:"cik" parquet:"name=cik, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Ticker       string `db:"ticker" csv:"ticker" json:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Taxonomy     string `db:"taxonomy" csv:"taxonomy" json:"taxonomy" parquet:"name=taxonomy, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Concept      string `db:"concept" csv:"concept" json:"concept" parquet:"name=concept, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Unit         string `db:"unit" csv:"unit" json:"unit" parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FiscalYear   int32  `db:"fiscal_year" csv:"fiscal_year" json:"fiscal_year" parquet:"name=fiscal_year, type=INT32"`
	FiscalPeriod string `db:"fiscal_period" csv:"fiscal_period" json:"fiscal_period" parquet:"name=fiscal_period, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FormType     string `db:"form_type" csv:"form_type" json:"form_type" parquet:"name=form_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value        string `db:"value" csv:"value" json:"value" parquet:"name=value, type=BYTE_ARRAY, convertedtype=UTF8"`
	FiledDate    string `db:"filed_date" csv:"filed_date" json:"filed_date" parquet:"name=filed_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Accession    string `db:"accession" csv:"accession" json:"accession" parquet:"name=accession, type=BYTE_ARRAY, convertedtype=UTF8"`
}
