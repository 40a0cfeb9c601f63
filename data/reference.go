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
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Concept is a taxonomy tag such as us-gaap/Assets. Rows are created once and never updated.
type Concept struct {
	ID       int64
	Taxonomy string
	Name     string
}

// Unit is a unit of measure code such as USD or shares
type Unit struct {
	ID   int64
	Code string
}

// Key identifies the concept in caches. The taxonomy is length prefixed so that a '/' in
// either part cannot make two concepts collide.
func (concept *Concept) Key() string {
	return strconv.Itoa(len(concept.Taxonomy)) + ":" + concept.Taxonomy + "/" + concept.Name
}

func (concept *Concept) String() string {
	return concept.Taxonomy + "/" + concept.Name
}

// SaveDB looks up the concept id, inserting the row first if it is missing
func (concept *Concept) SaveDB(ctx context.Context, dbConn Querier) error {
	sql := `WITH inserted AS (
		INSERT INTO concepts ("taxonomy", "name") VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT concepts_taxonomy_name_key DO NOTHING
		RETURNING id
	)
	SELECT id FROM inserted
	UNION ALL
	SELECT id FROM concepts WHERE taxonomy = $1 AND name = $2
	LIMIT 1`

	err := dbConn.QueryRow(ctx, sql, concept.Taxonomy, concept.Name).Scan(&concept.ID)
	if err == nil {
		return nil
	}

	if !IsReferenceConflict(err) {
		return eris.Wrapf(err, "get or create concept %s", concept.String())
	}

	zerolog.Ctx(ctx).Debug().Str("Concept", concept.String()).Msg("concept created concurrently, reading winner")

	err = dbConn.QueryRow(ctx, `SELECT id FROM concepts WHERE taxonomy = $1 AND name = $2`,
		concept.Taxonomy, concept.Name).Scan(&concept.ID)
	if err != nil {
		return eris.Wrapf(err, "read concept %s", concept.String())
	}

	return nil
}

// SaveDB looks up the unit id, inserting the row first if it is missing
func (unit *Unit) SaveDB(ctx context.Context, dbConn Querier) error {
	sql := `WITH inserted AS (
		INSERT INTO units ("code") VALUES ($1)
		ON CONFLICT ON CONSTRAINT units_code_key DO NOTHING
		RETURNING id
	)
	SELECT id FROM inserted
	UNION ALL
	SELECT id FROM units WHERE code = $1
	LIMIT 1`

	err := dbConn.QueryRow(ctx, sql, unit.Code).Scan(&unit.ID)
	if err == nil {
		return nil
	}

	if !IsReferenceConflict(err) {
		return eris.Wrapf(err, "get or create unit %s", unit.Code)
	}

	zerolog.Ctx(ctx).Debug().Str("Unit", unit.Code).Msg("unit created concurrently, reading winner")

	err = dbConn.QueryRow(ctx, `SELECT id FROM units WHERE code = $1`, unit.Code).Scan(&unit.ID)
	if err != nil {
		return eris.Wrapf(err, "read unit %s", unit.Code)
	}

	return nil
}
