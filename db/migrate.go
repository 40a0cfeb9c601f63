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
package db

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationURL rewrites a postgres connection string to the scheme registered by the pgx/v5
// migrate driver
func MigrationURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}

// Migrate brings the fact schema up to date. A database that is already current is not an
// error.
func Migrate(databaseURL string) error {
	migrationDir, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return eris.Wrap(err, "open embedded migrations")
	}

	migration, err := migrate.NewWithSourceInstance("iofs", migrationDir, MigrationURL(databaseURL))
	if err != nil {
		return eris.Wrap(err, "connect migrate to database")
	}
	defer func() {
		if srcErr, dbErr := migration.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("SourceErr", srcErr).AnErr("DatabaseErr", dbErr).Msg("closing migration failed")
		}
	}()

	err = migration.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug().Msg("database schema already current")
		return nil
	}

	if err != nil {
		return eris.Wrap(err, "apply migrations")
	}

	version, _, _ := migration.Version()
	log.Info().Uint("Version", version).Msg("database schema migrated")
	return nil
}
