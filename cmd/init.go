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
package cmd

import (
	"context"
	"net/mail"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/secfacts/db"
	"github.com/penny-vault/secfacts/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type dbSettings struct {
	URL string `toml:"url"`
}

type edgarSettings struct {
	Contact string `toml:"contact"`
}

type healthcheckSettings struct {
	PingID string `toml:"ping_id,omitempty"`
}

// settings is the layout of $HOME/.secfacts.toml written by init
type settings struct {
	DB           dbSettings          `toml:"db"`
	Edgar        edgarSettings       `toml:"edgar"`
	Healthchecks healthcheckSettings `toml:"healthchecks"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather database configuration and setup schema",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		conf := settings{}

		form := huh.NewForm(
			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&conf.DB.URL).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
			),

			// The SEC asks automated clients to include a contact address
			huh.NewGroup(
				huh.NewInput().
					Title("Contact email sent with every EDGAR request:").
					Value(&conf.Edgar.Contact).
					Validate(func(contact string) error {
						_, err := mail.ParseAddress(contact)
						return err
					}),

				huh.NewInput().
					Title("healthchecks.io check id (optional):").
					Value(&conf.Healthchecks.PingID),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering database settings")
		}

		log.Info().Msg("creating database tables")

		err = db.Migrate(conf.DB.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("database tables created")

		myLibrary, err := library.New(ctx, conf.DB.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myLibrary.Close()

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".secfacts.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving database connection info to config file")
		configData, err := toml.Marshal(conf)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("Your fact database has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
