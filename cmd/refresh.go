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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hako/durafmt"
	"github.com/penny-vault/secfacts/healthcheck"
	"github.com/penny-vault/secfacts/library"
	"github.com/penny-vault/secfacts/refresh"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var onlyNew bool

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Import company facts from EDGAR",
	Long: `The refresh sub-command downloads the EDGAR company facts document for every
company in the symbols table that has never been imported or was last refreshed
more than --last-hours ago. Companies are processed one at a time with a fixed
delay between them. A failure for one company is logged and does not stop the
run.

Run secfacts tickers first to populate the list of companies.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctx = log.Logger.WithContext(ctx)

		check := healthcheck.New(viper.GetString("healthchecks.ping_id"), viper.GetString("healthchecks.url"))
		if err := check.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("healthcheck start ping failed")
		}

		myLibrary := connectLibrary(ctx)
		defer myLibrary.Close()

		resolver := library.NewResolver(myLibrary.ReferenceStore())
		if err := resolver.Preload(ctx, myLibrary.Pool); err != nil {
			log.Fatal().Err(err).Msg("could not load concepts and units")
		}

		runner := refresh.NewRunner(
			myLibrary,
			newEdgarClient(),
			library.NewImporter(myLibrary.Pool, resolver),
			&library.AuditLog{DB: myLibrary.Pool},
		)

		runner.Delay = viper.GetDuration("refresh.delay")
		runner.Options = library.ListOptions{
			OnlyNew:   onlyNew,
			LastHours: viper.GetInt("refresh.last_hours"),
		}

		summary, err := runner.Run(ctx)
		if err != nil {
			if pingErr := check.Fail(ctx, err.Error()); pingErr != nil {
				log.Warn().Err(pingErr).Msg("healthcheck fail ping failed")
			}

			if summary != nil {
				log.Error().Object("Summary", summary).Msg("refresh stopped early")
			}

			log.Fatal().Err(err).Msg("refresh failed")
		}

		report := fmt.Sprintf("refreshed %d of %d companies (%d skipped, %d errors), %d facts in %s",
			summary.OK, summary.Total, summary.Skipped, summary.Errors, summary.NumFacts,
			durafmt.Parse(summary.Elapsed).LimitFirstN(2).String())

		if err := check.Success(ctx, report); err != nil {
			log.Warn().Err(err).Msg("healthcheck success ping failed")
		}

		log.Info().Object("Summary", summary).Msg("refresh finished")
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().BoolVar(&onlyNew, "only-new", false, "only import companies that have never been imported")
	refreshCmd.Flags().Int("last-hours", library.DefaultLastHours, "refresh companies not updated within this many hours")
	if err := viper.BindPFlag("refresh.last_hours", refreshCmd.Flags().Lookup("last-hours")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for last-hours failed")
	}
}
