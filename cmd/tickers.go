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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// tickersCmd represents the tickers command
var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Load the SEC ticker to CIK listing into the symbols table",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())

		tickers, err := newEdgarClient().CompanyTickers(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not download company tickers")
		}

		myLibrary := connectLibrary(ctx)
		defer myLibrary.Close()

		saved, err := myLibrary.SaveSymbols(ctx, tickers)
		if err != nil {
			log.Fatal().Err(err).Msg("could not save symbols")
		}

		log.Info().Int("NumTickers", len(tickers)).Int("NumSaved", saved).Msg("symbols updated")
	},
}

func init() {
	rootCmd.AddCommand(tickersCmd)
}
