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

	"github.com/penny-vault/secfacts/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var companiesOnlyNew bool

// companiesCmd represents the companies command
var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the companies the next refresh would import",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())

		myLibrary := connectLibrary(ctx)
		defer myLibrary.Close()

		listings, err := myLibrary.CompaniesNeedingRefresh(ctx, library.ListOptions{
			OnlyNew:   companiesOnlyNew,
			LastHours: viper.GetInt("refresh.last_hours"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not list companies")
		}

		for _, listing := range listings {
			fmt.Printf("%s\t%s\n", listing.CIK, listing.Ticker)
		}

		log.Info().Int("NumCompanies", len(listings)).Msg("companies listed")
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)

	companiesCmd.Flags().BoolVar(&companiesOnlyNew, "only-new", false, "only list companies that have never been imported")
}
