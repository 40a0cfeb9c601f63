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

	"github.com/charmbracelet/lipgloss"
	"github.com/penny-vault/secfacts/edgar"
	"github.com/penny-vault/secfacts/xbrl"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	lookupTaxonomy string
	lookupUnit     string
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Width(10)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <cik> <concept>",
	Short: "Print the most recent value EDGAR reports for a concept",
	Long: `Download the company facts document for a single company and print the most
recent value of a concept. The value with the highest fiscal year wins; ties are
broken by the latest filing date. Nothing is written to the database.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())

		cik, err := edgar.NormalizeCIK(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("CIK", args[0]).Msg("invalid cik")
		}

		doc, err := newEdgarClient().CompanyFacts(ctx, cik)
		if err != nil {
			log.Fatal().Err(err).Str("CIK", cik).Msg("could not download company facts")
		}

		rows := [][2]string{
			{"Company", doc.EntityName},
			{"CIK", cik},
			{"Concept", fmt.Sprintf("%s/%s", lookupTaxonomy, args[1])},
			{"Unit", lookupUnit},
		}

		value, ok := xbrl.LatestValue(doc, lookupTaxonomy, args[1], lookupUnit)
		if ok {
			rows = append(rows, [2]string{"Value", value.String()})
		} else {
			rows = append(rows, [2]string{"Value", "not reported"})
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row[0]), valueStyle.Render(row[1])))
		}

		fmt.Println(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&lookupTaxonomy, "taxonomy", "us-gaap", "taxonomy the concept belongs to")
	lookupCmd.Flags().StringVar(&lookupUnit, "unit", "USD", "unit of measure")
}
