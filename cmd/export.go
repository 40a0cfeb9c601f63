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
	"path/filepath"

	"github.com/penny-vault/secfacts/backblaze"
	"github.com/penny-vault/secfacts/edgar"
	"github.com/penny-vault/secfacts/export"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	exportFormat string
	exportDir    string
	exportUpload bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <cik>...",
	Short: "Write stored facts for one or more companies to csv or parquet",
	Long: `Write every stored fact for each company to <output>/<cik>.<format>. With
--upload the file is also copied to the configured backblaze bucket under a
directory named after the export format.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid export format")
		}

		bucket := viper.GetString("backblaze.bucket")
		if exportUpload && bucket == "" {
			log.Fatal().Msg("backblaze.bucket must be set to upload exports")
		}

		myLibrary := connectLibrary(ctx)
		defer myLibrary.Close()

		for _, arg := range args {
			cik, err := edgar.NormalizeCIK(arg)
			if err != nil {
				log.Error().Err(err).Str("CIK", arg).Msg("skipping invalid cik")
				continue
			}

			records, err := myLibrary.FactsForCompany(ctx, cik)
			if err != nil {
				log.Fatal().Err(err).Str("CIK", cik).Msg("could not load facts")
			}

			if len(records) == 0 {
				log.Warn().Str("CIK", cik).Msg("no facts stored for company")
				continue
			}

			fn := filepath.Join(exportDir, cik+format.Extension())
			if err := export.WriteFile(records, fn, format); err != nil {
				log.Fatal().Err(err).Str("FileName", fn).Msg("export failed")
			}

			log.Info().Str("CIK", cik).Str("FileName", fn).Int("NumFacts", len(records)).Msg("export written")

			if exportUpload {
				objectName, err := backblaze.Upload(ctx, backblaze.CredentialsFromConfig(), fn, bucket, string(format))
				if err != nil {
					log.Fatal().Err(err).Str("FileName", fn).Msg("upload failed")
				}

				log.Info().Str("Bucket", bucket).Str("Object", objectName).Msg("export uploaded")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(export.Parquet), "output format (csv or parquet)")
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "directory to write exports to")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "upload each export to backblaze")
}
