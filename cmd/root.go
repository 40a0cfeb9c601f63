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
	"os"

	"github.com/penny-vault/secfacts/edgar"
	"github.com/penny-vault/secfacts/healthcheck"
	"github.com/penny-vault/secfacts/library"
	"github.com/penny-vault/secfacts/pkginfo"
	"github.com/penny-vault/secfacts/refresh"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "secfacts",
	Short: "secfacts imports SEC EDGAR XBRL company facts into PostgreSQL",
	Long: `secfacts is a command line utility for building and maintaining a
database of the financial facts companies report to the SEC. For every listed
company it downloads the EDGAR company facts document, keeps the values reported
on annual and quarterly filings, and merges them into a relational store keyed
by company, concept, unit, fiscal year, fiscal period and form.

Typical usage:

	* secfacts init     create the schema and save connection settings
	* secfacts tickers  load the ticker to CIK listing published by the SEC
	* secfacts refresh  import facts for new and stale companies
	* secfacts info     summarize the contents of the database

The SEC requires automated clients to identify themselves. Set edgar.contact
to an email address before running refresh.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.secfacts.toml)")
	rootCmd.PersistentFlags().String("db-url", "", "database connection string")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")

	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("db-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db-url failed")
	}

	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for log-level failed")
	}

	viper.SetDefault("edgar.base_url", edgar.DefaultBaseURL)
	viper.SetDefault("edgar.www_url", edgar.DefaultWWWURL)
	viper.SetDefault("edgar.timeout", edgar.DefaultTimeout)
	viper.SetDefault("edgar.max_attempts", edgar.DefaultMaxAttempts)
	viper.SetDefault("edgar.rate_limit_cooldown", edgar.DefaultRateLimitCooldown)
	viper.SetDefault("edgar.network_backoff", edgar.DefaultNetworkBackoff)
	viper.SetDefault("edgar.requests_per_second", edgar.DefaultRequestsPerSecond)
	viper.SetDefault("refresh.delay", refresh.DefaultDelay)
	viper.SetDefault("refresh.last_hours", library.DefaultLastHours)
	viper.SetDefault("healthchecks.url", healthcheck.DefaultPingURL)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".secfacts" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".secfacts")
	}

	viper.SetEnvPrefix("secfacts")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}

	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.Warn().Err(err).Str("Level", viper.GetString("log.level")).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// newEdgarClient builds a client from the edgar.* settings
func newEdgarClient() *edgar.Client {
	contact := viper.GetString("edgar.contact")
	userAgent := viper.GetString("edgar.user_agent")
	if userAgent == "" {
		userAgent = pkginfo.UserAgent(contact)
	}

	if contact == "" {
		log.Warn().Msg("edgar.contact is not set; the SEC may reject unidentified clients")
	}

	return edgar.New(edgar.Options{
		BaseURL:           viper.GetString("edgar.base_url"),
		WWWURL:            viper.GetString("edgar.www_url"),
		UserAgent:         userAgent,
		Contact:           contact,
		Timeout:           viper.GetDuration("edgar.timeout"),
		MaxAttempts:       viper.GetInt("edgar.max_attempts"),
		RateLimitCooldown: viper.GetDuration("edgar.rate_limit_cooldown"),
		NetworkBackoff:    viper.GetDuration("edgar.network_backoff"),
		RequestsPerSecond: viper.GetFloat64("edgar.requests_per_second"),
	})
}

func connectLibrary(ctx context.Context) *library.Library {
	dbURL := viper.GetString("db.url")
	if dbURL == "" {
		log.Fatal().Msg("db.url is not configured; run secfacts init or pass --db-url")
	}

	myLibrary, err := library.New(ctx, dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to library")
	}

	return myLibrary
}
