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
package library

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/secfacts/data"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used by the library
type Pool interface {
	data.Querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// ReferencePoolSize is the number of connections reserved for creating concepts and units
const ReferencePoolSize = 2

type Library struct {
	DBUrl string

	Pool Pool

	// ReferencePool holds connections used only for concept and unit rows. An import keeps
	// one Pool connection busy for its whole transaction while it creates reference rows, so
	// those rows must never wait on Pool.
	ReferencePool data.Querier
}

// New connects to the fact database at dbURL
func New(ctx context.Context, dbURL string) (*Library, error) {
	myLibrary := &Library{
		DBUrl: dbURL,
	}

	if err := myLibrary.Connect(ctx); err != nil {
		return nil, err
	}

	return myLibrary, nil
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	config, err := pgxpool.ParseConfig(myLibrary.DBUrl)
	if err != nil {
		return eris.Wrap(err, "parse database url")
	}

	pool, err := openPool(ctx, config)
	if err != nil {
		return err
	}

	refPool, err := openPool(ctx, referencePoolConfig(config))
	if err != nil {
		pool.Close()
		return err
	}

	myLibrary.Pool = pool
	myLibrary.ReferencePool = refPool

	return nil
}

func referencePoolConfig(config *pgxpool.Config) *pgxpool.Config {
	refConfig := config.Copy()
	refConfig.MaxConns = ReferencePoolSize
	refConfig.MinConns = 0
	return refConfig
}

func openPool(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, eris.Wrap(err, "create database pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "connect to database")
	}

	return pool, nil
}

// ReferenceStore creates concepts and units on the reference connections
func (myLibrary *Library) ReferenceStore() *DBReferenceStore {
	return &DBReferenceStore{DB: myLibrary.ReferencePool}
}

// Close the database pools
func (myLibrary *Library) Close() {
	if myLibrary.Pool != nil {
		myLibrary.Pool.Close()
	}

	if closer, ok := myLibrary.ReferencePool.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (myLibrary *Library) count(ctx context.Context, sql string) (int, error) {
	count := 0
	err := myLibrary.Pool.QueryRow(ctx, sql).Scan(&count)
	return count, err
}

// NumCompanies returns the number of companies with imported facts
func (myLibrary *Library) NumCompanies(ctx context.Context) (int, error) {
	return myLibrary.count(ctx, "SELECT count(*) FROM companies")
}

// NumSymbols returns the number of tickers known from the SEC listing
func (myLibrary *Library) NumSymbols(ctx context.Context) (int, error) {
	return myLibrary.count(ctx, "SELECT count(*) FROM symbols")
}

func (myLibrary *Library) NumConcepts(ctx context.Context) (int, error) {
	return myLibrary.count(ctx, "SELECT count(*) FROM concepts")
}

func (myLibrary *Library) NumUnits(ctx context.Context) (int, error) {
	return myLibrary.count(ctx, "SELECT count(*) FROM units")
}

// TotalFacts returns the total number of fact rows in the library
func (myLibrary *Library) TotalFacts(ctx context.Context) (int, error) {
	return myLibrary.count(ctx, "SELECT count(*) FROM facts")
}

// LastRefreshed returns the most recent time any company's facts were imported. The zero time
// means nothing has been imported yet.
func (myLibrary *Library) LastRefreshed(ctx context.Context) (time.Time, error) {
	var lastRefreshed time.Time
	err := myLibrary.Pool.QueryRow(ctx, "SELECT coalesce(max(facts_refreshed_at), '0001-01-01'::timestamptz) FROM companies").Scan(&lastRefreshed)
	if err != nil {
		return time.Time{}, err
	}

	return lastRefreshed, nil
}
