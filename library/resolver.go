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

	"github.com/alphadose/haxmap"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/penny-vault/secfacts/data"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ReferenceStore creates concept and unit rows on first sight and returns their ids.
// Implementations must be atomic with respect to concurrent callers.
type ReferenceStore interface {
	Concept(ctx context.Context, taxonomy, name string) (int64, error)
	Unit(ctx context.Context, code string) (int64, error)
}

// Resolver memoizes concept and unit ids. Concurrent first lookups of the same key share a
// single store round trip.
type Resolver struct {
	store    ReferenceStore
	concepts *haxmap.Map[string, int64]
	units    *haxmap.Map[string, int64]
	inflight singleflight.Group
}

func NewResolver(store ReferenceStore) *Resolver {
	return &Resolver{
		store:    store,
		concepts: haxmap.New[string, int64](),
		units:    haxmap.New[string, int64](),
	}
}

// Concept returns the id of the (taxonomy, name) concept, creating it if needed
func (resolver *Resolver) Concept(ctx context.Context, taxonomy, name string) (int64, error) {
	key := (&data.Concept{Taxonomy: taxonomy, Name: name}).Key()
	return resolver.resolve(resolver.concepts, "concept:"+key, key, func() (int64, error) {
		return resolver.store.Concept(ctx, taxonomy, name)
	})
}

// Unit returns the id of the unit code, creating it if needed
func (resolver *Resolver) Unit(ctx context.Context, code string) (int64, error) {
	return resolver.resolve(resolver.units, "unit:"+code, code, func() (int64, error) {
		return resolver.store.Unit(ctx, code)
	})
}

func (resolver *Resolver) resolve(cache *haxmap.Map[string, int64], flightKey, key string, create func() (int64, error)) (int64, error) {
	if id, ok := cache.Get(key); ok {
		return id, nil
	}

	id, err, _ := resolver.inflight.Do(flightKey, func() (any, error) {
		if id, ok := cache.Get(key); ok {
			return id, nil
		}

		id, err := create()
		if err != nil {
			return int64(0), err
		}

		cache.Set(key, id)
		return id, nil
	})
	if err != nil {
		return 0, err
	}

	return id.(int64), nil
}

// Preload fills the caches with every concept and unit already stored
func (resolver *Resolver) Preload(ctx context.Context, dbConn data.Querier) error {
	var concepts []*data.Concept
	if err := pgxscan.Select(ctx, dbConn, &concepts, "SELECT id, taxonomy, name FROM concepts"); err != nil {
		return eris.Wrap(err, "load concepts")
	}

	for _, concept := range concepts {
		resolver.concepts.Set(concept.Key(), concept.ID)
	}

	var units []*data.Unit
	if err := pgxscan.Select(ctx, dbConn, &units, "SELECT id, code FROM units"); err != nil {
		return eris.Wrap(err, "load units")
	}

	for _, unit := range units {
		resolver.units.Set(unit.Code, unit.ID)
	}

	zerolog.Ctx(ctx).Debug().Int("NumConcepts", len(concepts)).Int("NumUnits", len(units)).Msg("reference caches loaded")
	return nil
}

// DBReferenceStore writes reference rows outside of any company transaction so that an id
// handed to the cache always points at a committed row
type DBReferenceStore struct {
	DB data.Querier
}

func (store *DBReferenceStore) Concept(ctx context.Context, taxonomy, name string) (int64, error) {
	concept := &data.Concept{Taxonomy: taxonomy, Name: name}
	if err := concept.SaveDB(ctx, store.DB); err != nil {
		return 0, err
	}
	return concept.ID, nil
}

func (store *DBReferenceStore) Unit(ctx context.Context, code string) (int64, error) {
	unit := &data.Unit{Code: code}
	if err := unit.SaveDB(ctx, store.DB); err != nil {
		return 0, err
	}
	return unit.ID, nil
}
