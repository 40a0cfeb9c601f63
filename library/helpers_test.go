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
package library_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

func anyArgs(n int) []any {
	args := make([]any, n)
	for idx := range args {
		args[idx] = pgxmock.AnyArg()
	}
	return args
}

type decimalArg struct {
	want decimal.Decimal
}

func (arg decimalArg) Match(v any) bool {
	got, ok := v.(decimal.Decimal)
	return ok && got.Equal(arg.want)
}

// memoryStore is an atomic get-or-create reference store that records how often rows were
// created and how often it was asked
type memoryStore struct {
	mu       sync.Mutex
	delay    time.Duration
	nextID   int64
	concepts map[string]int64
	units    map[string]int64
	calls    int
	fail     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		concepts: make(map[string]int64),
		units:    make(map[string]int64),
	}
}

func (store *memoryStore) Concept(_ context.Context, taxonomy, name string) (int64, error) {
	if store.delay > 0 {
		time.Sleep(store.delay)
	}
	return store.getOrCreate(store.concepts, taxonomy+"\x00"+name)
}

func (store *memoryStore) Unit(_ context.Context, code string) (int64, error) {
	if store.delay > 0 {
		time.Sleep(store.delay)
	}
	return store.getOrCreate(store.units, code)
}

func (store *memoryStore) getOrCreate(rows map[string]int64, key string) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.calls++
	if store.fail != nil {
		return 0, store.fail
	}

	if id, ok := rows[key]; ok {
		return id, nil
	}

	store.nextID++
	rows[key] = store.nextID
	return store.nextID, nil
}

func (store *memoryStore) Calls() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.calls
}

func (store *memoryStore) NumConcepts() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.concepts)
}

var errStoreDown = errors.New("store unavailable")
