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
package data

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// AuditEntry records the outcome of one request made on behalf of a refresh run
type AuditEntry struct {
	RunID      uuid.UUID
	Process    string
	Request    string
	Response   string
	SentAt     time.Time
	ReceivedAt time.Time
	Exception  string
}

func (entry *AuditEntry) SaveDB(ctx context.Context, dbConn Querier) error {
	sql := `INSERT INTO sec_log (
		"run_id",
		"process",
		"request",
		"response",
		"sent_at",
		"received_at",
		"process_exception"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	)`

	var runID *uuid.UUID
	if entry.RunID != uuid.Nil {
		runID = &entry.RunID
	}

	_, err := dbConn.Exec(ctx, sql,
		runID,
		nullIfBlank(entry.Process),
		nullIfBlank(entry.Request),
		nullIfBlank(entry.Response),
		nullIfZero(entry.SentAt),
		nullIfZero(entry.ReceivedAt),
		nullIfBlank(entry.Exception),
	)

	return eris.Wrap(err, "save audit entry")
}

func nullIfZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
