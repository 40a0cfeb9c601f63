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

	"github.com/penny-vault/secfacts/data"
	"github.com/rs/zerolog"
)

// AuditLog writes refresh outcomes to the sec_log table. Failures never reach the caller.
type AuditLog struct {
	DB data.Querier
}

func (audit *AuditLog) Record(ctx context.Context, entry *data.AuditEntry) {
	if audit == nil || audit.DB == nil {
		return
	}

	if err := entry.SaveDB(ctx, audit.DB); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("Request", entry.Request).Msg("could not write audit log entry")
	}
}
