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
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const DefaultPingURL = "https://hc-ping.com"

var (
	ErrStatus = errors.New("status code is invalid")
)

// Check reports the progress of a scheduled job to healthchecks.io. A Check with an empty ID
// is disabled and every ping is a no-op.
type Check struct {
	ID      string
	PingURL string

	client *resty.Client
}

func New(id, pingURL string) *Check {
	if pingURL == "" {
		pingURL = DefaultPingURL
	}

	return &Check{
		ID:      id,
		PingURL: strings.TrimRight(pingURL, "/"),
		client:  resty.New().SetTimeout(10 * time.Second),
	}
}

// Start signals that the job has begun
func (check *Check) Start(ctx context.Context) error {
	return check.ping(ctx, "/start", "")
}

// Success signals that the job finished; body is shown in the check's event log
func (check *Check) Success(ctx context.Context, body string) error {
	return check.ping(ctx, "", body)
}

// Fail signals that the job failed
func (check *Check) Fail(ctx context.Context, body string) error {
	return check.ping(ctx, "/fail", body)
}

func (check *Check) ping(ctx context.Context, suffix, body string) error {
	if check == nil || check.ID == "" {
		return nil
	}

	url := fmt.Sprintf("%s/%s%s", check.PingURL, check.ID, suffix)

	resp, err := check.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(body).
		Post(url)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("URL", url).Msg("healthcheck ping failed")
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
