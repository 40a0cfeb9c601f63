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
package edgar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL           = "https://data.sec.gov"
	DefaultWWWURL            = "https://www.sec.gov"
	DefaultTimeout           = 30 * time.Second
	DefaultMaxAttempts       = 3
	DefaultRateLimitCooldown = 5 * time.Second
	DefaultNetworkBackoff    = 2 * time.Second

	// DefaultRequestsPerSecond is the EDGAR fair access limit
	DefaultRequestsPerSecond = 10
)

var (
	// ErrNotFound is returned when EDGAR answers with a non-success status other than 429. The
	// company has nothing to import and should be skipped.
	ErrNotFound = errors.New("upstream rejected request")

	// ErrTransient is returned when every attempt failed with a rate limit or network error
	ErrTransient = errors.New("retries exhausted")

	// ErrDecode is returned when a successful response body is not a valid document
	ErrDecode = errors.New("malformed response body")

	ErrRateLimited = errors.New("rate limited")
)

// SleepFunc pauses between attempts. It must return early with the context error when ctx is
// cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Options struct {
	BaseURL   string
	WWWURL    string
	UserAgent string
	Contact   string

	Timeout           time.Duration
	MaxAttempts       int
	RateLimitCooldown time.Duration
	NetworkBackoff    time.Duration

	// RequestsPerSecond caps the rate of HTTP requests made by the client, retries included
	RequestsPerSecond float64

	Sleep SleepFunc
}

// Client retrieves documents from the EDGAR APIs
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	opts    Options
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.WWWURL == "" {
		opts.WWWURL = DefaultWWWURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RateLimitCooldown <= 0 {
		opts.RateLimitCooldown = DefaultRateLimitCooldown
	}
	if opts.NetworkBackoff <= 0 {
		opts.NetworkBackoff = DefaultNetworkBackoff
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.Sleep == nil {
		opts.Sleep = SleepContext
	}

	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.WWWURL = strings.TrimRight(opts.WWWURL, "/")

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	if opts.Contact != "" {
		client.SetHeader("From", opts.Contact)
	}

	return &Client{
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		opts:    opts,
	}
}

// FactsURL returns the companyfacts URL for an already normalized CIK
func (client *Client) FactsURL(cik string) string {
	return fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", client.opts.BaseURL, cik)
}

// CompanyFacts downloads and decodes the company facts document for cik. Errors wrap one of
// ErrNotFound, ErrTransient, ErrDecode or ErrInvalidCIK.
func (client *Client) CompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	padded, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}

	body, err := client.get(ctx, client.FactsURL(padded))
	if err != nil {
		return nil, err
	}

	return DecodeCompanyFacts(body)
}

// get performs a GET with the fixed retry policy: a 429 waits RateLimitCooldown, a network
// error or timeout waits NetworkBackoff, and any other non-success status fails at once.
func (client *Client) get(ctx context.Context, url string) ([]byte, error) {
	logger := zerolog.Ctx(ctx).With().Str("URL", url).Logger()

	var lastErr error
	for attempt := 1; attempt <= client.opts.MaxAttempts; attempt++ {
		var wait time.Duration

		if err := client.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "edgar request cancelled")
		}

		resp, err := client.http.R().SetContext(ctx).Get(url)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "edgar request cancelled")
			}

			logger.Warn().Err(err).Int("Attempt", attempt).Msg("edgar request failed")
			lastErr = err
			wait = client.opts.NetworkBackoff

		case resp.IsSuccess():
			return resp.Body(), nil

		case resp.StatusCode() == http.StatusTooManyRequests:
			logger.Warn().Int("Attempt", attempt).Msg("edgar rate limit hit")
			lastErr = fmt.Errorf("%w: %d", ErrRateLimited, resp.StatusCode())
			wait = client.opts.RateLimitCooldown

		default:
			logger.Debug().Int("StatusCode", resp.StatusCode()).Msg("edgar rejected request")
			return nil, eris.Wrapf(ErrNotFound, "status %d", resp.StatusCode())
		}

		if attempt == client.opts.MaxAttempts {
			break
		}

		if err := client.opts.Sleep(ctx, wait); err != nil {
			return nil, eris.Wrap(err, "edgar retry wait cancelled")
		}
	}

	logger.Error().Err(lastErr).Int("Attempts", client.opts.MaxAttempts).Msg("edgar request failed after retries")
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrTransient, client.opts.MaxAttempts, lastErr)
}

// SleepContext pauses for d or until ctx is done, whichever comes first
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
