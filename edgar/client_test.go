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
package edgar_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/secfacts/edgar"
)

const appleFacts = `{
  "cik": 320193,
  "entityName": "Apple Inc.",
  "facts": {
    "us-gaap": {
      "Assets": {
        "label": "Assets",
        "units": {
          "USD": [
            {"end": "2023-09-30", "val": 352583000000, "accn": "0000320193-23-000106",
             "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}
          ]
        }
      }
    }
  }
}`

// recordingSleeper counts waits instead of sleeping
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func (s *recordingSleeper) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		sleeper  *recordingSleeper
		requests atomic.Int32
		paths    chan string
	)

	newClient := func(srv *httptest.Server) *edgar.Client {
		return edgar.New(edgar.Options{
			BaseURL:   srv.URL,
			WWWURL:    srv.URL,
			UserAgent: "secfacts-test/1.0 (test@example.com)",
			Contact:   "test@example.com",
			Timeout:   250 * time.Millisecond,
			Sleep:     sleeper.Sleep,
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		sleeper = &recordingSleeper{}
		requests.Store(0)
		paths = make(chan string, 10)
	})

	It("builds the companyfacts URL from the padded CIK", func() {
		client := edgar.New(edgar.Options{})
		Expect(client.FactsURL("0000320193")).To(Equal("https://data.sec.gov/api/xbrl/companyfacts/CIK0000320193.json"))
	})

	It("returns the parsed document on success", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			paths <- r.URL.Path
			Expect(r.Header.Get("User-Agent")).To(Equal("secfacts-test/1.0 (test@example.com)"))
			Expect(r.Header.Get("From")).To(Equal("test@example.com"))
			_, _ = w.Write([]byte(appleFacts))
		}))
		defer srv.Close()

		doc, err := newClient(srv).CompanyFacts(ctx, "320193")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.CIK).To(Equal(edgar.CIK("0000320193")))
		Expect(doc.EntityName).To(Equal("Apple Inc."))
		Expect(doc.Facts["us-gaap"]["Assets"].Units["USD"]).To(HaveLen(1))
		Expect(<-paths).To(Equal("/api/xbrl/companyfacts/CIK0000320193.json"))
		Expect(sleeper.Waits()).To(BeEmpty())
	})

	It("succeeds after two rate limited responses with exactly two cooldowns", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(appleFacts))
		}))
		defer srv.Close()

		doc, err := newClient(srv).CompanyFacts(ctx, "0000320193")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.EntityName).To(Equal("Apple Inc."))
		Expect(requests.Load()).To(Equal(int32(3)))
		Expect(sleeper.Waits()).To(Equal([]time.Duration{edgar.DefaultRateLimitCooldown, edgar.DefaultRateLimitCooldown}))
	})

	It("returns ErrNotFound on 404 without retrying", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newClient(srv).CompanyFacts(ctx, "0000000001")
		Expect(errors.Is(err, edgar.ErrNotFound)).To(BeTrue())
		Expect(requests.Load()).To(Equal(int32(1)))
		Expect(sleeper.Waits()).To(BeEmpty())
	})

	It("treats other non-success statuses as rejections", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := newClient(srv).CompanyFacts(ctx, "0000000001")
		Expect(errors.Is(err, edgar.ErrNotFound)).To(BeTrue())
		Expect(requests.Load()).To(Equal(int32(1)))
	})

	It("returns ErrTransient once every attempt is rate limited", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := newClient(srv).CompanyFacts(ctx, "0000320193")
		Expect(errors.Is(err, edgar.ErrTransient)).To(BeTrue())
		Expect(errors.Is(err, edgar.ErrRateLimited)).To(BeTrue())
		Expect(requests.Load()).To(Equal(int32(edgar.DefaultMaxAttempts)))
		Expect(sleeper.Waits()).To(HaveLen(edgar.DefaultMaxAttempts - 1))
	})

	It("spaces requests by the configured request rate", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := edgar.New(edgar.Options{
			BaseURL:           srv.URL,
			RequestsPerSecond: 20,
			Sleep:             sleeper.Sleep,
		})

		start := time.Now()
		_, err := client.CompanyFacts(ctx, "0000320193")
		Expect(errors.Is(err, edgar.ErrTransient)).To(BeTrue())
		Expect(requests.Load()).To(Equal(int32(3)))
		Expect(time.Since(start)).To(BeNumerically(">=", 90*time.Millisecond))
	})

	It("backs off on timeouts and gives up with ErrTransient", func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			select {
			case <-release:
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := newClient(srv).CompanyFacts(ctx, "0000320193")
		Expect(errors.Is(err, edgar.ErrTransient)).To(BeTrue())
		Expect(requests.Load()).To(Equal(int32(edgar.DefaultMaxAttempts)))
		Expect(sleeper.Waits()).To(Equal([]time.Duration{edgar.DefaultNetworkBackoff, edgar.DefaultNetworkBackoff}))
	})

	It("does not retry a malformed body", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			_, _ = w.Write([]byte(`{"cik": 320193, "facts": [`))
		}))
		defer srv.Close()

		_, err := newClient(srv).CompanyFacts(ctx, "0000320193")
		Expect(errors.Is(err, edgar.ErrDecode)).To(BeTrue())
		Expect(requests.Load()).To(Equal(int32(1)))
	})

	It("rejects an invalid CIK before making a request", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		defer srv.Close()

		_, err := newClient(srv).CompanyFacts(ctx, "not-a-cik")
		Expect(errors.Is(err, edgar.ErrInvalidCIK)).To(BeTrue())
		Expect(requests.Load()).To(BeZero())
	})

	It("stops waiting when the context is cancelled", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		cancelCtx, cancel := context.WithCancel(ctx)
		client := edgar.New(edgar.Options{
			BaseURL: srv.URL,
			Sleep: func(ctx context.Context, _ time.Duration) error {
				cancel()
				return ctx.Err()
			},
		})

		_, err := client.CompanyFacts(cancelCtx, "0000320193")
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(requests.Load()).To(Equal(int32(1)))
	})

	It("downloads the company ticker listing in key order", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths <- r.URL.Path
			_, _ = w.Write([]byte(`{
				"10": {"cik_str": 1018724, "ticker": "AMZN", "title": "AMAZON COM INC"},
				"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
				"2": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"}
			}`))
		}))
		defer srv.Close()

		tickers, err := newClient(srv).CompanyTickers(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(<-paths).To(Equal("/files/company_tickers.json"))
		Expect(tickers).To(HaveLen(3))
		Expect(tickers[0].Ticker).To(Equal("AAPL"))
		Expect(tickers[1].Ticker).To(Equal("MSFT"))
		Expect(tickers[2].Ticker).To(Equal("AMZN"))
		Expect(tickers[2].CIK).To(Equal(int64(1018724)))
	})
})
