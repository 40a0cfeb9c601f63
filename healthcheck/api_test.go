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
package healthcheck_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/secfacts/healthcheck"
)

type ping struct {
	path string
	body string
}

var _ = Describe("Check", func() {
	var (
		ctx    context.Context
		srv    *httptest.Server
		pings  chan ping
		status int
	)

	BeforeEach(func() {
		ctx = context.Background()
		pings = make(chan ping, 4)
		status = http.StatusOK
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			pings <- ping{path: r.URL.Path, body: string(body)}
			w.WriteHeader(status)
		}))
	})

	AfterEach(func() {
		srv.Close()
	})

	It("pings start, success and fail endpoints", func() {
		check := healthcheck.New("abc-123", srv.URL+"/")

		Expect(check.Start(ctx)).To(Succeed())
		Expect(check.Success(ctx, "imported 10 companies")).To(Succeed())
		Expect(check.Fail(ctx, "listing failed")).To(Succeed())

		Expect(<-pings).To(Equal(ping{path: "/abc-123/start"}))
		Expect(<-pings).To(Equal(ping{path: "/abc-123", body: "imported 10 companies"}))
		Expect(<-pings).To(Equal(ping{path: "/abc-123/fail", body: "listing failed"}))
	})

	It("reports unexpected status codes", func() {
		status = http.StatusNotFound
		err := healthcheck.New("abc-123", srv.URL).Start(ctx)
		Expect(errors.Is(err, healthcheck.ErrStatus)).To(BeTrue())
	})

	It("does nothing without a check id", func() {
		check := healthcheck.New("", srv.URL)
		Expect(check.Start(ctx)).To(Succeed())
		Expect(pings).To(BeEmpty())
	})
})
