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

//go:build integration

package library_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/penny-vault/secfacts/data"
	"github.com/penny-vault/secfacts/db"
	"github.com/penny-vault/secfacts/edgar"
	"github.com/penny-vault/secfacts/library"
	"github.com/penny-vault/secfacts/xbrl"
)

// startPostgres returns the DSN of a scratch database. SECFACTS_TEST_POSTGRES_DSN points the
// suite at an existing server instead of starting a container.
func startPostgres(ctx context.Context) string {
	if dsn := os.Getenv("SECFACTS_TEST_POSTGRES_DSN"); dsn != "" {
		return dsn
	}

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "secfacts",
			"POSTGRES_PASSWORD": "secfacts",
			"POSTGRES_DB":       "secfacts",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	Expect(err).NotTo(HaveOccurred())

	DeferCleanup(func(ctx context.Context) {
		Expect(container.Terminate(ctx)).To(Succeed())
	})

	host, err := container.Host(ctx)
	Expect(err).NotTo(HaveOccurred())

	port, err := container.MappedPort(ctx, "5432/tcp")
	Expect(err).NotTo(HaveOccurred())

	return fmt.Sprintf("postgres://secfacts:secfacts@%s:%s/secfacts?sslmode=disable", host, port.Port())
}

func companyDocument(cik, concept, assets string) *edgar.CompanyFacts {
	doc, err := edgar.DecodeCompanyFacts([]byte(fmt.Sprintf(`{
  "cik": "%s",
  "entityName": "Integration Co",
  "facts": {
    "us-gaap": {
      "%s": {"units": {"USD": [
        {"val": %s, "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03", "accn": "0000320193-23-000106"},
        {"val": "1,234.5", "fy": 2023, "fp": "Q1", "form": "10-Q", "filed": "2023-02-03"}
      ]}}
    },
    "dei": {
      "EntityCommonStockSharesOutstanding": {"units": {"shares": [
        {"val": 15550061000, "fy": 2023, "fp": "Q3", "form": "10-Q"}
      ]}}
    }
  }
}`, cik, concept, assets)))
	Expect(err).NotTo(HaveOccurred())
	return doc
}

func storedValues(ctx context.Context, myLibrary *library.Library, cik string) map[string]string {
	records, err := myLibrary.FactsForCompany(ctx, cik)
	Expect(err).NotTo(HaveOccurred())

	values := make(map[string]string, len(records))
	for _, record := range records {
		values[fmt.Sprintf("%s/%s/%s/%d/%s/%s", record.Taxonomy, record.Concept, record.Unit,
			record.FiscalYear, record.FiscalPeriod, record.FormType)] = record.Value
	}
	return values
}

func countRows(ctx context.Context, myLibrary *library.Library, sql string, args ...any) int {
	count := 0
	Expect(myLibrary.Pool.QueryRow(ctx, sql, args...).Scan(&count)).To(Succeed())
	return count
}

var _ = Describe("Postgres fact store", Ordered, Label("integration"), func() {
	var (
		dsn       string
		myLibrary *library.Library
		importer  *library.Importer
	)

	BeforeAll(func(ctx context.Context) {
		dsn = startPostgres(ctx)
		Expect(db.Migrate(dsn)).To(Succeed())
		Expect(db.Migrate(dsn)).To(Succeed())

		var err error
		myLibrary, err = library.New(ctx, dsn)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(myLibrary.Close)

		importer = library.NewImporter(myLibrary.Pool, library.NewResolver(myLibrary.ReferenceStore()))
	})

	It("leaves the tables unchanged when the same document is imported twice", func(ctx context.Context) {
		company := library.CompanyRef{CIK: "320193", Ticker: "AAPL", Name: "Apple Inc."}
		doc := companyDocument("320193", "Assets", "352583000000")

		first, err := importer.ImportFacts(ctx, company, xbrl.Normalize(doc))
		Expect(err).NotTo(HaveOccurred())
		Expect(first.NumFacts).To(Equal(3))
		Expect(first.Inserted).To(Equal(3))

		before := storedValues(ctx, myLibrary, "0000320193")
		Expect(before).To(HaveLen(3))
		Expect(before).To(HaveKeyWithValue("us-gaap/Assets/USD/2023/FY/10-K", "352583000000.000000"))
		Expect(before).To(HaveKeyWithValue("us-gaap/Assets/USD/2023/Q1/10-Q", "1234.500000"))

		second, err := importer.ImportFacts(ctx, company, xbrl.Normalize(doc))
		Expect(err).NotTo(HaveOccurred())
		Expect(second.CompanyID).To(Equal(first.CompanyID))
		Expect(second.Inserted).To(Equal(0))
		Expect(second.Updated).To(Equal(3))

		Expect(storedValues(ctx, myLibrary, "0000320193")).To(Equal(before))
		Expect(countRows(ctx, myLibrary, "SELECT count(*) FROM companies WHERE cik = $1", "0000320193")).To(Equal(1))
		Expect(countRows(ctx, myLibrary, "SELECT count(*) FROM facts f JOIN companies c ON c.id = f.company_id WHERE c.cik = $1", "0000320193")).To(Equal(3))
	})

	It("updates a restated value in place", func(ctx context.Context) {
		company := library.CompanyRef{CIK: "789019", Ticker: "MSFT"}

		_, err := importer.ImportFacts(ctx, company, xbrl.Normalize(companyDocument("789019", "Assets", "100")))
		Expect(err).NotTo(HaveOccurred())

		result, err := importer.ImportFacts(ctx, company, xbrl.Normalize(companyDocument("789019", "Assets", "\"250.125\"")))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Inserted).To(Equal(0))
		Expect(result.Updated).To(Equal(3))

		values := storedValues(ctx, myLibrary, "0000789019")
		Expect(values).To(HaveLen(3))
		Expect(values).To(HaveKeyWithValue("us-gaap/Assets/USD/2023/FY/10-K", "250.125000"))
	})

	It("creates one concept row and one id when two resolvers race", func(ctx context.Context) {
		store := myLibrary.ReferenceStore()
		resolvers := []*library.Resolver{library.NewResolver(store), library.NewResolver(store)}

		const workers = 16
		ids := make([]int64, workers)
		errs := make([]error, workers)

		var wg sync.WaitGroup
		start := make(chan struct{})
		for idx := 0; idx < workers; idx++ {
			wg.Add(1)
			go func(idx int) {
				defer GinkgoRecover()
				defer wg.Done()
				<-start
				ids[idx], errs[idx] = resolvers[idx%2].Concept(ctx, "us-gaap", "RaceConcept")
			}(idx)
		}

		close(start)
		wg.Wait()

		for idx := 0; idx < workers; idx++ {
			Expect(errs[idx]).NotTo(HaveOccurred())
			Expect(ids[idx]).To(Equal(ids[0]))
		}

		Expect(countRows(ctx, myLibrary, "SELECT count(*) FROM concepts WHERE taxonomy = $1 AND name = $2", "us-gaap", "RaceConcept")).To(Equal(1))
	})

	It("re-reads a concept created by another writer", func(ctx context.Context) {
		existing := &data.Concept{Taxonomy: "us-gaap", Name: "Preexisting"}
		Expect(existing.SaveDB(ctx, myLibrary.Pool)).To(Succeed())

		again := &data.Concept{Taxonomy: "us-gaap", Name: "Preexisting"}
		Expect(again.SaveDB(ctx, myLibrary.ReferencePool)).To(Succeed())
		Expect(again.ID).To(Equal(existing.ID))
	})

	It("imports new concepts with a single pooled connection", func(ctx context.Context) {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}

		narrow, err := library.New(ctx, dsn+separator+"pool_max_conns=1")
		Expect(err).NotTo(HaveOccurred())
		defer narrow.Close()

		narrowImporter := library.NewImporter(narrow.Pool, library.NewResolver(narrow.ReferenceStore()))

		importCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		defer cancel()

		result, err := narrowImporter.ImportFacts(importCtx, library.CompanyRef{CIK: "1018724"},
			xbrl.Normalize(companyDocument("1018724", "NarrowPoolConcept", "42")))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Inserted).To(Equal(3))
	})
})
