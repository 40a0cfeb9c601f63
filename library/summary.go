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
	"fmt"
	"net/url"
	"strings"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# SEC Company Facts\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Database connection string
	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", redactURL(myLibrary.DBUrl))); err != nil {
		return "", err
	}

	counts := []struct {
		label string
		count func(context.Context) (int, error)
	}{
		{"Symbols", myLibrary.NumSymbols},
		{"Companies", myLibrary.NumCompanies},
		{"Concepts", myLibrary.NumConcepts},
		{"Units", myLibrary.NumUnits},
		{"Total Facts", myLibrary.TotalFacts},
	}

	for _, item := range counts {
		count, err := item.count(ctx)
		if err != nil {
			return "", err
		}

		if _, err := builder.WriteString(p.Sprintf("  * %s: %d\n", item.label, count)); err != nil {
			return "", err
		}
	}

	if _, err := builder.WriteString("\n"); err != nil {
		return "", err
	}

	// Last refresh time
	lastRefreshed, err := myLibrary.LastRefreshed(ctx)
	if err != nil {
		return "", err
	}

	if lastRefreshed.Year() <= 1 {
		if _, err := builder.WriteString("Last Refreshed: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		age := timeago.English.Format(lastRefreshed)
		if _, err := builder.WriteString(fmt.Sprintf("Last Refreshed: %s (%s)\n\n", age, lastRefreshed.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}

// redactURL hides the password of a database URL
func redactURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}
	return u.Redacted()
}
