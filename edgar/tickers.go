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
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Ticker is one entry of the company_tickers.json listing
type Ticker struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

func (client *Client) TickersURL() string {
	return client.opts.WWWURL + "/files/company_tickers.json"
}

// CompanyTickers downloads the ticker to CIK listing published by the SEC. The listing is
// returned in the order of the file's numeric keys.
func (client *Client) CompanyTickers(ctx context.Context) ([]*Ticker, error) {
	body, err := client.get(ctx, client.TickersURL())
	if err != nil {
		return nil, err
	}

	var listing map[string]*Ticker
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, eris.Wrapf(ErrDecode, "company tickers: %v", err)
	}

	keys := make([]string, 0, len(listing))
	for key, ticker := range listing {
		if ticker == nil {
			continue
		}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	tickers := make([]*Ticker, 0, len(keys))
	for _, key := range keys {
		tickers = append(tickers, listing[key])
	}

	return tickers, nil
}
