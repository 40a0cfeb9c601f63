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
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// cikWidth is the fixed width EDGAR uses for central index keys in URLs and file names.
const cikWidth = 10

var (
	ErrInvalidCIK = errors.New("invalid cik")
)

// CIK is a central index key normalized to its 10-digit zero-padded form. It decodes from
// either a JSON number or a JSON string.
type CIK string

// NormalizeCIK returns the 10-digit, left-zero-padded form of a central index key. The
// input may already be padded, may carry a "CIK" prefix, and may have surrounding space.
func NormalizeCIK(cik string) (string, error) {
	trimmed := strings.TrimSpace(cik)
	if len(trimmed) >= 3 && strings.EqualFold(trimmed[:3], "CIK") {
		trimmed = trimmed[3:]
	}

	if trimmed == "" || len(trimmed) > cikWidth {
		return "", eris.Wrapf(ErrInvalidCIK, "%q", cik)
	}

	for _, ch := range trimmed {
		if ch < '0' || ch > '9' {
			return "", eris.Wrapf(ErrInvalidCIK, "%q", cik)
		}
	}

	return strings.Repeat("0", cikWidth-len(trimmed)) + trimmed, nil
}

// FormatCIK pads a numeric central index key to 10 digits
func FormatCIK(cik int64) (string, error) {
	if cik < 0 || cik > 9_999_999_999 {
		return "", eris.Wrapf(ErrInvalidCIK, "%d", cik)
	}
	return fmt.Sprintf("%0*d", cikWidth, cik), nil
}

func (cik *CIK) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*cik = ""
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		normalized, err := NormalizeCIK(s)
		if err != nil {
			return err
		}

		*cik = CIK(normalized)
		return nil
	}

	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return eris.Wrapf(ErrInvalidCIK, "unsupported cik token %s", raw)
	}

	formatted, err := FormatCIK(n)
	if err != nil {
		return err
	}

	*cik = CIK(formatted)
	return nil
}

func (cik CIK) String() string {
	return string(cik)
}
