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
package xbrl

import "strings"

// FormSet is the set of filing form types whose facts are imported. Lookups are exact: "10-K "
// and "10-k" are not 10-K.
type FormSet map[string]struct{}

// DefaultForms holds the annual and quarterly report forms
var DefaultForms = NewFormSet("10-K", "10-Q")

func NewFormSet(forms ...string) FormSet {
	set := make(FormSet, len(forms))
	for _, form := range forms {
		form = strings.TrimSpace(form)
		if form == "" {
			continue
		}
		set[form] = struct{}{}
	}
	return set
}

func (set FormSet) Contains(form string) bool {
	_, ok := set[form]
	return ok
}
