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
package cmd

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

var _ = Describe("Init settings", func() {
	It("are read back under the configuration keys", func() {
		conf := settings{
			DB:    dbSettings{URL: "postgres://facts@localhost/facts"},
			Edgar: edgarSettings{Contact: "ops@example.com"},
		}

		configData, err := toml.Marshal(conf)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(configData)).NotTo(ContainSubstring("ping_id"))

		v := viper.New()
		v.SetConfigType("toml")
		Expect(v.ReadConfig(bytes.NewReader(configData))).To(Succeed())

		Expect(v.GetString("db.url")).To(Equal("postgres://facts@localhost/facts"))
		Expect(v.GetString("edgar.contact")).To(Equal("ops@example.com"))
		Expect(v.GetString("healthchecks.ping_id")).To(BeEmpty())
	})
})
