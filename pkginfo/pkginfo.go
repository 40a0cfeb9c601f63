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
package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// Set at link time with -ldflags "-X github.com/penny-vault/secfacts/pkginfo.Version=..."
var (
	BuildDate  string
	CommitHash string
	Version    string
)

const devVersion = "dev"

// Info describes the running binary
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit"`
	BuildDate  string `json:"buildDate"`
	GoVersion  string `json:"goVersion"`
	Platform   string `json:"platform"`
}

// Current returns build details. Values not provided at link time are filled from the VCS
// stamp go build embeds in the binary.
func Current() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			info.Version = buildInfo.Main.Version
		}

		for _, setting := range buildInfo.Settings {
			switch {
			case setting.Key == "vcs.revision" && info.CommitHash == "":
				info.CommitHash = setting.Value
			case setting.Key == "vcs.time" && info.BuildDate == "":
				info.BuildDate = setting.Value
			}
		}
	}

	if info.Version == "" {
		info.Version = devVersion
	}

	return info
}

// UserAgent returns the User-Agent sent to EDGAR. The SEC asks automated clients to identify
// themselves with a contact address.
func UserAgent(contact string) string {
	version := Version
	if version == "" {
		version = devVersion
	}

	contact = strings.TrimSpace(contact)
	if contact == "" {
		return fmt.Sprintf("secfacts/%s", version)
	}

	return fmt.Sprintf("secfacts/%s (%s)", version, contact)
}

func (info Info) String() string {
	return fmt.Sprintf(`secfacts %s %s

Build Date: %s
Commit: %s
Built with: %s`, info.Version, info.Platform, info.BuildDate, info.CommitHash, info.GoVersion)
}

// Dependencies lists every module linked into the binary as path="version", sorted by path
func Dependencies() []string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		log.Error().Msg("could not get package build info")
		return nil
	}

	deps := make([]string, 0, len(buildInfo.Deps))
	for _, dep := range buildInfo.Deps {
		version := dep.Version
		if dep.Replace != nil {
			version = dep.Replace.Version
		}
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, version))
	}

	slices.Sort(deps)
	return deps
}
