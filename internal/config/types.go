// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config types define the configuration structures used throughout
// list-relay. These types represent settings that can be loaded from YAML or
// TOML configuration files, environment variables, or command-line flags.
package config

import (
	"time"

	"github.com/sirseerhq/list-relay/internal/period"
)

// Config represents the complete configuration for list-relay.
type Config struct {
	Archive  ArchiveConfig         `yaml:"archive" toml:"archive"`
	Defaults DefaultsConfig        `yaml:"defaults" toml:"defaults"`
	Lists    map[string]ListConfig `yaml:"lists" toml:"lists"`
}

// ArchiveConfig describes the remote archive endpoint. Pointing APIURL at a
// mirror or a local test server is the main reason to have a config file.
type ArchiveConfig struct {
	APIURL    string        `yaml:"api_url" toml:"api_url"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout"`
	Extension string        `yaml:"extension" toml:"extension"`
}

// DefaultsConfig contains settings that apply to every list unless
// overridden under Lists or on the command line.
type DefaultsConfig struct {
	OutputDir string `yaml:"output_dir" toml:"output_dir"`
	// MaxFailures is the number of consecutive unproductive months after
	// which a walk stops.
	MaxFailures int `yaml:"max_failures" toml:"max_failures"`
	// RequestIntervalMillis is the minimum spacing between requests.
	RequestIntervalMillis int64 `yaml:"request_interval_ms" toml:"request_interval_ms"`
	// YearsBack sets the default first month relative to the current one.
	YearsBack int    `yaml:"years_back" toml:"years_back"`
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	// SkipExisting keeps months whose file is already present.
	SkipExisting bool `yaml:"skip_existing" toml:"skip_existing"`
}

// ListConfig contains overrides for one list, keyed by "list@domain".
// A zero MaxFailures or From leaves the default in place. A nil
// RequestIntervalMillis does too; a zero one turns pacing off.
type ListConfig struct {
	MaxFailures           int           `yaml:"max_failures" toml:"max_failures"`
	RequestIntervalMillis *int64        `yaml:"request_interval_ms" toml:"request_interval_ms"`
	From                  period.Period `yaml:"from" toml:"from"`
}

// DefaultConfig returns a Config with the defaults of the Apache archive.
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			APIURL:    "https://lists.apache.org/api/mbox.lua",
			Timeout:   5 * time.Second,
			Extension: "mbox",
		},
		Defaults: DefaultsConfig{
			OutputDir:             "./emails",
			MaxFailures:           10,
			RequestIntervalMillis: 1000,
			YearsBack:             10,
			LogLevel:              "info",
		},
		Lists: make(map[string]ListConfig),
	}
}
