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

// Package config provides configuration management for list-relay with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. List-specific configuration ("list@domain" entries of the file)
//  4. Defaults section of the file
//  5. Built-in defaults
//
// Files ending in .toml are parsed as TOML, everything else as YAML.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
	"github.com/sirseerhq/list-relay/internal/period"
)

// Environment variables that override file settings.
const (
	EnvAPIURL          = "LIST_RELAY_API_URL"
	EnvOutputDir       = "LIST_RELAY_OUTPUT_DIR"
	EnvMaxFailures     = "LIST_RELAY_MAX_FAILURES"
	EnvRequestInterval = "LIST_RELAY_REQUEST_INTERVAL_MS"
	EnvTimeout         = "LIST_RELAY_TIMEOUT"
	EnvLogLevel        = "LIST_RELAY_LOG_LEVEL"
	EnvSkipExisting    = "LIST_RELAY_SKIP_EXISTING"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .list-relay.yaml, .list-relay.yml, .list-relay.toml (current directory)
//   - ~/.list-relay/config.yaml, config.yml, config.toml
//
// Environment variables are applied after loading the config file. Returns
// an error if the specified config file cannot be loaded, but succeeds with
// defaults if no config file is found in the standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		for _, path := range defaultPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Defaults.OutputDir = expandPath(cfg.Defaults.OutputDir)
	if cfg.Lists == nil {
		cfg.Lists = make(map[string]ListConfig)
	}

	return cfg, nil
}

func defaultPaths() []string {
	home := homeDir()
	return []string{
		".list-relay.yaml",
		".list-relay.yml",
		".list-relay.toml",
		filepath.Join(home, ".list-relay", "config.yaml"),
		filepath.Join(home, ".list-relay", "config.yml"),
		filepath.Join(home, ".list-relay", "config.toml"),
	}
}

// loadConfigFile reads and parses a YAML or TOML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Unparsable values are ignored.
func applyEnvOverrides(cfg *Config) {
	if apiURL := os.Getenv(EnvAPIURL); apiURL != "" {
		cfg.Archive.APIURL = apiURL
	}
	if timeout := os.Getenv(EnvTimeout); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Archive.Timeout = d
		}
	}

	if outputDir := os.Getenv(EnvOutputDir); outputDir != "" {
		cfg.Defaults.OutputDir = outputDir
	}
	// Environment values also replace the per-list overrides of the file.
	if maxFailures := os.Getenv(EnvMaxFailures); maxFailures != "" {
		if n, err := parsePositiveInt(maxFailures); err == nil {
			cfg.Defaults.MaxFailures = n
			for key, lc := range cfg.Lists {
				lc.MaxFailures = 0
				cfg.Lists[key] = lc
			}
		}
	}
	if interval := os.Getenv(EnvRequestInterval); interval != "" {
		if n, err := parseNonNegativeInt(interval); err == nil {
			cfg.Defaults.RequestIntervalMillis = int64(n)
			for key, lc := range cfg.Lists {
				lc.RequestIntervalMillis = nil
				cfg.Lists[key] = lc
			}
		}
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Defaults.LogLevel = level
	}
	if skip := os.Getenv(EnvSkipExisting); skip != "" {
		cfg.Defaults.SkipExisting = parseBool(skip)
	}
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE") // Windows
	}
	return home
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	i, err := parseNonNegativeInt(s)
	if err != nil {
		return 0, err
	}
	if i == 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

func parseNonNegativeInt(s string) (int, error) {
	var i int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &i); err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i < 0 {
		return 0, fmt.Errorf("value must not be negative, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// ListKey returns the key of a list in the Lists section.
func ListKey(list, domain string) string {
	return list + "@" + domain
}

// GetMaxFailures returns the effective unproductive threshold for a list.
func (c *Config) GetMaxFailures(key string) int {
	if lc, ok := c.Lists[key]; ok && lc.MaxFailures > 0 {
		return lc.MaxFailures
	}
	return c.Defaults.MaxFailures
}

// GetRequestInterval returns the effective request spacing for a list.
func (c *Config) GetRequestInterval(key string) time.Duration {
	ms := c.Defaults.RequestIntervalMillis
	if lc, ok := c.Lists[key]; ok && lc.RequestIntervalMillis != nil {
		ms = *lc.RequestIntervalMillis
	}
	return time.Duration(ms) * time.Millisecond
}

// GetFrom returns the first month to fetch for a list when no --from is
// given: the list's own setting, or YearsBack years before now.
func (c *Config) GetFrom(key string, now period.Period) period.Period {
	if lc, ok := c.Lists[key]; ok && !lc.From.IsZero() {
		return lc.From
	}
	return now.AddMonths(-12 * c.Defaults.YearsBack)
}

// Validate checks if the configuration contains valid values. Every error
// it returns wraps errors.ErrConfiguration.
func (c *Config) Validate() error {
	if c.Defaults.MaxFailures <= 0 {
		return fmt.Errorf("%w: max failures must be positive, got: %d",
			relayerrors.ErrConfiguration, c.Defaults.MaxFailures)
	}
	if c.Defaults.RequestIntervalMillis < 0 {
		return fmt.Errorf("%w: request interval must not be negative, got: %d",
			relayerrors.ErrConfiguration, c.Defaults.RequestIntervalMillis)
	}
	if c.Defaults.YearsBack < 0 {
		return fmt.Errorf("%w: years back must not be negative, got: %d",
			relayerrors.ErrConfiguration, c.Defaults.YearsBack)
	}
	if c.Archive.Timeout <= 0 {
		return fmt.Errorf("%w: archive timeout must be positive, got: %s",
			relayerrors.ErrConfiguration, c.Archive.Timeout)
	}
	if err := validateURL(c.Archive.APIURL); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if strings.ContainsAny(c.Archive.Extension, `/\`) {
		return fmt.Errorf("%w: invalid extension %q", relayerrors.ErrConfiguration, c.Archive.Extension)
	}
	for key, lc := range c.Lists {
		list, domain, ok := strings.Cut(key, "@")
		if !ok || list == "" || domain == "" {
			return fmt.Errorf("%w: list key %q must have the form list@domain",
				relayerrors.ErrConfiguration, key)
		}
		if lc.MaxFailures < 0 || (lc.RequestIntervalMillis != nil && *lc.RequestIntervalMillis < 0) {
			return fmt.Errorf("%w: negative override for %s", relayerrors.ErrConfiguration, key)
		}
	}
	return nil
}

// LogLevel parses Defaults.LogLevel. An empty level means info.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Defaults.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Defaults.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: invalid log level %q",
			relayerrors.ErrConfiguration, c.Defaults.LogLevel)
	}
	return level, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: archive API URL cannot be empty", relayerrors.ErrConfiguration)
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: archive API URL %q is not an absolute URL",
			relayerrors.ErrConfiguration, raw)
	}
	return nil
}
