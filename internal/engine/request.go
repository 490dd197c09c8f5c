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

package engine

import (
	"fmt"
	"strings"
	"time"

	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
	"github.com/sirseerhq/list-relay/internal/period"
)

// Request describes one download. It is passed by value and not modified
// while the download runs.
type Request struct {
	Domain    string
	List      string
	OutputDir string

	// First and Last bound the months to fetch, inclusive. The walk starts
	// at Last.
	First period.Period
	Last  period.Period

	// MaxConsecutiveUnproductive is the number of empty or failed months in
	// a row after which the walk stops. Must be at least 1.
	MaxConsecutiveUnproductive int

	// MinRequestInterval is the minimum spacing between two requests.
	MinRequestInterval time.Duration

	// APIBaseURL is the archive endpoint. It is only consulted when the
	// engine has no Fetcher of its own.
	APIBaseURL string

	// Extension of the written files, "mbox" when empty.
	Extension string

	// SkipExisting treats a month whose file is already present and
	// non-empty as produced, without sending a request.
	SkipExisting bool
}

// Validate checks the request for configuration errors. Every error it
// returns wraps errors.ErrConfiguration.
func (r Request) Validate() error {
	if err := checkName("domain", r.Domain); err != nil {
		return err
	}
	if err := checkName("list", r.List); err != nil {
		return err
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return fmt.Errorf("%w: output directory is required", relayerrors.ErrConfiguration)
	}
	if r.MaxConsecutiveUnproductive < 1 {
		return fmt.Errorf("%w: max consecutive unproductive periods must be at least 1, got %d",
			relayerrors.ErrConfiguration, r.MaxConsecutiveUnproductive)
	}
	if r.MinRequestInterval < 0 {
		return fmt.Errorf("%w: request interval must not be negative, got %s",
			relayerrors.ErrConfiguration, r.MinRequestInterval)
	}
	if strings.ContainsAny(r.Extension, `/\`) {
		return fmt.Errorf("%w: invalid file extension %q", relayerrors.ErrConfiguration, r.Extension)
	}
	if _, err := period.NewRange(r.First, r.Last); err != nil {
		return err
	}
	return nil
}

// Range returns the validated period range of the request.
func (r Request) Range() (period.Range, error) {
	return period.NewRange(r.First, r.Last)
}

// checkName rejects names that cannot be embedded in a file name.
func checkName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", relayerrors.ErrConfiguration, field)
	}
	if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
		return fmt.Errorf("%w: invalid %s %q", relayerrors.ErrConfiguration, field, value)
	}
	return nil
}
