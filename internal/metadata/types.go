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

// Package metadata types define the structures used for tracking and
// persisting information about fetch operations. These types capture
// per-run statistics and an audit record of what was downloaded.
package metadata

import (
	"time"

	"github.com/sirseerhq/list-relay/internal/period"
)

// FetchMetadata represents the complete metadata record for a single fetch
// operation. It captures what was requested, how it was paced, and what
// came back, so a later reader can tell why a run stopped where it did.
type FetchMetadata struct {
	RelayVersion  string       `json:"relay_version"`
	MethodVersion string       `json:"method_version"`
	FetchID       string       `json:"fetch_id"`
	Parameters    FetchParams  `json:"parameters"`
	Results       FetchResults `json:"results"`
	Files         []string     `json:"files"`
}

// FetchParams captures the input parameters used for a fetch operation.
type FetchParams struct {
	Domain                     string        `json:"domain"`
	List                       string        `json:"list"`
	From                       period.Period `json:"from"`
	Until                      period.Period `json:"until"`
	MaxConsecutiveUnproductive int           `json:"max_consecutive_unproductive"`
	RequestIntervalMillis      int64         `json:"request_interval_ms"`
	APIURL                     string        `json:"api_url"`
	SkipExisting               bool          `json:"skip_existing"`
}

// FetchResults contains statistics about a completed fetch operation.
// Oldest and newest are omitted when nothing was produced.
type FetchResults struct {
	StopReason     string         `json:"stop_reason"`
	PeriodsVisited int            `json:"periods_visited"`
	Produced       int            `json:"produced"`
	Empty          int            `json:"empty"`
	Failed         int            `json:"failed"`
	Skipped        int            `json:"skipped"`
	TotalBytes     int64          `json:"total_bytes"`
	OldestPeriod   *period.Period `json:"oldest_period,omitempty"`
	NewestPeriod   *period.Period `json:"newest_period,omitempty"`
	Duration       string         `json:"fetch_duration"`
	RequestCount   int            `json:"requests_made"`
	StartedAt      time.Time      `json:"started_at"`
	CompletedAt    time.Time      `json:"completed_at"`
}
