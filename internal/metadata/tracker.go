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

// Package metadata provides functionality for tracking and persisting metadata
// about fetch operations. It records how many periods were visited, how many
// produced files, came back empty or failed, the bytes written and the span
// of months that actually held traffic.
//
// The metadata system serves several purposes:
//   - Provides an audit trail of what each run downloaded
//   - Enables troubleshooting by recording fetch parameters
//   - Records why a run stopped (range exhausted or unproductive run)
//
// Metadata is written as a JSON file next to the downloaded archives. It is
// an output only: a later run never reads it back.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sirseerhq/list-relay/internal/period"
)

const (
	// MethodVersion identifies the archive access method
	MethodVersion = "mbox-monthly-v1"
)

// Stats is a snapshot of the counters gathered by a Tracker.
type Stats struct {
	PeriodsVisited int
	Produced       int
	Empty          int
	Failed         int
	Skipped        int
	TotalBytes     int64
	RequestCount   int
	Oldest         period.Period // zero when nothing was produced
	Newest         period.Period // zero when nothing was produced
	StartedAt      time.Time
	CompletedAt    time.Time
}

// Tracker collects statistics during a fetch operation. Create a new
// tracker at the start of each fetch and record every period as it is
// processed. A Tracker belongs to one sequential fetch and is not safe for
// concurrent use.
type Tracker struct {
	stats Stats
}

// New creates a new metadata tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		stats: Stats{StartedAt: time.Now()},
	}
}

// IncrementRequest records that a request was sent to the archive.
func (t *Tracker) IncrementRequest() {
	t.stats.RequestCount++
}

// RecordProduced records a period that yielded a file of size bytes.
func (t *Tracker) RecordProduced(p period.Period, size int64) {
	t.stats.PeriodsVisited++
	t.stats.Produced++
	t.stats.TotalBytes += size
	t.updateSpan(p)
}

// RecordSkipped records a period whose file already existed.
func (t *Tracker) RecordSkipped(p period.Period, size int64) {
	t.stats.PeriodsVisited++
	t.stats.Skipped++
	t.stats.TotalBytes += size
	t.updateSpan(p)
}

// RecordEmpty records a period with no content.
func (t *Tracker) RecordEmpty() {
	t.stats.PeriodsVisited++
	t.stats.Empty++
}

// RecordFailed records a period whose fetch failed.
func (t *Tracker) RecordFailed() {
	t.stats.PeriodsVisited++
	t.stats.Failed++
}

// Finish stamps the completion time.
func (t *Tracker) Finish() {
	t.stats.CompletedAt = time.Now()
}

// Stats returns a snapshot of the collected counters.
func (t *Tracker) Stats() Stats {
	return t.stats
}

func (t *Tracker) updateSpan(p period.Period) {
	if t.stats.Oldest.IsZero() || p.Before(t.stats.Oldest) {
		t.stats.Oldest = p
	}
	if t.stats.Newest.IsZero() || p.After(t.stats.Newest) {
		t.stats.Newest = p
	}
}

// GenerateMetadata creates a FetchMetadata record from the parameters of a
// run and the statistics it gathered.
//
// Parameters:
//   - relayVersion: The version of list-relay (from version.Version)
//   - params: The fetch parameters used for this operation
//   - stats: The tracker snapshot taken when the run completed
//   - stopReason: Why the run ended
//   - files: The produced file paths, in completion order
func GenerateMetadata(relayVersion string, params FetchParams, stats Stats, stopReason string, files []string) *FetchMetadata {
	completedAt := stats.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	results := FetchResults{
		StopReason:     stopReason,
		PeriodsVisited: stats.PeriodsVisited,
		Produced:       stats.Produced,
		Empty:          stats.Empty,
		Failed:         stats.Failed,
		Skipped:        stats.Skipped,
		TotalBytes:     stats.TotalBytes,
		Duration:       completedAt.Sub(stats.StartedAt).String(),
		RequestCount:   stats.RequestCount,
		StartedAt:      stats.StartedAt,
		CompletedAt:    completedAt,
	}
	if !stats.Oldest.IsZero() {
		oldest, newest := stats.Oldest, stats.Newest
		results.OldestPeriod = &oldest
		results.NewestPeriod = &newest
	}
	if files == nil {
		files = []string{}
	}

	return &FetchMetadata{
		RelayVersion:  relayVersion,
		MethodVersion: MethodVersion,
		FetchID:       uuid.NewString(),
		Parameters:    params,
		Results:       results,
		Files:         files,
	}
}

// SaveMetadata persists a FetchMetadata record to a JSON file in dir. The
// file is written atomically using a temporary file and rename.
//
// The metadata file will be named: fetch-metadata-{timestamp}.json
//
// Returns the path of the written file.
func SaveMetadata(metadata *FetchMetadata, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create metadata directory: %w", err)
	}

	filename := fmt.Sprintf("fetch-metadata-%d.json", metadata.Results.StartedAt.Unix())
	path := filepath.Join(dir, filename)

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to save metadata file: %w", err)
	}

	return path, nil
}

// WriteMetadataToWriter serializes metadata to indented JSON.
func WriteMetadataToWriter(metadata *FetchMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
