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

package metadata

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirseerhq/list-relay/internal/period"
)

func TestTracker_RecordOutcomes(t *testing.T) {
	tr := New()

	tr.IncrementRequest()
	tr.RecordProduced(period.New(2020, time.March), 100)
	tr.IncrementRequest()
	tr.RecordEmpty()
	tr.IncrementRequest()
	tr.RecordFailed()
	tr.RecordSkipped(period.New(2019, time.November), 50)
	tr.IncrementRequest()
	tr.RecordProduced(period.New(2020, time.January), 25)
	tr.Finish()

	got := tr.Stats()
	if got.PeriodsVisited != 5 {
		t.Errorf("PeriodsVisited = %d, want 5", got.PeriodsVisited)
	}
	if got.Produced != 2 || got.Empty != 1 || got.Failed != 1 || got.Skipped != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 2/1/1/1", got.Produced, got.Empty, got.Failed, got.Skipped)
	}
	if got.TotalBytes != 175 {
		t.Errorf("TotalBytes = %d, want 175", got.TotalBytes)
	}
	if got.RequestCount != 4 {
		t.Errorf("RequestCount = %d, want 4", got.RequestCount)
	}
	if got.Oldest.String() != "2019-11" {
		t.Errorf("Oldest = %s, want 2019-11", got.Oldest)
	}
	if got.Newest.String() != "2020-03" {
		t.Errorf("Newest = %s, want 2020-03", got.Newest)
	}
	if got.CompletedAt.Before(got.StartedAt) {
		t.Error("CompletedAt before StartedAt")
	}
}

func TestTracker_NoProductivePeriods(t *testing.T) {
	tr := New()
	tr.RecordEmpty()
	tr.RecordEmpty()
	tr.Finish()

	md := GenerateMetadata("test", FetchParams{Domain: "example.org", List: "dev"}, tr.Stats(), "unproductive-run", nil)
	if md.Results.OldestPeriod != nil || md.Results.NewestPeriod != nil {
		t.Error("expected no period span when nothing was produced")
	}
	if md.Files == nil || len(md.Files) != 0 {
		t.Errorf("Files = %v, want empty slice", md.Files)
	}
}

func TestGenerateMetadata(t *testing.T) {
	tr := New()
	tr.IncrementRequest()
	tr.RecordProduced(period.New(2021, time.May), 10)
	tr.Finish()

	params := FetchParams{
		Domain:                     "hadoop.apache.org",
		List:                       "dev",
		From:                       period.New(2011, time.May),
		Until:                      period.New(2021, time.May),
		MaxConsecutiveUnproductive: 10,
		RequestIntervalMillis:      1000,
		APIURL:                     "https://lists.apache.org/api/mbox.lua",
	}

	md := GenerateMetadata("v1.0.0", params, tr.Stats(), "exhausted", []string{"a.mbox"})

	if md.RelayVersion != "v1.0.0" {
		t.Errorf("RelayVersion = %s, want v1.0.0", md.RelayVersion)
	}
	if md.MethodVersion != MethodVersion {
		t.Errorf("MethodVersion = %s, want %s", md.MethodVersion, MethodVersion)
	}
	if len(md.FetchID) != 36 {
		t.Errorf("FetchID = %q, want a UUID", md.FetchID)
	}
	if md.Results.StopReason != "exhausted" {
		t.Errorf("StopReason = %s, want exhausted", md.Results.StopReason)
	}
	if md.Results.Produced != 1 || md.Results.RequestCount != 1 {
		t.Errorf("Results = %+v", md.Results)
	}
	if md.Results.Duration == "" {
		t.Error("Duration should be set")
	}

	other := GenerateMetadata("v1.0.0", params, tr.Stats(), "exhausted", nil)
	if other.FetchID == md.FetchID {
		t.Error("expected unique fetch IDs")
	}
}

func TestSaveMetadata(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	tr := New()
	tr.RecordProduced(period.New(2020, time.February), 42)
	tr.Finish()
	md := GenerateMetadata("test", FetchParams{Domain: "example.org", List: "users"}, tr.Stats(), "exhausted", []string{"x"})

	path, err := SaveMetadata(md, dir)
	if err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "fetch-metadata-") || filepath.Ext(path) != ".json" {
		t.Errorf("unexpected metadata file name %s", path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read metadata: %v", err)
	}

	var loaded FetchMetadata
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to parse metadata: %v", err)
	}
	if loaded.Parameters.Domain != "example.org" {
		t.Errorf("Domain = %s, want example.org", loaded.Parameters.Domain)
	}
	if loaded.Results.NewestPeriod == nil || loaded.Results.NewestPeriod.String() != "2020-02" {
		t.Errorf("NewestPeriod = %v, want 2020-02", loaded.Results.NewestPeriod)
	}
}

func TestWriteMetadataToWriter(t *testing.T) {
	md := GenerateMetadata("test", FetchParams{Domain: "example.org"}, New().Stats(), "exhausted", nil)

	var buf bytes.Buffer
	if err := WriteMetadataToWriter(md, &buf); err != nil {
		t.Fatalf("WriteMetadataToWriter failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"stop_reason": "exhausted"`) {
		t.Errorf("output missing stop reason:\n%s", buf.String())
	}
}
