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

package archive

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
	"github.com/sirseerhq/list-relay/internal/period"
	"github.com/sirseerhq/list-relay/internal/testutil"
)

var march2020 = period.New(2020, time.March)

func TestClient_RequestURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    url.Values
		wantErr bool
	}{
		{
			name:    "plain endpoint",
			baseURL: "https://lists.apache.org/api/mbox.lua",
			want:    url.Values{"domain": {"hadoop.apache.org"}, "list": {"dev"}, "d": {"2020-03"}},
		},
		{
			name:    "endpoint with existing query",
			baseURL: "https://archive.example.org/mbox?format=raw",
			want:    url.Values{"format": {"raw"}, "domain": {"hadoop.apache.org"}, "list": {"dev"}, "d": {"2020-03"}},
		},
		{
			name:    "relative url",
			baseURL: "/api/mbox.lua",
			wantErr: true,
		},
		{
			name:    "garbage",
			baseURL: "://nope",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(Options{BaseURL: tt.baseURL})
			got, err := c.RequestURL("hadoop.apache.org", "dev", march2020)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RequestURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("error = %v, want ErrInvalidRequest", err)
				}
				return
			}

			u, err := url.Parse(got)
			if err != nil {
				t.Fatalf("result is not a URL: %v", err)
			}
			q := u.Query()
			for k, v := range tt.want {
				if q.Get(k) != v[0] {
					t.Errorf("query %s = %q, want %q", k, q.Get(k), v[0])
				}
			}
		})
	}
}

func TestClient_FetchProduced(t *testing.T) {
	body := "From dev@hadoop.apache.org Mon Mar  2 10:00:00 2020\nSubject: hello\n\nbody\n"
	server := testutil.NewArchiveServer(t, map[string]testutil.Response{
		"2020-03": {Body: body},
	}, testutil.Response{})

	dir := t.TempDir()
	target := TargetPath(dir, "hadoop.apache.org", "dev", march2020, "mbox")

	c := NewClient(Options{BaseURL: server.URL + "/api/mbox.lua"})
	out := c.Fetch(context.Background(), "hadoop.apache.org", "dev", march2020, target)

	if out.Kind != Produced {
		t.Fatalf("Kind = %s, want produced (err: %v)", out.Kind, out.Err)
	}
	if out.Path != target {
		t.Errorf("Path = %s, want %s", out.Path, target)
	}
	if out.Size != int64(len(body)) {
		t.Errorf("Size = %d, want %d", out.Size, len(body))
	}
	if got := testutil.ReadFile(t, target); got != body {
		t.Errorf("file content = %q, want %q", got, body)
	}
	if filepath.Base(target) != "hadoop.apache.org_dev_2020-03.mbox" {
		t.Errorf("file name = %s", filepath.Base(target))
	}
	testutil.AssertNoFile(t, target+partSuffix)

	reqs := server.Requests()
	if len(reqs) != 1 {
		t.Fatalf("request count = %d, want 1", len(reqs))
	}
	q := reqs[0].URL.Query()
	if q.Get("domain") != "hadoop.apache.org" || q.Get("list") != "dev" || q.Get("d") != "2020-03" {
		t.Errorf("unexpected query: %s", reqs[0].URL.RawQuery)
	}
	if reqs[0].Method != http.MethodGet {
		t.Errorf("method = %s, want GET", reqs[0].Method)
	}
	if ua := reqs[0].Header.Get("User-Agent"); !strings.HasPrefix(ua, "list-relay/") {
		t.Errorf("User-Agent = %q, want list-relay/ prefix", ua)
	}
}

func TestClient_FetchEmpty(t *testing.T) {
	server := testutil.NewArchiveServer(t, nil, testutil.Response{Body: ""})

	dir := t.TempDir()
	target := filepath.Join(dir, "out.mbox")

	c := NewClient(Options{BaseURL: server.URL})
	out := c.Fetch(context.Background(), "example.org", "users", march2020, target)

	if out.Kind != Empty {
		t.Fatalf("Kind = %s, want empty (err: %v)", out.Kind, out.Err)
	}
	testutil.AssertNoFile(t, target)
	testutil.AssertNoFile(t, target+partSuffix)
}

func TestClient_FetchHTTPError(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			server := testutil.NewErrorServer(t, code)

			dir := t.TempDir()
			target := filepath.Join(dir, "out.mbox")

			c := NewClient(Options{BaseURL: server.URL})
			out := c.Fetch(context.Background(), "example.org", "users", march2020, target)

			if out.Kind != Failed {
				t.Fatalf("Kind = %s, want failed", out.Kind)
			}
			var statusErr *StatusError
			if !errors.As(out.Err, &statusErr) || statusErr.Code != code {
				t.Errorf("Err = %v, want StatusError with code %d", out.Err, code)
			}
			if got := Describe(out.Err); got != "httpStatus="+strconv.Itoa(code) {
				t.Errorf("Describe() = %q", got)
			}
			testutil.AssertNoFile(t, target)
			testutil.AssertNoFile(t, target+partSuffix)
		})
	}
}

func TestClient_FetchTimeout(t *testing.T) {
	server := testutil.NewTimeoutServer(t, 2*time.Second)

	dir := t.TempDir()
	target := filepath.Join(dir, "out.mbox")

	c := NewClient(Options{BaseURL: server.URL, Timeout: 100 * time.Millisecond})

	start := time.Now()
	out := c.Fetch(context.Background(), "example.org", "users", march2020, target)
	elapsed := time.Since(start)

	if out.Kind != Failed {
		t.Fatalf("Kind = %s, want failed", out.Kind)
	}
	if !errors.Is(out.Err, relayerrors.ErrTimeout) {
		t.Errorf("Err = %v, want ErrTimeout", out.Err)
	}
	if Describe(out.Err) != "timeout" {
		t.Errorf("Describe() = %q, want timeout", Describe(out.Err))
	}
	if elapsed > time.Second {
		t.Errorf("fetch took %v, timeout not applied", elapsed)
	}
	testutil.AssertNoFile(t, target)
}

func TestClient_FetchNetworkError(t *testing.T) {
	server := testutil.NewArchiveServer(t, nil, testutil.Response{Body: "x"})
	baseURL := server.URL
	server.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "out.mbox")

	c := NewClient(Options{BaseURL: baseURL})
	out := c.Fetch(context.Background(), "example.org", "users", march2020, target)

	if out.Kind != Failed {
		t.Fatalf("Kind = %s, want failed", out.Kind)
	}
	if !errors.Is(out.Err, relayerrors.ErrNetworkFailure) {
		t.Errorf("Err = %v, want ErrNetworkFailure", out.Err)
	}
	testutil.AssertNoFile(t, target)
}

func TestClient_FetchWriteError(t *testing.T) {
	server := testutil.NewArchiveServer(t, nil, testutil.Response{Body: "content"})

	target := filepath.Join(t.TempDir(), "missing-dir", "out.mbox")

	c := NewClient(Options{BaseURL: server.URL})
	out := c.Fetch(context.Background(), "example.org", "users", march2020, target)

	if out.Kind != Failed {
		t.Fatalf("Kind = %s, want failed", out.Kind)
	}
	if errors.Is(out.Err, relayerrors.ErrNetworkFailure) {
		t.Errorf("disk error classified as network failure: %v", out.Err)
	}
}

func TestClient_FetchInvalidInput(t *testing.T) {
	c := NewClient(DefaultOptions())
	dir := t.TempDir()

	tests := []struct {
		name   string
		domain string
		list   string
		p      period.Period
		target string
	}{
		{"empty domain", "", "dev", march2020, filepath.Join(dir, "a")},
		{"empty list", "example.org", "", march2020, filepath.Join(dir, "b")},
		{"zero period", "example.org", "dev", period.Period{}, filepath.Join(dir, "c")},
		{"empty target", "example.org", "dev", march2020, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.Fetch(context.Background(), tt.domain, tt.list, tt.p, tt.target)
			if out.Kind != Failed || !errors.Is(out.Err, ErrInvalidRequest) {
				t.Errorf("got %s / %v, want failed ErrInvalidRequest", out.Kind, out.Err)
			}
		})
	}
}

func TestClient_FetchOverwritesExisting(t *testing.T) {
	server := testutil.NewArchiveServer(t, nil, testutil.Response{Body: "new content"})

	dir := t.TempDir()
	target := filepath.Join(dir, "out.mbox")
	if err := os.WriteFile(target, []byte("old content that is longer"), 0o644); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	c := NewClient(Options{BaseURL: server.URL})
	out := c.Fetch(context.Background(), "example.org", "users", march2020, target)

	if out.Kind != Produced {
		t.Fatalf("Kind = %s, want produced", out.Kind)
	}
	if got := testutil.ReadFile(t, target); got != "new content" {
		t.Errorf("content = %q, want overwritten content", got)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"mbox", "hadoop.apache.org_dev_2020-03.mbox"},
		{"", "hadoop.apache.org_dev_2020-03.mbox"},
		{"txt", "hadoop.apache.org_dev_2020-03.txt"},
	}

	for _, tt := range tests {
		if got := FileName("hadoop.apache.org", "dev", march2020, tt.ext); got != tt.want {
			t.Errorf("FileName(ext=%q) = %s, want %s", tt.ext, got, tt.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	if Produced.String() != "produced" || Empty.String() != "empty" || Failed.String() != "failed" {
		t.Error("unexpected Kind names")
	}
	if Kind(42).String() != "kind(42)" {
		t.Errorf("Kind(42).String() = %s", Kind(42))
	}
}
