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

// Package testutil provides common test helpers for list-relay
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Response describes how the mock archive answers one period.
type Response struct {
	Status int           // default 200
	Body   string        // empty body means an empty month
	Delay  time.Duration // sleep before answering
}

// ArchiveServer is an httptest server that mimics the mbox endpoint. It
// answers by the "d" query parameter and records every request.
type ArchiveServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	fallback  Response
	requests  []*http.Request
}

// NewArchiveServer creates a mock archive. Periods missing from responses
// are answered with fallback.
func NewArchiveServer(t *testing.T, responses map[string]Response, fallback Response) *ArchiveServer {
	t.Helper()

	s := &ArchiveServer{
		responses: responses,
		fallback:  fallback,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// NewErrorServer creates a mock archive that always returns statusCode.
func NewErrorServer(t *testing.T, statusCode int) *ArchiveServer {
	t.Helper()
	return NewArchiveServer(t, nil, Response{Status: statusCode, Body: http.StatusText(statusCode)})
}

// NewTimeoutServer creates a mock archive that answers every request after
// delay.
func NewTimeoutServer(t *testing.T, delay time.Duration) *ArchiveServer {
	t.Helper()
	return NewArchiveServer(t, nil, Response{Body: "late", Delay: delay})
}

func (s *ArchiveServer) handle(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("d")

	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(r.Context()))
	resp, ok := s.responses[period]
	if !ok {
		resp = s.fallback
	}
	s.mu.Unlock()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/mbox")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}

// Requests returns a snapshot of the recorded requests.
func (s *ArchiveServer) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*http.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestedPeriods returns the "d" parameter of every request, in order.
func (s *ArchiveServer) RequestedPeriods() []string {
	reqs := s.Requests()
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.URL.Query().Get("d"))
	}
	return out
}

// RequestCount returns the number of requests served.
func (s *ArchiveServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
