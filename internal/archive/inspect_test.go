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
	"fmt"
	"testing"

	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
)

func TestFailureInspector_IsTimeout(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "sentinel timeout",
			err:  fmt.Errorf("%w after 5s", relayerrors.ErrTimeout),
			want: true,
		},
		{
			name: "context deadline",
			err:  fmt.Errorf("get: %w", context.DeadlineExceeded),
			want: true,
		},
		{
			name: "i/o timeout text",
			err:  errors.New("read tcp 10.0.0.1:443: i/o timeout"),
			want: true,
		},
		{
			name: "canceled is not a timeout",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsTimeout(tt.err); got != tt.want {
				t.Errorf("IsTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailureInspector_IsNetworkError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "connection refused",
			err:  errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
			want: true,
		},
		{
			name: "no such host",
			err:  errors.New("lookup lists.invalid: no such host"),
			want: true,
		},
		{
			name: "wrapped sentinel",
			err:  fmt.Errorf("fetch: %w", relayerrors.ErrNetworkFailure),
			want: true,
		},
		{
			name: "status error",
			err:  &StatusError{Code: 500},
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsNetworkError(tt.err); got != tt.want {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailureInspector_StatusCode(t *testing.T) {
	inspector := NewInspector()

	code, ok := inspector.StatusCode(fmt.Errorf("period 2020-03: %w", &StatusError{Code: 503}))
	if !ok || code != 503 {
		t.Errorf("StatusCode() = %d, %v, want 503, true", code, ok)
	}

	if _, ok := inspector.StatusCode(errors.New("boom")); ok {
		t.Error("StatusCode() ok = true for plain error")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"status", &StatusError{Code: 500}, "httpStatus=500"},
		{"timeout", fmt.Errorf("%w after 5s", relayerrors.ErrTimeout), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"other", errors.New("disk full"), "disk full"},
		{"nil", nil, "unknown failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
