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
	"net"
	"strings"

	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
)

// Inspector classifies the failure reason carried by a Failed outcome.
type Inspector interface {
	// IsTimeout returns true if the request exceeded its deadline.
	IsTimeout(err error) bool

	// IsNetworkError returns true if the server could not be reached or the
	// connection broke.
	IsNetworkError(err error) bool

	// StatusCode returns the HTTP status of an error response.
	StatusCode(err error) (int, bool)
}

// FailureInspector implements Inspector using the error chain first and
// the error text as a fallback.
type FailureInspector struct{}

// NewInspector creates a new FailureInspector.
func NewInspector() Inspector {
	return &FailureInspector{}
}

// IsTimeout checks if the error is a timeout.
func (i *FailureInspector) IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relayerrors.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *FailureInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relayerrors.ErrNetworkFailure) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}

// StatusCode extracts the status of a StatusError in the chain.
func (i *FailureInspector) StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}

// Describe renders a failure reason for progress output.
func Describe(err error) string {
	if err == nil {
		return "unknown failure"
	}
	inspector := NewInspector()
	if code, ok := inspector.StatusCode(err); ok {
		return fmt.Sprintf("httpStatus=%d", code)
	}
	switch {
	case inspector.IsTimeout(err):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case inspector.IsNetworkError(err):
		return fmt.Sprintf("network error: %v", err)
	default:
		return err.Error()
	}
}
