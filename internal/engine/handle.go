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
	"context"
	"errors"
)

// ErrPending is returned by Handle.Result while the download is running.
var ErrPending = errors.New("download still running")

// Handle is the eventual result of a download. It resolves exactly once.
type Handle struct {
	done   chan struct{}
	result Result
	err    error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// resolve must be called exactly once.
func (h *Handle) resolve(res Result, err error) {
	h.result = res
	h.err = err
	close(h.done)
}

// Done returns a channel that is closed when the download has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the download finishes or ctx is done. Canceling ctx
// abandons the wait only; the download keeps running.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the outcome without blocking, or ErrPending.
func (h *Handle) Result() (Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	default:
		return Result{}, ErrPending
	}
}
