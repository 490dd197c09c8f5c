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
	"fmt"

	"github.com/sirseerhq/list-relay/internal/period"
)

// Fetcher retrieves the archive content of one list for one period and
// writes it to target.
type Fetcher interface {
	// Fetch performs a single request and classifies its result. Failures
	// of the request or of the file write are returned as a Failed outcome.
	Fetch(ctx context.Context, domain, list string, p period.Period, target string) Outcome
}

// Kind tags the variant held by an Outcome.
type Kind int

const (
	// Produced means a non-empty file was written to Outcome.Path.
	Produced Kind = iota
	// Empty means the server answered successfully with no content.
	Empty
	// Failed means the request or the write failed; see Outcome.Err.
	Failed
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Produced:
		return "produced"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the classified result of one fetch.
type Outcome struct {
	Kind Kind
	Path string // set for Produced
	Size int64  // bytes written, set for Produced
	Err  error  // set for Failed
}

// ProducedOutcome returns a Produced outcome for a file of size bytes.
func ProducedOutcome(path string, size int64) Outcome {
	return Outcome{Kind: Produced, Path: path, Size: size}
}

// EmptyOutcome returns an Empty outcome.
func EmptyOutcome() Outcome {
	return Outcome{Kind: Empty}
}

// FailedOutcome returns a Failed outcome carrying err as its reason.
func FailedOutcome(err error) Outcome {
	return Outcome{Kind: Failed, Err: err}
}

// Productive reports whether the outcome yielded usable content.
func (o Outcome) Productive() bool {
	return o.Kind == Produced
}
