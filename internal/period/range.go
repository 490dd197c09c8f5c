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

package period

import (
	"errors"
	"fmt"
	"iter"

	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
)

// ErrInvalidRange is returned by NewRange when the first period is after
// the last one. It is a configuration error.
var ErrInvalidRange = fmt.Errorf("invalid period range: %w", relayerrors.ErrConfiguration)

// Range is an inclusive span of periods. It is always iterated from Last
// back to First.
type Range struct {
	first Period
	last  Period
}

// NewRange returns the range [first, last]. It fails with ErrInvalidRange
// if first is after last or either bound is the zero Period.
func NewRange(first, last Period) (Range, error) {
	if first.IsZero() || last.IsZero() {
		return Range{}, fmt.Errorf("%w: bounds must be set", ErrInvalidRange)
	}
	if first.After(last) {
		return Range{}, fmt.Errorf("%w: first period %s is after last period %s", ErrInvalidRange, first, last)
	}
	return Range{first: first, last: last}, nil
}

// First returns the oldest period of the range.
func (r Range) First() Period { return r.first }

// Last returns the most recent period of the range.
func (r Range) Last() Period { return r.last }

// Len returns the number of periods in the range.
func (r Range) Len() int {
	return MonthsBetween(r.first, r.last) + 1
}

// Sequence yields the periods of the range from Last down to First. The
// returned sequence may be iterated any number of times.
func (r Range) Sequence() iter.Seq[Period] {
	return func(yield func(Period) bool) {
		for p := r.last; !p.Before(r.first); p = p.Previous() {
			if !yield(p) {
				return
			}
		}
	}
}

// Sequence is a convenience for NewRange followed by Range.Sequence.
func Sequence(first, last Period) (iter.Seq[Period], error) {
	r, err := NewRange(first, last)
	if err != nil {
		return nil, err
	}
	return r.Sequence(), nil
}

// IsInvalidRange reports whether err was caused by an invalid range.
func IsInvalidRange(err error) bool {
	return errors.Is(err, ErrInvalidRange)
}
