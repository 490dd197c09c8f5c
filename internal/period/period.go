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
	"fmt"
	"time"
)

// Layout is the canonical textual form of a Period, as understood by the
// archive endpoint.
const Layout = "2006-01"

// Period is a calendar year and month. The zero value is not a valid
// period; use New, Parse or FromTime.
type Period struct {
	year  int
	month time.Month
}

// New returns the period for the given year and month. Months outside
// 1..12 are normalized the way time.Date normalizes them, so
// New(2020, 13) is 2021-01.
func New(year int, month time.Month) Period {
	return FromTime(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the period containing t, in t's location.
func FromTime(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

// Now returns the current period in the local time zone.
func Now() Period {
	return FromTime(time.Now())
}

// Parse parses a period in YYYY-MM form.
func Parse(s string) (Period, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q, expected YYYY-MM", s)
	}
	return FromTime(t), nil
}

// Year returns the calendar year.
func (p Period) Year() int { return p.year }

// Month returns the calendar month.
func (p Period) Month() time.Month { return p.month }

// IsZero reports whether p is the zero value.
func (p Period) IsZero() bool { return p.year == 0 && p.month == 0 }

// Previous returns the period one month before p.
func (p Period) Previous() Period { return p.AddMonths(-1) }

// Next returns the period one month after p.
func (p Period) Next() Period { return p.AddMonths(1) }

// AddMonths returns p shifted by n months, which may be negative.
func (p Period) AddMonths(n int) Period {
	return New(p.year, p.month+time.Month(n))
}

// Compare returns -1 if p is before q, +1 if p is after q and 0 if they
// are equal.
func (p Period) Compare(q Period) int {
	a, b := p.index(), q.index()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool { return p.Compare(q) < 0 }

// After reports whether p is strictly later than q.
func (p Period) After(q Period) bool { return p.Compare(q) > 0 }

// Equal reports whether p and q denote the same month.
func (p Period) Equal(q Period) bool { return p.Compare(q) == 0 }

// String renders the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// MarshalText implements encoding.TextMarshaler. The zero Period
// marshals to empty text.
func (p Period) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return []byte{}, nil
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = Period{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MonthsBetween returns the number of months from a to b. It is negative
// when b is before a.
func MonthsBetween(a, b Period) int {
	return b.index() - a.index()
}

func (p Period) index() int {
	return p.year*12 + int(p.month) - 1
}
