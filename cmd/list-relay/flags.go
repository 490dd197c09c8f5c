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

package main

import (
	"github.com/spf13/pflag"

	"github.com/sirseerhq/list-relay/internal/period"
)

// periodValue is a pflag.Value for YYYY-MM flags.
type periodValue struct {
	p *period.Period
}

var _ pflag.Value = periodValue{}

func newPeriodValue(p *period.Period) periodValue {
	return periodValue{p: p}
}

func (v periodValue) String() string {
	if v.p == nil || v.p.IsZero() {
		return ""
	}
	return v.p.String()
}

func (v periodValue) Set(s string) error {
	p, err := period.Parse(s)
	if err != nil {
		return err
	}
	*v.p = p
	return nil
}

func (v periodValue) Type() string {
	return "YYYY-MM"
}
