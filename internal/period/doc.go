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

// Package period provides the calendar year-month value used to address
// one month of archived mailing-list traffic, and the inclusive range of
// such months that a fetch walks through.
//
// A Period is a small immutable value. Ranges are always traversed from the
// most recent month back to the oldest one:
//
//	r, err := period.NewRange(period.New(2020, time.January), period.New(2020, time.March))
//	if err != nil {
//	    return err
//	}
//	for p := range r.Sequence() {
//	    fmt.Println(p) // 2020-03, 2020-02, 2020-01
//	}
package period
