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

// Package engine walks a range of months backward in time and downloads the
// archive of one mailing list for each month.
//
// A download runs as a single background task. Months are processed strictly
// one after another: each request first passes a rate gate, then the month is
// fetched and classified as produced, empty or failed. Empty and failed
// months both count as unproductive; after MaxConsecutiveUnproductive of
// them in a row the walk stops, on the assumption that older months predate
// the list. A produced month resets the count.
//
// Download returns a Handle immediately. The handle resolves once, with the
// paths of the files that were written. Failures of individual months never
// fail the handle; only an invalid Request does, before any request is sent.
//
// Example usage:
//
//	eng := engine.New(engine.Options{})
//	h := eng.Download(ctx, engine.Request{
//	    Domain:                     "hadoop.apache.org",
//	    List:                       "dev",
//	    OutputDir:                  "./emails",
//	    First:                      period.New(2015, time.January),
//	    Last:                       period.Now(),
//	    MaxConsecutiveUnproductive: 10,
//	    MinRequestInterval:         time.Second,
//	    APIBaseURL:                 archive.DefaultBaseURL,
//	}, func(msg string) { fmt.Fprintln(os.Stderr, msg) })
//
//	res, err := h.Wait(ctx)
package engine
