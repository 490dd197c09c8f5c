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

// Package archive fetches one month of mailing-list traffic from a remote
// archive endpoint and writes it to a file.
//
// The endpoint is addressed as
//
//	GET <base>?domain=<domain>&list=<list>&d=<YYYY-MM>
//
// and answers with the raw archive content (mbox for the Apache archive) for
// that month. Every fetch is classified into an Outcome: Produced when a
// non-empty file was written, Empty when the server returned no content, or
// Failed for timeouts, HTTP error statuses and I/O errors. Transport and
// disk failures are reported through the Outcome, never as a panic or a
// separate error return, so a caller walking many months can treat one bad
// month as just another unproductive one.
//
// Example usage:
//
//	client := archive.NewClient(archive.DefaultOptions())
//	out := client.Fetch(ctx, "hadoop.apache.org", "dev", period.New(2020, time.March),
//	    filepath.Join(dir, archive.FileName("hadoop.apache.org", "dev", p, "mbox")))
//	if out.Kind == archive.Produced {
//	    fmt.Printf("wrote %d bytes to %s\n", out.Size, out.Path)
//	}
package archive
