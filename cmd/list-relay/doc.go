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

// Package main implements the list-relay command-line interface.
// This tool downloads the monthly mbox archives of a mailing list, walking
// backward in time from the newest month until the range is exhausted or
// the list's archive appears to have started.
//
// The CLI supports:
//   - Fetching a range of months with --from and --until (YYYY-MM)
//   - Stopping after --max-failures consecutive empty or failed months
//   - Pacing requests with --request-interval (milliseconds)
//   - Writing an NDJSON manifest of the downloaded files
//   - Writing a metadata record of the run
//
// Usage:
//
//	list-relay fetch -l <list> -d <domain> [flags]
//
// Example:
//
//	list-relay fetch -l dev -d hadoop.apache.org --from 2015-01 -o ./emails
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Configuration error (invalid flags, config or output directory)
//   - 3: Network error
//   - 130: Interrupted
package main
