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

// Package output writes the manifest of a fetch run in NDJSON (Newline
// Delimited JSON) format: one line per archive file that was produced, in
// the order the files were completed.
//
// Example usage:
//
//	w, err := output.NewFileWriter("manifest.ndjson")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	for _, f := range result.Records {
//	    if err := w.Write(output.Entry{Period: f.Period.String(), Path: f.Path, Bytes: f.Size}); err != nil {
//	        log.Printf("Failed to write manifest entry: %v", err)
//	    }
//	}
package output
