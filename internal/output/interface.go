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

package output

// Entry is one manifest line.
type Entry struct {
	Period  string `json:"period"`
	Path    string `json:"path"`
	Bytes   int64  `json:"bytes"`
	Skipped bool   `json:"skipped,omitempty"`
}

// ManifestWriter defines the interface for writing manifest entries.
type ManifestWriter interface {
	// Write writes a single entry and flushes it.
	Write(entry Entry) error

	// Close closes the underlying writer and releases any resources.
	Close() error
}
