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
	"fmt"
	"path/filepath"

	"github.com/sirseerhq/list-relay/internal/period"
)

// DefaultExtension is the file extension used for Apache mbox archives.
const DefaultExtension = "mbox"

// FileName returns the deterministic file name for one period of a list:
// <domain>_<list>_<YYYY-MM>.<ext>.
func FileName(domain, list string, p period.Period, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return fmt.Sprintf("%s_%s_%s.%s", domain, list, p, ext)
}

// TargetPath joins dir with FileName.
func TargetPath(dir, domain, list string, p period.Period, ext string) string {
	return filepath.Join(dir, FileName(domain, list, p, ext))
}
