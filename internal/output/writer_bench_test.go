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

import (
	"fmt"
	"io"
	"testing"
)

// sampleEntry creates a manifest entry for a month of a long-lived list
func sampleEntry(i int) Entry {
	return Entry{
		Period: fmt.Sprintf("%04d-%02d", 2024-i/12, 12-i%12),
		Path:   fmt.Sprintf("/data/emails/hadoop.apache.org_dev_%04d-%02d.mbox", 2024-i/12, 12-i%12),
		Bytes:  int64(1<<20 + i),
	}
}

// BenchmarkWriter_Write benchmarks writing single entries
func BenchmarkWriter_Write(b *testing.B) {
	w := NewWriter(io.Discard)
	e := sampleEntry(1)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := w.Write(e); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFileWriter_Write benchmarks a manifest for twenty years of months
func BenchmarkFileWriter_Write(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		w, err := NewFileWriter(b.TempDir() + "/bench.ndjson")
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		for j := 0; j < 240; j++ {
			if err := w.Write(sampleEntry(j)); err != nil {
				b.Fatal(err)
			}
		}

		b.StopTimer()
		w.Close()
		b.StartTimer()
	}
}
