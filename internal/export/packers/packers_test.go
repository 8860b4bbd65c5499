// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package packers

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPath(t *testing.T) {
	test_cases := []struct {
		path     string
		expected Compression
		stripped string
	}{
		{"metrics.csv", RAW, "metrics.csv"},
		{"metrics.csv.zst", ZSTD, "metrics.csv"},
		{"forest.asc.LZ4", LZ4, "forest.asc"},
		{"patches.geojson.xz", LZMA, "patches.geojson"},
		{"records.pb.zz", ZLIB, "records.pb"},
	}

	for _, tc := range test_cases {
		t.Run(tc.path, func(t *testing.T) {
			c, stripped := ForPath(tc.path)
			assert.Equal(t, tc.expected, c)
			assert.Equal(t, tc.stripped, stripped)
		})
	}
}

func TestPackUnpack(t *testing.T) {
	payload := strings.Repeat("patch,weighted_patch_area\n1,1234.5\n", 200)

	for _, c := range []Compression{RAW, ZLIB, LZMA, LZ4, ZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer

			p, err := NewPacker(c, &buf)
			require.NoError(t, err)
			assert.Equal(t, c, p.Compression())

			_, err = io.WriteString(p, payload)
			require.NoError(t, err)
			require.NoError(t, p.Close())

			if c != RAW {
				assert.Less(t, buf.Len(), len(payload))
			}

			r, err := NewUnpacker(c, &buf)
			require.NoError(t, err)

			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestUnknownCompression(t *testing.T) {
	_, err := NewPacker(Compression(42), io.Discard)
	assert.Error(t, err)

	_, err = NewUnpacker(Compression(42), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnknownCompressionType)
}
