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
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
)

var ErrUnknownCompressionType = errors.New("unknown compression type")

// NewUnpacker returns a reader that decompresses r with codec c. Closing it
// releases the codec but not r.
func NewUnpacker(c Compression, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case RAW:
		return io.NopCloser(r), nil
	case ZLIB:
		return zlib.NewReader(r)
	case LZMA:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("unpacker factory error: %w", err)
		}

		return io.NopCloser(xr), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case ZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("unpacker factory error: %w", err)
		}

		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%v: %w", c, ErrUnknownCompressionType)
	}
}
