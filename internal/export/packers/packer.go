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

// Package packers compresses and decompresses exported files, choosing the
// codec from the file name extension.
package packers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Compression identifies a codec.
type Compression int

const (
	RAW Compression = iota
	ZLIB
	LZMA
	LZ4
	ZSTD
)

var extensions = map[string]Compression{
	".zz":  ZLIB,
	".xz":  LZMA,
	".lz4": LZ4,
	".zst": ZSTD,
}

func (c Compression) String() string {
	switch c {
	case RAW:
		return "raw"
	case ZLIB:
		return "zlib"
	case LZMA:
		return "xz"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// ForPath returns the codec the path's extension calls for and the path
// with that extension removed.
func ForPath(path string) (Compression, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := extensions[ext]; ok {
		return c, strings.TrimSuffix(path, filepath.Ext(path))
	}

	return RAW, path
}

// Packer is the interface of the compressing writers. Close flushes the
// codec but leaves the destination open.
type Packer interface {
	io.WriteCloser

	// Compression returns the codec of the packer.
	Compression() Compression
}

type base struct {
	io.WriteCloser
	c Compression
}

func newBasePacker(w io.WriteCloser, c Compression) *base {
	return &base{WriteCloser: w, c: c}
}

func (b *base) Compression() Compression { return b.c }

// NewPacker creates the packer for c writing into w.
func NewPacker(c Compression, w io.Writer) (Packer, error) {
	switch c {
	case RAW:
		return NewRawPacker(w), nil
	case ZLIB:
		return NewZlibPacker(w), nil
	case LZMA:
		return NewXzPacker(w)
	case LZ4:
		return NewLz4Packer(w), nil
	case ZSTD:
		return NewZstdPacker(w)
	default:
		return nil, fmt.Errorf("unknown compression type: %v", c)
	}
}
