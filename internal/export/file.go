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

// Package export reads and writes the vector, raster and tabular files of
// the pipelines. Every path may carry a compression extension.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"m4o.io/forestconn/internal/export/packers"
)

// ErrFormat is returned for a file whose content or extension is not
// understood.
var ErrFormat = errors.New("export: unsupported format")

// Format returns the lower case extension of path once any compression
// extension has been removed, e.g. ".csv" for "metrics.csv.zst".
func Format(path string) string {
	_, stripped := packers.ForPath(path)
	return strings.ToLower(filepath.Ext(stripped))
}

type packedFile struct {
	packers.Packer
	f *os.File
}

func (p *packedFile) Close() error {
	return errors.Join(p.Packer.Close(), p.f.Close())
}

// Create creates path, compressing what is written according to its
// extension. Close flushes the codec and closes the file.
func Create(path string) (io.WriteCloser, error) {
	c, _ := packers.ForPath(path)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	p, err := packers.NewPacker(c, f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &packedFile{Packer: p, f: f}, nil
}

type unpackedFile struct {
	io.ReadCloser
	f *os.File
}

func (u *unpackedFile) Close() error {
	return errors.Join(u.ReadCloser.Close(), u.f.Close())
}

// Open opens path, decompressing according to its extension.
func Open(path string) (io.ReadCloser, error) {
	c, _ := packers.ForPath(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := packers.NewUnpacker(c, f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &unpackedFile{ReadCloser: r, f: f}, nil
}
