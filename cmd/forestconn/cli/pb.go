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

package cli

import (
	"fmt"
	"io"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"

	"m4o.io/forestconn/internal/export/packers"
)

// progressBar is an instance of ReadCloser with an associated ProgressBar.
// Closing this instance closes the delegate as well as clearing the terminal
// line of progress output.
type progressBar struct {
	r   io.ReadCloser
	f   *os.File
	bar *pb.ProgressBar
}

// OpenInput opens path, decompressing according to its extension. With
// progress set, a bar on stderr tracks the compressed bytes read relative
// to the file size.
func OpenInput(path string, progress bool) (io.ReadCloser, error) {
	c, _ := packers.ForPath(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var src io.Reader = f
	var bar *pb.ProgressBar

	if progress {
		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, err
		}

		bar = pb.New(int(fi.Size())).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
		bar.Output = os.Stderr
		bar.Start()

		src = bar.NewProxyReader(f)
	}

	r, err := packers.NewUnpacker(c, src)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return progressBar{r: r, f: f, bar: bar}, nil
}

// Read implements io.Reader.Read by simple delegation.
func (pb progressBar) Read(p []byte) (int, error) {
	return pb.r.Read(p)
}

// Close implements io.Closer.Close by closing the decompressor and the
// file as well as clearing the terminal line of progress output.
func (pb progressBar) Close() error {
	if pb.bar != nil {
		// make sure newline is not printed by Finish()
		pb.bar.Output = nil
		pb.bar.NotPrint = true

		pb.bar.Finish()

		fmt.Fprintf(os.Stderr, "\033[2K\r") // clear status bar
	}

	if err := pb.r.Close(); err != nil {
		_ = pb.f.Close()
		return err
	}

	return pb.f.Close()
}
