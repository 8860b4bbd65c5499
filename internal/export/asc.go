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

package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/model"
)

// DefaultNoData marks unset pixels in ASCII grids.
const DefaultNoData = -9999.0

// WriteASCIIGrid writes the layer as an ESRI ASCII grid. Unset pixels are
// written as nodata.
func WriteASCIIGrid[T raster.Number](w io.Writer, l *raster.Layer[T], nodata float64) error {
	g := l.Grid
	b := g.Bound()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "ncols %d\nnrows %d\n", g.Cols, g.Rows)
	fmt.Fprintf(bw, "xllcorner %s\nyllcorner %s\n", ftoa(b.Min[0]), ftoa(b.Min[1]))
	fmt.Fprintf(bw, "cellsize %s\nNODATA_value %s\n", ftoa(g.Resolution), ftoa(nodata))

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col > 0 {
				_ = bw.WriteByte(' ')
			}

			if v, ok := l.At(col, row); ok {
				_, _ = bw.WriteString(ftoa(float64(v)))
			} else {
				_, _ = bw.WriteString(ftoa(nodata))
			}
		}

		_ = bw.WriteByte('\n')
	}

	return bw.Flush()
}

// ReadASCIIGrid reads an ESRI ASCII grid. The format carries no CRS, so the
// caller names it. Pixels equal to the nodata value are unset.
func ReadASCIIGrid(r io.Reader, crs string) (*raster.Layer[float64], error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), math.MaxInt32)
	sc.Split(bufio.ScanWords)

	header := make(map[string]float64)
	var first string

	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = key
			break
		}

		if !sc.Scan() {
			break
		}

		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("ascii grid header %s: %w", key, ErrFormat)
		}

		header[key] = v
	}

	g, nodata, err := asciiGrid(header, crs)
	if err != nil {
		return nil, err
	}

	l := raster.New[float64](g)
	n := l.Len()
	i := 0

	put := func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("ascii grid value %q: %w", s, ErrFormat)
		}

		if v != nodata {
			l.Put(i, v)
		}

		i++

		return nil
	}

	if first != "" {
		if err := put(first); err != nil {
			return nil, err
		}
	}

	for i < n && sc.Scan() {
		if err := put(sc.Text()); err != nil {
			return nil, err
		}
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	if i != n {
		return nil, fmt.Errorf("ascii grid has %d of %d values: %w", i, n, ErrFormat)
	}

	return l, nil
}

func asciiGrid(h map[string]float64, crs string) (model.Grid, float64, error) {
	cols, rows, size := h["ncols"], h["nrows"], h["cellsize"]
	if cols <= 0 || rows <= 0 || size <= 0 {
		return model.Grid{}, 0, fmt.Errorf("ascii grid header %v: %w", h, ErrFormat)
	}

	minX, okX := h["xllcorner"]
	minY, okY := h["yllcorner"]

	if cx, ok := h["xllcenter"]; ok && !okX {
		minX, okX = cx-size/2, true
	}

	if cy, ok := h["yllcenter"]; ok && !okY {
		minY, okY = cy-size/2, true
	}

	if !okX || !okY {
		return model.Grid{}, 0, fmt.Errorf("ascii grid has no origin: %w", ErrFormat)
	}

	nodata, ok := h["nodata_value"]
	if !ok {
		nodata = DefaultNoData
	}

	g := model.Grid{
		CRS:        crs,
		Resolution: size,
		MinX:       minX,
		MaxY:       minY + rows*size,
		Cols:       int(cols),
		Rows:       int(rows),
	}

	return g, nodata, nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
