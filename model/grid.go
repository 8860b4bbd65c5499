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

package model

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// ErrGridMismatch is returned when two rasters or vectors that take part in
// one computation do not share CRS, resolution and pixel lattice.
var ErrGridMismatch = errors.New("grid mismatch")

// ErrEmptyGrid is returned when a grid has no pixels.
var ErrEmptyGrid = errors.New("empty grid")

// Grid is the explicit pixel lattice every raster is laid out on. The
// origin is the upper left corner of the pixel at column 0, row 0; rows
// grow downwards.
type Grid struct {
	CRS        string  `json:"crs"`
	Resolution float64 `json:"resolution"`
	MinX       float64 `json:"min_x"`
	MaxY       float64 `json:"max_y"`
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
}

// NewGrid creates the smallest grid of the given resolution that covers the
// bound. The origin is snapped to a multiple of the resolution so that grids
// built over different bounds share one lattice.
func NewGrid(crs string, resolution float64, b orb.Bound) (Grid, error) {
	if resolution <= 0 || math.IsNaN(resolution) {
		return Grid{}, fmt.Errorf("resolution %s: %w", ftoa(resolution), ErrEmptyGrid)
	}

	minX := math.Floor(b.Min[0]/resolution) * resolution
	maxY := math.Ceil(b.Max[1]/resolution) * resolution
	cols := int(math.Ceil((b.Max[0]-minX)/resolution - float64(E9)))
	rows := int(math.Ceil((maxY-b.Min[1])/resolution - float64(E9)))

	if cols <= 0 || rows <= 0 {
		return Grid{}, fmt.Errorf("bound %v: %w", b, ErrEmptyGrid)
	}

	return Grid{CRS: crs, Resolution: resolution, MinX: minX, MaxY: maxY, Cols: cols, Rows: rows}, nil
}

// Check verifies that o lies on the same lattice as g: identical CRS and
// resolution, and origins that differ by whole pixels.
func (g Grid) Check(o Grid) error {
	if !strings.EqualFold(strings.TrimSpace(g.CRS), strings.TrimSpace(o.CRS)) {
		return fmt.Errorf("crs %q != %q: %w", g.CRS, o.CRS, ErrGridMismatch)
	}

	if !EqualWithin(g.Resolution, o.Resolution, E9) {
		return fmt.Errorf("resolution %s != %s: %w", ftoa(g.Resolution), ftoa(o.Resolution), ErrGridMismatch)
	}

	if !aligned(o.MinX-g.MinX, g.Resolution) || !aligned(g.MaxY-o.MaxY, g.Resolution) {
		return fmt.Errorf("origin (%s, %s) not on lattice of (%s, %s): %w",
			ftoa(o.MinX), ftoa(o.MaxY), ftoa(g.MinX), ftoa(g.MaxY), ErrGridMismatch)
	}

	return nil
}

// Same verifies that o is exactly g, as required between a cost raster and
// its source raster.
func (g Grid) Same(o Grid) error {
	if err := g.Check(o); err != nil {
		return err
	}

	dc, dr := g.Offset(o)
	if dc != 0 || dr != 0 || g.Cols != o.Cols || g.Rows != o.Rows {
		return fmt.Errorf("extent %s != %s: %w", o, g, ErrGridMismatch)
	}

	return nil
}

// Pixels returns the number of pixels in the grid.
func (g Grid) Pixels() int64 {
	return int64(g.Cols) * int64(g.Rows)
}

// PixelArea returns the planar area of one pixel.
func (g Grid) PixelArea() float64 {
	return g.Resolution * g.Resolution
}

// GeodeticPixelArea returns the area, in square metres, of a pixel in the
// given row when the grid is laid out in longitude/latitude degrees.
func (g Grid) GeodeticPixelArea(row int) float64 {
	b := g.CellBound(0, row)
	loop := s2.LoopFromPoints([]s2.Point{
		s2.PointFromLatLng(s2.LatLngFromDegrees(b.Min[1], b.Min[0])),
		s2.PointFromLatLng(s2.LatLngFromDegrees(b.Min[1], b.Max[0])),
		s2.PointFromLatLng(s2.LatLngFromDegrees(b.Max[1], b.Max[0])),
		s2.PointFromLatLng(s2.LatLngFromDegrees(b.Max[1], b.Min[0])),
	})

	return loop.Area() * orb.EarthRadius * orb.EarthRadius
}

// Bound returns the extent covered by the grid.
func (g Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.MinX, g.MaxY - float64(g.Rows)*g.Resolution},
		Max: orb.Point{g.MinX + float64(g.Cols)*g.Resolution, g.MaxY},
	}
}

// Index returns the row-major offset of the pixel.
func (g Grid) Index(col, row int) int {
	return row*g.Cols + col
}

// Contains checks if the pixel lies inside the grid.
func (g Grid) Contains(col, row int) bool {
	return col >= 0 && col < g.Cols && row >= 0 && row < g.Rows
}

// Center returns the centre of the pixel.
func (g Grid) Center(col, row int) orb.Point {
	return orb.Point{
		g.MinX + (float64(col)+Half)*g.Resolution,
		g.MaxY - (float64(row)+Half)*g.Resolution,
	}
}

// CellBound returns the extent of the pixel.
func (g Grid) CellBound(col, row int) orb.Bound {
	x := g.MinX + float64(col)*g.Resolution
	y := g.MaxY - float64(row+1)*g.Resolution

	return orb.Bound{Min: orb.Point{x, y}, Max: orb.Point{x + g.Resolution, y + g.Resolution}}
}

// Cell returns the pixel that contains the point. Points on a shared edge
// belong to the pixel to the right and below.
func (g Grid) Cell(p orb.Point) (col, row int, ok bool) {
	col = int(math.Floor((p[0] - g.MinX) / g.Resolution))
	row = int(math.Floor((g.MaxY - p[1]) / g.Resolution))

	return col, row, g.Contains(col, row)
}

// Window returns the sub-grid of whole pixels that covers the bound, clipped
// to g. The second return is false when the bound misses the grid.
func (g Grid) Window(b orb.Bound) (Grid, bool) {
	c0 := int(math.Floor((b.Min[0]-g.MinX)/g.Resolution + float64(E9)))
	c1 := int(math.Ceil((b.Max[0]-g.MinX)/g.Resolution - float64(E9)))
	r0 := int(math.Floor((g.MaxY-b.Max[1])/g.Resolution + float64(E9)))
	r1 := int(math.Ceil((g.MaxY-b.Min[1])/g.Resolution - float64(E9)))

	c0, c1 = max(c0, 0), min(c1, g.Cols)
	r0, r1 = max(r0, 0), min(r1, g.Rows)

	if c1 <= c0 || r1 <= r0 {
		return Grid{}, false
	}

	return Grid{
		CRS:        g.CRS,
		Resolution: g.Resolution,
		MinX:       g.MinX + float64(c0)*g.Resolution,
		MaxY:       g.MaxY - float64(r0)*g.Resolution,
		Cols:       c1 - c0,
		Rows:       r1 - r0,
	}, true
}

// Offset returns the column and row of sub's origin pixel within g.
func (g Grid) Offset(sub Grid) (dc, dr int) {
	return int(math.Round((sub.MinX - g.MinX) / g.Resolution)),
		int(math.Round((g.MaxY - sub.MaxY) / g.Resolution))
}

func (g Grid) String() string {
	return fmt.Sprintf("%s %dx%d@%s (%s, %s)",
		g.CRS, g.Cols, g.Rows, ftoa(g.Resolution), ftoa(g.MinX), ftoa(g.MaxY))
}
