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

package costdist

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/model"
)

// Zone clips a cost raster to the pixels whose centres lie within radius
// of center. The result lives on the window of the disk's bounds and holds
// the costs as float64.
func Zone[T raster.Number](cost *raster.Layer[T], center orb.Point, radius float64) (*raster.Layer[float64], error) {
	b := orb.Bound{Min: center, Max: center}.Pad(radius)

	w, ok := cost.Grid.Window(b)
	if !ok {
		return nil, fmt.Errorf("zone around %v: %w", center, ErrOutsideGrid)
	}

	zone := raster.New[float64](w)
	dc, dr := cost.Grid.Offset(w)

	for row := 0; row < w.Rows; row++ {
		for col := 0; col < w.Cols; col++ {
			v, ok := cost.At(col+dc, row+dr)
			if !ok || planar.Distance(w.Center(col, row), center) > radius {
				continue
			}

			zone.Set(col, row, float64(v))
		}
	}

	return zone, nil
}

// Source builds the seed raster on g: every pixel is 0 except the one
// holding p, which carries id.
func Source(g model.Grid, p orb.Point, id int64) (*raster.Layer[int64], error) {
	if id == 0 {
		return nil, fmt.Errorf("seed id must be non-zero: %w", ErrNoSource)
	}

	col, row, ok := g.Cell(p)
	if !ok {
		return nil, fmt.Errorf("seed %v: %w", p, ErrOutsideGrid)
	}

	return Source(g, g.Center(col, row), id)
}

// Seed is Source on the grid of a zone raster for a point that may sit on
// a pixel edge or corner. Of the pixels whose closed extent holds p, the
// first with a valid cost is seeded; when none is, the pixel Cell picks is
// seeded and Accumulate reports ErrSourceMasked.
func Seed(zone *raster.Layer[float64], p orb.Point, id int64) (*raster.Layer[int64], error) {
	g := zone.Grid
	c0, r0, ok := g.Cell(p)
	col, row := c0, r0

	for _, d := range [][2]int{{0, 0}, {-1, 0}, {0, -1}, {-1, -1}} {
		c, r := c0+d[0], r0+d[1]
		if !g.Contains(c, r) {
			continue
		}

		if d != [2]int{0, 0} && !g.CellBound(c, r).Contains(p) {
			continue
		}

		if !ok {
			col, row, ok = c, r, true
		}

		if _, valid := zone.At(c, r); valid {
			col, row = c, r
			break
		}
	}

	if !ok {
		return nil, fmt.Errorf("seed %v: %w", p, ErrOutsideGrid)
	}

	return Source(g, g.Center(col, row), id)
}
