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

package vector

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/model"
)

// ErrGap is returned for a negative or NaN gap crossing distance.
var ErrGap = errors.New("vector: invalid gap")

// Traversable and Barrier are the classes of a traversability mask.
const (
	Barrier     uint8 = 0
	Traversable uint8 = 1
)

// Bridge builds the traversability mask: a pixel is traversable when its
// centre lies within gap/2 of a forest polygon, which is the rasterized
// union of every polygon buffered outward by gap/2 with round joins. Every
// pixel of the result is set.
func Bridge(fc model.FeatureCollection, g model.Grid, gap float64) (*raster.Layer[uint8], error) {
	if gap < 0 || math.IsNaN(gap) {
		return nil, fmt.Errorf("gap %v: %w", gap, ErrGap)
	}

	mask := raster.Filled(g, Barrier)
	r := gap / 2

	for _, p := range fc.Polygons() {
		raster.Spans(g, p, func(row, c0, c1 int) {
			for col := c0; col < c1; col++ {
				mask.Set(col, row, Traversable)
			}
		})

		if r == 0 {
			continue
		}

		for _, ring := range p {
			for i := 0; i+1 < len(ring); i++ {
				capsule(mask, ring[i], ring[i+1], r)
			}

			if !ring.Closed() && len(ring) > 1 {
				capsule(mask, ring[len(ring)-1], ring[0], r)
			}
		}
	}

	return mask, nil
}

// capsule marks every pixel whose centre is within r of the segment ab.
func capsule(mask *raster.Layer[uint8], a, b orb.Point, r float64) {
	g := mask.Grid
	bound := orb.Bound{Min: a, Max: a}.Extend(b).Pad(r)

	w, ok := g.Window(bound)
	if !ok {
		return
	}

	dc, dr := g.Offset(w)

	for row := dr; row < dr+w.Rows; row++ {
		for col := dc; col < dc+w.Cols; col++ {
			idx := g.Index(col, row)
			if v, _ := mask.Get(idx); v == Traversable {
				continue
			}

			if planar.DistanceFromSegment(a, b, g.Center(col, row)) <= r {
				mask.Put(idx, Traversable)
			}
		}
	}
}
