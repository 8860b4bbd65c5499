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

// Package patch turns a traversability mask into patch polygons, one per
// 8-connected component of traversable pixels.
package patch

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"m4o.io/forestconn/internal/raster"
)

// ErrTopology is returned when a component does not trace to exactly one
// shell.
var ErrTopology = errors.New("patch: component does not trace to a single shell")

// Patch is one connected component of the traversability mask.
type Patch struct {
	ID      int64
	Polygon orb.Polygon
	Pixels  int
}

// Delineate labels the 8-connected components of set, non-zero pixels of
// mask inside region and traces each one into a polygon along pixel edges.
// Patch ids start at 1 and follow the row-major order of each component's
// first pixel. The returned layer holds the patch id of every labelled
// pixel of the region's window.
func Delineate(mask *raster.Layer[uint8], region orb.Bound, budget int64) ([]Patch, *raster.Layer[int32], error) {
	w, ok := mask.Grid.Window(region)
	if !ok {
		return nil, nil, nil
	}

	if err := raster.CheckBudget(w, budget); err != nil {
		return nil, nil, fmt.Errorf("delineating %s: %w", w, err)
	}

	win, err := mask.Window(w)
	if err != nil {
		return nil, nil, err
	}

	labels, n := label(win)

	edges := boundaries(labels, n)
	patches := make([]Patch, 0, n)

	for i, es := range edges {
		id := int32(i + 1)

		p, err := trace(w, es)
		if err != nil {
			return nil, nil, fmt.Errorf("patch %d: %w", id, err)
		}

		patches = append(patches, Patch{ID: int64(id), Polygon: p})
	}

	for i := 0; i < labels.Len(); i++ {
		if id, ok := labels.Get(i); ok {
			patches[id-1].Pixels++
		}
	}

	return patches, labels, nil
}

// label runs a breadth first search from every unlabelled traversable pixel.
func label(win *raster.Layer[uint8]) (*raster.Layer[int32], int) {
	g := win.Grid
	labels := raster.New[int32](g)
	offsets := raster.Conn8.Offsets()

	traversable := func(col, row int) bool {
		v, ok := win.At(col, row)
		return ok && v != 0
	}

	n := int32(0)
	var queue []int

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			i0 := g.Index(col, row)
			if labels.Valid(i0) || !traversable(col, row) {
				continue
			}

			n++
			labels.Put(i0, n)
			queue = append(queue[:0], i0)

			for qi := 0; qi < len(queue); qi++ {
				u := queue[qi]
				uc, ur := u%g.Cols, u/g.Cols

				for _, d := range offsets {
					vc, vr := uc+d.DC, ur+d.DR
					if !g.Contains(vc, vr) || !traversable(vc, vr) {
						continue
					}

					vi := g.Index(vc, vr)
					if !labels.Valid(vi) {
						labels.Put(vi, n)
						queue = append(queue, vi)
					}
				}
			}
		}
	}

	return labels, int(n)
}
