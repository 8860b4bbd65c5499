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

// Package aggregate reduces the rasters of one focal point to its
// connectivity metrics.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/internal/vector"
	"m4o.io/forestconn/model"
)

var (
	// ErrOutsideGrid is returned when the metric zone misses the grid.
	ErrOutsideGrid = errors.New("aggregate: metric zone outside grid")

	// ErrIncomplete is returned when the patch or the weights are missing.
	ErrIncomplete = errors.New("aggregate: patch and weights are required")
)

// Selection is the outcome of matching a focal point against the patches.
type Selection struct {
	Patch   int
	Matches int
	Anomaly model.Anomaly
}

// SelectFocalPatch finds the patch whose polygon contains p, boundary
// included. Zero or several matches are reported through the anomaly and
// never resolved by picking one.
func SelectFocalPatch(patches *vector.Index, p orb.Point) Selection {
	ids := patches.Containing(p)

	switch len(ids) {
	case 0:
		return Selection{Patch: -1, Anomaly: model.AnomalyNoPatch}
	case 1:
		return Selection{Patch: ids[0], Matches: 1}
	default:
		return Selection{Patch: -1, Matches: len(ids), Anomaly: model.AnomalyMultiplePatches}
	}
}

// Input holds everything the metrics of one focal point depend on.
type Input struct {
	ID       int64
	Grid     model.Grid
	Center   orb.Point
	Radius   float64
	Segments int

	// Forest indexes the true, unbuffered forest polygons.
	Forest *vector.Index

	// Patch is the selected patch polygon; nil restricts nothing but also
	// leaves the patch areas out.
	Patch orb.Polygon

	// Cost is the global cost raster; only its mask is used.
	Cost *raster.Layer[float64]

	// Weights holds decay weights on any window of Grid.
	Weights *raster.Layer[float64]

	Geodetic bool
}

// zone is the metric disk rasterized on its window of the grid.
type zone struct {
	in     Input
	w      model.Grid
	dc, dr int
	wc, wr int
	forest *raster.Layer[float64]
	patch  *raster.Layer[float64]
	areas  map[int]float64
}

func newZone(in Input) (*zone, error) {
	if err := in.Grid.Same(in.Cost.Grid); err != nil {
		return nil, fmt.Errorf("cost raster: %w", err)
	}

	if in.Weights != nil {
		if err := in.Grid.Check(in.Weights.Grid); err != nil {
			return nil, fmt.Errorf("weights raster: %w", err)
		}
	}

	disk := vector.Disk(in.Center, in.Radius, in.Segments)

	w, ok := in.Grid.Window(disk.Bound())
	if !ok {
		return nil, fmt.Errorf("disk around %v: %w", in.Center, ErrOutsideGrid)
	}

	rings, err := in.Forest.ClipConvex(disk)
	if err != nil {
		return nil, err
	}

	z := &zone{in: in, w: w, forest: raster.Coverage(w, rings), areas: make(map[int]float64)}
	z.dc, z.dr = in.Grid.Offset(w)

	if in.Weights != nil {
		z.wc, z.wr = in.Grid.Offset(in.Weights.Grid)
	}

	if in.Patch != nil {
		z.patch = raster.Coverage(w, raster.Oriented(in.Patch))
	}

	return z, nil
}

// pixelArea returns the area of a pixel in the given grid row.
func (z *zone) pixelArea(row int) float64 {
	if !z.in.Geodetic {
		return z.in.Grid.PixelArea()
	}

	a, ok := z.areas[row]
	if !ok {
		a = z.in.Grid.GeodeticPixelArea(row)
		z.areas[row] = a
	}

	return a
}

// each calls fn for every traversable pixel of the window covered by
// forest within the disk, with its forest coverage and area.
func (z *zone) each(fn func(col, row int, cov, area float64)) {
	for row := 0; row < z.w.Rows; row++ {
		for col := 0; col < z.w.Cols; col++ {
			cov, ok := z.forest.At(col, row)
			if !ok {
				continue
			}

			gc, gr := col+z.dc, row+z.dr
			if _, ok := z.in.Cost.At(gc, gr); !ok {
				continue
			}

			fn(col, row, cov, z.pixelArea(gr))
		}
	}
}

// inPatch returns the fraction of the pixel inside the patch polygon.
func (z *zone) inPatch(col, row int) float64 {
	v, _ := z.patch.At(col, row)
	return v
}

// weight returns the decay weight of a window pixel, if one is defined.
func (z *zone) weight(col, row int) (float64, bool) {
	return z.in.Weights.At(col+z.dc-z.wc, row+z.dr-z.wr)
}

// Compute sums the three areas of the focal point. The patch areas are
// restricted to the patch polygon, the metric disk and the forest; forest
// amount drops the patch restriction. Pixels partly inside the clip count
// with their covered fraction.
func Compute(in Input) (model.Metrics, error) {
	if in.Patch == nil || in.Weights == nil {
		return model.Metrics{}, ErrIncomplete
	}

	z, err := newZone(in)
	if err != nil {
		return model.Metrics{}, err
	}

	m := model.Metrics{Patch: in.ID, Matches: 1}

	z.each(func(col, row int, cov, area float64) {
		m.ForestAmount += cov * area

		frac := cov * z.inPatch(col, row)
		if frac == 0 {
			return
		}

		m.UnweightedPatchArea += frac * area

		if w, ok := z.weight(col, row); ok {
			m.WeightedPatchArea += frac * w * area
		}
	})

	return m, nil
}

// ForestAmount sums the forest area within the metric disk only.
func ForestAmount(in Input) (float64, error) {
	in.Patch = nil

	z, err := newZone(in)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	z.each(func(_, _ int, cov, area float64) {
		sum += cov * area
	})

	return sum, nil
}

// WeightedAreas returns the per-pixel weighted area over the metric disk's
// window, set only where a pixel contributes to the weighted patch area.
func WeightedAreas(in Input) (*raster.Layer[float64], error) {
	if in.Patch == nil || in.Weights == nil {
		return nil, ErrIncomplete
	}

	z, err := newZone(in)
	if err != nil {
		return nil, err
	}

	out := raster.New[float64](z.w)

	z.each(func(col, row int, cov, area float64) {
		frac := cov * z.inPatch(col, row)
		if frac == 0 {
			return
		}

		if w, ok := z.weight(col, row); ok {
			out.Set(col, row, frac*w*area)
		}
	})

	return out, nil
}
