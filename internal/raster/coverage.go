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

package raster

import (
	"math"

	"github.com/paulmach/orb"

	"m4o.io/forestconn/model"
)

// minCoverage is the smallest fraction treated as covered.
const minCoverage = 1e-12

// Coverage computes, for every pixel of g, the exact fraction of its area
// covered by the rings. Rings are combined with the nonzero winding rule,
// so shells must wind opposite to their holes; see Oriented. Pixels with no
// coverage stay unset.
func Coverage(g model.Grid, rings []orb.Ring) *Layer[float64] {
	acc := newAccumulator(g)

	for _, r := range rings {
		n := len(r)
		for i := 0; i < n; i++ {
			a, b := r[i], r[(i+1)%n]
			acc.line(
				(a[0]-g.MinX)/g.Resolution, (g.MaxY-a[1])/g.Resolution,
				(b[0]-g.MinX)/g.Resolution, (g.MaxY-b[1])/g.Resolution,
			)
		}
	}

	return acc.layer()
}

// Oriented returns the rings of the polygons with shells counter-clockwise
// and holes clockwise.
func Oriented(polys ...orb.Polygon) []orb.Ring {
	var rings []orb.Ring

	for _, p := range polys {
		for i, r := range p {
			want := orb.CCW
			if i > 0 {
				want = orb.CW
			}

			if r.Orientation() != want {
				r = reversed(r)
			}

			rings = append(rings, r)
		}
	}

	return rings
}

func reversed(r orb.Ring) orb.Ring {
	c := r.Clone()
	c.Reverse()

	return c
}

// accumulator integrates signed edge contributions per row. Each row has two
// spare cells so that edges on or beyond the right border land outside the
// visible columns.
type accumulator struct {
	g      model.Grid
	w, h   int
	stride int
	buf    []float64
}

func newAccumulator(g model.Grid) *accumulator {
	stride := g.Cols + 2

	return &accumulator{g: g, w: g.Cols, h: g.Rows, stride: stride, buf: make([]float64, stride*g.Rows)}
}

// line adds the edge from (x0, y0) to (x1, y1) given in pixel units, with y
// growing downwards.
func (a *accumulator) line(x0, y0, x1, y1 float64) {
	if y0 == y1 {
		return
	}

	dir := 1.0
	if y0 > y1 {
		dir = -1
		x0, y0, x1, y1 = x1, y1, x0, y0
	}

	dxdy := (x1 - x0) / (y1 - y0)
	x := x0

	if y0 < 0 {
		x -= y0 * dxdy
	}

	yStart := max(0, int(math.Floor(y0)))
	yEnd := min(a.h, int(math.Ceil(y1)))

	for y := yStart; y < yEnd; y++ {
		row := a.buf[y*a.stride : (y+1)*a.stride]
		dy := math.Min(float64(y+1), y1) - math.Max(float64(y), y0)
		xNext := x + dxdy*dy

		a.clipped(row, x, xNext, dy*dir)

		x = xNext
	}
}

// clipped splits the piece at the left and right borders so every part lies
// within [0, w]. Parts left of the grid cover whole rows; parts right of it
// cover nothing visible.
func (a *accumulator) clipped(row []float64, xs, xe, d float64) {
	w := float64(a.w)

	for _, border := range [2]float64{0, w} {
		if xs != border && xe != border && (xs < border) != (xe < border) {
			t := (border - xs) / (xe - xs)
			a.clipped(row, xs, border, d*t)
			a.clipped(row, border, xe, d*(1-t))

			return
		}
	}

	xs = math.Max(0, math.Min(w, xs))
	xe = math.Max(0, math.Min(w, xe))

	if xs > xe {
		xs, xe = xe, xs
	}

	span(row, xs, xe, d)
}

// span distributes the signed height d of a piece running from x0 to x1
// (x0 <= x1) over the cells of one row.
func span(row []float64, x0, x1, d float64) {
	x0Floor := math.Floor(x0)
	x0i := int(x0Floor)
	x1Ceil := math.Ceil(x1)
	x1i := int(x1Ceil)

	if x1i <= x0i+1 {
		xmf := model.Half*(x0+x1) - x0Floor
		row[x0i] += d - d*xmf
		row[x0i+1] += d * xmf

		return
	}

	s := 1 / (x1 - x0)
	x0f := x0 - x0Floor
	a0 := model.Half * s * (1 - x0f) * (1 - x0f)
	x1f := x1 - x1Ceil + 1
	am := model.Half * s * x1f * x1f

	row[x0i] += d * a0

	if x1i == x0i+2 {
		row[x0i+1] += d * (1 - a0 - am)
	} else {
		a1 := s * (1.5 - x0f)
		row[x0i+1] += d * (a1 - a0)

		for xi := x0i + 2; xi < x1i-1; xi++ {
			row[xi] += d * s
		}

		a2 := a1 + float64(x1i-x0i-3)*s
		row[x1i-1] += d * (1 - a2 - am)
	}

	row[x1i] += d * am
}

func (a *accumulator) layer() *Layer[float64] {
	l := New[float64](a.g)

	for y := 0; y < a.h; y++ {
		row := a.buf[y*a.stride : (y+1)*a.stride]
		acc := 0.0

		for x := 0; x < a.w; x++ {
			acc += row[x]

			if c := math.Min(1, math.Abs(acc)); c > minCoverage {
				l.Set(x, y, c)
			}
		}
	}

	return l
}
