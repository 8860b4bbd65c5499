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
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"m4o.io/forestconn/model"
)

var (
	// ErrNonNumericLabel is returned when a feature's label attribute is
	// missing or not a number.
	ErrNonNumericLabel = errors.New("raster: label is not numeric")

	// ErrPixelBudget is returned when a grid holds more pixels than allowed.
	ErrPixelBudget = errors.New("raster: pixel budget exceeded")
)

// Overlap decides which label a pixel covered by several features gets.
type Overlap int

const (
	// OverlapFirst keeps the label of the first feature in collection order.
	OverlapFirst Overlap = iota
	// OverlapLast keeps the label of the last feature in collection order.
	OverlapLast
	// OverlapMax keeps the largest label.
	OverlapMax
)

func (o Overlap) String() string {
	switch o {
	case OverlapFirst:
		return "first"
	case OverlapLast:
		return "last"
	case OverlapMax:
		return "max"
	default:
		return fmt.Sprintf("Overlap(%d)", int(o))
	}
}

// ParseOverlap parses "first", "last" or "max".
func ParseOverlap(s string) (Overlap, error) {
	for o := OverlapFirst; o <= OverlapMax; o++ {
		if strings.EqualFold(s, o.String()) {
			return o, nil
		}
	}

	return 0, fmt.Errorf("overlap %q: want first, last or max", s)
}

// DefaultPixelBudget is the largest grid rasterized without tiling.
const DefaultPixelBudget int64 = 1e13

type options struct {
	overlap Overlap
	budget  int64
}

// Option configures Rasterize.
type Option func(*options)

// WithOverlap sets the overlap policy.
func WithOverlap(o Overlap) Option {
	return func(opts *options) {
		opts.overlap = o
	}
}

// WithPixelBudget sets the largest number of pixels a grid may hold.
func WithPixelBudget(n int64) Option {
	return func(opts *options) {
		opts.budget = n
	}
}

// CheckBudget fails with ErrPixelBudget when g has more than budget pixels.
func CheckBudget(g model.Grid, budget int64) error {
	if budget > 0 && g.Pixels() > budget {
		return fmt.Errorf("%d pixels > %d: %w", g.Pixels(), budget, ErrPixelBudget)
	}

	return nil
}

// Rasterize burns the numeric attribute key of every feature into a new
// layer on g. A pixel takes a feature's label when its centre is inside the
// feature; pixels no feature covers stay unset.
func Rasterize(fc model.FeatureCollection, g model.Grid, key string, opts ...Option) (*Layer[float64], error) {
	o := options{overlap: OverlapFirst, budget: DefaultPixelBudget}
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckBudget(g, o.budget); err != nil {
		return nil, err
	}

	labels := make([]float64, len(fc))
	for i, f := range fc {
		v, ok := f.Properties.Number(key)
		if !ok {
			return nil, fmt.Errorf("feature %d attribute %q = %v: %w", i, key, f.Properties[key], ErrNonNumericLabel)
		}

		labels[i] = v
	}

	l := New[float64](g)

	for i, f := range fc {
		label := labels[i]

		for _, p := range f.Polygons() {
			Spans(g, p, func(row, c0, c1 int) {
				for col := c0; col < c1; col++ {
					idx := g.Index(col, row)
					cur, ok := l.Get(idx)

					switch {
					case !ok:
						l.Put(idx, label)
					case o.overlap == OverlapLast:
						l.Put(idx, label)
					case o.overlap == OverlapMax && label > cur:
						l.Put(idx, label)
					}
				}
			})
		}
	}

	return l, nil
}

type edge struct {
	x0, y0, x1, y1 float64
}

// Spans calls fn with the half open column range [c0, c1) of every run of
// pixel centres inside the polygon, row by row. Holes are excluded by the
// even-odd rule.
func Spans(g model.Grid, p orb.Polygon, fn func(row, c0, c1 int)) {
	var edges []edge

	for _, ring := range p {
		n := len(ring)
		for i := 0; i < n; i++ {
			a, b := ring[i], ring[(i+1)%n]
			if a[1] == b[1] {
				continue
			}

			if a[1] > b[1] {
				a, b = b, a
			}

			edges = append(edges, edge{a[0], a[1], b[0], b[1]})
		}
	}

	if len(edges) == 0 {
		return
	}

	// Rows are visited top down, so edges enter the active set by their top.
	sort.Slice(edges, func(i, j int) bool { return edges[i].y1 > edges[j].y1 })

	b := p.Bound()
	r0 := max(0, int(math.Ceil((g.MaxY-b.Max[1])/g.Resolution-model.Half)))
	r1 := min(g.Rows-1, int(math.Floor((g.MaxY-b.Min[1])/g.Resolution-model.Half)))

	var (
		active []edge
		xs     []float64
		next   int
	)

	for row := r0; row <= r1; row++ {
		y := g.MaxY - (float64(row)+model.Half)*g.Resolution

		for next < len(edges) && edges[next].y1 > y {
			active = append(active, edges[next])
			next++
		}

		xs = xs[:0]
		kept := active[:0]

		for _, e := range active {
			if e.y0 > y {
				continue
			}

			kept = append(kept, e)

			// half open in y so a vertex on the scanline is counted once
			if e.y0 <= y && y < e.y1 {
				xs = append(xs, e.x0+(y-e.y0)*(e.x1-e.x0)/(e.y1-e.y0))
			}
		}

		active = kept

		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			c0 := max(0, int(math.Ceil((xs[i]-g.MinX)/g.Resolution-model.Half)))
			c1 := min(g.Cols, int(math.Ceil((xs[i+1]-g.MinX)/g.Resolution-model.Half)))

			if c0 < c1 {
				fn(row, c0, c1)
			}
		}
	}
}
