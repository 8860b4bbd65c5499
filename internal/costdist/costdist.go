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

// Package costdist computes cumulative cost surfaces over masked rasters.
package costdist

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"

	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/model"
)

// Accumulate returns, for every pixel reachable from a source through set
// cost pixels, the least cumulative cost of getting there. A step between
// neighbours costs the step length times the mean of the two pixel costs.
// Sources are the set, non-zero pixels of source and cost nothing. Pixels
// whose cost would exceed the max distance, and masked pixels, stay unset.
func Accumulate(cost *raster.Layer[float64], source *raster.Layer[int64], opts ...Option) (*raster.Layer[float64], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxDistance < 0 || math.IsNaN(o.maxDistance) {
		return nil, fmt.Errorf("%v: %w", o.maxDistance, ErrBadMaxDistance)
	}

	if err := cost.Grid.Same(source.Grid); err != nil {
		return nil, fmt.Errorf("source raster: %w", err)
	}

	r := &runner{
		g:       cost.Grid,
		cost:    cost,
		options: o,
		offsets: o.conn.Offsets(),
		dist:    make([]float64, cost.Len()),
		done:    make([]bool, cost.Len()),
		out:     raster.New[float64](cost.Grid),
	}

	r.steps = r.stepLengths()

	if err := r.init(source); err != nil {
		return nil, err
	}

	if err := r.process(); err != nil {
		return nil, err
	}

	return r.out, nil
}

type runner struct {
	g       model.Grid
	cost    *raster.Layer[float64]
	options options
	offsets []raster.Offset
	steps   func(row, k int) float64
	dist    []float64
	done    []bool
	pq      pixelPQ
	out     *raster.Layer[float64]
}

func (r *runner) init(source *raster.Layer[int64]) error {
	for i := range r.dist {
		r.dist[i] = math.Inf(1)
	}

	heap.Init(&r.pq)

	for i := 0; i < source.Len(); i++ {
		if id, ok := source.Get(i); !ok || id == 0 {
			continue
		}

		if !r.cost.Valid(i) {
			return fmt.Errorf("pixel %d,%d: %w", i%r.g.Cols, i/r.g.Cols, ErrSourceMasked)
		}

		r.dist[i] = 0
		heap.Push(&r.pq, pixel{idx: i, dist: 0})
	}

	if r.pq.Len() == 0 {
		return ErrNoSource
	}

	return nil
}

func (r *runner) process() error {
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(pixel)
		u, d := item.idx, item.dist

		if r.done[u] {
			continue
		}

		if d > r.options.maxDistance {
			break
		}

		r.done[u] = true
		r.out.Put(u, d)

		if err := r.relax(u, d); err != nil {
			return err
		}
	}

	return nil
}

func (r *runner) relax(u int, d float64) error {
	uc, ur := u%r.g.Cols, u/r.g.Cols
	cu, _ := r.cost.Get(u)

	if cu < 0 {
		return fmt.Errorf("pixel %d,%d cost %v: %w", uc, ur, cu, ErrNegativeCost)
	}

	for k, off := range r.offsets {
		vc, vr := uc+off.DC, ur+off.DR
		if !r.g.Contains(vc, vr) {
			continue
		}

		v := r.g.Index(vc, vr)

		cv, ok := r.cost.Get(v)
		if !ok || r.done[v] {
			continue
		}

		if cv < 0 {
			return fmt.Errorf("pixel %d,%d cost %v: %w", vc, vr, cv, ErrNegativeCost)
		}

		nd := d + r.steps(ur, k)*(cu+cv)/2
		if nd > r.options.maxDistance || nd >= r.dist[v] {
			continue
		}

		r.dist[v] = nd
		heap.Push(&r.pq, pixel{idx: v, dist: nd})
	}

	return nil
}

// stepLengths returns the length of the k-th neighbour step out of a pixel
// in the given row. Geodetic lengths only depend on the row, since every
// pixel of a row sits at the same latitude.
func (r *runner) stepLengths() func(row, k int) float64 {
	res := r.g.Resolution

	if !r.options.geodetic {
		return func(_, k int) float64 {
			if r.offsets[k].Diagonal {
				return res * math.Sqrt2
			}

			return res
		}
	}

	table := make([][]float64, r.g.Rows)

	return func(row, k int) float64 {
		if table[row] == nil {
			from := latLng(r.g.Center(0, row))
			lengths := make([]float64, len(r.offsets))

			for i, off := range r.offsets {
				to := latLng(r.g.Center(off.DC, row+off.DR))
				lengths[i] = from.Distance(to).Radians() * orb.EarthRadius
			}

			table[row] = lengths
		}

		return table[row][k]
	}
}

func latLng(p orb.Point) s2.LatLng {
	return s2.LatLngFromDegrees(p[1], p[0])
}

type pixel struct {
	idx  int
	dist float64
}

// pixelPQ is a min-heap of pixels by tentative cost. Stale entries are
// skipped on pop rather than decreased in place.
type pixelPQ []pixel

func (pq pixelPQ) Len() int           { return len(pq) }
func (pq pixelPQ) Less(i, j int) bool { return pq[i].dist < pq[j].dist }
func (pq pixelPQ) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *pixelPQ) Push(x any) { *pq = append(*pq, x.(pixel)) }

func (pq *pixelPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
