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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/model"
)

// ErrClip is returned when a polygon intersection cannot be computed.
var ErrClip = errors.New("vector: clip failed")

// entry carries the clipper's copy of a polygon, which also serves the
// R-tree as a geom.Geom.
type entry struct {
	geom.Polygon
	id      int
	polygon orb.Polygon
}

// Index is a read only R-tree over polygons. It is safe for concurrent
// use once built.
type Index struct {
	tree    *rtree.Rtree
	entries []*entry
}

// NewIndex indexes the polygons; a polygon's id is its position.
func NewIndex(polys []orb.Polygon) *Index {
	x := &Index{tree: rtree.NewTree(25, 50), entries: make([]*entry, len(polys))}

	for i, p := range polys {
		e := &entry{Polygon: toPolygon(p), id: i, polygon: p}
		x.entries[i] = e
		x.tree.Insert(e)
	}

	return x
}

// Len returns the number of indexed polygons.
func (x *Index) Len() int { return len(x.entries) }

// Polygon returns the polygon with the given id.
func (x *Index) Polygon(id int) orb.Polygon { return x.entries[id].polygon }

// Search returns, in ascending order, the ids of the polygons whose bounds
// intersect b.
func (x *Index) Search(b orb.Bound) []int {
	var ids []int
	for _, s := range x.tree.SearchIntersect(toBounds(b)) {
		ids = append(ids, s.(*entry).id)
	}

	sort.Ints(ids)

	return ids
}

// Containing returns the ids of the polygons that contain p. Points on a
// shell boundary count as contained.
func (x *Index) Containing(p orb.Point) []int {
	var ids []int
	for _, id := range x.Search(orb.Bound{Min: p, Max: p}.Pad(float64(model.E9))) {
		if planar.PolygonContains(x.entries[id].polygon, p) {
			ids = append(ids, id)
		}
	}

	return ids
}

// ClipConvex intersects the union of the indexed polygons with the convex
// region and returns the rings of the result oriented for raster.Coverage.
// Overlapping polygons are merged first so shared area counts once.
func (x *Index) ClipConvex(region orb.Polygon) ([]orb.Ring, error) {
	ids := x.Search(region.Bound())
	clip := toPolygon(region)

	if !overlapping(x.entries, ids) {
		var rings []orb.Ring

		for _, id := range ids {
			p := x.entries[id].polygon

			switch {
			case boundWithin(p.Bound(), region):
				rings = append(rings, raster.Oriented(p)...)
			case regionWithin(region, p):
				rings = append(rings, raster.Oriented(region)...)
			default:
				clipped, err := intersect(x.entries[id].Polygon, clip)
				if err != nil {
					return nil, fmt.Errorf("polygon %d: %w", id, err)
				}

				rings = append(rings, nested(clipped)...)
			}
		}

		return rings, nil
	}

	var merged geom.Polygon

	for _, id := range ids {
		piece, err := intersect(x.entries[id].Polygon, clip)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", id, err)
		}

		if len(piece) == 0 {
			continue
		}

		if merged == nil {
			merged = piece
			continue
		}

		if merged, err = union(merged, piece); err != nil {
			return nil, fmt.Errorf("polygon %d: %w", id, err)
		}
	}

	return nested(merged), nil
}

// overlapping reports whether the bounds of any two of the polygons touch.
func overlapping(entries []*entry, ids []int) bool {
	for i, a := range ids {
		ab := entries[a].polygon.Bound()
		for _, b := range ids[i+1:] {
			if ab.Intersects(entries[b].polygon.Bound()) {
				return true
			}
		}
	}

	return false
}

// boundWithin checks the corners of b against a convex region.
func boundWithin(b orb.Bound, region orb.Polygon) bool {
	for _, c := range []orb.Point{b.Min, b.Max, {b.Min[0], b.Max[1]}, {b.Max[0], b.Min[1]}} {
		if !planar.PolygonContains(region, c) {
			return false
		}
	}

	return true
}

// regionWithin checks whether a convex region lies inside p: all of its
// vertices are inside p and no vertex of p lies within the region's bounds.
func regionWithin(region, p orb.Polygon) bool {
	for _, v := range region[0] {
		if !planar.PolygonContains(p, v) {
			return false
		}
	}

	rb := region.Bound()
	for _, r := range p {
		for _, v := range r {
			if rb.Contains(v) {
				return false
			}
		}
	}

	return true
}

func intersect(a, b geom.Polygon) (p geom.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v: %w", r, ErrClip)
		}
	}()

	p, _ = a.Intersection(b).(geom.Polygon)

	return p, nil
}

func union(a, b geom.Polygon) (p geom.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v: %w", r, ErrClip)
		}
	}()

	p, _ = a.Union(b).(geom.Polygon)

	return p, nil
}

// nested converts the paths of a clipping result into rings whose winding
// alternates with nesting depth.
func nested(p geom.Polygon) []orb.Ring {
	rings := make([]orb.Ring, 0, len(p))
	for _, path := range p {
		if len(path) < 3 {
			continue
		}

		r := make(orb.Ring, 0, len(path)+1)
		for _, pt := range path {
			r = append(r, orb.Point{pt.X, pt.Y})
		}

		rings = append(rings, append(r, r[0]))
	}

	out := make([]orb.Ring, len(rings))
	for i, r := range rings {
		depth := 0
		for j, o := range rings {
			if i != j && planar.RingContains(o, r[0]) {
				depth++
			}
		}

		want := orb.CCW
		if depth%2 == 1 {
			want = orb.CW
		}

		if r.Orientation() != want {
			r.Reverse()
		}

		out[i] = r
	}

	return out
}

func toPolygon(p orb.Polygon) geom.Polygon {
	gp := make(geom.Polygon, 0, len(p))
	for _, r := range p {
		n := len(r)
		if r.Closed() {
			n--
		}

		path := make([]geom.Point, n)
		for i := 0; i < n; i++ {
			path[i] = geom.Point{X: r[i][0], Y: r[i][1]}
		}

		gp = append(gp, path)
	}

	return gp
}

func toBounds(b orb.Bound) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.Min[0], Y: b.Min[1]},
		Max: geom.Point{X: b.Max[0], Y: b.Max[1]},
	}
}
