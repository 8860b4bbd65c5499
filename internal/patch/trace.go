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

package patch

import (
	"fmt"

	"github.com/paulmach/orb"

	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/model"
)

// direction of a boundary edge, in world terms.
type direction uint8

const (
	east direction = iota
	north
	west
	south
)

// right is the direction after a clockwise quarter turn.
var right = [4]direction{east: south, south: west, west: north, north: east}

// vertex is a pixel corner: column i, row j, rows growing downwards.
type vertex struct {
	i, j int
}

// bedge is a unit pixel edge with the component on its left.
type bedge struct {
	from, to vertex
	dir      direction
}

// boundaries collects, per component, the pixel edges that separate it from
// anything else. Walking every edge keeps the component on the left, which
// makes shells counter-clockwise and holes clockwise.
func boundaries(labels *raster.Layer[int32], n int) [][]bedge {
	g := labels.Grid
	edges := make([][]bedge, n)

	other := func(col, row int, id int32) bool {
		if !g.Contains(col, row) {
			return true
		}

		v, ok := labels.At(col, row)
		return !ok || v != id
	}

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			id, ok := labels.At(col, row)
			if !ok {
				continue
			}

			es := edges[id-1]

			if other(col, row+1, id) {
				es = append(es, bedge{vertex{col, row + 1}, vertex{col + 1, row + 1}, east})
			}

			if other(col+1, row, id) {
				es = append(es, bedge{vertex{col + 1, row + 1}, vertex{col + 1, row}, north})
			}

			if other(col, row-1, id) {
				es = append(es, bedge{vertex{col + 1, row}, vertex{col, row}, west})
			}

			if other(col-1, row, id) {
				es = append(es, bedge{vertex{col, row}, vertex{col, row + 1}, south})
			}

			edges[id-1] = es
		}
	}

	return edges
}

// trace chains the edges of one component into rings. Where two edges
// leave the same corner the component touches itself diagonally; turning
// right there keeps both pixels in one ring.
func trace(g model.Grid, edges []bedge) (orb.Polygon, error) {
	out := make(map[vertex][]int, len(edges))
	for i, e := range edges {
		out[e.from] = append(out[e.from], i)
	}

	next := func(cur bedge) (int, error) {
		cands := out[cur.to]
		switch len(cands) {
		case 1:
			return cands[0], nil
		case 2:
			for _, c := range cands {
				if edges[c].dir == right[cur.dir] {
					return c, nil
				}
			}
		}

		return -1, fmt.Errorf("corner %v has %d exits: %w", cur.to, len(cands), ErrTopology)
	}

	used := make([]bool, len(edges))

	var shells, holes []orb.Ring

	for start := range edges {
		if used[start] {
			continue
		}

		var corners []orb.Point

		cur := start
		for {
			used[cur] = true

			nx, err := next(edges[cur])
			if err != nil {
				return nil, err
			}

			if edges[nx].dir != edges[cur].dir {
				corners = append(corners, world(g, edges[cur].to))
			}

			if nx == start {
				break
			}

			if used[nx] {
				return nil, fmt.Errorf("edge %d visited twice: %w", nx, ErrTopology)
			}

			cur = nx
		}

		ring := append(orb.Ring(corners), corners[0])

		if ring.Orientation() == orb.CCW {
			shells = append(shells, ring)
		} else {
			holes = append(holes, ring)
		}
	}

	if len(shells) != 1 {
		return nil, fmt.Errorf("%d shells: %w", len(shells), ErrTopology)
	}

	return append(orb.Polygon{shells[0]}, holes...), nil
}

func world(g model.Grid, v vertex) orb.Point {
	return orb.Point{g.MinX + float64(v.i)*g.Resolution, g.MaxY - float64(v.j)*g.Resolution}
}
