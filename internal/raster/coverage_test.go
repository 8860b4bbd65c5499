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

package raster_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"

	"m4o.io/forestconn/internal/raster"
)

func circle(cx, cy, r float64, n int) orb.Polygon {
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * (float64(i) + 0.5) / float64(n)
		ring = append(ring, orb.Point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}

	return orb.Polygon{append(ring, ring[0])}
}

func TestCoverageAligned(t *testing.T) {
	l := raster.Coverage(grid(5, 5), raster.Oriented(square(1, 1, 4, 3)))

	assert.Equal(t, 6, l.Count())
	assert.InDelta(t, 6, l.Sum(), 1e-9)

	v, ok := l.At(1, 2)
	assert.True(t, ok)
	assert.InDelta(t, 1, v, 1e-9)

	_, ok = l.At(0, 0)
	assert.False(t, ok)
}

func TestCoverageFractional(t *testing.T) {
	l := raster.Coverage(grid(3, 3), raster.Oriented(square(0.5, 0.5, 2.5, 2.5)))

	test_cases := []struct {
		name     string
		col, row int
		expected float64
	}{
		{"corner", 0, 0, 0.25},
		{"edge", 1, 0, 0.5},
		{"centre", 1, 1, 1},
		{"other corner", 2, 2, 0.25},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := l.At(tc.col, tc.row)
			assert.True(t, ok)
			assert.InDelta(t, tc.expected, v, 1e-9)
		})
	}

	assert.InDelta(t, 4, l.Sum(), 1e-9)
}

func TestCoverageTriangle(t *testing.T) {
	tri := orb.Polygon{{{0, 0}, {3, 0}, {0, 3}, {0, 0}}}
	l := raster.Coverage(grid(3, 3), raster.Oriented(tri))

	assert.InDelta(t, 4.5, l.Sum(), 1e-9)

	// pixel (1,1) spans x 1..2, y 1..2 and is cut on its diagonal
	v, _ := l.At(1, 1)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestCoverageClippedByGrid(t *testing.T) {
	l := raster.Coverage(grid(3, 3), raster.Oriented(square(-1, -1, 2, 2)))
	assert.InDelta(t, 4, l.Sum(), 1e-9)

	l = raster.Coverage(grid(3, 3), raster.Oriented(square(-1, 0.5, 5, 1.5)))
	assert.InDelta(t, 3, l.Sum(), 1e-9)
}

func TestCoverageHoleAndUnion(t *testing.T) {
	holed := orb.Polygon{square(0, 0, 3, 3)[0], square(1, 1, 2, 2)[0]}
	l := raster.Coverage(grid(3, 3), raster.Oriented(holed))

	assert.InDelta(t, 8, l.Sum(), 1e-9)
	_, ok := l.At(1, 1)
	assert.False(t, ok)

	l = raster.Coverage(grid(4, 4), raster.Oriented(square(0, 0, 3, 3), square(1, 1, 4, 4)))
	assert.InDelta(t, 14, l.Sum(), 1e-9)
}

func TestCoverageDisk(t *testing.T) {
	disk := circle(15, 15, 10, 720)
	l := raster.Coverage(grid(30, 30), raster.Oriented(disk))

	assert.InDelta(t, planar.Area(disk), l.Sum(), 1e-6)
	assert.InDelta(t, math.Pi*100, l.Sum(), 0.01)
}
