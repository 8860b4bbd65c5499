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

package costdist_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/forestconn/internal/costdist"
	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/model"
)

func open(cols, rows int, res float64) *raster.Layer[float64] {
	g := model.Grid{CRS: "EPSG:32633", Resolution: res, MinX: 0, MaxY: float64(rows) * res, Cols: cols, Rows: rows}
	return raster.Filled(g, 1.0)
}

func seed(t *testing.T, cost *raster.Layer[float64], col, row int) *raster.Layer[int64] {
	t.Helper()

	s, err := costdist.Source(cost.Grid, cost.Grid.Center(col, row), 7)
	require.NoError(t, err)

	return s
}

func TestAccumulateOpen(t *testing.T) {
	cost := open(11, 11, 10)

	acc, err := costdist.Accumulate(cost, seed(t, cost, 5, 5))
	require.NoError(t, err)

	test_cases := []struct {
		name     string
		col, row int
		expected float64
	}{
		{"source", 5, 5, 0},
		{"rook", 6, 5, 10},
		{"diagonal", 6, 6, 10 * math.Sqrt2},
		{"three east", 8, 5, 30},
		{"knight", 7, 6, 10 + 10*math.Sqrt2},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := acc.At(tc.col, tc.row)
			require.True(t, ok)
			assert.InDelta(t, tc.expected, v, 1e-9)
		})
	}

	assert.Equal(t, 121, acc.Count())
}

func TestAccumulateConn4(t *testing.T) {
	cost := open(5, 5, 1)

	acc, err := costdist.Accumulate(cost, seed(t, cost, 2, 2), costdist.WithConnectivity(raster.Conn4))
	require.NoError(t, err)

	v, _ := acc.At(3, 3)
	assert.InDelta(t, 2, v, 1e-9)
}

func TestAccumulateBarrier(t *testing.T) {
	cost := open(7, 7, 1)

	// wall on column 3 with one opening at the bottom row
	for row := 0; row < 6; row++ {
		cost.Clear(cost.Grid.Index(3, row))
	}

	acc, err := costdist.Accumulate(cost, seed(t, cost, 1, 1))
	require.NoError(t, err)

	_, ok := acc.At(3, 0)
	assert.False(t, ok, "masked pixels stay unset")

	v, ok := acc.At(5, 1)
	require.True(t, ok)
	assert.Greater(t, v, 4.0, "detour is longer than the straight line")
	assert.InDelta(t, 6+4*math.Sqrt2, v, 1e-9)
}

func TestAccumulateMonotone(t *testing.T) {
	cost := open(15, 9, 2)
	for row := 2; row < 9; row++ {
		cost.Clear(cost.Grid.Index(7, row))
	}

	acc, err := costdist.Accumulate(cost, seed(t, cost, 3, 5))
	require.NoError(t, err)

	g := acc.Grid
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			v, ok := acc.At(col, row)
			if !ok || v == 0 {
				continue
			}

			lower := false
			for _, off := range raster.Conn8.Offsets() {
				if !g.Contains(col+off.DC, row+off.DR) {
					continue
				}

				if n, ok := acc.At(col+off.DC, row+off.DR); ok && n < v {
					lower = true
				}
			}

			assert.True(t, lower, "pixel %d,%d has no cheaper neighbour", col, row)
		}
	}
}

func TestAccumulateCutoff(t *testing.T) {
	cost := open(9, 1, 1)

	acc, err := costdist.Accumulate(cost, seed(t, cost, 0, 0), costdist.WithMaxDistance(2.5))
	require.NoError(t, err)

	assert.Equal(t, 3, acc.Count())

	_, ok := acc.At(3, 0)
	assert.False(t, ok)

	_, err = costdist.Accumulate(cost, seed(t, cost, 0, 0), costdist.WithMaxDistance(-1))
	assert.ErrorIs(t, err, costdist.ErrBadMaxDistance)
}

func TestAccumulateErrors(t *testing.T) {
	cost := open(4, 4, 1)

	other := raster.Filled[int64](model.Grid{CRS: "EPSG:32633", Resolution: 2, MaxY: 8, Cols: 4, Rows: 4}, 0)
	_, err := costdist.Accumulate(cost, other)
	assert.ErrorIs(t, err, model.ErrGridMismatch)

	masked := cost.Clone()
	masked.Clear(masked.Grid.Index(1, 1))
	_, err = costdist.Accumulate(masked, seed(t, cost, 1, 1))
	assert.ErrorIs(t, err, costdist.ErrSourceMasked)

	_, err = costdist.Accumulate(cost, raster.Filled[int64](cost.Grid, 0))
	assert.ErrorIs(t, err, costdist.ErrNoSource)

	_, err = costdist.Source(cost.Grid, orb.Point{-1, -1}, 3)
	assert.ErrorIs(t, err, costdist.ErrOutsideGrid)

	_, err = costdist.Source(cost.Grid, orb.Point{1, 1}, 0)
	assert.ErrorIs(t, err, costdist.ErrNoSource)

	negative := cost.Clone()
	negative.Set(2, 1, -1)
	_, err = costdist.Accumulate(negative, seed(t, cost, 1, 1))
	assert.ErrorIs(t, err, costdist.ErrNegativeCost)
}

func TestSeed(t *testing.T) {
	cost := open(4, 4, 1)
	for row := 0; row < 4; row++ {
		cost.Clear(cost.Grid.Index(2, row))
		cost.Clear(cost.Grid.Index(3, row))
	}

	test_cases := []struct {
		name     string
		point    orb.Point
		col, row int
		masked   bool
	}{
		{"inside", orb.Point{0.5, 0.5}, 0, 3, false},
		{"east edge of the open pixels", orb.Point{2, 2.5}, 1, 1, false},
		{"corner", orb.Point{2, 2}, 1, 2, false},
		{"west edge of an open pixel", orb.Point{1, 2.5}, 1, 1, false},
		{"inside a masked pixel", orb.Point{3.5, 3.5}, 3, 0, true},
		{"east edge of the grid", orb.Point{4, 2.5}, 3, 1, true},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := costdist.Seed(cost, tc.point, 7)
			require.NoError(t, err)

			v, _ := s.At(tc.col, tc.row)
			assert.Equal(t, int64(7), v)
			assert.InDelta(t, 7, s.Sum(), 0)

			_, err = costdist.Accumulate(cost, s)
			if tc.masked {
				assert.ErrorIs(t, err, costdist.ErrSourceMasked)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := costdist.Seed(cost, orb.Point{5, 5}, 7)
	assert.ErrorIs(t, err, costdist.ErrOutsideGrid)

	_, err = costdist.Seed(cost, orb.Point{1, 1}, 0)
	assert.ErrorIs(t, err, costdist.ErrNoSource)
}

func TestAccumulateGeodetic(t *testing.T) {
	g := model.Grid{CRS: "EPSG:4326", Resolution: 0.001, MinX: 0, MaxY: 0.0015, Cols: 3, Rows: 3}
	cost := raster.Filled(g, 1.0)

	acc, err := costdist.Accumulate(cost, seed(t, cost, 1, 1), costdist.WithGeodetic(true))
	require.NoError(t, err)

	v, _ := acc.At(2, 1)
	assert.InDelta(t, 111.32, v, 0.05)

	v, _ = acc.At(2, 2)
	assert.InDelta(t, 111.32*math.Sqrt2, v, 0.1)
}

func TestZone(t *testing.T) {
	cost := raster.Filled[uint8](model.Grid{CRS: "EPSG:32633", Resolution: 1, MaxY: 20, Cols: 20, Rows: 20}, 1)
	center := orb.Point{10, 10}

	zone, err := costdist.Zone(cost, center, 3)
	require.NoError(t, err)

	assert.Equal(t, 6, zone.Grid.Cols)
	assert.Equal(t, 6, zone.Grid.Rows)

	// pixel centres at distance <= 3 from a lattice corner: 4 * 8
	assert.Equal(t, 32, zone.Count())

	_, err = costdist.Zone(cost, orb.Point{100, 100}, 3)
	assert.ErrorIs(t, err, costdist.ErrOutsideGrid)
}
