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

package model_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/forestconn/model"
)

func TestNewGrid(t *testing.T) {
	g, err := model.NewGrid("EPSG:32633", 10, orb.Bound{Min: orb.Point{3, -5}, Max: orb.Point{95, 41}})
	require.NoError(t, err)

	assert.Equal(t, 0.0, g.MinX)
	assert.Equal(t, 50.0, g.MaxY)
	assert.Equal(t, 10, g.Cols)
	assert.Equal(t, 6, g.Rows)
	assert.Equal(t, int64(60), g.Pixels())
	assert.Equal(t, 100.0, g.PixelArea())

	_, err = model.NewGrid("EPSG:32633", 0, orb.Bound{Max: orb.Point{1, 1}})
	assert.ErrorIs(t, err, model.ErrEmptyGrid)
}

func TestGridCheck(t *testing.T) {
	g := model.Grid{CRS: "EPSG:32633", Resolution: 1, MinX: 0, MaxY: 100, Cols: 100, Rows: 100}

	test_cases := []struct {
		name  string
		other model.Grid
		ok    bool
	}{
		{"identical", g, true},
		{"shifted by whole pixels", model.Grid{CRS: "epsg:32633", Resolution: 1, MinX: 10, MaxY: 90, Cols: 5, Rows: 5}, true},
		{"crs", model.Grid{CRS: "EPSG:4326", Resolution: 1, MaxY: 100, Cols: 1, Rows: 1}, false},
		{"resolution", model.Grid{CRS: "EPSG:32633", Resolution: 2, MaxY: 100, Cols: 1, Rows: 1}, false},
		{"half pixel", model.Grid{CRS: "EPSG:32633", Resolution: 1, MinX: 0.5, MaxY: 100, Cols: 1, Rows: 1}, false},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			err := g.Check(tc.other)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrGridMismatch)
			}
		})
	}
}

func TestGridSame(t *testing.T) {
	g := model.Grid{CRS: "EPSG:32633", Resolution: 1, MinX: 0, MaxY: 100, Cols: 100, Rows: 100}
	sub := g
	sub.Cols = 99

	assert.NoError(t, g.Same(g))
	assert.ErrorIs(t, g.Same(sub), model.ErrGridMismatch)
}

func TestGridCells(t *testing.T) {
	g := model.Grid{CRS: "EPSG:32633", Resolution: 2, MinX: 10, MaxY: 20, Cols: 5, Rows: 5}

	assert.Equal(t, orb.Point{11, 19}, g.Center(0, 0))
	assert.Equal(t, orb.Point{19, 11}, g.Center(4, 4))

	col, row, ok := g.Cell(orb.Point{13.5, 14.1})
	assert.True(t, ok)
	assert.Equal(t, 1, col)
	assert.Equal(t, 2, row)

	_, _, ok = g.Cell(orb.Point{9.9, 14})
	assert.False(t, ok)

	assert.Equal(t, orb.Bound{Min: orb.Point{12, 14}, Max: orb.Point{14, 16}}, g.CellBound(1, 2))
	assert.Equal(t, orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{20, 20}}, g.Bound())
	assert.Equal(t, 7, g.Index(2, 1))
}

func TestGridWindow(t *testing.T) {
	g := model.Grid{CRS: "EPSG:32633", Resolution: 1, MinX: 0, MaxY: 10, Cols: 10, Rows: 10}

	w, ok := g.Window(orb.Bound{Min: orb.Point{2.5, 3.2}, Max: orb.Point{5.1, 7}})
	require.True(t, ok)
	assert.Equal(t, 2.0, w.MinX)
	assert.Equal(t, 7.0, w.MaxY)
	assert.Equal(t, 4, w.Cols)
	assert.Equal(t, 4, w.Rows)
	assert.NoError(t, g.Check(w))

	dc, dr := g.Offset(w)
	assert.Equal(t, 2, dc)
	assert.Equal(t, 3, dr)

	w, ok = g.Window(orb.Bound{Min: orb.Point{-5, -5}, Max: orb.Point{3, 20}})
	require.True(t, ok)
	assert.Equal(t, 3, w.Cols)
	assert.Equal(t, 10, w.Rows)

	_, ok = g.Window(orb.Bound{Min: orb.Point{20, 20}, Max: orb.Point{30, 30}})
	assert.False(t, ok)
}

func TestGeodeticPixelArea(t *testing.T) {
	g := model.Grid{CRS: "EPSG:4326", Resolution: 0.001, MinX: 0, MaxY: 0.001, Cols: 1, Rows: 1}

	// ~111.3 m x 111.3 m at the equator.
	area := g.GeodeticPixelArea(0)
	assert.InDelta(t, 12392, area, 50)
}
