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

package info

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/forestconn/cmd/forestconn/cli"
	"m4o.io/forestconn/internal/export"
	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/model"
)

func TestRunInfoFeatures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest.geojson.lz4")
	fc := model.FeatureCollection{
		model.NewFeature(orb.Bound{Max: orb.Point{10, 10}}.ToPolygon()),
		model.NewFeature(orb.MultiPolygon{
			orb.Bound{Min: orb.Point{20, 0}, Max: orb.Point{30, 10}}.ToPolygon(),
			orb.Bound{Min: orb.Point{40, 0}, Max: orb.Point{50, 5}}.ToPolygon(),
		}),
		model.NewFeature(orb.Point{5, 5}).WithProperty(model.PatchKey, 1),
	}

	require.NoError(t, cli.WriteFile(path, func(w io.Writer) error {
		return export.WriteFeatures(w, fc, "EPSG:32633")
	}))

	info, err := runInfo(path, "", "", false)
	require.NoError(t, err)

	assert.Equal(t, "features", info.Kind)
	assert.Equal(t, "EPSG:32633", info.CRS)
	assert.Equal(t, 3, info.Features)
	assert.Equal(t, 3, info.Polygons)
	assert.Equal(t, 1, info.Points)
	assert.InDelta(t, 250, info.Area, 1e-9)
	assert.Equal(t, orb.Bound{Max: orb.Point{50, 10}}, info.Bound)
}

func TestRunInfoRaster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weighted.asc")
	g := model.Grid{CRS: "EPSG:32633", Resolution: 10, MinX: 0, MaxY: 20, Cols: 2, Rows: 2}

	l := raster.New[float64](g)
	l.Set(0, 0, 100)
	l.Set(1, 1, 36.5)

	require.NoError(t, cli.WriteFile(path, func(w io.Writer) error {
		return export.WriteASCIIGrid(w, l, export.DefaultNoData)
	}))

	info, err := runInfo(path, g.CRS, "", false)
	require.NoError(t, err)

	assert.Equal(t, "raster", info.Kind)
	assert.Equal(t, g, *info.Grid)
	assert.Equal(t, int64(4), info.Pixels)
	assert.Equal(t, int64(2), info.Set)
	assert.InDelta(t, 136.5, info.Sum, 1e-9)
	assert.Equal(t, 36.5, info.Min)
	assert.Equal(t, 100.0, info.Max)
}

func TestRenderText(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 0, 1024))

	saved := out

	defer func() { out = saved }()

	out = buf

	g := model.Grid{CRS: "EPSG:32633", Resolution: 10, MinX: 0, MaxY: 20, Cols: 2, Rows: 2}
	renderTxt(&details{
		Kind:   "raster",
		CRS:    g.CRS,
		Grid:   &g,
		Bound:  g.Bound(),
		Pixels: 4,
		Set:    2,
		Sum:    1234.5,
		Min:    0.5,
		Max:    1234,
	})

	assert.Equal(t, `Kind: raster
CRS: EPSG:32633
Bound: [0, 0, 20, 20]
Grid: EPSG:32633 2x2@10 (0, 20)
Pixels: 4
Set: 2
Sum: 1,234.5
Range: 0.5 .. 1234
`, buf.String())
}

func TestRenderJSON(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 0, 1024))

	saved := out

	defer func() { out = saved }()

	out = buf

	renderJSON(&details{Kind: "features", Features: 12, Area: 3.5, Bound: orb.Bound{Max: orb.Point{1, 2}}})

	info := &details{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), info))
	assert.Equal(t, 12, info.Features)
	assert.Nil(t, info.Grid)
	assert.Equal(t, orb.Point{1, 2}, info.Bound.Max)
}
