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

package clean

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/forestconn"
	"m4o.io/forestconn/internal/export"
	"m4o.io/forestconn/model"
)

func box(x, y, size float64) model.Feature {
	return model.NewFeature(orb.Bound{Min: orb.Point{x, y}, Max: orb.Point{x + size, y + size}}.ToPolygon())
}

func TestRunClean(t *testing.T) {
	fc := model.FeatureCollection{box(0, 0, 10), box(30, 0, 20)}

	g, err := model.NewGrid("EPSG:32633", 1, fc.Bound())
	require.NoError(t, err)

	dir := t.TempDir()
	p := paths{
		outForest: filepath.Join(dir, "forest.asc.zst"),
		outKept:   filepath.Join(dir, "kept.geojson"),
		outSmall:  filepath.Join(dir, "small.geojson"),
	}

	s, err := runClean(fc, g, p, forestconn.WithSizeThreshold(250))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Kept)
	assert.Equal(t, 1, s.Small)
	assert.InDelta(t, 400, s.KeptArea, 1e-9)
	assert.Equal(t, int64(400), s.ForestPixels)

	in, err := export.Open(p.outForest)
	require.NoError(t, err)

	defer in.Close()

	forest, err := export.ReadASCIIGrid(in, g.CRS)
	require.NoError(t, err)
	assert.NoError(t, g.Same(forest.Grid))
	assert.InDelta(t, 400, forest.Sum(), 1e-9)

	in, err = export.Open(p.outSmall)
	require.NoError(t, err)

	defer in.Close()

	small, crs, err := export.ReadFeatures(in)
	require.NoError(t, err)
	assert.Len(t, small, 1)
	assert.Equal(t, g.CRS, crs)
}

func TestRunCleanBudget(t *testing.T) {
	fc := model.FeatureCollection{box(0, 0, 10)}

	g, err := model.NewGrid("EPSG:32633", 1, fc.Bound())
	require.NoError(t, err)

	_, err = runClean(fc, g, paths{}, forestconn.WithPixelBudget(10))
	assert.Error(t, err)
}

func summaryFixture() *summary {
	return &summary{
		Grid:         model.Grid{CRS: "EPSG:32633", Resolution: 1, MinX: 0, MaxY: 2000, Cols: 2000, Rows: 2000},
		Kept:         1234,
		Small:        56,
		KeptArea:     3141592.6535,
		ForestPixels: 3141593,
	}
}

func TestRenderText(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 0, 1024))

	saved := out

	defer func() { out = saved }()

	out = buf

	renderTxt(summaryFixture())

	assert.Equal(t, `Grid: EPSG:32633 2000x2000@1 (0, 2000)
Kept: 1,234
Small: 56
KeptArea: 3,141,592.65
ForestPixels: 3,141,593
`, buf.String())
}

func TestRenderJSON(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 0, 1024))

	saved := out

	defer func() { out = saved }()

	out = buf

	renderJSON(summaryFixture())

	s := &summary{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), s))
	assert.Equal(t, summaryFixture(), s)
}
