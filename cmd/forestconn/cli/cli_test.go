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

package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/forestconn/internal/export"
	"m4o.io/forestconn/model"
)

func TestEnvName(t *testing.T) {
	assert.Equal(t, "FORESTCONN_GRID_RES", EnvName("grid-res"))
	assert.Equal(t, "FORESTCONN_CPU", EnvName("cpu"))
}

func TestBindEnv(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddOptionFlags(flags)
	AddGridFlags(flags)

	require.NoError(t, flags.Parse([]string{"--gap", "20"}))

	t.Setenv("FORESTCONN_GAP", "70")
	t.Setenv("FORESTCONN_GRID_RES", "5")
	t.Setenv("FORESTCONN_CONNECTIVITY", "4")

	require.NoError(t, BindEnv(flags))

	gap, _ := flags.GetFloat64("gap")
	assert.Equal(t, 20.0, gap, "command line wins")

	res, _ := flags.GetFloat64("grid-res")
	assert.Equal(t, 5.0, res)

	opts, err := Options(flags)
	require.NoError(t, err)
	assert.Len(t, opts, 12)

	t.Setenv("FORESTCONN_SEGMENTS", "many")
	assert.Error(t, BindEnv(flags))
}

func TestOptionsRejectsBadEnums(t *testing.T) {
	test_cases := []struct {
		name string
		args []string
	}{
		{"connectivity", []string{"--connectivity", "6"}},
		{"overlap", []string{"--overlap", "sum"}},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			AddOptionFlags(flags)
			require.NoError(t, flags.Parse(tc.args))

			_, err := Options(flags)
			assert.Error(t, err)
		})
	}
}

func TestGrid(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddGridFlags(flags)
	require.NoError(t, flags.Parse([]string{"--grid-res", "10"}))

	b := orb.Bound{Min: orb.Point{3, 3}, Max: orb.Point{47, 21}}

	_, err := Grid(flags, "", b)
	assert.ErrorIs(t, err, ErrNoCRS)

	g, err := Grid(flags, "EPSG:32633", b)
	require.NoError(t, err)
	assert.Equal(t, model.Grid{CRS: "EPSG:32633", Resolution: 10, MinX: 0, MaxY: 30, Cols: 5, Rows: 3}, g)

	require.NoError(t, flags.Set("crs", "EPSG:3035"))
	g, err = Grid(flags, "EPSG:32633", b)
	require.NoError(t, err)
	assert.Equal(t, "EPSG:3035", g.CRS)
}

func TestFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest.geojson")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	var s string
	v := NewFileValue("", &s, "file")

	assert.NoError(t, v.Set(path))
	assert.Equal(t, path, v.String())
	assert.Equal(t, "file", v.Type())

	assert.Error(t, v.Set(filepath.Dir(path)))
	assert.Error(t, v.Set(path+".missing"))
}

func TestReadWriteFeatures(t *testing.T) {
	dir := t.TempDir()
	fc := model.FeatureCollection{
		model.NewFeature(orb.Bound{Max: orb.Point{10, 10}}.ToPolygon()).WithProperty(model.LandcoverKey, 1),
	}

	for _, name := range []string{"forest.geojson", "forest.geojson.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)

			require.NoError(t, WriteFile(path, func(w io.Writer) error {
				return export.WriteFeatures(w, fc, "EPSG:32633")
			}))

			got, crs, err := ReadFeatures(path, "", false)
			require.NoError(t, err)
			assert.Len(t, got, 1)
			assert.Equal(t, "EPSG:32633", crs)
		})
	}

	_, _, err := ReadFeatures(filepath.Join(dir, "forest.kml"), "", false)
	assert.ErrorIs(t, err, export.ErrFormat)
}

func TestOpenInputProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("forest"), 0o600))

	in, err := OpenInput(path, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = io.Copy(&buf, in)
	require.NoError(t, err)
	require.NoError(t, in.Close())

	assert.Equal(t, "forest", buf.String())
}
