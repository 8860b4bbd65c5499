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
	"errors"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/spf13/pflag"

	"m4o.io/forestconn/internal/export"
	"m4o.io/forestconn/model"
)

// ErrNoCRS is returned when neither the flags nor the inputs name a CRS.
var ErrNoCRS = errors.New("no CRS given and none declared by the inputs")

// AddGridFlags registers the flags describing the analysis grid.
func AddGridFlags(flags *pflag.FlagSet) {
	flags.String("crs", "", "CRS of the analysis grid, defaults to the one declared by the forest file")
	flags.Float64("grid-res", 1, "pixel edge length in CRS units")
	flags.String("proj", "", "proj4 definition shapefile inputs are reprojected into")
}

// Grid builds the grid of the given resolution covering b. The CRS comes
// from the crs flag, else from declared.
func Grid(flags *pflag.FlagSet, declared string, b orb.Bound) (model.Grid, error) {
	crs, err := flags.GetString("crs")
	if err != nil {
		return model.Grid{}, err
	}

	if crs == "" {
		crs = declared
	}

	if crs == "" {
		return model.Grid{}, ErrNoCRS
	}

	res, err := flags.GetFloat64("grid-res")
	if err != nil {
		return model.Grid{}, err
	}

	return model.NewGrid(crs, res, b)
}

// ReadFeatures reads a GeoJSON or shapefile input. Shapefiles declare no
// CRS; they are reprojected into proj4 when it is set.
func ReadFeatures(path, proj4 string, progress bool) (model.FeatureCollection, string, error) {
	switch export.Format(path) {
	case ".shp":
		fc, err := export.ReadShapefile(path, proj4, model.LandcoverKey, model.PatchKey)
		return fc, "", err
	case ".geojson", ".json":
		in, err := OpenInput(path, progress)
		if err != nil {
			return nil, "", err
		}
		defer in.Close()

		fc, crs, err := export.ReadFeatures(in)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}

		return fc, crs, nil
	default:
		return nil, "", fmt.Errorf("%s: %w", path, export.ErrFormat)
	}
}

// WriteFile creates path, compressed according to its extension, and
// hands it to write.
func WriteFile(path string, write func(w io.Writer) error) error {
	w, err := export.Create(path)
	if err != nil {
		return err
	}

	if err := write(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	return w.Close()
}
