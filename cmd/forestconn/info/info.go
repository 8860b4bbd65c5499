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

// Package info implements the info command: a summary of an input or
// output file.
package info

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"m4o.io/forestconn/cmd/forestconn/cli"
	"m4o.io/forestconn/internal/export"
	"m4o.io/forestconn/internal/vector"
	"m4o.io/forestconn/model"
)

var out io.Writer = os.Stdout

// details describes either a feature file or a raster.
type details struct {
	Kind string `json:"kind"`
	CRS  string `json:"crs,omitempty"`

	Features int       `json:"features,omitempty"`
	Polygons int       `json:"polygons,omitempty"`
	Points   int       `json:"points,omitempty"`
	Area     float64   `json:"area,omitempty"`
	Bound    orb.Bound `json:"bound"`

	Grid   *model.Grid `json:"grid,omitempty"`
	Set    int64       `json:"set,omitempty"`
	Sum    float64     `json:"sum,omitempty"`
	Min    float64     `json:"min,omitempty"`
	Max    float64     `json:"max,omitempty"`
	Pixels int64       `json:"pixels,omitempty"`
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.String("crs", "", "CRS of an ASCII grid, which does not declare one")
	flags.String("proj", "", "proj4 definition shapefiles are reprojected into")
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print information about a forest, focal point or raster file",
	Long: `Print information about a GeoJSON, shapefile or ESRI ASCII grid file,
compressed or not.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		progress, err := flags.GetBool("progress")
		if err != nil {
			log.Fatal(err)
		}

		crs, err := flags.GetString("crs")
		if err != nil {
			log.Fatal(err)
		}

		proj4, err := flags.GetString("proj")
		if err != nil {
			log.Fatal(err)
		}

		info, err := runInfo(args[0], crs, proj4, progress)
		if err != nil {
			log.Fatal(err)
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			log.Fatal(err)
		}

		if jsonfmt {
			renderJSON(info)
		} else {
			renderTxt(info)
		}
	},
}

func runInfo(path, crs, proj4 string, progress bool) (*details, error) {
	if export.Format(path) != ".asc" {
		fc, declared, err := cli.ReadFeatures(path, proj4, progress)
		if err != nil {
			return nil, err
		}

		return featureDetails(fc, declared), nil
	}

	in, err := cli.OpenInput(path, progress)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	l, err := export.ReadASCIIGrid(in, crs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	info := &details{
		Kind:   "raster",
		CRS:    crs,
		Grid:   &l.Grid,
		Bound:  l.Grid.Bound(),
		Pixels: l.Grid.Pixels(),
		Set:    int64(l.Count()),
		Sum:    l.Sum(),
	}

	info.Min, info.Max, _ = l.Extrema()

	return info, nil
}

func featureDetails(fc model.FeatureCollection, crs string) *details {
	info := &details{Kind: "features", CRS: crs, Features: len(fc), Bound: fc.Bound()}

	for _, f := range fc {
		if _, ok := f.Geometry.(orb.Point); ok {
			info.Points++
			continue
		}

		info.Polygons += len(f.Polygons())
		info.Area += vector.Area(f)
	}

	return info
}

func renderJSON(info *details) {
	b, err := json.Marshal(info)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprint(out, string(b))
}

func renderTxt(info *details) {
	fmt.Fprintf(out, "Kind: %s\n", info.Kind)
	if info.CRS != "" {
		fmt.Fprintf(out, "CRS: %s\n", info.CRS)
	}
	fmt.Fprintf(out, "Bound: [%g, %g, %g, %g]\n", info.Bound.Min[0], info.Bound.Min[1], info.Bound.Max[0], info.Bound.Max[1])

	if info.Grid != nil {
		fmt.Fprintf(out, "Grid: %s\n", info.Grid)
		fmt.Fprintf(out, "Pixels: %s\n", humanize.Comma(info.Pixels))
		fmt.Fprintf(out, "Set: %s\n", humanize.Comma(info.Set))
		fmt.Fprintf(out, "Sum: %s\n", humanize.CommafWithDigits(info.Sum, 2))
		fmt.Fprintf(out, "Range: %g .. %g\n", info.Min, info.Max)

		return
	}

	fmt.Fprintf(out, "Features: %s\n", humanize.Comma(int64(info.Features)))
	fmt.Fprintf(out, "Polygons: %s\n", humanize.Comma(int64(info.Polygons)))
	fmt.Fprintf(out, "Points: %s\n", humanize.Comma(int64(info.Points)))
	fmt.Fprintf(out, "Area: %s\n", humanize.CommafWithDigits(info.Area, 2))
}
