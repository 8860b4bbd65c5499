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

// Package clean implements the clean command: drop small forest polygons
// and rasterize the rest.
package clean

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/forestconn"
	"m4o.io/forestconn/cmd/forestconn/cli"
	"m4o.io/forestconn/internal/export"
	"m4o.io/forestconn/internal/vector"
	"m4o.io/forestconn/model"
)

var out io.Writer = os.Stdout

type paths struct {
	forest    string
	outForest string
	outKept   string
	outSmall  string
}

// summary is what the command reports once done.
type summary struct {
	Grid         model.Grid `json:"grid"`
	Kept         int        `json:"kept"`
	Small        int        `json:"small"`
	KeptArea     float64    `json:"kept_area"`
	ForestPixels int64      `json:"forest_pixels"`
}

var p paths

func init() {
	cli.RootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.Var(cli.NewFileValue("", &p.forest, "file"), "forest", "forest polygons, GeoJSON or shapefile")
	flags.StringVar(&p.outForest, "out-forest", "", "forest raster output, ESRI ASCII grid")
	flags.StringVar(&p.outKept, "out-kept", "", "kept polygons output, GeoJSON")
	flags.StringVar(&p.outSmall, "out-small", "", "small polygons output, GeoJSON")
	flags.BoolP("json", "j", false, "format the summary in JSON")
	cli.AddGridFlags(flags)
	cli.AddOptionFlags(flags)

	_ = cleanCmd.MarkFlagRequired("forest")
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop small forest polygons and rasterize the rest",
	Long: `Drop the forest polygons smaller than --threshold, label the rest as
forest and rasterize them on the analysis grid.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		progress, err := flags.GetBool("progress")
		if err != nil {
			log.Fatal(err)
		}

		proj4, err := flags.GetString("proj")
		if err != nil {
			log.Fatal(err)
		}

		fc, crs, err := cli.ReadFeatures(p.forest, proj4, progress)
		if err != nil {
			log.Fatal(err)
		}

		g, err := cli.Grid(flags, crs, fc.Bound())
		if err != nil {
			log.Fatal(err)
		}

		if err := export.CheckCRS(crs, g); err != nil {
			log.Fatal(err)
		}

		opts, err := cli.Options(flags)
		if err != nil {
			log.Fatal(err)
		}

		s, err := runClean(fc, g, p, opts...)
		if err != nil {
			log.Fatal(err)
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			log.Fatal(err)
		}

		if jsonfmt {
			renderJSON(s)
		} else {
			renderTxt(s)
		}
	},
}

func runClean(fc model.FeatureCollection, g model.Grid, p paths, opts ...forestconn.Option) (*summary, error) {
	cleaned, err := forestconn.Clean(fc, g, opts...)
	if err != nil {
		return nil, err
	}

	s := &summary{
		Grid:         g,
		Kept:         len(cleaned.Kept),
		Small:        len(cleaned.Small),
		ForestPixels: int64(cleaned.Forest.Sum()),
	}

	for _, f := range cleaned.Kept {
		s.KeptArea += vector.Area(f)
	}

	if p.outForest != "" {
		err := cli.WriteFile(p.outForest, func(w io.Writer) error {
			return export.WriteASCIIGrid(w, cleaned.Forest, export.DefaultNoData)
		})
		if err != nil {
			return nil, err
		}
	}

	outputs := []struct {
		path string
		fc   model.FeatureCollection
	}{
		{p.outKept, cleaned.Kept},
		{p.outSmall, cleaned.Small},
	}

	for _, o := range outputs {
		if o.path == "" {
			continue
		}

		err := cli.WriteFile(o.path, func(w io.Writer) error {
			return export.WriteFeatures(w, o.fc, g.CRS)
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func renderJSON(s *summary) {
	b, err := json.Marshal(s)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprint(out, string(b))
}

func renderTxt(s *summary) {
	fmt.Fprintf(out, "Grid: %s\n", s.Grid)
	fmt.Fprintf(out, "Kept: %s\n", humanize.Comma(int64(s.Kept)))
	fmt.Fprintf(out, "Small: %s\n", humanize.Comma(int64(s.Small)))
	fmt.Fprintf(out, "KeptArea: %s\n", humanize.CommafWithDigits(s.KeptArea, 2))
	fmt.Fprintf(out, "ForestPixels: %s\n", humanize.Comma(s.ForestPixels))
}
