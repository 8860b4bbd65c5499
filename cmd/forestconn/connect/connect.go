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

// Package connect implements the connect command: weighted patch area
// metrics for every focal point.
package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"m4o.io/forestconn"
	"m4o.io/forestconn/cmd/forestconn/cli"
	"m4o.io/forestconn/internal/export"
	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/internal/store"
	"m4o.io/forestconn/model"
)

var out io.Writer = os.Stdout

type paths struct {
	forest    string
	points    string
	region    string
	out       string
	rasters   string
	patches   string
	mask      string
	pg        string
	run       string
	tolerance float64
}

// summary is what the command reports once done.
type summary struct {
	Grid     model.Grid `json:"grid"`
	Patches  int        `json:"patches"`
	Points   int        `json:"points"`
	Flagged  int        `json:"flagged"`
	Failed   int        `json:"failed"`
	Rasters  int        `json:"rasters"`
	Duration string     `json:"duration"`
}

var p paths

func init() {
	cli.RootCmd.AddCommand(connectCmd)

	flags := connectCmd.Flags()
	flags.Var(cli.NewFileValue("", &p.forest, "file"), "forest", "forest polygons, GeoJSON or shapefile")
	flags.Var(cli.NewFileValue("", &p.points, "file"), "points", "focal points with a numeric patch attribute")
	flags.Var(cli.NewFileValue("", &p.region, "file"), "region", "polygons bounding the patch delineation, defaults to the forest extent")
	flags.StringVar(&p.out, "out", "", "metrics output, .csv or length delimited protobuf .pb")
	flags.StringVar(&p.rasters, "rasters", "", "directory receiving one weighted area ASCII grid per focal point")
	flags.StringVar(&p.patches, "patches", "", "patch outlines output, GeoJSON")
	flags.StringVar(&p.mask, "mask", "", "traversability raster output, ESRI ASCII grid")
	flags.Float64Var(&p.tolerance, "tolerance", 0, "simplification tolerance of the patch outlines")
	flags.StringVar(&p.pg, "pg", "", "PostgreSQL DSN the metrics are also saved to")
	flags.StringVar(&p.run, "run", "", "run name the metrics are saved under, defaults to a timestamp")
	flags.BoolP("json", "j", false, "format the summary in JSON")
	cli.AddGridFlags(flags)
	cli.AddOptionFlags(flags)

	_ = connectCmd.MarkFlagRequired("forest")
	_ = connectCmd.MarkFlagRequired("points")
	_ = connectCmd.MarkFlagRequired("out")
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Compute the weighted patch area of focal points",
	Long: `Bridge the forest across gaps, delineate the patches and compute the
weighted patch area, the unweighted patch area and the forest amount of
every focal point.`,
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

		forest, crs, err := cli.ReadFeatures(p.forest, proj4, progress)
		if err != nil {
			log.Fatal(err)
		}

		points, pcrs, err := cli.ReadFeatures(p.points, proj4, progress)
		if err != nil {
			log.Fatal(err)
		}

		region := forest.Bound()
		rcrs := ""

		if p.region != "" {
			fc, c, err := cli.ReadFeatures(p.region, proj4, progress)
			if err != nil {
				log.Fatal(err)
			}

			region, rcrs = fc.Bound(), c
		}

		search, err := flags.GetFloat64("search-radius")
		if err != nil {
			log.Fatal(err)
		}

		g, err := cli.Grid(flags, crs, region.Pad(search))
		if err != nil {
			log.Fatal(err)
		}

		for _, declared := range []string{crs, pcrs, rcrs} {
			if err := export.CheckCRS(declared, g); err != nil {
				log.Fatal(err)
			}
		}

		opts, err := cli.Options(flags)
		if err != nil {
			log.Fatal(err)
		}

		s, err := runConnect(cmd.Context(), forest, points, region, g, p, opts...)
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

func runConnect(ctx context.Context, forest, points model.FeatureCollection, region orb.Bound, g model.Grid, p paths, opts ...forestconn.Option) (*summary, error) {
	start := time.Now()

	focal, err := export.FocalPoints(points)
	if err != nil {
		return nil, err
	}

	ls, err := forestconn.NewLandscape(ctx, forest, g, region, opts...)
	if err != nil {
		return nil, err
	}

	records, err := ls.Metrics(ctx, focal)
	if err != nil {
		return nil, err
	}

	s := &summary{Grid: g, Patches: len(ls.Patches), Points: len(records)}

	for _, m := range records {
		switch m.Anomaly {
		case model.AnomalyNone:
		case model.AnomalyFailed:
			s.Failed++
		default:
			s.Flagged++
		}
	}

	if err := writeMetrics(p.out, records); err != nil {
		return nil, err
	}

	if p.patches != "" {
		err := cli.WriteFile(p.patches, func(w io.Writer) error {
			return export.WriteFeatures(w, ls.Outlines(p.tolerance), g.CRS)
		})
		if err != nil {
			return nil, err
		}
	}

	if p.mask != "" {
		err := cli.WriteFile(p.mask, func(w io.Writer) error {
			return export.WriteASCIIGrid(w, ls.Mask, export.DefaultNoData)
		})
		if err != nil {
			return nil, err
		}
	}

	if p.rasters != "" {
		if s.Rasters, err = writeRasters(ctx, ls, focal, p.rasters); err != nil {
			return nil, err
		}
	}

	if p.pg != "" {
		if err := save(ctx, p.pg, p.run, records); err != nil {
			return nil, err
		}
	}

	s.Duration = time.Since(start).Round(time.Millisecond).String()

	return s, nil
}

func writeMetrics(path string, records []model.Metrics) error {
	var write func(io.Writer, []model.Metrics) error

	switch export.Format(path) {
	case ".csv":
		write = export.WriteCSV
	case ".pb":
		write = export.WriteRecords
	default:
		return fmt.Errorf("%s: %w", path, export.ErrFormat)
	}

	return cli.WriteFile(path, func(w io.Writer) error {
		return write(w, records)
	})
}

func writeRasters(ctx context.Context, ls *forestconn.Landscape, focal []model.FocalPoint, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	n := 0
	err := ls.WeightedRasters(ctx, focal, func(id int64, areas *raster.Layer[float64]) error {
		path := filepath.Join(dir, "weighted_"+strconv.FormatInt(id, 10)+".asc")
		n++

		return cli.WriteFile(path, func(w io.Writer) error {
			return export.WriteASCIIGrid(w, areas, export.DefaultNoData)
		})
	})

	return n, err
}

func save(ctx context.Context, dsn, run string, records []model.Metrics) error {
	if run == "" {
		run = time.Now().UTC().Format(time.RFC3339)
	}

	db, err := store.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Save(ctx, run, records); err != nil {
		return err
	}

	slog.Info("saved metrics", "run", run, "records", len(records))

	return nil
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
	fmt.Fprintf(out, "Patches: %s\n", humanize.Comma(int64(s.Patches)))
	fmt.Fprintf(out, "Points: %s\n", humanize.Comma(int64(s.Points)))
	fmt.Fprintf(out, "Flagged: %s\n", humanize.Comma(int64(s.Flagged)))
	fmt.Fprintf(out, "Failed: %s\n", humanize.Comma(int64(s.Failed)))
	if s.Rasters > 0 {
		fmt.Fprintf(out, "Rasters: %s\n", humanize.Comma(int64(s.Rasters)))
	}
	fmt.Fprintf(out, "Duration: %s\n", s.Duration)
}
