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
	"github.com/spf13/pflag"

	"m4o.io/forestconn"
	"m4o.io/forestconn/internal/costdist"
	"m4o.io/forestconn/internal/decay"
	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/internal/vector"
)

// AddOptionFlags registers one flag per analysis option.
func AddOptionFlags(flags *pflag.FlagSet) {
	flags.Float64("threshold", forestconn.DefaultSizeThreshold, "smallest forest polygon area kept")
	flags.Float64("gap", forestconn.DefaultGap, "widest gap bridged between forest fragments")
	flags.Float64("metric-radius", forestconn.DefaultMetricRadius, "radius of the disk the metrics sum over")
	flags.Float64("search-radius", forestconn.DefaultSearchRadius, "radius of the cost distance search zone")
	flags.Float64("max-cost", costdist.DefaultMaxDistance, "cumulative cost cutoff")
	flags.Float64("alpha", decay.DefaultAlpha, "negative exponential decay rate")
	flags.Uint16P("cpu", "c", forestconn.DefaultNCpu(), "number of focal points processed in parallel")
	flags.Int64("budget", raster.DefaultPixelBudget, "largest number of pixels rasterized at once, 0 for no limit")
	flags.String("connectivity", raster.Conn8.String(), "cost propagation neighbourhood, 4 or 8")
	flags.Int("segments", vector.DefaultSegments, "vertices of the metric disk")
	flags.String("overlap", raster.OverlapFirst.String(), "label of overlapping polygons: first, last or max")
	flags.Bool("geodetic", false, "measure steps and areas on the sphere, for degree grids")
}

// Options reads the flags registered by AddOptionFlags.
func Options(flags *pflag.FlagSet) ([]forestconn.Option, error) {
	var opts []forestconn.Option

	floats := []struct {
		name string
		opt  func(float64) forestconn.Option
	}{
		{"threshold", forestconn.WithSizeThreshold},
		{"gap", forestconn.WithGap},
		{"metric-radius", forestconn.WithMetricRadius},
		{"search-radius", forestconn.WithSearchRadius},
		{"max-cost", forestconn.WithMaxCostDistance},
		{"alpha", forestconn.WithDecay},
	}

	for _, f := range floats {
		v, err := flags.GetFloat64(f.name)
		if err != nil {
			return nil, err
		}

		opts = append(opts, f.opt(v))
	}

	ncpu, err := flags.GetUint16("cpu")
	if err != nil {
		return nil, err
	}

	budget, err := flags.GetInt64("budget")
	if err != nil {
		return nil, err
	}

	segments, err := flags.GetInt("segments")
	if err != nil {
		return nil, err
	}

	geodetic, err := flags.GetBool("geodetic")
	if err != nil {
		return nil, err
	}

	s, err := flags.GetString("connectivity")
	if err != nil {
		return nil, err
	}

	conn, err := raster.ParseConnectivity(s)
	if err != nil {
		return nil, err
	}

	if s, err = flags.GetString("overlap"); err != nil {
		return nil, err
	}

	overlap, err := raster.ParseOverlap(s)
	if err != nil {
		return nil, err
	}

	return append(opts,
		forestconn.WithNCpus(ncpu),
		forestconn.WithPixelBudget(budget),
		forestconn.WithSegments(segments),
		forestconn.WithGeodetic(geodetic),
		forestconn.WithConnectivity(conn),
		forestconn.WithOverlap(overlap),
	), nil
}
