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

package forestconn

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"m4o.io/forestconn/internal/costdist"
	"m4o.io/forestconn/internal/decay"
	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/internal/vector"
)

const (
	// DefaultSizeThreshold is the smallest forest polygon area kept.
	DefaultSizeThreshold = 250.0

	// DefaultGap is the widest gap a disperser crosses between fragments.
	DefaultGap = 50.0

	// DefaultMetricRadius is the radius of the disk the metrics sum over.
	DefaultMetricRadius = 1000.0

	// DefaultSearchRadius is the radius of the cost distance search zone.
	DefaultSearchRadius = 1500.0
)

// ErrConfig is returned for an invalid option value.
var ErrConfig = errors.New("forestconn: invalid configuration")

// DefaultNCpu provides the default number of CPUs.
func DefaultNCpu() uint16 {
	cpus := uint16(runtime.GOMAXPROCS(-1))

	return max(cpus-1, 1)
}

// options provides the named parameters of both pipelines.
type options struct {
	sizeThreshold   float64
	gap             float64
	metricRadius    float64
	searchRadius    float64
	maxCostDistance float64
	alpha           float64
	nCPU            uint16 // the number of focal points processed at once
	pixelBudget     int64
	conn            raster.Connectivity
	segments        int
	overlap         raster.Overlap
	geodetic        bool
}

// Option configures Clean and NewLandscape.
type Option func(*options)

// WithSizeThreshold sets the smallest area a forest polygon needs to be
// kept.
func WithSizeThreshold(a float64) Option {
	return func(o *options) {
		o.sizeThreshold = a
	}
}

// WithGap sets the gap crossing distance used to bridge fragments.
func WithGap(g float64) Option {
	return func(o *options) {
		o.gap = g
	}
}

// WithMetricRadius sets the radius of the disk the metrics sum over.
func WithMetricRadius(r float64) Option {
	return func(o *options) {
		o.metricRadius = r
	}
}

// WithSearchRadius sets the radius of the cost distance search zone. It
// must be strictly larger than the metric radius.
func WithSearchRadius(r float64) Option {
	return func(o *options) {
		o.searchRadius = r
	}
}

// WithMaxCostDistance sets the cumulative cost cutoff.
func WithMaxCostDistance(d float64) Option {
	return func(o *options) {
		o.maxCostDistance = d
	}
}

// WithDecay sets the negative exponential decay rate.
func WithDecay(alpha float64) Option {
	return func(o *options) {
		o.alpha = alpha
	}
}

// WithNCpus lets you set the number of focal points processed in parallel.
func WithNCpus(n uint16) Option {
	return func(o *options) {
		o.nCPU = n
	}
}

// WithPixelBudget caps the number of pixels rasterized or delineated in
// one go. Zero disables the cap.
func WithPixelBudget(n int64) Option {
	return func(o *options) {
		o.pixelBudget = n
	}
}

// WithConnectivity selects the neighbourhood of the cost propagation.
func WithConnectivity(c raster.Connectivity) Option {
	return func(o *options) {
		o.conn = c
	}
}

// WithSegments sets the number of vertices of the metric disk.
func WithSegments(n int) Option {
	return func(o *options) {
		o.segments = n
	}
}

// WithOverlap sets how overlapping forest polygons are rasterized.
func WithOverlap(p raster.Overlap) Option {
	return func(o *options) {
		o.overlap = p
	}
}

// WithGeodetic measures cost steps and pixel areas on the sphere, for grids
// in longitude/latitude degrees.
func WithGeodetic(geodetic bool) Option {
	return func(o *options) {
		o.geodetic = geodetic
	}
}

// defaultConfig provides the parameters of the published analysis.
var defaultConfig = options{
	sizeThreshold:   DefaultSizeThreshold,
	gap:             DefaultGap,
	metricRadius:    DefaultMetricRadius,
	searchRadius:    DefaultSearchRadius,
	maxCostDistance: costdist.DefaultMaxDistance,
	alpha:           decay.DefaultAlpha,
	nCPU:            DefaultNCpu(),
	pixelBudget:     raster.DefaultPixelBudget,
	conn:            raster.Conn8,
	segments:        vector.DefaultSegments,
	overlap:         raster.OverlapFirst,
}

func configure(opts []Option) (options, error) {
	cfg := defaultConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg, cfg.validate()
}

func (o options) validate() error {
	switch {
	case !finite(o.sizeThreshold) || o.sizeThreshold < 0:
		return fmt.Errorf("size threshold %v: %w", o.sizeThreshold, ErrConfig)
	case !finite(o.gap) || o.gap < 0:
		return fmt.Errorf("gap %v: %w", o.gap, ErrConfig)
	case !finite(o.metricRadius) || o.metricRadius <= 0:
		return fmt.Errorf("metric radius %v: %w", o.metricRadius, ErrConfig)
	case !finite(o.searchRadius) || o.searchRadius <= o.metricRadius:
		return fmt.Errorf("search radius %v not above metric radius %v: %w", o.searchRadius, o.metricRadius, ErrConfig)
	case !finite(o.maxCostDistance) || o.maxCostDistance < 0:
		return fmt.Errorf("max cost distance %v: %w", o.maxCostDistance, ErrConfig)
	case o.nCPU == 0:
		return fmt.Errorf("ncpu 0: %w", ErrConfig)
	case o.pixelBudget < 0:
		return fmt.Errorf("pixel budget %d: %w", o.pixelBudget, ErrConfig)
	case o.conn != raster.Conn4 && o.conn != raster.Conn8:
		return fmt.Errorf("connectivity %s: %w", o.conn, ErrConfig)
	case o.segments < 3:
		return fmt.Errorf("segments %d: %w", o.segments, ErrConfig)
	}

	if err := decay.Check(o.alpha); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
