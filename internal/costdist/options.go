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

package costdist

import (
	"errors"

	"m4o.io/forestconn/internal/raster"
)

var (
	// ErrSourceMasked is returned when a source pixel is not traversable.
	ErrSourceMasked = errors.New("costdist: source pixel is masked")

	// ErrNoSource is returned when the source layer has no seed pixel.
	ErrNoSource = errors.New("costdist: no source pixel")

	// ErrOutsideGrid is returned when a focal point lies outside the grid.
	ErrOutsideGrid = errors.New("costdist: point outside grid")

	// ErrNegativeCost is returned for a negative pixel cost.
	ErrNegativeCost = errors.New("costdist: negative pixel cost")

	// ErrBadMaxDistance is returned for a negative cutoff.
	ErrBadMaxDistance = errors.New("costdist: max distance must be non-negative")
)

// DefaultMaxDistance is the default cumulative cost cutoff.
const DefaultMaxDistance = 5000.0

type options struct {
	maxDistance float64
	conn        raster.Connectivity
	geodetic    bool
}

// Option configures Accumulate.
type Option func(*options)

// WithMaxDistance sets the cutoff; pixels costing more stay unset.
func WithMaxDistance(d float64) Option {
	return func(o *options) {
		o.maxDistance = d
	}
}

// WithConnectivity selects 4 or 8 neighbour propagation.
func WithConnectivity(c raster.Connectivity) Option {
	return func(o *options) {
		o.conn = c
	}
}

// WithGeodetic measures steps as great circle distances between pixel
// centres, for grids laid out in longitude/latitude degrees.
func WithGeodetic(geodetic bool) Option {
	return func(o *options) {
		o.geodetic = geodetic
	}
}

func defaultOptions() options {
	return options{
		maxDistance: DefaultMaxDistance,
		conn:        raster.Conn8,
	}
}
