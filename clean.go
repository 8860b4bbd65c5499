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

// Package forestconn cleans digitized forest cover and measures the
// functional connectivity of forest around focal points as weighted patch
// area.
//
// Clean filters forest polygons on area and rasterizes the survivors.
// NewLandscape bridges the forest across small gaps, delineates patches and
// indexes them; Landscape.Metrics then computes, per focal point, the
// weighted patch area, the unweighted patch area and the forest amount
// within the metric radius.
package forestconn

import (
	"fmt"
	"log/slog"

	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/internal/vector"
	"m4o.io/forestconn/model"
)

// Cleaned holds the outputs of Clean.
type Cleaned struct {
	// Kept are the features at or above the size threshold, labelled as
	// forest.
	Kept model.FeatureCollection

	// Small are the features below the size threshold.
	Small model.FeatureCollection

	// Forest is the class raster of the kept features; every other pixel
	// holds 0.
	Forest *raster.Layer[uint8]
}

// Clean drops the forest polygons smaller than the size threshold, labels
// the rest and rasterizes them on g.
func Clean(fc model.FeatureCollection, g model.Grid, opts ...Option) (*Cleaned, error) {
	cfg, err := configure(opts)
	if err != nil {
		return nil, err
	}

	if err := raster.CheckBudget(g, cfg.pixelBudget); err != nil {
		return nil, fmt.Errorf("forest raster %s: %w", g, err)
	}

	kept, small := vector.Clean(fc, cfg.sizeThreshold)

	slog.Info("cleaned forest polygons", "kept", len(kept), "small", len(small), "threshold", cfg.sizeThreshold)

	labels, err := raster.Rasterize(kept, g, model.LandcoverKey,
		raster.WithOverlap(cfg.overlap), raster.WithPixelBudget(cfg.pixelBudget))
	if err != nil {
		return nil, err
	}

	forest := raster.Convert(labels.Unmask(0), func(v float64) uint8 { return uint8(v) })

	return &Cleaned{Kept: kept, Small: small, Forest: forest}, nil
}
