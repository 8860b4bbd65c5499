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
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/destel/rill"
	"github.com/paulmach/orb"

	"m4o.io/forestconn/internal/aggregate"
	"m4o.io/forestconn/internal/costdist"
	"m4o.io/forestconn/internal/decay"
	"m4o.io/forestconn/internal/patch"
	"m4o.io/forestconn/internal/raster"
	"m4o.io/forestconn/internal/vector"
	"m4o.io/forestconn/model"
)

// Landscape holds the global, read only inputs of the per point
// computations. It is safe for concurrent use.
type Landscape struct {
	Grid model.Grid

	// Mask is the gap bridged traversability raster, 1 or 0 everywhere.
	Mask *raster.Layer[uint8]

	// Cost is 1 on traversable pixels and unset elsewhere.
	Cost *raster.Layer[float64]

	// Patches are the 8-connected components of Mask within the region.
	Patches []patch.Patch

	cfg     options
	forest  *vector.Index
	patches *vector.Index
}

// NewLandscape bridges the forest polygons across gaps, delineates the
// patches within region and indexes both polygon sets.
func NewLandscape(ctx context.Context, forest model.FeatureCollection, g model.Grid, region orb.Bound, opts ...Option) (*Landscape, error) {
	cfg, err := configure(opts)
	if err != nil {
		return nil, err
	}

	if err := raster.CheckBudget(g, cfg.pixelBudget); err != nil {
		return nil, fmt.Errorf("traversability raster %s: %w", g, err)
	}

	mask, err := vector.Bridge(forest, g, cfg.gap)
	if err != nil {
		return nil, err
	}

	traversable := mask.UpdateMask(func(v uint8) bool { return v >= vector.Traversable })
	cost := raster.Convert(traversable, func(v uint8) float64 { return float64(v) })

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	patches, _, err := patch.Delineate(traversable, region, cfg.pixelBudget)
	if err != nil {
		return nil, err
	}

	slog.Info("delineated patches", "patches", len(patches), "traversable", cost.Count(), "grid", g.String())

	return &Landscape{
		Grid:    g,
		Mask:    mask,
		Cost:    cost,
		Patches: patches,
		cfg:     cfg,
		forest:  vector.NewIndex(forest.Polygons()),
		patches: vector.NewIndex(patch.Polygons(patches)),
	}, nil
}

// Outlines returns the patches as features, simplified with tolerance.
func (l *Landscape) Outlines(tolerance float64) model.FeatureCollection {
	return patch.Outlines(l.Patches, tolerance)
}

// Metrics computes the record of every focal point, ncpu points at a time.
// A point that cannot be measured yields a flagged record and never stops
// the others. Records are sorted by patch id. Only a cancelled context
// fails the batch.
func (l *Landscape) Metrics(ctx context.Context, points []model.FocalPoint) ([]model.Metrics, error) {
	records := rill.Map(rill.FromSlice(points, nil), int(l.cfg.nCPU), func(fp model.FocalPoint) (model.Metrics, error) {
		if err := ctx.Err(); err != nil {
			return model.Metrics{}, err
		}

		m, err := l.measure(fp)
		if err != nil {
			slog.Error("focal point failed", "patch", fp.Patch, "error", err)
			return model.Failed(fp.Patch, err), nil
		}

		return m, nil
	})

	results, err := rill.ToSlice(records)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b model.Metrics) int {
		return cmp.Compare(a.Patch, b.Patch)
	})

	return results, nil
}

// WeightedRasters computes the per pixel weighted area raster of every
// focal point and hands each to sink, one call at a time. Flagged and
// failed points are logged and skipped. The first sink error stops the
// batch.
func (l *Landscape) WeightedRasters(ctx context.Context, points []model.FocalPoint, sink func(id int64, areas *raster.Layer[float64]) error) error {
	var mu sync.Mutex

	return rill.ForEach(rill.FromSlice(points, nil), int(l.cfg.nCPU), func(fp model.FocalPoint) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		j, err := l.prepare(fp)
		if err != nil {
			slog.Error("focal point failed", "patch", fp.Patch, "error", err)
			return nil
		} else if j.anomaly != model.AnomalyNone {
			return nil
		}

		areas, err := aggregate.WeightedAreas(j.in)
		if err != nil {
			slog.Error("focal point failed", "patch", fp.Patch, "error", err)
			return nil
		}

		mu.Lock()
		defer mu.Unlock()

		return sink(fp.Patch, areas)
	})
}

// job is one focal point ready for aggregation.
type job struct {
	in      aggregate.Input
	anomaly model.Anomaly
	matches int
}

// measure computes the record of one focal point. Anomalies come back as
// flagged records; an error means the point failed outright.
func (l *Landscape) measure(fp model.FocalPoint) (model.Metrics, error) {
	j, err := l.prepare(fp)
	if err != nil {
		return model.Metrics{}, err
	}

	if j.anomaly == model.AnomalyNone {
		return aggregate.Compute(j.in)
	}

	forest, err := aggregate.ForestAmount(j.in)
	if err != nil {
		return model.Metrics{}, err
	}

	m := model.Flagged(fp.Patch, j.anomaly, forest)
	m.Matches = j.matches

	return m, nil
}

// prepare selects the focal patch and runs the cost distance for the point.
func (l *Landscape) prepare(fp model.FocalPoint) (job, error) {
	j := job{in: aggregate.Input{
		ID:       fp.Patch,
		Grid:     l.Grid,
		Center:   fp.Location,
		Radius:   l.cfg.metricRadius,
		Segments: l.cfg.segments,
		Forest:   l.forest,
		Cost:     l.Cost,
		Geodetic: l.cfg.geodetic,
	}}

	sel := aggregate.SelectFocalPatch(l.patches, fp.Location)
	j.matches = sel.Matches

	if sel.Anomaly != model.AnomalyNone {
		slog.Warn("focal point flagged", "patch", fp.Patch, "anomaly", sel.Anomaly.String(), "matches", sel.Matches)
		j.anomaly = sel.Anomaly

		return j, nil
	}

	weights, err := l.weights(fp)
	if errors.Is(err, costdist.ErrSourceMasked) {
		slog.Warn("focal point flagged", "patch", fp.Patch, "anomaly", model.AnomalySourceMasked.String())
		j.anomaly = model.AnomalySourceMasked

		return j, nil
	} else if err != nil {
		return j, err
	}

	j.in.Patch = l.Patches[sel.Patch].Polygon
	j.in.Weights = weights

	return j, nil
}

// weights runs the cost distance from the point over the search zone and
// turns it into decay weights.
func (l *Landscape) weights(fp model.FocalPoint) (*raster.Layer[float64], error) {
	zone, err := costdist.Zone(l.Cost, fp.Location, l.cfg.searchRadius)
	if err != nil {
		return nil, err
	}

	// any non-zero value marks the seed
	seed := fp.Patch
	if seed == 0 {
		seed = -1
	}

	source, err := costdist.Seed(zone, fp.Location, seed)
	if err != nil {
		return nil, err
	}

	acc, err := costdist.Accumulate(zone, source,
		costdist.WithMaxDistance(l.cfg.maxCostDistance),
		costdist.WithConnectivity(l.cfg.conn),
		costdist.WithGeodetic(l.cfg.geodetic))
	if err != nil {
		return nil, err
	}

	if lo, hi, ok := acc.Extrema(); ok {
		slog.Debug("cumulative cost", "patch", fp.Patch, "min", lo, "max", hi, "reached", acc.Count())
	}

	return decay.Assign(acc, l.cfg.alpha)
}
