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

// Package vector holds the polygon side of the pipelines: area filtering,
// gap bridging, spatial indexing and clipping.
package vector

import (
	"github.com/paulmach/orb/planar"

	"m4o.io/forestconn/model"
)

// Forest is the landcover class of kept features.
const Forest = 1

// Area returns the planar area of the feature; holes are subtracted and the
// parts of a multipolygon are summed.
func Area(f model.Feature) float64 {
	a := 0.0
	for _, p := range f.Polygons() {
		a += planar.Area(p)
	}

	return a
}

// Clean splits the collection on area. Features with an area of at least
// threshold are kept and labelled as forest; the rest are returned as small.
// Both outputs carry the computed area.
func Clean(fc model.FeatureCollection, threshold float64) (kept, small model.FeatureCollection) {
	for _, f := range fc {
		a := Area(f)
		g := f.WithProperty(model.AreaKey, a)

		if a >= threshold {
			kept = append(kept, g.WithProperty(model.LandcoverKey, Forest))
		} else {
			small = append(small, g)
		}
	}

	return kept, small
}
