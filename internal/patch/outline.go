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

package patch

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"m4o.io/forestconn/internal/vector"
	"m4o.io/forestconn/model"
)

// Polygons returns the patch polygons in id order.
func Polygons(patches []Patch) []orb.Polygon {
	polys := make([]orb.Polygon, len(patches))
	for i, p := range patches {
		polys[i] = p.Polygon
	}

	return polys
}

// Outlines converts patches to labelled features for export. A positive
// tolerance simplifies the outlines with Douglas-Peucker; analysis always
// uses the exact pixel-edge polygons.
func Outlines(patches []Patch, tolerance float64) model.FeatureCollection {
	var dp *simplify.DouglasPeuckerSimplifier
	if tolerance > 0 {
		dp = simplify.DouglasPeucker(tolerance)
	}

	fc := make(model.FeatureCollection, len(patches))
	for i, p := range patches {
		poly := p.Polygon
		if dp != nil {
			poly = dp.Polygon(poly.Clone())
		}

		fc[i] = model.NewFeature(poly).
			WithProperty(model.PatchKey, p.ID).
			WithProperty(model.LandcoverKey, vector.Forest).
			WithProperty("pixels", p.Pixels)
	}

	return fc
}
