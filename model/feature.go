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

package model

import (
	"encoding/json"
	"maps"
	"strconv"

	"github.com/paulmach/orb"
)

// Well known attribute names.
const (
	LandcoverKey = "landcover"
	AreaKey      = "area"
	PatchKey     = "patch"
)

// Properties maps attribute names to scalar values.
type Properties map[string]any

// Number returns the attribute as a float64. The second return is false when
// the attribute is missing or is not numeric; numeric strings do not count.
func (p Properties) Number(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Feature is a polygonal geometry and its attributes. Features are never
// modified once built; transforms return new features.
type Feature struct {
	Geometry   orb.Geometry
	Properties Properties
}

// NewFeature creates a feature with no attributes.
func NewFeature(g orb.Geometry) Feature {
	return Feature{Geometry: g, Properties: Properties{}}
}

// WithProperty returns a copy of the feature with one more attribute.
func (f Feature) WithProperty(key string, value any) Feature {
	props := make(Properties, len(f.Properties)+1)
	maps.Copy(props, f.Properties)
	props[key] = value

	return Feature{Geometry: f.Geometry, Properties: props}
}

// Polygons returns the polygons of a Polygon, MultiPolygon or Bound
// geometry. Other geometries have none.
func (f Feature) Polygons() []orb.Polygon {
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return g
	case orb.Bound:
		return []orb.Polygon{g.ToPolygon()}
	default:
		return nil
	}
}

// FeatureCollection is an ordered sequence of features.
type FeatureCollection []Feature

// Bound returns the extent of all features.
func (fc FeatureCollection) Bound() orb.Bound {
	if len(fc) == 0 {
		return orb.Bound{}
	}

	b := fc[0].Geometry.Bound()
	for _, f := range fc[1:] {
		b = b.Union(f.Geometry.Bound())
	}

	return b
}

// Polygons flattens the collection into its polygons.
func (fc FeatureCollection) Polygons() []orb.Polygon {
	var polys []orb.Polygon
	for _, f := range fc {
		polys = append(polys, f.Polygons()...)
	}

	return polys
}

// FocalPoint is the location a connectivity metric is computed for. Patch
// identifies the point in every output.
type FocalPoint struct {
	Patch    int64
	Location orb.Point
}
