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

package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"m4o.io/forestconn/model"
)

// ErrFocalID is returned for a focal point without a numeric patch id.
var ErrFocalID = errors.New("export: focal point patch id is not numeric")

// ReadFeatures decodes a GeoJSON feature collection. The second return is
// the CRS named by the collection's legacy "crs" member, or "" when there
// is none.
func ReadFeatures(r io.Reader) (model.FeatureCollection, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}

	gfc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrFormat, err)
	}

	fc := make(model.FeatureCollection, 0, len(gfc.Features))
	for _, f := range gfc.Features {
		fc = append(fc, model.Feature{Geometry: f.Geometry, Properties: model.Properties(f.Properties)})
	}

	return fc, crsName(gfc.ExtraMembers["crs"]), nil
}

func crsName(member any) string {
	m, ok := member.(map[string]any)
	if !ok {
		return ""
	}

	props, ok := m["properties"].(map[string]any)
	if !ok {
		return ""
	}

	name, _ := props["name"].(string)

	// urn:ogc:def:crs:EPSG::32633 names EPSG:32633
	if rest, ok := strings.CutPrefix(strings.ToLower(name), "urn:ogc:def:crs:"); ok {
		parts := strings.Split(rest, ":")
		if len(parts) >= 2 {
			return strings.ToUpper(parts[0]) + ":" + parts[len(parts)-1]
		}
	}

	return name
}

// WriteFeatures encodes the features as a GeoJSON feature collection. A
// non-empty crs is written as a named "crs" member.
func WriteFeatures(w io.Writer, fc model.FeatureCollection, crs string) error {
	gfc := geojson.NewFeatureCollection()

	for _, f := range fc {
		gf := geojson.NewFeature(f.Geometry)
		for k, v := range f.Properties {
			gf.Properties[k] = v
		}

		gfc.Append(gf)
	}

	if crs != "" {
		gfc.ExtraMembers = geojson.Properties{
			"crs": map[string]any{"type": "name", "properties": map[string]any{"name": crs}},
		}
	}

	data, err := gfc.MarshalJSON()
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// FocalPoints reads the focal points of a collection. Point features are
// used as they are; polygons stand for their centroid.
func FocalPoints(fc model.FeatureCollection) ([]model.FocalPoint, error) {
	points := make([]model.FocalPoint, 0, len(fc))

	for i, f := range fc {
		id, ok := f.Properties.Number(model.PatchKey)
		if !ok {
			return nil, fmt.Errorf("feature %d %s = %v: %w", i, model.PatchKey, f.Properties[model.PatchKey], ErrFocalID)
		}

		var loc orb.Point
		switch g := f.Geometry.(type) {
		case orb.Point:
			loc = g
		case nil:
			return nil, fmt.Errorf("feature %d has no geometry: %w", i, ErrFormat)
		default:
			loc, _ = planar.CentroidArea(g)
		}

		points = append(points, model.FocalPoint{Patch: int64(id), Location: loc})
	}

	return points, nil
}

// CheckCRS fails with model.ErrGridMismatch when a file declares a CRS
// other than the grid's. Files that declare none are trusted.
func CheckCRS(declared string, g model.Grid) error {
	if declared == "" {
		return nil
	}

	return g.Check(model.Grid{CRS: declared, Resolution: g.Resolution, MinX: g.MinX, MaxY: g.MaxY})
}
