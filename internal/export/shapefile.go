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
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"

	"m4o.io/forestconn/internal/vector"
	"m4o.io/forestconn/model"
)

// ReadShapefile reads the polygons of a shapefile and the named attribute
// columns. Numeric attributes become numbers. When target is a non-empty
// proj4 definition the shapes are reprojected from the file's .prj into it.
func ReadShapefile(path, target string, columns ...string) (model.FeatureCollection, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var trans proj.Transformer

	if target != "" {
		src, err := d.SR()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		dst, err := proj.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("target projection: %w", err)
		}

		if trans, err = src.NewTransform(dst); err != nil {
			return nil, err
		}
	}

	var fc model.FeatureCollection

	for {
		g, fields, more := d.DecodeRowFields(columns...)
		if !more {
			break
		}

		if trans != nil {
			if g, err = g.Transform(trans); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", path, len(fc), err)
			}
		}

		mp, err := polygons(g)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, len(fc), err)
		}

		f := model.NewFeature(mp)
		if len(mp) == 1 {
			f = model.NewFeature(mp[0])
		}

		for k, v := range fields {
			f = f.WithProperty(k, attribute(v))
		}

		fc = append(fc, f)
	}

	if err := d.Error(); err != nil {
		return nil, err
	}

	return fc, nil
}

func polygons(g geom.Geom) (orb.MultiPolygon, error) {
	switch t := g.(type) {
	case geom.Polygon:
		return vector.FromGeom(t), nil
	case geom.MultiPolygon:
		var mp orb.MultiPolygon
		for _, p := range t {
			mp = append(mp, vector.FromGeom(p)...)
		}

		return mp, nil
	default:
		return nil, fmt.Errorf("shape %T is not polygonal: %w", g, ErrFormat)
	}
}

func attribute(s string) any {
	s = strings.Trim(s, " \x00")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}
