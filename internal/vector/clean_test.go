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

package vector_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/forestconn/internal/vector"
	"m4o.io/forestconn/model"
)

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Bound{Min: orb.Point{x0, y0}, Max: orb.Point{x1, y1}}.ToPolygon()
}

func TestArea(t *testing.T) {
	holed := orb.Polygon{square(0, 0, 10, 10)[0], square(2, 2, 4, 4)[0]}

	test_cases := []struct {
		name     string
		geometry orb.Geometry
		expected float64
	}{
		{"square", square(0, 0, 10, 25), 250},
		{"hole", holed, 96},
		{"multi", orb.MultiPolygon{square(0, 0, 1, 1), square(5, 5, 7, 7)}, 5},
		{"point", orb.Point{1, 1}, 0},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, vector.Area(model.NewFeature(tc.geometry)), 1e-9)
		})
	}
}

func TestCleanInclusiveThreshold(t *testing.T) {
	fc := model.FeatureCollection{
		model.NewFeature(square(0, 0, 10, 25)),  // exactly 250
		model.NewFeature(square(0, 0, 10, 24.9)), // just below
		model.NewFeature(square(0, 0, 100, 100)),
	}

	kept, small := vector.Clean(fc, 250)
	require.Len(t, kept, 2)
	require.Len(t, small, 1)

	for _, f := range kept {
		assert.Equal(t, vector.Forest, f.Properties[model.LandcoverKey])
	}

	assert.InDelta(t, 250, kept[0].Properties[model.AreaKey], 1e-9)
	assert.InDelta(t, 249, small[0].Properties[model.AreaKey], 1e-9)
	assert.NotContains(t, small[0].Properties, model.LandcoverKey)

	assert.Empty(t, fc[0].Properties, "input features untouched")
}
