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

package vector

import (
	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// FromGeom converts a flat list of rings, as read from a shapefile or
// returned by a clip, into polygons. Nesting depth decides shells and
// holes; a hole joins the smallest shell around it.
func FromGeom(p geom.Polygon) orb.MultiPolygon {
	rings := nested(p)

	var mp orb.MultiPolygon

	shells := make(map[int]int)
	for i, r := range rings {
		if r.Orientation() == orb.CCW {
			shells[i] = len(mp)
			mp = append(mp, orb.Polygon{r})
		}
	}

	for _, r := range rings {
		if r.Orientation() != orb.CW {
			continue
		}

		best, area := -1, 0.0
		for i, si := range shells {
			s := rings[i]
			if !planar.RingContains(s, r[0]) {
				continue
			}

			if a := planar.Area(s); best < 0 || a < area {
				best, area = si, a
			}
		}

		if best >= 0 {
			mp[best] = append(mp[best], r)
		}
	}

	return mp
}
