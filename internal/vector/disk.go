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
	"math"

	"github.com/paulmach/orb"
)

// DefaultSegments is the number of vertices of a buffered point.
const DefaultSegments = 720

// Disk returns the buffer of radius r around c as a counter-clockwise
// polygon with n vertices. The vertex radius is scaled so the polygon has
// the area of the true circle.
func Disk(c orb.Point, r float64, n int) orb.Polygon {
	if n < 3 {
		n = DefaultSegments
	}

	step := 2 * math.Pi / float64(n)
	rv := r * math.Sqrt(step/math.Sin(step))

	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		a := step * (float64(i) + 0.5)
		ring = append(ring, orb.Point{c[0] + rv*math.Cos(a), c[1] + rv*math.Sin(a)})
	}

	return orb.Polygon{append(ring, ring[0])}
}
