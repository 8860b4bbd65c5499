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

// Package decay turns cumulative cost into exponential decay weights.
package decay

import (
	"errors"
	"fmt"
	"math"

	"m4o.io/forestconn/internal/raster"
)

// ErrDecay is returned when the decay rate would not shrink weights with
// cost.
var ErrDecay = errors.New("decay: rate must be negative")

// DefaultAlpha weighs a pixel at 1/e once it is 282 cost units away.
const DefaultAlpha = -1.0 / 282

// Weight returns exp(c*alpha).
func Weight(c, alpha float64) float64 {
	return math.Exp(c * alpha)
}

// Check validates a decay rate.
func Check(alpha float64) error {
	if !(alpha < 0) || math.IsInf(alpha, -1) {
		return fmt.Errorf("%v: %w", alpha, ErrDecay)
	}

	return nil
}

// Assign maps every set pixel of a cumulative cost surface to its weight.
// Unset pixels stay unset.
func Assign(cost *raster.Layer[float64], alpha float64) (*raster.Layer[float64], error) {
	if err := Check(alpha); err != nil {
		return nil, err
	}

	return raster.Convert(cost, func(c float64) float64 {
		return Weight(c, alpha)
	}), nil
}
