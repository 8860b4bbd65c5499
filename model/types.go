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

// Package model contains the shared model for forest cleaning and
// connectivity computations.
package model

import (
	"math"
	"strconv"
)

// Epsilon is an enumeration of precisions that can be used when comparing
// lengths, areas and grid coordinates.
type Epsilon float64

// Precisions.
const (
	E3 Epsilon = 1e-3
	E5 Epsilon = 1e-5
	E6 Epsilon = 1e-6
	E7 Epsilon = 1e-7
	E8 Epsilon = 1e-8
	E9 Epsilon = 1e-9

	Half = 0.5
)

// EqualWithin checks if two values are within a specific epsilon.
func EqualWithin(a, b float64, eps Epsilon) bool {
	return round(a/float64(eps))-round(b/float64(eps)) == 0
}

// round returns the value rounded to nearest as an int64.
// This does not match C++ exactly for the case of x.5.
func round(val float64) int64 {
	if val < 0 {
		return int64(val - Half)
	}

	return int64(val + Half)
}

// aligned reports whether v is an integral multiple of step, within E6 of
// a step.
func aligned(v, step float64) bool {
	q := v / step
	return math.Abs(q-math.Round(q)) < float64(E6)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
