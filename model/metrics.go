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
	"fmt"
	"math"
)

// Anomaly flags a metrics record whose patch dependent values could not be
// computed.
type Anomaly uint8

const (
	AnomalyNone Anomaly = iota
	// AnomalyNoPatch means no patch contains the focal point.
	AnomalyNoPatch
	// AnomalyMultiplePatches means more than one patch contains the focal point.
	AnomalyMultiplePatches
	// AnomalySourceMasked means the focal pixel is not traversable.
	AnomalySourceMasked
	// AnomalyFailed means the point failed; Err holds the reason.
	AnomalyFailed
)

func (a Anomaly) String() string {
	switch a {
	case AnomalyNone:
		return ""
	case AnomalyNoPatch:
		return "no_patch"
	case AnomalyMultiplePatches:
		return "multiple_patches"
	case AnomalySourceMasked:
		return "source_masked"
	case AnomalyFailed:
		return "failed"
	default:
		return fmt.Sprintf("Anomaly(%d)", uint8(a))
	}
}

// Metrics is the connectivity record of one focal point. Areas are in
// squared grid units. Patch dependent areas are NaN when Anomaly is set.
type Metrics struct {
	Patch               int64   `db:"patch" json:"patch"`
	WeightedPatchArea   float64 `db:"weighted_patch_area" json:"weighted_patch_area"`
	UnweightedPatchArea float64 `db:"unweighted_patch_area" json:"unweighted_patch_area"`
	ForestAmount        float64 `db:"forest_amount" json:"forest_amount"`
	Anomaly             Anomaly `db:"-" json:"-"`
	Matches             int     `db:"matches" json:"matches"`
	Err                 string  `db:"-" json:"error,omitempty"`
}

// Flagged returns a record for a point whose patch areas are unknown.
func Flagged(patch int64, a Anomaly, forest float64) Metrics {
	return Metrics{
		Patch:               patch,
		WeightedPatchArea:   math.NaN(),
		UnweightedPatchArea: math.NaN(),
		ForestAmount:        forest,
		Anomaly:             a,
	}
}

// Failed returns a record for a point whose computation returned err.
func Failed(patch int64, err error) Metrics {
	m := Flagged(patch, AnomalyFailed, math.NaN())
	m.Err = err.Error()

	return m
}

// Consistent checks weighted <= unweighted <= forest, allowing a relative
// slack of eps. Flagged records are trivially consistent.
func (m Metrics) Consistent(eps Epsilon) bool {
	if m.Anomaly != AnomalyNone {
		return true
	}

	slack := float64(eps) * math.Max(1, m.ForestAmount)

	return m.WeightedPatchArea <= m.UnweightedPatchArea+slack &&
		m.UnweightedPatchArea <= m.ForestAmount+slack
}
