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

package store

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/forestconn/model"
)

func TestRowConversion(t *testing.T) {
	test_cases := []struct {
		name string
		in   model.Metrics
	}{
		{"computed", model.Metrics{Patch: 4, WeightedPatchArea: 1, UnweightedPatchArea: 2, ForestAmount: 3, Matches: 1}},
		{"flagged", model.Flagged(5, model.AnomalyMultiplePatches, 9)},
		{"failed", model.Failed(6, assert.AnError)},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			r := toRow("run", tc.in, time.Now())
			assert.Equal(t, math.IsNaN(tc.in.WeightedPatchArea), r.Weighted == nil)

			got := r.metrics()
			assert.Equal(t, tc.in.Patch, got.Patch)
			assert.Equal(t, tc.in.Anomaly, got.Anomaly)
			assert.Equal(t, tc.in.Err, got.Err)
			assert.Equal(t, math.IsNaN(tc.in.ForestAmount), math.IsNaN(got.ForestAmount))

			if !math.IsNaN(tc.in.UnweightedPatchArea) {
				assert.Equal(t, tc.in.UnweightedPatchArea, got.UnweightedPatchArea)
			}
		})
	}
}

// TestSaveLoad needs a scratch database named by FORESTCONN_TEST_DSN.
func TestSaveLoad(t *testing.T) {
	dsn := os.Getenv("FORESTCONN_TEST_DSN")
	if dsn == "" {
		t.Skip("FORESTCONN_TEST_DSN not set")
	}

	ctx := context.Background()

	s, err := Open(ctx, dsn)
	require.NoError(t, err)

	defer s.Close()

	run := "test-" + time.Now().Format(time.RFC3339Nano)
	records := []model.Metrics{
		{Patch: 2, WeightedPatchArea: 1, UnweightedPatchArea: 2, ForestAmount: 3, Matches: 1},
		model.Flagged(1, model.AnomalyNoPatch, 7),
	}

	require.NoError(t, s.Save(ctx, run, records))

	got, err := s.Load(ctx, run)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].Patch)
	assert.Equal(t, model.AnomalyNoPatch, got[0].Anomaly)
	assert.True(t, math.IsNaN(got[0].WeightedPatchArea))
	assert.Equal(t, records[0], got[1])
}
