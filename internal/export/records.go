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
	"bufio"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"

	"m4o.io/forestconn/model"
)

// WriteRecords writes the records as length delimited protobuf Structs,
// one per focal point.
func WriteRecords(w io.Writer, records []model.Metrics) error {
	bw := bufio.NewWriter(w)

	for _, m := range records {
		s, err := structpb.NewStruct(map[string]any{
			"patch":                 m.Patch,
			"weighted_patch_area":   m.WeightedPatchArea,
			"unweighted_patch_area": m.UnweightedPatchArea,
			"forest_amount":         m.ForestAmount,
			"anomaly":               m.Anomaly.String(),
			"matches":               m.Matches,
			"error":                 m.Err,
		})
		if err != nil {
			return fmt.Errorf("record %d: %w", m.Patch, err)
		}

		if _, err := protodelim.MarshalTo(bw, s); err != nil {
			return fmt.Errorf("record %d: %w", m.Patch, err)
		}
	}

	return bw.Flush()
}

// ReadRecords reads records written by WriteRecords.
func ReadRecords(r io.Reader) ([]model.Metrics, error) {
	br := bufio.NewReader(r)

	var records []model.Metrics

	for {
		s := &structpb.Struct{}

		err := protodelim.UnmarshalFrom(br, s)
		if errors.Is(err, io.EOF) {
			return records, nil
		} else if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}

		f := s.GetFields()
		m := model.Metrics{
			Patch:               int64(f["patch"].GetNumberValue()),
			WeightedPatchArea:   f["weighted_patch_area"].GetNumberValue(),
			UnweightedPatchArea: f["unweighted_patch_area"].GetNumberValue(),
			ForestAmount:        f["forest_amount"].GetNumberValue(),
			Anomaly:             parseAnomaly(f["anomaly"].GetStringValue()),
			Matches:             int(f["matches"].GetNumberValue()),
			Err:                 f["error"].GetStringValue(),
		}

		records = append(records, m)
	}
}

func parseAnomaly(s string) model.Anomaly {
	for a := model.AnomalyNone; a <= model.AnomalyFailed; a++ {
		if a.String() == s {
			return a
		}
	}

	return model.AnomalyFailed
}
