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
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"m4o.io/forestconn/model"
)

// MetricsHeader is the header row of metrics tables.
var MetricsHeader = []string{
	"patch", "weighted_patch_area", "unweighted_patch_area", "forest_amount", "anomaly", "matches", "error",
}

// WriteCSV writes the records as a table. NaN areas are left empty.
func WriteCSV(w io.Writer, records []model.Metrics) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(MetricsHeader); err != nil {
		return err
	}

	for _, m := range records {
		row := []string{
			strconv.FormatInt(m.Patch, 10),
			area(m.WeightedPatchArea),
			area(m.UnweightedPatchArea),
			area(m.ForestAmount),
			m.Anomaly.String(),
			strconv.Itoa(m.Matches),
			m.Err,
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func area(f float64) string {
	if math.IsNaN(f) {
		return ""
	}

	return ftoa(f)
}
