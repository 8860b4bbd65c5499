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

package raster

import "fmt"

// Connectivity selects pixel adjacency: orthogonal only (Conn4) or
// including diagonals (Conn8).
type Connectivity int

const (
	Conn4 Connectivity = 4
	Conn8 Connectivity = 8
)

// Offset is the column and row step to a neighbouring pixel.
type Offset struct {
	DC, DR   int
	Diagonal bool
}

var (
	rook  = []Offset{{0, -1, false}, {1, 0, false}, {0, 1, false}, {-1, 0, false}}
	queen = append(append([]Offset{}, rook...), Offset{1, -1, true}, Offset{1, 1, true}, Offset{-1, 1, true}, Offset{-1, -1, true})
)

// Offsets returns the neighbour offsets, orthogonal ones first.
func (c Connectivity) Offsets() []Offset {
	if c == Conn4 {
		return rook
	}

	return queen
}

func (c Connectivity) String() string {
	switch c {
	case Conn4:
		return "4"
	case Conn8:
		return "8"
	default:
		return fmt.Sprintf("Connectivity(%d)", int(c))
	}
}

// ParseConnectivity parses "4" or "8".
func ParseConnectivity(s string) (Connectivity, error) {
	switch s {
	case "4":
		return Conn4, nil
	case "8":
		return Conn8, nil
	default:
		return 0, fmt.Errorf("connectivity %q: want 4 or 8", s)
	}
}
