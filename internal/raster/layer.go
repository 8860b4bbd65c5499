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

// Package raster holds single band rasters with an explicit per-pixel
// validity mask, and the routines that burn polygons into them.
package raster

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"m4o.io/forestconn/model"
)

// Number is the set of pixel value types.
type Number interface {
	constraints.Integer | constraints.Float
}

// Layer is a single band raster. An unset pixel has no value at all, which
// is not the same thing as a pixel valued at zero.
type Layer[T Number] struct {
	Grid   model.Grid
	values []T
	valid  []bool
}

// New creates a layer with every pixel unset.
func New[T Number](g model.Grid) *Layer[T] {
	n := g.Pixels()

	return &Layer[T]{Grid: g, values: make([]T, n), valid: make([]bool, n)}
}

// Filled creates a layer with every pixel set to v.
func Filled[T Number](g model.Grid, v T) *Layer[T] {
	l := New[T](g)
	for i := range l.values {
		l.values[i] = v
		l.valid[i] = true
	}

	return l
}

// Len returns the number of pixels.
func (l *Layer[T]) Len() int { return len(l.values) }

// At returns the pixel value and whether it is set. Pixels outside the
// grid are unset.
func (l *Layer[T]) At(col, row int) (T, bool) {
	if !l.Grid.Contains(col, row) {
		var zero T
		return zero, false
	}

	return l.Get(l.Grid.Index(col, row))
}

// Set sets the pixel.
func (l *Layer[T]) Set(col, row int, v T) {
	l.Put(l.Grid.Index(col, row), v)
}

// Get returns the value at a row-major offset.
func (l *Layer[T]) Get(i int) (T, bool) {
	return l.values[i], l.valid[i]
}

// Put sets the value at a row-major offset.
func (l *Layer[T]) Put(i int, v T) {
	l.values[i] = v
	l.valid[i] = true
}

// Clear unsets the value at a row-major offset.
func (l *Layer[T]) Clear(i int) {
	var zero T
	l.values[i] = zero
	l.valid[i] = false
}

// Valid reports whether the value at a row-major offset is set.
func (l *Layer[T]) Valid(i int) bool { return l.valid[i] }

// Count returns the number of set pixels.
func (l *Layer[T]) Count() int {
	n := 0
	for _, ok := range l.valid {
		if ok {
			n++
		}
	}

	return n
}

// Clone returns a deep copy.
func (l *Layer[T]) Clone() *Layer[T] {
	c := &Layer[T]{Grid: l.Grid, values: make([]T, len(l.values)), valid: make([]bool, len(l.valid))}
	copy(c.values, l.values)
	copy(c.valid, l.valid)

	return c
}

// Unmask returns a copy where every unset pixel holds background.
func (l *Layer[T]) Unmask(background T) *Layer[T] {
	c := l.Clone()
	for i, ok := range c.valid {
		if !ok {
			c.values[i] = background
			c.valid[i] = true
		}
	}

	return c
}

// UpdateMask returns a copy where set pixels failing keep are unset.
func (l *Layer[T]) UpdateMask(keep func(T) bool) *Layer[T] {
	c := l.Clone()
	for i, ok := range c.valid {
		if ok && !keep(c.values[i]) {
			c.Clear(i)
		}
	}

	return c
}

// Window copies the part of the layer that lies under sub. Pixels of sub
// outside the layer are unset.
func (l *Layer[T]) Window(sub model.Grid) (*Layer[T], error) {
	if err := l.Grid.Check(sub); err != nil {
		return nil, fmt.Errorf("raster window: %w", err)
	}

	w := New[T](sub)
	dc, dr := l.Grid.Offset(sub)

	for row := 0; row < sub.Rows; row++ {
		sr := row + dr
		if sr < 0 || sr >= l.Grid.Rows {
			continue
		}

		for col := 0; col < sub.Cols; col++ {
			sc := col + dc
			if sc < 0 || sc >= l.Grid.Cols {
				continue
			}

			if v, ok := l.At(sc, sr); ok {
				w.Set(col, row, v)
			}
		}
	}

	return w, nil
}

// Extrema returns the smallest and largest set values. The last return is
// false when no pixel is set.
func (l *Layer[T]) Extrema() (lo, hi T, ok bool) {
	for i, v := range l.values {
		if !l.valid[i] {
			continue
		}

		if !ok {
			lo, hi, ok = v, v, true
			continue
		}

		lo = min(lo, v)
		hi = max(hi, v)
	}

	return lo, hi, ok
}

// Sum returns the sum of the set values.
func (l *Layer[T]) Sum() float64 {
	s := 0.0
	for i, v := range l.values {
		if l.valid[i] {
			s += float64(v)
		}
	}

	return s
}

// Convert maps every set pixel through f into a new layer.
func Convert[S, T Number](l *Layer[S], f func(S) T) *Layer[T] {
	out := New[T](l.Grid)
	for i, v := range l.values {
		if l.valid[i] {
			out.Put(i, f(v))
		}
	}

	return out
}
