// Copyright 2025 The vecexpr Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package chunk

import (
	"github.com/bits-and-blooms/bitset"
)

// Selection names the active row indices of a batch. It must not be mutated
// while an evaluation over it is in flight.
type Selection struct {
	bits *bitset.BitSet
	size int
}

// NewSelection creates a selection of n rows, all active when selected is
// true.
func NewSelection(n int, selected bool) *Selection {
	s := &Selection{}
	s.ResizeFill(n, selected)
	return s
}

// NewSingleRowSelection creates a selection with only the given row active.
func NewSingleRowSelection(row int) *Selection {
	s := NewSelection(row+1, false)
	s.SetValid(row, true)
	return s
}

// ResizeFill resizes the selection to n rows, all set to selected.
func (s *Selection) ResizeFill(n int, selected bool) {
	if s.bits == nil || int(s.bits.Len()) != n {
		s.bits = bitset.New(uint(n))
	} else {
		s.bits.ClearAll()
	}
	if selected {
		s.bits.FlipRange(0, uint(n))
	}
	s.size = n
}

// Size returns the logical row count.
func (s *Selection) Size() int {
	return s.size
}

// IsValid reports whether row is active. Rows at or beyond Size are inactive.
func (s *Selection) IsValid(row int) bool {
	return row < s.size && s.bits.Test(uint(row))
}

// SetValid marks row active or inactive. The row must be below Size.
func (s *Selection) SetValid(row int, valid bool) {
	if valid {
		s.bits.Set(uint(row))
	} else {
		s.bits.Clear(uint(row))
	}
}

// ClearAll deactivates every row.
func (s *Selection) ClearAll() {
	s.bits.ClearAll()
}

// Count returns the number of active rows.
func (s *Selection) Count() int {
	return int(s.bits.Count())
}

// Begin returns the first active row, or Size if none.
func (s *Selection) Begin() int {
	if row, ok := s.bits.NextSet(0); ok {
		return int(row)
	}
	return s.size
}

// End returns one past the last active row, or 0 if none.
func (s *Selection) End() int {
	end := 0
	for row, ok := s.bits.NextSet(0); ok; row, ok = s.bits.NextSet(row + 1) {
		end = int(row) + 1
	}
	return end
}

// NextSelected returns the first active row at or after from.
func (s *Selection) NextSelected(from int) (int, bool) {
	if from >= s.size {
		return 0, false
	}
	row, ok := s.bits.NextSet(uint(from))
	if !ok || int(row) >= s.size {
		return 0, false
	}
	return int(row), true
}

// ApplyToSelected invokes fn for every active row in ascending order.
func (s *Selection) ApplyToSelected(fn func(row int)) {
	for row, ok := s.NextSelected(0); ok; row, ok = s.NextSelected(row + 1) {
		fn(row)
	}
}

// TestSelected invokes fn for active rows in ascending order until fn returns
// false.
func (s *Selection) TestSelected(fn func(row int) bool) {
	for row, ok := s.NextSelected(0); ok; row, ok = s.NextSelected(row + 1) {
		if !fn(row) {
			return
		}
	}
}

// Equal reports whether both selections have the same size and active rows.
func (s *Selection) Equal(other *Selection) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || s.size != other.size {
		return false
	}
	if s.bits.Len() == other.bits.Len() {
		return s.bits.Equal(other.bits)
	}
	for i := 0; i < s.size; i++ {
		if s.bits.Test(uint(i)) != other.bits.Test(uint(i)) {
			return false
		}
	}
	return true
}

// CopyFrom makes the receiver an exact copy of other.
func (s *Selection) CopyFrom(other *Selection) {
	s.ResizeFill(other.size, false)
	for row, ok := other.NextSelected(0); ok; row, ok = other.NextSelected(row + 1) {
		s.bits.Set(uint(row))
	}
}

// DeselectNulls deactivates every active row that is null in col. Used when
// all expressions in scope have default null behavior and null rows can be
// pruned up front.
func (s *Selection) DeselectNulls(col *Column) {
	for row, ok := s.NextSelected(0); ok; row, ok = s.NextSelected(row + 1) {
		if row < col.Length() && col.IsNull(row) {
			s.bits.Clear(uint(row))
		}
	}
}
