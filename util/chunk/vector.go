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
	"github.com/vecexpr/vecexpr/types"
)

// Encoding is the physical encoding of a vector.
type Encoding byte

const (
	// EncodingFlat is plain columnar storage, one element per row.
	EncodingFlat Encoding = iota
	// EncodingDictionary stores distinct values once plus per-row indices
	// into them.
	EncodingDictionary
	// EncodingConstant stores a single value shared by every row.
	EncodingConstant
)

// Vector is a possibly-wrapped column. Dictionary and constant wrappers must
// be peeled before a function reads plain data.
type Vector struct {
	enc     Encoding
	col     *Column
	indices []uint32
	length  int
}

// NewFlatVector wraps a flat column.
func NewFlatVector(col *Column) *Vector {
	return &Vector{enc: EncodingFlat, col: col, length: col.Length()}
}

// NewDictionaryVector builds a dictionary vector: row i reads
// base[indices[i]].
func NewDictionaryVector(indices []uint32, base *Column) *Vector {
	return &Vector{enc: EncodingDictionary, col: base, indices: indices, length: len(indices)}
}

// NewConstantVector repeats the single row of col for length rows.
func NewConstantVector(col *Column, length int) *Vector {
	return &Vector{enc: EncodingConstant, col: col, length: length}
}

// Encoding returns the vector's encoding.
func (v *Vector) Encoding() Encoding {
	return v.enc
}

// Len returns the logical row count.
func (v *Vector) Len() int {
	return v.length
}

// Type returns the element type.
func (v *Vector) Type() types.ColumnType {
	return v.col.Type()
}

// Base returns the backing column: the payload for flat vectors, the distinct
// values for dictionary vectors, the single-row column for constants.
func (v *Vector) Base() *Column {
	return v.col
}

// Indices returns the dictionary indices, nil for other encodings.
func (v *Vector) Indices() []uint32 {
	return v.indices
}
