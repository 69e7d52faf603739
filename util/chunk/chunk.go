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

// Chunk groups the columns of one input batch. All columns share the same
// row count.
type Chunk struct {
	columns []*Column
}

// NewChunk builds a chunk over the given columns.
func NewChunk(columns []*Column) *Chunk {
	return &Chunk{columns: columns}
}

// NumCols returns the number of columns.
func (c *Chunk) NumCols() int {
	return len(c.columns)
}

// NumRows returns the row count of the batch, zero for an empty chunk.
func (c *Chunk) NumRows() int {
	if len(c.columns) == 0 {
		return 0
	}
	return c.columns[0].Length()
}

// Column returns the i-th column.
func (c *Chunk) Column(i int) *Column {
	return c.columns[i]
}

// Vectors wraps every column of the chunk in a flat vector, the positional
// field view an evaluation context is constructed against.
func (c *Chunk) Vectors() []*Vector {
	vecs := make([]*Vector, len(c.columns))
	for i, col := range c.columns {
		vecs[i] = NewFlatVector(col)
	}
	return vecs
}
