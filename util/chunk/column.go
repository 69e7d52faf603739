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
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/decimal128"

	"github.com/vecexpr/vecexpr/types"
)

// Column stores one fixed-width column of a batch. The null bitmap follows
// the usual convention: bit set means NOT null.
type Column struct {
	tp         types.ColumnType
	length     int
	nullBitmap []byte
	data       []byte
}

// NewColumn creates an empty column of the given type with room for cap rows.
func NewColumn(tp types.ColumnType, cap int) *Column {
	return &Column{
		tp:         tp,
		nullBitmap: make([]byte, 0, (cap+7)>>3),
		data:       make([]byte, 0, cap*tp.ElemLen()),
	}
}

// Type returns the column type.
func (c *Column) Type() types.ColumnType {
	return c.tp
}

// SetType retypes a recycled column. Only valid while the column is empty.
func (c *Column) SetType(tp types.ColumnType) {
	c.tp = tp
}

// Length returns the number of rows.
func (c *Column) Length() int {
	return c.length
}

// Reset truncates the column to zero rows, keeping the buffers.
func (c *Column) Reset() {
	c.length = 0
	c.nullBitmap = c.nullBitmap[:0]
	c.data = c.data[:0]
}

// IsNull reports whether row i is null.
func (c *Column) IsNull(i int) bool {
	return c.nullBitmap[i>>3]&(1<<(uint(i)&7)) == 0
}

// SetNull sets the null flag of row i.
func (c *Column) SetNull(i int, isNull bool) {
	if isNull {
		c.nullBitmap[i>>3] &^= 1 << (uint(i) & 7)
	} else {
		c.nullBitmap[i>>3] |= 1 << (uint(i) & 7)
	}
}

// Resize sets the row count to n. All rows become null when isNull is true,
// not null otherwise. Existing values are not preserved.
func (c *Column) Resize(n int, isNull bool) {
	nData := n * c.tp.ElemLen()
	if cap(c.data) < nData {
		c.data = make([]byte, nData)
	} else {
		c.data = c.data[:nData]
	}
	nBitmap := (n + 7) >> 3
	if cap(c.nullBitmap) < nBitmap {
		c.nullBitmap = make([]byte, nBitmap)
	} else {
		c.nullBitmap = c.nullBitmap[:nBitmap]
	}
	var fill byte
	if !isNull {
		fill = 0xFF
	}
	for i := range c.nullBitmap {
		c.nullBitmap[i] = fill
	}
	c.length = n
}

// EnsureRows grows the column to hold at least n rows, preserving existing
// values. New rows start null.
func (c *Column) EnsureRows(n int) {
	if n <= c.length {
		return
	}
	elemLen := c.tp.ElemLen()
	oldData, oldBitmap := len(c.data), len(c.nullBitmap)
	nData := n * elemLen
	if cap(c.data) < nData {
		data := make([]byte, nData)
		copy(data, c.data)
		c.data = data
	} else {
		c.data = c.data[:nData]
		for i := oldData; i < nData; i++ {
			c.data[i] = 0
		}
	}
	nBitmap := (n + 7) >> 3
	if cap(c.nullBitmap) < nBitmap {
		bitmap := make([]byte, nBitmap)
		copy(bitmap, c.nullBitmap)
		c.nullBitmap = bitmap
	} else {
		c.nullBitmap = c.nullBitmap[:nBitmap]
		for i := oldBitmap; i < nBitmap; i++ {
			c.nullBitmap[i] = 0
		}
	}
	// Rows between the old length and the old bitmap boundary keep whatever
	// flag they had, clear them explicitly.
	for i := c.length; i < n && i < oldBitmap*8; i++ {
		c.SetNull(i, true)
	}
	c.length = n
}

// Int64s returns the value slice reinterpreted as int64. The column must hold
// 8-byte elements.
func (c *Column) Int64s() []int64 {
	if c.length == 0 {
		return nil
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&c.data[0])), c.length)
}

// Decimal128s returns the value slice reinterpreted as decimal128.Num. The
// column must hold 16-byte elements.
func (c *Column) Decimal128s() []decimal128.Num {
	if c.length == 0 {
		return nil
	}
	return unsafe.Slice((*decimal128.Num)(unsafe.Pointer(&c.data[0])), c.length)
}

func (c *Column) appendNullBitmap(notNull bool) {
	idx := c.length >> 3
	if idx >= len(c.nullBitmap) {
		c.nullBitmap = append(c.nullBitmap, 0)
	}
	if notNull {
		c.nullBitmap[idx] |= 1 << (uint(c.length) & 7)
	}
}

// AppendInt64 appends a not-null int64 row.
func (c *Column) AppendInt64(v int64) {
	c.appendNullBitmap(true)
	c.data = append(c.data, make([]byte, 8)...)
	c.length++
	c.Int64s()[c.length-1] = v
}

// AppendDecimal128 appends a not-null 128-bit decimal row.
func (c *Column) AppendDecimal128(v decimal128.Num) {
	c.appendNullBitmap(true)
	c.data = append(c.data, make([]byte, 16)...)
	c.length++
	c.Decimal128s()[c.length-1] = v
}

// AppendNull appends a null row.
func (c *Column) AppendNull() {
	c.appendNullBitmap(false)
	c.data = append(c.data, make([]byte, c.tp.ElemLen())...)
	c.length++
}

// CopySelectedFrom copies the rows named by sel from src into the receiver,
// values and null flags both. Both columns must have the same element length
// and the receiver must already be sized to cover sel.
func (c *Column) CopySelectedFrom(src *Column, sel *Selection) {
	elemLen := c.tp.ElemLen()
	for row, ok := sel.NextSelected(0); ok; row, ok = sel.NextSelected(row + 1) {
		if row >= src.length {
			break
		}
		copy(c.data[row*elemLen:(row+1)*elemLen], src.data[row*elemLen:(row+1)*elemLen])
		c.SetNull(row, src.IsNull(row))
	}
}
