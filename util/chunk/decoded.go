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
	"github.com/apache/arrow-go/v18/arrow/decimal128"
)

// DecodedVector is a flat, index-translated view over a possibly-wrapped
// vector. Decoding strips one level of dictionary or constant wrapping so the
// per-row accessors read plain data.
type DecodedVector struct {
	base     *Column
	indices  []uint32
	constant bool
}

// Decode points the view at v. The view stays valid while v's backing column
// is alive and unmodified.
func (d *DecodedVector) Decode(v *Vector) {
	d.base = v.Base()
	d.indices = nil
	d.constant = false
	switch v.Encoding() {
	case EncodingDictionary:
		d.indices = v.Indices()
	case EncodingConstant:
		d.constant = true
	}
}

// Reset detaches the view so pooled instances do not pin columns.
func (d *DecodedVector) Reset() {
	d.base = nil
	d.indices = nil
	d.constant = false
}

// IsIdentityMapping reports whether row i reads base row i.
func (d *DecodedVector) IsIdentityMapping() bool {
	return d.indices == nil && !d.constant
}

// IsConstantMapping reports whether every row reads the same base row.
func (d *DecodedVector) IsConstantMapping() bool {
	return d.constant
}

func (d *DecodedVector) index(i int) int {
	if d.constant {
		return 0
	}
	if d.indices != nil {
		return int(d.indices[i])
	}
	return i
}

// IsNullAt reports whether row i is null.
func (d *DecodedVector) IsNullAt(i int) bool {
	return d.base.IsNull(d.index(i))
}

// Int64At returns the int64 value at row i.
func (d *DecodedVector) Int64At(i int) int64 {
	return d.base.Int64s()[d.index(i)]
}

// Decimal128At returns the 128-bit decimal value at row i.
func (d *DecodedVector) Decimal128At(i int) decimal128.Num {
	return d.base.Decimal128s()[d.index(i)]
}
