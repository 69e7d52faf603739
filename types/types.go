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

package types

// Kind is the physical kind of a column.
type Kind byte

const (
	// KindInt64 is a plain 64-bit signed integer column. Boolean results are
	// stored as int64 0/1.
	KindInt64 Kind = iota
	// KindDecimal is a fixed-point decimal column. The unscaled integer is
	// stored as int64 for narrow precision and as a 128-bit integer for wide
	// precision, see DecimalType.IsWide.
	KindDecimal
)

// ColumnType describes the logical type of a column. The decimal metadata is
// kept out of band at the column level, it is never stored per row.
type ColumnType struct {
	Kind    Kind
	Decimal DecimalType
}

// Int64Type returns the ColumnType of a plain int64 column.
func Int64Type() ColumnType {
	return ColumnType{Kind: KindInt64}
}

// DecimalColumnType builds a decimal ColumnType from precision and scale.
func DecimalColumnType(precision, scale int) (ColumnType, error) {
	dt, err := NewDecimalType(precision, scale)
	if err != nil {
		return ColumnType{}, err
	}
	return ColumnType{Kind: KindDecimal, Decimal: dt}, nil
}

// ElemLen returns the fixed element length in bytes of a column of this type.
func (t ColumnType) ElemLen() int {
	if t.Kind == KindDecimal && t.Decimal.IsWide() {
		return 16
	}
	return 8
}

// IsWideDecimal reports whether the type is a decimal stored in 128 bits.
func (t ColumnType) IsWideDecimal() bool {
	return t.Kind == KindDecimal && t.Decimal.IsWide()
}
