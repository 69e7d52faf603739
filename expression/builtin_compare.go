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

package expression

import (
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/pingcap/errors"

	"github.com/vecexpr/vecexpr/types"
	"github.com/vecexpr/vecexpr/util/chunk"
)

// CompareOp enumerates the comparison operators.
type CompareOp int

// Comparison operators.
const (
	CompareEQ CompareOp = iota
	CompareLT
	CompareGT
)

type compareFunctionClass struct {
	baseFunctionClass
	op CompareOp
}

// Comparison function classes. Both arguments must have the same type;
// results are int64 0/1 with default null behavior.
var (
	EqualToFunctionClass     = &compareFunctionClass{baseFunctionClass{"eq", 2, 2}, CompareEQ}
	LessThanFunctionClass    = &compareFunctionClass{baseFunctionClass{"lt", 2, 2}, CompareLT}
	GreaterThanFunctionClass = &compareFunctionClass{baseFunctionClass{"gt", 2, 2}, CompareGT}
)

func (c *compareFunctionClass) GetFunction(args []*chunk.Vector) (VectorFunction, error) {
	if err := c.verifyArgs(args); err != nil {
		return nil, err
	}
	if args[0].Type() != args[1].Type() {
		return nil, errors.Annotatef(ErrIncorrectArgumentType, "%s", c.funcName)
	}
	return &compareFunction{op: c.op, wide: args[0].Type().IsWideDecimal()}, nil
}

type compareFunction struct {
	op   CompareOp
	wide bool
}

func (f *compareFunction) Apply(ctx *EvalCtx, sel *chunk.Selection, args []*chunk.Vector, _ types.ColumnType, result *chunk.Column) (*chunk.Column, error) {
	result, err := ctx.EnsureWritable(sel, types.Int64Type(), result)
	if err != nil {
		return nil, err
	}
	d0, release0 := ctx.ExecCtx().BorrowDecoded()
	defer release0()
	d1, release1 := ctx.ExecCtx().BorrowDecoded()
	defer release1()
	d0.Decode(args[0])
	d1.Decode(args[1])

	var cmpAt func(row int) int
	if f.wide {
		if d1.IsConstantMapping() && !d1.IsNullAt(0) {
			rhs := d1.Decimal128At(0)
			cmpAt = func(row int) int { return cmpWide(d0.Decimal128At(row), rhs) }
		} else {
			cmpAt = func(row int) int { return cmpWide(d0.Decimal128At(row), d1.Decimal128At(row)) }
		}
	} else {
		if d1.IsConstantMapping() && !d1.IsNullAt(0) {
			rhs := d1.Int64At(0)
			cmpAt = func(row int) int { return cmpInt64(d0.Int64At(row), rhs) }
		} else {
			cmpAt = func(row int) int { return cmpInt64(d0.Int64At(row), d1.Int64At(row)) }
		}
	}

	truth := func(cmp int) int64 {
		switch f.op {
		case CompareEQ:
			if cmp == 0 {
				return 1
			}
		case CompareLT:
			if cmp < 0 {
				return 1
			}
		case CompareGT:
			if cmp > 0 {
				return 1
			}
		}
		return 0
	}

	rs := result.Int64s()
	return result, ctx.ApplyToSelected(sel, func(row int) error {
		if d0.IsNullAt(row) || d1.IsNullAt(row) {
			result.SetNull(row, true)
			return nil
		}
		rs[row] = truth(cmpAt(row))
		result.SetNull(row, false)
		return nil
	})
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpWide(a, b decimal128.Num) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}
