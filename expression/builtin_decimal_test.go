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
	"testing"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/stretchr/testify/require"

	"github.com/vecexpr/vecexpr/types"
	"github.com/vecexpr/vecexpr/util/chunk"
)

func wideDecimalVector(t *testing.T, precision, scale int, vals []decimal128.Num, nulls map[int]bool) *chunk.Vector {
	tp := mustDecimalType(t, precision, scale)
	col := chunk.NewColumn(tp, len(vals))
	for i, v := range vals {
		if nulls[i] {
			col.AppendNull()
		} else {
			col.AppendDecimal128(v)
		}
	}
	return chunk.NewFlatVector(col)
}

func TestCheckOverflowRescale(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{12345, -99999, 0}, map[int]bool{2: true}),
		constBoolVector(false, 3),
	}
	_, ctx := newTestCtx(args...)
	fn, err := CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)

	sel := chunk.NewSelection(3, true)
	result, err := fn.Apply(ctx, sel, args, mustDecimalType(t, 12, 4), nil)
	require.NoError(t, err)
	require.Equal(t, int64(1234500), result.Int64s()[0])
	require.Equal(t, int64(-9999900), result.Int64s()[1])
	require.True(t, result.IsNull(2))
	require.Nil(t, ctx.Errors())
}

func TestCheckOverflowNullOnOverflow(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{12345, 9999, 123456}, nil),
		constBoolVector(true, 3),
	}
	_, ctx := newTestCtx(args...)
	fn, err := CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)

	sel := chunk.NewSelection(3, true)
	result, err := fn.Apply(ctx, sel, args, mustDecimalType(t, 4, 2), nil)
	require.NoError(t, err)

	// Overflowing rows are nulled, no error is recorded, and sibling rows
	// keep their computed values.
	require.True(t, result.IsNull(0))
	require.Equal(t, int64(9999), result.Int64s()[1])
	require.False(t, result.IsNull(1))
	require.True(t, result.IsNull(2))
	require.Nil(t, ctx.Errors())
}

func TestCheckOverflowRecordsRowErrors(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{12345, 9999, 123456}, nil),
		constBoolVector(false, 3),
	}
	_, ctx := newTestCtx(args...)
	ctx.SetThrowOnError(false)
	fn, err := CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)

	sel := chunk.NewSelection(3, true)
	result, err := fn.Apply(ctx, sel, args, mustDecimalType(t, 4, 2), nil)
	require.NoError(t, err)
	require.Equal(t, int64(9999), result.Int64s()[1])

	errs := ctx.Errors()
	require.NotNil(t, errs)
	require.Equal(t, 2, errs.CountErrors())
	require.True(t, errs.HasErrorAt(0))
	require.True(t, errs.HasErrorAt(2))
	_, cause := errs.ErrorAt(0)
	require.ErrorIs(t, cause, types.ErrOverflow)
}

func TestCheckOverflowThrows(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{123456}, nil),
		constBoolVector(false, 1),
	}
	_, ctx := newTestCtx(args...)
	fn, err := CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)

	sel := chunk.NewSelection(1, true)
	_, err = fn.Apply(ctx, sel, args, mustDecimalType(t, 4, 2), nil)
	require.ErrorIs(t, err, types.ErrOverflow)
}

func TestCheckOverflowAcrossWidths(t *testing.T) {
	// Narrow input, wide target.
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{12345}, nil),
		constBoolVector(false, 1),
	}
	_, ctx := newTestCtx(args...)
	fn, err := CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)
	sel := chunk.NewSelection(1, true)
	result, err := fn.Apply(ctx, sel, args, mustDecimalType(t, 24, 4), nil)
	require.NoError(t, err)
	require.Equal(t, decimal128.FromI64(1234500), result.Decimal128s()[0])

	// Wide input, narrow target.
	args = []*chunk.Vector{
		wideDecimalVector(t, 24, 6, []decimal128.Num{decimal128.FromI64(123456789)}, nil),
		constBoolVector(false, 1),
	}
	_, ctx = newTestCtx(args...)
	fn, err = CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)
	result, err = fn.Apply(ctx, sel, args, mustDecimalType(t, 10, 2), nil)
	require.NoError(t, err)
	require.Equal(t, int64(12346), result.Int64s()[0])
}

func TestCheckOverflowSelectionSubset(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{100, 200, 300}, nil),
		constBoolVector(false, 3),
	}
	_, ctx := newTestCtx(args...)
	fn, err := CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)

	sel := chunk.NewSelection(3, false)
	sel.SetValid(1, true)
	result, err := fn.Apply(ctx, sel, args, mustDecimalType(t, 10, 2), nil)
	require.NoError(t, err)

	// Unselected rows stay null.
	require.True(t, result.IsNull(0))
	require.Equal(t, int64(200), result.Int64s()[1])
	require.True(t, result.IsNull(2))
}

func TestCheckOverflowArgValidation(t *testing.T) {
	dec := decimalVector(t, 10, 2, []int64{1}, nil)
	_, err := CheckOverflowFunctionClass.GetFunction([]*chunk.Vector{dec})
	require.ErrorIs(t, err, ErrIncorrectParameterCount)

	ints := int64Vector([]int64{1}, nil)
	_, err = CheckOverflowFunctionClass.GetFunction([]*chunk.Vector{ints, constBoolVector(false, 1)})
	require.ErrorIs(t, err, ErrIncorrectArgumentType)

	// The flag must be constant over the whole batch.
	args := []*chunk.Vector{dec, int64Vector([]int64{1}, nil)}
	_, ctx := newTestCtx(args...)
	fn, err := CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)
	_, err = fn.Apply(ctx, chunk.NewSelection(1, true), args, mustDecimalType(t, 10, 2), nil)
	require.ErrorIs(t, err, ErrNonConstantArgument)
}

func TestMakeDecimal(t *testing.T) {
	target := mustDecimalType(t, 2, 0)
	args := []*chunk.Vector{
		int64Vector([]int64{99, 123, -99, -123, 0}, map[int]bool{4: true}),
		constBoolVector(true, 5),
	}
	_, ctx := newTestCtx(args...)
	fn, err := MakeDecimalFunctionClass.GetFunction(args, target)
	require.NoError(t, err)

	sel := chunk.NewSelection(5, true)
	result, err := fn.Apply(ctx, sel, args, target, nil)
	require.NoError(t, err)
	require.Equal(t, int64(99), result.Int64s()[0])
	require.True(t, result.IsNull(1))
	require.Equal(t, int64(-99), result.Int64s()[2])
	require.True(t, result.IsNull(3))
	require.True(t, result.IsNull(4))
}

func TestMakeDecimalErrorsWithoutFlag(t *testing.T) {
	target := mustDecimalType(t, 2, 0)
	args := []*chunk.Vector{
		int64Vector([]int64{123, 45}, nil),
		constBoolVector(false, 2),
	}
	_, ctx := newTestCtx(args...)
	ctx.SetThrowOnError(false)
	fn, err := MakeDecimalFunctionClass.GetFunction(args, target)
	require.NoError(t, err)

	sel := chunk.NewSelection(2, true)
	result, err := fn.Apply(ctx, sel, args, target, nil)
	require.NoError(t, err)
	require.Equal(t, int64(45), result.Int64s()[1])
	require.True(t, ctx.Errors().HasErrorAt(0))
	require.False(t, ctx.Errors().HasErrorAt(1))
}

func TestMakeDecimalWideSkipsBoundCheck(t *testing.T) {
	target := mustDecimalType(t, 19, 0)
	huge := int64(9_000_000_000_000_000_000)
	args := []*chunk.Vector{
		int64Vector([]int64{huge, -huge}, nil),
		constBoolVector(false, 2),
	}
	_, ctx := newTestCtx(args...)
	fn, err := MakeDecimalFunctionClass.GetFunction(args, target)
	require.NoError(t, err)

	sel := chunk.NewSelection(2, true)
	result, err := fn.Apply(ctx, sel, args, target, nil)
	require.NoError(t, err)
	require.Equal(t, decimal128.FromI64(huge), result.Decimal128s()[0])
	require.Equal(t, decimal128.FromI64(-huge), result.Decimal128s()[1])
}

func TestMakeDecimalRejectsNonDecimalTarget(t *testing.T) {
	args := []*chunk.Vector{
		int64Vector([]int64{1}, nil),
		constBoolVector(false, 1),
	}
	_, err := MakeDecimalFunctionClass.GetFunction(args, types.Int64Type())
	require.ErrorIs(t, err, ErrIncorrectArgumentType)
}

func TestRoundDecimal(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 3, []int64{12345, 12350, -12350, 0}, map[int]bool{3: true}),
		constIntVector(1, 4),
	}
	_, ctx := newTestCtx(args...)
	fn, err := RoundDecimalFunctionClass.GetFunction(args)
	require.NoError(t, err)

	rd := fn.(*roundDecimalFunction)
	require.Equal(t, types.DecimalType{Precision: 9, Scale: 1}, rd.ResultType().Decimal)

	sel := chunk.NewSelection(4, true)
	// The passed output type is ignored, the derived one is used.
	result, err := fn.Apply(ctx, sel, args, types.Int64Type(), nil)
	require.NoError(t, err)
	require.Equal(t, rd.ResultType(), result.Type())
	require.Equal(t, int64(123), result.Int64s()[0])
	require.Equal(t, int64(124), result.Int64s()[1])
	require.Equal(t, int64(-124), result.Int64s()[2])
	require.True(t, result.IsNull(3))
}

func TestRoundDecimalNegativeScale(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 3, []int64{1234567, 1256789, -1256789, 49999}, nil),
		constIntVector(-2, 4),
	}
	_, ctx := newTestCtx(args...)
	fn, err := RoundDecimalFunctionClass.GetFunction(args)
	require.NoError(t, err)

	rd := fn.(*roundDecimalFunction)
	require.Equal(t, types.DecimalType{Precision: 8, Scale: 0}, rd.ResultType().Decimal)

	sel := chunk.NewSelection(4, true)
	result, err := fn.Apply(ctx, sel, args, rd.ResultType(), nil)
	require.NoError(t, err)
	// Rounded to hundreds, with the trailing zeros restored at scale 0.
	require.Equal(t, int64(1200), result.Int64s()[0])
	require.Equal(t, int64(1300), result.Int64s()[1])
	require.Equal(t, int64(-1300), result.Int64s()[2])
	require.Equal(t, int64(0), result.Int64s()[3])
}

func TestRoundDecimalScaleMustBeConstant(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 3, []int64{1}, nil),
		int64Vector([]int64{1}, nil),
	}
	_, err := RoundDecimalFunctionClass.GetFunction(args)
	require.ErrorIs(t, err, ErrNonConstantArgument)
}

func TestUnscaledValue(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{12345, -67, 0}, map[int]bool{2: true}),
	}
	_, ctx := newTestCtx(args...)
	fn, err := UnscaledValueFunctionClass.GetFunction(args)
	require.NoError(t, err)

	sel := chunk.NewSelection(3, true)
	result, err := fn.Apply(ctx, sel, args, types.Int64Type(), nil)
	require.NoError(t, err)
	require.Equal(t, types.Int64Type(), result.Type())
	require.Equal(t, int64(12345), result.Int64s()[0])
	require.Equal(t, int64(-67), result.Int64s()[1])
	require.True(t, result.IsNull(2))
}

func TestUnscaledValueRejectsWide(t *testing.T) {
	args := []*chunk.Vector{
		wideDecimalVector(t, 24, 2, []decimal128.Num{decimal128.FromI64(1)}, nil),
	}
	_, err := UnscaledValueFunctionClass.GetFunction(args)
	require.ErrorIs(t, err, ErrWideDecimalUnsupported)
}

func TestCheckOverflowDictionaryInput(t *testing.T) {
	base := chunk.NewColumn(mustDecimalType(t, 10, 2), 2)
	base.AppendInt64(100)
	base.AppendInt64(200)
	args := []*chunk.Vector{
		chunk.NewDictionaryVector([]uint32{1, 0, 1}, base),
		constBoolVector(false, 3),
	}
	_, ctx := newTestCtx(args...)
	fn, err := CheckOverflowFunctionClass.GetFunction(args)
	require.NoError(t, err)

	sel := chunk.NewSelection(3, true)
	result, err := fn.Apply(ctx, sel, args, mustDecimalType(t, 12, 4), nil)
	require.NoError(t, err)
	require.Equal(t, int64(20000), result.Int64s()[0])
	require.Equal(t, int64(10000), result.Int64s()[1])
	require.Equal(t, int64(20000), result.Int64s()[2])
}
