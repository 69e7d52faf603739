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

// checkOverflowFunctionClass rescales a decimal column into a target decimal
// type, per row. On overflow a row is nulled when the null-on-overflow flag
// is set, failed otherwise. The input and output widths are inferred
// independently of each other, the logical input may come from arithmetic
// whose computed type differs in width class from the target.
type checkOverflowFunctionClass struct {
	baseFunctionClass
}

// CheckOverflowFunctionClass builds check_overflow instances.
// Args: decimal value, constant bool null-on-overflow. The target type is the
// call's output type.
var CheckOverflowFunctionClass = &checkOverflowFunctionClass{baseFunctionClass{"check_overflow", 2, 2}}

func (c *checkOverflowFunctionClass) GetFunction(args []*chunk.Vector) (VectorFunction, error) {
	if err := c.verifyArgs(args); err != nil {
		return nil, err
	}
	if args[0].Type().Kind != types.KindDecimal {
		return nil, errors.Annotatef(ErrIncorrectArgumentType, "%s", c.funcName)
	}
	return checkOverflowFunc, nil
}

// The function carries no per-call state and is shared across calls.
var checkOverflowFunc = &checkOverflowFunction{}

type checkOverflowFunction struct{}

func (f *checkOverflowFunction) Apply(ctx *EvalCtx, sel *chunk.Selection, args []*chunk.Vector, outType types.ColumnType, result *chunk.Column) (*chunk.Column, error) {
	nullOnOverflow, err := constBoolArg(args[1])
	if err != nil {
		return nil, err
	}
	result, err = ctx.EnsureWritable(sel, outType, result)
	if err != nil {
		return nil, err
	}
	dec, release := ctx.ExecCtx().BorrowDecoded()
	defer release()
	dec.Decode(args[0])
	return result, applyRescale(ctx, sel, dec, args[0].Type().Decimal, outType.Decimal, nullOnOverflow, result)
}

// applyRescale runs the rescale kernel matching the (input width, output
// width) combination. The combination is chosen once per call, never per row.
func applyRescale(ctx *EvalCtx, sel *chunk.Selection, dec *chunk.DecodedVector, from, to types.DecimalType, nullOnOverflow bool, result *chunk.Column) error {
	var rowFn func(row int) error
	switch {
	case !from.IsWide() && !to.IsWide():
		rs := result.Int64s()
		rowFn = func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			v, ok := types.RescaleRoundUpNarrow(dec.Int64At(row), from, to)
			if !ok {
				return overflowOrNull(result, row, nullOnOverflow)
			}
			rs[row] = v
			result.SetNull(row, false)
			return nil
		}
	case !from.IsWide() && to.IsWide():
		rs := result.Decimal128s()
		rowFn = func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			v, ok := types.RescaleRoundUpNarrowToWide(dec.Int64At(row), from, to)
			if !ok {
				return overflowOrNull(result, row, nullOnOverflow)
			}
			rs[row] = v
			result.SetNull(row, false)
			return nil
		}
	case from.IsWide() && !to.IsWide():
		rs := result.Int64s()
		rowFn = func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			v, ok := types.RescaleRoundUpWideToNarrow(dec.Decimal128At(row), from, to)
			if !ok {
				return overflowOrNull(result, row, nullOnOverflow)
			}
			rs[row] = v
			result.SetNull(row, false)
			return nil
		}
	default:
		rs := result.Decimal128s()
		rowFn = func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			v, ok := types.RescaleRoundUpWide(dec.Decimal128At(row), from, to)
			if !ok {
				return overflowOrNull(result, row, nullOnOverflow)
			}
			rs[row] = v
			result.SetNull(row, false)
			return nil
		}
	}
	return ctx.ApplyToSelected(sel, rowFn)
}

func overflowOrNull(result *chunk.Column, row int, nullOnOverflow bool) error {
	if nullOnOverflow {
		result.SetNull(row, true)
		return nil
	}
	return types.ErrOverflow
}

// makeDecimalFunctionClass builds a decimal from an integer that is already
// at the target scale. No rescale arithmetic happens, only the precision
// bound is validated.
type makeDecimalFunctionClass struct {
	baseFunctionClass
}

// MakeDecimalFunctionClass builds make_decimal instances.
// Args: int64 unscaled value, constant bool null-on-overflow.
var MakeDecimalFunctionClass = &makeDecimalFunctionClass{baseFunctionClass{"make_decimal", 2, 2}}

func (c *makeDecimalFunctionClass) GetFunction(args []*chunk.Vector, retType types.ColumnType) (VectorFunction, error) {
	if err := c.verifyArgs(args); err != nil {
		return nil, err
	}
	if retType.Kind != types.KindDecimal {
		return nil, errors.Annotatef(ErrIncorrectArgumentType, "%s", c.funcName)
	}
	return &makeDecimalFunction{
		precision: retType.Decimal.Precision,
		wide:      retType.Decimal.IsWide(),
	}, nil
}

type makeDecimalFunction struct {
	precision int
	wide      bool
}

func (f *makeDecimalFunction) Apply(ctx *EvalCtx, sel *chunk.Selection, args []*chunk.Vector, outType types.ColumnType, result *chunk.Column) (*chunk.Column, error) {
	nullOnOverflow, err := constBoolArg(args[1])
	if err != nil {
		return nil, err
	}
	result, err = ctx.EnsureWritable(sel, outType, result)
	if err != nil {
		return nil, err
	}
	dec, release := ctx.ExecCtx().BorrowDecoded()
	defer release()
	dec.Decode(args[0])

	if f.wide {
		// The wide width always accommodates an int64 magnitude, no bound
		// check is needed.
		rs := result.Decimal128s()
		return result, ctx.ApplyToSelected(sel, func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			rs[row] = decimal128.FromI64(dec.Int64At(row))
			result.SetNull(row, false)
			return nil
		})
	}

	bound := types.Pow10Narrow(f.precision)
	rs := result.Int64s()
	return result, ctx.ApplyToSelected(sel, func(row int) error {
		if dec.IsNullAt(row) {
			result.SetNull(row, true)
			return nil
		}
		unscaled := dec.Int64At(row)
		if unscaled <= -bound || unscaled >= bound {
			// Requested precision is too low to represent this value.
			return overflowOrNull(result, row, nullOnOverflow)
		}
		rs[row] = unscaled
		result.SetNull(row, false)
		return nil
	})
}

// roundDecimalFunctionClass rounds a decimal to a target number of fractional
// digits, possibly negative. The output type is derived from the input type
// and the rounding scale; overflow while rounding is always a hard per-row
// failure, there is no null-on-overflow flag.
type roundDecimalFunctionClass struct {
	baseFunctionClass
}

// RoundDecimalFunctionClass builds round_decimal instances.
// Args: decimal value, constant int rounding scale.
var RoundDecimalFunctionClass = &roundDecimalFunctionClass{baseFunctionClass{"round_decimal", 2, 2}}

func (c *roundDecimalFunctionClass) GetFunction(args []*chunk.Vector) (VectorFunction, error) {
	if err := c.verifyArgs(args); err != nil {
		return nil, err
	}
	if args[0].Type().Kind != types.KindDecimal {
		return nil, errors.Annotatef(ErrIncorrectArgumentType, "%s", c.funcName)
	}
	scale, err := constIntArg(args[1])
	if err != nil {
		return nil, err
	}
	from := args[0].Type().Decimal
	return &roundDecimalFunction{
		from:  from,
		to:    types.RoundResultType(from, int(scale)),
		scale: int(scale),
	}, nil
}

type roundDecimalFunction struct {
	from, to types.DecimalType
	scale    int
}

// ResultType returns the derived output type, the physical width follows
// from the derived precision.
func (f *roundDecimalFunction) ResultType() types.ColumnType {
	return types.ColumnType{Kind: types.KindDecimal, Decimal: f.to}
}

func (f *roundDecimalFunction) Apply(ctx *EvalCtx, sel *chunk.Selection, args []*chunk.Vector, _ types.ColumnType, result *chunk.Column) (*chunk.Column, error) {
	result, err := ctx.EnsureWritable(sel, f.ResultType(), result)
	if err != nil {
		return nil, err
	}
	dec, release := ctx.ExecCtx().BorrowDecoded()
	defer release()
	dec.Decode(args[0])
	if f.scale >= 0 {
		// A non-negative scale is a plain rescale to the derived type.
		return result, applyRescale(ctx, sel, dec, f.from, f.to, false, result)
	}
	return result, applyRoundNegativeScale(ctx, sel, dec, f.from, f.scale, f.to, result)
}

// applyRoundNegativeScale rounds to digits left of the decimal point: the
// fractional digits and |scale| integral digits are divided away with
// rounding, then |scale| trailing zeros are restored. The width combination
// is chosen once per call.
func applyRoundNegativeScale(ctx *EvalCtx, sel *chunk.Selection, dec *chunk.DecodedVector, from types.DecimalType, scale int, to types.DecimalType, result *chunk.Column) error {
	var rowFn func(row int) error
	switch {
	case !from.IsWide() && !to.IsWide():
		rs := result.Int64s()
		rowFn = func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			v, ok := types.RoundNegativeScaleNarrow(dec.Int64At(row), from, scale, to)
			if !ok {
				return types.ErrOverflow
			}
			rs[row] = v
			result.SetNull(row, false)
			return nil
		}
	case !from.IsWide() && to.IsWide():
		rs := result.Decimal128s()
		rowFn = func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			v, ok := types.RoundNegativeScaleNarrowToWide(dec.Int64At(row), from, scale, to)
			if !ok {
				return types.ErrOverflow
			}
			rs[row] = v
			result.SetNull(row, false)
			return nil
		}
	case from.IsWide() && !to.IsWide():
		rs := result.Int64s()
		rowFn = func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			v, ok := types.RoundNegativeScaleWideToNarrow(dec.Decimal128At(row), from, scale, to)
			if !ok {
				return types.ErrOverflow
			}
			rs[row] = v
			result.SetNull(row, false)
			return nil
		}
	default:
		rs := result.Decimal128s()
		rowFn = func(row int) error {
			if dec.IsNullAt(row) {
				result.SetNull(row, true)
				return nil
			}
			v, ok := types.RoundNegativeScaleWide(dec.Decimal128At(row), from, scale, to)
			if !ok {
				return types.ErrOverflow
			}
			rs[row] = v
			result.SetNull(row, false)
			return nil
		}
	}
	return ctx.ApplyToSelected(sel, rowFn)
}

// unscaledValueFunctionClass projects a narrow decimal column to its raw
// int64 representation. A wide input is rejected when the function is built,
// this is a type-level precondition, not a per-row check.
type unscaledValueFunctionClass struct {
	baseFunctionClass
}

// UnscaledValueFunctionClass builds unscaled_value instances.
// Args: narrow decimal value.
var UnscaledValueFunctionClass = &unscaledValueFunctionClass{baseFunctionClass{"unscaled_value", 1, 1}}

func (c *unscaledValueFunctionClass) GetFunction(args []*chunk.Vector) (VectorFunction, error) {
	if err := c.verifyArgs(args); err != nil {
		return nil, err
	}
	if args[0].Type().Kind != types.KindDecimal {
		return nil, errors.Annotatef(ErrIncorrectArgumentType, "%s", c.funcName)
	}
	if args[0].Type().Decimal.IsWide() {
		return nil, errors.Annotatef(ErrWideDecimalUnsupported, "%s", c.funcName)
	}
	return unscaledValueFunc, nil
}

var unscaledValueFunc = &unscaledValueFunction{}

type unscaledValueFunction struct{}

func (f *unscaledValueFunction) Apply(ctx *EvalCtx, sel *chunk.Selection, args []*chunk.Vector, _ types.ColumnType, result *chunk.Column) (*chunk.Column, error) {
	result, err := ctx.EnsureWritable(sel, types.Int64Type(), result)
	if err != nil {
		return nil, err
	}
	dec, release := ctx.ExecCtx().BorrowDecoded()
	defer release()
	dec.Decode(args[0])
	rs := result.Int64s()
	return result, ctx.ApplyToSelected(sel, func(row int) error {
		if dec.IsNullAt(row) {
			result.SetNull(row, true)
			return nil
		}
		rs[row] = dec.Int64At(row)
		result.SetNull(row, false)
		return nil
	})
}
