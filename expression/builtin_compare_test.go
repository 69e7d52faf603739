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

func TestCompareNarrow(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{100, 200, 300, 0}, map[int]bool{3: true}),
		decimalVector(t, 10, 2, []int64{200, 200, 200, 200}, nil),
	}
	sel := chunk.NewSelection(4, true)

	cases := []struct {
		class *compareFunctionClass
		want  []int64
	}{
		{EqualToFunctionClass, []int64{0, 1, 0, 0}},
		{LessThanFunctionClass, []int64{1, 0, 0, 0}},
		{GreaterThanFunctionClass, []int64{0, 0, 1, 0}},
	}
	for _, tc := range cases {
		_, ctx := newTestCtx(args...)
		fn, err := tc.class.GetFunction(args)
		require.NoError(t, err)
		result, err := fn.Apply(ctx, sel, args, types.Int64Type(), nil)
		require.NoError(t, err)
		for row := 0; row < 3; row++ {
			require.Equal(t, tc.want[row], result.Int64s()[row], "func %s row %d", tc.class.funcName, row)
			require.False(t, result.IsNull(row))
		}
		// A null operand yields a null comparison.
		require.True(t, result.IsNull(3))
	}
}

func TestCompareConstantRHS(t *testing.T) {
	rhs := chunk.NewColumn(mustDecimalType(t, 10, 2), 1)
	rhs.AppendInt64(200)
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{100, 200, 300}, nil),
		chunk.NewConstantVector(rhs, 3),
	}
	_, ctx := newTestCtx(args...)
	fn, err := LessThanFunctionClass.GetFunction(args)
	require.NoError(t, err)

	sel := chunk.NewSelection(3, true)
	result, err := fn.Apply(ctx, sel, args, types.Int64Type(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Int64s()[0])
	require.Equal(t, int64(0), result.Int64s()[1])
	require.Equal(t, int64(0), result.Int64s()[2])
}

func TestCompareWide(t *testing.T) {
	lo := decimal128.FromI64(-5)
	hi := decimal128.GetScaleMultiplier(20)
	args := []*chunk.Vector{
		wideDecimalVector(t, 24, 2, []decimal128.Num{lo, hi, hi}, nil),
		wideDecimalVector(t, 24, 2, []decimal128.Num{hi, lo, hi}, nil),
	}
	_, ctx := newTestCtx(args...)

	fn, err := LessThanFunctionClass.GetFunction(args)
	require.NoError(t, err)
	sel := chunk.NewSelection(3, true)
	result, err := fn.Apply(ctx, sel, args, types.Int64Type(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Int64s()[0])
	require.Equal(t, int64(0), result.Int64s()[1])
	require.Equal(t, int64(0), result.Int64s()[2])

	fn, err = EqualToFunctionClass.GetFunction(args)
	require.NoError(t, err)
	result, err = fn.Apply(ctx, sel, args, types.Int64Type(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), result.Int64s()[0])
	require.Equal(t, int64(1), result.Int64s()[2])
}

func TestCompareTypeMismatch(t *testing.T) {
	args := []*chunk.Vector{
		decimalVector(t, 10, 2, []int64{1}, nil),
		decimalVector(t, 10, 3, []int64{1}, nil),
	}
	_, err := EqualToFunctionClass.GetFunction(args)
	require.ErrorIs(t, err, ErrIncorrectArgumentType)
}
