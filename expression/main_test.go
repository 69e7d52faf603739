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

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vecexpr/vecexpr/types"
	"github.com/vecexpr/vecexpr/util/chunk"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCtx(fields ...*chunk.Vector) (*ExecCtx, *EvalCtx) {
	ec := NewExecCtxWithPool(chunk.NewPool(1))
	return ec, NewEvalCtx(ec, fields)
}

func mustDecimalType(t *testing.T, precision, scale int) types.ColumnType {
	tp, err := types.DecimalColumnType(precision, scale)
	require.NoError(t, err)
	return tp
}

// decimalVector builds a flat narrow decimal vector. A nil entry slot can be
// marked null through nulls.
func decimalVector(t *testing.T, precision, scale int, vals []int64, nulls map[int]bool) *chunk.Vector {
	tp := mustDecimalType(t, precision, scale)
	col := chunk.NewColumn(tp, len(vals))
	for i, v := range vals {
		if nulls[i] {
			col.AppendNull()
		} else {
			col.AppendInt64(v)
		}
	}
	return chunk.NewFlatVector(col)
}

func int64Vector(vals []int64, nulls map[int]bool) *chunk.Vector {
	col := chunk.NewColumn(types.Int64Type(), len(vals))
	for i, v := range vals {
		if nulls[i] {
			col.AppendNull()
		} else {
			col.AppendInt64(v)
		}
	}
	return chunk.NewFlatVector(col)
}

func constBoolVector(v bool, length int) *chunk.Vector {
	col := chunk.NewColumn(types.Int64Type(), 1)
	if v {
		col.AppendInt64(1)
	} else {
		col.AppendInt64(0)
	}
	return chunk.NewConstantVector(col, length)
}

func constIntVector(v int64, length int) *chunk.Vector {
	col := chunk.NewColumn(types.Int64Type(), 1)
	col.AppendInt64(v)
	return chunk.NewConstantVector(col, length)
}
