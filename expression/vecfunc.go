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
	"github.com/pingcap/errors"

	"github.com/vecexpr/vecexpr/types"
	"github.com/vecexpr/vecexpr/util/chunk"
)

// VectorFunction evaluates one function over the active rows of a batch.
// Implementations write the value of every active row into the returned
// column, or record/return per-row failures through ctx. The result argument
// may carry a reusable buffer from a previous evaluation; implementations
// pass it through EnsureWritable.
type VectorFunction interface {
	Apply(ctx *EvalCtx, sel *chunk.Selection, args []*chunk.Vector, outType types.ColumnType, result *chunk.Column) (*chunk.Column, error)
}

// baseFunctionClass will be contained in every struct that implements a
// function class. Argument arity is a type-level precondition, verified once
// when a function instance is built and never per row.
type baseFunctionClass struct {
	funcName string
	minArgs  int
	maxArgs  int
}

func (b *baseFunctionClass) verifyArgs(args []*chunk.Vector) error {
	l := len(args)
	if l < b.minArgs || (b.maxArgs != -1 && l > b.maxArgs) {
		return errors.Annotatef(ErrIncorrectParameterCount, "%s", b.funcName)
	}
	return nil
}

// constBoolArg reads an argument that must be a per-call constant boolean,
// stored as int64 0/1.
func constBoolArg(arg *chunk.Vector) (bool, error) {
	if arg.Encoding() != chunk.EncodingConstant {
		return false, errors.Trace(ErrNonConstantArgument)
	}
	if arg.Base().IsNull(0) {
		return false, errors.Trace(ErrNonConstantArgument)
	}
	return arg.Base().Int64s()[0] != 0, nil
}

// constIntArg reads an argument that must be a per-call constant integer.
func constIntArg(arg *chunk.Vector) (int64, error) {
	if arg.Encoding() != chunk.EncodingConstant {
		return 0, errors.Trace(ErrNonConstantArgument)
	}
	if arg.Base().IsNull(0) {
		return 0, errors.Trace(ErrNonConstantArgument)
	}
	return arg.Base().Int64s()[0], nil
}
