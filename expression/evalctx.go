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
	"github.com/pingcap/failpoint"

	"github.com/vecexpr/vecexpr/config"
	"github.com/vecexpr/vecexpr/metrics"
	"github.com/vecexpr/vecexpr/types"
	"github.com/vecexpr/vecexpr/util/chunk"
)

// EvalCtx holds the input fields, error state and the scope flags of one
// expression tree evaluated over one batch. It is created per batch, mutated
// in place while evaluation descends into sub-expressions, and discarded with
// the batch result. One EvalCtx is confined to one goroutine.
type EvalCtx struct {
	ec     *ExecCtx
	fields []*chunk.Vector

	// Corresponds 1:1 to fields. An entry is set to the decoded inner vector
	// after a dictionary or constant wrapper has been peeled off for the
	// current scope.
	peeledFields []*chunk.Vector
	// Set iff peeling succeeded for the current scope.
	peel *PeelInfo

	// True if null rows were already removed from the active selection. Only
	// possible while every expression in scope has default null behavior.
	nullsPruned bool

	throwOnError        bool
	captureErrorDetails bool

	// True if the current set of rows will not grow, e.g. not under a
	// conditional branch or a short-circuit operand.
	isFinalSelection bool
	// When isFinalSelection is false, the row set of the upper-most
	// conditional. Consumed by lazy-materialization decisions outside this
	// package; maintained faithfully across nesting here.
	finalSelection *chunk.Selection

	errs *RowErrors
}

// NewEvalCtx creates an evaluation context over the batch's positional field
// view.
func NewEvalCtx(ec *ExecCtx, fields []*chunk.Vector) *EvalCtx {
	return &EvalCtx{
		ec:                  ec,
		fields:              fields,
		throwOnError:        true,
		captureErrorDetails: config.GetGlobalConfig().CaptureErrorDetails,
		isFinalSelection:    true,
	}
}

// ExecCtx returns the owning execution context.
func (c *EvalCtx) ExecCtx() *ExecCtx {
	return c.ec
}

// Field returns the index-th input field. Once a wrapper has been peeled off
// for the current scope, the peeled substitute is returned instead of the
// raw field.
func (c *EvalCtx) Field(index int) *chunk.Vector {
	if index < len(c.peeledFields) && c.peeledFields[index] != nil {
		return c.peeledFields[index]
	}
	return c.fields[index]
}

// NumFields returns the number of input fields.
func (c *EvalCtx) NumFields() int {
	return len(c.fields)
}

// SetPeeled installs a peeled substitute for the index-th field.
func (c *EvalCtx) SetPeeled(index int, v *chunk.Vector) {
	if len(c.peeledFields) <= index {
		peeled := make([]*chunk.Vector, index+1)
		copy(peeled, c.peeledFields)
		c.peeledFields = peeled
	}
	c.peeledFields[index] = v
}

// PeelInfo returns the descriptor of the wrapper stripped for the current
// scope, nil when peeling was not attempted or failed.
func (c *EvalCtx) PeelInfo() *PeelInfo {
	return c.peel
}

// SetPeelInfo records the wrapper stripped for the current scope.
func (c *EvalCtx) SetPeelInfo(p *PeelInfo) {
	c.peel = p
}

// ThrowOnError reports whether per-row failures abort the batch instead of
// being recorded.
func (c *EvalCtx) ThrowOnError() bool {
	return c.throwOnError
}

// SetThrowOnError toggles the flag and returns the previous value so callers
// can restore it on scope exit.
func (c *EvalCtx) SetThrowOnError(v bool) bool {
	prev := c.throwOnError
	c.throwOnError = v
	return prev
}

// CaptureErrorDetails reports whether recorded failures keep their cause.
func (c *EvalCtx) CaptureErrorDetails() bool {
	return c.captureErrorDetails
}

// SetCaptureErrorDetails toggles the flag and returns the previous value.
func (c *EvalCtx) SetCaptureErrorDetails(v bool) bool {
	prev := c.captureErrorDetails
	c.captureErrorDetails = v
	return prev
}

// NullsPruned reports whether null rows were removed from the active
// selection for this scope.
func (c *EvalCtx) NullsPruned() bool {
	return c.nullsPruned
}

// SetNullsPruned toggles the flag and returns the previous value.
func (c *EvalCtx) SetNullsPruned(v bool) bool {
	prev := c.nullsPruned
	c.nullsPruned = v
	return prev
}

// IsFinalSelection reports whether the current row set may still grow before
// the batch completes.
func (c *EvalCtx) IsFinalSelection() bool {
	return c.isFinalSelection
}

// FinalSelection returns the fixed outer row set, nil at top level.
func (c *EvalCtx) FinalSelection() *chunk.Selection {
	return c.finalSelection
}

// Errors returns the current error table, nil until a failure has been
// recorded.
func (c *EvalCtx) Errors() *RowErrors {
	return c.errs
}

// EnsureErrors returns the current error table, creating it to cover size
// rows on first use.
func (c *EvalCtx) EnsureErrors(size int) *RowErrors {
	if c.errs == nil {
		c.errs = NewRowErrors(size)
	} else {
		c.errs.EnsureCapacity(size)
	}
	return c.errs
}

// ApplyToSelected invokes fn for every active row of sel in ascending order.
// Row effects are independent, fn must not depend on other rows.
//
// With throwOnError set, the first failure propagates and the remaining rows
// are not visited; rows already processed keep their effects. Otherwise a
// user-level failure is recorded into the error table for that row and the
// loop continues, while a system-level failure always propagates.
func (c *EvalCtx) ApplyToSelected(sel *chunk.Selection, fn func(row int) error) error {
	failpoint.Inject("mockEvalSystemError", func() {
		failpoint.Return(SystemError(errors.New("mock eval system error")))
	})
	metrics.RowsEvaluatedCounter.Add(float64(sel.Count()))
	for row, ok := sel.NextSelected(0); ok; row, ok = sel.NextSelected(row + 1) {
		err := fn(row)
		if err == nil {
			continue
		}
		if c.throwOnError || IsSystemError(err) {
			return err
		}
		c.addError(row, err)
	}
	return nil
}

// RecordError classifies err exactly like ApplyToSelected does and either
// records it for row or returns it for propagation. Used when the caller has
// already caught a failure and wants to hand it to the context.
func (c *EvalCtx) RecordError(row int, err error) error {
	if err == nil {
		return nil
	}
	if c.throwOnError || IsSystemError(err) {
		return err
	}
	c.addError(row, err)
	return nil
}

// The cause may have been computed even when details are off, it is simply
// dropped here; with details off it is unobservable by callers.
func (c *EvalCtx) addError(row int, cause error) {
	metrics.RowErrorCounter.Inc()
	errs := c.EnsureErrors(row + 1)
	if c.captureErrorDetails {
		errs.SetErrorWithCause(row, cause)
	} else {
		errs.SetError(row)
	}
}

// EnsureWritable makes result writable at every row named by sel under the
// requested type. The existing buffer is reused when it is type compatible,
// otherwise a fresh column comes from the pool. Rows not yet written are
// null.
func (c *EvalCtx) EnsureWritable(sel *chunk.Selection, tp types.ColumnType, result *chunk.Column) (*chunk.Column, error) {
	n := sel.Size()
	if result == nil || result.Type() != tp {
		col, err := c.ec.GetColumn(tp, n)
		if err != nil {
			return nil, err
		}
		col.Resize(n, true)
		return col, nil
	}
	result.EnsureRows(n)
	return result, nil
}

func (c *EvalCtx) resultShouldBePreserved(result *chunk.Column, sel *chunk.Selection) bool {
	return result != nil && !c.isFinalSelection && !sel.Equal(c.finalSelection)
}

// MoveOrCopyResult copies the active rows of localResult into result when
// result is partially populated and must be preserved, i.e. the caller is
// under a conditional branch that computed values only for a narrowed row
// set. Otherwise localResult is taken over as the result directly.
func (c *EvalCtx) MoveOrCopyResult(localResult *chunk.Column, sel *chunk.Selection, result *chunk.Column) (*chunk.Column, error) {
	if c.resultShouldBePreserved(result, sel) {
		if result.Type() != localResult.Type() {
			return nil, SystemError(errResultTypeMismatch)
		}
		result.EnsureRows(sel.Size())
		result.CopySelectedFrom(localResult, sel)
		return result, nil
	}
	return localResult, nil
}
