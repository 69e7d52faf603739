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
	"github.com/bits-and-blooms/bitset"

	"github.com/vecexpr/vecexpr/util/chunk"
)

// RowErrors tracks per-row failures that occurred during expression
// evaluation. Used when EvalCtx's throwOnError is false.
//
// A row is in one of three states: no error, error flagged without a cause
// (captureErrorDetails off), or error with a captured cause. Causes are plain
// error values and may be shared by many rows and many tables. Capacity only
// grows; every copy operation keeps the first error recorded for a row.
type RowErrors struct {
	flags  *bitset.BitSet
	causes []error
	size   int
}

// NewRowErrors creates an error table covering rows [0, size).
func NewRowErrors(size int) *RowErrors {
	return &RowErrors{
		flags: bitset.New(uint(size)),
		size:  size,
	}
}

// Size returns the current capacity in rows.
func (e *RowErrors) Size() int {
	return e.size
}

// EnsureCapacity grows the table to cover at least size rows. New rows start
// with no error. No-op when already large enough.
func (e *RowErrors) EnsureCapacity(size int) {
	if size > e.size {
		e.size = size
	}
}

// HasError returns true if at least one row has an error.
func (e *RowErrors) HasError() bool {
	return e.flags.Any()
}

// HasErrorAt returns true if row has an error. Rows at or beyond Size report
// no error.
func (e *RowErrors) HasErrorAt(row int) bool {
	return row < e.size && e.flags.Test(uint(row))
}

// ErrorAt returns whether row has an error and the captured cause, nil when
// only the flag was recorded.
func (e *RowErrors) ErrorAt(row int) (bool, error) {
	if !e.HasErrorAt(row) {
		return false, nil
	}
	return true, e.causeAt(row)
}

// CheckErrorAt returns the captured cause if row has an error. A flagged row
// without a cause is an internal-consistency violation, the caller must make
// sure details were captured.
func (e *RowErrors) CheckErrorAt(row int) error {
	if !e.HasErrorAt(row) {
		return nil
	}
	if cause := e.causeAt(row); cause != nil {
		return cause
	}
	return SystemError(errErrorWithoutCause)
}

// FirstError finds the first active row in sel that has an error and returns
// that error, nil when no active row is flagged.
func (e *RowErrors) FirstError(sel *chunk.Selection) error {
	var firstErr error
	sel.TestSelected(func(row int) bool {
		if row >= e.size {
			return false
		}
		if e.HasErrorAt(row) {
			firstErr = e.CheckErrorAt(row)
			return false
		}
		return true
	})
	return firstErr
}

// CountErrors returns the number of rows with errors.
func (e *RowErrors) CountErrors() int {
	return int(e.flags.Count())
}

// SetError flags row as having an error without capturing a cause.
func (e *RowErrors) SetError(row int) {
	e.EnsureCapacity(row + 1)
	e.flags.Set(uint(row))
}

// SetErrorWithCause flags row and captures cause. A row that already has an
// error keeps whatever was recorded first.
func (e *RowErrors) SetErrorWithCause(row int, cause error) {
	e.EnsureCapacity(row + 1)
	if e.flags.Test(uint(row)) {
		return
	}
	e.flags.Set(uint(row))
	e.setCause(row, cause)
}

// ClearErrorAt removes the error at row.
func (e *RowErrors) ClearErrorAt(row int) {
	if row < e.size {
		e.flags.Clear(uint(row))
		if row < len(e.causes) {
			e.causes[row] = nil
		}
	}
}

// CopyErrorAt copies the error of from's fromRow into toRow. No-op if the
// source row has no error or the destination row already has one.
func (e *RowErrors) CopyErrorAt(from *RowErrors, fromRow, toRow int) {
	if !from.HasErrorAt(fromRow) {
		return
	}
	e.EnsureCapacity(toRow + 1)
	if e.flags.Test(uint(toRow)) {
		return
	}
	e.flags.Set(uint(toRow))
	e.setCause(toRow, from.causeAt(fromRow))
}

// CopyErrors copies errors of from at the active rows of sel into the same
// rows of the receiver. Existing destination errors are preserved.
func (e *RowErrors) CopyErrors(sel *chunk.Selection, from *RowErrors) {
	sel.ApplyToSelected(func(row int) {
		e.CopyErrorAt(from, row, row)
	})
}

// CopyAllErrors copies every error of from into the same rows of the
// receiver. Existing destination errors are preserved.
func (e *RowErrors) CopyAllErrors(from *RowErrors) {
	for row, ok := from.flags.NextSet(0); ok; row, ok = from.flags.NextSet(row + 1) {
		e.CopyErrorAt(from, int(row), int(row))
	}
}

// DeselectErrors deactivates every active row of sel that has an error, so
// later expressions skip rows that already failed.
func (e *RowErrors) DeselectErrors(sel *chunk.Selection) {
	for row, ok := e.flags.NextSet(0); ok; row, ok = e.flags.NextSet(row + 1) {
		if int(row) >= e.size {
			return
		}
		sel.SetValid(int(row), false)
	}
}

func (e *RowErrors) causeAt(row int) error {
	if row < len(e.causes) {
		return e.causes[row]
	}
	return nil
}

func (e *RowErrors) setCause(row int, cause error) {
	if cause == nil {
		return
	}
	// The cause slice is sized lazily, most tables never capture one.
	for len(e.causes) <= row {
		e.causes = append(e.causes, nil)
	}
	e.causes[row] = cause
}
