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
	stderrors "errors"

	"github.com/pingcap/errors"
)

// Error instances.
var (
	// ErrIncorrectParameterCount reports a wrong argument count at function
	// construction time.
	ErrIncorrectParameterCount = errors.New("incorrect parameter count in function call")
	// ErrNonConstantArgument reports an argument that must be a per-call
	// constant but is not.
	ErrNonConstantArgument = errors.New("argument must be constant for the whole batch")
	// ErrWideDecimalUnsupported reports a wide decimal input where only the
	// narrow width is accepted.
	ErrWideDecimalUnsupported = errors.New("wide decimal argument is not supported")
	// ErrIncorrectArgumentType reports an argument whose type does not match
	// the function, detected at construction time.
	ErrIncorrectArgumentType = errors.New("incorrect argument type in function call")

	errErrorWithoutCause   = errors.New("row error recorded without a captured cause")
	errScratchPoolExhaust  = errors.New("scratch column pool exhausted")
	errResultTypeMismatch  = errors.New("result column type mismatch")
	errSelectionOutOfRange = errors.New("row outside the current selection bound")
)

// Two failure levels flow out of per-row evaluation. User-level failures are
// data dependent and isolable to one row. System-level failures (resource
// exhaustion, invariant violations) must always abort the whole call; they
// are never downgraded to a per-row record. An error with no classification
// is treated as user level, matching the row-isolation default of the
// evaluation loop; genuinely fatal conditions are raised as explicit system
// errors or as panics.
type classifiedError struct {
	system bool
	cause  error
}

func (e *classifiedError) Error() string {
	return e.cause.Error()
}

// Unwrap exposes the cause to errors.Is/As chains.
func (e *classifiedError) Unwrap() error {
	return e.cause
}

// Cause exposes the cause to pingcap/errors traversal.
func (e *classifiedError) Cause() error {
	return e.cause
}

// SystemError marks err as a system-level failure.
func SystemError(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{system: true, cause: err}
}

// UserError marks err as a user-level, row-scoped failure.
func UserError(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{system: false, cause: err}
}

// IsSystemError reports whether err carries a system-level classification
// anywhere in its chain.
func IsSystemError(err error) bool {
	for err != nil {
		if ce, ok := err.(*classifiedError); ok {
			return ce.system
		}
		err = stderrors.Unwrap(err)
	}
	return false
}
