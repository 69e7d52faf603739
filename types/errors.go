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

import (
	"github.com/pingcap/errors"
)

// Error instances. Overflow is a data-dependent, row-scoped failure and a
// single instance is shared across every row it is recorded for.
var (
	// ErrOverflow is returned when a decimal value does not fit the target
	// precision.
	ErrOverflow = errors.New("decimal value out of range")
	// ErrBadDecimalType is returned for precision/scale outside the valid
	// ranges.
	ErrBadDecimalType = errors.New("invalid decimal precision or scale")
)
