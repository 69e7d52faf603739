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
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/pingcap/errors"
)

const (
	// MaxDecimalPrecision is the largest supported number of significant
	// digits.
	MaxDecimalPrecision = 38
	// MaxNarrowPrecision is the largest precision representable by an int64
	// unscaled value. Anything above it is stored as a 128-bit integer.
	MaxNarrowPrecision = 18
)

// DecimalType is the (precision, scale) metadata of a decimal column.
type DecimalType struct {
	Precision int
	Scale     int
}

// NewDecimalType validates precision in [1, 38] and scale in [0, precision].
func NewDecimalType(precision, scale int) (DecimalType, error) {
	if precision < 1 || precision > MaxDecimalPrecision {
		return DecimalType{}, errors.Annotatef(ErrBadDecimalType, "precision %d", precision)
	}
	if scale < 0 || scale > precision {
		return DecimalType{}, errors.Annotatef(ErrBadDecimalType, "scale %d for precision %d", scale, precision)
	}
	return DecimalType{Precision: precision, Scale: scale}, nil
}

// IsWide reports whether values of this type need 128-bit storage.
func (t DecimalType) IsWide() bool {
	return t.Precision > MaxNarrowPrecision
}

// pow10 holds 10^i for i in [0, 18].
var pow10 = [MaxNarrowPrecision + 1]int64{
	1,
	10,
	100,
	1000,
	10000,
	100000,
	1000000,
	10000000,
	100000000,
	1000000000,
	10000000000,
	100000000000,
	1000000000000,
	10000000000000,
	100000000000000,
	1000000000000000,
	10000000000000000,
	100000000000000000,
	1000000000000000000,
}

// Pow10Narrow returns 10^n as int64, n must be in [0, 18].
func Pow10Narrow(n int) int64 {
	return pow10[n]
}

// RescaleRoundUpNarrow converts an int64 unscaled value between two narrow
// decimal types. Discarded digits are rounded half up, away from zero. The
// second return value is false when the result does not fit to.Precision
// significant digits.
func RescaleRoundUpNarrow(v int64, from, to DecimalType) (int64, bool) {
	delta := to.Scale - from.Scale
	if delta >= 0 {
		headroom := to.Precision - delta
		if headroom <= 0 {
			if v == 0 {
				return 0, true
			}
			return 0, false
		}
		bound := pow10[headroom]
		if v >= bound || v <= -bound {
			return 0, false
		}
		return v * pow10[delta], true
	}
	divisor := pow10[-delta]
	q, r := v/divisor, v%divisor
	if r < 0 {
		r = -r
	}
	if 2*r >= divisor {
		if v < 0 {
			q--
		} else {
			q++
		}
	}
	bound := pow10[to.Precision]
	if q >= bound || q <= -bound {
		return 0, false
	}
	return q, true
}

// RescaleRoundUpWide is the 128-bit counterpart of RescaleRoundUpNarrow.
func RescaleRoundUpWide(v decimal128.Num, from, to DecimalType) (decimal128.Num, bool) {
	delta := to.Scale - from.Scale
	if delta >= 0 {
		headroom := to.Precision - delta
		if headroom <= 0 {
			if v.Sign() == 0 {
				return decimal128.Num{}, true
			}
			return decimal128.Num{}, false
		}
		// Bounding the input before multiplying keeps the product inside
		// 128 bits, 10^38 < 2^127.
		bound := decimal128.GetScaleMultiplier(headroom)
		if !v.Abs().Less(bound) {
			return decimal128.Num{}, false
		}
		return v.Mul(decimal128.GetScaleMultiplier(delta)), true
	}
	divisor := decimal128.GetScaleMultiplier(-delta)
	q, r := v.Div(divisor)
	half := decimal128.GetHalfScaleMultiplier(-delta)
	if !r.Abs().Less(half) {
		if v.Sign() < 0 {
			q = q.Add(decimal128.FromI64(-1))
		} else {
			q = q.Add(decimal128.FromI64(1))
		}
	}
	if !q.FitsInPrecision(int32(to.Precision)) {
		return decimal128.Num{}, false
	}
	return q, true
}

// RescaleRoundUpNarrowToWide rescales an int64 unscaled value into a wide
// target type.
func RescaleRoundUpNarrowToWide(v int64, from, to DecimalType) (decimal128.Num, bool) {
	return RescaleRoundUpWide(decimal128.FromI64(v), from, to)
}

// RescaleRoundUpWideToNarrow rescales a 128-bit unscaled value into a narrow
// target type. The result is guaranteed to fit int64 because to.Precision is
// at most 18.
func RescaleRoundUpWideToNarrow(v decimal128.Num, from, to DecimalType) (int64, bool) {
	q, ok := RescaleRoundUpWide(v, from, to)
	if !ok {
		return 0, false
	}
	return int64(q.LowBits()), true
}

// RoundNegativeScaleWide rounds v, a value of type from, to -scale digits to
// the left of the decimal point. The discarded digits round half up, away
// from zero. The result has scale 0 and must fit to.Precision significant
// digits. scale must be negative.
func RoundNegativeScaleWide(v decimal128.Num, from DecimalType, scale int, to DecimalType) (decimal128.Num, bool) {
	factor := from.Scale - scale
	if factor > MaxDecimalPrecision {
		// The divisor exceeds any representable magnitude and the remainder
		// can never reach half of it, everything rounds to zero.
		return decimal128.Num{}, true
	}
	divisor := decimal128.GetScaleMultiplier(factor)
	q, r := v.Div(divisor)
	half := decimal128.GetHalfScaleMultiplier(factor)
	if !r.Abs().Less(half) {
		if v.Sign() < 0 {
			q = q.Add(decimal128.FromI64(-1))
		} else {
			q = q.Add(decimal128.FromI64(1))
		}
	}
	if q.Sign() == 0 {
		return decimal128.Num{}, true
	}
	// Restore the trailing zeros. Bounding the quotient before multiplying
	// keeps the product inside 128 bits.
	mult := -scale
	headroom := to.Precision - mult
	if headroom <= 0 {
		return decimal128.Num{}, false
	}
	if !q.Abs().Less(decimal128.GetScaleMultiplier(headroom)) {
		return decimal128.Num{}, false
	}
	return q.Mul(decimal128.GetScaleMultiplier(mult)), true
}

// RoundNegativeScaleNarrow is the int64 counterpart of
// RoundNegativeScaleWide. to.Precision must be at most 18 so the result fits
// int64.
func RoundNegativeScaleNarrow(v int64, from DecimalType, scale int, to DecimalType) (int64, bool) {
	q, ok := RoundNegativeScaleWide(decimal128.FromI64(v), from, scale, to)
	if !ok {
		return 0, false
	}
	return int64(q.LowBits()), true
}

// RoundNegativeScaleNarrowToWide rounds an int64 unscaled value into a wide
// target type.
func RoundNegativeScaleNarrowToWide(v int64, from DecimalType, scale int, to DecimalType) (decimal128.Num, bool) {
	return RoundNegativeScaleWide(decimal128.FromI64(v), from, scale, to)
}

// RoundNegativeScaleWideToNarrow rounds a 128-bit unscaled value into a
// narrow target type.
func RoundNegativeScaleWideToNarrow(v decimal128.Num, from DecimalType, scale int, to DecimalType) (int64, bool) {
	q, ok := RoundNegativeScaleWide(v, from, scale, to)
	if !ok {
		return 0, false
	}
	return int64(q.LowBits()), true
}

// RoundResultType derives the output type of rounding a decimal of type
// 'from' to 'scale' fractional digits. A negative scale rounds to the left of
// the decimal point.
func RoundResultType(from DecimalType, scale int) DecimalType {
	integralDigits := from.Precision - from.Scale + 1
	if scale < 0 {
		p := integralDigits
		if alt := -from.Scale + 1; alt > p {
			p = alt
		}
		if p > MaxDecimalPrecision {
			p = MaxDecimalPrecision
		}
		return DecimalType{Precision: p, Scale: 0}
	}
	toScale := scale
	if from.Scale < toScale {
		toScale = from.Scale
	}
	p := integralDigits + toScale
	if p > MaxDecimalPrecision {
		p = MaxDecimalPrecision
	}
	return DecimalType{Precision: p, Scale: toScale}
}
