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
	"github.com/vecexpr/vecexpr/util/chunk"
)

// PeelInfo describes the common wrapper stripped from a function's inputs so
// the function can run once per distinct inner row instead of once per outer
// row. It can translate an outer selection into the inner row space and wrap
// an inner result back into the outer indexing.
type PeelInfo struct {
	enc     chunk.Encoding
	indices []uint32
	baseLen int
}

// Encoding returns the kind of wrapper that was stripped.
func (p *PeelInfo) Encoding() chunk.Encoding {
	return p.enc
}

// InnerRow maps an outer row to the inner row it reads.
func (p *PeelInfo) InnerRow(outer int) int {
	if p.enc == chunk.EncodingConstant {
		return 0
	}
	return int(p.indices[outer])
}

// TranslateTo activates, in inner, the inner rows referenced by the active
// outer rows. inner must already be sized to the peeled base length with all
// rows inactive.
func (p *PeelInfo) TranslateTo(outer, inner *chunk.Selection) {
	outer.ApplyToSelected(func(row int) {
		inner.SetValid(p.InnerRow(row), true)
	})
}

// BaseLen returns the row count of the peeled inner space.
func (p *PeelInfo) BaseLen() int {
	return p.baseLen
}

// WrapResult restores the stripped wrapper around a result computed in the
// inner row space.
func (p *PeelInfo) WrapResult(local *chunk.Column, length int) *chunk.Vector {
	if p.enc == chunk.EncodingConstant {
		return chunk.NewConstantVector(local, length)
	}
	return chunk.NewDictionaryVector(p.indices, local)
}

// PeelArgs strips the common wrapper of args if one exists. Dictionary
// wrappers peel only when every dictionary argument shares the identical
// index buffer; constant arguments are compatible with any wrapper. The
// returned args read plain data. ok is false when no common wrapper exists,
// callers must then read the arguments unpeeled.
func PeelArgs(args []*chunk.Vector) (*PeelInfo, []*chunk.Vector, bool) {
	var indices []uint32
	baseLen := 0
	constOnly := true
	for _, arg := range args {
		switch arg.Encoding() {
		case chunk.EncodingConstant:
			continue
		case chunk.EncodingDictionary:
			constOnly = false
			if indices == nil {
				indices = arg.Indices()
				baseLen = arg.Base().Length()
				continue
			}
			if !sameIndexBuffer(indices, arg.Indices()) {
				return nil, nil, false
			}
		default:
			// A flat argument leaves nothing common to strip.
			return nil, nil, false
		}
	}
	if len(args) == 0 {
		return nil, nil, false
	}

	if constOnly {
		info := &PeelInfo{enc: chunk.EncodingConstant, baseLen: 1}
		peeled := make([]*chunk.Vector, len(args))
		for i, arg := range args {
			peeled[i] = chunk.NewFlatVector(arg.Base())
		}
		return info, peeled, true
	}

	info := &PeelInfo{enc: chunk.EncodingDictionary, indices: indices, baseLen: baseLen}
	peeled := make([]*chunk.Vector, len(args))
	for i, arg := range args {
		if arg.Encoding() == chunk.EncodingDictionary {
			peeled[i] = chunk.NewFlatVector(arg.Base())
		} else {
			// Constants stay constant over the inner row space.
			peeled[i] = chunk.NewConstantVector(arg.Base(), baseLen)
		}
	}
	return info, peeled, true
}

func sameIndexBuffer(a, b []uint32) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}

// PeelEncoding peels args for the current scope. args must be the context's
// positional field view. On success the peeled substitutes and the PeelInfo
// are installed into ctx, and the active rows of sel are translated into a
// borrowed inner selection which release returns. ok is false when no common
// wrapper exists and nothing was installed.
func PeelEncoding(ctx *EvalCtx, sel *chunk.Selection, args []*chunk.Vector) (inner *chunk.Selection, release func(), ok bool) {
	info, peeled, ok := PeelArgs(args)
	if !ok {
		return nil, nil, false
	}
	inner, release = ctx.ExecCtx().BorrowSelection(info.BaseLen())
	inner.ClearAll()
	info.TranslateTo(sel, inner)
	for i, v := range peeled {
		ctx.SetPeeled(i, v)
	}
	ctx.SetPeelInfo(info)
	return inner, release, true
}
