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

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"

	"github.com/vecexpr/vecexpr/util/chunk"
)

func TestSaveAndRestore(t *testing.T) {
	raw := int64Vector([]int64{1, 2, 3}, nil)
	_, ctx := newTestCtx(raw)

	peeled := int64Vector([]int64{9}, nil)
	ctx.SetPeeled(0, peeled)
	info := &PeelInfo{enc: chunk.EncodingConstant, baseLen: 1}
	ctx.SetPeelInfo(info)
	ctx.SetNullsPruned(true)
	final := chunk.NewSelection(3, true)
	guard := ctx.SetFinalSelection(final, false)
	defer guard.Release()
	ctx.SetThrowOnError(false)
	ctx.RecordError(0, errors.New("parent"))

	var saver ContextSaver
	ctx.SaveAndReset(&saver)

	// The nested scope starts clean.
	require.Same(t, raw, ctx.Field(0))
	require.Nil(t, ctx.PeelInfo())
	require.False(t, ctx.NullsPruned())
	require.Nil(t, ctx.Errors())
	// The final-selection pair is saved but not reset, nesting keeps it.
	require.False(t, ctx.IsFinalSelection())

	ctx.SetNullsPruned(true)
	ctx.Restore(&saver)

	// Restore is an exact inverse of the perturbable state.
	require.Same(t, peeled, ctx.Field(0))
	require.Same(t, info, ctx.PeelInfo())
	require.True(t, ctx.NullsPruned())
	require.False(t, ctx.IsFinalSelection())
	require.Same(t, final, ctx.FinalSelection())
	require.True(t, ctx.Errors().HasErrorAt(0))
}

func TestRestoreMergesChildErrors(t *testing.T) {
	parentErr := errors.New("parent")
	childErr := errors.New("child")

	_, ctx := newTestCtx()
	ctx.SetThrowOnError(false)
	ctx.RecordError(1, parentErr)

	var saver ContextSaver
	ctx.SaveAndReset(&saver)
	ctx.RecordError(1, childErr)
	ctx.RecordError(2, childErr)
	ctx.Restore(&saver)

	errs := ctx.Errors()
	require.Equal(t, 2, errs.CountErrors())
	// The parent's error was recorded first and wins.
	_, cause := errs.ErrorAt(1)
	require.Same(t, parentErr, cause)
	_, cause = errs.ErrorAt(2)
	require.Same(t, childErr, cause)
}

func TestRestoreAdoptsChildTable(t *testing.T) {
	childErr := errors.New("child")

	_, ctx := newTestCtx()
	ctx.SetThrowOnError(false)

	var saver ContextSaver
	ctx.SaveAndReset(&saver)
	ctx.RecordError(3, childErr)
	childTable := ctx.Errors()
	ctx.Restore(&saver)

	// With no parent table the child's is adopted wholesale.
	require.Same(t, childTable, ctx.Errors())
}

func TestRestoreTwicePanics(t *testing.T) {
	_, ctx := newTestCtx()
	var saver ContextSaver
	ctx.SaveAndReset(&saver)
	ctx.Restore(&saver)
	require.Panics(t, func() {
		ctx.Restore(&saver)
	})
}

func TestNestedSaversRestoreInOrder(t *testing.T) {
	_, ctx := newTestCtx()
	ctx.SetThrowOnError(false)

	ctx.RecordError(0, errors.New("outer"))
	var outer ContextSaver
	ctx.SaveAndReset(&outer)

	ctx.RecordError(1, errors.New("mid"))
	var inner ContextSaver
	ctx.SaveAndReset(&inner)

	ctx.RecordError(2, errors.New("inner"))
	ctx.Restore(&inner)
	ctx.Restore(&outer)

	errs := ctx.Errors()
	require.Equal(t, 3, errs.CountErrors())
	for row := 0; row < 3; row++ {
		require.True(t, errs.HasErrorAt(row))
	}
}

func TestFinalSelectionGuard(t *testing.T) {
	_, ctx := newTestCtx()
	require.True(t, ctx.IsFinalSelection())
	require.Nil(t, ctx.FinalSelection())

	outerSel := chunk.NewSelection(8, true)
	outer := ctx.SetFinalSelection(outerSel, false)
	require.False(t, ctx.IsFinalSelection())
	require.Same(t, outerSel, ctx.FinalSelection())

	// A nested conditional does not replace an already-fixed selection.
	innerSel := chunk.NewSelection(8, false)
	inner := ctx.SetFinalSelection(innerSel, false)
	require.Same(t, outerSel, ctx.FinalSelection())
	inner.Release()
	require.Same(t, outerSel, ctx.FinalSelection())

	// Unless it strictly dominates and overrides.
	forced := ctx.SetFinalSelection(innerSel, true)
	require.Same(t, innerSel, ctx.FinalSelection())
	forced.Release()
	require.Same(t, outerSel, ctx.FinalSelection())

	outer.Release()
	require.True(t, ctx.IsFinalSelection())
	require.Nil(t, ctx.FinalSelection())
}

func TestFinalSelectionGuardNilIsInert(t *testing.T) {
	_, ctx := newTestCtx()
	g := ctx.SetFinalSelection(nil, true)
	require.True(t, ctx.IsFinalSelection())
	g.Release()
	require.True(t, ctx.IsFinalSelection())
}

func TestFinalSelectionGuardReleaseTwicePanics(t *testing.T) {
	_, ctx := newTestCtx()
	g := ctx.SetFinalSelection(chunk.NewSelection(4, true), false)
	g.Release()
	require.Panics(t, func() {
		g.Release()
	})
}
