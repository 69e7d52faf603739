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

// ContextSaver captures the part of EvalCtx state that a nested scope is
// allowed to perturb: the peeled fields, the peel descriptor, the
// nulls-pruned flag, the final-selection pair and the active error table.
// The error table is swapped out, not copied, so saving is O(1).
//
// A saver must be restored exactly once before control returns to the parent
// scope. Restoring twice is a programming error and panics.
type ContextSaver struct {
	ctx      *EvalCtx
	restored bool

	peeledFields     []*chunk.Vector
	peel             *PeelInfo
	nullsPruned      bool
	isFinalSelection bool
	finalSelection   *chunk.Selection
	errs             *RowErrors
}

// SaveAndReset captures the perturbable state into saver and resets it in the
// context, preparing the descent into a nested scope that evaluates on a
// narrower row set.
func (c *EvalCtx) SaveAndReset(saver *ContextSaver) {
	saver.ctx = c
	saver.restored = false
	saver.peeledFields = c.peeledFields
	c.peeledFields = nil
	saver.peel = c.peel
	c.peel = nil
	saver.nullsPruned = c.nullsPruned
	c.nullsPruned = false
	saver.isFinalSelection = c.isFinalSelection
	saver.finalSelection = c.finalSelection
	saver.errs = c.errs
	c.errs = nil
}

// Restore reinstalls the saved fields and merges the errors recorded by the
// nested scope into the parent's table. The parent's error for a row wins,
// it was recorded first; re-evaluation inside the nested scope must not
// overwrite a real cause with a later one.
func (c *EvalCtx) Restore(saver *ContextSaver) {
	if saver.ctx != c || saver.restored {
		panic("evaluation context saver restored twice")
	}
	saver.restored = true

	childErrs := c.errs
	c.peeledFields = saver.peeledFields
	c.peel = saver.peel
	c.nullsPruned = saver.nullsPruned
	c.isFinalSelection = saver.isFinalSelection
	c.finalSelection = saver.finalSelection
	c.errs = saver.errs

	if childErrs != nil && childErrs.HasError() {
		if c.errs == nil {
			c.errs = childErrs
		} else {
			c.errs.CopyAllErrors(childErrs)
		}
	}
}

// FinalSelectionGuard temporarily fixes the final selection of a context. It
// installs the new selection only when one is not already fixed, unless
// override forces re-fixing, which is used when a new conditional strictly
// dominates the previous one. Release puts the previous values back.
type FinalSelectionGuard struct {
	ctx           *EvalCtx
	installed     bool
	released      bool
	prevIsFinal   bool
	prevSelection *chunk.Selection
}

// SetFinalSelection fixes sel as the final selection for the duration of the
// returned guard. Passing a nil selection yields an inert guard.
func (c *EvalCtx) SetFinalSelection(sel *chunk.Selection, override bool) *FinalSelectionGuard {
	g := &FinalSelectionGuard{ctx: c}
	if sel == nil {
		return g
	}
	if override || c.isFinalSelection {
		g.installed = true
		g.prevIsFinal = c.isFinalSelection
		g.prevSelection = c.finalSelection
		c.finalSelection = sel
		c.isFinalSelection = false
	}
	return g
}

// Release restores the previous final-selection state. Must be called exactly
// once.
func (g *FinalSelectionGuard) Release() {
	if g.released {
		panic("final selection guard released twice")
	}
	g.released = true
	if g.installed {
		g.ctx.isFinalSelection = g.prevIsFinal
		g.ctx.finalSelection = g.prevSelection
	}
}
