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
	"github.com/pingcap/failpoint"

	"github.com/vecexpr/vecexpr/config"
	"github.com/vecexpr/vecexpr/metrics"
	"github.com/vecexpr/vecexpr/types"
	"github.com/vecexpr/vecexpr/util/chunk"
)

// ExecCtx owns the scratch resources shared by the evaluation contexts of one
// worker: pooled selections, decoded views and columns. It is confined to a
// single thread, the free lists need no locking; only the column pool may be
// shared between workers.
//
// Every Borrow* call returns the object together with a release function that
// must be called exactly once on every exit path. Releasing twice panics.
type ExecCtx struct {
	colPool     *chunk.Pool
	selFree     []*chunk.Selection
	decodedFree []*chunk.DecodedVector
}

// NewExecCtx creates an ExecCtx with a private column pool sized from the
// global configuration.
func NewExecCtx() *ExecCtx {
	return NewExecCtxWithPool(chunk.NewPool(config.GetGlobalConfig().Performance.PoolShards))
}

// NewExecCtxWithPool creates an ExecCtx around a shared column pool.
func NewExecCtxWithPool(pool *chunk.Pool) *ExecCtx {
	return &ExecCtx{colPool: pool}
}

// BorrowSelection lends a selection of the given size with every row active.
func (ec *ExecCtx) BorrowSelection(size int) (*chunk.Selection, func()) {
	sel := ec.takeSelection("selection")
	sel.ResizeFill(size, true)
	return sel, ec.selectionReleaser(sel)
}

// BorrowSingleRow lends a selection with only the given row active.
func (ec *ExecCtx) BorrowSingleRow(row int) (*chunk.Selection, func()) {
	sel := ec.takeSelection("single_row")
	sel.ResizeFill(row+1, false)
	sel.SetValid(row, true)
	return sel, ec.selectionReleaser(sel)
}

func (ec *ExecCtx) takeSelection(kind string) *chunk.Selection {
	if n := len(ec.selFree); n > 0 {
		sel := ec.selFree[n-1]
		ec.selFree = ec.selFree[:n-1]
		metrics.ScratchBorrowCounter.WithLabelValues(kind, "hit").Inc()
		return sel
	}
	metrics.ScratchBorrowCounter.WithLabelValues(kind, "miss").Inc()
	return &chunk.Selection{}
}

func (ec *ExecCtx) selectionReleaser(sel *chunk.Selection) func() {
	released := false
	return func() {
		if released {
			panic("selection released twice")
		}
		released = true
		ec.selFree = append(ec.selFree, sel)
	}
}

// BorrowDecoded lends a decoded view. The view is detached before reuse so it
// never pins a column across borrows.
func (ec *ExecCtx) BorrowDecoded() (*chunk.DecodedVector, func()) {
	var d *chunk.DecodedVector
	if n := len(ec.decodedFree); n > 0 {
		d = ec.decodedFree[n-1]
		ec.decodedFree = ec.decodedFree[:n-1]
		metrics.ScratchBorrowCounter.WithLabelValues("decoded", "hit").Inc()
	} else {
		d = &chunk.DecodedVector{}
		metrics.ScratchBorrowCounter.WithLabelValues("decoded", "miss").Inc()
	}
	released := false
	return d, func() {
		if released {
			panic("decoded view released twice")
		}
		released = true
		d.Reset()
		ec.decodedFree = append(ec.decodedFree, d)
	}
}

// GetColumn returns an empty column of the requested type with room for rows
// rows.
func (ec *ExecCtx) GetColumn(tp types.ColumnType, rows int) (*chunk.Column, error) {
	failpoint.Inject("mockScratchPoolExhausted", func() {
		failpoint.Return(nil, SystemError(errScratchPoolExhaust))
	})
	return ec.colPool.GetColumn(tp, rows), nil
}

// PutColumn returns a column to the pool.
func (ec *ExecCtx) PutColumn(col *chunk.Column) {
	ec.colPool.PutColumn(col)
}
