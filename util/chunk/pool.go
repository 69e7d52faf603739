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

package chunk

import (
	"container/list"
	"math/rand"
	"sync"

	atomicutil "go.uber.org/atomic"

	"github.com/vecexpr/vecexpr/types"
)

// Pool recycles columns across evaluation contexts. Columns are pooled by
// element length, the only property that matters for buffer reuse.
type Pool struct {
	fixLenColPool8  *colPool
	fixLenColPool16 *colPool

	gets   atomicutil.Int64
	misses atomicutil.Int64
	puts   atomicutil.Int64
}

// PoolStats is a snapshot of pool traffic.
type PoolStats struct {
	Gets   int64
	Misses int64
	Puts   int64
}

// NewPool creates a column pool with the given number of shards per element
// length.
func NewPool(numShards int) *Pool {
	return &Pool{
		fixLenColPool8:  newColPool(numShards, 8),
		fixLenColPool16: newColPool(numShards, 16),
	}
}

// GetColumn returns an empty column of the requested type with room for cap
// rows, reusing a pooled buffer when one is available.
func (p *Pool) GetColumn(tp types.ColumnType, cap int) *Column {
	p.gets.Inc()
	var col *Column
	switch tp.ElemLen() {
	case 16:
		col = p.fixLenColPool16.get(cap)
	default:
		col = p.fixLenColPool8.get(cap)
	}
	if col == nil {
		p.misses.Inc()
		return NewColumn(tp, cap)
	}
	col.Reset()
	col.SetType(tp)
	return col
}

// PutColumn returns a column to the pool.
func (p *Pool) PutColumn(col *Column) {
	p.puts.Inc()
	switch col.Type().ElemLen() {
	case 16:
		p.fixLenColPool16.put(col)
	default:
		p.fixLenColPool8.put(col)
	}
}

// Stats returns a snapshot of pool traffic counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Gets:   p.gets.Load(),
		Misses: p.misses.Load(),
		Puts:   p.puts.Load(),
	}
}

type colPool struct {
	shards  []colPoolShard
	elemLen int
}

func newColPool(numShards, elemLen int) *colPool {
	cp := &colPool{
		shards:  make([]colPoolShard, numShards),
		elemLen: elemLen,
	}
	for i := range cp.shards {
		cp.shards[i].cols = list.New()
	}
	return cp
}

func (cp *colPool) put(col *Column) {
	ordinal := rand.Int() % len(cp.shards)
	cp.shards[ordinal].put(col)
}

func (cp *colPool) get(cap int) *Column {
	ordinal := rand.Int() % len(cp.shards)
	return cp.shards[ordinal].get()
}

type colPoolShard struct {
	sync.Mutex
	cols *list.List
}

func (ps *colPoolShard) put(col *Column) {
	ps.Lock()
	defer ps.Unlock()

	ps.cols.PushFront(col)
}

func (ps *colPoolShard) get() *Column {
	ps.Lock()
	defer ps.Unlock()

	if ps.cols.Len() > 0 {
		head := ps.cols.Front()
		return ps.cols.Remove(head).(*Column)
	}
	return nil
}
