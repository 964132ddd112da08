// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tilenorm

import (
	"sync"
	"sync/atomic"

	"github.com/ajroetker/go-tilenorm/hwy"
)

// Accumulator is a vector of running sums with a two-phase lifecycle:
// accumulate-only until Finalize, read-only (through Sums) afterwards.
//
// Concurrent writers each own a Shard; shards are private partial sums that
// Finalize reduces in shard order, so no slot ever sees concurrent
// unsynchronized writes.
type Accumulator[T hwy.Floats] struct {
	n      int
	shards [][]T
	once   sync.Once
	final  atomic.Bool
	sums   Sums[T]
}

// NewAccumulator returns an accumulator of length n with the given number of
// shards (at least one).
func NewAccumulator[T hwy.Floats](n, shards int) *Accumulator[T] {
	shards = max(shards, 1)
	backing := make([]T, n*shards)
	a := &Accumulator[T]{n: n, shards: make([][]T, shards)}
	for s := range shards {
		a.shards[s] = backing[s*n : (s+1)*n]
	}
	return a
}

// Len returns the number of accumulated slots.
func (a *Accumulator[T]) Len() int {
	return a.n
}

// NumShards returns the number of partial-sum shards.
func (a *Accumulator[T]) NumShards() int {
	return len(a.shards)
}

// Add adds v to slot index through shard 0. Callers running concurrently must
// use distinct shards instead.
func (a *Accumulator[T]) Add(index int, v T) {
	a.Shard(0).Add(index, v)
}

// Shard returns the writer for shard s.
func (a *Accumulator[T]) Shard(s int) Shard[T] {
	return Shard[T]{acc: a, sums: a.shards[s]}
}

// Finalize reduces all shards and returns the read-only totals. It must only
// be called once every contribution has been added. It is safe to call
// concurrently: the shards are reduced exactly once and every caller gets
// the same Sums. Any further Add panics.
func (a *Accumulator[T]) Finalize() Sums[T] {
	a.once.Do(a.reduce)
	return a.sums
}

func (a *Accumulator[T]) reduce() {
	total := a.shards[0]
	lanes := hwy.MaxLanes[T]()
	for _, shard := range a.shards[1:] {
		j := 0
		for ; j+lanes <= a.n; j += lanes {
			hwy.Store(hwy.Add(hwy.Load(total[j:]), hwy.Load(shard[j:])), total[j:])
		}
		for ; j < a.n; j++ {
			total[j] += shard[j]
		}
	}
	a.sums = Sums[T]{values: total}
	a.final.Store(true)
}

// Finalized reports whether Finalize has been called.
func (a *Accumulator[T]) Finalized() bool {
	return a.final.Load()
}

// Shard is a single writer's view of an Accumulator.
type Shard[T hwy.Floats] struct {
	acc  *Accumulator[T]
	sums []T
}

func (s Shard[T]) checkOpen() {
	if s.acc.final.Load() {
		panic("tilenorm: add after finalize")
	}
}

// Add adds v to slot index.
func (s Shard[T]) Add(index int, v T) {
	s.checkOpen()
	s.sums[index] += v
}

// AddColumns adds each column of the rows x cols block into slots
// [offset, offset+cols).
func (s Shard[T]) AddColumns(offset int, block []T, rows, cols int) {
	s.checkOpen()
	BaseAccumulateColumns(block, rows, cols, s.sums[offset:offset+cols])
}

// AddRowSums adds the sum of each row of the rows x cols block into slots
// [offset, offset+rows).
func (s Shard[T]) AddRowSums(offset int, block []T, rows, cols int) {
	s.checkOpen()
	BaseRowSums(block, rows, cols, s.sums[offset:offset+rows])
}

// Sums is the read-only result of Accumulator.Finalize. Holding a Sums is
// proof that accumulation finished.
type Sums[T hwy.Floats] struct {
	values []T
}

// Len returns the number of slots.
func (s Sums[T]) Len() int {
	return len(s.values)
}

// At returns the total of slot i.
func (s Sums[T]) At(i int) T {
	return s.values[i]
}

// CopyTo copies the totals into dst and returns the number copied.
func (s Sums[T]) CopyTo(dst []T) int {
	return copy(dst, s.values)
}
