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
	"context"

	"github.com/ajroetker/go-tilenorm/hwy"
)

// slot is one on-chip tile buffer. A slot is owned by exactly one pipeline
// stage at a time; ownership moves load -> compute -> store -> free list
// through channel sends, which also orders the buffer contents.
type slot[T hwy.Floats] struct {
	tile  Tile[T]
	seq   int // position in the sweep's visitation order
	index int
	inUse bool
}

// bufferPool is the fixed set of tile slots of one transform.
type bufferPool[T hwy.Floats] struct {
	slots []*slot[T]
	free  chan *slot[T]
}

func newBufferPool[T hwy.Floats](n, tileRows, tileCols int) *bufferPool[T] {
	p := &bufferPool[T]{
		slots: make([]*slot[T], n),
		free:  make(chan *slot[T], n),
	}
	// One backing allocation for all slots.
	backing := make([]T, n*tileRows*tileCols)
	for i := range n {
		s := &slot[T]{index: i}
		s.tile.Rows, s.tile.Cols = tileRows, tileCols
		s.tile.Data = backing[i*tileRows*tileCols : (i+1)*tileRows*tileCols]
		p.slots[i] = s
		p.free <- s
	}
	return p
}

// acquire blocks until a slot has been released by its previous consumer.
func (p *bufferPool[T]) acquire(ctx context.Context) (*slot[T], error) {
	select {
	case s := <-p.free:
		s.inUse = true
		return s, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// release returns s to the free list. Releasing a free slot is a
// programming error.
func (p *bufferPool[T]) release(s *slot[T]) {
	if !s.inUse {
		panic("tilenorm: slot released twice")
	}
	s.inUse = false
	p.free <- s
}

// available returns the number of free slots.
func (p *bufferPool[T]) available() int {
	return len(p.free)
}

// elements returns the on-chip footprint of the pool.
func (p *bufferPool[T]) elements() int {
	if len(p.slots) == 0 {
		return 0
	}
	return len(p.slots) * len(p.slots[0].tile.Data)
}
