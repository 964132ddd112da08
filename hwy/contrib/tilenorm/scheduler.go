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
	"fmt"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/ajroetker/go-tilenorm/hwy"
	"github.com/ajroetker/go-tilenorm/hwy/contrib/workerpool"
)

// sweep is one pass over every tile of the grid: load from src, run kernel,
// and, when dst is set, store the tile back in visitation order.
type sweep[T hwy.Floats] struct {
	name   string
	src    Source[T]
	dst    Sink[T]
	kernel func(worker int, t *Tile[T]) error
}

// sweepResult counts the transfers of one sweep.
type sweepResult struct {
	loaded, stored int
}

// scheduler drives sweeps through a three-stage pipeline:
//
//	load (1 goroutine) -> compute (workers on the pool) -> store (1 goroutine)
//
// Stages hand slots over channels whose depth equals the number of buffer
// slots, so at most len(buffers.slots) tiles are on chip at any time. While
// tile N is computed, tile N+1 can load and tile N-1 can store, each in its
// own slot.
type scheduler[T hwy.Floats] struct {
	grid    grid
	buffers *bufferPool[T]
	pool    *workerpool.Pool
	workers int
}

// run executes sw to completion. The first error from any stage aborts the
// other stages and is returned.
func (s *scheduler[T]) run(sw sweep[T]) (sweepResult, error) {
	var res sweepResult
	depth := len(s.buffers.slots)
	n := s.grid.len()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	g, ctx := errgroup.WithContext(ctx)

	computeC := make(chan *slot[T], depth)
	storeC := make(chan *slot[T], depth)

	// Load stage: a slot is only refilled after its previous consumer
	// released it.
	g.Go(func() error {
		defer close(computeC)
		for seq := range n {
			sl, err := s.buffers.acquire(ctx)
			if err != nil {
				return err
			}
			sl.seq = seq
			sl.tile.Row, sl.tile.Col = s.grid.at(seq)
			if err := sw.src.ReadTile(&sl.tile); err != nil {
				err = fmt.Errorf("%s sweep: load tile (%d,%d): %w", sw.name, sl.tile.Row, sl.tile.Col, err)
				s.buffers.release(sl)
				return err
			}
			res.loaded++
			select {
			case computeC <- sl:
			case <-ctx.Done():
				s.buffers.release(sl)
				return context.Cause(ctx)
			}
		}
		return nil
	})

	// Compute stage: each worker drains computeC; a slot reaches a kernel
	// only after its load completed.
	g.Go(func() error {
		if sw.dst != nil {
			defer close(storeC)
		}
		return s.pool.RunWorkers(s.workers, func(worker int) error {
			for sl := range computeC {
				if err := sw.kernel(worker, &sl.tile); err != nil {
					s.buffers.release(sl)
					cancel(err)
					return err
				}
				if sw.dst == nil {
					s.buffers.release(sl)
					continue
				}
				select {
				case storeC <- sl:
				case <-ctx.Done():
					s.buffers.release(sl)
					return context.Cause(ctx)
				}
			}
			return nil
		})
	})

	// Store stage: writes tiles in visitation order. Tiles finished out of
	// order by concurrent workers wait in pending; they still hold their
	// slots, which keeps the reorder window bounded by the slot count.
	if sw.dst != nil {
		g.Go(func() error {
			pending := make(map[int]*slot[T], depth)
			next := 0
			for sl := range storeC {
				pending[sl.seq] = sl
				for {
					ready, ok := pending[next]
					if !ok {
						break
					}
					delete(pending, next)
					if err := sw.dst.WriteTile(&ready.tile); err != nil {
						// The slot may be refilled as soon as it is released.
						err = fmt.Errorf("%s sweep: store tile (%d,%d): %w", sw.name, ready.tile.Row, ready.tile.Col, err)
						s.buffers.release(ready)
						return err
					}
					res.stored++
					s.buffers.release(ready)
					next++
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	klog.V(2).Infof("tilenorm: %s sweep done: %d tiles loaded, %d stored", sw.name, res.loaded, res.stored)
	return res, nil
}
