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
	"fmt"

	"github.com/ajroetker/go-tilenorm/hwy"
)

// engine holds the per-invocation state of one transform.
type engine[T hwy.Floats] struct {
	plan
	src   Source[T]
	dst   Sink[T]
	sched *scheduler[T]

	// denom[i] is the denominator of row i once its row sum is known.
	denom []T

	stats Stats
}

// runGlobal is the canonical transform:
//
//	[row sweep] -> accumulate sweep -> finalize/resolve barrier -> apply sweep
//
// In ModeSingleSweep the first sweep copies the input into an on-chip cache
// and later sweeps read the cache instead of src.
func (e *engine[T]) runGlobal() error {
	var cache *MatrixStore[T]
	if e.Mode == ModeSingleSweep {
		cache = &MatrixStore[T]{rows: e.rows, cols: e.cols, data: make([]T, e.rows*e.cols)}
	}
	cols := NewAccumulator[T](e.cols, e.sched.workers)

	// Row sums. Full-width tiles fold them into the accumulate sweep.
	fused := e.grid.fullRows()
	if !fused {
		var cacheSink Sink[T]
		if cache != nil {
			cacheSink = cache
		}
		if err := e.rowSweep(cacheSink); err != nil {
			return err
		}
	}

	accumulate := func(worker int, t *Tile[T]) error {
		if fused {
			if err := e.tileDenominators(t); err != nil {
				return err
			}
		}
		e.normalize(t)
		cols.Shard(worker).AddColumns(t.Col, t.Data, t.Rows, t.Cols)
		return nil
	}
	switch {
	case cache == nil:
		if err := e.sourceSweep(sweep[T]{name: "accumulate", src: e.src, kernel: accumulate}); err != nil {
			return err
		}
	case fused:
		// The tile is normalized in place before the store stage copies it
		// into the cache.
		if err := e.sourceSweep(sweep[T]{name: "accumulate", src: e.src, dst: cache, kernel: accumulate}); err != nil {
			return err
		}
	default:
		if err := e.cacheSweep(sweep[T]{name: "accumulate", src: cache, dst: cache, kernel: accumulate}); err != nil {
			return err
		}
	}

	// Barrier: every row has contributed to every column.
	scale := ResolveScale(cols.Finalize(), e.rows)

	if cache != nil {
		return e.outputSweep(sweep[T]{
			name: "apply",
			src:  cache,
			dst:  e.dst,
			kernel: func(_ int, t *Tile[T]) error {
				BaseApplyScale(t.Data, t.Rows, t.Cols, scale.columns(t.Col, t.Cols))
				return nil
			},
		}, false)
	}
	return e.outputSweep(sweep[T]{
		name: "apply",
		src:  e.src,
		dst:  e.dst,
		kernel: func(_ int, t *Tile[T]) error {
			e.normalize(t)
			BaseApplyScale(t.Data, t.Rows, t.Cols, scale.columns(t.Col, t.Cols))
			return nil
		},
	}, true)
}

// runTileLocal scales each tile by the column means of its own rows. There
// is no global barrier, so a single streaming sweep (after the row sweep for
// narrow tiles) produces the output.
func (e *engine[T]) runTileLocal() error {
	fused := e.grid.fullRows()
	if !fused {
		if err := e.rowSweep(nil); err != nil {
			return err
		}
	}

	scratch := make([][]T, e.sched.workers)
	for w := range scratch {
		scratch[w] = make([]T, e.TileCols)
	}
	return e.outputSweep(sweep[T]{
		name: "tile-local",
		src:  e.src,
		dst:  e.dst,
		kernel: func(worker int, t *Tile[T]) error {
			if fused {
				if err := e.tileDenominators(t); err != nil {
					return err
				}
			}
			e.normalize(t)
			local := scratch[worker][:t.Cols]
			clear(local)
			BaseAccumulateColumns(t.Data, t.Rows, t.Cols, local)
			inv := T(1) / T(t.Rows)
			for j := range local {
				local[j] *= inv
			}
			BaseApplyScale(t.Data, t.Rows, t.Cols, local)
			return nil
		},
	}, true)
}

// rowSweep computes every row denominator from partial row sums of narrow
// tiles. When cache is non-nil the raw tiles are also copied into it.
func (e *engine[T]) rowSweep(cache Sink[T]) error {
	rows := NewAccumulator[T](e.rows, e.sched.workers)
	err := e.sourceSweep(sweep[T]{
		name: "rows",
		src:  e.src,
		dst:  cache,
		kernel: func(worker int, t *Tile[T]) error {
			rows.Shard(worker).AddRowSums(t.Row, t.Data, t.Rows, t.Cols)
			return nil
		},
	})
	if err != nil {
		return err
	}
	e.stats.RowSweep = true

	rows.Finalize().CopyTo(e.denom)
	BaseDenominators(e.denom)
	return e.checkDenominators(0, e.denom)
}

// tileDenominators computes the denominators of a full-width tile's rows.
// Tiles own disjoint row ranges, so concurrent workers never share a slot.
func (e *engine[T]) tileDenominators(t *Tile[T]) error {
	d := e.denom[t.Row : t.Row+t.Rows]
	clear(d)
	BaseRowSums(t.Data, t.Rows, t.Cols, d)
	BaseDenominators(d)
	return e.checkDenominators(t.Row, d)
}

func (e *engine[T]) checkDenominators(firstRow int, d []T) error {
	if !e.CheckDenominators {
		return nil
	}
	for i, v := range d {
		// Written to also reject NaN.
		if !(v > 0) {
			return fmt.Errorf("row %d: sum %v: %w", firstRow+i, float64(v-RowBias), ErrDenominator)
		}
	}
	return nil
}

// normalize divides the tile's rows by their denominators.
func (e *engine[T]) normalize(t *Tile[T]) {
	d := e.denom[t.Row : t.Row+t.Rows]
	if e.Normalize == NormalizeDivide {
		BaseNormalizeRowsDiv(t.Data, t.Rows, t.Cols, d)
		return
	}
	BaseNormalizeRows(t.Data, t.Rows, t.Cols, d)
}

// sourceSweep runs a sweep that reads the input store and writes nothing
// user-visible.
func (e *engine[T]) sourceSweep(sw sweep[T]) error {
	res, err := e.sched.run(sw)
	e.stats.TilesLoaded += res.loaded
	if err != nil {
		return err
	}
	e.stats.SourceSweeps++
	return nil
}

// cacheSweep runs a sweep entirely on the on-chip cache.
func (e *engine[T]) cacheSweep(sw sweep[T]) error {
	if _, err := e.sched.run(sw); err != nil {
		return err
	}
	e.stats.CacheSweeps++
	return nil
}

// outputSweep runs the sweep that writes the output store.
func (e *engine[T]) outputSweep(sw sweep[T], fromSource bool) error {
	res, err := e.sched.run(sw)
	if fromSource {
		e.stats.TilesLoaded += res.loaded
	}
	e.stats.TilesStored += res.stored
	if err != nil {
		return err
	}
	if fromSource {
		e.stats.SourceSweeps++
	} else {
		e.stats.CacheSweeps++
	}
	return nil
}
