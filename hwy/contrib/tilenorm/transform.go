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

	"k8s.io/klog/v2"

	"github.com/ajroetker/go-tilenorm/hwy"
	"github.com/ajroetker/go-tilenorm/hwy/contrib/workerpool"
)

// Stats describes how a transform was executed.
type Stats struct {
	// Mode is the resolved pass structure. It is ModeAuto for ScaleTileLocal,
	// which has a single pass structure regardless of Config.Mode.
	Mode      Mode
	Scale     ScaleMode
	Normalize NormalizeMode

	TileRows, TileCols int
	Buffers            int
	Workers            int

	// RowSweep is set when tiles were narrower than the matrix and a
	// dedicated sweep computed the row sums.
	RowSweep bool

	// SourceSweeps counts full passes over the input store, CacheSweeps
	// full passes over the on-chip copy kept by ModeSingleSweep.
	SourceSweeps int
	CacheSweeps  int

	// TilesLoaded counts tiles read from the input store, TilesStored tiles
	// written to the output store.
	TilesLoaded int
	TilesStored int
}

// plan is a validated Config bound to a matrix shape.
type plan struct {
	Config
	rows, cols int
	grid       grid
}

func newPlan(rows, cols int, cfg Config) (plan, error) {
	if rows <= 0 || cols <= 0 {
		return plan{}, fmt.Errorf("%dx%d matrix: %w", rows, cols, ErrEmptyMatrix)
	}
	if cfg.TileRows == 0 {
		cfg.TileRows = DefaultTile(rows, DefaultTileRows)
	}
	if cfg.TileCols == 0 {
		cfg.TileCols = DefaultTile(cols, DefaultTileCols)
	}
	if cfg.TileRows < 0 || cfg.TileCols < 0 || rows%cfg.TileRows != 0 || cols%cfg.TileCols != 0 {
		return plan{}, fmt.Errorf("%dx%d tile for %dx%d matrix: %w",
			cfg.TileRows, cfg.TileCols, rows, cols, ErrTileShape)
	}
	if cfg.Buffers == 0 {
		cfg.Buffers = DefaultBuffers
	}
	if cfg.Buffers < 1 || cfg.Buffers > MaxBuffers {
		return plan{}, fmt.Errorf("%d buffers: %w", cfg.Buffers, ErrBuffers)
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	slots := cfg.Buffers * cfg.TileRows * cfg.TileCols
	if cfg.Capacity < slots {
		return plan{}, fmt.Errorf("%d tile slots of %dx%d in capacity %d: %w",
			cfg.Buffers, cfg.TileRows, cfg.TileCols, cfg.Capacity, ErrCapacity)
	}

	if cfg.Mode < ModeAuto || cfg.Mode > ModeSingleSweep {
		return plan{}, fmt.Errorf("tilenorm: unknown mode %d", cfg.Mode)
	}
	if cfg.Scale != ScaleGlobal && cfg.Scale != ScaleTileLocal {
		return plan{}, fmt.Errorf("tilenorm: unknown scale mode %d", cfg.Scale)
	}
	if cfg.Normalize != NormalizeReciprocal && cfg.Normalize != NormalizeDivide {
		return plan{}, fmt.Errorf("tilenorm: unknown normalize mode %d", cfg.Normalize)
	}
	if cfg.Order != OrderRowMajor && cfg.Order != OrderColumnMajor {
		return plan{}, fmt.Errorf("tilenorm: unknown tile order %d", cfg.Order)
	}

	// Tile-local scaling streams each tile once and never keeps a cache, so
	// there is no pass structure to pick.
	if cfg.Scale == ScaleTileLocal {
		cfg.Mode = ModeAuto
	} else {
		// The single-sweep cache must fit next to the tile slots.
		fits := rows*cols <= cfg.Capacity-slots
		switch cfg.Mode {
		case ModeAuto:
			if fits {
				cfg.Mode = ModeSingleSweep
			} else {
				cfg.Mode = ModeTwoSweep
			}
		case ModeSingleSweep:
			if !fits {
				return plan{}, fmt.Errorf("single-sweep %dx%d matrix in capacity %d: %w",
					rows, cols, cfg.Capacity, ErrCapacity)
			}
		}
	}
	cfg.Workers = max(cfg.Workers, 1)

	return plan{
		Config: cfg,
		rows:   rows,
		cols:   cols,
		grid: grid{
			rows: rows, cols: cols,
			tileRows: cfg.TileRows, tileCols: cfg.TileCols,
			order: cfg.Order,
		},
	}, nil
}

// Transform reads src, normalizes every row by its sum plus RowBias, scales
// every column by the mean of its normalized values, and writes the result
// to dst. src and dst must have the same shape. They may be the same store:
// every sweep reads a tile before the tile at the same position is written.
//
// All intermediate state (row denominators, column accumulator, scale, tile
// buffers) belongs to this call.
func Transform[T hwy.Floats](src Source[T], dst Sink[T], opts ...Option) (Stats, error) {
	return TransformConfig(src, dst, NewConfig(opts...))
}

// TransformConfig is Transform with an explicit Config.
func TransformConfig[T hwy.Floats](src Source[T], dst Sink[T], cfg Config) (Stats, error) {
	if src == nil || dst == nil {
		return Stats{}, fmt.Errorf("tilenorm: nil store: %w", ErrShapeMismatch)
	}
	rows, cols := src.Dims()
	p, err := newPlan(rows, cols, cfg)
	if err != nil {
		return Stats{}, err
	}
	if dr, dc := dst.Dims(); dr != rows || dc != cols {
		return Stats{}, fmt.Errorf("input %dx%d, output %dx%d: %w", rows, cols, dr, dc, ErrShapeMismatch)
	}

	pool := p.Pool
	workers := p.Workers
	if pool == nil && workers > 1 {
		pool = workerpool.New(workers)
		defer pool.Close()
	}
	if pool != nil {
		workers = pool.Workers(workers)
	}

	e := &engine[T]{
		plan:  p,
		src:   src,
		dst:   dst,
		denom: make([]T, rows),
		sched: &scheduler[T]{
			grid:    p.grid,
			buffers: newBufferPool[T](p.Buffers, p.TileRows, p.TileCols),
			pool:    pool,
			workers: workers,
		},
		stats: Stats{
			Mode:      p.Mode,
			Scale:     p.Scale,
			Normalize: p.Normalize,
			TileRows:  p.TileRows,
			TileCols:  p.TileCols,
			Buffers:   p.Buffers,
			Workers:   workers,
		},
	}
	klog.V(1).Infof("tilenorm: %dx%d matrix, %s/%s, tile %dx%d, %d buffers, %d workers",
		rows, cols, p.Mode, p.Scale, p.TileRows, p.TileCols, p.Buffers, workers)

	if p.Scale == ScaleTileLocal {
		err = e.runTileLocal()
	} else {
		err = e.runGlobal()
	}
	return e.stats, err
}

// TransformSlice transforms a flat row-major rows x cols matrix. input and
// output must each hold rows*cols elements; they may be the same slice but
// must not partially overlap.
func TransformSlice[T hwy.Floats](input, output []T, rows, cols int, opts ...Option) error {
	src, err := NewMatrixStore(input, rows, cols)
	if err != nil {
		return err
	}
	dst, err := NewMatrixStore(output, rows, cols)
	if err != nil {
		return err
	}
	_, err = Transform[T](src, dst, opts...)
	return err
}
