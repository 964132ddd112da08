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
	"sync/atomic"

	"github.com/ajroetker/go-tilenorm/hwy"
)

// Source is the read side of a backing store. ReadTile fills t.Data with the
// rectangle described by t.Row, t.Col, t.Rows and t.Cols.
//
// The transform only issues rectangle transfers of exactly one tile, in
// sweep order, from a single goroutine per sweep.
type Source[T hwy.Floats] interface {
	Dims() (rows, cols int)
	ReadTile(t *Tile[T]) error
}

// Sink is the write side of a backing store. WriteTile stores t.Data into the
// rectangle described by t.
type Sink[T hwy.Floats] interface {
	Dims() (rows, cols int)
	WriteTile(t *Tile[T]) error
}

// Store is a backing store that can be both read and written.
type Store[T hwy.Floats] interface {
	Source[T]
	Sink[T]
}

// MatrixStore is a Store over a flat row-major slice.
type MatrixStore[T hwy.Floats] struct {
	rows, cols int
	data       []T
}

// NewMatrixStore wraps data, which must hold at least rows*cols elements.
// The store aliases data; writes are visible to the caller.
func NewMatrixStore[T hwy.Floats](data []T, rows, cols int) (*MatrixStore[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("NewMatrixStore(%d, %d): %w", rows, cols, ErrEmptyMatrix)
	}
	if len(data) < rows*cols {
		return nil, fmt.Errorf("NewMatrixStore(%d, %d): slice has %d elements: %w",
			rows, cols, len(data), ErrShapeMismatch)
	}
	return &MatrixStore[T]{rows: rows, cols: cols, data: data[:rows*cols]}, nil
}

// Dims returns the matrix dimensions.
func (m *MatrixStore[T]) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// Data returns the backing slice.
func (m *MatrixStore[T]) Data() []T {
	return m.data
}

// ReadTile copies the tile rectangle out of the matrix, one contiguous row
// segment at a time.
func (m *MatrixStore[T]) ReadTile(t *Tile[T]) error {
	if err := checkTile(t, m.rows, m.cols); err != nil {
		return err
	}
	for i := range t.Rows {
		off := (t.Row+i)*m.cols + t.Col
		copy(t.Data[i*t.Cols:(i+1)*t.Cols], m.data[off:off+t.Cols])
	}
	return nil
}

// WriteTile copies the tile rectangle into the matrix.
func (m *MatrixStore[T]) WriteTile(t *Tile[T]) error {
	if err := checkTile(t, m.rows, m.cols); err != nil {
		return err
	}
	for i := range t.Rows {
		off := (t.Row+i)*m.cols + t.Col
		copy(m.data[off:off+t.Cols], t.Data[i*t.Cols:(i+1)*t.Cols])
	}
	return nil
}

// Metered wraps a store and counts the transfers that reach it.
// Counters are safe to read concurrently with a running transform.
type Metered[T hwy.Floats] struct {
	src Source[T]
	dst Sink[T]

	tilesRead, tilesWritten       atomic.Int64
	elementsRead, elementsWritten atomic.Int64
}

// NewMetered wraps a Source, Sink or Store. Calling the missing side of a
// one-sided store panics.
func NewMetered[T hwy.Floats](s interface{ Dims() (int, int) }) *Metered[T] {
	m := &Metered[T]{}
	if src, ok := s.(Source[T]); ok {
		m.src = src
	}
	if dst, ok := s.(Sink[T]); ok {
		m.dst = dst
	}
	if m.src == nil && m.dst == nil {
		panic("tilenorm: NewMetered needs a Source or Sink")
	}
	return m
}

// Dims returns the dimensions of the wrapped store.
func (m *Metered[T]) Dims() (rows, cols int) {
	if m.src != nil {
		return m.src.Dims()
	}
	return m.dst.Dims()
}

// ReadTile forwards to the wrapped Source.
func (m *Metered[T]) ReadTile(t *Tile[T]) error {
	if err := m.src.ReadTile(t); err != nil {
		return err
	}
	m.tilesRead.Add(1)
	m.elementsRead.Add(int64(t.Rows * t.Cols))
	return nil
}

// WriteTile forwards to the wrapped Sink.
func (m *Metered[T]) WriteTile(t *Tile[T]) error {
	if err := m.dst.WriteTile(t); err != nil {
		return err
	}
	m.tilesWritten.Add(1)
	m.elementsWritten.Add(int64(t.Rows * t.Cols))
	return nil
}

// TilesRead returns the number of successful ReadTile calls.
func (m *Metered[T]) TilesRead() int64 { return m.tilesRead.Load() }

// TilesWritten returns the number of successful WriteTile calls.
func (m *Metered[T]) TilesWritten() int64 { return m.tilesWritten.Load() }

// ElementsRead returns the number of elements read.
func (m *Metered[T]) ElementsRead() int64 { return m.elementsRead.Load() }

// ElementsWritten returns the number of elements written.
func (m *Metered[T]) ElementsWritten() int64 { return m.elementsWritten.Load() }
