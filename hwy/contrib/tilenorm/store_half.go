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

	"github.com/x448/float16"
)

// HalfStore is a row-major half-precision backing store. Tiles are widened
// to float32 on read and rounded to nearest-even half on write, so all
// arithmetic runs in float32 while the store moves half the bytes.
type HalfStore struct {
	rows, cols int
	data       []float16.Float16
}

// NewHalfStore wraps data, which must hold at least rows*cols elements.
func NewHalfStore(data []float16.Float16, rows, cols int) (*HalfStore, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("NewHalfStore(%d, %d): %w", rows, cols, ErrEmptyMatrix)
	}
	if len(data) < rows*cols {
		return nil, fmt.Errorf("NewHalfStore(%d, %d): slice has %d elements: %w",
			rows, cols, len(data), ErrShapeMismatch)
	}
	return &HalfStore{rows: rows, cols: cols, data: data[:rows*cols]}, nil
}

// HalfFromFloat32 converts a float32 matrix to half precision.
func HalfFromFloat32(src []float32) []float16.Float16 {
	dst := make([]float16.Float16, len(src))
	for i, v := range src {
		dst[i] = float16.Fromfloat32(v)
	}
	return dst
}

// Dims returns the matrix dimensions.
func (h *HalfStore) Dims() (rows, cols int) {
	return h.rows, h.cols
}

// Data returns the backing slice.
func (h *HalfStore) Data() []float16.Float16 {
	return h.data
}

// ReadTile widens the tile rectangle to float32.
func (h *HalfStore) ReadTile(t *Tile[float32]) error {
	if err := checkTile(t, h.rows, h.cols); err != nil {
		return err
	}
	for i := range t.Rows {
		src := h.data[(t.Row+i)*h.cols+t.Col:][:t.Cols]
		dst := t.Data[i*t.Cols : (i+1)*t.Cols]
		for j, v := range src {
			dst[j] = v.Float32()
		}
	}
	return nil
}

// WriteTile narrows the tile rectangle to half precision.
func (h *HalfStore) WriteTile(t *Tile[float32]) error {
	if err := checkTile(t, h.rows, h.cols); err != nil {
		return err
	}
	for i := range t.Rows {
		dst := h.data[(t.Row+i)*h.cols+t.Col:][:t.Cols]
		src := t.Data[i*t.Cols : (i+1)*t.Cols]
		for j, v := range src {
			dst[j] = float16.Fromfloat32(v)
		}
	}
	return nil
}
