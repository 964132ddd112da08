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

	"gonum.org/v1/gonum/mat"
)

// DenseStore is a Store[float64] over a gonum *mat.Dense. Views created with
// Slice are supported: transfers honor the row stride.
type DenseStore struct {
	m *mat.Dense
}

// NewDenseStore wraps m. The store aliases m's storage.
func NewDenseStore(m *mat.Dense) (*DenseStore, error) {
	if m == nil || m.IsEmpty() {
		return nil, fmt.Errorf("NewDenseStore: %w", ErrEmptyMatrix)
	}
	return &DenseStore{m: m}, nil
}

// Dims returns the matrix dimensions.
func (d *DenseStore) Dims() (rows, cols int) {
	return d.m.Dims()
}

// ReadTile copies the tile rectangle out of the gonum matrix.
func (d *DenseStore) ReadTile(t *Tile[float64]) error {
	raw := d.m.RawMatrix()
	if err := checkTile(t, raw.Rows, raw.Cols); err != nil {
		return err
	}
	for i := range t.Rows {
		off := (t.Row+i)*raw.Stride + t.Col
		copy(t.Data[i*t.Cols:(i+1)*t.Cols], raw.Data[off:off+t.Cols])
	}
	return nil
}

// WriteTile copies the tile rectangle into the gonum matrix.
func (d *DenseStore) WriteTile(t *Tile[float64]) error {
	raw := d.m.RawMatrix()
	if err := checkTile(t, raw.Rows, raw.Cols); err != nil {
		return err
	}
	for i := range t.Rows {
		off := (t.Row+i)*raw.Stride + t.Col
		copy(raw.Data[off:off+t.Cols], t.Data[i*t.Cols:(i+1)*t.Cols])
	}
	return nil
}
