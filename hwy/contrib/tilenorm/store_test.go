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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func seqMatrix(rows, cols int) []float64 {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i)
	}
	return data
}

func TestMatrixStoreTiles(t *testing.T) {
	data := seqMatrix(4, 6)
	s, err := NewMatrixStore(data, 4, 6)
	require.NoError(t, err)

	r, c := s.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 6, c)

	tile := Tile[float64]{Row: 2, Col: 3, Rows: 2, Cols: 3, Data: make([]float64, 6)}
	require.NoError(t, s.ReadTile(&tile))
	require.Equal(t, []float64{15, 16, 17, 21, 22, 23}, tile.Data)
	require.Equal(t, []float64{21, 22, 23}, tile.RowData(1))

	for i := range tile.Data {
		tile.Data[i] = -1
	}
	require.NoError(t, s.WriteTile(&tile))
	require.Equal(t, -1.0, data[2*6+3])
	require.Equal(t, 14.0, data[2*6+2], "write must stay inside the tile")
}

func TestMatrixStoreErrors(t *testing.T) {
	_, err := NewMatrixStore([]float32{1, 2, 3}, 2, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewMatrixStore([]float32{}, 0, 2)
	require.ErrorIs(t, err, ErrEmptyMatrix)

	s, err := NewMatrixStore(make([]float32, 4), 2, 2)
	require.NoError(t, err)

	outside := Tile[float32]{Row: 1, Col: 0, Rows: 2, Cols: 2, Data: make([]float32, 4)}
	require.ErrorIs(t, s.ReadTile(&outside), ErrOutOfRange)

	short := Tile[float32]{Rows: 2, Cols: 2, Data: make([]float32, 3)}
	require.ErrorIs(t, s.WriteTile(&short), ErrOutOfRange)
}

func TestDenseStore(t *testing.T) {
	m := mat.NewDense(4, 4, seqMatrix(4, 4))
	// A view exercises a stride larger than the column count.
	view := m.Slice(1, 3, 1, 4).(*mat.Dense)

	s, err := NewDenseStore(view)
	require.NoError(t, err)
	r, c := s.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 3, c)

	tile := Tile[float64]{Row: 0, Col: 1, Rows: 2, Cols: 2, Data: make([]float64, 4)}
	require.NoError(t, s.ReadTile(&tile))
	require.True(t, floats.Equal([]float64{6, 7, 10, 11}, tile.Data), "got %v", tile.Data)

	floats.Scale(10, tile.Data)
	require.NoError(t, s.WriteTile(&tile))
	require.Equal(t, 70.0, m.At(1, 3))
	require.Equal(t, 5.0, m.At(1, 1))

	_, err = NewDenseStore(nil)
	require.ErrorIs(t, err, ErrEmptyMatrix)
	_, err = NewDenseStore(&mat.Dense{})
	require.ErrorIs(t, err, ErrEmptyMatrix)
}

func TestHalfStore(t *testing.T) {
	data := HalfFromFloat32([]float32{0.5, 1, 1.5, 2})
	s, err := NewHalfStore(data, 2, 2)
	require.NoError(t, err)

	tile := Tile[float32]{Rows: 2, Cols: 2, Data: make([]float32, 4)}
	require.NoError(t, s.ReadTile(&tile))
	require.Equal(t, []float32{0.5, 1, 1.5, 2}, tile.Data)

	tile.Data[3] = 1.0 / 3
	require.NoError(t, s.WriteTile(&tile))
	require.Equal(t, float16.Fromfloat32(1.0/3), s.Data()[3])
	require.InDelta(t, 1.0/3, s.Data()[3].Float32(), 1e-3)

	_, err = NewHalfStore(data, 3, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMetered(t *testing.T) {
	inner, err := NewMatrixStore(make([]float32, 16), 4, 4)
	require.NoError(t, err)
	m := NewMetered[float32](inner)

	tile := Tile[float32]{Rows: 2, Cols: 4, Data: make([]float32, 8)}
	require.NoError(t, m.ReadTile(&tile))
	tile.Row = 2
	require.NoError(t, m.ReadTile(&tile))
	require.NoError(t, m.WriteTile(&tile))

	tile.Row = 3
	require.ErrorIs(t, m.ReadTile(&tile), ErrOutOfRange)

	require.EqualValues(t, 2, m.TilesRead())
	require.EqualValues(t, 16, m.ElementsRead())
	require.EqualValues(t, 1, m.TilesWritten())
	require.EqualValues(t, 8, m.ElementsWritten())

	require.Panics(t, func() { NewMetered[float32](struct{ dimsOnly }{}) })
}

type dimsOnly struct{}

func (dimsOnly) Dims() (int, int) { return 1, 1 }
