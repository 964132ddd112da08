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

// Tile is a Rows x Cols rectangle of the matrix whose top-left element is
// (Row, Col). Data holds Rows*Cols elements in row-major order.
type Tile[T hwy.Floats] struct {
	Row, Col   int
	Rows, Cols int
	Data       []T
}

// RowData returns row i of the tile (tile-relative).
func (t *Tile[T]) RowData(i int) []T {
	return t.Data[i*t.Cols : (i+1)*t.Cols]
}

// checkTile validates that t lies inside a rows x cols matrix and that its
// buffer holds the whole rectangle.
func checkTile[T hwy.Floats](t *Tile[T], rows, cols int) error {
	if t.Row < 0 || t.Col < 0 || t.Rows <= 0 || t.Cols <= 0 ||
		t.Row+t.Rows > rows || t.Col+t.Cols > cols {
		return fmt.Errorf("tile %dx%d at (%d,%d) in %dx%d matrix: %w",
			t.Rows, t.Cols, t.Row, t.Col, rows, cols, ErrOutOfRange)
	}
	if len(t.Data) < t.Rows*t.Cols {
		return fmt.Errorf("tile %dx%d buffer has %d elements: %w",
			t.Rows, t.Cols, len(t.Data), ErrOutOfRange)
	}
	return nil
}

// grid enumerates the tile origins of a matrix in visitation order.
type grid struct {
	rows, cols         int
	tileRows, tileCols int
	order              TileOrder
}

// bands is the number of tile rows, stripes the number of tile columns.
func (g grid) bands() int   { return g.rows / g.tileRows }
func (g grid) stripes() int { return g.cols / g.tileCols }
func (g grid) len() int     { return g.bands() * g.stripes() }

// at returns the origin of the seq-th visited tile.
func (g grid) at(seq int) (row, col int) {
	var band, stripe int
	if g.order == OrderColumnMajor {
		band, stripe = seq%g.bands(), seq/g.bands()
	} else {
		band, stripe = seq/g.stripes(), seq%g.stripes()
	}
	return band * g.tileRows, stripe * g.tileCols
}

// fullRows reports whether every tile spans complete matrix rows, in which
// case row sums can be computed from a single tile.
func (g grid) fullRows() bool {
	return g.tileCols == g.cols
}
