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

import "errors"

// Boundary errors. They are wrapped with context via fmt.Errorf("...: %w");
// match them with errors.Is.
var (
	// ErrEmptyMatrix is returned when R or C is zero or negative.
	ErrEmptyMatrix = errors.New("tilenorm: matrix has no rows or columns")

	// ErrShapeMismatch is returned when input and output dimensions differ,
	// or a flat slice is shorter than rows*cols.
	ErrShapeMismatch = errors.New("tilenorm: shape mismatch")

	// ErrTileShape is returned when a tile dimension is non-positive or does
	// not evenly divide the matrix dimension. Partial tiles are not supported.
	ErrTileShape = errors.New("tilenorm: tile does not evenly divide matrix")

	// ErrBuffers is returned when the buffering depth is outside [1, MaxBuffers].
	ErrBuffers = errors.New("tilenorm: invalid buffer depth")

	// ErrCapacity is returned when the requested working set does not fit the
	// on-chip capacity.
	ErrCapacity = errors.New("tilenorm: working set exceeds capacity")

	// ErrOutOfRange is returned by stores for transfers outside the matrix.
	ErrOutOfRange = errors.New("tilenorm: tile out of range")

	// ErrDenominator is returned, when denominator checking is enabled, for a
	// row whose sum plus bias is not positive.
	ErrDenominator = errors.New("tilenorm: non-positive row denominator")
)
