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

// Package tilenorm implements a streaming, tile-bounded row-normalize /
// column-scale transform:
//
//	denom[i]  = sum_j A[i][j] + 1
//	N[i][j]   = A[i][j] / denom[i]
//	scale[j]  = sum_i N[i][j] / R
//	out[i][j] = N[i][j] * scale[j]
//
// The matrix lives in a backing store (see [Source] and [Sink]) that is only
// accessed through whole-tile rectangle transfers. At most Buffers tiles are
// resident at once, plus O(R+C) vectors for row denominators and column sums,
// and in [ModeSingleSweep] an on-chip copy of the matrix.
//
// # Pass structure
//
// Each transform is a sequence of sweeps over the tile grid. A sweep is a
// bounded pipeline (load, compute, store) with one slot per buffer, so the
// load of tile N+1 overlaps the compute of tile N and the store of tile N-1.
//
//   - [ModeTwoSweep] reads the backing store to accumulate column sums, waits
//     at the barrier, then reads it again to normalize and scale.
//   - [ModeSingleSweep] reads the backing store once into an on-chip cache and
//     applies the scale from the cache.
//   - When tiles are narrower than the matrix, a row sweep first computes the
//     full-row sums, since a single tile only sees part of each row.
//
// Column sums are gathered in an [Accumulator]. Each compute worker owns a
// shard; [Accumulator.Finalize] reduces them in a fixed order and returns a
// read-only [Sums], the only input accepted by [ResolveScale].
//
// [ScaleTileLocal] is an approximation that scales each tile by the column
// means of its own rows. It has no global barrier and matches [ScaleGlobal]
// only when a tile spans every row.
//
// # Numerics
//
// Kernels use the vector API in package hwy: results depend on the lane
// grouping only up to rounding. NaN and Inf propagate. Rows whose sum is -1
// divide by zero unless [WithDenominatorCheck] is set.
//
// # Example
//
//	in := []float32{1, 1, 1, 1}
//	out := make([]float32, 4)
//	if err := tilenorm.TransformSlice(in, out, 2, 2); err != nil {
//		log.Fatal(err)
//	}
//	// out == [1/9 1/9 1/9 1/9]
package tilenorm
