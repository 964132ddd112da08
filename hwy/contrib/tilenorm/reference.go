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

import "github.com/ajroetker/go-tilenorm/hwy"

// Reference computes the transform of a flat row-major rows x cols matrix
// directly: full-row sums, per-element division, then column means over all
// rows. It accumulates in float64 and keeps the whole matrix in memory, so it
// is meant as an oracle for tests and verification, not as a kernel.
func Reference[T hwy.Floats](input []T, rows, cols int) []T {
	if rows <= 0 || cols <= 0 || len(input) < rows*cols {
		panic("tilenorm: Reference input too short")
	}
	norm := make([]float64, rows*cols)
	for i := range rows {
		var sum float64
		for j := range cols {
			sum += float64(input[i*cols+j])
		}
		denom := sum + RowBias
		for j := range cols {
			norm[i*cols+j] = float64(input[i*cols+j]) / denom
		}
	}

	colSum := make([]float64, cols)
	for i := range rows {
		for j := range cols {
			colSum[j] += norm[i*cols+j]
		}
	}

	out := make([]T, rows*cols)
	for i := range rows {
		for j := range cols {
			out[i*cols+j] = T(norm[i*cols+j] * (colSum[j] / float64(rows)))
		}
	}
	return out
}
