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

// RowBias is added to every row sum to form the row denominator.
const RowBias = 1

func checkBlock[T hwy.Floats](block []T, rows, cols int, vec []T, vecLen int, vecName string) {
	if len(block) < rows*cols {
		panic("tilenorm: block slice too short")
	}
	if len(vec) < vecLen {
		panic("tilenorm: " + vecName + " slice too short")
	}
}

// BaseRowSums adds the sum of each row of the rows x cols block to sums[i].
//
// Each row is reduced with vector accumulators and a scalar tail, so the
// summation order depends on the lane count; results agree with a
// sequential sum up to rounding.
func BaseRowSums[T hwy.Floats](block []T, rows, cols int, sums []T) {
	checkBlock(block, rows, cols, sums, rows, "sums")
	lanes := hwy.MaxLanes[T]()

	for i := range rows {
		row := block[i*cols : (i+1)*cols]
		acc := hwy.Zero[T]()
		j := 0
		for ; j+lanes <= cols; j += lanes {
			acc = hwy.Add(acc, hwy.Load(row[j:]))
		}
		s := hwy.ReduceSum(acc)
		for ; j < cols; j++ {
			s += row[j]
		}
		sums[i] += s
	}
}

// BaseDenominators turns finished row sums into row denominators in place:
// denom[i] = sums[i] + RowBias.
func BaseDenominators[T hwy.Floats](sums []T) {
	bias := hwy.Set(T(RowBias))
	lanes := bias.NumLanes()
	i := 0
	for ; i+lanes <= len(sums); i += lanes {
		hwy.Store(hwy.Add(hwy.Load(sums[i:]), bias), sums[i:])
	}
	for ; i < len(sums); i++ {
		sums[i] += RowBias
	}
}

// BaseNormalizeRows divides each row of the block by denom[i] in place. The
// reciprocal is computed once per row and the row is multiplied by it.
func BaseNormalizeRows[T hwy.Floats](block []T, rows, cols int, denom []T) {
	checkBlock(block, rows, cols, denom, rows, "denom")
	lanes := hwy.MaxLanes[T]()

	for i := range rows {
		row := block[i*cols : (i+1)*cols]
		recip := T(1) / denom[i]
		vRecip := hwy.Set(recip)
		j := 0
		for ; j+lanes <= cols; j += lanes {
			hwy.Store(hwy.Mul(hwy.Load(row[j:]), vRecip), row[j:])
		}
		for ; j < cols; j++ {
			row[j] *= recip
		}
	}
}

// BaseNormalizeRowsDiv divides each element of row i by denom[i] in place.
// It agrees with BaseNormalizeRows within rounding.
func BaseNormalizeRowsDiv[T hwy.Floats](block []T, rows, cols int, denom []T) {
	checkBlock(block, rows, cols, denom, rows, "denom")
	lanes := hwy.MaxLanes[T]()

	for i := range rows {
		row := block[i*cols : (i+1)*cols]
		d := denom[i]
		vDenom := hwy.Set(d)
		j := 0
		for ; j+lanes <= cols; j += lanes {
			hwy.Store(hwy.Div(hwy.Load(row[j:]), vDenom), row[j:])
		}
		for ; j < cols; j++ {
			row[j] /= d
		}
	}
}

// BaseAccumulateColumns adds column j of the block into sums[j].
func BaseAccumulateColumns[T hwy.Floats](block []T, rows, cols int, sums []T) {
	checkBlock(block, rows, cols, sums, cols, "sums")
	lanes := hwy.MaxLanes[T]()

	for i := range rows {
		row := block[i*cols : (i+1)*cols]
		j := 0
		for ; j+lanes <= cols; j += lanes {
			hwy.Store(hwy.Add(hwy.Load(sums[j:]), hwy.Load(row[j:])), sums[j:])
		}
		for ; j < cols; j++ {
			sums[j] += row[j]
		}
	}
}

// BaseApplyScale multiplies column j of the block by scale[j] in place.
func BaseApplyScale[T hwy.Floats](block []T, rows, cols int, scale []T) {
	checkBlock(block, rows, cols, scale, cols, "scale")
	lanes := hwy.MaxLanes[T]()

	for i := range rows {
		row := block[i*cols : (i+1)*cols]
		j := 0
		for ; j+lanes <= cols; j += lanes {
			hwy.Store(hwy.Mul(hwy.Load(row[j:]), hwy.Load(scale[j:])), row[j:])
		}
		for ; j < cols; j++ {
			row[j] *= scale[j]
		}
	}
}
