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
	stdmath "math"
	"testing"

	"github.com/ajroetker/go-tilenorm/hwy"
)

func fillBlock(rows, cols int) []float32 {
	block := make([]float32, rows*cols)
	for i := range block {
		block[i] = float32((i*7)%13) * 0.25
	}
	return block
}

func TestBaseRowSums(t *testing.T) {
	t.Logf("Dispatch level: %s", hwy.CurrentName())
	for _, cols := range []int{1, 3, 4, 8, 17, 64, 100} {
		t.Run(fmt.Sprintf("cols=%d", cols), func(t *testing.T) {
			rows := 5
			block := fillBlock(rows, cols)
			sums := make([]float32, rows)
			sums[0] = 10 // BaseRowSums adds into sums.

			BaseRowSums(block, rows, cols, sums)

			for i := range rows {
				var want float64
				if i == 0 {
					want = 10
				}
				for j := range cols {
					want += float64(block[i*cols+j])
				}
				if stdmath.Abs(float64(sums[i])-want) > 1e-4*stdmath.Max(1, want) {
					t.Errorf("sums[%d] = %v, want %v", i, sums[i], want)
				}
			}
		})
	}
}

func TestBaseDenominators(t *testing.T) {
	sums := []float64{0, 2, -1, 3.5, 7, 0, 1, 1, 9}
	want := make([]float64, len(sums))
	for i, s := range sums {
		want[i] = s + 1
	}
	BaseDenominators(sums)
	for i := range sums {
		if sums[i] != want[i] {
			t.Errorf("denom[%d] = %v, want %v", i, sums[i], want[i])
		}
	}
}

func TestNormalizeReciprocalMatchesDivide(t *testing.T) {
	for _, cols := range []int{1, 7, 16, 33} {
		t.Run(fmt.Sprintf("cols=%d", cols), func(t *testing.T) {
			rows := 4
			recip := fillBlock(rows, cols)
			div := append([]float32(nil), recip...)
			denom := []float32{1, 3, 7.5, 1e3}

			BaseNormalizeRows(recip, rows, cols, denom)
			BaseNormalizeRowsDiv(div, rows, cols, denom)

			for i := range recip {
				diff := stdmath.Abs(float64(recip[i] - div[i]))
				if diff > 1e-6*stdmath.Max(1, stdmath.Abs(float64(div[i]))) {
					t.Errorf("element %d: reciprocal %v, divide %v", i, recip[i], div[i])
				}
			}
		})
	}
}

func TestNormalizeZeroRows(t *testing.T) {
	rows, cols := 3, 9
	block := make([]float64, rows*cols)
	denom := make([]float64, rows)
	BaseRowSums(block, rows, cols, denom)
	BaseDenominators(denom)
	BaseNormalizeRows(block, rows, cols, denom)
	for i, d := range denom {
		if d != 1 {
			t.Errorf("denom[%d] = %v, want 1", i, d)
		}
	}
	for i, v := range block {
		if v != 0 {
			t.Errorf("block[%d] = %v, want 0", i, v)
		}
	}
}

func TestBaseAccumulateColumns(t *testing.T) {
	rows, cols := 6, 19
	block := fillBlock(rows, cols)
	sums := make([]float32, cols)
	BaseAccumulateColumns(block, rows, cols, sums)
	BaseAccumulateColumns(block, rows, cols, sums)

	for j := range cols {
		var want float32
		for i := range rows {
			want += block[i*cols+j]
		}
		want *= 2
		if stdmath.Abs(float64(sums[j]-want)) > 1e-4 {
			t.Errorf("sums[%d] = %v, want %v", j, sums[j], want)
		}
	}
}

func TestBaseApplyScale(t *testing.T) {
	rows, cols := 3, 21
	block := fillBlock(rows, cols)
	orig := append([]float32(nil), block...)
	scale := make([]float32, cols)
	for j := range scale {
		scale[j] = float32(j) * 0.5
	}
	BaseApplyScale(block, rows, cols, scale)
	for i := range rows {
		for j := range cols {
			want := orig[i*cols+j] * scale[j]
			if got := block[i*cols+j]; got != want {
				t.Errorf("[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestKernelsPanicOnShortSlices(t *testing.T) {
	cases := map[string]func(){
		"block": func() { BaseRowSums(make([]float32, 3), 2, 2, make([]float32, 2)) },
		"sums":  func() { BaseRowSums(make([]float32, 4), 2, 2, make([]float32, 1)) },
		"scale": func() { BaseApplyScale(make([]float32, 4), 2, 2, make([]float32, 1)) },
		"denom": func() { BaseNormalizeRows(make([]float32, 4), 2, 2, make([]float32, 1)) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			fn()
		})
	}
}

func BenchmarkBaseNormalizeRows(b *testing.B) {
	rows, cols := 32, 32
	block := fillBlock(rows, cols)
	denom := make([]float32, rows)
	for i := range denom {
		denom[i] = float32(i + 1)
	}
	b.ResetTimer()
	for b.Loop() {
		BaseNormalizeRows(block, rows, cols, denom)
	}
}

func BenchmarkBaseNormalizeRowsDiv(b *testing.B) {
	rows, cols := 32, 32
	block := fillBlock(rows, cols)
	denom := make([]float32, rows)
	for i := range denom {
		denom[i] = float32(i + 1)
	}
	b.ResetTimer()
	for b.Loop() {
		BaseNormalizeRowsDiv(block, rows, cols, denom)
	}
}
