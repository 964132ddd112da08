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

package hwy

import (
	"math"
	"testing"
)

func TestMaxLanes(t *testing.T) {
	t.Logf("Dispatch level: %s, width %d", CurrentName(), CurrentWidth())

	if got, want := MaxLanes[float32](), CurrentWidth()/4; got != want {
		t.Errorf("MaxLanes[float32]() = %d, want %d", got, want)
	}
	if got, want := MaxLanes[float64](), CurrentWidth()/8; got != want {
		t.Errorf("MaxLanes[float64]() = %d, want %d", got, want)
	}
	if MaxLanes[float64]() < 2 {
		t.Errorf("MaxLanes[float64]() = %d, want at least 2", MaxLanes[float64]())
	}
}

func TestLoadStore(t *testing.T) {
	lanes := MaxLanes[float32]()
	src := make([]float32, lanes+3)
	for i := range src {
		src[i] = float32(i + 1)
	}

	v := Load(src)
	if v.NumLanes() != lanes {
		t.Fatalf("NumLanes() = %d, want %d", v.NumLanes(), lanes)
	}

	dst := make([]float32, lanes)
	Store(v, dst)
	for i := range dst {
		if dst[i] != src[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], src[i])
		}
	}

	// Short source produces a short vector.
	short := Load(src[:2])
	if short.NumLanes() != 2 {
		t.Errorf("short NumLanes() = %d, want 2", short.NumLanes())
	}
}

func TestArithmetic(t *testing.T) {
	lanes := MaxLanes[float64]()
	a := make([]float64, lanes)
	b := make([]float64, lanes)
	for i := range a {
		a[i] = float64(i + 1)
		b[i] = 2
	}
	va, vb := Load(a), Load(b)

	sum := Add(va, vb).Data()
	prod := Mul(va, vb).Data()
	quot := Div(va, vb).Data()
	for i := range lanes {
		if sum[i] != a[i]+2 {
			t.Errorf("Add lane %d = %v, want %v", i, sum[i], a[i]+2)
		}
		if prod[i] != a[i]*2 {
			t.Errorf("Mul lane %d = %v, want %v", i, prod[i], a[i]*2)
		}
		if quot[i] != a[i]/2 {
			t.Errorf("Div lane %d = %v, want %v", i, quot[i], a[i]/2)
		}
	}
}

func TestReduceSum(t *testing.T) {
	lanes := MaxLanes[float32]()
	data := make([]float32, lanes)
	var want float64
	for i := range data {
		data[i] = float32(i) * 0.5
		want += float64(data[i])
	}

	got := ReduceSum(Load(data))
	if math.Abs(float64(got)-want) > 1e-5 {
		t.Errorf("ReduceSum = %v, want %v", got, want)
	}
	if ReduceSum(Zero[float32]()) != 0 {
		t.Errorf("ReduceSum(Zero) != 0")
	}
}

func TestDispatchLevelString(t *testing.T) {
	tests := []struct {
		level DispatchLevel
		want  string
	}{
		{DispatchScalar, "scalar"},
		{DispatchSSE2, "sse2"},
		{DispatchAVX2, "avx2"},
		{DispatchAVX512, "avx512"},
		{DispatchNEON, "neon"},
		{DispatchLevel(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestCurrentNameMatchesLevel(t *testing.T) {
	if CurrentName() != CurrentLevel().String() {
		t.Errorf("CurrentName() = %q, CurrentLevel() = %q", CurrentName(), CurrentLevel())
	}
}
