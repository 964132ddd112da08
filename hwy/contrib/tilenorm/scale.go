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

// Scale is the per-column scale factor vector. It is read-only.
type Scale[T hwy.Floats] struct {
	values []T
}

// ResolveScale computes scale[j] = sums[j] / rows. It takes finalized Sums,
// so it cannot run before the accumulation barrier.
func ResolveScale[T hwy.Floats](sums Sums[T], rows int) Scale[T] {
	values := make([]T, sums.Len())
	sums.CopyTo(values)

	vRows := hwy.Set(T(rows))
	lanes := vRows.NumLanes()
	j := 0
	for ; j+lanes <= len(values); j += lanes {
		hwy.Store(hwy.Div(hwy.Load(values[j:]), vRows), values[j:])
	}
	for ; j < len(values); j++ {
		values[j] /= T(rows)
	}
	return Scale[T]{values: values}
}

// Len returns the number of columns.
func (s Scale[T]) Len() int {
	return len(s.values)
}

// At returns the scale of column j.
func (s Scale[T]) At(j int) T {
	return s.values[j]
}

// Values returns a copy of the scale vector.
func (s Scale[T]) Values() []T {
	return append([]T(nil), s.values...)
}

// columns returns the scales of columns [col, col+n) without copying.
func (s Scale[T]) columns(col, n int) []T {
	return s.values[col : col+n]
}
