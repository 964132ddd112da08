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

package tilenorm_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ajroetker/go-tilenorm/hwy/contrib/tilenorm"
)

func ExampleTransformSlice() {
	in := []float64{
		1, 1,
		1, 1,
	}
	out := make([]float64, len(in))
	if err := tilenorm.TransformSlice(in, out, 2, 2, tilenorm.WithTile(1, 1)); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.4f\n", out)
	// Output: [0.1111 0.1111 0.1111 0.1111]
}

func ExampleTransform() {
	m := mat.NewDense(2, 4, []float64{
		0, 1, 2, 3,
		3, 2, 1, 0,
	})
	store, err := tilenorm.NewDenseStore(m)
	if err != nil {
		fmt.Println(err)
		return
	}
	stats, err := tilenorm.Transform[float64](store, store,
		tilenorm.WithTile(2, 2), tilenorm.WithMode(tilenorm.ModeTwoSweep))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("mode=%s source sweeps=%d row sweep=%t\n", stats.Mode, stats.SourceSweeps, stats.RowSweep)
	for i := range 2 {
		fmt.Printf("%.4f\n", m.RawRowView(i))
	}
	// Output:
	// mode=two-sweep source sweeps=3 row sweep=true
	// [0.0000 0.0306 0.0612 0.0918]
	// [0.0918 0.0612 0.0306 0.0000]
}
