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

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-tilenorm/hwy/contrib/workerpool"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunVerify(t *testing.T) {
	for _, precision := range precisionNames() {
		t.Run(precision, func(t *testing.T) {
			out, err := execute(t, "run", "--rows=32", "--cols=48", "--tile-rows=8", "--tile-cols=16",
				"--precision="+precision, "--verify")
			require.NoError(t, err, out)
			require.Contains(t, out, "Precision:")
			require.Contains(t, out, "Max Error:")
			require.Regexp(t, `Tile:\s+8x16\n`, out)
		})
	}
}

func TestRunModes(t *testing.T) {
	args := [][]string{
		{"--mode=two-sweep", "--workers=3"},
		{"--mode=single-sweep", "--buffers=1"},
		{"--scale=tile-local", "--tile-rows=32"},
		{"--normalize=divide", "--order=column-major"},
	}
	for _, extra := range args {
		t.Run(strings.Join(extra, " "), func(t *testing.T) {
			out, err := execute(t, append([]string{"run", "--rows=32", "--cols=32", "--verify"}, extra...)...)
			require.NoError(t, err, out)
		})
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	cases := [][]string{
		{"run", "--mode=three-sweep"},
		{"run", "--precision=f8"},
		{"run", "--rows=0"},
		{"run", "--rows=30", "--tile-rows=7"},
		{"run", "--rows=32", "--cols=32", "--buffers=3"},
	}
	for _, args := range cases {
		_, err := execute(t, args...)
		require.Error(t, err, "args %v", args)
	}
}

func TestInfo(t *testing.T) {
	out, err := execute(t, "info")
	require.NoError(t, err)
	require.Contains(t, out, "Dispatch:")
	require.Contains(t, out, "Scalar Override:")
}

func TestRelativeError(t *testing.T) {
	require.Equal(t, 0.0, relativeError([]float64{1, 2}, []float64{1, 2}))
	require.InDelta(t, 0.25, relativeError([]float64{1, 2.5}, []float64{1, 2}), 1e-12)
	require.Equal(t, 0.5, relativeError([]float64{0.5}, []float64{0}))
}

func TestGenerateIndependentOfWorkers(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	a := generate(nil, 9, 5, 7)
	b := generate(pool, 9, 5, 7)
	require.Len(t, a, 45)
	require.Equal(t, a, b)
	for _, v := range a {
		require.True(t, v >= 0 && v < 10)
	}
}
