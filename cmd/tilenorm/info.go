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
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-tilenorm/hwy"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the vector dispatch level and CPU features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printInfo(cmd.OutOrStdout())
		},
	}
}

type feature struct {
	name string
	has  bool
}

func cpuFeatures() []feature {
	switch runtime.GOARCH {
	case "amd64", "386":
		return []feature{
			{"sse2", cpu.X86.HasSSE2},
			{"sse4.1", cpu.X86.HasSSE41},
			{"avx", cpu.X86.HasAVX},
			{"avx2", cpu.X86.HasAVX2},
			{"fma", cpu.X86.HasFMA},
			{"avx512f", cpu.X86.HasAVX512F},
			{"avx512bw", cpu.X86.HasAVX512BW},
			{"avx512vl", cpu.X86.HasAVX512VL},
		}
	case "arm64":
		return []feature{
			{"asimd", cpu.ARM64.HasASIMD},
			{"fphp", cpu.ARM64.HasFPHP},
			{"asimdhp", cpu.ARM64.HasASIMDHP},
			{"sve", cpu.ARM64.HasSVE},
			{"sve2", cpu.ARM64.HasSVE2},
		}
	}
	return nil
}

func printInfo(w io.Writer) error {
	report := [][2]string{
		{"arch", runtime.GOARCH},
		{"dispatch", hwy.CurrentName()},
		{"vector bytes", fmt.Sprint(hwy.CurrentWidth())},
		{"float32 lanes", fmt.Sprint(hwy.MaxLanes[float32]())},
		{"float64 lanes", fmt.Sprint(hwy.MaxLanes[float64]())},
		{"scalar override", fmt.Sprint(hwy.NoSimdEnv())},
	}
	for _, f := range cpuFeatures() {
		report = append(report, [2]string{f.name, fmt.Sprint(f.has)})
	}
	return printReport(w, report)
}
