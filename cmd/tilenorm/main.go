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

// Command tilenorm runs the tile-bounded row-normalize / column-scale
// transform on a generated matrix and reports how it was executed.
//
// Usage:
//
//	tilenorm run --rows 1024 --cols 512 --tile-rows 32 --tile-cols 32 --verify
//	tilenorm run --precision f16 --mode two-sweep --workers 4 -v 2
//	tilenorm info
//
// Logging flags (-v, --logtostderr, ...) are the klog flags.
package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tilenorm",
		Short:         "Streaming tile-bounded row-normalize / column-scale transform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	root.AddCommand(newRunCmd(), newInfoCmd())
	return root
}

func main() {
	defer klog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		klog.Errorf("%v", err)
		klog.Flush()
		os.Exit(1)
	}
}
