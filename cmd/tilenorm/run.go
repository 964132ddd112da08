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
	stdmath "math"
	"math/rand"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/x448/float16"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/ajroetker/go-tilenorm/hwy"
	"github.com/ajroetker/go-tilenorm/hwy/contrib/tilenorm"
	"github.com/ajroetker/go-tilenorm/hwy/contrib/workerpool"
)

// Backing-store precisions and the default verification tolerance of each,
// as a fraction of the largest output magnitude.
var precisionTolerance = map[string]float64{
	"f32":   1e-5,
	"f64":   1e-9,
	"f16":   2e-3,
	"gonum": 1e-9,
}

type runOptions struct {
	rows, cols         int
	tileRows, tileCols int
	buffers            int
	workers            int
	capacity           int

	mode, scale, normalize, order string
	precision                     string

	seed      int64
	verify    bool
	tolerance float64
}

func newRunCmd() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transform a generated nonnegative matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.rows, "rows", 1024, "matrix rows")
	f.IntVar(&o.cols, "cols", 1024, "matrix columns")
	f.IntVar(&o.tileRows, "tile-rows", 0, "tile height, 0 picks the largest divisor of --rows up to 32")
	f.IntVar(&o.tileCols, "tile-cols", 0, "tile width, 0 picks the largest divisor of --cols up to 32")
	f.IntVar(&o.buffers, "buffers", tilenorm.DefaultBuffers, "tile slots per sweep (1 or 2)")
	f.IntVar(&o.workers, "workers", 1, "compute workers, 0 uses GOMAXPROCS")
	f.IntVar(&o.capacity, "capacity", tilenorm.DefaultCapacity, "on-chip element budget")
	f.StringVar(&o.mode, "mode", "auto", "pass structure: "+strings.Join(tilenorm.ModeNames(), ", "))
	f.StringVar(&o.scale, "scale", "global", "column scale: "+strings.Join(tilenorm.ScaleModeNames(), ", "))
	f.StringVar(&o.normalize, "normalize", "reciprocal", "row normalization: "+strings.Join(tilenorm.NormalizeModeNames(), ", "))
	f.StringVar(&o.order, "order", "row-major", "tile order: "+strings.Join(tilenorm.OrderNames(), ", "))
	f.StringVar(&o.precision, "precision", "f32", "backing store: "+strings.Join(precisionNames(), ", "))
	f.Int64Var(&o.seed, "seed", 1, "input generator seed")
	f.BoolVar(&o.verify, "verify", false, "compare against the direct reference computation")
	f.Float64Var(&o.tolerance, "tolerance", 0, "max verification error relative to the largest output, 0 uses the precision default")
	return cmd
}

func precisionNames() []string {
	names := lo.Keys(precisionTolerance)
	slices.Sort(names)
	return names
}

// options converts the flags into transform options.
func (o *runOptions) options() ([]tilenorm.Option, error) {
	mode, err := tilenorm.ParseMode(o.mode)
	if err != nil {
		return nil, err
	}
	scale, err := tilenorm.ParseScaleMode(o.scale)
	if err != nil {
		return nil, err
	}
	normalize, err := tilenorm.ParseNormalizeMode(o.normalize)
	if err != nil {
		return nil, err
	}
	order, err := tilenorm.ParseOrder(o.order)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(precisionNames(), o.precision) {
		return nil, fmt.Errorf("unknown precision %q (want one of %s)", o.precision, strings.Join(precisionNames(), ", "))
	}
	return []tilenorm.Option{
		tilenorm.WithTile(o.tileRows, o.tileCols),
		tilenorm.WithBuffers(o.buffers),
		tilenorm.WithMode(mode),
		tilenorm.WithScale(scale),
		tilenorm.WithNormalize(normalize),
		tilenorm.WithOrder(order),
		tilenorm.WithCapacity(o.capacity),
	}, nil
}

// result is one finished transform, widened to float64 for reporting.
type result struct {
	stats   tilenorm.Stats
	elapsed time.Duration
	output  []float64
	want    []float64
}

func (o *runOptions) run(w io.Writer) error {
	if o.rows <= 0 || o.cols <= 0 {
		return fmt.Errorf("--rows and --cols must be positive, got %dx%d", o.rows, o.cols)
	}
	opts, err := o.options()
	if err != nil {
		return err
	}

	pool := workerpool.New(o.workers)
	defer pool.Close()
	opts = append(opts, tilenorm.WithPool(pool), tilenorm.WithWorkers(pool.NumWorkers()))

	input := generate(pool, o.rows, o.cols, o.seed)
	klog.V(1).Infof("generated %dx%d input (seed %d)", o.rows, o.cols, o.seed)

	var res result
	switch o.precision {
	case "f64":
		res, err = transformFlat(input, o.rows, o.cols, o.verify, opts)
	case "f32":
		res, err = transformFlat(toFloat32(input), o.rows, o.cols, o.verify, opts)
	case "f16":
		res, err = transformHalf(toFloat32(input), o.rows, o.cols, o.verify, opts)
	case "gonum":
		res, err = transformDense(input, o.rows, o.cols, o.verify, opts)
	}
	if err != nil {
		return err
	}

	report := [][2]string{
		{"precision", o.precision},
		{"matrix", fmt.Sprintf("%dx%d", o.rows, o.cols)},
		{"dispatch", hwy.CurrentName()},
		{"mode", res.stats.Mode.String()},
		{"scale", res.stats.Scale.String()},
		{"normalize", res.stats.Normalize.String()},
		{"tile", fmt.Sprintf("%dx%d", res.stats.TileRows, res.stats.TileCols)},
		{"buffers", fmt.Sprint(res.stats.Buffers)},
		{"workers", fmt.Sprint(res.stats.Workers)},
		{"row sweep", fmt.Sprint(res.stats.RowSweep)},
		{"source sweeps", fmt.Sprint(res.stats.SourceSweeps)},
		{"cache sweeps", fmt.Sprint(res.stats.CacheSweeps)},
		{"tiles loaded", fmt.Sprint(res.stats.TilesLoaded)},
		{"tiles stored", fmt.Sprint(res.stats.TilesStored)},
		{"elapsed", res.elapsed.String()},
	}

	var verifyErr error
	if o.verify {
		tol := o.tolerance
		if tol <= 0 {
			tol = precisionTolerance[o.precision]
		}
		maxErr := relativeError(res.output, res.want)
		report = append(report, [2]string{"max error", fmt.Sprintf("%.3g (tolerance %.3g)", maxErr, tol)})
		if !(maxErr <= tol) {
			verifyErr = fmt.Errorf("verification failed: max error %.3g exceeds tolerance %.3g", maxErr, tol)
		}
	}
	if err := printReport(w, report); err != nil {
		return err
	}
	return verifyErr
}

func printReport(w io.Writer, report [][2]string) error {
	title := cases.Title(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, kv := range report {
		fmt.Fprintf(tw, "%s:\t%s\n", title.String(kv[0]), kv[1])
	}
	return tw.Flush()
}

// generate fills a rows x cols matrix with values in [0, 10). Each row has
// its own generator, so the input does not depend on the worker count.
func generate(pool *workerpool.Pool, rows, cols int, seed int64) []float64 {
	data := make([]float64, rows*cols)
	pool.ParallelFor(rows, func(start, end int) {
		for i := start; i < end; i++ {
			rng := rand.New(rand.NewSource(seed*1_000_003 + int64(i)))
			row := data[i*cols : (i+1)*cols]
			for j := range row {
				row[j] = rng.Float64() * 10
			}
		}
	})
	return data
}

func toFloat32(src []float64) []float32 {
	return lo.Map(src, func(v float64, _ int) float32 { return float32(v) })
}

func toFloat64[T hwy.Floats](src []T) []float64 {
	return lo.Map(src, func(v T, _ int) float64 { return float64(v) })
}

func transformFlat[T hwy.Floats](input []T, rows, cols int, verify bool, opts []tilenorm.Option) (result, error) {
	src, err := tilenorm.NewMatrixStore(input, rows, cols)
	if err != nil {
		return result{}, err
	}
	output := make([]T, len(input))
	dst, err := tilenorm.NewMatrixStore(output, rows, cols)
	if err != nil {
		return result{}, err
	}
	start := time.Now()
	stats, err := tilenorm.Transform[T](src, dst, opts...)
	if err != nil {
		return result{}, err
	}
	res := result{stats: stats, elapsed: time.Since(start), output: toFloat64(output)}
	if verify {
		res.want = toFloat64(tilenorm.Reference(input, rows, cols))
	}
	return res, nil
}

func transformHalf(input []float32, rows, cols int, verify bool, opts []tilenorm.Option) (result, error) {
	half := tilenorm.HalfFromFloat32(input)
	src, err := tilenorm.NewHalfStore(half, rows, cols)
	if err != nil {
		return result{}, err
	}
	dst, err := tilenorm.NewHalfStore(make([]float16.Float16, len(half)), rows, cols)
	if err != nil {
		return result{}, err
	}
	start := time.Now()
	stats, err := tilenorm.Transform[float32](src, dst, opts...)
	if err != nil {
		return result{}, err
	}
	widen := func(h float16.Float16, _ int) float32 { return h.Float32() }
	res := result{stats: stats, elapsed: time.Since(start), output: toFloat64(lo.Map(dst.Data(), widen))}
	if verify {
		// The reference sees the input as the store hands it out.
		rounded := lo.Map(half, widen)
		res.want = toFloat64(tilenorm.Reference(rounded, rows, cols))
	}
	return res, nil
}

func transformDense(input []float64, rows, cols int, verify bool, opts []tilenorm.Option) (result, error) {
	m := mat.NewDense(rows, cols, append([]float64(nil), input...))
	store, err := tilenorm.NewDenseStore(m)
	if err != nil {
		return result{}, err
	}
	start := time.Now()
	stats, err := tilenorm.Transform[float64](store, store, opts...)
	if err != nil {
		return result{}, err
	}
	res := result{stats: stats, elapsed: time.Since(start), output: m.RawMatrix().Data}
	if verify {
		res.want = tilenorm.Reference(input, rows, cols)
	}
	return res, nil
}

// relativeError returns max|got-want| / max|want|. NaN anywhere yields NaN.
func relativeError(got, want []float64) float64 {
	var maxDiff, maxWant float64
	for i := range want {
		d := stdmath.Abs(got[i] - want[i])
		if stdmath.IsNaN(d) {
			return stdmath.NaN()
		}
		maxDiff = max(maxDiff, d)
		maxWant = max(maxWant, stdmath.Abs(want[i]))
	}
	if maxWant == 0 {
		return maxDiff
	}
	return maxDiff / maxWant
}
