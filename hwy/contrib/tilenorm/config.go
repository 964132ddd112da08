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
	"strings"

	"github.com/ajroetker/go-tilenorm/hwy/contrib/workerpool"
)

const (
	// DefaultTileRows and DefaultTileCols give 32x32 tiles: two float32
	// slots take 8KB.
	DefaultTileRows = 32
	DefaultTileCols = 32

	// DefaultBuffers is double buffering: one slot loading while the other
	// is computed or stored.
	DefaultBuffers = 2

	// MaxBuffers bounds the pipeline depth per resource.
	MaxBuffers = 2

	// DefaultCapacity is the on-chip element budget used by ModeAuto to
	// decide whether the whole normalized matrix can be retained.
	DefaultCapacity = 1 << 20
)

// Mode selects the pass structure of a transform.
type Mode int

const (
	// ModeAuto picks ModeSingleSweep when rows*cols fits in Capacity and
	// ModeTwoSweep otherwise.
	ModeAuto Mode = iota

	// ModeTwoSweep reads the backing store once to accumulate column sums
	// and once more to apply the scale. Only tiles are ever resident.
	ModeTwoSweep

	// ModeSingleSweep reads the backing store once and retains the
	// normalized matrix on chip for the apply sweep.
	ModeSingleSweep
)

// ScaleMode selects how column scales are computed.
type ScaleMode int

const (
	// ScaleGlobal uses the mean of each column's normalized values over all
	// rows. This is the canonical transform.
	ScaleGlobal ScaleMode = iota

	// ScaleTileLocal uses the mean over the rows of the current tile only.
	// It is an approximation that needs no global barrier; it matches
	// ScaleGlobal exactly when the tile spans every row.
	ScaleTileLocal
)

// NormalizeMode selects how rows are divided by their denominator.
type NormalizeMode int

const (
	// NormalizeReciprocal computes 1/denom once per row and multiplies.
	NormalizeReciprocal NormalizeMode = iota

	// NormalizeDivide divides every element by denom.
	NormalizeDivide
)

// TileOrder selects the tile visitation order of every sweep.
type TileOrder int

const (
	// OrderRowMajor visits (ii, jj) with jj varying fastest.
	OrderRowMajor TileOrder = iota

	// OrderColumnMajor visits (ii, jj) with ii varying fastest.
	OrderColumnMajor
)

var (
	modeNames      = []string{"auto", "two-sweep", "single-sweep"}
	scaleNames     = []string{"global", "tile-local"}
	normalizeNames = []string{"reciprocal", "divide"}
	orderNames     = []string{"row-major", "column-major"}
)

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if s == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("tilenorm: unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}

func (m Mode) String() string          { return enumName(modeNames, int(m)) }
func (s ScaleMode) String() string     { return enumName(scaleNames, int(s)) }
func (n NormalizeMode) String() string { return enumName(normalizeNames, int(n)) }
func (o TileOrder) String() string     { return enumName(orderNames, int(o)) }

// ParseMode parses "auto", "two-sweep" or "single-sweep".
func ParseMode(s string) (Mode, error) {
	v, err := parseEnum("mode", modeNames, s)
	return Mode(v), err
}

// ParseScaleMode parses "global" or "tile-local".
func ParseScaleMode(s string) (ScaleMode, error) {
	v, err := parseEnum("scale mode", scaleNames, s)
	return ScaleMode(v), err
}

// ParseNormalizeMode parses "reciprocal" or "divide".
func ParseNormalizeMode(s string) (NormalizeMode, error) {
	v, err := parseEnum("normalize mode", normalizeNames, s)
	return NormalizeMode(v), err
}

// ParseOrder parses "row-major" or "column-major".
func ParseOrder(s string) (TileOrder, error) {
	v, err := parseEnum("tile order", orderNames, s)
	return TileOrder(v), err
}

// ModeNames, ScaleModeNames, NormalizeModeNames and OrderNames list the
// accepted spellings, for flag help.
func ModeNames() []string          { return append([]string(nil), modeNames...) }
func ScaleModeNames() []string     { return append([]string(nil), scaleNames...) }
func NormalizeModeNames() []string { return append([]string(nil), normalizeNames...) }
func OrderNames() []string         { return append([]string(nil), orderNames...) }

// Config holds the externally supplied parameters of a transform. The zero
// value is usable: tile shape, buffers and capacity fall back to defaults.
type Config struct {
	// TileRows and TileCols are the tile shape. Zero picks the largest
	// divisor of the matrix dimension not above DefaultTileRows/Cols.
	TileRows, TileCols int

	// Buffers is the number of tile slots (pipeline depth), 1 or 2.
	// Zero means DefaultBuffers.
	Buffers int

	Mode      Mode
	Scale     ScaleMode
	Normalize NormalizeMode
	Order     TileOrder

	// Capacity is the on-chip element budget. Zero means DefaultCapacity.
	Capacity int

	// Workers is the number of compute-stage workers. Values < 1 mean 1.
	// Additions to shared accumulators are partitioned per worker.
	Workers int

	// Pool runs the compute workers. When nil a pool is created for the
	// duration of the transform if Workers > 1.
	Pool *workerpool.Pool

	// CheckDenominators makes the transform fail with ErrDenominator when a
	// row sum plus bias is not positive, instead of letting Inf/NaN through.
	CheckDenominators bool
}

// Option mutates a Config.
type Option func(*Config)

// WithTile sets the tile shape.
func WithTile(rows, cols int) Option {
	return func(c *Config) { c.TileRows, c.TileCols = rows, cols }
}

// WithBuffers sets the pipeline depth (1 = no overlap, 2 = double buffering).
func WithBuffers(n int) Option {
	return func(c *Config) { c.Buffers = n }
}

// WithMode sets the pass structure.
func WithMode(m Mode) Option {
	return func(c *Config) { c.Mode = m }
}

// WithCapacity sets the on-chip element budget.
func WithCapacity(elements int) Option {
	return func(c *Config) { c.Capacity = elements }
}

// WithScale sets the column scale mode.
func WithScale(s ScaleMode) Option {
	return func(c *Config) { c.Scale = s }
}

// WithNormalize sets the row normalization kernel.
func WithNormalize(n NormalizeMode) Option {
	return func(c *Config) { c.Normalize = n }
}

// WithOrder sets the tile visitation order.
func WithOrder(o TileOrder) Option {
	return func(c *Config) { c.Order = o }
}

// WithWorkers sets the number of compute-stage workers.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// WithPool runs compute workers on a caller-owned pool.
func WithPool(p *workerpool.Pool) Option {
	return func(c *Config) { c.Pool = p }
}

// WithDenominatorCheck enables ErrDenominator reporting.
func WithDenominatorCheck() Option {
	return func(c *Config) { c.CheckDenominators = true }
}

// NewConfig applies opts to a zero Config.
func NewConfig(opts ...Option) Config {
	var c Config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// DefaultTile returns the largest divisor of n that is <= limit.
func DefaultTile(n, limit int) int {
	if n <= 0 || limit <= 0 {
		return 0
	}
	for t := min(n, limit); t > 1; t-- {
		if n%t == 0 {
			return t
		}
	}
	return 1
}
