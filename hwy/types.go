// Package hwy provides the portable vector API used by the tilenorm kernels.
//
// Kernels are written once against Vec[T] and run on every target. The lane
// count follows the SIMD register width detected at startup, so reductions
// are grouped the same way a vector unit would group them:
//
//	acc := hwy.Zero[float32]()
//	for i := 0; i+lanes <= len(row); i += lanes {
//	    acc = hwy.Add(acc, hwy.Load(row[i:]))
//	}
//	sum := hwy.ReduceSum(acc)
//
// Set HWY_NO_SIMD=1 to force the narrowest grouping.
package hwy

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// Vec is a portable vector handle.
//
// Vec instances should not be created directly; use Load, Set, or Zero instead.
type Vec[T Floats] struct {
	data []T
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Data returns the underlying lanes.
// This is primarily for testing and should not be used in performance-critical code.
func (v Vec[T]) Data() []T {
	return v.data
}
