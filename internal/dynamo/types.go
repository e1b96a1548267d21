package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a planar vector. The engine is strictly two-dimensional.
type Vec = r2.Vec

// Finite reports whether both components are finite.
func Finite(v Vec) bool {
	return finite(v.X) && finite(v.Y)
}

// Sanitize returns v with NaN or Inf components replaced by zero.
func Sanitize(v Vec) Vec {
	if !finite(v.X) {
		v.X = 0
	}
	if !finite(v.Y) {
		v.Y = 0
	}
	return v
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ClampNorm rescales v so that its magnitude does not exceed limit.
// A non-positive limit disables the clamp.
func ClampNorm(v Vec, limit float64) Vec {
	if limit <= 0 {
		return v
	}
	n := r2.Norm(v)
	if n <= limit {
		return v
	}
	return r2.Scale(limit/n, v)
}

// Perp returns v rotated by +90 degrees.
func Perp(v Vec) Vec {
	return Vec{X: -v.Y, Y: v.X}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
