// Package geom holds the math primitives shared by every other package:
// vectors and rotations (mgl64), transforms, axis-aligned boxes and the
// closest-point routines used by the narrow phase.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// Infinity is the extent used for unbounded primitives (planes) so that box
// arithmetic stays finite.
const Infinity = 1e10

// Epsilon is the general purpose geometric tolerance.
const Epsilon = 1e-9

// Up is the fallback direction for degenerate normalisation.
var Up = mgl64.Vec3{0, 1, 0}

type number interface {
	constraints.Integer | constraints.Float
}

// Clamp restricts v to [lo, hi].
func Clamp[T number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min3 returns the smallest of three values.
func Min3[T number](a, b, c T) T {
	return min(a, b, c)
}

// Max3 returns the largest of three values.
func Max3[T number](a, b, c T) T {
	return max(a, b, c)
}

// SafeNormalize returns v/|v|, or Up when v is too short to normalise.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Up
	}
	return v.Mul(1.0 / l)
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// MinVec returns the component-wise minimum.
func MinVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

// MaxVec returns the component-wise maximum.
func MaxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

// AbsVec returns the component-wise absolute value.
func AbsVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}

// TangentBasis returns two unit vectors orthogonal to normal and to each other.
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}

// Skew returns the cross-product matrix of v, such that Skew(v)*w == v×w.
func Skew(v mgl64.Vec3) mgl64.Mat3 {
	// mgl64 matrices are column-major
	return mgl64.Mat3{
		0, v[2], -v[1],
		-v[2], 0, v[0],
		v[1], -v[0], 0,
	}
}

// Diagonal builds a diagonal matrix.
func Diagonal(x, y, z float64) mgl64.Mat3 {
	return mgl64.Mat3{
		x, 0, 0,
		0, y, 0,
		0, 0, z,
	}
}
