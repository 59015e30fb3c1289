// Package epa implements the Expanding Polytope Algorithm for computing
// penetration depth.
//
// EPA is run after GJK detects an overlap. It expands a polytope, starting from
// GJK's final simplex, toward the origin in the Minkowski difference space; the
// face closest to the origin gives the minimum translation vector separating
// the shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/gravel/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPAMaxIterations limits polytope expansion.
	EPAMaxIterations = 32

	// EPAConvergenceTolerance: expansion stops once a new support point
	// improves the closest face distance by less than this.
	EPAConvergenceTolerance = 0.001

	// NormalSnapThreshold clamps nearly-zero normal components to exactly zero.
	NormalSnapThreshold = 1e-8

	// DegeneratePenetrationEstimate is the depth reported when the simplex is
	// too small to build a polytope.
	DegeneratePenetrationEstimate = 0.01
)

// ErrNoConvergence is returned when the polytope did not converge within
// EPAMaxIterations.
var ErrNoConvergence = errors.New("epa: no convergence")

// Result is the minimum translation of B out of A.
type Result struct {
	// Normal points from A toward B.
	Normal mgl64.Vec3
	Depth  float64
}

// EPA computes the penetration normal and depth of two overlapping convex
// shapes from the simplex left by gjk.GJK.
func EPA(a, b gjk.Shape, simplex *gjk.Simplex) (Result, error) {
	if simplex.Count < 4 {
		return handleDegenerateSimplex(a, b, simplex), nil
	}

	p := polytopePool.Get().(*polytope)
	defer polytopePool.Put(p)
	if err := p.init(simplex); err != nil {
		return handleDegenerateSimplex(a, b, simplex), nil
	}

	for i := 0; i < EPAMaxIterations; i++ {
		closest := p.closest()
		if closest < 0 {
			break
		}
		best := p.faces[closest].result()
		normal := p.faces[closest].normal

		support := gjk.MinkowskiSupport(a, b, normal)
		if support.Dot(normal)-best.Depth < EPAConvergenceTolerance {
			return best, nil
		}
		if err := p.expand(support, closest); err != nil {
			// best estimate so far
			return best, nil
		}
	}

	return Result{}, fmt.Errorf("%w after %d iterations", ErrNoConvergence, EPAMaxIterations)
}

// handleDegenerateSimplex estimates the result when GJK stopped before building
// a tetrahedron, which happens for touching shapes.
func handleDegenerateSimplex(a, b gjk.Shape, simplex *gjk.Simplex) Result {
	if simplex.Count >= 2 {
		p := simplex.Points[0]
		q := simplex.Points[1]

		closest := p
		if q.LenSqr() < p.LenSqr() {
			closest = q
		}
		depth := closest.Len()
		if depth > NormalSnapThreshold {
			return Result{Normal: closest.Mul(1 / depth), Depth: depth}
		}
	}

	normal := b.Centre().Sub(a.Centre())
	if length := normal.Len(); length < NormalSnapThreshold {
		normal = mgl64.Vec3{0, 1, 0}
	} else {
		normal = normal.Mul(1.0 / length)
	}

	return Result{Normal: normal, Depth: DegeneratePenetrationEstimate}
}

// snapNormalToAxis clamps nearly-zero components of a normal to exactly zero
// and renormalizes, so axis-aligned contacts do not jitter tangentially.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	const threshold = NormalSnapThreshold

	clamped := normal
	for i := 0; i < 3; i++ {
		if math.Abs(clamped[i]) < threshold {
			clamped[i] = 0
		}
	}

	length := math.Sqrt(clamped.Dot(clamped))
	if length <= 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return clamped.Mul(1.0 / length)
}
