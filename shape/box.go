package shape

import (
	"math"

	"github.com/akmonengine/gravel/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Kind() Kind {
	return KindBox
}

func (b *Box) Bounds(t geom.Transform) geom.AABox {
	return geom.BoxAround(mgl64.Vec3{}, b.HalfExtents).Transformed(t)
}

// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
func (b *Box) Volume() float64 {
	return 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()
}

func (b *Box) Inertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (dimension1² + dimension2²)
	factor := mass / 12.0
	return geom.Diagonal(
		factor*(y*y+z*z),
		factor*(x*x+z*z),
		factor*(x*x+y*y),
	)
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// Corners returns the 8 local corners, bit i of the index selecting +HalfExtents on axis i.
func (b *Box) Corners() [8]mgl64.Vec3 {
	return geom.BoxAround(mgl64.Vec3{}, b.HalfExtents).Corners()
}

// Edges lists the corner index pairs of the 12 box edges.
var Edges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along x
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along z
}

// Face returns the outward normal and the 4 counter-clockwise vertices of the
// face most aligned with a local direction.
func (b *Box) Face(direction mgl64.Vec3) (mgl64.Vec3, [4]mgl64.Vec3) {
	axis := 0
	best := math.Abs(direction[0])
	for i := 1; i < 3; i++ {
		if a := math.Abs(direction[i]); a > best {
			best = a
			axis = i
		}
	}
	sign := 1.0
	if direction[axis] < 0 {
		sign = -1.0
	}
	return b.FaceOnAxis(axis, sign)
}

// FaceOnAxis returns the face whose normal is sign * local axis.
func (b *Box) FaceOnAxis(axis int, sign float64) (mgl64.Vec3, [4]mgl64.Vec3) {
	u := (axis + 1) % 3
	v := (axis + 2) % 3
	h := b.HalfExtents

	var normal mgl64.Vec3
	normal[axis] = sign

	corner := func(su, sv float64) mgl64.Vec3 {
		var p mgl64.Vec3
		p[axis] = sign * h[axis]
		p[u] = su * h[u]
		p[v] = sv * h[v]
		return p
	}

	// u x v == axis, so this order winds counter-clockwise around +axis
	face := [4]mgl64.Vec3{corner(-1, -1), corner(1, -1), corner(1, 1), corner(-1, 1)}
	if sign < 0 {
		face[1], face[3] = face[3], face[1]
	}
	return normal, face
}
