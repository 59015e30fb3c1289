package shape

import (
	"math"

	"github.com/akmonengine/gravel/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Sphere represents a spherical collision shape centred on its local origin
type Sphere struct {
	Radius float64
}

func (s *Sphere) Kind() Kind {
	return KindSphere
}

// Bounds is not affected by rotation, only by position
func (s *Sphere) Bounds(t geom.Transform) geom.AABox {
	return geom.BoxAround(t.Position, mgl64.Vec3{s.Radius, s.Radius, s.Radius})
}

// Volume of sphere = (4/3) * π * r³
func (s *Sphere) Volume() float64 {
	return (4.0 / 3.0) * math.Pi * s.Radius * s.Radius * s.Radius
}

// Inertia is (2/5) * m * r² on every axis
func (s *Sphere) Inertia(mass float64) mgl64.Mat3 {
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius
	return geom.Diagonal(i, i, i)
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < geom.Epsilon {
		return mgl64.Vec3{0, s.Radius, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}
