package shape

import (
	"math"

	"github.com/akmonengine/gravel/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// PlaneThickness is the depth of the solid half space kept in the plane bounds.
const PlaneThickness = 1.0

// Plane represents an infinite plane collision shape.
// Its surface is the set of local points p with Normal·p == Distance, the
// solid side lies below (against the normal). Normal must be normalized.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

func (p *Plane) Kind() Kind {
	return KindPlane
}

// World returns the plane equation in world space when placed at t.
func (p *Plane) World(t geom.Transform) geom.Plane {
	n := t.Rotate(p.Normal)
	return geom.Plane{Normal: n, D: p.Distance + n.Dot(t.Position)}
}

// Bounds spans geom.Infinity along every axis the normal is not aligned with,
// and a slab of PlaneThickness below the surface along the aligned one.
func (p *Plane) Bounds(t geom.Transform) geom.AABox {
	world := p.World(t)
	box := geom.AABox{
		Min: mgl64.Vec3{-geom.Infinity, -geom.Infinity, -geom.Infinity},
		Max: mgl64.Vec3{geom.Infinity, geom.Infinity, geom.Infinity},
	}

	// Find the dominant axis (the one aligned with the normal)
	const threshold = 1 - 1e-9
	for axis := 0; axis < 3; axis++ {
		n := world.Normal[axis]
		if math.Abs(n) < threshold {
			continue
		}
		surface := world.D / n
		if n > 0 {
			box.Min[axis] = surface - PlaneThickness
			box.Max[axis] = surface
		} else {
			box.Min[axis] = surface
			box.Max[axis] = surface + PlaneThickness
		}
	}
	return box
}

func (p *Plane) Volume() float64 {
	return 0
}

func (p *Plane) Inertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}
