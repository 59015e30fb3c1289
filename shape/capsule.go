package shape

import (
	"math"

	"github.com/akmonengine/gravel/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is a segment along local +Z from -Length/2 to +Length/2 swept by a sphere.
type Capsule struct {
	Radius float64
	Length float64
}

func (c *Capsule) Kind() Kind {
	return KindCapsule
}

// Segment returns the world axis segment of the capsule placed at t.
func (c *Capsule) Segment(t geom.Transform) geom.Segment {
	half := t.Rotate(mgl64.Vec3{0, 0, c.Length / 2})
	return geom.Segment{
		Origin: t.Position.Sub(half),
		Delta:  half.Mul(2),
	}
}

func (c *Capsule) Bounds(t geom.Transform) geom.AABox {
	seg := c.Segment(t)
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}
	return geom.BoxAround(seg.Origin, r).AddBox(geom.BoxAround(seg.End(), r))
}

func (c *Capsule) Volume() float64 {
	r2 := c.Radius * c.Radius
	return math.Pi*r2*c.Length + (4.0/3.0)*math.Pi*r2*c.Radius
}

// Inertia combines the cylinder and the two hemispheres shifted along Z.
func (c *Capsule) Inertia(mass float64) mgl64.Mat3 {
	volume := c.Volume()
	if volume <= 0 {
		return mgl64.Mat3{}
	}
	r, l := c.Radius, c.Length
	r2 := r * r

	cylinder := mass * math.Pi * r2 * l / volume
	spheres := mass - cylinder

	axial := cylinder*r2/2 + spheres*2*r2/5
	transverse := cylinder*(l*l/12+r2/4) + spheres*(2*r2/5+l*l/4+3*l*r/8)

	return geom.Diagonal(transverse, transverse, axial)
}

func (c *Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	end := mgl64.Vec3{0, 0, c.Length / 2}
	if direction.Z() < 0 {
		end = end.Mul(-1)
	}
	if direction.LenSqr() < geom.Epsilon {
		return end
	}
	return end.Add(direction.Normalize().Mul(c.Radius))
}
