package collision

import (
	"math"

	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/shape"
	"github.com/go-gl/mathgl/mgl64"
)

func sphereSphere(_ *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	sa := a.primitive.(*shape.Sphere)
	sb := b.primitive.(*shape.Sphere)
	return sphereContact(out, a.transform.Position, sa.Radius, b.transform.Position, sb.Radius)
}

func sphereCapsule(_ *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	sphere := a.primitive.(*shape.Sphere)
	capsule := b.primitive.(*shape.Capsule)

	centre := a.transform.Position
	_, onAxis := geom.ClosestPointOnSegment(centre, capsule.Segment(b.transform))
	return sphereContact(out, centre, sphere.Radius, onAxis, capsule.Radius)
}

func spherePlane(_ *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	sphere := a.primitive.(*shape.Sphere)
	plane := b.primitive.(*shape.Plane)
	return planeContact(out, a.transform.Position, sphere.Radius, plane.World(b.transform))
}

func sphereBox(_ *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	sphere := a.primitive.(*shape.Sphere)
	box := b.primitive.(*shape.Box)
	return boxPointContact(out, a.transform.Position, sphere.Radius, b.transform, box.HalfExtents)
}

// boxPointContact reports the contact of a sphere against an oriented box,
// normal pointing from the sphere into the box.
func boxPointContact(out []ContactPoint, centre mgl64.Vec3, radius float64, t geom.Transform, half mgl64.Vec3) []ContactPoint {
	closest, inside := geom.ClosestPointOnBox(centre, t, half)
	if !inside {
		delta := closest.Sub(centre)
		distSq := delta.LenSqr()
		if distSq > radius*radius {
			return out
		}
		dist := math.Sqrt(distSq)
		normal := geom.SafeNormalize(delta)
		return append(out, ContactPoint{
			Position: closest.Add(centre.Add(normal.Mul(radius))).Mul(0.5),
			Normal:   normal,
			Depth:    radius - dist,
		})
	}

	// centre inside: push out through the nearest face
	local := t.ApplyInverse(centre)
	axis, sign := 0, 1.0
	best := math.Inf(1)
	for i := 0; i < 3; i++ {
		for _, s := range [2]float64{1, -1} {
			if gap := half[i] - s*local[i]; gap < best {
				best, axis, sign = gap, i, s
			}
		}
	}

	var faceNormal mgl64.Vec3
	faceNormal[axis] = sign
	faceNormal = t.Rotate(faceNormal)

	onFace := centre.Add(faceNormal.Mul(best))
	surface := centre.Sub(faceNormal.Mul(radius))
	return append(out, ContactPoint{
		Position: onFace.Add(surface).Mul(0.5),
		Normal:   faceNormal.Mul(-1),
		Depth:    radius + best,
	})
}
