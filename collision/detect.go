package collision

import (
	"math"

	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/gjk"
	"github.com/akmonengine/gravel/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// placed is a primitive at its current world transform. bounds are the swept
// world bounds used for triangle queries.
type placed struct {
	primitive shape.Primitive
	transform geom.Transform
	bounds    geom.AABox
}

// convexShape adapts a placed convex primitive to gjk.Shape.
type convexShape struct {
	convex    shape.Convex
	transform geom.Transform
}

func (c convexShape) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	return c.transform.Apply(c.convex.Support(c.transform.InverseRotate(direction)))
}

func (c convexShape) Centre() mgl64.Vec3 {
	return c.transform.Position
}

// triangleShape is a world triangle as a gjk.Shape.
type triangleShape [3]mgl64.Vec3

func (t triangleShape) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	best := 0
	bestDot := t[0].Dot(direction)
	for i := 1; i < 3; i++ {
		if d := t[i].Dot(direction); d > bestDot {
			best, bestDot = i, d
		}
	}
	return t[best]
}

func (t triangleShape) Centre() mgl64.Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Mul(1.0 / 3.0)
}

// detectFunc appends the contacts of a against b, normals pointing from a to b.
type detectFunc func(d *Detector, a, b *placed, out []ContactPoint) []ContactPoint

// detectors is filled for kind(a) <= kind(b) only; static kinds have no entry
// among themselves.
var detectors = [shape.NumKinds][shape.NumKinds]detectFunc{
	shape.KindSphere: {
		shape.KindSphere:       sphereSphere,
		shape.KindBox:          sphereBox,
		shape.KindCapsule:      sphereCapsule,
		shape.KindPlane:        spherePlane,
		shape.KindHeightmap:    convexTriangles,
		shape.KindTriangleMesh: convexTriangles,
	},
	shape.KindBox: {
		shape.KindBox:          boxBox,
		shape.KindCapsule:      boxCapsule,
		shape.KindPlane:        boxPlane,
		shape.KindHeightmap:    convexTriangles,
		shape.KindTriangleMesh: convexTriangles,
	},
	shape.KindCapsule: {
		shape.KindCapsule:      capsuleCapsule,
		shape.KindPlane:        capsulePlane,
		shape.KindHeightmap:    convexTriangles,
		shape.KindTriangleMesh: convexTriangles,
	},
}

// Supported reports whether a detector exists for the two kinds, in either order.
func Supported(a, b shape.Kind) bool {
	if a > b {
		a, b = b, a
	}
	return a < shape.NumKinds && b < shape.NumKinds && detectors[a][b] != nil
}

// Detector runs the narrow phase. It keeps scratch buffers between calls and
// must not be shared between goroutines.
type Detector struct {
	triangles []int
	clip      clipper
	polygon   []mgl64.Vec3
	simplex   gjk.Simplex
}

func NewDetector() *Detector {
	return &Detector{}
}

// Detect appends the contacts between primitive ia of skin a and primitive ib
// of skin b. Normals point from a to b.
func (d *Detector) Detect(a *Skin, ia int, b *Skin, ib int, out []ContactPoint) []ContactPoint {
	pa := placed{primitive: a.Primitive(ia), transform: a.PrimitiveWorld(ia), bounds: a.PrimitiveBounds(ia)}
	pb := placed{primitive: b.Primitive(ib), transform: b.PrimitiveWorld(ib), bounds: b.PrimitiveBounds(ib)}
	return d.detect(&pa, &pb, out)
}

// DetectPrimitives appends the contacts between two primitives placed at the
// given world transforms.
func (d *Detector) DetectPrimitives(a shape.Primitive, ta geom.Transform, b shape.Primitive, tb geom.Transform, out []ContactPoint) []ContactPoint {
	pa := placed{primitive: a, transform: ta, bounds: a.Bounds(ta)}
	pb := placed{primitive: b, transform: tb, bounds: b.Bounds(tb)}
	return d.detect(&pa, &pb, out)
}

func (d *Detector) detect(a, b *placed, out []ContactPoint) []ContactPoint {
	ka, kb := a.primitive.Kind(), b.primitive.Kind()
	if ka <= kb {
		if fn := detectors[ka][kb]; fn != nil {
			return fn(d, a, b, out)
		}
		return out
	}

	fn := detectors[kb][ka]
	if fn == nil {
		return out
	}
	n := len(out)
	out = fn(d, b, a, out)
	flipPoints(out[n:])
	return out
}

// releaseScratch drops the buffers.
func (d *Detector) releaseScratch() {
	d.triangles = nil
	d.clip = clipper{}
	d.polygon = nil
}

// sphereContact reports the contact between two spheres, also used for the
// closest points of capsule axes.
func sphereContact(out []ContactPoint, ca mgl64.Vec3, ra float64, cb mgl64.Vec3, rb float64) []ContactPoint {
	delta := cb.Sub(ca)
	r := ra + rb
	distSq := delta.LenSqr()
	if distSq > r*r {
		return out
	}

	dist := math.Sqrt(distSq)
	normal := geom.Up
	if dist > geom.Epsilon {
		normal = delta.Mul(1 / dist)
	}
	surfaceA := ca.Add(normal.Mul(ra))
	surfaceB := cb.Sub(normal.Mul(rb))
	return append(out, ContactPoint{
		Position: surfaceA.Add(surfaceB).Mul(0.5),
		Normal:   normal,
		Depth:    r - dist,
	})
}

// planeContact reports the contact of a sphere of the given radius (0 for a
// point) with the solid side of a plane. The normal points into the plane.
func planeContact(out []ContactPoint, centre mgl64.Vec3, radius float64, plane geom.Plane) []ContactPoint {
	dist := plane.SignedDistance(centre)
	if dist > radius {
		return out
	}
	return append(out, ContactPoint{
		Position: centre.Sub(plane.Normal.Mul((radius + dist) / 2)),
		Normal:   plane.Normal.Mul(-1),
		Depth:    radius - dist,
	})
}
