package collision

import (
	"github.com/akmonengine/gravel/epa"
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/gjk"
	"github.com/akmonengine/gravel/mesh"
	"github.com/akmonengine/gravel/shape"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// contacts from adjacent triangles closer than this are merged
	mergeTolerance = 1e-4
	// a box corner projecting this close to a triangle counts as over it
	cornerTolerance = 1e-6
)

// convexTriangles tests a sphere, box or capsule against the triangles of a
// heightmap or a mesh. Triangles are one-sided: contacts pushing the primitive
// behind a triangle are dropped.
func convexTriangles(d *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	source := b.primitive.(shape.TriangleSource)
	local := a.bounds.Transformed(b.transform.Inverse())
	d.triangles = source.TrianglesInBox(local, d.triangles[:0])

	n0 := len(out)
	for _, id := range d.triangles {
		tri := source.Triangle(id)
		va, vb, vc := source.TriangleVertices(id)
		w := [3]mgl64.Vec3{b.transform.Apply(va), b.transform.Apply(vb), b.transform.Apply(vc)}
		normal := b.transform.Rotate(tri.Normal())

		switch p := a.primitive.(type) {
		case *shape.Sphere:
			out = sphereTriangle(out, a.transform.Position, p.Radius, w, normal, tri)
		case *shape.Capsule:
			out = capsuleTriangle(out, p.Segment(a.transform), p.Radius, w, normal, tri)
		case *shape.Box:
			out = d.boxTriangle(out, a.transform, p, w, normal, tri)
		}
	}

	merged := mergeDuplicates(out[n0:], mergeTolerance)
	return out[:n0+len(merged)]
}

// sphereTriangle reports the contact of a sphere with the front side of a
// triangle. Closest points on non-convex edges and vertices use the face
// normal: the neighbouring triangle owns that contact.
func sphereTriangle(out []ContactPoint, centre mgl64.Vec3, r float64, w [3]mgl64.Vec3, normal mgl64.Vec3, tri *mesh.IndexedTriangle) []ContactPoint {
	height := normal.Dot(centre.Sub(w[0]))
	if height < 0 || height > r {
		return out
	}

	q, feature := geom.ClosestPointOnTriangle(centre, w[0], w[1], w[2])
	delta := centre.Sub(q)
	distSq := delta.LenSqr()
	if distSq > r*r {
		return out
	}

	dist := delta.Len()
	if dist < geom.Epsilon || !tri.FeatureConvex(feature) {
		return append(out, ContactPoint{
			Position: centre.Sub(normal.Mul((r + height) / 2)),
			Normal:   normal.Mul(-1),
			Depth:    r - height,
		})
	}

	away := delta.Mul(1 / dist)
	return append(out, ContactPoint{
		Position: centre.Sub(away.Mul((r + dist) / 2)),
		Normal:   away.Mul(-1),
		Depth:    r - dist,
	})
}

// capsuleTriangle tests both end spheres, then the closest point of the axis
// when neither end touches.
func capsuleTriangle(out []ContactPoint, seg geom.Segment, r float64, w [3]mgl64.Vec3, normal mgl64.Vec3, tri *mesh.IndexedTriangle) []ContactPoint {
	n0 := len(out)
	out = sphereTriangle(out, seg.Origin, r, w, normal, tri)
	out = sphereTriangle(out, seg.End(), r, w, normal, tri)
	if len(out) > n0 {
		return out
	}

	t, _, _, _ := geom.ClosestSegmentTriangle(seg, w[0], w[1], w[2])
	return sphereTriangle(out, seg.Point(t), r, w, normal, tri)
}

// boxTriangle reports the box corners below the triangle, and falls back to
// GJK/EPA for edge and vertex contacts.
func (d *Detector) boxTriangle(out []ContactPoint, t geom.Transform, box *shape.Box, w [3]mgl64.Vec3, normal mgl64.Vec3, tri *mesh.IndexedTriangle) []ContactPoint {
	half := box.HalfExtents
	if !geom.TriangleOverlapsBox(t.ApplyInverse(w[0]), t.ApplyInverse(w[1]), t.ApplyInverse(w[2]), geom.BoxAround(mgl64.Vec3{}, half)) {
		return out
	}

	maxDepth := 2 * half.Len()
	n0 := len(out)
	for _, corner := range box.Corners() {
		c := t.Apply(corner)
		height := normal.Dot(c.Sub(w[0]))
		if height > 0 || -height > maxDepth {
			continue
		}
		onPlane := c.Sub(normal.Mul(height))
		q, _ := geom.ClosestPointOnTriangle(onPlane, w[0], w[1], w[2])
		if q.Sub(onPlane).LenSqr() > cornerTolerance*cornerTolerance {
			continue
		}
		out = append(out, ContactPoint{
			Position: c.Sub(normal.Mul(height / 2)),
			Normal:   normal.Mul(-1),
			Depth:    -height,
		})
	}
	if len(out) > n0 {
		reduced := reduceToMaxPoints(out[n0:])
		return out[:n0+len(reduced)]
	}

	a := convexShape{convex: box, transform: t}
	d.simplex.Reset()
	if !gjk.GJK(a, triangleShape(w), &d.simplex) {
		return out
	}
	res, err := epa.EPA(a, triangleShape(w), &d.simplex)
	if err != nil || res.Normal.Dot(normal) > 0 {
		return out
	}

	n := res.Normal
	if !tri.EdgeConvex[0] && !tri.EdgeConvex[1] && !tri.EdgeConvex[2] {
		n = normal.Mul(-1)
	}
	deepest := a.SupportWorld(n)
	return append(out, ContactPoint{
		Position: deepest.Sub(n.Mul(res.Depth / 2)),
		Normal:   n,
		Depth:    res.Depth,
	})
}
