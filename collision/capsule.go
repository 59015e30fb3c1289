package collision

import (
	"math"

	"github.com/akmonengine/gravel/epa"
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/gjk"
	"github.com/akmonengine/gravel/shape"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// capsules whose axes are closer than this to parallel get two contacts
	parallelCosine = 0.998
	// a capsule axis closer than this to a box face plane lies flat on it
	flatSine = 0.1
	// the segment is considered inside the box below this distance
	deepDistance = 1e-6

	segmentSearchIterations = 48
)

func capsuleCapsule(_ *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	capA := a.primitive.(*shape.Capsule)
	capB := b.primitive.(*shape.Capsule)
	segA := capA.Segment(a.transform)
	segB := capB.Segment(b.transform)

	lenA := segA.Delta.LenSqr()
	lenB := segB.Delta.LenSqr()
	if lenA > geom.Epsilon && lenB > geom.Epsilon {
		cos := math.Abs(segA.Delta.Dot(segB.Delta)) / math.Sqrt(lenA*lenB)
		if cos > parallelCosine {
			// overlap of B's projection on A
			t0 := segB.Origin.Sub(segA.Origin).Dot(segA.Delta) / lenA
			t1 := segB.End().Sub(segA.Origin).Dot(segA.Delta) / lenA
			lo := math.Max(0, math.Min(t0, t1))
			hi := math.Min(1, math.Max(t0, t1))
			if hi-lo > 1e-3 {
				for _, t := range [2]float64{lo, hi} {
					p := segA.Point(t)
					_, q := geom.ClosestPointOnSegment(p, segB)
					out = sphereContact(out, p, capA.Radius, q, capB.Radius)
				}
				return out
			}
		}
	}

	s, t := geom.ClosestSegmentSegment(segA, segB)
	return sphereContact(out, segA.Point(s), capA.Radius, segB.Point(t), capB.Radius)
}

func capsulePlane(_ *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	capsule := a.primitive.(*shape.Capsule)
	plane := b.primitive.(*shape.Plane).World(b.transform)
	seg := capsule.Segment(a.transform)

	out = planeContact(out, seg.Origin, capsule.Radius, plane)
	return planeContact(out, seg.End(), capsule.Radius, plane)
}

func boxCapsule(d *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	n := len(out)
	out = d.capsuleBox(out, b, a)
	flipPoints(out[n:])
	return out
}

// closestSegmentBox returns the parameter of the segment point closest to an
// oriented box, and the distance. The distance to a convex set is convex
// along the segment, so a ternary search finds the minimum.
func closestSegmentBox(seg geom.Segment, t geom.Transform, half mgl64.Vec3) (float64, float64) {
	distSq := func(s float64) float64 {
		p := seg.Point(s)
		q, _ := geom.ClosestPointOnBox(p, t, half)
		return q.Sub(p).LenSqr()
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < segmentSearchIterations; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if distSq(m1) <= distSq(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}

	best := (lo + hi) / 2
	bestDist := distSq(best)
	// the ends are exact candidates the search only approaches
	for _, s := range [2]float64{0, 1} {
		if d := distSq(s); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, math.Sqrt(bestDist)
}

// capsuleBox reports contacts with normals pointing from the capsule c to the box bx.
func (d *Detector) capsuleBox(out []ContactPoint, c, bx *placed) []ContactPoint {
	capsule := c.primitive.(*shape.Capsule)
	box := bx.primitive.(*shape.Box)
	seg := capsule.Segment(c.transform)
	r := capsule.Radius

	t, dist := closestSegmentBox(seg, bx.transform, box.HalfExtents)
	if dist > r {
		return out
	}

	if dist > deepDistance {
		p := seg.Point(t)
		q, _ := geom.ClosestPointOnBox(p, bx.transform, box.HalfExtents)
		normal := q.Sub(p).Mul(1 / dist)

		n0 := len(out)
		out = capsuleOnFace(out, seg, r, bx.transform, box.HalfExtents, normal)
		if len(out)-n0 == 2 {
			return out
		}
		out = out[:n0]

		return append(out, ContactPoint{
			Position: p.Add(normal.Mul(r)).Add(q).Mul(0.5),
			Normal:   normal,
			Depth:    r - dist,
		})
	}

	// the axis enters the box
	a := convexShape{convex: capsule, transform: c.transform}
	b := convexShape{convex: box, transform: bx.transform}
	d.simplex.Reset()
	if gjk.GJK(a, b, &d.simplex) && d.simplex.Count == 4 {
		if res, err := epa.EPA(a, b, &d.simplex); err == nil {
			deepest := a.SupportWorld(res.Normal)
			return append(out, ContactPoint{
				Position: deepest.Sub(res.Normal.Mul(res.Depth / 2)),
				Normal:   res.Normal,
				Depth:    res.Depth,
			})
		}
	}
	return boxPointContact(out, seg.Point(t), r, bx.transform, box.HalfExtents)
}

// capsuleOnFace emits the two ends of the capsule axis clipped to the box
// face it lies flat on. normal points from the capsule to the box.
func capsuleOnFace(out []ContactPoint, seg geom.Segment, r float64, t geom.Transform, half, normal mgl64.Vec3) []ContactPoint {
	local := t.InverseRotate(normal.Mul(-1))
	axis := 0
	for k := 1; k < 3; k++ {
		if math.Abs(local[k]) > math.Abs(local[axis]) {
			axis = k
		}
	}
	sign := 1.0
	if local[axis] < 0 {
		sign = -1
	}
	var face mgl64.Vec3
	face[axis] = sign
	face = t.Rotate(face)

	length := seg.Delta.Len()
	// the closest point must lie inside the face, not on an edge
	if length < geom.Epsilon || face.Dot(normal) > -0.99 {
		return out
	}
	if math.Abs(seg.Delta.Dot(face))/length > flatSine {
		return out
	}

	p0 := t.ApplyInverse(seg.Origin)
	delta := t.InverseRotate(seg.Delta)
	lo, hi := 0.0, 1.0
	for k := 0; k < 3; k++ {
		if k == axis {
			continue
		}
		if math.Abs(delta[k]) < geom.Epsilon {
			if math.Abs(p0[k]) > half[k] {
				return out
			}
			continue
		}
		t0 := (-half[k] - p0[k]) / delta[k]
		t1 := (half[k] - p0[k]) / delta[k]
		lo = math.Max(lo, math.Min(t0, t1))
		hi = math.Min(hi, math.Max(t0, t1))
	}
	if hi-lo < 1e-3 {
		return out
	}

	for _, s := range [2]float64{lo, hi} {
		p := p0.Add(delta.Mul(s))
		height := sign*p[axis] - half[axis]
		if height > r || height < 0 {
			continue
		}
		world := t.Apply(p)
		out = append(out, ContactPoint{
			Position: world.Sub(face.Mul((r + height) / 2)),
			Normal:   face.Mul(-1),
			Depth:    r - height,
		})
	}
	return out
}
