package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Feature identifies which part of a triangle a closest point lies on.
// Edge i joins vertex i and vertex (i+1)%3.
type Feature uint8

const (
	FeatureFace Feature = iota
	FeatureEdge0
	FeatureEdge1
	FeatureEdge2
	FeatureVertex0
	FeatureVertex1
	FeatureVertex2
)

// IsEdge reports whether the feature is one of the three edges.
func (f Feature) IsEdge() bool {
	return f >= FeatureEdge0 && f <= FeatureEdge2
}

// IsVertex reports whether the feature is one of the three vertices.
func (f Feature) IsVertex() bool {
	return f >= FeatureVertex0 && f <= FeatureVertex2
}

// Index returns the edge or vertex index of the feature.
func (f Feature) Index() int {
	switch {
	case f.IsEdge():
		return int(f - FeatureEdge0)
	case f.IsVertex():
		return int(f - FeatureVertex0)
	}
	return -1
}

// Segment is the set of points Origin + t*Delta, t in [0, 1].
type Segment struct {
	Origin mgl64.Vec3
	Delta  mgl64.Vec3
}

// SegmentBetween returns the segment from a to b.
func SegmentBetween(a, b mgl64.Vec3) Segment {
	return Segment{Origin: a, Delta: b.Sub(a)}
}

// Point returns the point at parameter t.
func (s Segment) Point(t float64) mgl64.Vec3 {
	return s.Origin.Add(s.Delta.Mul(t))
}

// End returns Origin + Delta.
func (s Segment) End() mgl64.Vec3 {
	return s.Origin.Add(s.Delta)
}

// ClosestPointOnSegment returns the parameter and the point of s closest to p.
func ClosestPointOnSegment(p mgl64.Vec3, s Segment) (float64, mgl64.Vec3) {
	lenSq := s.Delta.LenSqr()
	if lenSq < Epsilon {
		return 0, s.Origin
	}
	t := Clamp(p.Sub(s.Origin).Dot(s.Delta)/lenSq, 0, 1)
	return t, s.Point(t)
}

// ClosestSegmentSegment returns the parameters of the closest points between
// two segments (Ericson, Real-Time Collision Detection 5.1.9).
func ClosestSegmentSegment(s0, s1 Segment) (float64, float64) {
	d1 := s0.Delta
	d2 := s1.Delta
	r := s0.Origin.Sub(s1.Origin)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	if a <= Epsilon && e <= Epsilon {
		return 0, 0
	}
	if a <= Epsilon {
		return 0, Clamp(f/e, 0, 1)
	}

	c := d1.Dot(r)
	if e <= Epsilon {
		return Clamp(-c/a, 0, 1), 0
	}

	b := d1.Dot(d2)
	denom := a*e - b*b

	// parallel segments pick s = 0 and let t follow
	var s float64
	if denom > Epsilon {
		s = Clamp((b*f-c*e)/denom, 0, 1)
	}

	t := (b*s + f) / e
	if t < 0 {
		t = 0
		s = Clamp(-c/a, 0, 1)
	} else if t > 1 {
		t = 1
		s = Clamp((b-c)/a, 0, 1)
	}
	return s, t
}

// ClosestPointOnTriangle returns the point of triangle abc closest to p and
// the feature it lies on (Ericson 5.1.5).
func ClosestPointOnTriangle(p, a, b, c mgl64.Vec3) (mgl64.Vec3, Feature) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, FeatureVertex0
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, FeatureVertex1
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), FeatureEdge0
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, FeatureVertex2
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), FeatureEdge2
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), FeatureEdge1
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), FeatureFace
}

// ClosestSegmentTriangle returns the segment parameter, the point on the
// triangle, the triangle feature and the squared distance between a segment
// and triangle abc.
func ClosestSegmentTriangle(s Segment, a, b, c mgl64.Vec3) (float64, mgl64.Vec3, Feature, float64) {
	// segment piercing the face
	n := b.Sub(a).Cross(c.Sub(a))
	denom := n.Dot(s.Delta)
	if math.Abs(denom) > Epsilon {
		t := n.Dot(a.Sub(s.Origin)) / denom
		if t >= 0 && t <= 1 {
			x := s.Point(t)
			if onTri, feature := ClosestPointOnTriangle(x, a, b, c); feature == FeatureFace && onTri.Sub(x).LenSqr() < Epsilon {
				return t, x, FeatureFace, 0
			}
		}
	}

	bestT := 0.0
	bestPoint, bestFeature := ClosestPointOnTriangle(s.Origin, a, b, c)
	bestDistSq := bestPoint.Sub(s.Origin).LenSqr()

	end := s.End()
	if p, f := ClosestPointOnTriangle(end, a, b, c); p.Sub(end).LenSqr() < bestDistSq {
		bestT, bestPoint, bestFeature, bestDistSq = 1, p, f, p.Sub(end).LenSqr()
	}

	vertices := [3]mgl64.Vec3{a, b, c}
	for i := 0; i < 3; i++ {
		edge := SegmentBetween(vertices[i], vertices[(i+1)%3])
		ts, te := ClosestSegmentSegment(s, edge)
		onSeg := s.Point(ts)
		onEdge := edge.Point(te)
		if d := onSeg.Sub(onEdge).LenSqr(); d < bestDistSq {
			feature := FeatureEdge0 + Feature(i)
			if te <= 0 {
				feature = FeatureVertex0 + Feature(i)
			} else if te >= 1 {
				feature = FeatureVertex0 + Feature((i+1)%3)
			}
			bestT, bestPoint, bestFeature, bestDistSq = ts, onEdge, feature, d
		}
	}

	return bestT, bestPoint, bestFeature, bestDistSq
}

// ClosestPointOnBox returns the point of an oriented box closest to p, and
// whether p was inside the box.
func ClosestPointOnBox(p mgl64.Vec3, t Transform, halfExtents mgl64.Vec3) (mgl64.Vec3, bool) {
	local := t.ApplyInverse(p)
	clamped := mgl64.Vec3{
		Clamp(local[0], -halfExtents[0], halfExtents[0]),
		Clamp(local[1], -halfExtents[1], halfExtents[1]),
		Clamp(local[2], -halfExtents[2], halfExtents[2]),
	}
	return t.Apply(clamped), clamped == local
}

// TriangleOverlapsBox tests triangle abc against an axis-aligned box using the
// 13 separating axes of Akenine-Möller's triangle/box test.
func TriangleOverlapsBox(a, b, c mgl64.Vec3, box AABox) bool {
	centre := box.Centre()
	half := box.HalfSize()

	v0 := a.Sub(centre)
	v1 := b.Sub(centre)
	v2 := c.Sub(centre)

	// box face normals
	for axis := 0; axis < 3; axis++ {
		lo := Min3(v0[axis], v1[axis], v2[axis])
		hi := Max3(v0[axis], v1[axis], v2[axis])
		if lo > half[axis] || hi < -half[axis] {
			return false
		}
	}

	edges := [3]mgl64.Vec3{v1.Sub(v0), v2.Sub(v1), v0.Sub(v2)}

	// triangle normal
	normal := edges[0].Cross(edges[1])
	if normal.LenSqr() > Epsilon*Epsilon && !overlapOnAxis(normal, v0, v1, v2, half) {
		return false
	}

	// edge cross products
	units := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for _, u := range units {
		for _, e := range edges {
			axis := u.Cross(e)
			if axis.LenSqr() < Epsilon*Epsilon {
				continue
			}
			if !overlapOnAxis(axis, v0, v1, v2, half) {
				return false
			}
		}
	}

	return true
}

func overlapOnAxis(axis, v0, v1, v2, half mgl64.Vec3) bool {
	p0 := v0.Dot(axis)
	p1 := v1.Dot(axis)
	p2 := v2.Dot(axis)
	r := half[0]*math.Abs(axis[0]) + half[1]*math.Abs(axis[1]) + half[2]*math.Abs(axis[2])
	return !(Min3(p0, p1, p2) > r || Max3(p0, p1, p2) < -r)
}

// Plane is the set of points p with Normal·p == D.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// PlaneFromPoints returns the plane through abc with a counter-clockwise normal.
func PlaneFromPoints(a, b, c mgl64.Vec3) Plane {
	n := SafeNormalize(b.Sub(a).Cross(c.Sub(a)))
	return Plane{Normal: n, D: n.Dot(a)}
}

// SignedDistance returns the distance of p above the plane.
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) - p.D
}
