package collision

import (
	"math"
	"slices"

	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/shape"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// edge axes must beat the best face axis by this factor, faces give
	// steadier manifolds
	edgeAxisRelativeTolerance = 0.95
	edgeAxisAbsoluteTolerance = 1e-3

	parallelAxisEpsilon = 1e-6

	// face axes of the two boxes closer than this (relative to the depth,
	// absolute below 1) count as tied
	faceAxisTieTolerance = 1e-6
)

// SATResult is the outcome of the box/box separating axis test.
type SATResult struct {
	Separated bool
	// Axis is the unit axis of minimum penetration, pointing from A to B.
	Axis  mgl64.Vec3
	Depth float64
	// AxisIndex is 0-2 for the face axes of A, 3-5 for the face axes of B and
	// 6+3i+j for the edge axis A_i × B_j.
	AxisIndex int
}

// IsEdge reports whether the minimum axis is an edge/edge axis.
func (r SATResult) IsEdge() bool {
	return r.AxisIndex >= 6
}

// BoxBoxSAT tests two oriented boxes over their 15 candidate separating axes.
// The outcome does not depend on the argument order: face axes of the two
// boxes within faceAxisTieTolerance of each other, and exactly tied edge
// axes, are settled by a fixed ordering of the boxes.
func BoxBoxSAT(ta geom.Transform, halfA mgl64.Vec3, tb geom.Transform, halfB mgl64.Vec3) SATResult {
	var axesA, axesB [3]mgl64.Vec3
	for i := 0; i < 3; i++ {
		axesA[i] = ta.Axis(i)
		axesB[i] = tb.Axis(i)
	}
	between := tb.Position.Sub(ta.Position)

	// overlap returns the penetration along axis and the centre distance
	overlap := func(axis mgl64.Vec3) (float64, float64) {
		var ra, rb float64
		for i := 0; i < 3; i++ {
			ra += halfA[i] * math.Abs(axesA[i].Dot(axis))
			rb += halfB[i] * math.Abs(axesB[i].Dot(axis))
		}
		dist := between.Dot(axis)
		return ra + rb - math.Abs(dist), dist
	}
	candidate := func(axis mgl64.Vec3, dist, depth float64, index int) SATResult {
		if dist < 0 {
			axis = axis.Mul(-1)
		}
		return SATResult{Axis: axis, Depth: depth, AxisIndex: index}
	}

	faceA := SATResult{Depth: math.Inf(1), AxisIndex: -1}
	faceB := faceA
	for i := 0; i < 3; i++ {
		depth, dist := overlap(axesA[i])
		if depth < 0 {
			return SATResult{Separated: true, AxisIndex: i}
		}
		if depth < faceA.Depth {
			faceA = candidate(axesA[i], dist, depth, i)
		}
	}
	for i := 0; i < 3; i++ {
		depth, dist := overlap(axesB[i])
		if depth < 0 {
			return SATResult{Separated: true, AxisIndex: 3 + i}
		}
		if depth < faceB.Depth {
			faceB = candidate(axesB[i], dist, depth, 3+i)
		}
	}

	aFirst := compareBoxes(ta, halfA, tb, halfB) <= 0
	face := faceB
	tolerance := faceAxisTieTolerance * math.Max(1, math.Max(faceA.Depth, faceB.Depth))
	switch {
	case faceA.Depth < faceB.Depth-tolerance:
		face = faceA
	case faceB.Depth < faceA.Depth-tolerance:
	case aFirst:
		face = faceA
	}

	edge := SATResult{Depth: math.Inf(1), AxisIndex: -1}
	for outer := 0; outer < 3; outer++ {
		for inner := 0; inner < 3; inner++ {
			i, j := outer, inner
			if !aFirst {
				i, j = inner, outer
			}
			axis := axesA[i].Cross(axesB[j])
			length := axis.Len()
			if length < parallelAxisEpsilon {
				// parallel edges, covered by the face axes
				continue
			}
			axis = axis.Mul(1 / length)
			depth, dist := overlap(axis)
			if depth < 0 {
				return SATResult{Separated: true, AxisIndex: 6 + 3*i + j}
			}
			if depth < edge.Depth {
				edge = candidate(axis, dist, depth, 6+3*i+j)
			}
		}
	}

	if edge.Depth < edgeAxisRelativeTolerance*face.Depth-edgeAxisAbsoluteTolerance {
		return edge
	}
	return face
}

// compareBoxes orders two boxes by position, then rotation, then size.
func compareBoxes(ta geom.Transform, halfA mgl64.Vec3, tb geom.Transform, halfB mgl64.Vec3) int {
	key := func(t geom.Transform, half mgl64.Vec3) [10]float64 {
		return [10]float64{
			t.Position[0], t.Position[1], t.Position[2],
			t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2],
			half[0], half[1], half[2],
		}
	}
	ka, kb := key(ta, halfA), key(tb, halfB)
	return slices.Compare(ka[:], kb[:])
}

func boxBox(d *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	boxA := a.primitive.(*shape.Box)
	boxB := b.primitive.(*shape.Box)

	sat := BoxBoxSAT(a.transform, boxA.HalfExtents, b.transform, boxB.HalfExtents)
	if sat.Separated {
		return out
	}

	n := sat.Axis
	switch {
	case sat.AxisIndex < 3:
		return d.boxFaceContacts(out, a.transform, boxA, b.transform, boxB, n, n, sat.Depth)
	case sat.AxisIndex < 6:
		return d.boxFaceContacts(out, b.transform, boxB, a.transform, boxA, n.Mul(-1), n, sat.Depth)
	}

	i := (sat.AxisIndex - 6) / 3
	j := (sat.AxisIndex - 6) % 3
	edgeA := supportEdge(a.transform, boxA.HalfExtents, i, n)
	edgeB := supportEdge(b.transform, boxB.HalfExtents, j, n.Mul(-1))
	s, t := geom.ClosestSegmentSegment(edgeA, edgeB)
	return append(out, ContactPoint{
		Position: edgeA.Point(s).Add(edgeB.Point(t)).Mul(0.5),
		Normal:   n,
		Depth:    sat.Depth,
	})
}

// supportEdge returns the box edge parallel to local axis furthest along direction.
func supportEdge(t geom.Transform, half mgl64.Vec3, axis int, direction mgl64.Vec3) geom.Segment {
	centre := t.Position
	for k := 0; k < 3; k++ {
		if k == axis {
			continue
		}
		world := t.Axis(k)
		if world.Dot(direction) < 0 {
			centre = centre.Sub(world.Mul(half[k]))
		} else {
			centre = centre.Add(world.Mul(half[k]))
		}
	}
	along := t.Axis(axis).Mul(half[axis])
	return geom.SegmentBetween(centre.Sub(along), centre.Add(along))
}

// boxFaceContacts clips the incident box face against the reference face
// whose outward normal is refNormal. normal is the reported A to B normal.
func (d *Detector) boxFaceContacts(out []ContactPoint, refT geom.Transform, ref *shape.Box, incT geom.Transform, inc *shape.Box,
	refNormal, normal mgl64.Vec3, depth float64) []ContactPoint {
	_, refFace := ref.Face(refT.InverseRotate(refNormal))
	_, incFace := inc.Face(incT.InverseRotate(refNormal.Mul(-1)))

	d.polygon = d.polygon[:0]
	for _, p := range refFace {
		d.polygon = append(d.polygon, refT.Apply(p))
	}
	var incident [4]mgl64.Vec3
	for i, p := range incFace {
		incident[i] = incT.Apply(p)
	}

	clipped := d.clip.clipIncidentAgainstReference(incident[:], d.polygon, refNormal)
	offset := refNormal.Dot(d.polygon[0])

	n0 := len(out)
	for _, p := range clipped {
		sep := refNormal.Dot(p) - offset
		if sep > clipTolerance {
			continue
		}
		out = append(out, ContactPoint{
			Position: p.Sub(refNormal.Mul(sep / 2)),
			Normal:   normal,
			Depth:    math.Max(0, -sep),
		})
	}

	if len(out) == n0 {
		// grazing contact: use the deepest incident vertex
		deepest := incT.Apply(inc.Support(incT.InverseRotate(refNormal.Mul(-1))))
		return append(out, ContactPoint{
			Position: deepest.Add(refNormal.Mul(depth / 2)),
			Normal:   normal,
			Depth:    depth,
		})
	}

	reduced := reduceToMaxPoints(out[n0:])
	return out[:n0+len(reduced)]
}

func boxPlane(_ *Detector, a, b *placed, out []ContactPoint) []ContactPoint {
	box := a.primitive.(*shape.Box)
	plane := b.primitive.(*shape.Plane).World(b.transform)

	n0 := len(out)
	for _, corner := range box.Corners() {
		out = planeContact(out, a.transform.Apply(corner), 0, plane)
	}
	reduced := reduceToMaxPoints(out[n0:])
	return out[:n0+len(reduced)]
}
