package collision

import (
	"math"
	"slices"
	"sort"

	"github.com/akmonengine/gravel/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxManifoldPoints bounds the contacts reported for one primitive pair of
// flat features.
const MaxManifoldPoints = 4

const clipTolerance = 1e-6

// clipper owns the ping-pong buffers of Sutherland-Hodgman clipping.
type clipper struct {
	front, back []mgl64.Vec3
}

// clipIncidentAgainstReference clips the incident polygon against the side
// planes of the reference polygon, both in world space. The reference is
// convex and normal is its face normal.
func (c *clipper) clipIncidentAgainstReference(incident, reference []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec3 {
	c.front = append(c.front[:0], incident...)
	if len(reference) < 3 {
		return c.front
	}

	centre := computeCenter(reference)
	for i := 0; i < len(reference) && len(c.front) > 0; i++ {
		v1 := reference[i]
		v2 := reference[(i+1)%len(reference)]

		// side plane pointing toward the inside of the reference
		clipNormal := geom.SafeNormalize(v2.Sub(v1).Cross(normal))
		if centre.Sub(v1).Dot(clipNormal) < 0 {
			clipNormal = clipNormal.Mul(-1)
		}

		c.back = clipPolygonAgainstPlane(c.back[:0], c.front, v1, clipNormal)
		c.front, c.back = c.back, c.front
	}
	return c.front
}

// clipPolygonAgainstPlane appends to dst the part of polygon on the positive
// side of the plane.
func clipPolygonAgainstPlane(dst, polygon []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	for i := 0; i < len(polygon); i++ {
		current := polygon[i]
		next := polygon[(i+1)%len(polygon)]

		currentDist := current.Sub(planePoint).Dot(planeNormal)
		nextDist := next.Sub(planePoint).Dot(planeNormal)

		if currentDist >= -clipTolerance {
			dst = append(dst, current)
			if nextDist < -clipTolerance {
				dst = append(dst, lineIntersectPlane(current, next, planePoint, planeNormal))
			}
		} else if nextDist >= -clipTolerance {
			dst = append(dst, lineIntersectPlane(current, next, planePoint, planeNormal))
		}
	}
	return dst
}

// lineIntersectPlane returns the point where segment p1p2 crosses the plane.
func lineIntersectPlane(p1, p2, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	dir := p2.Sub(p1)
	dist := p1.Sub(planePoint).Dot(planeNormal)
	denom := dir.Dot(planeNormal)

	if math.Abs(denom) < 1e-10 {
		return p1
	}

	t := geom.Clamp(-dist/denom, 0, 1)
	return p1.Add(dir.Mul(t))
}

func computeCenter(points []mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{}
	}

	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points)))
}

// reduceToMaxPoints keeps at most MaxManifoldPoints contacts: the deepest one
// and the extremes along the contact tangents. The kept points stay in their
// original order.
func reduceToMaxPoints(points []ContactPoint) []ContactPoint {
	if len(points) <= MaxManifoldPoints {
		return points
	}

	tangent1, tangent2 := geom.TangentBasis(points[0].Normal)

	deepest, minX, maxX, minY := 0, 0, 0, 0
	minXval, maxXval := math.Inf(1), math.Inf(-1)
	minYval := math.Inf(1)
	for i, p := range points {
		if p.Depth > points[deepest].Depth {
			deepest = i
		}
		x := p.Position.Dot(tangent1)
		y := p.Position.Dot(tangent2)
		if x < minXval {
			minXval, minX = x, i
		}
		if x > maxXval {
			maxXval, maxX = x, i
		}
		if y < minYval {
			minYval, minY = y, i
		}
	}

	// the point furthest from the others along tangent2
	maxY, maxYval := 0, math.Inf(-1)
	for i, p := range points {
		if y := p.Position.Dot(tangent2); y > maxYval && i != minY {
			maxYval, maxY = y, i
		}
	}

	keep := make([]int, 0, MaxManifoldPoints)
	for _, idx := range [...]int{deepest, minX, maxX, minY, maxY} {
		if len(keep) < MaxManifoldPoints && !slices.Contains(keep, idx) {
			keep = append(keep, idx)
		}
	}
	sort.Ints(keep)

	// keep is increasing, so the copy never overwrites a point still needed
	for n, idx := range keep {
		points[n] = points[idx]
	}
	return points[:len(keep)]
}

// mergeDuplicates drops contacts sharing position and normal with an earlier,
// deeper one. Adjacent triangles report the same contact along shared
// features.
func mergeDuplicates(points []ContactPoint, tolerance float64) []ContactPoint {
	n := 0
	for _, p := range points {
		merged := false
		for j := 0; j < n; j++ {
			q := &points[j]
			if q.Position.Sub(p.Position).LenSqr() > tolerance*tolerance || q.Normal.Dot(p.Normal) < 0.999 {
				continue
			}
			if p.Depth > q.Depth {
				*q = p
			}
			merged = true
			break
		}
		if !merged {
			points[n] = p
			n++
		}
	}
	return points[:n]
}
