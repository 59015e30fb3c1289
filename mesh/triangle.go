// Package mesh stores static triangle geometry and indexes it with an octree
// for box queries from the narrow phase.
package mesh

import (
	"errors"
	"fmt"

	"github.com/akmonengine/gravel/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidTriangle is returned for a triangle referencing a vertex out of
// range or using the same vertex twice.
var ErrInvalidTriangle = errors.New("mesh: invalid triangle")

// convexityTolerance is the height, relative to the shared edge length, below
// which a neighbour is considered coplanar.
const convexityTolerance = 1e-4

// IndexedTriangle references three vertices of its mesh and caches the data
// the narrow phase needs.
// Edge i joins Vertices[i] and Vertices[(i+1)%3].
type IndexedTriangle struct {
	Vertices     [3]int
	Plane        geom.Plane
	Bounds       geom.AABox
	EdgeConvex   [3]bool
	VertexConvex [3]bool

	// query epoch of the last visit, owned by the octree
	lastVisited uint32
}

// Normal returns the face normal.
func (t *IndexedTriangle) Normal() mgl64.Vec3 {
	return t.Plane.Normal
}

// FeatureConvex reports whether contacts may use the normal of the given feature.
// Faces are always convex.
func (t *IndexedTriangle) FeatureConvex(f geom.Feature) bool {
	switch {
	case f.IsEdge():
		return t.EdgeConvex[f.Index()]
	case f.IsVertex():
		return t.VertexConvex[f.Index()]
	}
	return true
}

func newIndexedTriangle(vertices []mgl64.Vec3, indices [3]int) IndexedTriangle {
	a, b, c := vertices[indices[0]], vertices[indices[1]], vertices[indices[2]]
	return IndexedTriangle{
		Vertices:     indices,
		Plane:        geom.PlaneFromPoints(a, b, c),
		Bounds:       geom.EmptyBox().AddPoint(a).AddPoint(b).AddPoint(c),
		EdgeConvex:   [3]bool{true, true, true},
		VertexConvex: [3]bool{true, true, true},
	}
}

func validTriangle(indices [3]int, numVertices int) bool {
	for _, i := range indices {
		if i < 0 || i >= numVertices {
			return false
		}
	}
	return indices[0] != indices[1] && indices[1] != indices[2] && indices[0] != indices[2]
}

func degenerate(vertices []mgl64.Vec3, indices [3]int) bool {
	a, b, c := vertices[indices[0]], vertices[indices[1]], vertices[indices[2]]
	return b.Sub(a).Cross(c.Sub(a)).LenSqr() < geom.Epsilon*geom.Epsilon
}

type edgeKey struct {
	lo, hi int
}

func makeEdgeKey(a, b int) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

type edgeRef struct {
	triangle int
	edge     int
}

// updateConvexity recomputes the edge and vertex flags of every triangle.
// An edge is convex on the mesh boundary, or when the neighbour across it
// bends away below the triangle's plane. Coplanar and concave edges are not.
func updateConvexity(vertices []mgl64.Vec3, triangles []IndexedTriangle) {
	edges := make(map[edgeKey][]edgeRef, len(triangles)*3/2)
	for id := range triangles {
		v := triangles[id].Vertices
		for e := 0; e < 3; e++ {
			key := makeEdgeKey(v[e], v[(e+1)%3])
			edges[key] = append(edges[key], edgeRef{triangle: id, edge: e})
		}
	}

	for id := range triangles {
		t := &triangles[id]
		for e := 0; e < 3; e++ {
			a, b := t.Vertices[e], t.Vertices[(e+1)%3]
			refs := edges[makeEdgeKey(a, b)]
			if len(refs) != 2 {
				// boundary or non-manifold
				t.EdgeConvex[e] = true
				continue
			}

			other := refs[0]
			if other.triangle == id {
				other = refs[1]
			}
			opposite := triangles[other.triangle].Vertices[(other.edge+2)%3]

			height := t.Plane.SignedDistance(vertices[opposite])
			tol := convexityTolerance * vertices[a].Sub(vertices[b]).Len()
			t.EdgeConvex[e] = height < -tol
		}

		for v := 0; v < 3; v++ {
			t.VertexConvex[v] = t.EdgeConvex[v] || t.EdgeConvex[(v+2)%3]
		}
	}
}

// NewTriangles validates indices and builds triangles with their planes,
// bounds and convexity flags, for meshes that are not held in an Octree.
// Zero-area triangles keep their slot so that ids follow the input order.
func NewTriangles(vertices []mgl64.Vec3, indices [][3]int) ([]IndexedTriangle, error) {
	triangles := make([]IndexedTriangle, 0, len(indices))
	for i, t := range indices {
		if !validTriangle(t, len(vertices)) {
			return nil, fmt.Errorf("%w: triangle %d indices %v with %d vertices", ErrInvalidTriangle, i, t, len(vertices))
		}
		triangles = append(triangles, newIndexedTriangle(vertices, t))
	}
	updateConvexity(vertices, triangles)
	return triangles, nil
}
