package shape

import (
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// TriangleMesh is a static triangle soup indexed by an octree.
type TriangleMesh struct {
	octree *mesh.Octree
}

// NewTriangleMesh builds the octree of the given mesh.
func NewTriangleMesh(vertices []mgl64.Vec3, triangles [][3]int, maxTrianglesPerCell int, minCellSize float64) (*TriangleMesh, error) {
	o := mesh.NewOctree()
	if err := o.AddTriangles(vertices, triangles); err != nil {
		return nil, err
	}
	o.BuildOctree(maxTrianglesPerCell, minCellSize)
	return &TriangleMesh{octree: o}, nil
}

// TriangleMeshFromOctree wraps an octree that is already built.
func TriangleMeshFromOctree(o *mesh.Octree) *TriangleMesh {
	return &TriangleMesh{octree: o}
}

func (m *TriangleMesh) Octree() *mesh.Octree {
	return m.octree
}

func (m *TriangleMesh) Kind() Kind {
	return KindTriangleMesh
}

func (m *TriangleMesh) Bounds(t geom.Transform) geom.AABox {
	if m.octree.NumTriangles() == 0 {
		return geom.BoxAround(t.Position, mgl64.Vec3{})
	}
	return m.octree.Bounds().Transformed(t)
}

func (m *TriangleMesh) Volume() float64 {
	return 0
}

func (m *TriangleMesh) Inertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

func (m *TriangleMesh) TrianglesInBox(local geom.AABox, out []int) []int {
	return m.octree.GetTrianglesIntersectingAABox(local, out)
}

func (m *TriangleMesh) Triangle(id int) *mesh.IndexedTriangle {
	return m.octree.Triangle(id)
}

func (m *TriangleMesh) TriangleVertices(id int) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
	return m.octree.TriangleVertices(id)
}
