// Package shape describes the collision primitives in their local space.
// Primitives are immutable; their world placement comes from the skin that
// owns them.
package shape

import (
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind identifies a primitive type. The set is closed.
type Kind uint8

const (
	KindSphere Kind = iota
	KindBox
	KindCapsule
	KindPlane
	KindHeightmap
	KindTriangleMesh

	NumKinds
)

var kindNames = [NumKinds]string{"sphere", "box", "capsule", "plane", "heightmap", "trianglemesh"}

func (k Kind) String() string {
	if k < NumKinds {
		return kindNames[k]
	}
	return "unknown"
}

// IsStatic reports whether primitives of this kind can only belong to static bodies.
func (k Kind) IsStatic() bool {
	return k == KindPlane || k == KindHeightmap || k == KindTriangleMesh
}

// Primitive is implemented by every collision shape.
type Primitive interface {
	Kind() Kind
	// Bounds returns the world box of the primitive placed at t.
	Bounds(t geom.Transform) geom.AABox
	// Volume returns 0 for static kinds.
	Volume() float64
	// Inertia returns the body-space inertia tensor for the given mass about
	// the primitive's local origin.
	Inertia(mass float64) mgl64.Mat3
}

// Convex primitives expose a local support mapping.
type Convex interface {
	Primitive
	// Support returns the point of the shape furthest along direction, in local space.
	Support(direction mgl64.Vec3) mgl64.Vec3
}

// TriangleSource is implemented by primitives made of triangles (heightmaps
// and meshes) so the narrow phase can treat them alike.
type TriangleSource interface {
	Primitive
	// TrianglesInBox appends candidate triangles overlapping a local box.
	TrianglesInBox(local geom.AABox, out []int) []int
	Triangle(id int) *mesh.IndexedTriangle
	TriangleVertices(id int) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3)
}
