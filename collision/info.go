package collision

import (
	"github.com/akmonengine/gravel/material"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactPoint is one point of a contact manifold.
type ContactPoint struct {
	// Position lies halfway between the two surfaces.
	Position mgl64.Vec3
	// Normal is a unit vector pointing from A toward B.
	Normal mgl64.Vec3
	// Depth is the overlap along Normal, >= 0.
	Depth float64

	// Accumulated impulses, applied to B (and opposite to A), carried across
	// steps for warm starting.
	NormalImpulse   float64
	FrictionImpulse mgl64.Vec3
}

// Info is the result of one narrow-phase test between two primitives.
type Info struct {
	SkinA, SkinB           *Skin
	PrimitiveA, PrimitiveB int
	Points                 []ContactPoint
	Material               material.PairProperties
}

// Key returns the persistent key of the primitive pair.
func (info *Info) Key() PairKey {
	return MakePairKey(info.SkinA, info.PrimitiveA, info.SkinB, info.PrimitiveB)
}

// Flip swaps the roles of A and B.
func (info *Info) Flip() {
	info.SkinA, info.SkinB = info.SkinB, info.SkinA
	info.PrimitiveA, info.PrimitiveB = info.PrimitiveB, info.PrimitiveA
	flipPoints(info.Points)
}

func flipPoints(points []ContactPoint) {
	for i := range points {
		points[i].Normal = points[i].Normal.Mul(-1)
		points[i].FrictionImpulse = points[i].FrictionImpulse.Mul(-1)
	}
}

// PairKey identifies a pair of primitives across steps, independently of the
// order in which the pair was reported.
type PairKey struct {
	Lo, Hi                   uint32
	PrimitiveLo, PrimitiveHi uint16
}

// MakePairKey orders the pair by skin handle.
func MakePairKey(a *Skin, primitiveA int, b *Skin, primitiveB int) PairKey {
	if b.handle < a.handle || (b.handle == a.handle && primitiveB < primitiveA) {
		a, b = b, a
		primitiveA, primitiveB = primitiveB, primitiveA
	}
	return PairKey{
		Lo:          a.handle,
		Hi:          b.handle,
		PrimitiveLo: uint16(primitiveA),
		PrimitiveHi: uint16(primitiveB),
	}
}

// Flipped reports whether the skin pair (a, b) is stored as (Hi, Lo).
func (k PairKey) Flipped(a *Skin) bool {
	return a.handle != k.Lo
}

// Pair is a candidate from the broad phase. A was added to the system before B.
type Pair struct {
	A, B *Skin
}

// PairFilter reports whether a pair should go through the narrow phase.
type PairFilter func(a, b *Skin) bool
