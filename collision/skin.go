// Package collision finds the contacts between collision skins: a broad phase
// proposes overlapping skin pairs and narrow-phase detectors, one per pair of
// primitive kinds, generate the contact points.
package collision

import (
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/material"
	"github.com/akmonengine/gravel/shape"
)

type skinPrimitive struct {
	primitive   shape.Primitive
	local       geom.Transform
	material    material.ID
	ownMaterial bool

	// swept world bounds
	bounds geom.AABox
}

// Skin groups primitives moving together. It keeps the world transform of the
// previous and the current step; its bounds cover both.
type Skin struct {
	// Owner is opaque to the collision system, usually the owning body.
	Owner any
	// Material applies to every primitive added without its own.
	Material material.ID

	primitives []skinPrimitive
	old        geom.Transform
	current    geom.Transform
	bounds     geom.AABox

	handle uint32
	system *System
}

// NewSkin returns an empty skin at the origin.
func NewSkin(owner any) *Skin {
	return &Skin{
		Owner:   owner,
		old:     geom.NewTransform(),
		current: geom.NewTransform(),
		bounds:  geom.EmptyBox(),
	}
}

// AddPrimitive adds a primitive placed at local in the skin frame and returns
// its index. The primitive uses the skin material.
func (s *Skin) AddPrimitive(p shape.Primitive, local geom.Transform) int {
	s.primitives = append(s.primitives, skinPrimitive{primitive: p, local: local})
	s.updateBounds(len(s.primitives) - 1)
	return len(s.primitives) - 1
}

// AddPrimitiveWithMaterial is AddPrimitive with a material overriding the
// skin material.
func (s *Skin) AddPrimitiveWithMaterial(p shape.Primitive, local geom.Transform, id material.ID) int {
	i := s.AddPrimitive(p, local)
	s.primitives[i].material = id
	s.primitives[i].ownMaterial = true
	return i
}

// RemoveAllPrimitives empties the skin.
func (s *Skin) RemoveAllPrimitives() {
	s.primitives = s.primitives[:0]
	s.bounds = geom.EmptyBox()
}

func (s *Skin) NumPrimitives() int {
	return len(s.primitives)
}

func (s *Skin) Primitive(i int) shape.Primitive {
	return s.primitives[i].primitive
}

// PrimitiveLocal returns the placement of a primitive in the skin frame.
func (s *Skin) PrimitiveLocal(i int) geom.Transform {
	return s.primitives[i].local
}

// PrimitiveMaterial returns the material of a primitive.
func (s *Skin) PrimitiveMaterial(i int) material.ID {
	if p := &s.primitives[i]; p.ownMaterial {
		return p.material
	}
	return s.Material
}

// PrimitiveWorld returns the current world transform of a primitive.
func (s *Skin) PrimitiveWorld(i int) geom.Transform {
	return s.current.Mul(s.primitives[i].local)
}

// PrimitiveOldWorld returns the world transform of a primitive at the previous step.
func (s *Skin) PrimitiveOldWorld(i int) geom.Transform {
	return s.old.Mul(s.primitives[i].local)
}

// PrimitiveBounds returns the swept world bounds of a primitive.
func (s *Skin) PrimitiveBounds(i int) geom.AABox {
	return s.primitives[i].bounds
}

// SetTransforms moves the skin and refreshes its bounds.
func (s *Skin) SetTransforms(old, current geom.Transform) {
	s.old = old
	s.current = current
	s.bounds = geom.EmptyBox()
	for i := range s.primitives {
		s.updateBounds(i)
	}
}

// SetTransform places the skin without motion.
func (s *Skin) SetTransform(t geom.Transform) {
	s.SetTransforms(t, t)
}

func (s *Skin) Transform() geom.Transform {
	return s.current
}

func (s *Skin) OldTransform() geom.Transform {
	return s.old
}

// Bounds returns the union of the swept bounds of every primitive.
func (s *Skin) Bounds() geom.AABox {
	return s.bounds
}

// Handle identifies the skin inside its system. It is 0 until the skin is added.
func (s *Skin) Handle() uint32 {
	return s.handle
}

// System returns the system the skin belongs to, or nil.
func (s *Skin) System() *System {
	return s.system
}

// IsStatic reports whether the skin holds a primitive that may only be static.
func (s *Skin) IsStatic() bool {
	for i := range s.primitives {
		if s.primitives[i].primitive.Kind().IsStatic() {
			return true
		}
	}
	return false
}

func (s *Skin) updateBounds(i int) {
	p := &s.primitives[i]
	p.bounds = p.primitive.Bounds(s.old.Mul(p.local)).AddBox(p.primitive.Bounds(s.current.Mul(p.local)))
	s.bounds = s.bounds.AddBox(p.bounds)
}
