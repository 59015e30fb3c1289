package collision

import (
	"github.com/akmonengine/gravel/material"
	"github.com/akmonengine/gravel/shape"
)

// System owns the skins taking part in collision detection.
type System struct {
	skins      []*Skin
	nextHandle uint32

	broadPhase BroadPhase
	materials  *material.Table

	pairs    []Pair
	points   []ContactPoint
	detector *Detector
	info     Info
}

// NewSystem creates a system using the given broad phase, Brute when nil.
func NewSystem(broadPhase BroadPhase) *System {
	if broadPhase == nil {
		broadPhase = Brute{}
	}
	return &System{
		broadPhase: broadPhase,
		detector:   NewDetector(),
		nextHandle: 1,
	}
}

// AddSkin registers a skin and assigns its handle. It returns false when the
// skin already belongs to a system.
func (s *System) AddSkin(skin *Skin) bool {
	if skin.system != nil {
		return false
	}
	skin.system = s
	skin.handle = s.nextHandle
	s.nextHandle++
	s.skins = append(s.skins, skin)
	return true
}

// RemoveSkin unregisters a skin, keeping the order of the others.
func (s *System) RemoveSkin(skin *Skin) bool {
	if skin.system != s {
		return false
	}
	for i, other := range s.skins {
		if other == skin {
			s.skins = append(s.skins[:i], s.skins[i+1:]...)
			break
		}
	}
	skin.system = nil
	skin.handle = 0
	return true
}

// Skins returns the registered skins in insertion order. The slice must not be modified.
func (s *System) Skins() []*Skin {
	return s.skins
}

func (s *System) SetBroadPhase(broadPhase BroadPhase) {
	if broadPhase == nil {
		broadPhase = Brute{}
	}
	s.broadPhase = broadPhase
}

func (s *System) BroadPhase() BroadPhase {
	return s.broadPhase
}

// SetMaterials sets the table resolving the material of every contact.
func (s *System) SetMaterials(table *material.Table) {
	s.materials = table
}

// UpdateAllCollisions runs the broad phase. The returned slice is reused by
// the next call.
func (s *System) UpdateAllCollisions() []Pair {
	s.pairs = s.broadPhase.UpdateAllCollisions(s.skins, s.pairs[:0])
	return s.pairs
}

// DetectAllCollisions runs the narrow phase over every primitive pair of the
// given skin pairs accepted by filter (all when nil), and calls fn for each
// pair in contact. info and its points are only valid during the call.
func (s *System) DetectAllCollisions(pairs []Pair, filter PairFilter, fn func(info *Info)) {
	for _, pair := range pairs {
		a, b := pair.A, pair.B
		if filter != nil && !filter(a, b) {
			continue
		}

		for ia := range a.primitives {
			for ib := range b.primitives {
				if !a.primitives[ia].bounds.Overlaps(b.primitives[ib].bounds) {
					continue
				}
				if !Supported(a.primitives[ia].primitive.Kind(), b.primitives[ib].primitive.Kind()) {
					continue
				}

				s.points = s.detector.Detect(a, ia, b, ib, s.points[:0])
				if len(s.points) == 0 {
					continue
				}

				s.info = Info{
					SkinA:      a,
					SkinB:      b,
					PrimitiveA: ia,
					PrimitiveB: ib,
					Points:     s.points,
					Material:   s.pairMaterial(a.PrimitiveMaterial(ia), b.PrimitiveMaterial(ib)),
				}
				fn(&s.info)
			}
		}
	}
}

func (s *System) pairMaterial(a, b material.ID) material.PairProperties {
	if s.materials == nil {
		return material.PairProperties{}
	}
	return s.materials.GetPairProperties(a, b)
}

// ReleaseScratch frees the buffers kept between steps, including the query
// stacks of mesh primitives.
func (s *System) ReleaseScratch() {
	s.pairs = nil
	s.points = nil
	s.detector.releaseScratch()
	if r, ok := s.broadPhase.(interface{ ReleaseScratch() }); ok {
		r.ReleaseScratch()
	}
	for _, skin := range s.skins {
		for i := range skin.primitives {
			if m, ok := skin.primitives[i].primitive.(*shape.TriangleMesh); ok {
				m.Octree().ReleaseScratch()
			}
		}
	}
}
