package collision

import (
	"math"
	"testing"

	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/material"
	"github.com/akmonengine/gravel/shape"
	"github.com/go-gl/mathgl/mgl64"
)

func TestSystemSkins(t *testing.T) {
	sys := NewSystem(nil)
	a := skinAt(&shape.Sphere{Radius: 1}, mgl64.Vec3{})
	b := skinAt(&shape.Sphere{Radius: 1}, mgl64.Vec3{3, 0, 0})
	c := skinAt(&shape.Sphere{Radius: 1}, mgl64.Vec3{6, 0, 0})

	for _, s := range []*Skin{a, b, c} {
		if !sys.AddSkin(s) {
			t.Fatal("AddSkin refused a new skin")
		}
	}
	if a.Handle() != 1 || b.Handle() != 2 || c.Handle() != 3 {
		t.Errorf("handles = %d %d %d, want 1 2 3", a.Handle(), b.Handle(), c.Handle())
	}
	if sys.AddSkin(b) {
		t.Error("a skin was added twice")
	}
	if NewSystem(nil).AddSkin(a) {
		t.Error("a skin joined a second system")
	}

	if !sys.RemoveSkin(b) {
		t.Fatal("RemoveSkin failed")
	}
	if sys.RemoveSkin(b) {
		t.Error("RemoveSkin succeeded twice")
	}
	skins := sys.Skins()
	if len(skins) != 2 || skins[0] != a || skins[1] != c {
		t.Errorf("remaining skins out of order")
	}
	if b.Handle() != 0 || b.System() != nil {
		t.Error("removed skin still attached")
	}

	// handles are never reused
	sys.AddSkin(b)
	if b.Handle() != 4 {
		t.Errorf("handle = %d, want 4", b.Handle())
	}
}

func TestSkinTransforms(t *testing.T) {
	s := NewSkin(nil)
	s.AddPrimitive(&shape.Sphere{Radius: 0.5}, geom.NewTransform())
	s.AddPrimitive(&shape.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, identityAt(mgl64.Vec3{0, 2, 0}))

	old := identityAt(mgl64.Vec3{-1, 0, 0})
	current := geom.TransformAt(mgl64.Vec3{3, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))
	s.SetTransforms(old, current)

	if s.OldTransform() != old || s.Transform() != current {
		t.Error("transforms not stored")
	}
	if p := s.PrimitiveOldWorld(1).Position; !vec3Equal(p, mgl64.Vec3{-1, 2, 0}, 1e-12) {
		t.Errorf("old box position = %v", p)
	}
	// a quarter turn about z takes the local +y offset to -x
	if p := s.PrimitiveWorld(1).Position; !vec3Equal(p, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("box position = %v", p)
	}

	// bounds sweep from the old to the current pose
	bounds := s.PrimitiveBounds(0)
	if !vec3Equal(bounds.Min, mgl64.Vec3{-1.5, -0.5, -0.5}, 1e-12) || !vec3Equal(bounds.Max, mgl64.Vec3{3.5, 0.5, 0.5}, 1e-12) {
		t.Errorf("sphere bounds = %v", bounds)
	}
	if s.Bounds() != bounds.AddBox(s.PrimitiveBounds(1)) {
		t.Errorf("skin bounds = %v, want the union of its primitives", s.Bounds())
	}

	if s.IsStatic() {
		t.Error("sphere and box may move")
	}
	s.AddPrimitive(&shape.Plane{Normal: mgl64.Vec3{0, 1, 0}}, geom.NewTransform())
	if !s.IsStatic() {
		t.Error("a plane makes the skin static")
	}
}

func TestSystemDetect(t *testing.T) {
	table := material.NewTable()
	table.SetMaterialProperties(1, material.Properties{Elasticity: 0.5, StaticRoughness: 0.4, DynamicRoughness: 0.1})
	table.SetMaterialProperties(2, material.Properties{Elasticity: 0.8, StaticRoughness: 0.9, DynamicRoughness: 0.4})

	sys := NewSystem(NewGrid(0.5, 4, 64))
	sys.SetMaterials(table)

	a := NewSkin("a")
	a.Material = 1
	a.AddPrimitive(&shape.Sphere{Radius: 1}, geom.NewTransform())
	// far from b, rejected by its own bounds
	a.AddPrimitive(&shape.Sphere{Radius: 0.5}, identityAt(mgl64.Vec3{-3, 0, 0}))
	a.SetTransform(geom.NewTransform())

	b := NewSkin("b")
	b.AddPrimitiveWithMaterial(&shape.Sphere{Radius: 1}, geom.NewTransform(), 2)
	b.SetTransform(identityAt(mgl64.Vec3{1.5, 0, 0}))

	sys.AddSkin(a)
	sys.AddSkin(b)

	pairs := sys.UpdateAllCollisions()
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}

	calls := 0
	sys.DetectAllCollisions(pairs, nil, func(info *Info) {
		calls++
		if info.SkinA != a || info.PrimitiveA != 0 || info.SkinB != b {
			t.Errorf("unexpected pair %v/%d - %v/%d", info.SkinA.Owner, info.PrimitiveA, info.SkinB.Owner, info.PrimitiveB)
		}
		if len(info.Points) != 1 || math.Abs(info.Points[0].Depth-0.5) > 1e-12 {
			t.Errorf("points = %+v", info.Points)
		}
		if math.Abs(info.Material.Restitution-0.4) > 1e-12 || math.Abs(info.Material.StaticFriction-0.6) > 1e-12 {
			t.Errorf("material = %+v", info.Material)
		}
		if key := info.Key(); key.Lo != 1 || key.Hi != 2 {
			t.Errorf("key = %+v", key)
		}
	})
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}

	sys.DetectAllCollisions(pairs, func(a, b *Skin) bool { return false }, func(*Info) {
		t.Error("filtered pair reached the narrow phase")
	})

	sys.ReleaseScratch()
	if len(sys.UpdateAllCollisions()) != 1 {
		t.Error("system unusable after ReleaseScratch")
	}
}

func TestPairKey(t *testing.T) {
	sys := NewSystem(nil)
	a := skinAt(&shape.Sphere{Radius: 1}, mgl64.Vec3{})
	b := skinAt(&shape.Sphere{Radius: 1}, mgl64.Vec3{})
	sys.AddSkin(a)
	sys.AddSkin(b)

	k1 := MakePairKey(a, 0, b, 1)
	k2 := MakePairKey(b, 1, a, 0)
	if k1 != k2 {
		t.Errorf("keys differ: %+v %+v", k1, k2)
	}
	if k1.Flipped(a) || !k1.Flipped(b) {
		t.Error("Flipped reports the wrong order")
	}
}
