package collision

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/shape"
	"github.com/go-gl/mathgl/mgl64"
)

func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func identityAt(p mgl64.Vec3) geom.Transform {
	return geom.TransformAt(p, mgl64.QuatIdent())
}

func flatHeightmap(t *testing.T) *shape.Heightmap {
	t.Helper()
	h, err := shape.NewHeightmap(3, 3, 1, 1, make([]float64, 9))
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func quadMesh(t *testing.T) *shape.TriangleMesh {
	t.Helper()
	vertices := []mgl64.Vec3{{-1, 0, -1}, {1, 0, -1}, {1, 0, 1}, {-1, 0, 1}}
	m, err := shape.NewTriangleMesh(vertices, [][3]int{{0, 3, 1}, {1, 3, 2}}, 4, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSphereSphere_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := NewDetector()

	for i := 0; i < 500; i++ {
		ca := mgl64.Vec3{rng.Float64()*4 - 2, rng.Float64()*4 - 2, rng.Float64()*4 - 2}
		cb := mgl64.Vec3{rng.Float64()*4 - 2, rng.Float64()*4 - 2, rng.Float64()*4 - 2}
		ra := 0.1 + rng.Float64()
		rb := 0.1 + rng.Float64()

		points := d.DetectPrimitives(&shape.Sphere{Radius: ra}, identityAt(ca), &shape.Sphere{Radius: rb}, identityAt(cb), nil)
		dist := cb.Sub(ca).Len()

		if dist > ra+rb {
			if len(points) != 0 {
				t.Fatalf("case %d: separated spheres reported %d contacts", i, len(points))
			}
			continue
		}
		if len(points) != 1 {
			t.Fatalf("case %d: expected 1 contact, got %d", i, len(points))
		}
		p := points[0]
		if math.Abs(p.Depth-(ra+rb-dist)) > 1e-12 {
			t.Errorf("case %d: depth %v, want %v", i, p.Depth, ra+rb-dist)
		}
		if !vec3Equal(p.Normal, cb.Sub(ca).Normalize(), 1e-9) {
			t.Errorf("case %d: normal %v not along the centres", i, p.Normal)
		}
	}
}

func TestBoxBoxSAT(t *testing.T) {
	unit := mgl64.Vec3{0.5, 0.5, 0.5}

	t.Run("offset unit cubes", func(t *testing.T) {
		r := BoxBoxSAT(identityAt(mgl64.Vec3{}), unit, identityAt(mgl64.Vec3{0.5, 0, 0}), unit)
		if r.Separated {
			t.Fatal("cubes overlap")
		}
		if r.AxisIndex != 0 || math.Abs(r.Depth-0.5) > 1e-12 {
			t.Errorf("axis %d depth %v, want axis 0 depth 0.5", r.AxisIndex, r.Depth)
		}
		if !vec3Equal(r.Axis, mgl64.Vec3{1, 0, 0}, 1e-12) {
			t.Errorf("axis = %v", r.Axis)
		}
	})

	t.Run("axis points from A to B", func(t *testing.T) {
		r := BoxBoxSAT(identityAt(mgl64.Vec3{}), unit, identityAt(mgl64.Vec3{0, -0.8, 0}), unit)
		if r.Separated || !vec3Equal(r.Axis, mgl64.Vec3{0, -1, 0}, 1e-12) || math.Abs(r.Depth-0.2) > 1e-12 {
			t.Errorf("got %+v", r)
		}
	})

	t.Run("separated", func(t *testing.T) {
		r := BoxBoxSAT(identityAt(mgl64.Vec3{}), unit, identityAt(mgl64.Vec3{0, 0, 1.01}), unit)
		if !r.Separated {
			t.Error("expected separation")
		}
	})

	t.Run("separated only by an edge axis", func(t *testing.T) {
		// two cubes rotated 45 degrees about different axes, edge to edge
		ta := geom.TransformAt(mgl64.Vec3{}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))
		tb := geom.TransformAt(mgl64.Vec3{0, 1.45, 0}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0}))
		r := BoxBoxSAT(ta, unit, tb, unit)
		if !r.Separated {
			t.Errorf("expected separation, got %+v", r)
		}
	})
}

func TestBoxBox_Resting(t *testing.T) {
	d := NewDetector()
	box := &shape.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}

	points := d.DetectPrimitives(box, identityAt(mgl64.Vec3{}), box, identityAt(mgl64.Vec3{0, 1.9, 0}), nil)
	if len(points) != 4 {
		t.Fatalf("expected 4 contacts, got %d", len(points))
	}
	for _, p := range points {
		if !vec3Equal(p.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) {
			t.Errorf("normal = %v", p.Normal)
		}
		if math.Abs(p.Depth-0.1) > 1e-9 {
			t.Errorf("depth = %v", p.Depth)
		}
		if math.Abs(p.Position.Y()-0.95) > 1e-9 || math.Abs(math.Abs(p.Position.X())-1) > 1e-9 {
			t.Errorf("position = %v", p.Position)
		}
	}
}

func TestBoxBox_EdgeContact(t *testing.T) {
	d := NewDetector()
	box := &shape.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}
	ta := geom.TransformAt(mgl64.Vec3{}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))
	tb := geom.TransformAt(mgl64.Vec3{0, 1.35, 0}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0}))

	points := d.DetectPrimitives(box, ta, box, tb, nil)
	if len(points) != 1 {
		t.Fatalf("expected a single edge contact, got %d", len(points))
	}
	p := points[0]
	// both edges sit at sqrt(2)/2 from their centre
	want := math.Sqrt2 - 1.35
	if !vec3Equal(p.Normal, mgl64.Vec3{0, 1, 0}, 1e-6) || math.Abs(p.Depth-want) > 1e-6 {
		t.Errorf("normal %v depth %v, want +y and %v", p.Normal, p.Depth, want)
	}
}

// mirroredAxis maps a box/box axis index to the index of the same axis with
// the boxes swapped.
func mirroredAxis(index int) int {
	switch {
	case index < 3:
		return index + 3
	case index < 6:
		return index - 3
	}
	i, j := (index-6)/3, (index-6)%3
	return 6 + 3*j + i
}

func sameContacts(t *testing.T, forward, backward []ContactPoint) {
	t.Helper()
	if len(forward) != len(backward) {
		t.Fatalf("%d contacts forward, %d backward", len(forward), len(backward))
	}
	for _, p := range forward {
		found := false
		for _, q := range backward {
			if vec3Equal(p.Position, q.Position, 1e-6) && vec3Equal(p.Normal, q.Normal.Mul(-1), 1e-6) && math.Abs(p.Depth-q.Depth) < 1e-6 {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("no mirrored contact for %+v in %+v", p, backward)
		}
	}
}

func TestBoxBox_Symmetry(t *testing.T) {
	d := NewDetector()

	t.Run("tied parallel faces", func(t *testing.T) {
		// both boxes turn about y only: their y faces tie, the smaller box
		// overhangs the larger one
		halfA := mgl64.Vec3{0.6, 0.3, 0.4}
		halfB := mgl64.Vec3{0.5, 0.3, 0.7}
		ta := geom.TransformAt(mgl64.Vec3{}, mgl64.QuatRotate(0.2, mgl64.Vec3{0, 1, 0}))
		tb := geom.TransformAt(mgl64.Vec3{0.4, 0.4, 0.3}, mgl64.QuatRotate(0.9, mgl64.Vec3{0, 1, 0}))

		forward := BoxBoxSAT(ta, halfA, tb, halfB)
		backward := BoxBoxSAT(tb, halfB, ta, halfA)
		if forward.Separated || backward.Separated {
			t.Fatal("boxes overlap")
		}
		if forward.IsEdge() || forward.AxisIndex%3 != 1 {
			t.Fatalf("expected a y face axis, got %+v", forward)
		}
		if backward.AxisIndex != mirroredAxis(forward.AxisIndex) {
			t.Errorf("axis %d forward, %d backward", forward.AxisIndex, backward.AxisIndex)
		}
		if !vec3Equal(forward.Axis, backward.Axis.Mul(-1), 1e-12) || math.Abs(forward.Depth-backward.Depth) > 1e-12 {
			t.Errorf("forward %+v, backward %+v", forward, backward)
		}

		a, b := &shape.Box{HalfExtents: halfA}, &shape.Box{HalfExtents: halfB}
		sameContacts(t, d.DetectPrimitives(a, ta, b, tb, nil), d.DetectPrimitives(b, tb, a, ta, nil))
	})

	t.Run("random pairs", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		randomHalf := func() mgl64.Vec3 {
			return mgl64.Vec3{0.2 + rng.Float64()*0.8, 0.2 + rng.Float64()*0.8, 0.2 + rng.Float64()*0.8}
		}
		randomRotation := func() mgl64.Quat {
			axis := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}
			if axis.Len() < 1e-3 {
				return mgl64.QuatIdent()
			}
			return mgl64.QuatRotate(rng.Float64()*2*math.Pi, axis.Normalize())
		}

		for i := 0; i < 1000; i++ {
			halfA, halfB := randomHalf(), randomHalf()
			ta := geom.TransformAt(mgl64.Vec3{}, randomRotation())
			tb := geom.TransformAt(mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}, randomRotation())

			forward := BoxBoxSAT(ta, halfA, tb, halfB)
			backward := BoxBoxSAT(tb, halfB, ta, halfA)
			if forward.Separated != backward.Separated {
				t.Fatalf("case %d: separation differs", i)
			}
			if forward.Separated {
				continue
			}
			if backward.AxisIndex != mirroredAxis(forward.AxisIndex) || forward.Depth != backward.Depth {
				t.Fatalf("case %d: forward %+v, backward %+v", i, forward, backward)
			}
		}
	})
}

func TestSpherePrimitives(t *testing.T) {
	d := NewDetector()
	sphere := &shape.Sphere{Radius: 0.5}

	tests := []struct {
		name     string
		other    shape.Primitive
		otherAt  geom.Transform
		centre   mgl64.Vec3
		normal   mgl64.Vec3
		depth    float64
		position mgl64.Vec3
	}{
		{
			name:     "resting on a plane",
			other:    &shape.Plane{Normal: mgl64.Vec3{0, 1, 0}},
			otherAt:  geom.NewTransform(),
			centre:   mgl64.Vec3{3, 0.4, -2},
			normal:   mgl64.Vec3{0, -1, 0},
			depth:    0.1,
			position: mgl64.Vec3{3, -0.05, -2},
		},
		{
			name:     "above a box",
			other:    &shape.Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
			otherAt:  geom.NewTransform(),
			centre:   mgl64.Vec3{0, 1.3, 0},
			normal:   mgl64.Vec3{0, -1, 0},
			depth:    0.2,
			position: mgl64.Vec3{0, 0.9, 0},
		},
		{
			name:     "centre inside a box",
			other:    &shape.Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
			otherAt:  geom.NewTransform(),
			centre:   mgl64.Vec3{0, 0.8, 0},
			normal:   mgl64.Vec3{0, -1, 0},
			depth:    0.7,
			position: mgl64.Vec3{0, 0.65, 0},
		},
		{
			name:     "side of a capsule",
			other:    &shape.Capsule{Radius: 0.25, Length: 2},
			otherAt:  geom.NewTransform(),
			centre:   mgl64.Vec3{0.7, 0, 0.5},
			normal:   mgl64.Vec3{-1, 0, 0},
			depth:    0.05,
			position: mgl64.Vec3{0.225, 0, 0.5},
		},
		{
			name:     "flat heightmap",
			other:    flatHeightmap(t),
			otherAt:  geom.NewTransform(),
			centre:   mgl64.Vec3{0.25, 0.4, 0.3},
			normal:   mgl64.Vec3{0, -1, 0},
			depth:    0.1,
			position: mgl64.Vec3{0.25, -0.05, 0.3},
		},
		{
			name:     "shared edge of a mesh",
			other:    quadMesh(t),
			otherAt:  identityAt(mgl64.Vec3{0, 1, 0}),
			centre:   mgl64.Vec3{0, 1.4, 0},
			normal:   mgl64.Vec3{0, -1, 0},
			depth:    0.1,
			position: mgl64.Vec3{0, 0.95, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := d.DetectPrimitives(sphere, identityAt(tt.centre), tt.other, tt.otherAt, nil)
			if len(points) != 1 {
				t.Fatalf("expected 1 contact, got %d: %+v", len(points), points)
			}
			p := points[0]
			if !vec3Equal(p.Normal, tt.normal, 1e-9) {
				t.Errorf("normal = %v, want %v", p.Normal, tt.normal)
			}
			if math.Abs(p.Depth-tt.depth) > 1e-9 {
				t.Errorf("depth = %v, want %v", p.Depth, tt.depth)
			}
			if !vec3Equal(p.Position, tt.position, 1e-9) {
				t.Errorf("position = %v, want %v", p.Position, tt.position)
			}
		})
	}
}

func TestSphereTriangles_BackFace(t *testing.T) {
	d := NewDetector()
	points := d.DetectPrimitives(&shape.Sphere{Radius: 0.5}, identityAt(mgl64.Vec3{0, -0.3, 0}), quadMesh(t), geom.NewTransform(), nil)
	if len(points) != 0 {
		t.Errorf("a sphere behind a one-sided mesh must not collide, got %+v", points)
	}
}

func TestCapsuleContacts(t *testing.T) {
	d := NewDetector()
	alongX := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})

	t.Run("parallel capsules give two contacts", func(t *testing.T) {
		c := &shape.Capsule{Radius: 0.5, Length: 2}
		points := d.DetectPrimitives(c, identityAt(mgl64.Vec3{}), c, identityAt(mgl64.Vec3{0, 0.9, 0.5}), nil)
		if len(points) != 2 {
			t.Fatalf("expected 2 contacts, got %d", len(points))
		}
		for _, p := range points {
			if !vec3Equal(p.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) || math.Abs(p.Depth-0.1) > 1e-9 {
				t.Errorf("normal %v depth %v", p.Normal, p.Depth)
			}
		}
	})

	t.Run("crossed capsules give one contact", func(t *testing.T) {
		c := &shape.Capsule{Radius: 0.5, Length: 2}
		points := d.DetectPrimitives(c, identityAt(mgl64.Vec3{}), c, geom.TransformAt(mgl64.Vec3{0, 0.9, 0}, alongX), nil)
		if len(points) != 1 || math.Abs(points[0].Depth-0.1) > 1e-9 {
			t.Errorf("got %+v", points)
		}
	})

	t.Run("capsule on a plane", func(t *testing.T) {
		c := &shape.Capsule{Radius: 0.25, Length: 2}
		points := d.DetectPrimitives(c, geom.TransformAt(mgl64.Vec3{0, 0.2, 0}, alongX), &shape.Plane{Normal: mgl64.Vec3{0, 1, 0}}, geom.NewTransform(), nil)
		if len(points) != 2 {
			t.Fatalf("expected 2 contacts, got %d", len(points))
		}
		if math.Abs(points[0].Position.X()+1) > 1e-9 || math.Abs(points[1].Position.X()-1) > 1e-9 {
			t.Errorf("positions %v %v", points[0].Position, points[1].Position)
		}
	})

	t.Run("capsule lying on a box", func(t *testing.T) {
		c := &shape.Capsule{Radius: 0.25, Length: 2}
		box := &shape.Box{HalfExtents: mgl64.Vec3{2, 1, 2}}
		points := d.DetectPrimitives(c, geom.TransformAt(mgl64.Vec3{0, 1.2, 0}, alongX), box, geom.NewTransform(), nil)
		if len(points) != 2 {
			t.Fatalf("expected 2 contacts, got %d", len(points))
		}
		for _, p := range points {
			if !vec3Equal(p.Normal, mgl64.Vec3{0, -1, 0}, 1e-9) || math.Abs(p.Depth-0.05) > 1e-6 {
				t.Errorf("normal %v depth %v", p.Normal, p.Depth)
			}
			if math.Abs(math.Abs(p.Position.X())-1) > 1e-6 || math.Abs(p.Position.Y()-0.975) > 1e-6 {
				t.Errorf("position %v", p.Position)
			}
		}
	})

	t.Run("capsule tip on a box", func(t *testing.T) {
		c := &shape.Capsule{Radius: 0.25, Length: 1}
		upright := mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})
		box := &shape.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}
		points := d.DetectPrimitives(c, geom.TransformAt(mgl64.Vec3{0, 1.7, 0}, upright), box, geom.NewTransform(), nil)
		if len(points) != 1 {
			t.Fatalf("expected 1 contact, got %d", len(points))
		}
		if !vec3Equal(points[0].Normal, mgl64.Vec3{0, -1, 0}, 1e-6) || math.Abs(points[0].Depth-0.05) > 1e-6 {
			t.Errorf("got %+v", points[0])
		}
	})

	t.Run("axis inside a box", func(t *testing.T) {
		c := &shape.Capsule{Radius: 0.25, Length: 1}
		box := &shape.Box{HalfExtents: mgl64.Vec3{2, 1, 2}}
		points := d.DetectPrimitives(c, identityAt(mgl64.Vec3{0, 0.5, 0}), box, geom.NewTransform(), nil)
		if len(points) != 1 {
			t.Fatalf("expected 1 contact, got %d", len(points))
		}
		if points[0].Normal.Y() > -0.99 || math.Abs(points[0].Depth-0.75) > 1e-2 {
			t.Errorf("got %+v", points[0])
		}
	})
}

func TestBoxOnStaticGeometry(t *testing.T) {
	d := NewDetector()
	box := &shape.Box{HalfExtents: mgl64.Vec3{0.25, 0.25, 0.25}}

	tests := []struct {
		name   string
		other  shape.Primitive
		centre mgl64.Vec3
	}{
		{"plane", &shape.Plane{Normal: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{5, 0.2, 5}},
		{"heightmap", flatHeightmap(t), mgl64.Vec3{0.1, 0.2, 0.3}},
		{"mesh", quadMesh(t), mgl64.Vec3{-0.3, 0.2, 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := d.DetectPrimitives(box, identityAt(tt.centre), tt.other, geom.NewTransform(), nil)
			if len(points) != 4 {
				t.Fatalf("expected 4 corner contacts, got %d: %+v", len(points), points)
			}
			for _, p := range points {
				if !vec3Equal(p.Normal, mgl64.Vec3{0, -1, 0}, 1e-9) || math.Abs(p.Depth-0.05) > 1e-9 {
					t.Errorf("normal %v depth %v", p.Normal, p.Depth)
				}
			}
		})
	}
}

func TestDispatchSymmetry(t *testing.T) {
	alongX := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	tilted := mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 1}.Normalize())

	sphere := &shape.Sphere{Radius: 0.5}
	box := &shape.Box{HalfExtents: mgl64.Vec3{0.5, 0.4, 0.6}}
	capsule := &shape.Capsule{Radius: 0.3, Length: 1}
	plane := &shape.Plane{Normal: mgl64.Vec3{0, 1, 0}}

	tests := []struct {
		name   string
		a      shape.Primitive
		ta     geom.Transform
		b      shape.Primitive
		tb     geom.Transform
		static bool
	}{
		{"sphere/sphere", sphere, identityAt(mgl64.Vec3{}), sphere, identityAt(mgl64.Vec3{0.3, 0.8, 0}), false},
		{"sphere/box", sphere, identityAt(mgl64.Vec3{0.2, 0.8, 0}), box, geom.TransformAt(mgl64.Vec3{}, tilted), false},
		{"sphere/capsule", sphere, identityAt(mgl64.Vec3{0.6, 0, 0}), capsule, identityAt(mgl64.Vec3{}), false},
		{"sphere/plane", sphere, identityAt(mgl64.Vec3{0, 0.3, 0}), plane, geom.NewTransform(), false},
		{"box/box", box, identityAt(mgl64.Vec3{}), box, identityAt(mgl64.Vec3{0.3, 0.7, -0.2}), false},
		{"box/capsule", box, identityAt(mgl64.Vec3{}), capsule, geom.TransformAt(mgl64.Vec3{0.1, 0.6, 0}, alongX), false},
		{"box/plane", box, geom.TransformAt(mgl64.Vec3{0, 0.3, 0}, tilted), plane, geom.NewTransform(), false},
		{"capsule/capsule", capsule, identityAt(mgl64.Vec3{}), capsule, geom.TransformAt(mgl64.Vec3{0, 0.5, 0}, alongX), false},
		{"capsule/plane", capsule, geom.TransformAt(mgl64.Vec3{0, 0.2, 0}, tilted), plane, geom.NewTransform(), false},
		{"sphere/heightmap", sphere, identityAt(mgl64.Vec3{0.1, 0.3, 0.2}), flatHeightmap(t), geom.NewTransform(), false},
		{"capsule/mesh", capsule, geom.TransformAt(mgl64.Vec3{0.2, 0.25, 0}, alongX), quadMesh(t), geom.NewTransform(), false},
		{"plane/heightmap", plane, geom.NewTransform(), flatHeightmap(t), geom.NewTransform(), true},
		{"mesh/mesh", quadMesh(t), geom.NewTransform(), quadMesh(t), geom.NewTransform(), true},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Supported(tt.a.Kind(), tt.b.Kind()); got == tt.static {
				t.Fatalf("Supported = %v", got)
			}

			forward := d.DetectPrimitives(tt.a, tt.ta, tt.b, tt.tb, nil)
			backward := d.DetectPrimitives(tt.b, tt.tb, tt.a, tt.ta, nil)
			if tt.static {
				if len(forward)+len(backward) != 0 {
					t.Errorf("static kinds must not collide")
				}
				return
			}
			if len(forward) == 0 {
				t.Fatal("expected contacts")
			}
			if len(forward) != len(backward) {
				t.Fatalf("%d contacts forward, %d backward", len(forward), len(backward))
			}
			for _, p := range forward {
				found := false
				for _, q := range backward {
					if vec3Equal(p.Position, q.Position, 1e-6) && vec3Equal(p.Normal, q.Normal.Mul(-1), 1e-6) && math.Abs(p.Depth-q.Depth) < 1e-6 {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("no mirrored contact for %+v in %+v", p, backward)
				}
				if p.Depth < 0 || math.Abs(p.Normal.Len()-1) > 1e-9 {
					t.Errorf("invalid contact %+v", p)
				}
			}
		})
	}
}

func TestInfoFlip(t *testing.T) {
	a, b := NewSkin("a"), NewSkin("b")
	a.handle, b.handle = 1, 2
	info := Info{
		SkinA: a, SkinB: b, PrimitiveA: 0, PrimitiveB: 3,
		Points: []ContactPoint{{Normal: mgl64.Vec3{0, 1, 0}, FrictionImpulse: mgl64.Vec3{1, 0, 0}, NormalImpulse: 2}},
	}
	key := info.Key()
	info.Flip()

	if info.SkinA != b || info.PrimitiveA != 3 || info.Points[0].Normal != (mgl64.Vec3{0, -1, 0}) {
		t.Errorf("flip did not swap roles: %+v", info)
	}
	if info.Points[0].FrictionImpulse != (mgl64.Vec3{-1, 0, 0}) || info.Points[0].NormalImpulse != 2 {
		t.Errorf("impulses %+v", info.Points[0])
	}
	if info.Key() != key {
		t.Errorf("key changed with the order: %v != %v", info.Key(), key)
	}
	if want := (PairKey{Lo: 1, Hi: 2, PrimitiveLo: 0, PrimitiveHi: 3}); key != want {
		t.Errorf("key = %+v, want %+v", key, want)
	}
}

func BenchmarkBoxBox(b *testing.B) {
	d := NewDetector()
	box := &shape.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}
	tb := geom.TransformAt(mgl64.Vec3{0.2, 1.9, 0.1}, mgl64.QuatRotate(0.2, mgl64.Vec3{0, 1, 0}))
	var out []ContactPoint

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out = d.DetectPrimitives(box, geom.NewTransform(), box, tb, out[:0])
	}
}
