package collision

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func square(half, y float64) []mgl64.Vec3 {
	return []mgl64.Vec3{{-half, y, -half}, {half, y, -half}, {half, y, half}, {-half, y, half}}
}

func TestComputeCenter(t *testing.T) {
	if c := computeCenter(nil); c != (mgl64.Vec3{}) {
		t.Errorf("empty centre = %v", c)
	}
	if c := computeCenter(square(1, 2)); !vec3Equal(c, mgl64.Vec3{0, 2, 0}, 1e-12) {
		t.Errorf("centre = %v, want {0 2 0}", c)
	}
}

func TestClipPolygonAgainstPlane(t *testing.T) {
	got := clipPolygonAgainstPlane(nil, square(1, 0), mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	want := []mgl64.Vec3{{0, 0, -1}, {1, 0, -1}, {1, 0, 1}, {0, 0, 1}}

	if len(got) != len(want) {
		t.Fatalf("got %d vertices, want %d", len(got), len(want))
	}
	for i := range want {
		if !vec3Equal(got[i], want[i], 1e-12) {
			t.Errorf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}

	// entirely behind the plane
	if got := clipPolygonAgainstPlane(nil, square(1, 0), mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 0, 0}); len(got) != 0 {
		t.Errorf("expected nothing left, got %v", got)
	}
}

func TestClipIncidentAgainstReference(t *testing.T) {
	var c clipper
	got := c.clipIncidentAgainstReference(square(2, -0.1), square(1, 0), mgl64.Vec3{0, 1, 0})

	if len(got) != 4 {
		t.Fatalf("got %d vertices, want 4", len(got))
	}
	for _, p := range got {
		if math.Abs(p.X()) > 1+1e-9 || math.Abs(p.Z()) > 1+1e-9 || math.Abs(p.Y()+0.1) > 1e-12 {
			t.Errorf("vertex %v outside the reference face", p)
		}
	}
}

func TestReduceToMaxPoints(t *testing.T) {
	up := mgl64.Vec3{0, 1, 0}
	points := []ContactPoint{
		{Position: mgl64.Vec3{-1, 0, -1}, Normal: up, Depth: 0.1},
		{Position: mgl64.Vec3{1, 0, -1}, Normal: up, Depth: 0.1},
		{Position: mgl64.Vec3{1, 0, 1}, Normal: up, Depth: 0.1},
		{Position: mgl64.Vec3{-1, 0, 1}, Normal: up, Depth: 0.1},
		{Position: mgl64.Vec3{0, 0, 0}, Normal: up, Depth: 0.5},
		{Position: mgl64.Vec3{0.5, 0, 0}, Normal: up, Depth: 0.1},
	}

	got := reduceToMaxPoints(points)
	if len(got) != MaxManifoldPoints {
		t.Fatalf("kept %d points, want %d", len(got), MaxManifoldPoints)
	}

	deepest := false
	for _, p := range got {
		if p.Depth == 0.5 {
			deepest = true
		}
	}
	if !deepest {
		t.Error("the deepest point was dropped")
	}

	few := points[:3]
	if got := reduceToMaxPoints(few); len(got) != 3 {
		t.Errorf("short manifold changed to %d points", len(got))
	}
}

func TestMergeDuplicates(t *testing.T) {
	up := mgl64.Vec3{0, 1, 0}
	points := []ContactPoint{
		{Position: mgl64.Vec3{0, 0, 0}, Normal: up, Depth: 0.1},
		{Position: mgl64.Vec3{1e-5, 0, 0}, Normal: up, Depth: 0.2},
		{Position: mgl64.Vec3{0, 0, 0}, Normal: mgl64.Vec3{1, 0, 0}, Depth: 0.3},
		{Position: mgl64.Vec3{1, 0, 0}, Normal: up, Depth: 0.05},
	}

	got := mergeDuplicates(points, mergeTolerance)
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
	if got[0].Depth != 0.2 {
		t.Errorf("merged depth = %v, want the deeper 0.2", got[0].Depth)
	}
	if got[1].Normal != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("a point with another normal was merged")
	}
}
