package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/gravel/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const testDt = 1.0 / 60.0

// step integrates the bodies the way the world does around the solver.
func step(solver *Solver, constraints []Constraint, gravity mgl64.Vec3, bodies ...*actor.RigidBody) {
	for _, b := range bodies {
		b.UpdateWorldInertia()
		b.IntegrateVelocity(testDt, gravity)
	}
	solver.Solve(constraints, testDt, 20)
	for _, b := range bodies {
		b.IntegratePosition(testDt)
	}
}

func TestPoint_MatchesVelocities(t *testing.T) {
	bodyA := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{})
	bodyB := createDynamicBody(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 1, 0})
	pivot := mgl64.Vec3{1, 0, 0}
	joint := NewPoint(bodyA, bodyB, pivot)

	var solver Solver
	solver.Solve([]Constraint{joint}, testDt, 10)

	if !vec3AlmostEqual(bodyA.VelocityAt(pivot), bodyB.VelocityAt(pivot), 1e-9) {
		t.Errorf("pivot velocities differ: %v vs %v", bodyA.VelocityAt(pivot), bodyB.VelocityAt(pivot))
	}
	if !joint.Satisfied() {
		t.Error("joint should be satisfied")
	}

	a, b := joint.Bodies()
	if a != bodyA || b != bodyB || joint.Kind() != KindPoint {
		t.Error("unexpected bodies or kind")
	}
}

func TestWorldPoint_Pendulum(t *testing.T) {
	bob := createDynamicBody(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})
	joint := NewWorldPoint(bob, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{})
	constraints := []Constraint{joint}

	var solver Solver
	lowest := 0.0
	for i := 0; i < 120; i++ {
		step(&solver, constraints, mgl64.Vec3{0, -9.81, 0}, bob)
		lowest = math.Min(lowest, bob.Transform.Position.Y())
	}

	anchor := bob.Transform.Apply(mgl64.Vec3{-1, 0, 0})
	if anchor.Len() > 0.05 {
		t.Errorf("anchor drifted %v from the pin", anchor.Len())
	}
	if lowest > -0.9 {
		t.Errorf("pendulum should swing through the bottom, lowest %v", lowest)
	}

	joint.SetTarget(mgl64.Vec3{0, 1, 0})
	if joint.Target() != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("Target() = %v", joint.Target())
	}
}

func TestMaxDistance(t *testing.T) {
	tests := []struct {
		name     string
		position mgl64.Vec3
		pulled   bool
	}{
		{"taut", mgl64.Vec3{3, 0, 0}, true},
		{"slack", mgl64.Vec3{1, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor := createStaticBody(mgl64.Vec3{})
			body := createDynamicBody(tt.position, mgl64.Vec3{1, 0, 0})
			rope := NewMaxDistance(anchor, mgl64.Vec3{}, body, tt.position, 2)

			var solver Solver
			solver.Solve([]Constraint{rope}, testDt, 10)

			if pulled := body.Velocity.X() < 0; pulled != tt.pulled {
				t.Errorf("velocity = %v, pulled = %v, want %v", body.Velocity, pulled, tt.pulled)
			}
			if !rope.Satisfied() {
				t.Error("rope should be satisfied once solved")
			}
			if !almostEqual(rope.CurrentDistance(), tt.position.Len(), 1e-12) {
				t.Errorf("CurrentDistance() = %v", rope.CurrentDistance())
			}
		})
	}
}

func TestMaxDistance_HoldsUnderGravity(t *testing.T) {
	body := createDynamicBody(mgl64.Vec3{0, -2, 0}, mgl64.Vec3{})
	rope := NewMaxDistance(body, body.Transform.Position, nil, mgl64.Vec3{}, 2)

	var solver Solver
	for i := 0; i < 120; i++ {
		step(&solver, []Constraint{rope}, mgl64.Vec3{0, -9.81, 0}, body)
	}

	if d := body.Transform.Position.Len(); d > 2.05 {
		t.Errorf("rope stretched to %v", d)
	}
}

func TestVelocity(t *testing.T) {
	body := createDynamicBody(mgl64.Vec3{}, mgl64.Vec3{})
	body.Transform.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	body.UpdateWorldInertia()

	linear := mgl64.Vec3{1, 2, 3}
	angular := mgl64.Vec3{0, 0, 1}
	drive := NewVelocity(body, &linear, &angular, BodyFrame)

	var solver Solver
	passes := solver.Solve([]Constraint{drive}, testDt, 10)

	if !vec3AlmostEqual(body.Velocity, mgl64.Vec3{-2, 1, 3}, 1e-9) {
		t.Errorf("Velocity = %v, want {-2 1 3}", body.Velocity)
	}
	if !vec3AlmostEqual(body.AngularVelocity, mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("AngularVelocity = %v, want {0 0 1}", body.AngularVelocity)
	}
	if passes != 2 {
		t.Errorf("passes = %d, want 2", passes)
	}

	// a nil target leaves that velocity alone
	body.AngularVelocity = mgl64.Vec3{5, 0, 0}
	drive.Angular = nil
	solver.Solve([]Constraint{drive}, testDt, 10)
	if body.AngularVelocity != (mgl64.Vec3{5, 0, 0}) {
		t.Errorf("AngularVelocity = %v, should be free", body.AngularVelocity)
	}
}

func TestHinge_KeepsAxis(t *testing.T) {
	frame := createStaticBody(mgl64.Vec3{})
	door := createDynamicBody(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})
	door.AngularVelocity = mgl64.Vec3{1, 0, 0}
	hinge := NewHinge(frame, door, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})

	var solver Solver
	solver.Solve([]Constraint{hinge}, testDt, 20)

	if math.Abs(door.AngularVelocity.X()) > 1e-6 || math.Abs(door.AngularVelocity.Y()) > 1e-6 {
		t.Errorf("AngularVelocity = %v, want rotation about z only", door.AngularVelocity)
	}
}

func TestHinge_Swing(t *testing.T) {
	frame := createStaticBody(mgl64.Vec3{})
	door := createDynamicBody(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})
	hinge := NewHinge(frame, door, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})

	var solver Solver
	lowest := 0.0
	for i := 0; i < 120; i++ {
		step(&solver, []Constraint{hinge}, mgl64.Vec3{0, -9.81, 0}, door)
		lowest = math.Min(lowest, door.Transform.Position.Y())
	}

	pa, pb := hinge.Pivots()
	if gap := pb.Sub(pa).Len(); gap > 0.05 {
		t.Errorf("pivots drifted %v apart", gap)
	}
	if axis := door.Transform.Rotate(mgl64.Vec3{0, 0, 1}); axis.Z() < 0.999 {
		t.Errorf("door axis = %v, want z", axis)
	}
	if lowest > -0.9 {
		t.Errorf("door should swing through the bottom, lowest %v", lowest)
	}
}

func TestHinge_Limits(t *testing.T) {
	frame := createStaticBody(mgl64.Vec3{})
	door := createDynamicBody(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})
	door.AngularVelocity = mgl64.Vec3{0, 0, 5}
	door.Velocity = mgl64.Vec3{0, 5, 0}
	hinge := NewHinge(frame, door, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	hinge.SetLimits(-0.1, 0.1)

	var solver Solver
	for i := 0; i < 60; i++ {
		step(&solver, []Constraint{hinge}, mgl64.Vec3{}, door)
		if math.Abs(hinge.Angle()) > 0.2 {
			t.Fatalf("step %d: angle %v beyond the limits", i, hinge.Angle())
		}
	}
}

func TestHinge_Damping(t *testing.T) {
	frame := createStaticBody(mgl64.Vec3{})
	wheel := createDynamicBody(mgl64.Vec3{}, mgl64.Vec3{})
	wheel.AngularVelocity = mgl64.Vec3{0, 0, 4}
	hinge := NewHinge(frame, wheel, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	hinge.Damping = 0.5

	var solver Solver
	solver.Solve([]Constraint{hinge}, testDt, 10)

	if !almostEqual(wheel.AngularVelocity.Z(), 2, 1e-9) {
		t.Errorf("spin = %v, want half of 4", wheel.AngularVelocity.Z())
	}
}

func TestSolver_Empty(t *testing.T) {
	var solver Solver
	if passes := solver.Solve(nil, testDt, 10); passes != 0 {
		t.Errorf("passes = %d, want 0", passes)
	}
	body := createDynamicBody(mgl64.Vec3{}, mgl64.Vec3{})
	if passes := solver.Solve([]Constraint{NewPoint(body, nil, mgl64.Vec3{})}, 0, 10); passes != 0 {
		t.Errorf("passes = %d for dt = 0, want 0", passes)
	}
}

func TestSolver_ColdStart(t *testing.T) {
	tests := []struct {
		name  string
		joint func(bob *actor.RigidBody) Constraint
	}{
		{"world point", func(bob *actor.RigidBody) Constraint {
			return NewWorldPoint(bob, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{})
		}},
		{"max distance", func(bob *actor.RigidBody) Constraint {
			return NewMaxDistance(bob, bob.Transform.Position, nil, mgl64.Vec3{}, 1)
		}},
		{"hinge", func(bob *actor.RigidBody) Constraint {
			return NewHinge(bob, nil, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bob := createDynamicBody(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{})
			constraints := []Constraint{tt.joint(bob)}

			var solver Solver
			for i := 0; i < 10; i++ {
				step(&solver, constraints, mgl64.Vec3{0, -9.81, 0}, bob)
			}

			// no passes: only the carried impulse reaches the bob
			bob.Velocity = mgl64.Vec3{}
			bob.AngularVelocity = mgl64.Vec3{}
			solver.Solve(constraints, testDt, 0)
			if bob.Velocity.Y() <= 0 {
				t.Fatalf("expected the carried impulse to hold the bob up, velocity %v", bob.Velocity)
			}

			bob.Velocity = mgl64.Vec3{}
			bob.AngularVelocity = mgl64.Vec3{}
			cold := Solver{ColdStart: true}
			cold.Solve(constraints, testDt, 0)
			if bob.Velocity.Len() > 1e-12 || bob.AngularVelocity.Len() > 1e-12 {
				t.Errorf("cold start should apply nothing, got %v / %v", bob.Velocity, bob.AngularVelocity)
			}
		})
	}
}
