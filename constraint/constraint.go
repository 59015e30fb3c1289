// Package constraint resolves contacts and joints with sequential impulses.
//
// Every constraint follows the same contract: PreApply computes the geometry,
// the effective masses and the velocity targets for the step and applies the
// warm-start impulses, then Apply runs one Gauss-Seidel correction.
package constraint

import (
	"math"

	"github.com/akmonengine/gravel/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind tags the closed set of constraints.
type Kind uint8

const (
	KindContact Kind = iota
	KindPoint
	KindWorldPoint
	KindMaxDistance
	KindVelocity
	KindHinge
)

var kindNames = [...]string{"contact", "point", "worldpoint", "maxdistance", "velocity", "hinge"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type Constraint interface {
	Kind() Kind
	// Bodies returns the constrained bodies; B is nil when A is held
	// against the world.
	Bodies() (a, b *actor.RigidBody)
	PreApply(dt float64)
	// Apply reports whether it applied a significant impulse.
	Apply(dt float64) bool
	// Satisfied reports whether the last Apply left the constraint alone.
	Satisfied() bool

	constraint()
}

const (
	// DefaultBaumgarte is the fraction of the position error fed back as
	// velocity every step.
	DefaultBaumgarte = 0.2

	// impulses below this do not keep the solver iterating
	significantImpulse = 1e-6

	// cap on the velocity a position error may induce, m/s
	maxBiasSpeed = 10.0
)

// Settings tune the contact constraints.
type Settings struct {
	Baumgarte float64
	// Slop is the penetration tolerated without correction, in m.
	Slop float64
	// RestitutionThreshold is the closing speed below which contacts do not
	// bounce, in m/s.
	RestitutionThreshold float64
	// StaticFrictionSpeed is the sliding speed below which static friction
	// applies, in m/s.
	StaticFrictionSpeed float64
	WarmStart           bool
}

func DefaultSettings() Settings {
	return Settings{
		Baumgarte:            DefaultBaumgarte,
		Slop:                 0.005,
		RestitutionThreshold: 0.5,
		StaticFrictionSpeed:  0.1,
		WarmStart:            true,
	}
}

// warmStarted constraints carry their accumulated impulse over to the next
// step and re-apply it in PreApply.
type warmStarted interface {
	resetImpulses()
}

// Solver runs constraints in insertion order.
type Solver struct {
	// ColdStart drops the impulses joints kept from the previous step.
	ColdStart bool

	passes int
}

// Solve calls PreApply on every constraint, then up to iterations passes of
// Apply, stopping early once a full pass applies no significant impulse. It
// returns the number of passes run.
func (s *Solver) Solve(constraints []Constraint, dt float64, iterations int) int {
	s.passes = 0
	if dt <= 0 || len(constraints) == 0 {
		return 0
	}

	for _, c := range constraints {
		if w, ok := c.(warmStarted); ok && s.ColdStart {
			w.resetImpulses()
		}
		c.PreApply(dt)
	}
	for s.passes < iterations {
		s.passes++
		active := false
		for _, c := range constraints {
			if c.Apply(dt) {
				active = true
			}
		}
		if !active {
			break
		}
	}
	return s.passes
}

// Passes returns the number of passes of the last Solve.
func (s *Solver) Passes() int {
	return s.passes
}

func invertOrZero(x float64) float64 {
	if x <= 1e-12 {
		return 0
	}
	return 1 / x
}

func clampBias(v float64) float64 {
	return math.Max(-maxBiasSpeed, math.Min(maxBiasSpeed, v))
}

// angularMass returns the inverse of axis·(Ia⁻¹+Ib⁻¹)·axis, 0 when no body
// can rotate about axis.
func angularMass(a, b *actor.RigidBody, axis mgl64.Vec3) float64 {
	k := a.InverseInertiaWorld().Mul3x1(axis).Dot(axis)
	if b != nil {
		k += b.InverseInertiaWorld().Mul3x1(axis).Dot(axis)
	}
	return invertOrZero(k)
}

func applyAngular(a, b *actor.RigidBody, impulse mgl64.Vec3) {
	a.ApplyAngularImpulse(impulse.Mul(-1))
	if b != nil {
		b.ApplyAngularImpulse(impulse)
	}
}

func relativeAngularVelocity(a, b *actor.RigidBody) mgl64.Vec3 {
	w := a.AngularVelocity.Mul(-1)
	if b != nil {
		w = w.Add(b.AngularVelocity)
	}
	return w
}
