package constraint

import (
	"math"

	"github.com/akmonengine/gravel/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxDistance keeps two anchors no further apart than Distance, like a rope.
// With a nil second body the anchor is fixed in the world.
type MaxDistance struct {
	Distance  float64
	Baumgarte float64

	a, b anchor

	normal    mgl64.Vec3
	mass      float64
	bias      float64
	impulse   float64
	satisfied bool
}

// NewMaxDistance ties the world points pivotA of a and pivotB of b.
func NewMaxDistance(a *actor.RigidBody, pivotA mgl64.Vec3, b *actor.RigidBody, pivotB mgl64.Vec3, distance float64) *MaxDistance {
	return &MaxDistance{
		Distance:  distance,
		Baumgarte: DefaultBaumgarte,
		a:         newAnchor(a, pivotA),
		b:         newAnchor(b, pivotB),
	}
}

func (m *MaxDistance) Kind() Kind { return KindMaxDistance }

func (m *MaxDistance) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return m.a.body, m.b.body
}

func (m *MaxDistance) Satisfied() bool { return m.satisfied }

func (m *MaxDistance) constraint() {}

// CurrentDistance returns the distance between the anchors at the last PreApply.
func (m *MaxDistance) CurrentDistance() float64 {
	return m.b.world.Sub(m.a.world).Len()
}

func (m *MaxDistance) resetImpulses() {
	m.impulse = 0
}

func (m *MaxDistance) PreApply(dt float64) {
	m.a.update()
	m.b.update()

	delta := m.b.world.Sub(m.a.world)
	length := delta.Len()
	if length < 1e-9 {
		// coincident anchors cannot violate the limit
		m.mass = 0
		m.impulse = 0
		return
	}
	m.normal = delta.Mul(1 / length)

	k := 0.0
	for _, an := range [2]*anchor{&m.a, &m.b} {
		if an.body == nil {
			continue
		}
		rxn := an.r.Cross(m.normal)
		k += an.body.InverseMass() + an.body.InverseInertiaWorld().Mul3x1(rxn).Dot(rxn)
	}
	m.mass = invertOrZero(k)

	// slack lets the anchors close in freely up to the limit within this step
	violation := length - m.Distance
	if violation > 0 {
		m.bias = clampBias(m.Baumgarte / dt * violation)
	} else {
		m.bias = violation / dt
	}

	impulse := m.normal.Mul(m.impulse)
	m.a.applyImpulse(impulse.Mul(-1))
	m.b.applyImpulse(impulse)
	m.satisfied = false
}

func (m *MaxDistance) Apply(float64) bool {
	if m.mass == 0 {
		m.satisfied = true
		return false
	}

	cdot := m.b.velocity().Sub(m.a.velocity()).Dot(m.normal)
	lambda := -m.mass * (cdot + m.bias)
	old := m.impulse
	// the rope only pulls
	m.impulse = math.Min(old+lambda, 0)
	lambda = m.impulse - old

	m.satisfied = math.Abs(lambda) <= significantImpulse
	if m.satisfied {
		return false
	}
	impulse := m.normal.Mul(lambda)
	m.a.applyImpulse(impulse.Mul(-1))
	m.b.applyImpulse(impulse)
	return true
}
