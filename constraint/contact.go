package constraint

import (
	"math"

	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/collision"
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/material"
	"github.com/go-gl/mathgl/mgl64"
)

type contactPoint struct {
	rA, rB             mgl64.Vec3
	tangent1, tangent2 mgl64.Vec3

	normalMass   float64
	tangentMass1 float64
	tangentMass2 float64

	// separating speed the normal impulse aims for
	target   float64
	friction float64

	normalImpulse   float64
	tangentImpulse1 float64
	tangentImpulse2 float64
}

// Contact keeps two bodies from interpenetrating. Points follow the
// collision convention: normals point from A to B and the accumulated
// impulses are those applied to B.
type Contact struct {
	BodyA, BodyB *actor.RigidBody
	Points       []collision.ContactPoint
	Material     material.PairProperties
	Settings     *Settings

	state     []contactPoint
	satisfied bool
}

// NewContact builds a contact from a narrow-phase result. The points are
// copied, with the impulses they carry used for warm starting.
func NewContact(a, b *actor.RigidBody, info *collision.Info, settings *Settings) *Contact {
	c := &Contact{}
	c.Reset(a, b, info, settings)
	return c
}

// Reset reuses the contact for another narrow-phase result.
func (c *Contact) Reset(a, b *actor.RigidBody, info *collision.Info, settings *Settings) {
	c.BodyA = a
	c.BodyB = b
	c.Points = append(c.Points[:0], info.Points...)
	c.Material = info.Material
	c.Settings = settings
	c.satisfied = false
}

func (c *Contact) Kind() Kind { return KindContact }

func (c *Contact) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return c.BodyA, c.BodyB
}

func (c *Contact) Satisfied() bool { return c.satisfied }

func (c *Contact) constraint() {}

func (c *Contact) PreApply(dt float64) {
	settings := c.Settings
	if settings == nil {
		defaults := DefaultSettings()
		settings = &defaults
		c.Settings = settings
	}

	if cap(c.state) < len(c.Points) {
		c.state = make([]contactPoint, len(c.Points))
	}
	c.state = c.state[:len(c.Points)]

	a, b := c.BodyA, c.BodyB
	invMassA, invMassB := a.InverseMass(), b.InverseMass()
	invIA, invIB := a.InverseInertiaWorld(), b.InverseInertiaWorld()

	for i := range c.Points {
		p := &c.Points[i]
		s := &c.state[i]
		n := p.Normal

		s.rA = p.Position.Sub(a.Transform.Position)
		s.rB = p.Position.Sub(b.Transform.Position)
		s.tangent1, s.tangent2 = geom.TangentBasis(n)

		s.normalMass = effectiveMass(invMassA, invMassB, invIA, invIB, s.rA, s.rB, n)
		s.tangentMass1 = effectiveMass(invMassA, invMassB, invIA, invIB, s.rA, s.rB, s.tangent1)
		s.tangentMass2 = effectiveMass(invMassA, invMassB, invIA, invIB, s.rA, s.rB, s.tangent2)

		relative := b.VelocityAt(p.Position).Sub(a.VelocityAt(p.Position))
		vn := relative.Dot(n)

		// Baumgarte feedback on the penetration beyond slop
		s.target = clampBias(settings.Baumgarte / dt * math.Max(p.Depth-settings.Slop, 0))
		if vn < -settings.RestitutionThreshold {
			s.target = math.Max(s.target, -c.Material.Restitution*vn)
		}

		sliding := relative.Sub(n.Mul(vn)).Len()
		s.friction = c.Material.DynamicFriction
		if sliding < settings.StaticFrictionSpeed {
			s.friction = c.Material.StaticFriction
		}

		if settings.WarmStart {
			s.normalImpulse = p.NormalImpulse
			s.tangentImpulse1 = p.FrictionImpulse.Dot(s.tangent1)
			s.tangentImpulse2 = p.FrictionImpulse.Dot(s.tangent2)
			impulse := n.Mul(s.normalImpulse).Add(s.tangent1.Mul(s.tangentImpulse1)).Add(s.tangent2.Mul(s.tangentImpulse2))
			c.applyImpulse(p.Position, impulse)
		} else {
			s.normalImpulse = 0
			s.tangentImpulse1 = 0
			s.tangentImpulse2 = 0
		}
	}
	c.satisfied = false
}

func (c *Contact) Apply(dt float64) bool {
	a, b := c.BodyA, c.BodyB
	applied := false

	for i := range c.Points {
		p := &c.Points[i]
		s := &c.state[i]
		n := p.Normal

		if s.normalMass > 0 {
			vn := b.VelocityAt(p.Position).Sub(a.VelocityAt(p.Position)).Dot(n)
			lambda := s.normalMass * (s.target - vn)
			old := s.normalImpulse
			s.normalImpulse = math.Max(old+lambda, 0)
			lambda = s.normalImpulse - old
			if math.Abs(lambda) > significantImpulse {
				c.applyImpulse(p.Position, n.Mul(lambda))
				applied = true
			}
		}

		// Coulomb cone approximated by a disc of radius μ·λn
		maxFriction := s.friction * s.normalImpulse
		relative := b.VelocityAt(p.Position).Sub(a.VelocityAt(p.Position))
		old1, old2 := s.tangentImpulse1, s.tangentImpulse2
		if s.tangentMass1 > 0 {
			s.tangentImpulse1 -= s.tangentMass1 * relative.Dot(s.tangent1)
		}
		if s.tangentMass2 > 0 {
			s.tangentImpulse2 -= s.tangentMass2 * relative.Dot(s.tangent2)
		}
		if length := math.Hypot(s.tangentImpulse1, s.tangentImpulse2); length > maxFriction {
			scale := 0.0
			if length > 0 {
				scale = maxFriction / length
			}
			s.tangentImpulse1 *= scale
			s.tangentImpulse2 *= scale
		}
		d1, d2 := s.tangentImpulse1-old1, s.tangentImpulse2-old2
		if math.Abs(d1) > significantImpulse || math.Abs(d2) > significantImpulse {
			c.applyImpulse(p.Position, s.tangent1.Mul(d1).Add(s.tangent2.Mul(d2)))
			applied = true
		}

		p.NormalImpulse = s.normalImpulse
		p.FrictionImpulse = s.tangent1.Mul(s.tangentImpulse1).Add(s.tangent2.Mul(s.tangentImpulse2))
	}

	c.satisfied = !applied
	return applied
}

// applyImpulse pushes B by impulse and A by its opposite.
func (c *Contact) applyImpulse(point, impulse mgl64.Vec3) {
	c.BodyA.ApplyWorldImpulse(impulse.Mul(-1), point)
	c.BodyB.ApplyWorldImpulse(impulse, point)
}

// effectiveMass returns 1 / (mA⁻¹ + mB⁻¹ + (rA×d)·IA⁻¹(rA×d) + (rB×d)·IB⁻¹(rB×d)).
func effectiveMass(invMassA, invMassB float64, invIA, invIB mgl64.Mat3, rA, rB, d mgl64.Vec3) float64 {
	rAxd := rA.Cross(d)
	rBxd := rB.Cross(d)
	k := invMassA + invMassB + invIA.Mul3x1(rAxd).Dot(rAxd) + invIB.Mul3x1(rBxd).Dot(rBxd)
	return invertOrZero(k)
}
