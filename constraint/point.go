package constraint

import (
	"math"

	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// anchor is a point fixed in a body, or in the world when body is nil.
type anchor struct {
	body  *actor.RigidBody
	local mgl64.Vec3

	// refreshed by update
	r     mgl64.Vec3
	world mgl64.Vec3
}

func newAnchor(body *actor.RigidBody, world mgl64.Vec3) anchor {
	if body == nil {
		return anchor{local: world, world: world}
	}
	return anchor{body: body, local: body.Transform.ApplyInverse(world)}
}

func (a *anchor) update() {
	if a.body == nil {
		a.world = a.local
		return
	}
	a.r = a.body.Transform.Rotate(a.local)
	a.world = a.body.Transform.Position.Add(a.r)
}

func (a *anchor) velocity() mgl64.Vec3 {
	if a.body == nil {
		return mgl64.Vec3{}
	}
	return a.body.Velocity.Add(a.body.AngularVelocity.Cross(a.r))
}

func (a *anchor) applyImpulse(impulse mgl64.Vec3) {
	if a.body != nil {
		a.body.ApplyWorldImpulse(impulse, a.world)
	}
}

// massMatrix returns the response of the anchor velocity to an impulse at
// the anchor: m⁻¹E - [r]ₓ I⁻¹ [r]ₓ.
func (a *anchor) massMatrix() mgl64.Mat3 {
	if a.body == nil {
		return mgl64.Mat3{}
	}
	skew := geom.Skew(a.r)
	return mgl64.Ident3().Mul(a.body.InverseMass()).Sub(skew.Mul3(a.body.InverseInertiaWorld()).Mul3(skew))
}

// pointJoint makes two anchors coincide.
type pointJoint struct {
	a, b anchor
	// Baumgarte is the fraction of the gap closed per step.
	Baumgarte float64

	mass      mgl64.Mat3
	bias      mgl64.Vec3
	impulse   mgl64.Vec3
	satisfied bool
}

func (j *pointJoint) preApply(dt float64) {
	j.a.update()
	j.b.update()

	k := j.a.massMatrix().Add(j.b.massMatrix())
	if math.Abs(k.Det()) < 1e-12 {
		j.mass = mgl64.Mat3{}
	} else {
		j.mass = k.Inv()
	}

	gap := j.b.world.Sub(j.a.world)
	j.bias = gap.Mul(j.Baumgarte / dt)
	if l := j.bias.Len(); l > maxBiasSpeed {
		j.bias = j.bias.Mul(maxBiasSpeed / l)
	}

	// warm start with the impulse of the previous step
	j.a.applyImpulse(j.impulse.Mul(-1))
	j.b.applyImpulse(j.impulse)
	j.satisfied = false
}

func (j *pointJoint) resetImpulses() {
	j.impulse = mgl64.Vec3{}
}

func (j *pointJoint) apply() bool {
	cdot := j.b.velocity().Sub(j.a.velocity())
	lambda := j.mass.Mul3x1(cdot.Add(j.bias)).Mul(-1)

	j.satisfied = lambda.Len() <= significantImpulse
	if j.satisfied {
		return false
	}
	j.impulse = j.impulse.Add(lambda)
	j.a.applyImpulse(lambda.Mul(-1))
	j.b.applyImpulse(lambda)
	return true
}

// Point joins two bodies at a shared point, like a ball-and-socket.
type Point struct {
	pointJoint
}

// NewPoint joins a and b at the world point pivot.
func NewPoint(a, b *actor.RigidBody, pivot mgl64.Vec3) *Point {
	return &Point{pointJoint{
		a:         newAnchor(a, pivot),
		b:         newAnchor(b, pivot),
		Baumgarte: DefaultBaumgarte,
	}}
}

func (p *Point) Kind() Kind { return KindPoint }
func (p *Point) Bodies() (*actor.RigidBody, *actor.RigidBody) { return p.a.body, p.b.body }
func (p *Point) PreApply(dt float64) { p.preApply(dt) }
func (p *Point) Apply(float64) bool { return p.apply() }
func (p *Point) Satisfied() bool { return p.satisfied }
func (p *Point) constraint() {}

// WorldPoint pins a point of a body to a point in the world.
type WorldPoint struct {
	pointJoint
}

// NewWorldPoint pins the body point currently at local coordinates local to
// the world point target.
func NewWorldPoint(body *actor.RigidBody, local, target mgl64.Vec3) *WorldPoint {
	return &WorldPoint{pointJoint{
		a:         anchor{body: body, local: local},
		b:         newAnchor(nil, target),
		Baumgarte: DefaultBaumgarte,
	}}
}

// SetTarget moves the world point.
func (w *WorldPoint) SetTarget(target mgl64.Vec3) {
	w.b = newAnchor(nil, target)
}

func (w *WorldPoint) Target() mgl64.Vec3 {
	return w.b.local
}

func (w *WorldPoint) Kind() Kind { return KindWorldPoint }
func (w *WorldPoint) Bodies() (*actor.RigidBody, *actor.RigidBody) { return w.a.body, nil }
func (w *WorldPoint) PreApply(dt float64) { w.preApply(dt) }
func (w *WorldPoint) Apply(float64) bool { return w.apply() }
func (w *WorldPoint) Satisfied() bool { return w.satisfied }
func (w *WorldPoint) constraint() {}
