package constraint

import (
	"math"

	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Hinge lets B rotate relative to A about one axis through a pivot, like a
// door. With a nil B the hinge is fixed in the world.
type Hinge struct {
	pivot pointJoint

	// axis and a reference direction orthogonal to it, in each body frame
	axisA, axisB mgl64.Vec3
	refA, refB   mgl64.Vec3

	// Damping is the fraction of the relative spin about the axis removed
	// every step, in [0, 1].
	Damping float64

	limited      bool
	lower, upper float64

	// refreshed by PreApply
	worldAxis    mgl64.Vec3
	perp1, perp2 mgl64.Vec3
	perpMass     [2]float64
	perpBias     [2]float64
	perpImpulse  [2]float64
	axialMass    float64
	angle        float64
	limitBias    float64
	limitImpulse float64
	limitActive  int // -1 lower, 0 none, +1 upper
	satisfied    bool
}

// NewHinge joins a and b at the world point pivot, free to turn about the
// world direction axis.
func NewHinge(a, b *actor.RigidBody, pivot, axis mgl64.Vec3) *Hinge {
	axis = geom.SafeNormalize(axis)
	ref, _ := geom.TangentBasis(axis)

	h := &Hinge{
		pivot: pointJoint{
			a:         newAnchor(a, pivot),
			b:         newAnchor(b, pivot),
			Baumgarte: DefaultBaumgarte,
		},
		axisA: a.Transform.InverseRotate(axis),
		refA:  a.Transform.InverseRotate(ref),
		axisB: axis,
		refB:  ref,
	}
	if b != nil {
		h.axisB = b.Transform.InverseRotate(axis)
		h.refB = b.Transform.InverseRotate(ref)
	}
	return h
}

// SetLimits bounds the hinge angle to [lower, upper] radians, measured from
// the pose at creation.
func (h *Hinge) SetLimits(lower, upper float64) {
	h.limited = true
	h.lower = lower
	h.upper = upper
}

func (h *Hinge) ClearLimits() {
	h.limited = false
}

// Angle returns the rotation of B relative to A about the axis at the last
// PreApply.
func (h *Hinge) Angle() float64 {
	return h.angle
}

// Pivots returns the world positions of the pivot in A and in B.
func (h *Hinge) Pivots() (mgl64.Vec3, mgl64.Vec3) {
	return h.pivot.a.world, h.pivot.b.world
}

func (h *Hinge) Kind() Kind { return KindHinge }

func (h *Hinge) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return h.pivot.a.body, h.pivot.b.body
}

func (h *Hinge) Satisfied() bool { return h.satisfied }

func (h *Hinge) constraint() {}

func (h *Hinge) worldDirection(body *actor.RigidBody, local mgl64.Vec3) mgl64.Vec3 {
	if body == nil {
		return local
	}
	return body.Transform.Rotate(local)
}

func (h *Hinge) resetImpulses() {
	h.pivot.resetImpulses()
	h.perpImpulse = [2]float64{}
	h.limitImpulse = 0
}

func (h *Hinge) PreApply(dt float64) {
	h.pivot.preApply(dt)

	a, b := h.Bodies()
	axisA := h.worldDirection(a, h.axisA)
	axisB := h.worldDirection(b, h.axisB)
	h.worldAxis = axisA
	h.perp1, h.perp2 = geom.TangentBasis(axisA)

	// B's axis drifting away from A's
	drift := axisA.Cross(axisB)
	for i, perp := range [2]mgl64.Vec3{h.perp1, h.perp2} {
		h.perpMass[i] = angularMass(a, b, perp)
		h.perpBias[i] = clampBias(h.pivot.Baumgarte / dt * drift.Dot(perp))
		applyAngular(a, b, perp.Mul(h.perpImpulse[i]))
	}

	h.axialMass = angularMass(a, b, axisA)

	refA := h.worldDirection(a, h.refA)
	refB := h.worldDirection(b, h.refB)
	h.angle = math.Atan2(refA.Cross(refB).Dot(axisA), refA.Dot(refB))

	h.limitActive = 0
	if h.limited {
		switch {
		case h.angle < h.lower:
			h.limitActive = -1
			h.limitBias = clampBias(h.pivot.Baumgarte / dt * (h.angle - h.lower))
		case h.angle > h.upper:
			h.limitActive = 1
			h.limitBias = clampBias(h.pivot.Baumgarte / dt * (h.angle - h.upper))
		}
	}
	if h.limitActive == 0 {
		h.limitImpulse = 0
	} else {
		applyAngular(a, b, axisA.Mul(h.limitImpulse))
	}

	if h.Damping > 0 && h.axialMass > 0 {
		spin := relativeAngularVelocity(a, b).Dot(axisA)
		applyAngular(a, b, axisA.Mul(-geom.Clamp(h.Damping, 0, 1)*spin*h.axialMass))
	}
	h.satisfied = false
}

func (h *Hinge) Apply(float64) bool {
	a, b := h.Bodies()
	applied := h.pivot.apply()

	for i, perp := range [2]mgl64.Vec3{h.perp1, h.perp2} {
		if h.perpMass[i] == 0 {
			continue
		}
		cdot := relativeAngularVelocity(a, b).Dot(perp)
		lambda := -h.perpMass[i] * (cdot + h.perpBias[i])
		if math.Abs(lambda) > significantImpulse {
			h.perpImpulse[i] += lambda
			applyAngular(a, b, perp.Mul(lambda))
			applied = true
		}
	}

	if h.limitActive != 0 && h.axialMass > 0 {
		cdot := relativeAngularVelocity(a, b).Dot(h.worldAxis)
		lambda := -h.axialMass * (cdot + h.limitBias)
		old := h.limitImpulse
		if h.limitActive < 0 {
			h.limitImpulse = math.Max(old+lambda, 0)
		} else {
			h.limitImpulse = math.Min(old+lambda, 0)
		}
		lambda = h.limitImpulse - old
		if math.Abs(lambda) > significantImpulse {
			applyAngular(a, b, h.worldAxis.Mul(lambda))
			applied = true
		}
	}

	h.satisfied = !applied
	return applied
}
