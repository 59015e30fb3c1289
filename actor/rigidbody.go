// Package actor holds the rigid bodies moved by the solver.
package actor

import (
	"math"

	"github.com/akmonengine/gravel/collision"
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/internal/assert"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

func (t BodyType) String() string {
	if t == BodyTypeStatic {
		return "static"
	}
	return "dynamic"
}

// RigidBody represents a rigid body in the physics simulation. Its origin is
// its centre of mass.
type RigidBody struct {
	// ID is the handle assigned by the world, 0 until the body is created there.
	ID uint32

	// Spatial properties
	PreviousTransform geom.Transform
	Transform         geom.Transform

	Velocity        mgl64.Vec3 // m/s
	AngularVelocity mgl64.Vec3 // rad/s

	LinearDamping  float64 // 1/s, typical 0.01
	AngularDamping float64 // 1/s, typical 0.05

	BodyType BodyType
	// IsTrigger bodies report overlaps but are never pushed by contacts.
	IsTrigger bool

	IsSleeping bool
	SleepTimer float64

	// Skins are the collision shapes moving with the body.
	Skins []*collision.Skin

	mass                float64
	inverseMass         float64
	inertiaBody         mgl64.Mat3
	inverseInertiaBody  mgl64.Mat3
	inverseInertiaWorld mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3
}

// NewRigidBody creates a body of unit mass and inertia. Static bodies ignore
// their mass.
func NewRigidBody(transform geom.Transform, bodyType BodyType) *RigidBody {
	transform.Rotation = transform.Orientation()
	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		BodyType:          bodyType,
	}
	rb.SetMass(1)
	rb.SetBodyInertia(mgl64.Ident3())
	rb.UpdateWorldInertia()
	return rb
}

// AddSkin attaches a skin to the body and places it at the body transform.
func (rb *RigidBody) AddSkin(skin *collision.Skin) {
	skin.Owner = rb
	skin.SetTransforms(rb.PreviousTransform, rb.Transform)
	rb.Skins = append(rb.Skins, skin)
}

// RemoveSkin detaches a skin, reporting whether it belonged to the body.
func (rb *RigidBody) RemoveSkin(skin *collision.Skin) bool {
	for i, s := range rb.Skins {
		if s == skin {
			rb.Skins = append(rb.Skins[:i], rb.Skins[i+1:]...)
			skin.Owner = nil
			return true
		}
	}
	return false
}

// UpdateSkins moves the skins to the previous and current transforms, so their
// bounds cover the motion of the step.
func (rb *RigidBody) UpdateSkins() {
	for _, skin := range rb.Skins {
		skin.SetTransforms(rb.PreviousTransform, rb.Transform)
	}
}

// SetMass sets the mass in kg.
func (rb *RigidBody) SetMass(mass float64) {
	assert.That(mass > 0 && !math.IsInf(mass, 0), "actor: invalid mass %v", mass)
	rb.mass = mass
	rb.inverseMass = 1 / mass
}

// SetBodyInertia sets the inertia tensor in the body frame.
func (rb *RigidBody) SetBodyInertia(inertia mgl64.Mat3) {
	rb.inertiaBody = inertia
	if inertia.Det() == 0 {
		rb.inverseInertiaBody = mgl64.Mat3{}
		return
	}
	rb.inverseInertiaBody = inertia.Inv()
}

// SetMassFromSkins derives mass and inertia from the primitives of the skins
// at the given density, shifting each primitive inertia to the body origin.
// Static primitives carry no mass. It reports false, leaving the body
// unchanged, when no primitive has volume.
func (rb *RigidBody) SetMassFromSkins(density float64) bool {
	assert.That(density > 0, "actor: invalid density %v", density)

	var total float64
	var inertia mgl64.Mat3
	for _, skin := range rb.Skins {
		for i := 0; i < skin.NumPrimitives(); i++ {
			p := skin.Primitive(i)
			if p.Kind().IsStatic() {
				continue
			}
			mass := density * p.Volume()
			if mass <= 0 {
				continue
			}
			local := skin.PrimitiveLocal(i)
			r := local.Matrix()
			rotated := r.Mul3(p.Inertia(mass)).Mul3(r.Transpose())
			inertia = inertia.Add(rotated).Add(parallelAxis(mass, local.Position))
			total += mass
		}
	}
	if total <= 0 {
		return false
	}

	rb.SetMass(total)
	rb.SetBodyInertia(inertia)
	rb.UpdateWorldInertia()
	return true
}

// parallelAxis returns m(|d|²E - d dᵀ).
func parallelAxis(mass float64, d mgl64.Vec3) mgl64.Mat3 {
	outer := mgl64.Mat3{
		d[0] * d[0], d[1] * d[0], d[2] * d[0],
		d[0] * d[1], d[1] * d[1], d[2] * d[1],
		d[0] * d[2], d[1] * d[2], d[2] * d[2],
	}
	return mgl64.Ident3().Mul(d.LenSqr()).Sub(outer).Mul(mass)
}

func (rb *RigidBody) Mass() float64 {
	if rb.BodyType == BodyTypeStatic {
		return math.Inf(1)
	}
	return rb.mass
}

// InverseMass is 0 for immovable bodies.
func (rb *RigidBody) InverseMass() float64 {
	if rb.IsImmovable() {
		return 0
	}
	return rb.inverseMass
}

func (rb *RigidBody) BodyInertia() mgl64.Mat3 {
	return rb.inertiaBody
}

// InertiaWorld returns R * I_body * R^T.
func (rb *RigidBody) InertiaWorld() mgl64.Mat3 {
	r := rb.Transform.Matrix()
	return r.Mul3(rb.inertiaBody).Mul3(r.Transpose())
}

// InverseInertiaWorld returns the world inverse inertia computed by the last
// UpdateWorldInertia, zero for immovable bodies.
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	if rb.IsImmovable() {
		return mgl64.Mat3{}
	}
	return rb.inverseInertiaWorld
}

// UpdateWorldInertia recomputes R * I_body^-1 * R^T for the current orientation.
func (rb *RigidBody) UpdateWorldInertia() {
	r := rb.Transform.Matrix()
	rb.inverseInertiaWorld = r.Mul3(rb.inverseInertiaBody).Mul3(r.Transpose())
}

// IsImmovable reports whether the solver treats the body as fixed.
func (rb *RigidBody) IsImmovable() bool {
	return rb.BodyType == BodyTypeStatic || rb.IsSleeping
}

// AddForce accumulates a force through the centre of mass, in N.
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.Awake()
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
}

// AddTorque accumulates a torque, in N.m.
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.Awake()
	rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
}

// AddWorldForce accumulates a force applied at a world point.
func (rb *RigidBody) AddWorldForce(force, point mgl64.Vec3) {
	rb.AddForce(force)
	rb.AddTorque(point.Sub(rb.Transform.Position).Cross(force))
}

func (rb *RigidBody) Force() mgl64.Vec3 {
	return rb.accumulatedForce
}

func (rb *RigidBody) Torque() mgl64.Vec3 {
	return rb.accumulatedTorque
}

// ClearForces resets the force and torque accumulators.
func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// ApplyWorldImpulse changes the velocities as if impulse hit the body at a
// world point.
func (rb *RigidBody) ApplyWorldImpulse(impulse, point mgl64.Vec3) {
	if rb.IsImmovable() {
		return
	}
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.inverseMass))
	r := point.Sub(rb.Transform.Position)
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.inverseInertiaWorld.Mul3x1(r.Cross(impulse)))
}

// ApplyAngularImpulse changes the angular velocity by I_world^-1 * impulse.
func (rb *RigidBody) ApplyAngularImpulse(impulse mgl64.Vec3) {
	if rb.IsImmovable() {
		return
	}
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.inverseInertiaWorld.Mul3x1(impulse))
}

// VelocityAt returns the velocity of the body material at a world point.
func (rb *RigidBody) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Add(rb.AngularVelocity.Cross(point.Sub(rb.Transform.Position)))
}

// IntegrateVelocity applies gravity and the accumulated forces over dt.
func (rb *RigidBody) IntegrateVelocity(dt float64, gravity mgl64.Vec3) {
	if rb.IsImmovable() {
		return
	}

	acceleration := gravity.Add(rb.accumulatedForce.Mul(rb.inverseMass))
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.inverseInertiaWorld.Mul3x1(rb.accumulatedTorque).Mul(dt))

	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.LinearDamping * dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.AngularDamping * dt))
}

// IntegratePosition advances the transform with the current velocities and
// renormalises the orientation.
func (rb *RigidBody) IntegratePosition(dt float64) {
	if rb.IsImmovable() {
		return
	}

	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	rotation := rb.Transform.Orientation()
	omega := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omega.Mul(rotation).Scale(0.5)
	rb.Transform.Rotation = rotation.Add(qDot.Scale(dt)).Normalize()
}

// StorePreviousTransform snapshots the transform at the start of a step.
func (rb *RigidBody) StorePreviousTransform() {
	rb.PreviousTransform = rb.Transform
}

// TrySleep puts the body to sleep once it stayed slower than
// velocityThreshold for timeThreshold seconds. It reports whether the body
// fell asleep during this call.
func (rb *RigidBody) TrySleep(dt float64, timeThreshold float64, velocityThreshold float64) bool {
	if rb.IsImmovable() {
		return false
	}
	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.Sleep()
			return true
		}
		return false
	}
	rb.SleepTimer = 0
	return false
}

// Sleep stops the body until it is woken up.
func (rb *RigidBody) Sleep() {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
	rb.PreviousTransform = rb.Transform
	rb.UpdateSkins()
}

// Awake wakes the body up.
func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// SetActive wakes the body or puts it to sleep.
func (rb *RigidBody) SetActive(active bool) {
	if active {
		rb.Awake()
	} else {
		rb.Sleep()
	}
}

// IsActive reports whether a dynamic body is awake.
func (rb *RigidBody) IsActive() bool {
	return rb.BodyType == BodyTypeDynamic && !rb.IsSleeping
}

// KineticEnergy returns ½mv² + ½ωᵀIω, 0 for static bodies.
func (rb *RigidBody) KineticEnergy() float64 {
	if rb.BodyType == BodyTypeStatic {
		return 0
	}
	linear := 0.5 * rb.mass * rb.Velocity.LenSqr()
	angular := 0.5 * rb.AngularVelocity.Dot(rb.InertiaWorld().Mul3x1(rb.AngularVelocity))
	return linear + angular
}

// IsFinite reports whether the pose and the velocities hold no NaN or Inf.
func (rb *RigidBody) IsFinite() bool {
	q := rb.Transform.Orientation()
	return geom.IsFinite(rb.Transform.Position) &&
		geom.IsFinite(q.V) && !math.IsNaN(q.W) && !math.IsInf(q.W, 0) &&
		geom.IsFinite(rb.Velocity) &&
		geom.IsFinite(rb.AngularVelocity)
}

// Bounds returns the union of the skin bounds.
func (rb *RigidBody) Bounds() geom.AABox {
	box := geom.EmptyBox()
	for _, skin := range rb.Skins {
		box = box.AddBox(skin.Bounds())
	}
	return box
}

// PrimitiveCount is the number of primitives over all skins.
func (rb *RigidBody) PrimitiveCount() int {
	n := 0
	for _, skin := range rb.Skins {
		n += skin.NumPrimitives()
	}
	return n
}
