package constraint

import (
	"github.com/akmonengine/gravel/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Frame selects how Velocity targets are expressed.
type Frame uint8

const (
	WorldFrame Frame = iota
	BodyFrame
)

// Velocity drives a body to a target linear and/or angular velocity. A nil
// target leaves that part free.
type Velocity struct {
	Body    *actor.RigidBody
	Linear  *mgl64.Vec3
	Angular *mgl64.Vec3
	Frame   Frame

	linear, angular mgl64.Vec3
	satisfied       bool
}

func NewVelocity(body *actor.RigidBody, linear, angular *mgl64.Vec3, frame Frame) *Velocity {
	return &Velocity{Body: body, Linear: linear, Angular: angular, Frame: frame}
}

func (v *Velocity) Kind() Kind { return KindVelocity }

func (v *Velocity) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return v.Body, nil
}

func (v *Velocity) Satisfied() bool { return v.satisfied }

func (v *Velocity) constraint() {}

func (v *Velocity) PreApply(float64) {
	if v.Linear != nil {
		v.linear = *v.Linear
		if v.Frame == BodyFrame {
			v.linear = v.Body.Transform.Rotate(v.linear)
		}
	}
	if v.Angular != nil {
		v.angular = *v.Angular
		if v.Frame == BodyFrame {
			v.angular = v.Body.Transform.Rotate(v.angular)
		}
	}
	v.satisfied = false
}

// Apply sets the velocities directly; the impulse is the momentum change.
func (v *Velocity) Apply(float64) bool {
	if v.Body.IsImmovable() {
		v.satisfied = true
		return false
	}

	applied := false
	if v.Linear != nil {
		delta := v.linear.Sub(v.Body.Velocity)
		if delta.Len()*v.Body.Mass() > significantImpulse {
			v.Body.Velocity = v.linear
			applied = true
		}
	}
	if v.Angular != nil {
		delta := v.angular.Sub(v.Body.AngularVelocity)
		if v.Body.InertiaWorld().Mul3x1(delta).Len() > significantImpulse {
			v.Body.AngularVelocity = v.angular
			applied = true
		}
	}
	v.satisfied = !applied
	return applied
}
