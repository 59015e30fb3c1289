package gravel

import (
	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/collision"
)

// Observer is told about the outcome of every step. It must not modify the
// world from its callbacks.
type Observer interface {
	// OnContact is called once per contact point resolved by the step, with
	// the impulses the solver accumulated.
	OnContact(info *collision.Info, point *collision.ContactPoint)
	// OnBodyUpdated is called once per step for every body created in the
	// world, sleeping and static ones included, after its pose is final.
	OnBodyUpdated(body *actor.RigidBody)
}
