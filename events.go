package gravel

import (
	"github.com/akmonengine/gravel/actor"
)

const (
	TRIGGER_ENTER EventType = iota
	COLLISION_ENTER
	TRIGGER_STAY
	COLLISION_STAY
	TRIGGER_EXIT
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
)

// pairKey orders two body ids so that (a, b) and (b, a) match.
type pairKey struct {
	lo, hi uint32
}

func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	if bodyB.ID < bodyA.ID {
		bodyA, bodyB = bodyB, bodyA
	}
	return pairKey{lo: bodyA.ID, hi: bodyB.ID}
}

type bodyPair struct {
	bodyA, bodyB *actor.RigidBody
}

func (p bodyPair) isTrigger() bool {
	return p.bodyA.IsTrigger || p.bodyB.IsTrigger
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Trigger events
type TriggerEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerEnterEvent) Type() EventType { return TRIGGER_ENTER }

type TriggerStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerStayEvent) Type() EventType { return TRIGGER_STAY }

type TriggerExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerExitEvent) Type() EventType { return TRIGGER_EXIT }

// Collision events
type CollisionEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers what happened during a step and dispatches it to the
// listeners once the step is over. Pairs and sleep states are tracked by
// body id.
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	// bodies touching during the previous and the current step
	previousActivePairs map[pairKey]bodyPair
	currentActivePairs  map[pairKey]bodyPair

	sleepStates map[uint32]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bodyPair),
		currentActivePairs:  make(map[pairKey]bodyPair),
		sleepStates:         make(map[uint32]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordPair marks two bodies as touching during the current step. Several
// primitive pairs of the same bodies count once.
func (e *Events) recordPair(bodyA, bodyB *actor.RigidBody) {
	key := makePairKey(bodyA, bodyB)
	if _, ok := e.currentActivePairs[key]; ok {
		return
	}
	if bodyB.ID < bodyA.ID {
		bodyA, bodyB = bodyB, bodyA
	}
	e.currentActivePairs[key] = bodyPair{bodyA: bodyA, bodyB: bodyB}
}

// forget drops every trace of a destroyed body, without exit events.
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.sleepStates, body.ID)
	for key := range e.previousActivePairs {
		if key.lo == body.ID || key.hi == body.ID {
			delete(e.previousActivePairs, key)
		}
	}
	for key := range e.currentActivePairs {
		if key.lo == body.ID || key.hi == body.ID {
			delete(e.currentActivePairs, key)
		}
	}
}

// processCollisionEvents compares the pairs of this step with those of the
// previous one to emit Enter, Stay and Exit events.
func (e *Events) processCollisionEvents() {
	for key, pair := range e.currentActivePairs {
		// both asleep: nothing new to report
		if pair.bodyA.IsImmovable() && pair.bodyB.IsImmovable() {
			continue
		}

		if _, ok := e.previousActivePairs[key]; ok {
			if pair.isTrigger() {
				e.buffer = append(e.buffer, TriggerStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			} else {
				e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			}
		} else {
			if pair.isTrigger() {
				e.buffer = append(e.buffer, TriggerEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			} else {
				e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			}
		}
	}

	for key, pair := range e.previousActivePairs {
		if _, ok := e.currentActivePairs[key]; ok {
			continue
		}
		// asleep pairs skip the narrow phase but still touch
		if pair.bodyA.IsImmovable() && pair.bodyB.IsImmovable() {
			e.currentActivePairs[key] = pair
			continue
		}
		if pair.isTrigger() {
			e.buffer = append(e.buffer, TriggerExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		trackedState, exists := e.sleepStates[body.ID]
		if !exists {
			e.sleepStates[body.ID] = body.IsSleeping
			continue
		}

		if !trackedState && body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: body})
			e.sleepStates[body.ID] = true
		} else if trackedState && !body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: body})
			e.sleepStates[body.ID] = false
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
