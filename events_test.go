package gravel

import (
	"testing"

	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/geom"
)

// createTestBody creates a minimal RigidBody for event testing
func createTestBody(id uint32, isTrigger, isSleeping bool) *actor.RigidBody {
	rb := actor.NewRigidBody(geom.NewTransform(), actor.BodyTypeDynamic)
	rb.ID = id
	rb.IsTrigger = isTrigger
	rb.IsSleeping = isSleeping
	return rb
}

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) countType(eventType EventType) int {
	n := 0
	for _, e := range ec.events {
		if e.Type() == eventType {
			n++
		}
	}
	return n
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	return ec.countType(eventType) > 0
}

func subscribeAll(events *Events, capture *eventCapture) {
	for eventType := TRIGGER_ENTER; eventType <= ON_WAKE; eventType++ {
		events.Subscribe(eventType, capture.capture)
	}
}

// =============================================================================
// Subscribe and Listeners Tests
// =============================================================================

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(COLLISION_ENTER, capture.capture)

	if len(events.listeners[COLLISION_ENTER]) != 1 {
		t.Errorf("Expected 1 listener for COLLISION_ENTER, got %d", len(events.listeners[COLLISION_ENTER]))
	}
}

func TestEvents_MultipleListeners(t *testing.T) {
	events := NewEvents()
	captures := []*eventCapture{{}, {}, {}}
	for _, c := range captures {
		events.Subscribe(COLLISION_ENTER, c.capture)
	}

	events.recordPair(createTestBody(1, false, false), createTestBody(2, false, false))
	events.flush()

	for i, c := range captures {
		if c.count() != 1 {
			t.Errorf("Capture %d expected 1 event, got %d", i, c.count())
		}
	}
}

// =============================================================================
// Pair Key Tests
// =============================================================================

func TestMakePairKey(t *testing.T) {
	a := createTestBody(7, false, false)
	b := createTestBody(3, false, false)
	c := createTestBody(9, false, false)

	if makePairKey(a, b) != makePairKey(b, a) {
		t.Error("Pair key should not depend on the order of the bodies")
	}
	if key := makePairKey(a, b); key.lo != 3 || key.hi != 7 {
		t.Errorf("Expected key (3, 7), got (%d, %d)", key.lo, key.hi)
	}
	if makePairKey(a, b) == makePairKey(a, c) {
		t.Error("Different pairs should have different keys")
	}
}

func TestEvents_RecordPair_Deduplicates(t *testing.T) {
	events := NewEvents()
	a := createTestBody(1, false, false)
	b := createTestBody(2, false, false)

	// several primitive pairs of the same two bodies
	events.recordPair(a, b)
	events.recordPair(b, a)
	events.recordPair(a, b)

	if len(events.currentActivePairs) != 1 {
		t.Errorf("Expected 1 pair recorded, got %d", len(events.currentActivePairs))
	}
	pair := events.currentActivePairs[makePairKey(a, b)]
	if pair.bodyA != a || pair.bodyB != b {
		t.Error("Recorded pair should be ordered by id")
	}
}

// =============================================================================
// Enter / Stay / Exit Tests
// =============================================================================

func TestEvents_Lifecycle(t *testing.T) {
	tests := []struct {
		name              string
		trigger           bool
		enter, stay, exit EventType
	}{
		{"collision", false, COLLISION_ENTER, COLLISION_STAY, COLLISION_EXIT},
		{"trigger", true, TRIGGER_ENTER, TRIGGER_STAY, TRIGGER_EXIT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := NewEvents()
			capture := &eventCapture{}
			subscribeAll(&events, capture)

			a := createTestBody(1, tt.trigger, false)
			b := createTestBody(2, false, false)

			// Frame 1: Enter
			events.recordPair(a, b)
			events.flush()
			if capture.count() != 1 || !capture.hasEventType(tt.enter) {
				t.Fatalf("Expected a single enter event, got %v", capture.events)
			}
			event := capture.events[0]
			if tt.trigger {
				if e := event.(TriggerEnterEvent); e.BodyA != a || e.BodyB != b {
					t.Error("TriggerEnterEvent should carry both bodies")
				}
			} else {
				if e := event.(CollisionEnterEvent); e.BodyA != a || e.BodyB != b {
					t.Error("CollisionEnterEvent should carry both bodies")
				}
			}
			capture.reset()

			// Frame 2: Stay
			events.recordPair(a, b)
			events.flush()
			if capture.count() != 1 || !capture.hasEventType(tt.stay) {
				t.Fatalf("Expected a single stay event, got %v", capture.events)
			}
			capture.reset()

			// Frame 3: Exit
			events.flush()
			if capture.count() != 1 || !capture.hasEventType(tt.exit) {
				t.Fatalf("Expected a single exit event, got %v", capture.events)
			}
			capture.reset()

			// Frame 4: nothing left
			events.flush()
			if capture.count() != 0 {
				t.Errorf("Expected no event, got %v", capture.events)
			}
		})
	}
}

func TestEvents_SleepingPairKeepsContact(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	subscribeAll(&events, capture)

	a := createTestBody(1, false, false)
	b := createTestBody(2, false, false)
	events.recordPair(a, b)
	events.flush()
	capture.reset()

	// both asleep: the narrow phase skips them, no exit is reported
	a.IsSleeping = true
	b.IsSleeping = true
	events.flush()
	events.flush()
	if capture.count() != 0 {
		t.Errorf("Expected no event while asleep, got %v", capture.events)
	}

	// woken and still touching
	a.IsSleeping = false
	b.IsSleeping = false
	events.recordPair(a, b)
	events.flush()
	if !capture.hasEventType(COLLISION_STAY) {
		t.Errorf("Expected COLLISION_STAY after waking, got %v", capture.events)
	}
}

func TestEvents_Forget(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	subscribeAll(&events, capture)

	a := createTestBody(1, false, false)
	b := createTestBody(2, false, false)
	events.recordPair(a, b)
	events.flush()
	events.processSleepEvents([]*actor.RigidBody{a, b})
	capture.reset()

	events.forget(a)
	events.flush()
	if capture.count() != 0 {
		t.Errorf("Destroyed bodies should not produce exit events, got %v", capture.events)
	}
	if _, ok := events.sleepStates[a.ID]; ok {
		t.Error("Sleep state of a destroyed body should be dropped")
	}
}

func TestEvents_MultipleFrames_EnterExitEnter(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	subscribeAll(&events, capture)

	a := createTestBody(1, false, false)
	b := createTestBody(2, false, false)

	for frame := 0; frame < 3; frame++ {
		events.recordPair(a, b)
		events.flush()
		events.flush()
	}

	if n := capture.countType(COLLISION_ENTER); n != 3 {
		t.Errorf("Expected 3 COLLISION_ENTER, got %d", n)
	}
	if n := capture.countType(COLLISION_EXIT); n != 3 {
		t.Errorf("Expected 3 COLLISION_EXIT, got %d", n)
	}
}

// =============================================================================
// Sleep/Wake Events Tests
// =============================================================================

func TestEvents_SleepWake(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	subscribeAll(&events, capture)

	body := createTestBody(1, false, false)
	bodies := []*actor.RigidBody{body}

	// first sighting only records the state
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 0 {
		t.Fatalf("Expected no event on first sighting, got %v", capture.events)
	}

	body.IsSleeping = true
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 1 || !capture.hasEventType(ON_SLEEP) {
		t.Fatalf("Expected ON_SLEEP, got %v", capture.events)
	}
	if e := capture.events[0].(SleepEvent); e.Body != body {
		t.Error("SleepEvent should carry the body")
	}
	capture.reset()

	// no repeat while the state holds
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 0 {
		t.Errorf("Expected no event, got %v", capture.events)
	}

	body.IsSleeping = false
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 1 || !capture.hasEventType(ON_WAKE) {
		t.Errorf("Expected ON_WAKE, got %v", capture.events)
	}
}

func TestEvents_Flush_ClearsBuffer(t *testing.T) {
	events := NewEvents()
	events.recordPair(createTestBody(1, false, false), createTestBody(2, false, false))
	events.flush()

	if len(events.buffer) != 0 {
		t.Errorf("Expected empty buffer after flush, got %d", len(events.buffer))
	}
}

func TestEvents_NoListeners(t *testing.T) {
	events := NewEvents()
	events.recordPair(createTestBody(1, true, false), createTestBody(2, false, false))
	// must not panic without listeners
	events.flush()
}
