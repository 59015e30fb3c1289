package gravel

import (
	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/collision"
	"github.com/akmonengine/gravel/constraint"
)

// matchDistance is how far a contact point may move between two steps and
// still inherit the impulses of its predecessor, in m.
const matchDistance = 0.05

// contactCache keeps the points of the previous step, impulses included, by
// primitive pair. Points are stored in key order: A is the skin with the
// lower handle.
type contactCache struct {
	previous map[collision.PairKey][]collision.ContactPoint
	current  map[collision.PairKey][]collision.ContactPoint
	used     []bool
}

func newContactCache() contactCache {
	return contactCache{
		previous: make(map[collision.PairKey][]collision.ContactPoint),
		current:  make(map[collision.PairKey][]collision.ContactPoint),
	}
}

// seed copies onto each new point the impulses of the nearest unused cached
// point of the same pair, and returns how many points were matched.
func (c *contactCache) seed(info *collision.Info) int {
	key := info.Key()
	cached, ok := c.previous[key]
	if !ok {
		return 0
	}
	flipped := key.Flipped(info.SkinA)

	if cap(c.used) < len(cached) {
		c.used = make([]bool, len(cached))
	}
	c.used = c.used[:len(cached)]
	clear(c.used)

	matched := 0
	for i := range info.Points {
		p := &info.Points[i]
		best, bestDistance := -1, matchDistance*matchDistance
		for j := range cached {
			if c.used[j] {
				continue
			}
			if d := cached[j].Position.Sub(p.Position).LenSqr(); d < bestDistance {
				best, bestDistance = j, d
			}
		}
		if best < 0 {
			continue
		}
		c.used[best] = true
		p.NormalImpulse = cached[best].NormalImpulse
		p.FrictionImpulse = cached[best].FrictionImpulse
		if flipped {
			p.FrictionImpulse = p.FrictionImpulse.Mul(-1)
		}
		matched++
	}
	return matched
}

// store records the solved points of a contact for the next step.
func (c *contactCache) store(info *collision.Info) {
	key := info.Key()
	points := append(c.current[key][:0], info.Points...)
	if key.Flipped(info.SkinA) {
		for i := range points {
			points[i].Normal = points[i].Normal.Mul(-1)
			points[i].FrictionImpulse = points[i].FrictionImpulse.Mul(-1)
		}
	}
	c.current[key] = points
}

// swap makes the stored points the reference of the next step.
func (c *contactCache) swap() {
	c.previous, c.current = c.current, c.previous
	clear(c.current)
}

func (c *contactCache) reset() {
	clear(c.previous)
	clear(c.current)
	c.used = nil
}

func (c *contactCache) len() int {
	return len(c.previous)
}

// ownerOf returns the body owning a skin registered by the world.
func ownerOf(skin *collision.Skin) *actor.RigidBody {
	body, _ := skin.Owner.(*actor.RigidBody)
	return body
}

// pairFilter skips the pairs no step could change: skins of the same body,
// and bodies that are both static or asleep.
func pairFilter(a, b *collision.Skin) bool {
	bodyA, bodyB := ownerOf(a), ownerOf(b)
	if bodyA == nil || bodyB == nil || bodyA == bodyB {
		return false
	}
	return !(bodyA.IsImmovable() && bodyB.IsImmovable())
}

// onCollision turns one narrow-phase result into a contact constraint, or
// only into an event for triggers.
func (w *World) onCollision(info *collision.Info) {
	bodyA, bodyB := ownerOf(info.SkinA), ownerOf(info.SkinB)
	w.Events.recordPair(bodyA, bodyB)
	w.stats.ContactPoints += len(info.Points)

	w.wakeOnTouch(bodyA, bodyB, info)
	w.wakeOnTouch(bodyB, bodyA, info)

	if bodyA.IsTrigger || bodyB.IsTrigger {
		return
	}

	if w.settings.WarmStart {
		w.stats.WarmStarted += w.cache.seed(info)
	}

	var contact *constraint.Contact
	if n := len(w.contacts); n < len(w.contactPool) {
		contact = w.contactPool[n]
		contact.Reset(bodyA, bodyB, info, &w.settings)
	} else {
		contact = constraint.NewContact(bodyA, bodyB, info, &w.settings)
		w.contactPool = append(w.contactPool, contact)
	}
	w.contacts = append(w.contacts, contact)

	w.infos = append(w.infos, collision.Info{
		SkinA:      info.SkinA,
		SkinB:      info.SkinB,
		PrimitiveA: info.PrimitiveA,
		PrimitiveB: info.PrimitiveB,
		Material:   info.Material,
	})
}

// wakeOnTouch schedules a sleeping body for waking when an active body hits
// it faster than the wake speed.
func (w *World) wakeOnTouch(sleeper, other *actor.RigidBody, info *collision.Info) {
	if !sleeper.IsSleeping || other.IsImmovable() {
		return
	}
	threshold := w.sleep.WakeSpeed * w.sleep.WakeSpeed
	for i := range info.Points {
		if other.VelocityAt(info.Points[i].Position).LenSqr() > threshold {
			w.toWake = append(w.toWake, sleeper)
			return
		}
	}
}

// storeContacts saves the solved impulses and binds each info to the points
// of its contact for the observer.
func (w *World) storeContacts() {
	for i, contact := range w.contacts {
		info := &w.infos[i]
		info.Points = contact.Points
		w.cache.store(info)
	}
	w.cache.swap()
}
