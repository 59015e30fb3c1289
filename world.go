// Package gravel is a rigid-body physics engine. A World owns bodies, their
// collision skins and the joints between them, and advances them with
// Integrate.
package gravel

import (
	"log"
	"slices"

	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/collision"
	"github.com/akmonengine/gravel/config"
	"github.com/akmonengine/gravel/constraint"
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/material"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// Stats describe the last step.
type Stats struct {
	Steps         int
	Bodies        int
	ActiveBodies  int
	Skins         int
	Pairs         int
	Contacts      int
	ContactPoints int
	WarmStarted   int
	Constraints   int
	SolverPasses  int
}

type World struct {
	// Logger receives lifecycle notes; nil keeps the world silent.
	Logger *log.Logger
	Events Events

	bodies     []*actor.RigidBody
	nextBodyID uint32
	// static owns the skins added without a body
	static *actor.RigidBody

	collisions *collision.System
	materials  *material.Table

	gravity    mgl64.Vec3
	workers    int
	iterations int
	settings   constraint.Settings
	sleep      config.SleepConfig
	octree     config.OctreeConfig

	solver      constraint.Solver
	constraints []constraint.Constraint

	// rebuilt every step
	contacts    []*constraint.Contact
	contactPool []*constraint.Contact
	infos       []collision.Info
	all         []constraint.Constraint
	toWake      []*actor.RigidBody
	cache       contactCache

	observer Observer
	stats    Stats
}

// NewWorld builds an empty world from cfg, which is expected to be valid.
func NewWorld(cfg config.Config) *World {
	w := &World{
		Events:     NewEvents(),
		materials:  material.NewTable(),
		gravity:    mgl64.Vec3{cfg.Gravity[0], cfg.Gravity[1], cfg.Gravity[2]},
		workers:    max(DEFAULT_WORKERS, cfg.Workers),
		iterations: max(1, cfg.Solver.Iterations),
		settings: constraint.Settings{
			Baumgarte:            cfg.Solver.Baumgarte,
			Slop:                 cfg.Solver.Slop,
			RestitutionThreshold: cfg.Solver.RestitutionThreshold,
			StaticFrictionSpeed:  cfg.Solver.StaticFrictionSpeed,
			WarmStart:            cfg.Solver.WarmStart,
		},
		sleep:  cfg.Sleep,
		octree: cfg.Octree,
		cache:  newContactCache(),
	}

	w.collisions = collision.NewSystem(newBroadPhase(cfg.BroadPhase))
	w.collisions.SetMaterials(w.materials)

	for _, m := range cfg.Materials {
		w.materials.SetMaterialProperties(material.ID(m.ID), material.Properties{
			Elasticity:       m.Elasticity,
			StaticRoughness:  m.StaticRoughness,
			DynamicRoughness: m.DynamicRoughness,
		})
	}
	for _, p := range cfg.MaterialPairs {
		w.materials.SetMaterialPairProperties(material.ID(p.A), material.ID(p.B), material.PairProperties{
			Restitution:     p.Restitution,
			StaticFriction:  p.StaticFriction,
			DynamicFriction: p.DynamicFriction,
		})
	}

	w.static = actor.NewRigidBody(geom.NewTransform(), actor.BodyTypeStatic)
	return w
}

func newBroadPhase(cfg config.BroadPhaseConfig) collision.BroadPhase {
	if cfg.Strategy == config.BroadPhaseGrid {
		return collision.NewGrid(cfg.MinCellSize, cfg.MaxCellSize, cfg.NumCells)
	}
	return collision.Brute{}
}

func (w *World) logf(format string, args ...any) {
	if w.Logger != nil {
		w.Logger.Printf(format, args...)
	}
}

// CreateBody adds a body without mass properties beyond the unit defaults;
// add skins then call SetMassFromSkins or SetMass.
func (w *World) CreateBody(transform geom.Transform, bodyType actor.BodyType) *actor.RigidBody {
	w.nextBodyID++
	body := actor.NewRigidBody(transform, bodyType)
	body.ID = w.nextBodyID
	w.bodies = append(w.bodies, body)
	return body
}

// DestroyBody removes a body with its skins and every constraint attached
// to it.
func (w *World) DestroyBody(body *actor.RigidBody) error {
	k := slices.Index(w.bodies, body)
	if k < 0 {
		return ErrUnknownBody
	}
	w.bodies = slices.Delete(w.bodies, k, k+1)

	for _, skin := range body.Skins {
		w.collisions.RemoveSkin(skin)
	}
	w.constraints = slices.DeleteFunc(w.constraints, func(c constraint.Constraint) bool {
		a, b := c.Bodies()
		return a == body || b == body
	})
	w.Events.forget(body)
	return nil
}

func (w *World) owns(body *actor.RigidBody) bool {
	return body == w.static || slices.Contains(w.bodies, body)
}

// AddSkin attaches skin to body and registers it for collisions. A nil body
// makes the skin part of the static world.
func (w *World) AddSkin(skin *collision.Skin, body *actor.RigidBody) error {
	if skin.System() != nil {
		return ErrSkinOwned
	}
	if body == nil {
		body = w.static
	}
	if !w.owns(body) {
		return ErrUnknownBody
	}
	body.AddSkin(skin)
	w.collisions.AddSkin(skin)
	return nil
}

func (w *World) RemoveSkin(skin *collision.Skin) error {
	body := ownerOf(skin)
	if skin.System() != w.collisions || body == nil {
		return ErrUnknownSkin
	}
	body.RemoveSkin(skin)
	w.collisions.RemoveSkin(skin)
	return nil
}

// AddConstraint appends a joint to the solver; joints run after the contacts
// in insertion order.
func (w *World) AddConstraint(c constraint.Constraint) error {
	a, b := c.Bodies()
	if a == nil || !w.owns(a) || (b != nil && !w.owns(b)) {
		return ErrUnknownBody
	}
	w.constraints = append(w.constraints, c)
	return nil
}

func (w *World) RemoveConstraint(c constraint.Constraint) bool {
	k := slices.Index(w.constraints, c)
	if k < 0 {
		return false
	}
	w.constraints = slices.Delete(w.constraints, k, k+1)
	return true
}

func (w *World) Constraints() []constraint.Constraint {
	return w.constraints
}

func (w *World) SetMaterialProperties(id material.ID, p material.Properties) {
	w.materials.SetMaterialProperties(id, p)
}

func (w *World) SetMaterialPairProperties(a, b material.ID, p material.PairProperties) {
	w.materials.SetMaterialPairProperties(a, b, p)
}

func (w *World) Materials() *material.Table {
	return w.materials
}

func (w *World) SetGravity(gravity mgl64.Vec3) {
	w.gravity = gravity
}

func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

// SetBroadPhase switches the broad-phase strategy; nil selects Brute.
func (w *World) SetBroadPhase(broadPhase collision.BroadPhase) {
	w.collisions.SetBroadPhase(broadPhase)
	w.logf("broad phase switched to %T", w.collisions.BroadPhase())
}

func (w *World) SetObserver(observer Observer) {
	w.observer = observer
}

// SolverSettings returns the contact settings, to be tuned between steps.
func (w *World) SolverSettings() *constraint.Settings {
	return &w.settings
}

func (w *World) SetIterations(iterations int) {
	w.iterations = max(1, iterations)
}

// Bodies returns the bodies in creation order. The slice must not be modified.
func (w *World) Bodies() []*actor.RigidBody {
	return w.bodies
}

// StaticBody returns the body owning the skins added without one.
func (w *World) StaticBody() *actor.RigidBody {
	return w.static
}

// Contacts returns the contact constraints of the last step.
func (w *World) Contacts() []*constraint.Contact {
	return w.contacts
}

func (w *World) Collisions() *collision.System {
	return w.collisions
}

func (w *World) Stats() Stats {
	return w.stats
}

// ReleaseScratch frees the buffers kept between steps. Warm starting
// resumes from scratch on the next step.
func (w *World) ReleaseScratch() {
	w.collisions.ReleaseScratch()
	w.contacts = nil
	w.contactPool = nil
	w.infos = nil
	w.all = nil
	w.toWake = nil
	w.cache.reset()
	w.logf("scratch buffers released")
}

// Integrate advances the world by dt seconds. A non-positive dt only clears
// the force accumulators.
func (w *World) Integrate(dt float64) {
	if dt <= 0 {
		for _, body := range w.bodies {
			body.ClearForces()
		}
		return
	}

	w.stats = Stats{Steps: w.stats.Steps + 1, Bodies: len(w.bodies), Skins: len(w.collisions.Skins())}

	// Phase 1: skins sweep from the pose at the start of the last step to the
	// current one, which also covers bodies moved between steps. Then the
	// snapshot for this step.
	task(w.workers, w.bodies, func(body *actor.RigidBody) {
		body.UpdateSkins()
		body.UpdateWorldInertia()
		body.StorePreviousTransform()
	})

	// Phase 2: broad and narrow phase, one contact per touching primitive pair
	w.contacts = w.contacts[:0]
	w.infos = w.infos[:0]
	w.toWake = w.toWake[:0]
	pairs := w.collisions.UpdateAllCollisions()
	w.stats.Pairs = len(pairs)
	w.collisions.DetectAllCollisions(pairs, pairFilter, w.onCollision)
	w.stats.Contacts = len(w.contacts)

	// Phase 3: joints pull sleeping partners of moving bodies back in
	w.all = w.all[:0]
	for _, c := range w.contacts {
		w.all = append(w.all, c)
	}
	for _, c := range w.constraints {
		a, b := c.Bodies()
		if b != nil {
			wakeJoined(a, b)
			wakeJoined(b, a)
		}
		w.all = append(w.all, c)
	}
	w.stats.Constraints = len(w.all)

	// Phase 4: external forces
	task(w.workers, w.bodies, func(body *actor.RigidBody) {
		if !body.IsImmovable() {
			body.IntegrateVelocity(dt, w.gravity)
		}
	})

	// Phase 5: solver
	w.solver.ColdStart = !w.settings.WarmStart
	w.stats.SolverPasses = w.solver.Solve(w.all, dt, w.iterations)

	// Phase 6: positions
	task(w.workers, w.bodies, func(body *actor.RigidBody) {
		if !body.IsImmovable() {
			body.IntegratePosition(dt)
			body.UpdateSkins()
		}
		body.ClearForces()
	})

	w.storeContacts()
	w.updateSleep(dt)
	w.checkFinite()

	for _, body := range w.bodies {
		if body.IsActive() {
			w.stats.ActiveBodies++
		}
	}

	w.notify()
	w.Events.processSleepEvents(w.bodies)
	w.Events.flush()
}

func wakeJoined(body, other *actor.RigidBody) {
	if body.IsSleeping && other.BodyType == actor.BodyTypeDynamic && !other.IsSleeping {
		body.Awake()
	}
}

// updateSleep puts slow bodies to sleep, then wakes those hit during the
// step so that they take part in the next one.
func (w *World) updateSleep(dt float64) {
	if w.sleep.Enabled {
		for _, body := range w.bodies {
			body.TrySleep(dt, w.sleep.TimeThreshold, w.sleep.VelocityThreshold)
		}
	}
	for _, body := range w.toWake {
		body.Awake()
	}
}

// checkFinite stops bodies whose state diverged, restoring the transform
// they had at the start of the step.
func (w *World) checkFinite() {
	for _, body := range w.bodies {
		if body.IsFinite() {
			continue
		}
		w.logf("body %d has a non-finite state, putting it to sleep", body.ID)
		body.Transform = body.PreviousTransform
		body.Sleep()
	}
}

func (w *World) notify() {
	if w.observer == nil {
		return
	}
	for i := range w.infos {
		info := &w.infos[i]
		for j := range info.Points {
			w.observer.OnContact(info, &info.Points[j])
		}
	}
	for _, body := range w.bodies {
		w.observer.OnBodyUpdated(body)
	}
}
