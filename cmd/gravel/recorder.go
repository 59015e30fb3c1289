package main

import (
	"math"

	"github.com/akmonengine/gravel"
	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/collision"
)

const historyCapacity = 600

// recorder watches a world: it accumulates what the observer and the events
// report and samples the energy after every step.
type recorder struct {
	steps      int
	contacts   int
	maxImpulse float64
	enters     int
	triggers   int
	sleeps     int
	wakes      int

	energy  []float64
	height  []float64
	maxKE   float64
	maxStep int
}

func newRecorder(w *gravel.World) *recorder {
	r := &recorder{}
	w.SetObserver(r)
	w.Events.Subscribe(gravel.COLLISION_ENTER, func(gravel.Event) { r.enters++ })
	w.Events.Subscribe(gravel.TRIGGER_ENTER, func(gravel.Event) { r.triggers++ })
	w.Events.Subscribe(gravel.ON_SLEEP, func(gravel.Event) { r.sleeps++ })
	w.Events.Subscribe(gravel.ON_WAKE, func(gravel.Event) { r.wakes++ })
	return r
}

func (r *recorder) OnContact(_ *collision.Info, point *collision.ContactPoint) {
	r.contacts++
	r.maxImpulse = math.Max(r.maxImpulse, point.NormalImpulse)
}

func (r *recorder) OnBodyUpdated(*actor.RigidBody) {}

// sample records the total kinetic energy and the mean height of the dynamic
// bodies.
func (r *recorder) sample(bodies []*actor.RigidBody) {
	r.steps++
	var energy, height float64
	dynamic := 0
	for _, body := range bodies {
		if body.BodyType != actor.BodyTypeDynamic {
			continue
		}
		energy += body.KineticEnergy()
		height += body.Transform.Position[1]
		dynamic++
	}
	if dynamic > 0 {
		height /= float64(dynamic)
	}

	if energy > r.maxKE {
		r.maxKE = energy
		r.maxStep = r.steps
	}
	r.energy = appendCapped(r.energy, energy)
	r.height = appendCapped(r.height, height)
}

func appendCapped(series []float64, v float64) []float64 {
	if len(series) == historyCapacity {
		copy(series, series[1:])
		series = series[:len(series)-1]
	}
	return append(series, v)
}

func (r *recorder) lastEnergy() float64 {
	if len(r.energy) == 0 {
		return 0
	}
	return r.energy[len(r.energy)-1]
}

// downsample keeps at most n points of series, averaging buckets.
func downsample(series []float64, n int) []float64 {
	if len(series) <= n || n <= 0 {
		return series
	}
	out := make([]float64, n)
	bucket := float64(len(series)) / float64(n)
	for i := range out {
		start := int(float64(i) * bucket)
		end := max(int(float64(i+1)*bucket), start+1)
		sum := 0.0
		for _, v := range series[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
