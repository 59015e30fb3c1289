package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/akmonengine/gravel"
	"github.com/akmonengine/gravel/config"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

// stepCount is the number of fixed steps covering the configured duration.
func stepCount(cfg *config.Config) int {
	return max(int(math.Round(cfg.Duration/cfg.Dt)), 1)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w, bodies, err := buildWorld(cfg)
	if err != nil {
		return err
	}
	rec := newRecorder(w)

	steps := stepCount(cfg)
	start := time.Now()
	for i := 0; i < steps; i++ {
		w.Integrate(cfg.Dt)
		rec.sample(w.Bodies())
	}
	elapsed := time.Since(start)

	fmt.Print(summary(cfg, w.Stats(), rec, len(bodies), elapsed))

	if plot && len(rec.energy) > 1 {
		graph := asciigraph.Plot(downsample(rec.energy, 80),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy (J)"),
		)
		fmt.Println(graphStyle.Render(graph))

		graph = asciigraph.Plot(downsample(rec.height, 80),
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("mean height of dynamic bodies (m)"),
		)
		fmt.Println(graphStyle.Render(graph))
	}
	return nil
}

func summary(cfg *config.Config, stats gravel.Stats, rec *recorder, named int, elapsed time.Duration) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(sceneName())) + "\n")
	s.WriteString(field("Simulated", fmt.Sprintf("%.2fs in %d steps", float64(stats.Steps)*cfg.Dt, stats.Steps)))
	s.WriteString(field("Wall time", elapsed.Round(time.Microsecond).String()))
	if elapsed > 0 {
		s.WriteString(field("Throughput", fmt.Sprintf("%.0f steps/s", float64(stats.Steps)/elapsed.Seconds())))
	}
	s.WriteString(field("Bodies", fmt.Sprintf("%d (%d named, %d awake)", stats.Bodies, named, stats.ActiveBodies)))
	s.WriteString(field("Skins", fmt.Sprint(stats.Skins)))
	s.WriteString(field("Constraints", fmt.Sprint(stats.Constraints)))
	s.WriteString(field("Contacts", fmt.Sprintf("%d manifolds, %d points", stats.Contacts, stats.ContactPoints)))
	s.WriteString(field("Collisions", fmt.Sprintf("%d enters, %d trigger enters", rec.enters, rec.triggers)))
	s.WriteString(field("Sleep", fmt.Sprintf("%d sleeps, %d wakes", rec.sleeps, rec.wakes)))
	s.WriteString(field("Max impulse", fmt.Sprintf("%.3f N·s", rec.maxImpulse)))
	s.WriteString(field("Peak energy", fmt.Sprintf("%.3f J at step %d", rec.maxKE, rec.maxStep)))
	s.WriteString(field("Final energy", fmt.Sprintf("%.3f J", rec.lastEnergy())))
	if math.IsNaN(rec.lastEnergy()) || math.IsInf(rec.lastEnergy(), 0) {
		s.WriteString(warnStyle.Render("non-finite energy, the scene diverged") + "\n")
	}
	return s.String()
}

func sceneName() string {
	if configFile != "" {
		return configFile
	}
	return preset
}
