package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/akmonengine/gravel/config"
	"github.com/spf13/cobra"
)

var benchWorkers = []int{1, 2, 4, 8}

type benchResult struct {
	strategy string
	workers  int
	steps    int
	elapsed  time.Duration
	contacts int
	awake    int
}

func (r benchResult) rate() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.steps) / r.elapsed.Seconds()
}

// benchOnce runs a fresh copy of cfg with the given broad phase and worker
// count.
func benchOnce(cfg config.Config, strategy string, workerCount int) (benchResult, error) {
	cfg.BroadPhase.Strategy = strategy
	cfg.Workers = workerCount
	w, _, err := buildWorld(&cfg)
	if err != nil {
		return benchResult{}, err
	}
	defer w.ReleaseScratch()

	steps := stepCount(&cfg)
	start := time.Now()
	for i := 0; i < steps; i++ {
		w.Integrate(cfg.Dt)
	}
	stats := w.Stats()
	return benchResult{
		strategy: strategy,
		workers:  workerCount,
		steps:    steps,
		elapsed:  time.Since(start),
		contacts: stats.ContactPoints,
		awake:    stats.ActiveBodies,
	}, nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strategies := []string{config.BroadPhaseBrute, config.BroadPhaseGrid}
	if broadPhase != "" {
		strategies = []string{broadPhase}
	}
	counts := benchWorkers
	if workers > 0 {
		counts = []int{workers}
	}

	fmt.Println(titleStyle.Render("bench " + sceneName()))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BROAD PHASE\tWORKERS\tSTEPS\tTIME\tSTEPS/S\tPOINTS\tAWAKE")
	for _, strategy := range strategies {
		for _, n := range counts {
			r, err := benchOnce(*cfg, strategy, n)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.0f\t%d\t%d\n",
				r.strategy,
				r.workers,
				r.steps,
				r.elapsed.Round(time.Microsecond),
				r.rate(),
				r.contacts,
				r.awake,
			)
		}
	}
	return tw.Flush()
}
