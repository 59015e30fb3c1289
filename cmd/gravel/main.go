package main

import (
	"fmt"
	"log"
	"os"

	"github.com/akmonengine/gravel"
	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	duration   float64
	dt         float64
	workers    int
	broadPhase string
	iterations int
	plot       bool
	verbose    bool
	frameRate  int
	output     string
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("gravel: ")

	rootCmd := &cobra.Command{
		Use:          "gravel",
		Short:        "headless rigid-body physics driver",
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and print a summary",
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot kinetic energy over time")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log world lifecycle notes")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput per broad phase and worker count",
		RunE:  benchScene,
	}
	sceneFlags(benchCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step a scene interactively in the terminal",
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "refresh rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the built-in scenes",
		RunE:  listPresets,
	}

	exportCmd := &cobra.Command{
		Use:   "export [preset]",
		Short: "write a preset as a yaml scene file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPreset,
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default <preset>.yaml)")

	rootCmd.AddCommand(runCmd, benchCmd, liveCmd, presetsCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "stack", "built-in scene, ignored with --config")
	cmd.Flags().Float64Var(&duration, "time", 0, "simulated seconds (default from the scene)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "time step (default from the scene)")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines for per-body work (default from the scene)")
	cmd.Flags().StringVar(&broadPhase, "broad-phase", "", "brute or grid (default from the scene)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "solver passes per step (default from the scene)")
}

// loadConfig resolves the scene from the flags, command line overriding the
// file or preset.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q, see 'gravel presets'", preset)
		}
	}

	if duration > 0 {
		cfg.Duration = duration
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if broadPhase != "" {
		cfg.BroadPhase.Strategy = broadPhase
	}
	if iterations > 0 {
		cfg.Solver.Iterations = iterations
	}
	return cfg, cfg.Validate()
}

// buildWorld creates the world of cfg with its scene.
func buildWorld(cfg *config.Config) (*gravel.World, map[string]*actor.RigidBody, error) {
	w := gravel.NewWorld(*cfg)
	if verbose {
		w.Logger = log.Default()
	}
	bodies, err := w.BuildScene(cfg.Scene)
	if err != nil {
		return nil, nil, err
	}
	return w, bodies, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		count := 0
		for _, b := range cfg.Scene.Bodies {
			count += len(b.Names())
		}
		fmt.Printf("%s %s\n",
			titleStyle.Render(fmt.Sprintf("%-10s", name)),
			dimStyle.Render(fmt.Sprintf("%d bodies, %d joints, %.1fs", count, len(cfg.Scene.Joints), cfg.Duration)))
	}
	return nil
}

func exportPreset(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset %q", args[0])
	}
	path := output
	if path == "" {
		path = args[0] + ".yaml"
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	log.Printf("wrote %s", path)
	return nil
}
