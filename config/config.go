// Package config describes an engine and an optional scene in YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 1.0 / 60.0
	DefaultDuration   = 5.0
	DefaultIterations = 10
	DefaultWorkers    = 1

	BroadPhaseBrute = "brute"
	BroadPhaseGrid  = "grid"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Gravity       [3]float64       `yaml:"gravity"`
	Dt            float64          `yaml:"dt"`
	Duration      float64          `yaml:"duration"`
	Workers       int              `yaml:"workers"`
	Solver        SolverConfig     `yaml:"solver"`
	BroadPhase    BroadPhaseConfig `yaml:"broad_phase"`
	Octree        OctreeConfig     `yaml:"octree"`
	Sleep         SleepConfig      `yaml:"sleep"`
	Materials     []Material       `yaml:"materials,omitempty"`
	MaterialPairs []MaterialPair   `yaml:"material_pairs,omitempty"`
	Scene         Scene            `yaml:"scene,omitempty"`
}

type SolverConfig struct {
	Iterations           int     `yaml:"iterations"`
	Baumgarte            float64 `yaml:"baumgarte"`
	Slop                 float64 `yaml:"slop"`
	WarmStart            bool    `yaml:"warm_start"`
	RestitutionThreshold float64 `yaml:"restitution_threshold"`
	StaticFrictionSpeed  float64 `yaml:"static_friction_speed"`
}

type BroadPhaseConfig struct {
	Strategy    string  `yaml:"strategy"`
	MinCellSize float64 `yaml:"min_cell_size"`
	MaxCellSize float64 `yaml:"max_cell_size"`
	NumCells    int     `yaml:"num_cells"`
}

type OctreeConfig struct {
	MaxTrianglesPerCell int     `yaml:"max_triangles_per_cell"`
	MinCellSize         float64 `yaml:"min_cell_size"`
}

type SleepConfig struct {
	Enabled           bool    `yaml:"enabled"`
	TimeThreshold     float64 `yaml:"time_threshold"`
	VelocityThreshold float64 `yaml:"velocity_threshold"`
	// WakeSpeed is the speed above which an active body touching a sleeping
	// one wakes it.
	WakeSpeed float64 `yaml:"wake_speed"`
}

type Material struct {
	ID               int     `yaml:"id"`
	Elasticity       float64 `yaml:"elasticity"`
	StaticRoughness  float64 `yaml:"static_roughness"`
	DynamicRoughness float64 `yaml:"dynamic_roughness"`
}

type MaterialPair struct {
	A               int     `yaml:"a"`
	B               int     `yaml:"b"`
	Restitution     float64 `yaml:"restitution"`
	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
}

func DefaultConfig() *Config {
	return &Config{
		Gravity:  [3]float64{0, -9.81, 0},
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Workers:  DefaultWorkers,
		Solver: SolverConfig{
			Iterations:           DefaultIterations,
			Baumgarte:            0.2,
			Slop:                 0.005,
			WarmStart:            true,
			RestitutionThreshold: 0.5,
			StaticFrictionSpeed:  0.1,
		},
		BroadPhase: BroadPhaseConfig{
			Strategy:    BroadPhaseGrid,
			MinCellSize: 0.5,
			MaxCellSize: 8,
			NumCells:    1024,
		},
		Octree: OctreeConfig{
			MaxTrianglesPerCell: 16,
			MinCellSize:         0.5,
		},
		Sleep: SleepConfig{
			Enabled:           true,
			TimeThreshold:     0.5,
			VelocityThreshold: 0.05,
			WakeSpeed:         0.5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse reads a YAML document over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func finite(v ...float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Validate reports the first inconsistency as an error wrapping
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if !finite(c.Gravity[:]...) {
		return invalid("gravity %v is not finite", c.Gravity)
	}
	if c.Dt <= 0 || !finite(c.Dt) {
		return invalid("dt must be positive, got %v", c.Dt)
	}
	if c.Duration < 0 {
		return invalid("duration must not be negative, got %v", c.Duration)
	}
	if c.Workers < 1 {
		return invalid("workers must be at least 1, got %d", c.Workers)
	}

	s := c.Solver
	if s.Iterations < 1 {
		return invalid("solver iterations must be at least 1, got %d", s.Iterations)
	}
	if s.Baumgarte < 0 || s.Baumgarte > 1 {
		return invalid("baumgarte must be in [0, 1], got %v", s.Baumgarte)
	}
	if s.Slop < 0 || s.RestitutionThreshold < 0 || s.StaticFrictionSpeed < 0 {
		return invalid("solver tolerances must not be negative")
	}

	bp := c.BroadPhase
	switch bp.Strategy {
	case BroadPhaseBrute:
	case BroadPhaseGrid:
		if bp.MinCellSize <= 0 || bp.MaxCellSize < bp.MinCellSize {
			return invalid("grid cell sizes [%v, %v] are inconsistent", bp.MinCellSize, bp.MaxCellSize)
		}
		if bp.NumCells < 1 {
			return invalid("grid needs at least one cell, got %d", bp.NumCells)
		}
	default:
		return invalid("unknown broad phase %q", bp.Strategy)
	}

	if c.Octree.MaxTrianglesPerCell < 1 || c.Octree.MinCellSize <= 0 {
		return invalid("octree parameters must be positive")
	}
	if c.Sleep.TimeThreshold < 0 || c.Sleep.VelocityThreshold < 0 || c.Sleep.WakeSpeed < 0 {
		return invalid("sleep thresholds must not be negative")
	}

	seen := make(map[int]bool, len(c.Materials))
	for _, m := range c.Materials {
		if m.ID < 0 {
			return invalid("material id %d is negative", m.ID)
		}
		if seen[m.ID] {
			return invalid("material %d defined twice", m.ID)
		}
		seen[m.ID] = true
	}
	for _, p := range c.MaterialPairs {
		if p.A < 0 || p.B < 0 {
			return invalid("material pair (%d, %d) has a negative id", p.A, p.B)
		}
	}

	return c.Scene.validate()
}
