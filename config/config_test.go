package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gravity[1] >= 0 {
		t.Errorf("expected gravity pointing down, got %v", cfg.Gravity)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Solver.Iterations != DefaultIterations {
		t.Errorf("expected %d iterations, got %d", DefaultIterations, cfg.Solver.Iterations)
	}
	if cfg.BroadPhase.Strategy != BroadPhaseGrid {
		t.Errorf("expected grid broad phase, got %s", cfg.BroadPhase.Strategy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	doc := []byte(`
gravity: [0, -1.62, 0]
solver:
  iterations: 4
broad_phase:
  strategy: brute
materials:
  - {id: 2, elasticity: 0.5, static_roughness: 0.3, dynamic_roughness: 0.2}
scene:
  bodies:
    - name: floor
      type: static
      shapes:
        - {kind: plane, normal: [0, 1, 0]}
    - name: ball
      position: [0, 2, 0]
      density: 10
      material: 2
      shapes:
        - {kind: sphere, radius: 0.5}
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Gravity[1] != -1.62 {
		t.Errorf("expected gravity -1.62, got %v", cfg.Gravity[1])
	}
	if cfg.Solver.Iterations != 4 {
		t.Errorf("expected 4 iterations, got %d", cfg.Solver.Iterations)
	}
	// fields absent from the document keep their defaults
	if cfg.Solver.Baumgarte != 0.2 {
		t.Errorf("expected default baumgarte, got %v", cfg.Solver.Baumgarte)
	}
	if !cfg.Solver.WarmStart {
		t.Error("expected warm start to keep its default")
	}
	if len(cfg.Scene.Bodies) != 2 || cfg.Scene.Bodies[1].Material != 2 {
		t.Errorf("unexpected bodies %+v", cfg.Scene.Bodies)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("solver: [not, a, map]"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"no iterations", func(c *Config) { c.Solver.Iterations = 0 }},
		{"baumgarte above one", func(c *Config) { c.Solver.Baumgarte = 1.5 }},
		{"negative slop", func(c *Config) { c.Solver.Slop = -0.1 }},
		{"unknown broad phase", func(c *Config) { c.BroadPhase.Strategy = "sweep" }},
		{"inverted grid sizes", func(c *Config) { c.BroadPhase.MaxCellSize = 0.1 }},
		{"empty octree cells", func(c *Config) { c.Octree.MaxTrianglesPerCell = 0 }},
		{"negative material", func(c *Config) { c.Materials = []Material{{ID: -1}} }},
		{"duplicate material", func(c *Config) { c.Materials = []Material{{ID: 3}, {ID: 3}} }},
		{"body without shape", func(c *Config) {
			c.Scene.Bodies = []Body{{Name: "a"}}
		}},
		{"unknown shape", func(c *Config) {
			c.Scene.Bodies = []Body{{Name: "a", Shapes: []Shape{{Kind: "torus"}}}}
		}},
		{"sphere without radius", func(c *Config) {
			c.Scene.Bodies = []Body{{Name: "a", Shapes: []Shape{{Kind: ShapeSphere}}}}
		}},
		{"duplicate body", func(c *Config) {
			b := Body{Name: "a", Shapes: []Shape{{Kind: ShapeSphere, Radius: 1}}}
			c.Scene.Bodies = []Body{b, b}
		}},
		{"joint to unknown body", func(c *Config) {
			c.Scene.Bodies = []Body{{Name: "a", Shapes: []Shape{{Kind: ShapeSphere, Radius: 1}}}}
			c.Scene.Joints = []Joint{{Kind: JointPoint, BodyA: "a", BodyB: "b"}}
		}},
		{"worldpoint with two bodies", func(c *Config) {
			s := []Shape{{Kind: ShapeSphere, Radius: 1}}
			c.Scene.Bodies = []Body{{Name: "a", Shapes: s}, {Name: "b", Shapes: s}}
			c.Scene.Joints = []Joint{{Kind: JointWorldPoint, BodyA: "a", BodyB: "b"}}
		}},
		{"inverted hinge limits", func(c *Config) {
			c.Scene.Bodies = []Body{{Name: "a", Shapes: []Shape{{Kind: ShapeBox, HalfExtents: [3]float64{1, 1, 1}}}}}
			c.Scene.Joints = []Joint{{Kind: JointHinge, BodyA: "a", Limited: true, Lower: 1, Upper: -1}}
		}},
		{"tiny terrain", func(c *Config) {
			c.Scene.Terrain = &Terrain{Kind: TerrainHeightmap, Size: 1, Spacing: 1}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBodyNames(t *testing.T) {
	single := Body{Name: "crate"}
	if names := single.Names(); len(names) != 1 || names[0] != "crate" {
		t.Errorf("expected [crate], got %v", names)
	}

	repeated := Body{Name: "crate", Repeat: 3}
	names := repeated.Names()
	expected := []string{"crate.0", "crate.1", "crate.2"}
	if len(names) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("name %d: expected %s, got %s", i, expected[i], names[i])
		}
	}
}

func TestTerrainHeight(t *testing.T) {
	flat := Terrain{Amplitude: 1}
	if h := flat.Height(1, 2); h != 0 {
		t.Errorf("terrain without period should be flat, got %v", h)
	}

	wave := Terrain{Amplitude: 2, Period: 4}
	if h := wave.Height(1, 0); h < 1.999 || h > 2.001 {
		t.Errorf("expected crest of 2 at a quarter period, got %v", h)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")

	original := GetPreset("pendulum")
	if err := Save(path, original); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.Scene.Bodies) != len(original.Scene.Bodies) {
		t.Errorf("expected %d bodies, got %d", len(original.Scene.Bodies), len(loaded.Scene.Bodies))
	}
	if len(loaded.Scene.Joints) != len(original.Scene.Joints) {
		t.Errorf("expected %d joints, got %d", len(original.Scene.Joints), len(loaded.Scene.Joints))
	}
	if loaded.Sleep.Enabled {
		t.Error("expected sleep to stay disabled after a round trip")
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if cfg == nil {
				t.Fatal("expected preset, got nil")
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset should validate: %v", err)
			}
			if len(cfg.Scene.Bodies) == 0 {
				t.Error("preset should build bodies")
			}
		})
	}
}

func TestGetPreset_Fresh(t *testing.T) {
	a := GetPreset("stack")
	a.Scene.Bodies[1].Repeat = 99

	b := GetPreset("stack")
	if b.Scene.Bodies[1].Repeat == 99 {
		t.Error("presets should not share state between calls")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	expected := []string{"newton", "pendulum", "pile", "stack", "terrain"}
	if len(presets) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, presets)
	}
	for i := range expected {
		if presets[i] != expected[i] {
			t.Errorf("preset %d: expected %s, got %s", i, expected[i], presets[i])
		}
	}
}
