package config

import (
	"fmt"
	"slices"
)

var presets = map[string]func() *Config{
	"stack":    stackPreset,
	"pile":     pilePreset,
	"pendulum": pendulumPreset,
	"terrain":  terrainPreset,
	"newton":   newtonPreset,
}

// GetPreset returns a fresh copy of the named preset, nil when unknown.
func GetPreset(name string) *Config {
	build, ok := presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func ground(material int) Body {
	return Body{
		Name:     "ground",
		Type:     "static",
		Material: material,
		Shapes:   []Shape{{Kind: ShapePlane, Normal: [3]float64{0, 1, 0}}},
	}
}

func stackPreset() *Config {
	cfg := DefaultConfig()
	cfg.Solver.Iterations = 20
	cfg.Materials = []Material{
		{ID: 0, Elasticity: 0.1, StaticRoughness: 0.6, DynamicRoughness: 0.4},
	}
	cfg.Scene.Bodies = []Body{
		ground(0),
		{
			Name:     "crate",
			Position: [3]float64{0, 0.5, 0},
			Density:  500,
			Shapes:   []Shape{{Kind: ShapeBox, HalfExtents: [3]float64{0.5, 0.5, 0.5}}},
			Repeat:   6,
			Offset:   [3]float64{0, 1.0, 0},
		},
	}
	return cfg
}

func pilePreset() *Config {
	cfg := DefaultConfig()
	cfg.Duration = 8
	cfg.Materials = []Material{
		{ID: 0, Elasticity: 0.3, StaticRoughness: 0.5, DynamicRoughness: 0.3},
	}
	cfg.Scene.Bodies = []Body{ground(0)}
	for i := 0; i < 4; i++ {
		x := float64(i) - 1.5
		cfg.Scene.Bodies = append(cfg.Scene.Bodies,
			Body{
				Name:     fmt.Sprintf("ball%d", i),
				Position: [3]float64{x, 2, 0.1 * x},
				Density:  800,
				Shapes:   []Shape{{Kind: ShapeSphere, Radius: 0.35}},
				Repeat:   4,
				Offset:   [3]float64{0.05, 1.5, 0},
			},
			Body{
				Name:     fmt.Sprintf("brick%d", i),
				Position: [3]float64{x, 2.75, 1.0},
				Axis:     [3]float64{0, 1, 0},
				Angle:    20 * float64(i),
				Density:  600,
				Shapes:   []Shape{{Kind: ShapeBox, HalfExtents: [3]float64{0.4, 0.2, 0.25}}},
				Repeat:   3,
				Offset:   [3]float64{0, 1.5, 0},
			},
			Body{
				Name:     fmt.Sprintf("pill%d", i),
				Position: [3]float64{x, 3.5, -0.8},
				Axis:     [3]float64{1, 0, 0},
				Angle:    90,
				Density:  700,
				Shapes:   []Shape{{Kind: ShapeCapsule, Radius: 0.2, Length: 0.6}},
				Repeat:   2,
				Offset:   [3]float64{0, 1.5, 0},
			},
		)
	}
	return cfg
}

func pendulumPreset() *Config {
	cfg := DefaultConfig()
	cfg.Duration = 10
	cfg.Sleep.Enabled = false
	cfg.Scene.Bodies = []Body{
		{
			Name:     "link",
			Position: [3]float64{0.5, 4, 0},
			Density:  400,
			Shapes:   []Shape{{Kind: ShapeCapsule, Radius: 0.1, Length: 0.8, Axis: [3]float64{0, 1, 0}, Angle: 90}},
			Repeat:   4,
			Offset:   [3]float64{1, 0, 0},
		},
		{
			Name:            "door",
			Position:        [3]float64{-2, 2, 0},
			Density:         300,
			AngularVelocity: [3]float64{0, 3, 0},
			Shapes:          []Shape{{Kind: ShapeBox, HalfExtents: [3]float64{0.5, 1, 0.05}}},
		},
	}
	cfg.Scene.Joints = []Joint{
		{Kind: JointWorldPoint, BodyA: "link.0", Pivot: [3]float64{0, 4, 0}, PivotB: [3]float64{0, 4, 0}},
		{Kind: JointPoint, BodyA: "link.0", BodyB: "link.1", Pivot: [3]float64{1, 4, 0}},
		{Kind: JointPoint, BodyA: "link.1", BodyB: "link.2", Pivot: [3]float64{2, 4, 0}},
		{Kind: JointPoint, BodyA: "link.2", BodyB: "link.3", Pivot: [3]float64{3, 4, 0}},
		{
			Kind: JointHinge, BodyA: "door", Pivot: [3]float64{-2.5, 2, 0}, Axis: [3]float64{0, 1, 0},
			Limited: true, Lower: -90, Upper: 90, Damping: 0.02,
		},
	}
	return cfg
}

func terrainPreset() *Config {
	cfg := DefaultConfig()
	cfg.Duration = 8
	cfg.Materials = []Material{
		{ID: 0, Elasticity: 0.4, StaticRoughness: 0.7, DynamicRoughness: 0.5},
	}
	cfg.Scene.Terrain = &Terrain{
		Kind:      TerrainHeightmap,
		Size:      33,
		Spacing:   0.5,
		Amplitude: 0.6,
		Period:    6,
		Position:  [3]float64{0, 0, 0},
	}
	cfg.Scene.Bodies = []Body{
		{
			Name:     "rock",
			Position: [3]float64{-3, 3, -3},
			Density:  900,
			Shapes:   []Shape{{Kind: ShapeSphere, Radius: 0.4}},
			Repeat:   6,
			Offset:   [3]float64{1.1, 0.3, 1.0},
		},
		{
			Name:     "log",
			Position: [3]float64{-2, 4, 2},
			Density:  600,
			Shapes:   []Shape{{Kind: ShapeCapsule, Radius: 0.25, Length: 1.2}},
			Repeat:   3,
			Offset:   [3]float64{1.5, 0.5, 0},
		},
		{
			Name:     "crate",
			Position: [3]float64{2, 5, -2},
			Density:  500,
			Shapes:   []Shape{{Kind: ShapeBox, HalfExtents: [3]float64{0.4, 0.4, 0.4}}},
			Repeat:   3,
			Offset:   [3]float64{0, 1.2, 1.2},
		},
	}
	return cfg
}

func newtonPreset() *Config {
	const balls = 5

	cfg := DefaultConfig()
	cfg.Duration = 6
	cfg.Sleep.Enabled = false
	cfg.Solver.Iterations = 30
	cfg.Solver.WarmStart = false
	cfg.Materials = []Material{{ID: 1, Elasticity: 1}}
	for i := 0; i < balls; i++ {
		x := 0.5 * float64(i)
		name := fmt.Sprintf("ball.%d", i)
		cfg.Scene.Bodies = append(cfg.Scene.Bodies, Body{
			Name:     name,
			Position: [3]float64{x, 1, 0},
			Density:  1000,
			Material: 1,
			Shapes:   []Shape{{Kind: ShapeSphere, Radius: 0.25}},
		})
		cfg.Scene.Joints = append(cfg.Scene.Joints, Joint{
			Kind:     JointMaxDistance,
			BodyA:    name,
			Pivot:    [3]float64{x, 1, 0},
			PivotB:   [3]float64{x, 3, 0},
			Distance: 2,
		})
	}
	// the first ball swings out and comes back into the row
	cfg.Scene.Bodies[0].Velocity = [3]float64{-3, 0, 0}
	return cfg
}
