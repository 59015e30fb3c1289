package config

import (
	"fmt"
	"math"
)

const (
	ShapeSphere  = "sphere"
	ShapeBox     = "box"
	ShapeCapsule = "capsule"
	ShapePlane   = "plane"

	JointPoint       = "point"
	JointWorldPoint  = "worldpoint"
	JointMaxDistance = "maxdistance"
	JointVelocity    = "velocity"
	JointHinge       = "hinge"

	TerrainHeightmap = "heightmap"
	TerrainMesh      = "mesh"
)

// Scene lists the bodies, joints and terrain built into a new world.
type Scene struct {
	Bodies  []Body   `yaml:"bodies,omitempty"`
	Joints  []Joint  `yaml:"joints,omitempty"`
	Terrain *Terrain `yaml:"terrain,omitempty"`
}

type Body struct {
	Name string `yaml:"name"`
	// Type is "dynamic" (default) or "static".
	Type     string     `yaml:"type,omitempty"`
	Position [3]float64 `yaml:"position"`
	// Axis and Angle (degrees) give the initial orientation.
	Axis            [3]float64 `yaml:"axis,omitempty"`
	Angle           float64    `yaml:"angle,omitempty"`
	Velocity        [3]float64 `yaml:"velocity,omitempty"`
	AngularVelocity [3]float64 `yaml:"angular_velocity,omitempty"`
	// Density sets the mass from the shapes unless Mass is positive.
	Density  float64 `yaml:"density,omitempty"`
	Mass     float64 `yaml:"mass,omitempty"`
	Material int     `yaml:"material,omitempty"`
	Trigger  bool    `yaml:"trigger,omitempty"`
	Shapes   []Shape `yaml:"shapes"`

	// Repeat builds that many copies, each shifted by Offset from the
	// previous one and named Name.i.
	Repeat int        `yaml:"repeat,omitempty"`
	Offset [3]float64 `yaml:"offset,omitempty"`
}

type Shape struct {
	Kind        string     `yaml:"kind"`
	Radius      float64    `yaml:"radius,omitempty"`
	HalfExtents [3]float64 `yaml:"half_extents,omitempty"`
	Length      float64    `yaml:"length,omitempty"`
	Normal      [3]float64 `yaml:"normal,omitempty"`
	Distance    float64    `yaml:"distance,omitempty"`
	// Position and Axis/Angle place the shape in the body frame.
	Position [3]float64 `yaml:"position,omitempty"`
	Axis     [3]float64 `yaml:"axis,omitempty"`
	Angle    float64    `yaml:"angle,omitempty"`
}

type Joint struct {
	Kind string `yaml:"kind"`
	// BodyB is empty for joints held against the world.
	BodyA string     `yaml:"body_a"`
	BodyB string     `yaml:"body_b,omitempty"`
	Pivot [3]float64 `yaml:"pivot"`
	// PivotB is the second attachment of a maxdistance joint, or the world
	// target of a worldpoint joint.
	PivotB   [3]float64 `yaml:"pivot_b,omitempty"`
	Axis     [3]float64 `yaml:"axis,omitempty"`
	Distance float64    `yaml:"distance,omitempty"`
	Damping  float64    `yaml:"damping,omitempty"`
	// Lower and Upper bound the hinge angle in degrees when Limited.
	Limited bool    `yaml:"limited,omitempty"`
	Lower   float64 `yaml:"lower,omitempty"`
	Upper   float64 `yaml:"upper,omitempty"`
	// Linear and Angular are the targets of a velocity joint; nil leaves
	// that part free.
	Linear    *[3]float64 `yaml:"linear,omitempty"`
	Angular   *[3]float64 `yaml:"angular,omitempty"`
	BodyFrame bool        `yaml:"body_frame,omitempty"`
}

// Terrain is a static wave-shaped ground built as a heightmap or as a
// triangle mesh.
type Terrain struct {
	Kind      string     `yaml:"kind"`
	Size      int        `yaml:"size"`
	Spacing   float64    `yaml:"spacing"`
	Amplitude float64    `yaml:"amplitude"`
	Period    float64    `yaml:"period"`
	Position  [3]float64 `yaml:"position"`
	Material  int        `yaml:"material,omitempty"`
}

// Height returns the terrain height at (x, z) relative to its position.
func (t *Terrain) Height(x, z float64) float64 {
	if t.Period <= 0 {
		return 0
	}
	k := 2 * math.Pi / t.Period
	return t.Amplitude * math.Sin(k*x) * math.Cos(k*z)
}

// Names returns the names of the bodies built from b.
func (b *Body) Names() []string {
	if b.Repeat <= 1 {
		return []string{b.Name}
	}
	names := make([]string, b.Repeat)
	for i := range names {
		names[i] = fmt.Sprintf("%s.%d", b.Name, i)
	}
	return names
}

func (s *Scene) validate() error {
	names := make(map[string]bool)
	for i := range s.Bodies {
		b := &s.Bodies[i]
		if b.Name == "" {
			return invalid("body %d has no name", i)
		}
		switch b.Type {
		case "", "dynamic", "static":
		default:
			return invalid("body %q has unknown type %q", b.Name, b.Type)
		}
		if len(b.Shapes) == 0 {
			return invalid("body %q has no shape", b.Name)
		}
		if b.Density < 0 || b.Mass < 0 {
			return invalid("body %q has a negative mass or density", b.Name)
		}
		for _, sh := range b.Shapes {
			if err := sh.validate(b.Name); err != nil {
				return err
			}
		}
		for _, n := range b.Names() {
			if names[n] {
				return invalid("body name %q used twice", n)
			}
			names[n] = true
		}
	}

	for i, j := range s.Joints {
		if !names[j.BodyA] {
			return invalid("joint %d references unknown body %q", i, j.BodyA)
		}
		if j.BodyB != "" && !names[j.BodyB] {
			return invalid("joint %d references unknown body %q", i, j.BodyB)
		}
		switch j.Kind {
		case JointPoint, JointHinge, JointMaxDistance:
		case JointWorldPoint, JointVelocity:
			if j.BodyB != "" {
				return invalid("%s joint %d takes a single body", j.Kind, i)
			}
		default:
			return invalid("joint %d has unknown kind %q", i, j.Kind)
		}
		if j.Kind == JointMaxDistance && j.Distance < 0 {
			return invalid("joint %d has a negative distance", i)
		}
		if j.Limited && j.Lower > j.Upper {
			return invalid("joint %d has inverted limits", i)
		}
	}

	if t := s.Terrain; t != nil {
		if t.Kind != TerrainHeightmap && t.Kind != TerrainMesh {
			return invalid("unknown terrain kind %q", t.Kind)
		}
		if t.Size < 2 || t.Spacing <= 0 {
			return invalid("terrain needs at least 2x2 samples and a positive spacing")
		}
	}
	return nil
}

func (s *Shape) validate(body string) error {
	switch s.Kind {
	case ShapeSphere:
		if s.Radius <= 0 {
			return invalid("sphere of %q needs a positive radius", body)
		}
	case ShapeBox:
		if s.HalfExtents[0] <= 0 || s.HalfExtents[1] <= 0 || s.HalfExtents[2] <= 0 {
			return invalid("box of %q needs positive half extents", body)
		}
	case ShapeCapsule:
		if s.Radius <= 0 || s.Length < 0 {
			return invalid("capsule of %q needs a positive radius", body)
		}
	case ShapePlane:
		if s.Normal == [3]float64{} {
			return invalid("plane of %q needs a normal", body)
		}
	default:
		return invalid("body %q has unknown shape %q", body, s.Kind)
	}
	return nil
}
