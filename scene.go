package gravel

import (
	"fmt"

	"github.com/akmonengine/gravel/actor"
	"github.com/akmonengine/gravel/collision"
	"github.com/akmonengine/gravel/config"
	"github.com/akmonengine/gravel/constraint"
	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/material"
	"github.com/akmonengine/gravel/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultDensity applies to scene bodies giving neither mass nor density,
// in kg/m³.
const DefaultDensity = 1000.0

func vec3(v [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// rotation builds the orientation of axis and angle in degrees, identity for
// a zero axis.
func rotation(axis [3]float64, degrees float64) mgl64.Quat {
	a := vec3(axis)
	if a.LenSqr() == 0 || degrees == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(mgl64.DegToRad(degrees), a.Normalize())
}

// BuildScene creates the bodies, terrain and joints of scene and returns the
// bodies by name. Construction stops at the first error, leaving what was
// already built in the world.
func (w *World) BuildScene(scene config.Scene) (map[string]*actor.RigidBody, error) {
	bodies := make(map[string]*actor.RigidBody)

	if scene.Terrain != nil {
		if err := w.buildTerrain(scene.Terrain); err != nil {
			return bodies, err
		}
	}

	for i := range scene.Bodies {
		desc := &scene.Bodies[i]
		for k, name := range desc.Names() {
			offset := vec3(desc.Offset).Mul(float64(k))
			body, err := w.buildBody(desc, offset)
			if err != nil {
				return bodies, fmt.Errorf("body %q: %w", name, err)
			}
			bodies[name] = body
		}
	}

	for i, desc := range scene.Joints {
		c, err := buildJoint(desc, bodies)
		if err != nil {
			return bodies, fmt.Errorf("joint %d: %w", i, err)
		}
		if err := w.AddConstraint(c); err != nil {
			return bodies, fmt.Errorf("joint %d: %w", i, err)
		}
	}
	return bodies, nil
}

func buildPrimitive(desc config.Shape) (shape.Primitive, error) {
	switch desc.Kind {
	case config.ShapeSphere:
		return &shape.Sphere{Radius: desc.Radius}, nil
	case config.ShapeBox:
		return &shape.Box{HalfExtents: vec3(desc.HalfExtents)}, nil
	case config.ShapeCapsule:
		return &shape.Capsule{Radius: desc.Radius, Length: desc.Length}, nil
	case config.ShapePlane:
		return &shape.Plane{Normal: geom.SafeNormalize(vec3(desc.Normal)), Distance: desc.Distance}, nil
	}
	return nil, fmt.Errorf("%w: unknown shape %q", config.ErrInvalidConfig, desc.Kind)
}

func (w *World) buildBody(desc *config.Body, offset mgl64.Vec3) (*actor.RigidBody, error) {
	bodyType := actor.BodyTypeDynamic
	if desc.Type == "static" {
		bodyType = actor.BodyTypeStatic
	}

	skin := collision.NewSkin(nil)
	skin.Material = material.ID(desc.Material)
	for _, sd := range desc.Shapes {
		p, err := buildPrimitive(sd)
		if err != nil {
			return nil, err
		}
		if p.Kind().IsStatic() && bodyType != actor.BodyTypeStatic {
			return nil, fmt.Errorf("%w: %s on a dynamic body", config.ErrInvalidConfig, p.Kind())
		}
		skin.AddPrimitive(p, geom.TransformAt(vec3(sd.Position), rotation(sd.Axis, sd.Angle)))
	}

	transform := geom.TransformAt(vec3(desc.Position).Add(offset), rotation(desc.Axis, desc.Angle))
	body := w.CreateBody(transform, bodyType)
	body.IsTrigger = desc.Trigger
	if err := w.AddSkin(skin, body); err != nil {
		return nil, err
	}

	if bodyType == actor.BodyTypeDynamic {
		density := desc.Density
		if density <= 0 {
			density = DefaultDensity
		}
		if body.SetMassFromSkins(density) && desc.Mass > 0 {
			scale := desc.Mass / body.Mass()
			body.SetMass(desc.Mass)
			body.SetBodyInertia(body.BodyInertia().Mul(scale))
			body.UpdateWorldInertia()
		}
		body.Velocity = vec3(desc.Velocity)
		body.AngularVelocity = vec3(desc.AngularVelocity)
	}
	return body, nil
}

// terrainGrid samples the terrain around its centre, row-major.
func terrainGrid(t *config.Terrain) ([]float64, []mgl64.Vec3) {
	heights := make([]float64, 0, t.Size*t.Size)
	vertices := make([]mgl64.Vec3, 0, t.Size*t.Size)
	half := float64(t.Size-1) / 2
	for j := 0; j < t.Size; j++ {
		for i := 0; i < t.Size; i++ {
			x := (float64(i) - half) * t.Spacing
			z := (float64(j) - half) * t.Spacing
			h := t.Height(x, z)
			heights = append(heights, h)
			vertices = append(vertices, mgl64.Vec3{x, h, z})
		}
	}
	return heights, vertices
}

func (w *World) buildTerrain(t *config.Terrain) error {
	heights, vertices := terrainGrid(t)

	var p shape.Primitive
	switch t.Kind {
	case config.TerrainHeightmap:
		hm, err := shape.NewHeightmap(t.Size, t.Size, t.Spacing, t.Spacing, heights)
		if err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
		p = hm
	case config.TerrainMesh:
		triangles := make([][3]int, 0, 2*(t.Size-1)*(t.Size-1))
		for j := 0; j < t.Size-1; j++ {
			for i := 0; i < t.Size-1; i++ {
				v00 := j*t.Size + i
				v10 := v00 + 1
				v01 := v00 + t.Size
				v11 := v01 + 1
				triangles = append(triangles, [3]int{v00, v01, v10}, [3]int{v10, v01, v11})
			}
		}
		m, err := shape.NewTriangleMesh(vertices, triangles, w.octree.MaxTrianglesPerCell, w.octree.MinCellSize)
		if err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
		p = m
	default:
		return fmt.Errorf("%w: unknown terrain kind %q", config.ErrInvalidConfig, t.Kind)
	}

	skin := collision.NewSkin(nil)
	skin.Material = material.ID(t.Material)
	skin.AddPrimitive(p, geom.NewTransform())
	body := w.CreateBody(geom.TransformAt(vec3(t.Position), mgl64.QuatIdent()), actor.BodyTypeStatic)
	return w.AddSkin(skin, body)
}

func lookup(bodies map[string]*actor.RigidBody, name string) (*actor.RigidBody, error) {
	if name == "" {
		return nil, nil
	}
	body, ok := bodies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
	return body, nil
}

func buildJoint(desc config.Joint, bodies map[string]*actor.RigidBody) (constraint.Constraint, error) {
	a, err := lookup(bodies, desc.BodyA)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: joint without body", config.ErrInvalidConfig)
	}
	b, err := lookup(bodies, desc.BodyB)
	if err != nil {
		return nil, err
	}

	pivot := vec3(desc.Pivot)
	switch desc.Kind {
	case config.JointPoint:
		return constraint.NewPoint(a, b, pivot), nil
	case config.JointWorldPoint:
		return constraint.NewWorldPoint(a, a.Transform.ApplyInverse(pivot), vec3(desc.PivotB)), nil
	case config.JointMaxDistance:
		return constraint.NewMaxDistance(a, pivot, b, vec3(desc.PivotB), desc.Distance), nil
	case config.JointHinge:
		h := constraint.NewHinge(a, b, pivot, vec3(desc.Axis))
		h.Damping = desc.Damping
		if desc.Limited {
			h.SetLimits(mgl64.DegToRad(desc.Lower), mgl64.DegToRad(desc.Upper))
		}
		return h, nil
	case config.JointVelocity:
		frame := constraint.WorldFrame
		if desc.BodyFrame {
			frame = constraint.BodyFrame
		}
		var linear, angular *mgl64.Vec3
		if desc.Linear != nil {
			v := vec3(*desc.Linear)
			linear = &v
		}
		if desc.Angular != nil {
			v := vec3(*desc.Angular)
			angular = &v
		}
		return constraint.NewVelocity(a, linear, angular, frame), nil
	}
	return nil, fmt.Errorf("%w: unknown joint %q", config.ErrInvalidConfig, desc.Kind)
}
