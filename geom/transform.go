package geom

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a position and an orientation in 3D space.
// A zero Rotation is treated as the identity so that literal transforms
// such as Transform{Position: p} behave as expected.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// TransformAt creates a transform from a position and a rotation.
func TransformAt(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	return Transform{Position: position, Rotation: rotation}
}

// Orientation returns the rotation, substituting the identity for a zero quaternion.
func (t Transform) Orientation() mgl64.Quat {
	if t.Rotation == (mgl64.Quat{}) {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

// Matrix returns the orientation as an orthonormal 3x3 rotation matrix.
func (t Transform) Matrix() mgl64.Mat3 {
	return t.Orientation().Mat4().Mat3()
}

// Rotate rotates a local direction into world space.
func (t Transform) Rotate(v mgl64.Vec3) mgl64.Vec3 {
	return t.Orientation().Rotate(v)
}

// InverseRotate rotates a world direction into local space.
func (t Transform) InverseRotate(v mgl64.Vec3) mgl64.Vec3 {
	return t.Orientation().Conjugate().Rotate(v)
}

// Apply maps a local point to world space.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotate(p))
}

// ApplyInverse maps a world point to local space.
func (t Transform) ApplyInverse(p mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotate(p.Sub(t.Position))
}

// Mul composes t with a transform expressed in t's local frame.
func (t Transform) Mul(local Transform) Transform {
	return Transform{
		Position: t.Apply(local.Position),
		Rotation: t.Orientation().Mul(local.Orientation()).Normalize(),
	}
}

// Inverse returns the transform mapping world to local space.
func (t Transform) Inverse() Transform {
	inv := t.Orientation().Conjugate()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}

// Axis returns the i-th local axis expressed in world space.
func (t Transform) Axis(i int) mgl64.Vec3 {
	var v mgl64.Vec3
	v[i] = 1
	return t.Rotate(v)
}
