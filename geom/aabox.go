package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABox represents an axis-aligned bounding box
type AABox struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyBox returns an inverted box, the identity for AddPoint and AddBox.
func EmptyBox() AABox {
	return AABox{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// BoxAround returns the box centred on centre with the given half extents.
func BoxAround(centre, halfExtents mgl64.Vec3) AABox {
	return AABox{Min: centre.Sub(halfExtents), Max: centre.Add(halfExtents)}
}

// IsEmpty reports whether the box has an inverted axis.
func (a AABox) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

// ContainsPoint checks if a point is inside the AABox
func (a AABox) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two boxes overlap (touching counts as overlapping)
func (a AABox) Overlaps(other AABox) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// AddPoint returns the box grown to include p.
func (a AABox) AddPoint(p mgl64.Vec3) AABox {
	return AABox{Min: MinVec(a.Min, p), Max: MaxVec(a.Max, p)}
}

// AddBox returns the union of both boxes.
func (a AABox) AddBox(other AABox) AABox {
	return AABox{Min: MinVec(a.Min, other.Min), Max: MaxVec(a.Max, other.Max)}
}

// Expand grows the box by margin on every side.
func (a AABox) Expand(margin float64) AABox {
	m := mgl64.Vec3{margin, margin, margin}
	return AABox{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Centre returns the middle of the box.
func (a AABox) Centre() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the full extents of the box.
func (a AABox) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// HalfSize returns half the extents of the box.
func (a AABox) HalfSize() mgl64.Vec3 {
	return a.Size().Mul(0.5)
}

// Radius returns the half diagonal, the radius of the sphere around the centre.
func (a AABox) Radius() float64 {
	return a.HalfSize().Len()
}

// LongestSide returns the largest of the three extents.
func (a AABox) LongestSide() float64 {
	s := a.Size()
	return Max3(s[0], s[1], s[2])
}

// Corners returns the 8 corners, bit i of the index selecting Max on axis i.
func (a AABox) Corners() [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	for i := range corners {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corners[i][axis] = a.Max[axis]
			} else {
				corners[i][axis] = a.Min[axis]
			}
		}
	}
	return corners
}

// Transformed returns the world box enclosing this local box under t.
func (a AABox) Transformed(t Transform) AABox {
	centre := t.Apply(a.Centre())
	half := a.HalfSize()
	m := t.Matrix()

	// |R| * half gives the extent of the rotated box along each world axis
	var extent mgl64.Vec3
	for row := 0; row < 3; row++ {
		extent[row] = math.Abs(m.At(row, 0))*half[0] +
			math.Abs(m.At(row, 1))*half[1] +
			math.Abs(m.At(row, 2))*half[2]
	}
	return BoxAround(centre, extent)
}
