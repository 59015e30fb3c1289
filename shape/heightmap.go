package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidHeightmap is returned for a heightmap with fewer than 2x2
// samples, non-positive spacing, or a height count not matching the grid.
var ErrInvalidHeightmap = errors.New("shape: invalid heightmap")

// Heightmap is a regular grid of heights over the local XZ plane, Y up,
// centred on the local origin. Each grid cell is split into two triangles.
type Heightmap struct {
	numX, numZ int
	dx, dz     float64
	heights    []float64

	vertices  []mgl64.Vec3
	triangles []mesh.IndexedTriangle
	local     geom.AABox
}

// NewHeightmap builds a heightmap of numX by numZ samples spaced dx and dz
// apart. heights is row-major: heights[j*numX+i] is the sample at column i, row j.
func NewHeightmap(numX, numZ int, dx, dz float64, heights []float64) (*Heightmap, error) {
	if numX < 2 || numZ < 2 || dx <= 0 || dz <= 0 || len(heights) != numX*numZ {
		return nil, fmt.Errorf("%w: %dx%d samples, spacing %v x %v, %d heights",
			ErrInvalidHeightmap, numX, numZ, dx, dz, len(heights))
	}

	h := &Heightmap{
		numX:    numX,
		numZ:    numZ,
		dx:      dx,
		dz:      dz,
		heights: append([]float64(nil), heights...),
		local:   geom.EmptyBox(),
	}

	h.vertices = make([]mgl64.Vec3, 0, numX*numZ)
	for j := 0; j < numZ; j++ {
		for i := 0; i < numX; i++ {
			v := mgl64.Vec3{h.x(i), heights[j*numX+i], h.z(j)}
			h.vertices = append(h.vertices, v)
			h.local = h.local.AddPoint(v)
		}
	}

	indices := make([][3]int, 0, (numX-1)*(numZ-1)*2)
	for j := 0; j < numZ-1; j++ {
		for i := 0; i < numX-1; i++ {
			v00 := j*numX + i
			v10 := v00 + 1
			v01 := v00 + numX
			v11 := v01 + 1
			indices = append(indices, [3]int{v00, v01, v10}, [3]int{v10, v01, v11})
		}
	}

	triangles, err := mesh.NewTriangles(h.vertices, indices)
	if err != nil {
		return nil, err
	}
	h.triangles = triangles

	return h, nil
}

func (h *Heightmap) x(i int) float64 {
	return (float64(i) - float64(h.numX-1)/2) * h.dx
}

func (h *Heightmap) z(j int) float64 {
	return (float64(j) - float64(h.numZ-1)/2) * h.dz
}

func (h *Heightmap) Kind() Kind {
	return KindHeightmap
}

func (h *Heightmap) Bounds(t geom.Transform) geom.AABox {
	return h.local.Transformed(t)
}

func (h *Heightmap) Volume() float64 {
	return 0
}

func (h *Heightmap) Inertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

func (h *Heightmap) NumX() int {
	return h.numX
}

func (h *Heightmap) NumZ() int {
	return h.numZ
}

// Height returns the sample at column i, row j.
func (h *Heightmap) Height(i, j int) float64 {
	return h.heights[j*h.numX+i]
}

// LocalBounds returns the box around every sample.
func (h *Heightmap) LocalBounds() geom.AABox {
	return h.local
}

// cellRange converts a local interval to the range of cells it covers.
func cellRange(lo, hi, origin, spacing float64, cells int) (int, int, bool) {
	first := int(math.Floor((lo - origin) / spacing))
	last := int(math.Floor((hi - origin) / spacing))
	if last < 0 || first >= cells {
		return 0, 0, false
	}
	return max(first, 0), min(last, cells-1), true
}

// TrianglesInBox appends the triangles of every grid cell overlapping the box.
func (h *Heightmap) TrianglesInBox(local geom.AABox, out []int) []int {
	if !h.local.Overlaps(local) {
		return out
	}
	i0, i1, ok := cellRange(local.Min.X(), local.Max.X(), h.x(0), h.dx, h.numX-1)
	if !ok {
		return out
	}
	j0, j1, ok := cellRange(local.Min.Z(), local.Max.Z(), h.z(0), h.dz, h.numZ-1)
	if !ok {
		return out
	}

	for j := j0; j <= j1; j++ {
		for i := i0; i <= i1; i++ {
			id := 2 * (j*(h.numX-1) + i)
			for k := 0; k < 2; k++ {
				if h.triangles[id+k].Bounds.Overlaps(local) {
					out = append(out, id+k)
				}
			}
		}
	}
	return out
}

func (h *Heightmap) Triangle(id int) *mesh.IndexedTriangle {
	return &h.triangles[id]
}

func (h *Heightmap) TriangleVertices(id int) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
	v := h.triangles[id].Vertices
	return h.vertices[v[0]], h.vertices[v[1]], h.vertices[v[2]]
}

// HeightAt interpolates the surface height at a local (x, z) point over the
// grid triangles. Points outside the grid are clamped to its border.
func (h *Heightmap) HeightAt(x, z float64) float64 {
	fx := geom.Clamp((x-h.x(0))/h.dx, 0, float64(h.numX-1))
	fz := geom.Clamp((z-h.z(0))/h.dz, 0, float64(h.numZ-1))

	i := min(int(fx), h.numX-2)
	j := min(int(fz), h.numZ-2)
	fx -= float64(i)
	fz -= float64(j)

	h00 := h.Height(i, j)
	h10 := h.Height(i+1, j)
	h01 := h.Height(i, j+1)
	h11 := h.Height(i+1, j+1)

	if fx+fz <= 1 {
		return h00 + (h10-h00)*fx + (h01-h00)*fz
	}
	return h11 + (h01-h11)*(1-fx) + (h10-h11)*(1-fz)
}
