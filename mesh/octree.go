package mesh

import (
	"fmt"

	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/internal/assert"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultMaxTrianglesPerCell = 16
	DefaultMinCellSize         = 0.5

	// child boxes are inflated by this fraction of their size when assigning
	// triangles, so triangles lying exactly on a split plane reach both sides
	childInflation = 1e-4
)

type cell struct {
	bounds     geom.AABox
	firstChild int // -1 for a leaf
	triangles  []int
}

func (c *cell) isLeaf() bool {
	return c.firstChild < 0
}

// Octree indexes a static triangle mesh. Cell 0 is the root; a cell is either
// a leaf listing every triangle intersecting its box, or has 8 children stored
// contiguously. Triangles straddling a split plane are listed in every child
// they intersect.
//
// Queries stamp triangles with an epoch to report each one once, so an Octree
// must not be queried from several goroutines at the same time.
type Octree struct {
	vertices  []mgl64.Vec3
	triangles []IndexedTriangle
	cells     []cell
	bounds    geom.AABox

	epoch uint32
	stack []int
}

// NewOctree returns an empty octree.
func NewOctree() *Octree {
	return &Octree{bounds: geom.EmptyBox()}
}

// AddTriangles appends vertices and triangles to the mesh. Triangle indices
// are relative to the given vertices. Zero-area triangles are skipped. Nothing
// is added if any triangle is malformed. The octree must be rebuilt before it
// sees the new triangles.
func (o *Octree) AddTriangles(vertices []mgl64.Vec3, triangles [][3]int) error {
	for i, t := range triangles {
		if !validTriangle(t, len(vertices)) {
			assert.That(false, "triangle %d has invalid indices %v for %d vertices", i, t, len(vertices))
			return fmt.Errorf("%w: triangle %d indices %v with %d vertices", ErrInvalidTriangle, i, t, len(vertices))
		}
	}

	if len(o.triangles) == 0 {
		o.bounds = geom.EmptyBox()
	}
	offset := len(o.vertices)
	o.vertices = append(o.vertices, vertices...)

	for _, t := range triangles {
		if degenerate(vertices, t) {
			continue
		}
		indices := [3]int{t[0] + offset, t[1] + offset, t[2] + offset}
		tri := newIndexedTriangle(o.vertices, indices)
		tri.lastVisited = o.epoch
		o.triangles = append(o.triangles, tri)
		o.bounds = o.bounds.AddBox(tri.Bounds)
	}

	updateConvexity(o.vertices, o.triangles)
	return nil
}

// BuildOctree partitions the triangles. A cell is split into 8 octants while it
// holds more than maxTrianglesPerCell triangles and its half diagonal exceeds
// minCellSize. Any previous partition is discarded.
func (o *Octree) BuildOctree(maxTrianglesPerCell int, minCellSize float64) {
	assert.That(maxTrianglesPerCell > 0, "maxTrianglesPerCell must be positive, got %d", maxTrianglesPerCell)
	maxTrianglesPerCell = max(maxTrianglesPerCell, 1)

	for i := range o.cells {
		o.cells[i].triangles = o.cells[i].triangles[:0]
	}
	o.cells = o.cells[:0]

	rootBounds := o.bounds
	if rootBounds.IsEmpty() {
		rootBounds = geom.AABox{}
	}
	// a cube keeps octants well shaped for long thin meshes
	half := rootBounds.HalfSize()
	side := geom.Max3(half[0], half[1], half[2]) * (1 + childInflation)
	rootBounds = geom.BoxAround(rootBounds.Centre(), mgl64.Vec3{side, side, side})

	if minCellSize <= 0 {
		minCellSize = rootBounds.Radius() * 1e-3
	}

	root := o.newCell(rootBounds)
	for id := range o.triangles {
		o.cells[root].triangles = append(o.cells[root].triangles, id)
	}

	stack := append(o.stack[:0], root)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(o.cells[idx].triangles) <= maxTrianglesPerCell || o.cells[idx].bounds.Radius() <= minCellSize {
			continue
		}

		parent := o.cells[idx].bounds
		first := len(o.cells)
		for k := 0; k < 8; k++ {
			o.newCell(octant(parent, k))
		}
		o.cells[idx].firstChild = first

		for _, id := range o.cells[idx].triangles {
			a, b, c := o.TriangleVertices(id)
			for k := 0; k < 8; k++ {
				child := &o.cells[first+k]
				inflated := child.bounds.Expand(child.bounds.LongestSide() * childInflation)
				if o.triangles[id].Bounds.Overlaps(inflated) && geom.TriangleOverlapsBox(a, b, c, inflated) {
					child.triangles = append(child.triangles, id)
				}
			}
		}
		o.cells[idx].triangles = o.cells[idx].triangles[:0]

		for k := 7; k >= 0; k-- {
			stack = append(stack, first+k)
		}
	}
	o.stack = stack
}

func (o *Octree) newCell(bounds geom.AABox) int {
	idx := len(o.cells)
	if idx < cap(o.cells) {
		// reuse the triangle list of a cell from a previous build
		o.cells = o.cells[:idx+1]
		c := &o.cells[idx]
		c.bounds = bounds
		c.firstChild = -1
		c.triangles = c.triangles[:0]
		return idx
	}
	o.cells = append(o.cells, cell{bounds: bounds, firstChild: -1})
	return idx
}

// octant returns child k of box, bit i of k selecting the upper half on axis i.
func octant(box geom.AABox, k int) geom.AABox {
	centre := box.Centre()
	var child geom.AABox
	for axis := 0; axis < 3; axis++ {
		if k&(1<<axis) != 0 {
			child.Min[axis] = centre[axis]
			child.Max[axis] = box.Max[axis]
		} else {
			child.Min[axis] = box.Min[axis]
			child.Max[axis] = centre[axis]
		}
	}
	return child
}

// GetTrianglesIntersectingAABox appends to out the id of every triangle
// intersecting box, each once, and returns the extended slice.
func (o *Octree) GetTrianglesIntersectingAABox(box geom.AABox, out []int) []int {
	if len(o.cells) == 0 || !o.cells[0].bounds.Overlaps(box) {
		return out
	}

	o.nextEpoch()
	epoch := o.epoch

	stack := append(o.stack[:0], 0)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := &o.cells[idx]

		if !c.isLeaf() {
			for k := 0; k < 8; k++ {
				if o.cells[c.firstChild+k].bounds.Overlaps(box) {
					stack = append(stack, c.firstChild+k)
				}
			}
			continue
		}

		for _, id := range c.triangles {
			t := &o.triangles[id]
			if t.lastVisited == epoch {
				continue
			}
			t.lastVisited = epoch

			if !t.Bounds.Overlaps(box) {
				continue
			}
			a, b, cc := o.TriangleVertices(id)
			if geom.TriangleOverlapsBox(a, b, cc, box) {
				out = append(out, id)
			}
		}
	}
	o.stack = stack

	return out
}

// nextEpoch advances the query epoch. On wraparound every stamp is reset so
// that no triangle looks visited by a query that never saw it.
func (o *Octree) nextEpoch() {
	o.epoch++
	if o.epoch != 0 {
		return
	}
	for i := range o.triangles {
		o.triangles[i].lastVisited = 0
	}
	o.epoch = 1
}

// Clear removes every vertex, triangle and cell. With freeMemory the backing
// storage is released, otherwise it is kept for the next AddTriangles and
// BuildOctree.
func (o *Octree) Clear(freeMemory bool) {
	if freeMemory {
		o.vertices = nil
		o.triangles = nil
		o.cells = nil
		o.stack = nil
	} else {
		o.vertices = o.vertices[:0]
		o.triangles = o.triangles[:0]
		for i := range o.cells {
			o.cells[i].triangles = o.cells[i].triangles[:0]
		}
		o.cells = o.cells[:0]
		o.stack = o.stack[:0]
	}
	o.bounds = geom.EmptyBox()
	o.epoch = 0
}

// ReleaseScratch drops the traversal stack.
func (o *Octree) ReleaseScratch() {
	o.stack = nil
}

func (o *Octree) NumTriangles() int {
	return len(o.triangles)
}

func (o *Octree) NumVertices() int {
	return len(o.vertices)
}

func (o *Octree) NumCells() int {
	return len(o.cells)
}

// Triangle returns the triangle with the given id.
func (o *Octree) Triangle(id int) *IndexedTriangle {
	return &o.triangles[id]
}

func (o *Octree) Vertex(i int) mgl64.Vec3 {
	return o.vertices[i]
}

// TriangleVertices returns the three corners of a triangle.
func (o *Octree) TriangleVertices(id int) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
	v := o.triangles[id].Vertices
	return o.vertices[v[0]], o.vertices[v[1]], o.vertices[v[2]]
}

// Bounds returns the box around every triangle.
func (o *Octree) Bounds() geom.AABox {
	return o.bounds
}

// Depth returns the number of levels of the built tree.
func (o *Octree) Depth() int {
	if len(o.cells) == 0 {
		return 0
	}
	depth := 0
	var walk func(idx, level int)
	walk = func(idx, level int) {
		depth = max(depth, level)
		if c := o.cells[idx]; !c.isLeaf() {
			for k := 0; k < 8; k++ {
				walk(c.firstChild+k, level+1)
			}
		}
	}
	walk(0, 1)
	return depth
}
