package epa

import (
	"errors"
	"math"
	"sync"

	"github.com/akmonengine/gravel/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// every iteration adds one vertex to the initial tetrahedron
	maxPolytopeVertices = 4 + EPAMaxIterations
	// a closed triangulated hull of V vertices has 2V-4 faces, the slack
	// absorbs numerically non-convex expansions
	maxPolytopeFaces = 4 * maxPolytopeVertices
	maxHorizonEdges  = 2 * maxPolytopeVertices

	// faces thinner than this have no usable normal
	degenerateFaceArea = 1e-12
	// a tetrahedron flatter than this does not enclose a volume
	degenerateVolume = 1e-12
	// support points closer than this to a face plane do not see it
	visibilityEpsilon = 1e-10
)

var (
	errDegenerateSimplex = errors.New("epa: flat initial simplex")
	errPolytopeFull      = errors.New("epa: polytope capacity exceeded")
	errEmptyHorizon      = errors.New("epa: support point sees no boundary")
)

// face is a polytope triangle. Its vertices wind counter-clockwise seen from
// outside, so consecutive faces sharing an edge run it in opposite directions.
type face struct {
	vertices [3]int
	normal   mgl64.Vec3
	// distance from the origin to the face plane; +Inf for degenerate faces
	// so they never get picked as closest
	distance float64
}

// result converts the face into the minimum translation it stands for.
func (f *face) result() Result {
	return Result{Normal: snapNormalToAxis(f.normal), Depth: f.distance}
}

// edge is a directed edge between two vertex indices.
type edge struct {
	from, to int
}

// polytope is a convex hull around the origin in Minkowski space, stored in
// fixed arenas sized for EPAMaxIterations expansions.
type polytope struct {
	vertices    [maxPolytopeVertices]mgl64.Vec3
	numVertices int
	faces       [maxPolytopeFaces]face
	numFaces    int
	horizon     [maxHorizonEdges]edge
	numHorizon  int
}

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &polytope{}
	},
}

// init builds the tetrahedron of a full GJK simplex.
func (p *polytope) init(simplex *gjk.Simplex) error {
	p.numVertices, p.numFaces, p.numHorizon = 0, 0, 0

	a, b, c, d := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]
	volume := b.Sub(a).Cross(c.Sub(a)).Dot(d.Sub(a))
	if math.Abs(volume) < degenerateVolume {
		return errDegenerateSimplex
	}
	// d must lie behind abc
	if volume > 0 {
		b, c = c, b
	}
	p.vertices[0], p.vertices[1], p.vertices[2], p.vertices[3] = a, b, c, d
	p.numVertices = 4

	for _, f := range [4][3]int{{0, 1, 2}, {0, 3, 1}, {1, 3, 2}, {2, 3, 0}} {
		if err := p.addFace(f[0], f[1], f[2]); err != nil {
			return err
		}
	}
	return nil
}

func (p *polytope) addFace(a, b, c int) error {
	if p.numFaces == len(p.faces) {
		return errPolytopeFull
	}
	f := face{vertices: [3]int{a, b, c}, distance: math.Inf(1)}
	va := p.vertices[a]
	n := p.vertices[b].Sub(va).Cross(p.vertices[c].Sub(va))
	if length := n.Len(); length > degenerateFaceArea {
		f.normal = n.Mul(1 / length)
		// the origin may sit marginally outside a face of a touching pair
		f.distance = math.Max(f.normal.Dot(va), 0)
	}
	p.faces[p.numFaces] = f
	p.numFaces++
	return nil
}

// closest returns the index of the face nearest to the origin, -1 when no
// face has a usable normal.
func (p *polytope) closest() int {
	best := -1
	distance := math.Inf(1)
	for i := 0; i < p.numFaces; i++ {
		if p.faces[i].distance < distance {
			best, distance = i, p.faces[i].distance
		}
	}
	return best
}

func (p *polytope) sees(i int, point mgl64.Vec3) bool {
	f := &p.faces[i]
	return f.normal.Dot(point.Sub(p.vertices[f.vertices[0]])) > visibilityEpsilon
}

// addHorizonEdge records an edge of a removed face. An edge shared by two
// removed faces shows up in both directions and cancels out, leaving the
// boundary of the removed region.
func (p *polytope) addHorizonEdge(from, to int) error {
	for i := 0; i < p.numHorizon; i++ {
		if e := p.horizon[i]; e.from == to && e.to == from {
			p.numHorizon--
			p.horizon[i] = p.horizon[p.numHorizon]
			return nil
		}
	}
	if p.numHorizon == len(p.horizon) {
		return errPolytopeFull
	}
	p.horizon[p.numHorizon] = edge{from, to}
	p.numHorizon++
	return nil
}

// expand adds support to the hull: every face it sees, the closest one
// included, is removed and the horizon is fanned to the new vertex.
func (p *polytope) expand(support mgl64.Vec3, closest int) error {
	if p.numVertices == len(p.vertices) {
		return errPolytopeFull
	}

	p.numHorizon = 0
	kept := 0
	for i := 0; i < p.numFaces; i++ {
		if i != closest && !p.sees(i, support) {
			p.faces[kept] = p.faces[i]
			kept++
			continue
		}
		v := p.faces[i].vertices
		for k := 0; k < 3; k++ {
			if err := p.addHorizonEdge(v[k], v[(k+1)%3]); err != nil {
				return err
			}
		}
	}
	if p.numHorizon == 0 {
		return errEmptyHorizon
	}
	p.numFaces = kept

	index := p.numVertices
	p.vertices[index] = support
	p.numVertices++
	for i := 0; i < p.numHorizon; i++ {
		if err := p.addFace(p.horizon[i].from, p.horizon[i].to, index); err != nil {
			return err
		}
	}
	return nil
}
