package collision

import (
	"cmp"
	"math"
	"slices"

	"github.com/akmonengine/gravel/geom"
	"github.com/akmonengine/gravel/internal/assert"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey is the integer coordinate of a grid cell.
type CellKey struct {
	X, Y, Z int
}

type gridCell struct {
	skins []int
}

type indexPair struct {
	a, b int
}

// Grid is a uniform spatial hash. Each skin is binned by the centre of its
// bounds and scans its own cell and the 26 around it. The cell size follows
// the largest regular skin every step, so two overlapping regular skins are
// always in neighbouring cells. Skins longer than MaxCellSize (planes,
// terrain) are kept aside and tested against everything.
type Grid struct {
	MinCellSize float64
	MaxCellSize float64

	cellSize float64
	cells    []gridCell
	cellMask int

	keys     []CellKey
	isLarge  []bool
	regular  []int
	oversize []int
	pairs    []indexPair
}

// NewGrid creates a grid with numCells hash buckets, rounded up to a power of two.
func NewGrid(minCellSize, maxCellSize float64, numCells int) *Grid {
	assert.That(minCellSize > 0 && maxCellSize >= minCellSize, "collision: invalid grid cell sizes [%v, %v]", minCellSize, maxCellSize)

	numCells = nextPowerOfTwo(numCells)
	return &Grid{
		MinCellSize: minCellSize,
		MaxCellSize: maxCellSize,
		cellSize:    minCellSize,
		cells:       make([]gridCell, numCells),
		cellMask:    numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

// CellSize returns the cell size chosen by the last update.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

func (g *Grid) UpdateAllCollisions(skins []*Skin, out []Pair) []Pair {
	g.clear()
	if cap(g.keys) < len(skins) {
		g.keys = make([]CellKey, len(skins))
		g.isLarge = make([]bool, len(skins))
	}
	g.keys = g.keys[:len(skins)]
	g.isLarge = g.isLarge[:len(skins)]

	largest := 0.0
	for i, s := range skins {
		g.isLarge[i] = false
		if s.NumPrimitives() == 0 {
			continue
		}
		side := s.bounds.LongestSide()
		if side > g.MaxCellSize {
			g.isLarge[i] = true
			g.oversize = append(g.oversize, i)
			continue
		}
		g.regular = append(g.regular, i)
		largest = math.Max(largest, side)
	}
	g.cellSize = geom.Clamp(largest, g.MinCellSize, g.MaxCellSize)

	for _, i := range g.regular {
		key := g.worldToCell(skins[i].bounds.Centre())
		g.keys[i] = key
		bucket := &g.cells[g.hashCell(key)]
		bucket.skins = append(bucket.skins, i)
	}

	for _, i := range g.regular {
		g.scanNeighbours(skins, i)
	}

	for _, o := range g.oversize {
		for i, s := range skins {
			if i == o || s.NumPrimitives() == 0 || (g.isLarge[i] && i < o) {
				continue
			}
			if skins[o].bounds.Overlaps(s.bounds) {
				g.pairs = append(g.pairs, indexPair{a: min(o, i), b: max(o, i)})
			}
		}
	}

	slices.SortFunc(g.pairs, func(x, y indexPair) int {
		if c := cmp.Compare(x.a, y.a); c != 0 {
			return c
		}
		return cmp.Compare(x.b, y.b)
	})
	for _, p := range g.pairs {
		out = append(out, Pair{A: skins[p.a], B: skins[p.b]})
	}
	return out
}

// scanNeighbours pairs skin i with the later skins of the 27 surrounding
// cells. Several cells may hash to the same bucket, each bucket is read once.
func (g *Grid) scanNeighbours(skins []*Skin, i int) {
	key := g.keys[i]
	var visited [27]int
	n := 0

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				bucket := g.hashCell(CellKey{key.X + dx, key.Y + dy, key.Z + dz})
				if slices.Contains(visited[:n], bucket) {
					continue
				}
				visited[n] = bucket
				n++

				for _, j := range g.cells[bucket].skins {
					if j <= i {
						continue
					}
					if skins[i].bounds.Overlaps(skins[j].bounds) {
						g.pairs = append(g.pairs, indexPair{a: i, b: j})
					}
				}
			}
		}
	}
}

func (g *Grid) clear() {
	for i := range g.cells {
		g.cells[i].skins = g.cells[i].skins[:0]
	}
	g.regular = g.regular[:0]
	g.oversize = g.oversize[:0]
	g.pairs = g.pairs[:0]
}

// ReleaseScratch frees the bucket contents and the per-skin buffers.
func (g *Grid) ReleaseScratch() {
	for i := range g.cells {
		g.cells[i].skins = nil
	}
	g.keys = nil
	g.isLarge = nil
	g.regular = nil
	g.oversize = nil
	g.pairs = nil
}

func (g *Grid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / g.cellSize)),
		Y: int(math.Floor(pos.Y() / g.cellSize)),
		Z: int(math.Floor(pos.Z() / g.cellSize)),
	}
}

func (g *Grid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & g.cellMask
}
