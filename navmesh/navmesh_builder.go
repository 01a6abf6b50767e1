package navmesh

import (
	"errors"
	"fmt"

	"github.com/gorustyt/crowdnav/common"
)

var ErrEmptyMesh = errors.New("navmesh: no walkable polygons")

// Builder assembles a NavMesh from convex polygons sharing vertices.
// Walkable polygons always get the lower ids, blobs follow.
type Builder struct {
	vertices  []common.Vec2
	vertIndex map[common.Vec2]int32
	walkable  [][]int32
	blobs     [][]int32
	buildings [][]int32
}

func NewBuilder() *Builder {
	return &Builder{vertIndex: map[common.Vec2]int32{}}
}

// AddVertex returns the id of p, reusing an existing vertex at the exact same position.
func (b *Builder) AddVertex(p common.Vec2) int32 {
	if id, ok := b.vertIndex[p]; ok {
		return id
	}
	id := int32(len(b.vertices))
	b.vertices = append(b.vertices, p)
	b.vertIndex[p] = id
	return id
}

func (b *Builder) ring(pts []common.Vec2) []int32 {
	if common.PolygonArea2(pts) < 0 {
		rev := make([]common.Vec2, len(pts))
		copy(rev, pts)
		common.Reverse(rev)
		pts = rev
	}
	ids := make([]int32, len(pts))
	for i, p := range pts {
		ids[i] = b.AddVertex(p)
	}
	return ids
}

func (b *Builder) AddWalkable(pts ...common.Vec2) int32 {
	b.walkable = append(b.walkable, b.ring(pts))
	return int32(len(b.walkable) - 1)
}

func (b *Builder) AddBlob(pts ...common.Vec2) {
	b.blobs = append(b.blobs, b.ring(pts))
}

func (b *Builder) AddBuilding(pts ...common.Vec2) {
	b.buildings = append(b.buildings, b.ring(pts))
}

type edgeKey [2]int32

func makeEdgeKey(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Build triangulates every polygon, links neighbors across shared edges and
// indexes the result with the given cell size.
func (b *Builder) Build(cellSize float32) (*NavMesh, error) {
	if len(b.walkable) == 0 {
		return nil, ErrEmptyMesh
	}
	polys := append(append([][]int32{}, b.walkable...), b.blobs...)
	m := &NavMesh{
		Vertices:             append([]common.Vec2(nil), b.vertices...),
		WalkablePolygonCount: int32(len(b.walkable)),
	}
	m.Polygons = make([]int32, 0, len(polys)+1)
	m.PolyTris = make([]int32, 0, len(polys)+1)
	for pi, ring := range polys {
		if len(ring) < 3 {
			return nil, fmt.Errorf("navmesh: polygon %d has %d vertices", pi, len(ring))
		}
		m.Polygons = append(m.Polygons, int32(len(m.PolyVerts)))
		m.PolyVerts = append(m.PolyVerts, ring...)
		m.PolyTris = append(m.PolyTris, m.TriangleCount())
		for k := 1; k+1 < len(ring); k++ {
			m.Triangles = append(m.Triangles, ring[0], ring[k], ring[k+1])
			m.TriangleToPolygon = append(m.TriangleToPolygon, int32(pi))
		}
		if pi == len(b.walkable)-1 {
			m.WalkableTriangleCount = m.TriangleCount()
		}
	}
	m.Polygons = append(m.Polygons, int32(len(m.PolyVerts)))
	m.PolyTris = append(m.PolyTris, m.TriangleCount())

	m.TriangleNeighbors = linkEdges(m.Triangles, func(i int) (int32, int32) {
		t := i / 3
		return m.Triangles[i], m.Triangles[t*3+(i+1)%3]
	}, func(i int) int32 { return int32(i / 3) })
	m.PolyNeighbors = linkEdges(m.PolyVerts, func(i int) (int32, int32) {
		a, c := m.PolyEdgeVerts(polyOfSlot(m.Polygons, int32(i)), int32(i))
		return a, c
	}, func(i int) int32 { return polyOfSlot(m.Polygons, int32(i)) })

	for _, ring := range b.buildings {
		m.Buildings = append(m.Buildings, int32(len(m.BuildingVerts)))
		m.BuildingVerts = append(m.BuildingVerts, ring...)
	}
	if len(m.BuildingVerts) > 0 {
		m.Buildings = append(m.Buildings, int32(len(m.BuildingVerts)))
	}
	if err := m.Init(cellSize); err != nil {
		return nil, err
	}
	return m, nil
}

// linkEdges pairs every edge slot with the owner of the opposite slot sharing
// the same two vertices.
func linkEdges(slots []int32, edge func(i int) (int32, int32), owner func(i int) int32) []int32 {
	seen := make(map[edgeKey]int, len(slots))
	res := make([]int32, len(slots))
	for i := range slots {
		res[i] = -1
		a, c := edge(i)
		k := makeEdgeKey(a, c)
		if j, ok := seen[k]; ok {
			res[i] = owner(j)
			res[j] = owner(i)
			delete(seen, k)
			continue
		}
		seen[k] = i
	}
	return res
}

func polyOfSlot(offsets []int32, slot int32) int32 {
	lo, hi := 0, len(offsets)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= slot {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return int32(lo)
}

// GridMesh builds a cols x rows mesh of square walkable cells of the given
// size starting at origin. Cells for which blocked returns true become blobs.
func GridMesh(cols, rows int, size float32, origin common.Vec2, blocked func(c, r int) bool, cellSize float32) (*NavMesh, error) {
	b := NewBuilder()
	corner := func(c, r int) common.Vec2 {
		return common.Vec2{origin[0] + float32(c)*size, origin[1] + float32(r)*size}
	}
	var blobCells [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if blocked != nil && blocked(c, r) {
				blobCells = append(blobCells, [2]int{c, r})
				continue
			}
			b.AddWalkable(corner(c, r), corner(c+1, r), corner(c+1, r+1), corner(c, r+1))
		}
	}
	for _, bc := range blobCells {
		c, r := bc[0], bc[1]
		b.AddBlob(corner(c, r), corner(c+1, r), corner(c+1, r+1), corner(c, r+1))
	}
	return b.Build(cellSize)
}
