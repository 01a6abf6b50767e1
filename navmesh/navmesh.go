package navmesh

import (
	"fmt"

	"github.com/gorustyt/crowdnav/common"
	"go.uber.org/multierr"
)

// IndexInflation pads the spatial index bounds past the mesh bounds.
const IndexInflation = 50

// NavMesh is the immutable triangle/polygon mesh agents walk on.
// Polygons and triangles at or above the walkable counts are blobs (obstacles).
type NavMesh struct {
	Vertices          []common.Vec2
	Triangles         []int32 // 3 vertex ids per triangle, counter clockwise
	TriangleNeighbors []int32 // entry i is across edge (v[i], v[(i+1)%3]), -1 for none
	TriangleCentroids []common.Vec2

	Polygons          []int32 // countless offsets into PolyVerts
	PolyVerts         []int32
	PolyNeighbors     []int32 // aligned with PolyVerts
	PolyCentroids     []common.Vec2
	PolyTris          []int32 // countless offsets, triangles sorted by polygon
	TriangleToPolygon []int32

	Buildings     []int32 // countless offsets into BuildingVerts
	BuildingVerts []int32

	WalkableTriangleCount int32
	WalkablePolygonCount  int32

	BMin, BMax common.Vec2

	TriangleIndex *SpatialIndex
	PolygonIndex  *SpatialIndex
	BuildingIndex *SpatialIndex
	BlobIndex     *SpatialIndex
}

func (m *NavMesh) TriangleCount() int32 { return int32(len(m.Triangles) / 3) }
func (m *NavMesh) PolygonCount() int32 {
	if len(m.Polygons) == 0 {
		return 0
	}
	return int32(len(m.Polygons) - 1)
}
func (m *NavMesh) BuildingCount() int32 {
	if len(m.Buildings) == 0 {
		return 0
	}
	return int32(len(m.Buildings) - 1)
}

func (m *NavMesh) IsWalkableTriangle(tri int32) bool {
	return tri >= 0 && tri < m.WalkableTriangleCount
}

func (m *NavMesh) IsWalkablePolygon(poly int32) bool {
	return poly >= 0 && poly < m.WalkablePolygonCount
}

func (m *NavMesh) IsBlob(poly int32) bool {
	return poly >= m.WalkablePolygonCount && poly < m.PolygonCount()
}

// TriVerts returns the three vertex ids of tri.
func (m *NavMesh) TriVerts(tri int32) (int32, int32, int32) {
	return m.Triangles[tri*3], m.Triangles[tri*3+1], m.Triangles[tri*3+2]
}

func (m *NavMesh) TriPoints(tri int32) (a, b, c common.Vec2) {
	v1, v2, v3 := m.TriVerts(tri)
	return m.Vertices[v1], m.Vertices[v2], m.Vertices[v3]
}

func (m *NavMesh) TriNeighbor(tri int32, edge int32) int32 {
	return m.TriangleNeighbors[tri*3+edge]
}

// PolyRange returns the [start, end) range of poly inside PolyVerts/PolyNeighbors.
func (m *NavMesh) PolyRange(poly int32) (int32, int32) {
	return common.Span(m.Polygons, poly)
}

func (m *NavMesh) PolyVertices(poly int32) []int32 {
	s, e := m.PolyRange(poly)
	return m.PolyVerts[s:e]
}

func (m *NavMesh) PolyPoints(poly int32) []common.Vec2 {
	ids := m.PolyVertices(poly)
	pts := make([]common.Vec2, len(ids))
	for i, v := range ids {
		pts[i] = m.Vertices[v]
	}
	return pts
}

func (m *NavMesh) BuildingPoints(building int32) []common.Vec2 {
	s, e := common.Span(m.Buildings, building)
	pts := make([]common.Vec2, 0, e-s)
	for _, v := range m.BuildingVerts[s:e] {
		pts = append(pts, m.Vertices[v])
	}
	return pts
}

// PolygonOfTriangle maps a triangle to its owning polygon, -1 for invalid ids.
func (m *NavMesh) PolygonOfTriangle(tri int32) int32 {
	if tri < 0 || int(tri) >= len(m.TriangleToPolygon) {
		return -1
	}
	return m.TriangleToPolygon[tri]
}

// Validate checks the structural invariants of the mesh and reports every
// violation found.
func (m *NavMesh) Validate() (err error) {
	nv := int32(len(m.Vertices))
	nt := m.TriangleCount()
	np := m.PolygonCount()
	if len(m.Triangles)%3 != 0 {
		err = multierr.Append(err, fmt.Errorf("triangle array length %d not a multiple of 3", len(m.Triangles)))
	}
	if len(m.TriangleNeighbors) != len(m.Triangles) {
		err = multierr.Append(err, fmt.Errorf("neighbor array length %d != triangle array length %d", len(m.TriangleNeighbors), len(m.Triangles)))
	}
	if int32(len(m.TriangleToPolygon)) != nt {
		err = multierr.Append(err, fmt.Errorf("triangle to polygon length %d != triangle count %d", len(m.TriangleToPolygon), nt))
	}
	// empty centroid arrays are derived by Init
	if len(m.TriangleCentroids) != 0 && int32(len(m.TriangleCentroids)) != nt {
		err = multierr.Append(err, fmt.Errorf("triangle centroid count %d != triangle count %d", len(m.TriangleCentroids), nt))
	}
	if len(m.PolyCentroids) != 0 && int32(len(m.PolyCentroids)) != np {
		err = multierr.Append(err, fmt.Errorf("polygon centroid count %d != polygon count %d", len(m.PolyCentroids), np))
	}
	if len(m.PolyNeighbors) != len(m.PolyVerts) {
		err = multierr.Append(err, fmt.Errorf("poly neighbor count %d != poly vertex count %d", len(m.PolyNeighbors), len(m.PolyVerts)))
	}
	if len(m.PolyTris) != len(m.Polygons) {
		err = multierr.Append(err, fmt.Errorf("poly tris offsets %d != polygon offsets %d", len(m.PolyTris), len(m.Polygons)))
	}
	if m.WalkableTriangleCount < 0 || m.WalkableTriangleCount > nt || m.WalkablePolygonCount < 0 || m.WalkablePolygonCount > np {
		err = multierr.Append(err, fmt.Errorf("walkable counts out of range: %d/%d triangles, %d/%d polygons",
			m.WalkableTriangleCount, nt, m.WalkablePolygonCount, np))
	}
	if err != nil {
		return err
	}
	for i, v := range m.Triangles {
		if v < 0 || v >= nv {
			err = multierr.Append(err, fmt.Errorf("triangle %d references vertex %d", i/3, v))
		}
	}
	for i, n := range m.TriangleNeighbors {
		if n < -1 || n >= nt {
			err = multierr.Append(err, fmt.Errorf("triangle %d edge %d has neighbor %d", i/3, i%3, n))
		}
	}
	for _, offsets := range [][]int32{m.Polygons, m.PolyTris, m.Buildings} {
		for i := 1; i < len(offsets); i++ {
			if offsets[i] < offsets[i-1] {
				err = multierr.Append(err, fmt.Errorf("offsets not monotone at %d", i))
				break
			}
		}
	}
	if len(m.Polygons) > 0 && int(m.Polygons[np]) != len(m.PolyVerts) {
		err = multierr.Append(err, fmt.Errorf("polygon sentinel %d != vertex count %d", m.Polygons[np], len(m.PolyVerts)))
	}
	for i, v := range m.PolyVerts {
		if v < 0 || v >= nv {
			err = multierr.Append(err, fmt.Errorf("poly vertex slot %d references vertex %d", i, v))
		}
	}
	for i, n := range m.PolyNeighbors {
		if n < -1 || n >= np {
			err = multierr.Append(err, fmt.Errorf("poly vertex slot %d has neighbor %d", i, n))
		}
	}
	for p := int32(0); p < np && len(m.PolyTris) > 0; p++ {
		s, e := common.Span(m.PolyTris, p)
		for t := s; t < e; t++ {
			if t < 0 || t >= nt || m.TriangleToPolygon[t] != p {
				err = multierr.Append(err, fmt.Errorf("polygon %d claims triangle %d", p, t))
			}
		}
	}
	for t := int32(0); t < nt; t++ {
		if p := m.TriangleToPolygon[t]; p < 0 || p >= np {
			err = multierr.Append(err, fmt.Errorf("triangle %d maps to polygon %d", t, p))
		}
	}
	if err != nil {
		return err
	}
	for t := int32(0); t < m.WalkableTriangleCount; t++ {
		if !m.IsWalkablePolygon(m.TriangleToPolygon[t]) {
			err = multierr.Append(err, fmt.Errorf("walkable triangle %d maps to non walkable polygon %d", t, m.TriangleToPolygon[t]))
		}
	}
	return err
}

// Init computes centroids when missing and builds the four spatial indices.
func (m *NavMesh) Init(cellSize float32) error {
	if cellSize <= 0 {
		return fmt.Errorf("navmesh: cell size must be positive, got %v", cellSize)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("navmesh: invalid mesh: %w", err)
	}
	if len(m.TriangleCentroids) == 0 || len(m.PolyCentroids) == 0 {
		m.computeCentroids()
	}
	m.BMin, m.BMax = common.Bounds(m.Vertices)
	inflate := common.Vec2{IndexInflation, IndexInflation}
	imin, imax := m.BMin.Sub(inflate), m.BMax.Add(inflate)

	m.TriangleIndex = NewSpatialIndex(cellSize, imin, imax)
	m.TriangleIndex.Populate(m.WalkableTriangleCount, func(id int32) []common.Vec2 {
		a, b, c := m.TriPoints(id)
		return []common.Vec2{a, b, c}
	})
	m.PolygonIndex = NewSpatialIndex(cellSize, imin, imax)
	m.PolygonIndex.Populate(m.WalkablePolygonCount, m.PolyPoints)
	m.BlobIndex = NewSpatialIndex(cellSize, imin, imax)
	m.BlobIndex.Populate(m.PolygonCount()-m.WalkablePolygonCount, func(id int32) []common.Vec2 {
		return m.PolyPoints(id + m.WalkablePolygonCount)
	})
	m.BlobIndex.offsetIDs(m.WalkablePolygonCount)
	m.BuildingIndex = NewSpatialIndex(cellSize, imin, imax)
	m.BuildingIndex.Populate(m.BuildingCount(), m.BuildingPoints)
	return nil
}

func (m *NavMesh) computeCentroids() {
	nt := m.TriangleCount()
	m.TriangleCentroids = make([]common.Vec2, nt)
	for t := int32(0); t < nt; t++ {
		a, b, c := m.TriPoints(t)
		m.TriangleCentroids[t] = common.Centroid([]common.Vec2{a, b, c})
	}
	np := m.PolygonCount()
	m.PolyCentroids = make([]common.Vec2, np)
	for p := int32(0); p < np; p++ {
		m.PolyCentroids[p] = common.Centroid(m.PolyPoints(p))
	}
}
