package navmesh

import (
	"testing"

	"github.com/gorustyt/crowdnav/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 3x3 grid of 10x10 cells, the centre cell is a blob.
func newRingMesh(t *testing.T) *NavMesh {
	t.Helper()
	m, err := GridMesh(3, 3, 10, common.Vec2{}, func(c, r int) bool { return c == 1 && r == 1 }, 8)
	require.NoError(t, err)
	return m
}

func TestGridMeshLayout(t *testing.T) {
	m := newRingMesh(t)
	require.NoError(t, m.Validate())
	assert.Equal(t, int32(9), m.PolygonCount())
	assert.Equal(t, int32(8), m.WalkablePolygonCount)
	assert.Equal(t, int32(18), m.TriangleCount())
	assert.Equal(t, int32(16), m.WalkableTriangleCount)
	assert.True(t, m.IsBlob(8))
	assert.Len(t, m.Vertices, 16) // 4x4 lattice

	// polygon 0 is the bottom left cell; its right neighbor is polygon 1
	assert.GreaterOrEqual(t, m.PolyEdgeTo(0, 1), int32(0))
	// polygon 1 (bottom middle) touches the blob above it
	assert.GreaterOrEqual(t, m.PolyEdgeTo(1, 8), int32(0))
	assert.Equal(t, int32(-1), m.PolyEdgeTo(0, 7))

	for tri := int32(0); tri < m.TriangleCount(); tri++ {
		p := m.PolygonOfTriangle(tri)
		s, e := common.Span(m.PolyTris, p)
		assert.True(t, tri >= s && tri < e)
	}
}

func TestPointLocation(t *testing.T) {
	m := newRingMesh(t)
	p := common.Vec2{3, 2}
	tri := m.TriangleFromPoint(p)
	require.NotEqual(t, int32(-1), tri)
	assert.Equal(t, int32(0), m.PolygonOfTriangle(tri))
	assert.Equal(t, int32(0), m.PolygonFromPoint(p))
	assert.Equal(t, tri, m.TriangleFromPolyPoint(p, 0))
	assert.Equal(t, int32(-1), m.TriangleFromPolyPoint(p, 1))

	// the blob is not walkable
	assert.Equal(t, int32(-1), m.TriangleFromPoint(common.Vec2{15, 15}))
	assert.Equal(t, int32(-1), m.PolygonFromPoint(common.Vec2{15, 15}))
	assert.Equal(t, int32(8), m.BlobFromPoint(common.Vec2{15, 15}))

	// off the mesh entirely
	assert.Equal(t, int32(-1), m.TriangleFromPoint(common.Vec2{-5, -5}))
	assert.Equal(t, int32(-1), m.TriangleFromPoint(common.Vec2{1e6, 1e6}))
}

func TestLocateUsesHintAndNeighbors(t *testing.T) {
	m := newRingMesh(t)
	start := m.TriangleFromPoint(common.Vec2{2, 1})
	require.NotEqual(t, int32(-1), start)
	assert.Equal(t, start, m.Locate(common.Vec2{2, 1}, start))

	// one step into the next cell resolves through the fallback
	next := m.Locate(common.Vec2{12, 1}, start)
	assert.Equal(t, int32(1), m.PolygonOfTriangle(next))
	assert.Equal(t, int32(-1), m.Locate(common.Vec2{15, 15}, start))
}

func TestSharedEdgeIsConsistent(t *testing.T) {
	m := newRingMesh(t)
	// a point on the boundary between cells 0 and 1 must be inside at least one of them
	p := common.Vec2{10, 4}
	a := m.TestPointInsidePolygon(p, 0)
	b := m.TestPointInsidePolygon(p, 1)
	assert.True(t, a || b)
	assert.NotEqual(t, int32(-1), m.TriangleFromPoint(p))
}

func TestSpatialIndexQueries(t *testing.T) {
	m := newRingMesh(t)
	idx := m.TriangleIndex
	assert.Empty(t, idx.Query(common.Vec2{idx.MinX - 1, 0}))
	assert.Empty(t, idx.Query(common.Vec2{0, idx.MaxY + idx.CellSize*float32(idx.GridHeight)}))

	all := idx.QueryArea(idx.MinX, idx.MinY, idx.MaxX, idx.MaxY)
	assert.Len(t, all, int(m.WalkableTriangleCount))
	seen := map[int32]bool{}
	for _, id := range all {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		assert.True(t, m.IsWalkableTriangle(id))
	}

	// a cell far from the geometry holds nothing even though it is inside the bounds
	assert.Empty(t, idx.Query(common.Vec2{idx.MinX + 1, idx.MinY + 1}))
}

func TestSpatialIndexMaxEdge(t *testing.T) {
	idx := NewSpatialIndex(10, common.Vec2{0, 0}, common.Vec2{30, 30})
	tri := []common.Vec2{{20, 20}, {30, 20}, {30, 30}}
	idx.Populate(1, func(int32) []common.Vec2 { return tri })

	assert.Equal(t, []int32{0}, idx.Query(common.Vec2{30, 30}))
	assert.Equal(t, []int32{0}, idx.Query(common.Vec2{30, 25}))
	assert.Empty(t, idx.Query(common.Vec2{30.5, 30}))
	assert.Empty(t, idx.Query(common.Vec2{0, 30}))
}

func TestShapeOverlapRejectsBoundingBoxOnlyHits(t *testing.T) {
	tri := []common.Vec2{{0, 0}, {10, 0}, {0, 10}}
	// cell inside the triangle's bounds but beyond its hypotenuse
	assert.False(t, common.ShapeOverlapsCell(tri, common.Vec2{8, 8}, common.Vec2{10, 10}))
	assert.True(t, common.ShapeOverlapsCell(tri, common.Vec2{1, 1}, common.Vec2{2, 2}))
	assert.True(t, common.ShapeOverlapsCell(tri, common.Vec2{-1, -1}, common.Vec2{20, 20}))
}

func TestRandomTriangleInAreaIsDeterministic(t *testing.T) {
	m := newRingMesh(t)
	a := m.RandomTriangleInArea(common.Vec2{15, 15}, 2, 1234)
	b := m.RandomTriangleInArea(common.Vec2{15, 15}, 2, 1234)
	assert.Equal(t, a, b)
	assert.True(t, m.IsWalkableTriangle(a))

	for seed := uint64(0); seed < 50; seed++ {
		tri := m.RandomTriangle(seed)
		assert.True(t, m.IsWalkableTriangle(tri))
	}
}

func TestBlobCornerOffset(t *testing.T) {
	m := newRingMesh(t)
	corner := common.Vec2{10, 10}
	v := m.vertIndexOf(corner)
	require.NotEqual(t, int32(-1), v)

	res, found := m.BlobCornerOffset(corner, v, 2.2)
	require.True(t, found)
	d := float32(2.2 / 1.41421356)
	assert.InDelta(t, 10-d, res[0], 1e-4)
	assert.InDelta(t, 10-d, res[1], 1e-4)

	// a vertex no blob owns is left alone
	outer := m.vertIndexOf(common.Vec2{0, 0})
	res, found = m.BlobCornerOffset(common.Vec2{0, 0}, outer, 2.2)
	assert.False(t, found)
	assert.Equal(t, common.Vec2{0, 0}, res)
}

func (m *NavMesh) vertIndexOf(p common.Vec2) int32 {
	for i, v := range m.Vertices {
		if v == p {
			return int32(i)
		}
	}
	return -1
}

func TestValidateReportsEveryViolation(t *testing.T) {
	m := newRingMesh(t)
	m.TriangleNeighbors[0] = 999
	m.Triangles[1] = -3
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neighbor 999")
	assert.Contains(t, err.Error(), "vertex -3")
}

func TestBuilderRejectsEmptyMesh(t *testing.T) {
	_, err := NewBuilder().Build(8)
	assert.ErrorIs(t, err, ErrEmptyMesh)
}

func TestCodecsRebuildTheSameMesh(t *testing.T) {
	m := newRingMesh(t)
	for name, decode := range map[string]func(*NavMesh) error{
		"bin":   func(dst *NavMesh) error { return dst.FromBin(m.ToBin(), 8) },
		"proto": func(dst *NavMesh) error { return dst.FromProto(m.ToProto(), 8) },
	} {
		t.Run(name, func(t *testing.T) {
			got := &NavMesh{}
			require.NoError(t, decode(got))
			assert.Equal(t, m.Vertices, got.Vertices)
			assert.Equal(t, m.Triangles, got.Triangles)
			assert.Equal(t, m.TriangleNeighbors, got.TriangleNeighbors)
			assert.Equal(t, m.PolyNeighbors, got.PolyNeighbors)
			assert.Equal(t, m.PolyCentroids, got.PolyCentroids)
			assert.Equal(t, m.WalkablePolygonCount, got.WalkablePolygonCount)
			assert.Equal(t, m.TriangleIndex.CellItems, got.TriangleIndex.CellItems)
		})
	}
}

func TestFromBinRejectsGarbage(t *testing.T) {
	err := (&NavMesh{}).FromBin([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 8)
	assert.ErrorIs(t, err, ErrWrongMagic)
	err = (&NavMesh{}).FromBin([]byte{1}, 8)
	assert.Error(t, err)
}
