package pathfind

import (
	"math"
	"testing"

	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/navmesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testFreeWidth = 6

// 3x3 grid of 10x10 cells around a blob. Walkable polygons, row major:
//
//	5 6 7
//	3 # 4
//	0 1 2
func newRingQuery(t *testing.T) *CorridorQuery {
	t.Helper()
	m, err := navmesh.GridMesh(3, 3, 10, common.Vec2{}, func(c, r int) bool { return c == 1 && r == 1 }, 8)
	require.NoError(t, err)
	return NewCorridorQuery(m, zap.NewNop())
}

func newMazeQuery(t *testing.T) *CorridorQuery {
	t.Helper()
	blocked := func(c, r int) bool { return (c == 2 && r < 4) || (c == 4 && r > 1) }
	m, err := navmesh.GridMesh(6, 6, 10, common.Vec2{-30, -30}, blocked, 8)
	require.NoError(t, err)
	return NewCorridorQuery(m, nil)
}

func vertexID(t *testing.T, m *navmesh.NavMesh, p common.Vec2) int32 {
	t.Helper()
	for i, v := range m.Vertices {
		if v == p {
			return int32(i)
		}
	}
	t.Fatalf("no vertex at %v", p)
	return -1
}

func requireConnected(t *testing.T, m *navmesh.NavMesh, corridor []int32, start, end int32) {
	t.Helper()
	require.NotEmpty(t, corridor)
	assert.Equal(t, start, corridor[0])
	assert.Equal(t, end, corridor[len(corridor)-1])
	for i := 1; i < len(corridor); i++ {
		assert.True(t, m.IsWalkablePolygon(corridor[i]))
		assert.GreaterOrEqual(t, m.PolyEdgeTo(corridor[i-1], corridor[i]), int32(0),
			"%d and %d are not adjacent", corridor[i-1], corridor[i])
	}
}

// dijkstra returns the centroid distance of the cheapest polygon path.
func dijkstra(m *navmesh.NavMesh, start, end int32) float32 {
	n := m.WalkablePolygonCount
	dist := make([]float32, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = float32(math.Inf(1))
	}
	dist[start] = 0
	for {
		cur := int32(-1)
		for i := int32(0); i < n; i++ {
			if !done[i] && (cur == -1 || dist[i] < dist[cur]) {
				cur = i
			}
		}
		if cur == -1 || math.IsInf(float64(dist[cur]), 1) {
			return dist[end]
		}
		done[cur] = true
		s, e := m.PolyRange(cur)
		for k := s; k < e; k++ {
			nei := m.PolyNeighbors[k]
			if !m.IsWalkablePolygon(nei) {
				continue
			}
			if d := dist[cur] + common.Dist(m.PolyCentroids[cur], m.PolyCentroids[nei]); d < dist[nei] {
				dist[nei] = d
			}
		}
	}
}

func TestFindCorridorSamePolygon(t *testing.T) {
	q := newRingQuery(t)
	out := []int32{7, 7, 7}
	st := q.FindCorridor(testFreeWidth, 10, common.Vec2{2, 2}, common.Vec2{8, 8}, -1, -1, &out)
	require.True(t, st.Succeed())
	assert.Equal(t, []int32{0}, out)
}

func TestFindCorridorAroundObstacle(t *testing.T) {
	q := newRingQuery(t)
	var out []int32
	st := q.FindCorridor(NoStrayPenalty, 0, common.Vec2{5, 5}, common.Vec2{25, 25}, -1, -1, &out)
	require.True(t, st.Succeed(), st.String())
	requireConnected(t, q.Mesh(), out, 0, 7)
	assert.Len(t, out, 5)
	assert.NotContains(t, out, int32(8))
	assert.InDelta(t, 40, CorridorCost(q.Mesh(), out), 1e-4)
}

func TestFindCorridorMatchesDijkstra(t *testing.T) {
	q := newMazeQuery(t)
	m := q.Mesh()
	var out []int32
	for start := int32(0); start < m.WalkablePolygonCount; start += 3 {
		for end := int32(0); end < m.WalkablePolygonCount; end += 2 {
			st := q.FindCorridor(NoStrayPenalty, 10, m.PolyCentroids[start], m.PolyCentroids[end], start, end, &out)
			require.True(t, st.Succeed(), "%d -> %d: %s", start, end, st)
			requireConnected(t, m, out, start, end)
			assert.InDelta(t, dijkstra(m, start, end), CorridorCost(m, out), 1e-3, "%d -> %d", start, end)
		}
	}
}

func TestFindCorridorWithStrayPenaltyStaysValid(t *testing.T) {
	q := newMazeQuery(t)
	m := q.Mesh()
	var out []int32
	start := m.PolygonFromPoint(common.Vec2{-25, -25})
	end := m.PolygonFromPoint(common.Vec2{25, 25})
	require.NotEqual(t, int32(-1), start)
	require.NotEqual(t, int32(-1), end)
	st := q.FindCorridor(testFreeWidth, 10, common.Vec2{-25, -25}, common.Vec2{25, 25}, -1, -1, &out)
	require.True(t, st.Succeed())
	requireConnected(t, m, out, start, end)

	// the working set is reused, a second search gives the same answer
	again := []int32{}
	st = q.FindCorridor(testFreeWidth, 10, common.Vec2{-25, -25}, common.Vec2{25, 25}, -1, -1, &again)
	require.True(t, st.Succeed())
	assert.Equal(t, out, again)
}

func TestFindCorridorFailures(t *testing.T) {
	// cells 0 1 # 3 4: the wall splits the strip
	m, err := navmesh.GridMesh(5, 1, 10, common.Vec2{}, func(c, r int) bool { return c == 2 }, 8)
	require.NoError(t, err)
	q := NewCorridorQuery(m, nil)

	out := []int32{42}
	st := q.FindCorridor(NoStrayPenalty, 0, common.Vec2{5, 5}, common.Vec2{45, 5}, -1, -1, &out)
	assert.True(t, st.Failed())
	assert.True(t, st.Detail(navmesh.StatusNoPath))
	assert.Equal(t, []int32{42}, out)

	st = q.FindCorridor(NoStrayPenalty, 0, common.Vec2{-5, 5}, common.Vec2{45, 5}, -1, -1, &out)
	assert.True(t, st.Detail(navmesh.StatusInvalidParam))
	assert.Equal(t, []int32{42}, out)

	q.MaxIterations = 1
	st = q.FindCorridor(NoStrayPenalty, 0, common.Vec2{5, 5}, common.Vec2{15, 5}, -1, -1, &out)
	assert.True(t, st.Detail(navmesh.StatusOutOfNodes))
	assert.Equal(t, []int32{42}, out)
}

func TestNodeQueueUpdate(t *testing.T) {
	nodes := []*corridorNode{{poly: 0, total: 5}, {poly: 1, total: 3}, {poly: 2, total: 4}}
	q := NewNodeQueue(func(a, b *corridorNode) bool { return a.total < b.total })
	for _, n := range nodes {
		q.Offer(n)
	}
	nodes[0].total = 1
	q.Update(nodes[0])
	assert.Equal(t, int32(0), q.Poll().poly)
	assert.False(t, q.Contains(nodes[0]))
	assert.Equal(t, int32(1), q.Poll().poly)
	assert.Equal(t, int32(2), q.Poll().poly)
	assert.True(t, q.Empty())
}

func TestFindNextCornerAroundObstacle(t *testing.T) {
	q := newRingQuery(t)
	m := q.Mesh()
	corridor := []int32{0, 1, 2, 4, 7}
	pos, end := common.Vec2{5, 5}, common.Vec2{25, 25}

	c := q.FindNextCorner(pos, corridor, end, 0)
	require.Equal(t, int32(2), c.NumValid)
	assert.Equal(t, common.Vec2{20, 10}, c.Corner1)
	assert.Equal(t, vertexID(t, m, common.Vec2{20, 10}), c.VIdx1)
	assert.Equal(t, int32(2), m.PolygonOfTriangle(c.Tri1))
	assert.Equal(t, end, c.Corner2)
	assert.Equal(t, int32(-1), c.VIdx2)

	// restartable: same input, same corners
	assert.Equal(t, c, q.FindNextCorner(pos, corridor, end, 0))

	off := q.FindNextCorner(pos, corridor, end, 2.2)
	d := float32(2.2 / math.Sqrt2)
	assert.InDelta(t, 20+d, off.Corner1[0], 1e-4)
	assert.InDelta(t, 10-d, off.Corner1[1], 1e-4)
	assert.Equal(t, end, off.Corner2)
	assert.Equal(t, off, q.FindNextCorner(pos, corridor, end, 2.2))
}

func TestFindNextCornerShortCorridors(t *testing.T) {
	q := newRingQuery(t)
	end := common.Vec2{8, 3}

	c := q.FindNextCorner(common.Vec2{1, 1}, nil, end, 2.2)
	assert.Equal(t, int32(1), c.NumValid)
	assert.Equal(t, end, c.Corner1)
	assert.Equal(t, int32(-1), c.Tri1)

	c = q.FindNextCorner(common.Vec2{1, 1}, []int32{0}, end, 2.2)
	assert.Equal(t, int32(1), c.NumValid)
	assert.Equal(t, end, c.Corner1)
	assert.Equal(t, q.Mesh().TriangleFromPolyPoint(end, 0), c.Tri1)

	// visible destination: only the destination is reported
	c = q.FindNextCorner(common.Vec2{5, 5}, []int32{0, 1}, common.Vec2{15, 5}, 2.2)
	assert.Equal(t, int32(1), c.NumValid)
	assert.Equal(t, common.Vec2{15, 5}, c.Corner1)
	assert.Equal(t, q.Mesh().TriangleFromPolyPoint(common.Vec2{15, 5}, 1), c.Tri1)
}

func TestFindNextCornerStraightCorridor(t *testing.T) {
	q := newRingQuery(t)
	end := common.Vec2{28, 5}

	c := q.FindNextCorner(common.Vec2{2, 5}, []int32{0, 1, 2}, end, 2.2)
	assert.Equal(t, int32(1), c.NumValid)
	assert.Equal(t, end, c.Corner1)
	assert.Equal(t, int32(-1), c.VIdx1)
	assert.Equal(t, q.Mesh().TriangleFromPolyPoint(end, 2), c.Tri1)

	// one turn: the turning point, then the destination
	c = q.FindNextCorner(common.Vec2{2, 5}, []int32{0, 1, 2, 4}, common.Vec2{25, 15}, 0)
	assert.Equal(t, int32(2), c.NumValid)
	assert.NotEqual(t, common.Vec2{25, 15}, c.Corner1)
	assert.Equal(t, common.Vec2{25, 15}, c.Corner2)
}

func TestCornerOffsetSkipsDestination(t *testing.T) {
	q := newRingQuery(t)
	m := q.Mesh()
	corner := common.Vec2{20, 10}
	v := vertexID(t, m, corner)
	tri := m.TriangleFromPolyPoint(corner, 2)
	require.NotEqual(t, int32(-1), tri)

	assert.Equal(t, corner, q.applyCornerOffset(corner, v, tri, corner, 2.2))
	assert.NotEqual(t, corner, q.applyCornerOffset(corner, v, tri, common.Vec2{25, 25}, 2.2))
	assert.Equal(t, corner, q.applyCornerOffset(corner, -1, tri, common.Vec2{25, 25}, 2.2))
	// (0,0) is not on any obstacle: logged, not moved
	assert.Equal(t, common.Vec2{0, 0}, q.applyCornerOffset(common.Vec2{0, 0}, 0, 0, common.Vec2{25, 25}, 2.2))
}

func TestFindCornersFullPath(t *testing.T) {
	q := newRingQuery(t)
	path := q.FindCorners(common.Vec2{5, 5}, []int32{0, 1, 2, 4, 7}, common.Vec2{25, 25}, 0)
	require.Len(t, path, 3)
	assert.Equal(t, common.Vec2{5, 5}, path[0].Point)
	assert.Equal(t, common.Vec2{20, 10}, path[1].Point)
	assert.Equal(t, common.Vec2{25, 25}, path[2].Point)
	assert.Equal(t, int32(7), path[2].Poly)

	assert.Len(t, q.FindCorners(common.Vec2{5, 5}, []int32{0, 1, 2, 4, 7}, common.Vec2{25, 25}, 2), 2)
	assert.Equal(t, []Corner{{Point: common.Vec2{1, 1}, Poly: -1}}, q.FindCorners(common.Vec2{}, nil, common.Vec2{1, 1}, 0))
}

func TestRaycastSameTriangle(t *testing.T) {
	q := newRingQuery(t)
	start, end := common.Vec2{2, 1}, common.Vec2{4, 1}
	tri := q.Mesh().TriangleFromPoint(start)
	require.NotEqual(t, int32(-1), tri)

	res := q.RaycastCorridor(start, end, -1, -1)
	assert.False(t, res.Hit)
	assert.Equal(t, []int32{tri}, res.Corridor)

	assert.False(t, q.RaycastPoint(start, end, tri, tri).Hit)
}

func TestRaycastAcrossPolygons(t *testing.T) {
	q := newRingQuery(t)
	res := q.RaycastCorridor(common.Vec2{6, 4}, common.Vec2{26, 4}, -1, -1)
	require.False(t, res.Hit)
	assert.Equal(t, []int32{0, 1, 2}, q.TrisToPolys(res.Corridor))
	assert.Equal(t, res.Corridor[len(res.Corridor)-1], q.Mesh().TriangleFromPoint(common.Vec2{26, 4}))
}

func TestRaycastBlockedByObstacle(t *testing.T) {
	q := newRingQuery(t)
	m := q.Mesh()
	res := q.RaycastCorridor(common.Vec2{6, 14}, common.Vec2{25, 14}, -1, -1)
	require.True(t, res.Hit)
	assert.ElementsMatch(t, []common.Vec2{{10, 10}, {10, 20}}, []common.Vec2{res.HitP1, res.HitP2})
	assert.Equal(t, res.HitP1, m.Vertices[res.HitV1])
	assert.Equal(t, res.HitP2, m.Vertices[res.HitV2])
	assert.True(t, m.IsBlob(m.PolygonOfTriangle(res.BlockingTri)))
	assert.Equal(t, int32(3), m.PolygonOfTriangle(res.HitTri))
	assert.Equal(t, []int32{3}, q.TrisToPolys(res.Corridor))

	pt := q.RaycastPoint(common.Vec2{6, 14}, common.Vec2{25, 14}, -1, -1)
	assert.True(t, pt.Hit)
	assert.Equal(t, res.HitP1, pt.HitP1)
	assert.Nil(t, pt.Corridor)
}

func TestRaycastOffMesh(t *testing.T) {
	q := newRingQuery(t)
	start := common.Vec2{-5, -5}
	res := q.RaycastCorridor(start, common.Vec2{5, 5}, -1, -1)
	assert.True(t, res.Hit)
	assert.Empty(t, res.Corridor)
	assert.Equal(t, start, res.HitP1)
	assert.Equal(t, start, res.HitP2)
}
