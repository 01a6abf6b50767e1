package navmesh

import "github.com/gorustyt/crowdnav/common"

const (
	randomAreaAttempts = 20
	randomMeshAttempts = 10
)

func pickIndex(r float32, n int) int {
	return min(int(r*float32(n)), n-1)
}

// RandomTriangle samples a walkable triangle over the whole index. seed is
// consumed locally; the caller advances its own seed afterwards.
func (m *NavMesh) RandomTriangle(seed uint64) int32 {
	ti := m.TriangleIndex
	for i := 0; i < randomMeshAttempts; i++ {
		rx := common.SeedToRandom(&seed)
		ry := common.SeedToRandom(&seed)
		p := common.Vec2{ti.MinX + rx*(ti.MaxX-ti.MinX), ti.MinY + ry*(ti.MaxY-ti.MinY)}
		if tri := m.TriangleFromPoint(p); tri != -1 {
			return tri
		}
	}
	if m.WalkableTriangleCount > 0 {
		return int32(pickIndex(common.SeedToRandom(&seed), int(m.WalkableTriangleCount)))
	}
	return -1
}

// RandomTriangleInArea samples a walkable triangle inside the square of
// cells*CellSize half extent around center, clipped to the index bounds.
func (m *NavMesh) RandomTriangleInArea(center common.Vec2, cells int32, seed uint64) int32 {
	ti := m.TriangleIndex
	half := float32(cells) * ti.CellSize
	minX := max(center[0]-half, ti.MinX)
	maxX := min(center[0]+half, ti.MaxX)
	minY := max(center[1]-half, ti.MinY)
	maxY := min(center[1]+half, ti.MaxY)

	for i := 0; i < randomAreaAttempts; i++ {
		rx := common.SeedToRandom(&seed)
		ry := common.SeedToRandom(&seed)
		p := common.Vec2{minX + rx*(maxX-minX), minY + ry*(maxY-minY)}
		if tri := m.TriangleFromPoint(p); tri != -1 {
			return tri
		}
	}
	if candidates := ti.QueryArea(minX, minY, maxX, maxY); len(candidates) > 0 {
		return candidates[pickIndex(common.SeedToRandom(&seed), len(candidates))]
	}
	return m.RandomTriangle(seed)
}

// RandomPolygonInArea is RandomTriangleInArea mapped to the owning polygon.
func (m *NavMesh) RandomPolygonInArea(center common.Vec2, cells int32, seed uint64) int32 {
	return m.PolygonOfTriangle(m.RandomTriangleInArea(center, cells, seed))
}

// RandomPointInTriangle returns a uniformly distributed point inside tri.
func (m *NavMesh) RandomPointInTriangle(tri int32, s, t float32) common.Vec2 {
	a, b, c := m.TriPoints(tri)
	if s+t > 1 {
		s, t = 1-s, 1-t
	}
	return a.Add(b.Sub(a).Mul(s)).Add(c.Sub(a).Mul(t))
}
