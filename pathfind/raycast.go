package pathfind

import (
	"github.com/gorustyt/crowdnav/common"
)

// MaxRaycastSteps guards the triangle walk against malformed meshes.
const MaxRaycastSteps = 5000

// RaycastResult describes a straight walk through the triangle mesh.
//
// When Hit is false the segment is clear and Corridor holds every walkable
// triangle it crosses, start first. When Hit is true HitP1/HitP2 (vertex ids
// HitV1/HitV2) is the blocking edge of HitTri, the last walkable triangle
// reached, and BlockingTri the triangle behind it (-1 for the mesh border).
// An empty corridor means the start point is off the walkable mesh.
type RaycastResult struct {
	Hit          bool
	HitP1, HitP2 common.Vec2
	HitV1, HitV2 int32
	HitTri       int32
	BlockingTri  int32
	Corridor     []int32
}

// exitEdge picks the edge through which the line start->end leaves tri.
// prev is the triangle the walk came from, -1 on the first step.
func (q *CorridorQuery) exitEdge(tri, prev int32, start, end common.Vec2) int32 {
	a, b, c := q.mesh.TriPoints(tri)
	pts := [3]common.Vec2{a, b, c}
	if prev == -1 {
		c0 := common.IsToRight(start, end, pts[0])
		c1 := common.IsToRight(start, end, pts[1])
		c2 := common.IsToRight(start, end, pts[2])
		switch {
		case c0 != c1 && c0 != c2:
			if c0 {
				return 0
			}
			return 2
		case c1 != c0 && c1 != c2:
			if c1 {
				return 1
			}
			return 0
		default:
			if c2 {
				return 2
			}
			return 1
		}
	}
	for e := int32(0); e < 3; e++ {
		if q.mesh.TriNeighbor(tri, e) != prev {
			continue
		}
		entry2 := pts[(e+1)%3]
		apex := pts[(e+2)%3]
		if common.IsToRight(start, end, apex) != common.IsToRight(start, end, entry2) {
			return (e + 1) % 3
		}
		return (e + 2) % 3
	}
	return -1
}

func (q *CorridorQuery) reached(tri, endTri int32, end common.Vec2) bool {
	if endTri != -1 {
		return tri == endTri
	}
	return q.mesh.TestPointInsideTriangle(end, tri)
}

// walk traces start->end across walkable triangles. visit is called for every
// triangle entered, including the first. It returns the last triangle, the
// blocking edge index of that triangle (-1 when not blocked) and whether the
// end was reached.
func (q *CorridorQuery) walk(start, end common.Vec2, startTri, endTri int32, visit func(tri int32)) (last, edge int32, clear bool) {
	m := q.mesh
	cur := startTri
	if cur == -1 {
		cur = m.TriangleFromPoint(start)
	}
	if !m.IsWalkableTriangle(cur) {
		return -1, -1, false
	}
	visit(cur)
	prev := int32(-1)
	for step := 0; step < MaxRaycastSteps; step++ {
		if q.reached(cur, endTri, end) {
			return cur, -1, true
		}
		e := q.exitEdge(cur, prev, start, end)
		if e == -1 {
			return cur, -1, false
		}
		next := m.TriNeighbor(cur, e)
		if !m.IsWalkableTriangle(next) {
			return cur, e, false
		}
		prev, cur = cur, next
		visit(cur)
	}
	return cur, -1, false
}

func (q *CorridorQuery) fillHit(res *RaycastResult, start common.Vec2, last, edge int32) {
	res.Hit = true
	res.HitTri = last
	res.HitV1, res.HitV2 = -1, -1
	res.BlockingTri = -1
	if last == -1 {
		res.HitP1, res.HitP2 = start, start
		return
	}
	if edge == -1 {
		// walk gave up without crossing a wall
		return
	}
	tv := [3]int32{}
	tv[0], tv[1], tv[2] = q.mesh.TriVerts(last)
	res.HitV1, res.HitV2 = tv[edge], tv[(edge+1)%3]
	res.HitP1, res.HitP2 = q.mesh.Vertices[res.HitV1], q.mesh.Vertices[res.HitV2]
	res.BlockingTri = q.mesh.TriNeighbor(last, edge)
}

// RaycastCorridor walks the straight segment start->end through the mesh.
// startTri and endTri are optional hints (-1 to locate). With an end hint the
// walk stops on that triangle instead of testing the end point.
func (q *CorridorQuery) RaycastCorridor(start, end common.Vec2, startTri, endTri int32) RaycastResult {
	var res RaycastResult
	last, edge, clear := q.walk(start, end, startTri, endTri, func(tri int32) {
		res.Corridor = append(res.Corridor, tri)
	})
	if clear {
		res.HitTri, res.BlockingTri = last, -1
		res.HitV1, res.HitV2 = -1, -1
		return res
	}
	q.fillHit(&res, start, last, edge)
	return res
}

// RaycastPoint is RaycastCorridor without the corridor.
func (q *CorridorQuery) RaycastPoint(start, end common.Vec2, startTri, endTri int32) RaycastResult {
	var res RaycastResult
	last, edge, clear := q.walk(start, end, startTri, endTri, func(int32) {})
	if clear {
		res.HitTri, res.BlockingTri = last, -1
		res.HitV1, res.HitV2 = -1, -1
		return res
	}
	q.fillHit(&res, start, last, edge)
	return res
}

// TrisToPolys converts a triangle corridor into its polygon corridor.
func (q *CorridorQuery) TrisToPolys(tris []int32) []int32 {
	return q.mesh.TrianglesToPolygons(tris, make([]int32, 0, len(tris)))
}
