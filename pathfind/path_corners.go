package pathfind

import (
	"github.com/gorustyt/crowdnav/common"
	"go.uber.org/zap"
)

// Corners holds the next one or two steering targets along a corridor.
// VIdx1/VIdx2 are the navmesh vertices the corners sit on, -1 when a corner
// is not a mesh vertex (destination, start).
type Corners struct {
	Corner1  common.Vec2
	Tri1     int32
	VIdx1    int32
	Corner2  common.Vec2
	Tri2     int32
	VIdx2    int32
	NumValid int32
}

func destinationCorners(end common.Vec2, tri int32) Corners {
	return Corners{
		Corner1: end, Tri1: tri, VIdx1: -1,
		Corner2: end, Tri2: tri, VIdx2: -1,
		NumValid: 1,
	}
}

// Corner is one point of a full string pulled path.
type Corner struct {
	Point common.Vec2
	Poly  int32
}

// FindNextCorner runs the funnel over corridor (front = polygon containing
// pos) and reports the first two turning points. When only one turning point
// exists the destination becomes the second corner. A corridor of zero or
// one polygon yields the destination alone. With offset > 0 corners lying on
// obstacle vertices are pushed away from the obstacle.
//
// The result only depends on its arguments, so calling it again with the
// same corridor and position gives the same corners.
func (q *CorridorQuery) FindNextCorner(pos common.Vec2, corridor []int32, end common.Vec2, offset float32) Corners {
	switch len(corridor) {
	case 0:
		return destinationCorners(end, -1)
	case 1:
		return destinationCorners(end, q.mesh.TriangleFromPolyPoint(end, corridor[0]))
	}

	q.portals = q.appendPortals(q.portals, corridor, pos, end)
	res := Corners{Tri1: -1, VIdx1: -1, Tri2: -1, VIdx2: -1}
	q.funnelDual(q.portals, corridor, &res)

	switch res.NumValid {
	case 0:
		return destinationCorners(end, q.mesh.TriangleFromPolyPoint(end, corridor[len(corridor)-1]))
	case 1:
		res.Corner2 = end
		res.Tri2 = -1
		res.VIdx2 = -1
		res.NumValid = 2
	}

	if offset > 0 && res.NumValid > 1 {
		res.Corner1 = q.applyCornerOffset(res.Corner1, res.VIdx1, res.Tri1, end, offset)
		res.Corner2 = q.applyCornerOffset(res.Corner2, res.VIdx2, res.Tri2, end, offset)
	}
	return res
}

// funnelDual is the simple stupid funnel stopped after two corners. When a
// corner is found the funnel restarts from it and the portal after the apex
// is examined again. The end portal is the destination and never counts as
// a corner, so NumValid stays 0 when the destination is in sight.
func (q *CorridorQuery) funnelDual(portals []Portal, corridor []int32, res *Corners) {
	res.NumValid = 0
	if len(portals) == 0 {
		return
	}
	start := portals[0].Left
	apex, left, right := start, start, start
	apexIdx, leftIdx, rightIdx := 0, 0, 0
	found := 0
	last := len(portals) - 1

	// record stores a corner and reports whether the funnel is done.
	record := func(p common.Vec2, k int, vIdx int32) bool {
		if k == last {
			return true
		}
		if found == 0 {
			if common.Vequal(p, start) {
				return false
			}
			res.Corner1 = p
			res.Tri1 = q.mesh.TriangleFromPolyPoint(p, portalOwner(corridor, k))
			res.VIdx1 = vIdx
			found = 1
			return false
		}
		if common.Vequal(res.Corner1, p) {
			return false
		}
		res.Corner2 = p
		res.Tri2 = q.mesh.TriangleFromPolyPoint(p, portalOwner(corridor, k))
		res.VIdx2 = vIdx
		res.NumValid = 2
		return true
	}

	for i := 1; i < len(portals); {
		pl, pr := portals[i].Left, portals[i].Right

		// Update right vertex.
		if common.TriArea2(apex, right, pr) <= 0 {
			if common.Vequal(apex, right) || common.TriArea2(apex, left, pr) > 0 {
				right = pr
				rightIdx = i
			} else {
				if record(left, leftIdx, portals[leftIdx].LeftV) {
					break
				}
				apex, apexIdx = left, leftIdx
				right, rightIdx = apex, apexIdx
				i = apexIdx + 1
				continue
			}
		}

		// Update left vertex.
		if common.TriArea2(apex, left, pl) >= 0 {
			if common.Vequal(apex, left) || common.TriArea2(apex, right, pl) < 0 {
				left = pl
				leftIdx = i
			} else {
				if record(right, rightIdx, portals[rightIdx].RightV) {
					break
				}
				apex, apexIdx = right, rightIdx
				left, leftIdx = apex, apexIdx
				i = apexIdx + 1
				continue
			}
		}
		i++
	}

	if found == 1 && res.NumValid == 0 {
		res.NumValid = 1
	}
}

// applyCornerOffset pushes a corner sitting on an obstacle vertex outward.
// The destination itself is never moved.
func (q *CorridorQuery) applyCornerOffset(point common.Vec2, vIdx, tri int32, end common.Vec2, offset float32) common.Vec2 {
	if vIdx == -1 || tri == -1 || offset <= 0 {
		return point
	}
	if common.Vequal(point, end) {
		return point
	}
	res, found := q.mesh.BlobCornerOffset(point, vIdx, offset)
	if !found {
		blob, vertex, dist := q.mesh.ClosestBlobVertex(point)
		q.logger.Warn("corner offset: no obstacle owns the corner vertex",
			zap.Float32("x", point[0]), zap.Float32("y", point[1]),
			zap.Int32("vertex", vIdx),
			zap.Int32s("nearbyBlobs", q.mesh.BlobIndex.Query(point)),
			zap.Int32("closestBlob", blob),
			zap.Float32s("closestVertex", vertex[:]),
			zap.Float32("closestDist", dist))
		return point
	}
	return res
}

// FindCorners string pulls the whole corridor. The first point is the start,
// the last the destination. maxCorners <= 0 means no limit.
func (q *CorridorQuery) FindCorners(start common.Vec2, corridor []int32, end common.Vec2, maxCorners int) []Corner {
	if len(corridor) == 0 {
		return []Corner{{Point: end, Poly: -1}}
	}
	full := func(path []Corner) bool { return maxCorners > 0 && len(path) >= maxCorners }

	portals := q.appendPortals(nil, corridor, start, end)
	path := []Corner{{Point: start, Poly: corridor[0]}}
	apex, left, right := start, start, start
	apexIdx, leftIdx, rightIdx := 0, 0, 0

	push := func(p common.Vec2, k int) {
		if !common.Vequal(path[len(path)-1].Point, p) {
			path = append(path, Corner{Point: p, Poly: portalOwner(corridor, k)})
		}
	}

	for i := 1; i < len(portals) && !full(path); {
		pl, pr := portals[i].Left, portals[i].Right
		if common.TriArea2(apex, right, pr) <= 0 {
			if common.Vequal(apex, right) || common.TriArea2(apex, left, pr) > 0 {
				right, rightIdx = pr, i
			} else {
				push(left, leftIdx)
				apex, apexIdx = left, leftIdx
				right, rightIdx = apex, apexIdx
				i = apexIdx + 1
				continue
			}
		}
		if common.TriArea2(apex, left, pl) >= 0 {
			if common.Vequal(apex, left) || common.TriArea2(apex, right, pl) < 0 {
				left, leftIdx = pl, i
			} else {
				push(right, rightIdx)
				apex, apexIdx = right, rightIdx
				left, leftIdx = apex, apexIdx
				i = apexIdx + 1
				continue
			}
		}
		i++
	}
	if !full(path) {
		push(end, len(portals)-1)
	}
	return path
}
