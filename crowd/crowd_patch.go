package crowd

import (
	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/pathfind"
)

// Intersection patch limits.
const (
	patchMaxEdgeAlignment = 0.8  ///< |cos| between the corner ray and the blocking edge.
	patchMaxDistRatioSq   = 2.25 ///< Patch point distance relative to the corner, squared.
)

func clearRay(rc *pathfind.RaycastResult) bool {
	return !rc.Hit && len(rc.Corridor) > 0
}

// raycastAndPatchCorridor shortcuts agent i's corridor with a straight walk
// to target when nothing blocks it. The part of the corridor past the
// target polygon is kept. A blocked walk falls back to attemptPathPatch.
// A walk that neither rejoins the corridor nor reaches the destination
// polygon is rejected.
func (c *Crowd) raycastAndPatchCorridor(i int32, target common.Vec2, targetTri int32) bool {
	a := c.agents
	rc := c.query.RaycastCorridor(a.Positions[i], target, a.CurrentTris[i], targetTri)
	if rc.Hit {
		return c.attemptPathPatch(i, &rc)
	}
	if len(rc.Corridor) == 0 {
		return false
	}

	if !c.spliceCorridor(i, c.query.TrisToPolys(rc.Corridor)) {
		return false
	}
	a.LastVisiblePoints[i] = a.Positions[i]
	a.PathFrustrations[i] = 0
	return true
}

// attemptPathPatch repairs the corridor after the walk toward the next
// corner was blocked by inserting an intermediate corner: first around the
// obstacle vertex that blocked the walk, then where the line from the last
// visible point through the corner meets the agent's side of the wall.
func (c *Crowd) attemptPathPatch(i int32, rc *pathfind.RaycastResult) bool {
	if len(rc.Corridor) == 0 || rc.HitV1 == -1 {
		return false
	}
	if c.miterPatch(i, rc) {
		return true
	}
	return c.intersectionPatch(i, rc)
}

func (c *Crowd) miterPatch(i int32, rc *pathfind.RaycastResult) bool {
	m, a := c.mesh, c.agents
	blockingPoly := m.PolygonOfTriangle(rc.BlockingTri)
	if !m.IsBlob(blockingPoly) {
		return false
	}

	_, d1 := common.DistancePtSegSqr(rc.HitP1, a.LastVisiblePoints[i], a.NextCorners[i])
	_, d2 := common.DistancePtSegSqr(rc.HitP2, a.LastVisiblePoints[i], a.NextCorners[i])
	corner, vIdx := rc.HitP1, rc.HitV1
	if d2 < d1 {
		corner, vIdx = rc.HitP2, rc.HitV2
	}
	offset, ok := m.MiterOffset(blockingPoly, vIdx, corner, c.params.Path.CornerOffset)
	if !ok {
		return false
	}
	offsetTri := m.TriangleFromPoint(offset)
	if offsetTri == -1 {
		return false
	}

	toOffset := c.query.RaycastCorridor(a.Positions[i], offset, a.CurrentTris[i], offsetTri)
	if !clearRay(&toOffset) {
		return false
	}

	if a.NumValidCorners[i] == 2 {
		// offset -> second corner makes the first corner redundant
		toSecond := c.query.RaycastCorridor(offset, a.NextCorners2[i], offsetTri, a.NextCorner2Tris[i])
		if clearRay(&toSecond) && c.mergeCorridor(i, toOffset.Corridor, toSecond.Corridor) {
			a.NextCorners[i], a.NextCornerTris[i] = offset, offsetTri
			return true
		}
		toFirst := c.query.RaycastCorridor(offset, a.NextCorners[i], offsetTri, a.NextCornerTris[i])
		if !clearRay(&toFirst) || !c.mergeCorridor(i, toOffset.Corridor, toFirst.Corridor) {
			return false
		}
		a.NextCorners[i], a.NextCornerTris[i] = offset, offsetTri
		return true
	}

	toFirst := c.query.RaycastCorridor(offset, a.NextCorners[i], offsetTri, a.NextCornerTris[i])
	if !clearRay(&toFirst) || !c.mergeCorridor(i, toOffset.Corridor, toFirst.Corridor) {
		return false
	}
	c.insertCorner(i, offset, offsetTri)
	return true
}

func (c *Crowd) intersectionPatch(i int32, rc *pathfind.RaycastResult) bool {
	m, a := c.mesh, c.agents
	l, corner, pos := a.LastVisiblePoints[i], a.NextCorners[i], a.Positions[i]

	dir := common.Normalize(corner.Sub(l))
	edgeDir := common.Normalize(rc.HitP2.Sub(rc.HitP1))
	if common.Abs(dir.Dot(edgeDir)) > patchMaxEdgeAlignment {
		return false
	}
	denom := common.Cross(dir, edgeDir)
	if common.Abs(denom) <= 1e-6 {
		return false
	}
	t := common.Cross(pos.Sub(l), edgeDir) / denom
	r := l.Add(dir.Mul(t))
	if common.DistSqr(pos, r) > common.DistSqr(pos, corner)*patchMaxDistRatioSq {
		return false
	}
	rTri := m.TriangleFromPoint(r)
	if rTri == -1 {
		return false
	}

	toR := c.query.RaycastCorridor(pos, r, a.CurrentTris[i], rTri)
	if !clearRay(&toR) {
		return false
	}
	toCorner := c.query.RaycastCorridor(r, corner, rTri, a.NextCornerTris[i])
	if !clearRay(&toCorner) {
		return false
	}
	if !c.mergeCorridor(i, toR.Corridor, toCorner.Corridor) {
		return false
	}
	c.insertCorner(i, r, rTri)
	return true
}

// insertCorner makes p the next corner and shifts the current one back.
func (c *Crowd) insertCorner(i int32, p common.Vec2, tri int32) {
	a := c.agents
	a.NextCorners2[i], a.NextCorner2Tris[i] = a.NextCorners[i], a.NextCornerTris[i]
	a.NextCorners[i], a.NextCornerTris[i] = p, tri
	a.NumValidCorners[i] = 2
}

// mergeCorridor replaces the head of agent i's corridor with the triangle
// walks agent->mid and mid->rejoin, see spliceCorridor.
func (c *Crowd) mergeCorridor(i int32, first, second []int32) bool {
	merged := c.mesh.TrianglesToPolygons(first, make([]int32, 0, len(first)+len(second)))
	return c.spliceCorridor(i, c.mesh.TrianglesToPolygons(second, merged))
}

// spliceCorridor makes head the new front of agent i's corridor. The old
// corridor resumes after its first occurrence of head's last polygon. When
// that polygon is not on the corridor head must end in the destination
// polygon, otherwise the corridor is left untouched and false is returned.
func (c *Crowd) spliceCorridor(i int32, head []int32) bool {
	a := c.agents
	if len(head) == 0 {
		return false
	}
	join := head[len(head)-1]
	if idx := common.IndexOf(a.Corridor(i), join); idx >= 0 {
		head = append(head, a.Corridor(i)[idx+1:]...)
	} else if join != a.EndTargetPolys[i] {
		return false
	}
	a.setCorridor(i, head)
	return true
}
