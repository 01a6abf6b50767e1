package pathfind

import (
	"github.com/gorustyt/crowdnav/common"
	"go.uber.org/zap"
)

// Portal is the shared edge crossed when leaving one corridor polygon for the
// next, oriented so that Left is on the left of the travel direction. LeftV
// and RightV are navmesh vertex ids, -1 for the degenerate start and end
// portals.
type Portal struct {
	Left, Right   common.Vec2
	LeftV, RightV int32
}

func pointPortal(p common.Vec2) Portal {
	return Portal{Left: p, Right: p, LeftV: -1, RightV: -1}
}

// portalBetween returns the edge of from whose neighbor is to.
func (q *CorridorQuery) portalBetween(from, to int32) (Portal, bool) {
	m := q.mesh
	k := m.PolyEdgeTo(from, to)
	if k < 0 {
		return Portal{LeftV: -1, RightV: -1}, false
	}
	v1, v2 := m.PolyEdgeVerts(from, k)
	p1, p2 := m.Vertices[v1], m.Vertices[v2]
	travel := m.PolyCentroids[to].Sub(m.PolyCentroids[from])
	if common.Cross(travel, p2.Sub(p1)) > 0 {
		return Portal{Left: p2, Right: p1, LeftV: v2, RightV: v1}, true
	}
	return Portal{Left: p1, Right: p2, LeftV: v1, RightV: v2}, true
}

// appendPortals builds the portal list of corridor: the start point, one
// portal per consecutive polygon pair, then the end point. Portal k > 0
// separates corridor[k-1] and corridor[k].
func (q *CorridorQuery) appendPortals(dst []Portal, corridor []int32, start, end common.Vec2) []Portal {
	dst = append(dst[:0], pointPortal(start))
	for i := 1; i < len(corridor); i++ {
		p, ok := q.portalBetween(corridor[i-1], corridor[i])
		if !ok {
			q.logger.Debug("corridor polygons are not adjacent",
				zap.Int32("from", corridor[i-1]), zap.Int32("to", corridor[i]))
		}
		dst = append(dst, p)
	}
	return append(dst, pointPortal(end))
}

// portalOwner maps a portal index to the corridor polygon the portal point
// is looked up in.
func portalOwner(corridor []int32, k int) int32 {
	if k > 0 {
		return corridor[k-1]
	}
	return corridor[0]
}
