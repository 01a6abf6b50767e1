package crowd

import (
	"github.com/gorustyt/crowdnav/common"
	"go.uber.org/zap"
)

func (c *Crowd) updateNavigation(i int32, dt float32) {
	a := c.agents
	switch {
	case a.States[i] == Standing || a.PredicamentRatings[i] > PredicamentLimit:
		c.pickDestination(i)
	case a.States[i] == Traveling:
		c.travel(i)
	case a.States[i] == Escaping:
		c.escape(i)
	}
	if s := a.States[i]; s == Traveling || s == Escaping {
		c.updateLook(i, dt)
	}
}

// pickDestination sends an idle, or hopelessly stuck, agent to a random
// triangle around the destination centre.
func (c *Crowd) pickDestination(i int32) {
	a := c.agents
	if a.PredicamentRatings[i] > PredicamentLimit {
		c.logger.Warn("predicament too high, picking a new destination",
			zap.Int32("agent", i), zap.Float32s("pos", a.Positions[i][:]), zap.Float32s("corner", a.NextCorners[i][:]))
	}
	if a.CurrentTris[i] == -1 {
		return
	}

	dest := c.params.Destination
	endTri := c.mesh.RandomTriangleInArea(dest.Center, dest.Cells, c.seed)
	c.seed = common.AdvanceSeed(c.seed)
	if endTri == -1 {
		return
	}

	a.EndTargets[i] = c.mesh.TriangleCentroids[endTri]
	a.EndTargetTris[i] = endTri
	a.EndTargetPolys[i] = c.mesh.PolygonOfTriangle(endTri)
	a.PredicamentRatings[i] = 0
	a.NumValidCorners[i] = 0
	a.clearCorridor(i)

	if c.findPath(i) {
		a.States[i] = Traveling
	}
	c.resetStuck(i)
}

// findPath plans a fresh corridor from the agent's polygon to its end target
// and takes the first corners from it. On failure the previous corridor and
// corners are kept.
func (c *Crowd) findPath(i int32) bool {
	a := c.agents
	p := c.params.Path
	startPoly := c.mesh.PolygonOfTriangle(a.CurrentTris[i])
	status := c.query.FindCorridor(p.FreeWidth, p.WidthPenaltyMult, a.Positions[i], a.EndTargets[i],
		startPoly, a.EndTargetPolys[i], &a.Corridors[i])
	if status.Failed() {
		c.logger.Debug("find path: no corridor", zap.Int32("agent", i),
			zap.Int32("start", startPoly), zap.Int32("end", a.EndTargetPolys[i]), zap.Stringer("status", status))
		return false
	}
	a.CorridorCursors[i] = 0
	a.AlienPolys[i] = -1

	corners := c.query.FindNextCorner(a.Positions[i], a.Corridor(i), a.EndTargets[i], p.CornerOffset)
	if corners.NumValid == 0 {
		c.logger.Debug("find path: no corner", zap.Int32("agent", i))
		return false
	}
	a.setCorners(i, corners)
	a.PathFrustrations[i] = 0
	a.LastVisiblePoints[i] = a.Positions[i]
	return true
}

func (c *Crowd) travel(i int32) {
	a := c.agents
	if a.CurrentTris[i] == -1 {
		a.States[i] = Escaping
		a.PreEscapeCorners[i], a.PreEscapeCornerTris[i] = a.NextCorners[i], a.NextCornerTris[i]
		a.NextCorners[i], a.NextCornerTris[i] = a.LastValidPositions[i], a.LastValidTris[i]
		return
	}

	c.checkStuck(i)
	c.checkOnPath(i)
	c.advanceCorners(i)

	switch {
	case a.NumValidCorners[i] == 1 && common.DistSqr(a.Positions[i], a.EndTargets[i]) < a.ArrivalThresholdSqs[i]:
		a.States[i] = Standing
		a.clearCorridor(i)
	case a.NumValidCorners[i] == 0:
		c.logger.Debug("traveling without a corner", zap.Int32("agent", i))
	}
}

// checkStuck first tries to shortcut toward the current corner once per
// corner, then repaths when the agent stays stuck.
func (c *Crowd) checkStuck(i int32) {
	a := c.agents
	if a.StuckRatings[i] <= StuckDanger1 {
		return
	}
	if a.SightRatings[i] < 1 {
		a.SightRatings[i]++
		if c.raycastAndPatchCorridor(i, a.NextCorners[i], a.NextCornerTris[i]) {
			a.StuckRatings[i] = 0
			return
		}
	}
	if a.StuckRatings[i] <= StuckDanger2 {
		return
	}
	stalled := common.LenSqr(a.Velocities[i]) < common.Sqr(a.MaxSpeeds[i])*0.0025
	if a.StuckRatings[i] > StuckDanger3 || stalled {
		a.PredicamentRatings[i]++
		if !c.findPath(i) {
			c.logger.Debug("repath after getting stuck failed", zap.Int32("agent", i),
				zap.Int32("predicament", a.PredicamentRatings[i]))
		}
		c.resetStuck(i)
	}
}

// checkOnPath looks for the agent's polygon near the front of its corridor.
// Found, the consumed prefix is dropped. Otherwise each new foreign polygon
// adds frustration until a repath is forced.
func (c *Crowd) checkOnPath(i int32) {
	a := c.agents
	poly := c.mesh.PolygonOfTriangle(a.CurrentTris[i])
	if poly == a.AlienPolys[i] {
		return
	}
	view := a.Corridor(i)
	window := view[:min(len(view), int(c.params.Path.ExpectedJump))]
	idx := common.IndexOf(window, poly)
	if idx >= 0 {
		a.AlienPolys[i] = -1
		a.PathFrustrations[i] = 0
		if idx > 0 {
			a.trimCorridor(i, idx)
		}
		return
	}

	a.PathFrustrations[i]++
	if a.PathFrustrations[i] <= a.MaxFrustrations[i] {
		a.AlienPolys[i] = poly
		return
	}
	a.PathFrustrations[i] = 0
	if c.findPath(i) {
		return
	}
	// 目标很近时寻路可能拿不到拐点, 直接看能否直达
	if c.raycastAndPatchCorridor(i, a.EndTargets[i], a.EndTargetTris[i]) {
		a.NextCorners[i], a.NextCornerTris[i] = a.EndTargets[i], a.EndTargetTris[i]
		a.NumValidCorners[i] = 1
		return
	}
	c.logger.Debug("path recovery failed", zap.Int32("agent", i), zap.Int32("poly", poly))
}

// advanceCorners moves on to the following corners once the agent is close
// to the current one or has crossed the line through both corners.
func (c *Crowd) advanceCorners(i int32) {
	a := c.agents
	if a.NumValidCorners[i] != 2 {
		return
	}
	c1, c2 := a.NextCorners[i], a.NextCorners2[i]
	line := c1.Sub(c2)
	crossed := common.Cross(line, a.Positions[i].Sub(c2))*common.Cross(line, a.LastPositions[i].Sub(c2)) <= 0
	if !crossed && common.DistSqr(a.Positions[i], c1) >= c.cornerOffsetSq() {
		return
	}
	a.LastVisiblePoints[i] = c1
	corners := c.query.FindNextCorner(a.Positions[i], a.Corridor(i), a.EndTargets[i], c.params.Path.CornerOffset)
	if corners.NumValid > 0 {
		a.setCorners(i, corners)
	}
}

func (c *Crowd) escape(i int32) {
	a := c.agents
	if a.CurrentTris[i] == -1 {
		return
	}
	a.States[i] = Traveling

	if a.PreEscapeCornerTris[i] != -1 && c.raycastAndPatchCorridor(i, a.PreEscapeCorners[i], a.PreEscapeCornerTris[i]) {
		a.NextCorners[i], a.NextCornerTris[i] = a.PreEscapeCorners[i], a.PreEscapeCornerTris[i]
		a.PreEscapeCorners[i], a.PreEscapeCornerTris[i] = common.Vec2{}, -1
		return
	}
	if a.EndTargetPolys[i] == -1 {
		c.logger.Warn("escaped without a destination", zap.Int32("agent", i))
		return
	}
	if !c.findPath(i) {
		c.logger.Debug("repath after escaping failed", zap.Int32("agent", i))
	}
}

func (c *Crowd) updateLook(i int32, dt float32) {
	a := c.agents
	to := a.NextCorners[i].Sub(a.Positions[i])
	if common.LenSqr(to) <= 0.01 {
		return
	}
	a.Looks[i] = common.RotateToward(common.Normalize(a.Looks[i]), common.Normalize(to), a.LookSpeeds[i]*dt)
}
