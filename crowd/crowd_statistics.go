package crowd

import (
	"github.com/gorustyt/crowdnav/common"
)

// resetStuck clears the stuck heuristic and rebases it on the current
// corridor and destination.
func (c *Crowd) resetStuck(i int32) {
	a := c.agents
	a.MinCorridorLengths[i] = a.remainingCorridor(i)
	a.LastDistancesToNextCorner[i] = common.MaxFloat
	a.StuckRatings[i] = 0
	a.SightRatings[i] = 0
	a.LastNextCornerTris[i] = -1
	a.LastEndTargets[i] = a.EndTargets[i]
}

// updateStatistics accumulates the stuck rating of agent i. Time spent with
// a corner raises it, faster for slow agents; getting closer to the corner
// and consuming corridor polygons lower it.
func (c *Crowd) updateStatistics(i int32, dt float32) {
	if dt == 0 {
		return
	}
	a := c.agents
	if a.LastEndTargets[i] != a.EndTargets[i] {
		c.resetStuck(i)
	}

	if a.NumValidCorners[i] > 0 {
		speed := max(1, a.Velocities[i].Len())
		vf := speed / a.MaxSpeeds[i]
		vf3 := common.Clamp(vf*vf*vf, 0, 1)
		a.StuckRatings[i] += StuckPassiveX1 * dt * common.Lerp(2, 0.4, vf3)

		dist := common.Dist(a.Positions[i], a.NextCorners[i])
		if a.LastNextCornerTris[i] != a.NextCornerTris[i] || a.LastDistancesToNextCorner[i] == common.MaxFloat {
			a.LastDistancesToNextCorner[i] = dist
			a.LastNextCornerTris[i] = a.NextCornerTris[i]
			a.SightRatings[i] = 0
		}
		if decrease := a.LastDistancesToNextCorner[i] - dist; decrease > 0 {
			mult := (2 - a.Intelligences[i]) / a.MaxSpeeds[i] * StuckDstX2
			a.StuckRatings[i] -= decrease / (speed * dt) * mult
			a.LastDistancesToNextCorner[i] = dist
		}
	}

	remaining := a.remainingCorridor(i)
	if shrink := a.MinCorridorLengths[i] - remaining; shrink > 0 {
		a.StuckRatings[i] -= float32(shrink) * StuckCorridorX3
		a.MinCorridorLengths[i] = remaining
	}

	a.StuckRatings[i] = max(0, a.StuckRatings[i]*common.Pow(StuckDecay, dt))
}
