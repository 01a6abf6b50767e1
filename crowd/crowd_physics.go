package crowd

import (
	"github.com/gorustyt/crowdnav/common"
)

const (
	wallProbeExtension = 0.45 ///< Look ahead past the move when probing for walls.
	wallBounce         = 1.45 ///< Normal velocity removed on wall contact, slightly overcorrected.
)

// updatePhysics steers agent i toward its next corner, integrates the move
// against the walls and relocates the agent on the mesh.
func (c *Crowd) updatePhysics(i int32, dt float32) {
	a := c.agents
	pos := a.Positions[i]
	a.LastPositions[i] = pos

	v := a.Velocities[i]
	if common.LenSqr(v) < 0.001 {
		v = common.Vec2{}
	}
	frameRes := common.Pow(1-a.Resistances[i], dt)

	dir := a.NextCorners[i].Sub(pos)
	dst := dir.Len()
	if dst > 0.01 {
		dir = dir.Mul(1 / dst)
	} else {
		dir = common.Vec2{}
	}

	var desiredMag float32
	if s := a.States[i]; s == Traveling || s == Escaping {
		desiredMag = c.desiredSpeed(i, v, dst)
	}
	if frameRes > 0 {
		desiredMag /= frameRes
	}
	stuck := a.StuckRatings[i] / StuckDanger2
	desiredMag *= common.Cvt(stuck*stuck, 0, 1, 1, 0.5, true)
	desired := dir.Mul(desiredMag)

	effInt := float32(1)
	if common.LenSqr(desired) > 0.1 {
		effInt = a.Intelligences[i]
	}
	along := dir.Mul((desiredMag - v.Dot(dir)) * (1 - effInt))
	accel := along.Add(desired.Sub(v).Mul(effInt))
	if l := accel.Len(); l > 0.001 {
		accel = accel.Mul(min(l, a.Accels[i]*dt) / l)
	} else {
		accel = common.Vec2{}
	}
	a.Velocities[i] = v.Add(accel).Mul(frameRes)

	c.integrate(i, dt)
	c.relocate(i)
}

// desiredSpeed slows the agent before a corner, harder for sharp turns, and
// before the destination.
func (c *Crowd) desiredSpeed(i int32, v common.Vec2, dst float32) float32 {
	a := c.agents
	maxSpeed := a.MaxSpeeds[i]
	res := a.Resistances[i]

	strength := 1 / 8.0 / res / res * common.Lerp(0.5, 2, a.Intelligences[i])
	slowDst := maxSpeed * 0.25
	slowSpeed := maxSpeed
	if dst < slowDst && a.NumValidCorners[i] >= 2 {
		turn := common.Normalize(v).Dot(common.Normalize(a.NextCorners2[i].Sub(a.NextCorners[i])))
		turn = (turn + 1) * 0.5
		turn = turn * turn * turn
		slowDst *= common.Lerp(1, 0, turn)
		slowSpeed *= common.Lerp(strength, 1, turn)
	}
	if dst > slowDst || slowDst <= 0 {
		return maxSpeed
	}
	minSpeed := slowSpeed
	if a.NumValidCorners[i] == 1 {
		minSpeed = a.ArrivalDesiredSpeeds[i] * maxSpeed
	}
	return common.Lerp(minSpeed, maxSpeed, dst/slowDst)
}

func (c *Crowd) integrate(i int32, dt float32) {
	a := c.agents
	pos, v := a.Positions[i], a.Velocities[i]
	move := v.Mul(dt)
	moveSq := common.LenSqr(move)

	if a.States[i] == Escaping {
		// 不越过逃逸目标, 直接落回最后的有效位置
		if moveSq >= common.DistSqr(a.NextCorners[i], pos) {
			a.Positions[i] = a.LastValidPositions[i]
			a.Velocities[i] = common.Vec2{}
		} else {
			a.Positions[i] = pos.Add(move)
		}
		return
	}
	if dt <= 0 || moveSq <= 0.0001 {
		return
	}

	end := pos.Add(move)
	normV := common.Normalize(v)
	rc := c.query.RaycastPoint(pos, end.Add(normV.Mul(wallProbeExtension)), a.CurrentTris[i], -1)
	if !rc.Hit {
		a.WallContacts[i] = false
		a.Positions[i] = end
		return
	}

	a.WallContacts[i] = true
	a.StuckRatings[i] += StuckHitWall
	wall := rc.HitP2.Sub(rc.HitP1)
	n := common.Normalize(common.Vec2{-wall[1], wall[0]})
	if n.Dot(normV) > 0 {
		n = n.Mul(-1)
	}
	v = v.Sub(n.Mul(v.Dot(n) * wallBounce))
	a.Velocities[i] = v
	a.Positions[i] = pos.Add(v.Mul(dt))
}

func (c *Crowd) relocate(i int32) {
	a := c.agents
	tri := c.mesh.Locate(a.Positions[i], a.CurrentTris[i])
	if tri == -1 {
		a.CurrentTris[i] = -1
		return
	}
	a.CurrentTris[i] = tri
	a.LastValidPositions[i] = a.Positions[i]
	a.LastValidTris[i] = tri
}
