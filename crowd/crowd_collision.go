package crowd

import (
	"github.com/gorustyt/crowdnav/common"
)

const minSeparationSq = 1e-3

// resolveCollisions pushes apart overlapping agents sharing a grid cell.
func (c *Crowd) resolveCollisions() {
	g := c.grid
	diameter := c.params.Collision.Radius * 2
	for k := int32(0); k < g.cellCount(); k++ {
		ids := g.cell(k)
		if len(ids) < 2 {
			continue
		}
		for n1 := 0; n1 < len(ids); n1++ {
			for n2 := n1 + 1; n2 < len(ids); n2++ {
				c.separate(ids[n1], ids[n2], diameter)
			}
		}
	}
}

func (c *Crowd) pushWeight(i int32) float32 {
	if c.agents.States[i] == Escaping {
		return c.params.Collision.EscapingWeight
	}
	return 1
}

// separate moves two overlapping agents apart along the line between them
// and adds the matching push to their velocities. Each agent takes the share
// of the other's weight, so an escaping agent barely yields.
func (c *Crowd) separate(i1, i2 int32, diameter float32) {
	a := c.agents
	p1, p2 := a.Positions[i1], a.Positions[i2]
	distSq := common.DistSqr(p1, p2)
	if distSq >= diameter*diameter || distSq <= minSeparationSq {
		return
	}
	dist := common.Sqrt(distSq)
	axis := p1.Sub(p2).Mul(1 / dist)
	overlap := diameter - dist

	w1, w2 := c.pushWeight(i1), c.pushWeight(i2)
	share1 := w2 / (w1 + w2)
	share2 := w1 / (w1 + w2)

	c.nudge(i1, axis.Mul(overlap*share1))
	c.nudge(i2, axis.Mul(-overlap*share2))

	force := overlap * c.params.Collision.PushForce
	a.Velocities[i1] = a.Velocities[i1].Add(axis.Mul(force * share1))
	a.Velocities[i2] = a.Velocities[i2].Sub(axis.Mul(force * share2))
}

// nudge moves agent i by d when the straight move stays on the walkable mesh
// and crosses no wall. Otherwise the agent stays put and only the velocity
// push acts, through the wall checks of physics.
func (c *Crowd) nudge(i int32, d common.Vec2) {
	a := c.agents
	from, fromTri := a.Positions[i], a.CurrentTris[i]
	if fromTri == -1 {
		return
	}
	to := from.Add(d)
	toTri := c.mesh.Locate(to, fromTri)
	if toTri == -1 {
		return
	}
	if toTri != fromTri {
		if rc := c.query.RaycastPoint(from, to, fromTri, toTri); rc.Hit {
			return
		}
	}
	a.Positions[i] = to
	c.relocate(i)
}
