package crowd

import (
	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/common/logger"
	"github.com/gorustyt/crowdnav/navmesh"
	"github.com/gorustyt/crowdnav/pathfind"
	"go.uber.org/zap"
)

// Crowd owns the agents walking one navmesh and advances them tick by tick.
// The mesh is only read and may be shared with other crowds; a Crowd itself
// is not safe for concurrent use.
type Crowd struct {
	mesh   *navmesh.NavMesh
	query  *pathfind.CorridorQuery
	agents *Agents
	grid   *agentGrid
	params Params

	seed  uint64        ///< Destination seed, advanced once per destination picked.
	spawn *common.Pcg32 ///< Spawn position generator.
	frame int64

	logger *zap.Logger
}

// New creates a crowd of at most capacity agents. A nil logger disables
// logging.
func New(mesh *navmesh.NavMesh, capacity int32, params Params, seed uint64, l *zap.Logger) *Crowd {
	l = logger.OrNop(l)
	cp := params.Collision
	return &Crowd{
		mesh:   mesh,
		query:  pathfind.NewCorridorQuery(mesh, l),
		agents: NewAgents(capacity),
		grid:   newAgentGrid(cp.CellSize, cp.WorldMin, cp.WorldMax, cp.MaxPerCell),
		params: params,
		seed:   seed,
		spawn:  common.NewPcg32(seed),
		logger: l,
	}
}

func (c *Crowd) Mesh() *navmesh.NavMesh         { return c.mesh }
func (c *Crowd) Query() *pathfind.CorridorQuery { return c.query }
func (c *Crowd) Agents() *Agents                { return c.agents }
func (c *Crowd) Params() Params                 { return c.params }
func (c *Crowd) Frame() int64                   { return c.frame }

// Seed is the current destination seed.
func (c *Crowd) Seed() uint64     { return c.seed }
func (c *Crowd) SetSeed(s uint64) { c.seed = s }

func (c *Crowd) cornerOffsetSq() float32 {
	return common.Sqr(c.params.Path.CornerOffset)
}

// AddAgent places a standing agent at pos with the default agent parameters.
// Returns -1 when the crowd is full.
func (c *Crowd) AddAgent(pos common.Vec2) int32 {
	return c.AddAgentWithParams(pos, c.params.Agent)
}

func (c *Crowd) AddAgentWithParams(pos common.Vec2, params AgentParams) int32 {
	idx := c.agents.Add(pos, c.mesh.Locate(pos, -1), params)
	if idx == -1 {
		c.logger.Warn("add agent: crowd is full", zap.Int32("capacity", c.agents.Cap()))
	}
	return idx
}

func (c *Crowd) RemoveAgent(idx int32) {
	c.agents.Remove(idx)
}

// SpawnRandom adds up to n agents at random walkable points and returns
// their ids. It stops early when the crowd is full.
func (c *Crowd) SpawnRandom(n int) []int32 {
	if c.mesh.WalkableTriangleCount == 0 {
		return nil
	}
	ids := make([]int32, 0, n)
	for k := 0; k < n; k++ {
		tri := int32(c.spawn.Intn(int(c.mesh.WalkableTriangleCount)))
		pos := c.mesh.RandomPointInTriangle(tri, c.spawn.Float32(), c.spawn.Float32())
		idx := c.agents.Add(pos, c.mesh.Locate(pos, tri), c.params.Agent)
		if idx == -1 {
			break
		}
		ids = append(ids, idx)
	}
	return ids
}

// Update advances the first activeCount agent slots by dt seconds: every
// agent navigates, then moves, then updates its statistics, after which
// overlapping agents are pushed apart.
func (c *Crowd) Update(dt float32, activeCount int32) {
	a := c.agents
	n := common.Clamp(activeCount, 0, a.Count())

	for i := int32(0); i < n; i++ {
		if a.Alive[i] {
			c.updateNavigation(i, dt)
		}
	}
	for i := int32(0); i < n; i++ {
		if a.Alive[i] {
			c.updatePhysics(i, dt)
		}
	}
	for i := int32(0); i < n; i++ {
		if a.Alive[i] {
			c.updateStatistics(i, dt)
		}
	}

	c.grid.rebuild(a, n)
	c.resolveCollisions()
	c.frame++
}
