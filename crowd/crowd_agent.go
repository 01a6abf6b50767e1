package crowd

import (
	"math"

	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/pathfind"
)

type AgentState uint8

const (
	Standing  AgentState = iota ///< Idle, picks a destination next tick.
	Traveling                   ///< Following its corridor.
	Escaping                    ///< Off the walkable mesh, heading back to the last valid position.
)

func (s AgentState) String() string {
	switch s {
	case Standing:
		return "standing"
	case Traveling:
		return "traveling"
	case Escaping:
		return "escaping"
	}
	return "unknown"
}

// Agents stores every agent field in parallel slices indexed by agent id.
// Slots are never compacted; a removed agent only loses its Alive flag and
// its slot is handed out again by Add.
type Agents struct {
	Positions     []common.Vec2
	LastPositions []common.Vec2
	Velocities    []common.Vec2
	Looks         []common.Vec2
	States        []AgentState
	Alive         []bool

	// Navigation
	CurrentTris         []int32
	NextCorners         []common.Vec2
	NextCornerTris      []int32
	NextCorners2        []common.Vec2
	NextCorner2Tris     []int32
	NumValidCorners     []int32
	PreEscapeCorners    []common.Vec2
	PreEscapeCornerTris []int32
	EndTargets          []common.Vec2
	EndTargetTris       []int32
	EndTargetPolys      []int32
	LastValidPositions  []common.Vec2
	LastValidTris       []int32
	LastVisiblePoints   []common.Vec2 ///< Where the next corner was last known visible from.
	AlienPolys          []int32       ///< Off-corridor polygon already counted as frustration.
	Corridors           [][]int32     ///< Polygon corridors, front is the polygon the agent walks in.
	CorridorCursors     []int32

	// Statistics
	StuckRatings              []float32
	SightRatings              []int32
	PathFrustrations          []int32
	PredicamentRatings        []int32
	LastDistancesToNextCorner []float32
	MinCorridorLengths        []int32
	LastEndTargets            []common.Vec2
	LastNextCornerTris        []int32
	WallContacts              []bool

	// Parameters
	MaxSpeeds            []float32
	Accels               []float32
	Resistances          []float32
	Intelligences        []float32
	LookSpeeds           []float32
	MaxFrustrations      []int32
	ArrivalDesiredSpeeds []float32
	ArrivalThresholdSqs  []float32

	count int32
}

func NewAgents(capacity int32) *Agents {
	common.AssertTrue(capacity >= 0, "negative agent capacity %d", capacity)
	n := int(capacity)
	return &Agents{
		Positions:     make([]common.Vec2, n),
		LastPositions: make([]common.Vec2, n),
		Velocities:    make([]common.Vec2, n),
		Looks:         make([]common.Vec2, n),
		States:        make([]AgentState, n),
		Alive:         make([]bool, n),

		CurrentTris:         make([]int32, n),
		NextCorners:         make([]common.Vec2, n),
		NextCornerTris:      make([]int32, n),
		NextCorners2:        make([]common.Vec2, n),
		NextCorner2Tris:     make([]int32, n),
		NumValidCorners:     make([]int32, n),
		PreEscapeCorners:    make([]common.Vec2, n),
		PreEscapeCornerTris: make([]int32, n),
		EndTargets:          make([]common.Vec2, n),
		EndTargetTris:       make([]int32, n),
		EndTargetPolys:      make([]int32, n),
		LastValidPositions:  make([]common.Vec2, n),
		LastValidTris:       make([]int32, n),
		LastVisiblePoints:   make([]common.Vec2, n),
		AlienPolys:          make([]int32, n),
		Corridors:           make([][]int32, n),
		CorridorCursors:     make([]int32, n),

		StuckRatings:              make([]float32, n),
		SightRatings:              make([]int32, n),
		PathFrustrations:          make([]int32, n),
		PredicamentRatings:        make([]int32, n),
		LastDistancesToNextCorner: make([]float32, n),
		MinCorridorLengths:        make([]int32, n),
		LastEndTargets:            make([]common.Vec2, n),
		LastNextCornerTris:        make([]int32, n),
		WallContacts:              make([]bool, n),

		MaxSpeeds:            make([]float32, n),
		Accels:               make([]float32, n),
		Resistances:          make([]float32, n),
		Intelligences:        make([]float32, n),
		LookSpeeds:           make([]float32, n),
		MaxFrustrations:      make([]int32, n),
		ArrivalDesiredSpeeds: make([]float32, n),
		ArrivalThresholdSqs:  make([]float32, n),
	}
}

func (a *Agents) Cap() int32 { return int32(len(a.Positions)) }

// Count is the number of slots handed out so far, alive or not.
func (a *Agents) Count() int32 { return a.count }

func (a *Agents) AliveCount() int32 {
	n := int32(0)
	for i := int32(0); i < a.count; i++ {
		if a.Alive[i] {
			n++
		}
	}
	return n
}

// Add places a new agent at pos standing on tri. The first dead slot is
// reused before a new one is taken. Returns -1 when every slot is in use.
func (a *Agents) Add(pos common.Vec2, tri int32, params AgentParams) int32 {
	idx := int32(-1)
	for i := int32(0); i < a.count; i++ {
		if !a.Alive[i] {
			idx = i
			break
		}
	}
	if idx == -1 {
		if a.count >= a.Cap() {
			return -1
		}
		idx = a.count
		a.count++
	}
	a.Init(idx, pos, tri, params)
	return idx
}

// Init resets slot i to a fresh standing agent.
func (a *Agents) Init(i int32, pos common.Vec2, tri int32, params AgentParams) {
	a.checkIndex(i)
	a.Positions[i] = pos
	a.LastPositions[i] = pos
	a.Velocities[i] = common.Vec2{}
	a.Looks[i] = common.Vec2{1, 0}
	a.States[i] = Standing
	a.Alive[i] = true

	a.CurrentTris[i] = tri
	a.NextCorners[i], a.NextCornerTris[i] = pos, -1
	a.NextCorners2[i], a.NextCorner2Tris[i] = pos, -1
	a.NumValidCorners[i] = 0
	a.PreEscapeCorners[i], a.PreEscapeCornerTris[i] = common.Vec2{}, -1
	a.EndTargets[i], a.EndTargetTris[i], a.EndTargetPolys[i] = pos, -1, -1
	a.LastValidPositions[i], a.LastValidTris[i] = pos, tri
	a.LastVisiblePoints[i] = pos
	a.AlienPolys[i] = -1
	a.Corridors[i] = a.Corridors[i][:0]
	a.CorridorCursors[i] = 0

	a.StuckRatings[i] = 0
	a.SightRatings[i] = 0
	a.PathFrustrations[i] = 0
	a.PredicamentRatings[i] = 0
	a.LastDistancesToNextCorner[i] = common.MaxFloat
	a.MinCorridorLengths[i] = math.MaxInt32
	a.LastEndTargets[i] = pos
	a.LastNextCornerTris[i] = -1
	a.WallContacts[i] = false

	a.SetParams(i, params)
}

func (a *Agents) SetParams(i int32, params AgentParams) {
	a.checkIndex(i)
	a.MaxSpeeds[i] = params.maxSpeed()
	a.Accels[i] = params.Accel
	a.Resistances[i] = params.Resistance
	a.Intelligences[i] = params.Intelligence
	a.LookSpeeds[i] = params.LookSpeed
	a.MaxFrustrations[i] = params.MaxFrustration
	a.ArrivalDesiredSpeeds[i] = params.ArrivalDesiredSpeed
	a.ArrivalThresholdSqs[i] = params.ArrivalThresholdSq
}

// Remove marks slot i as dead. Its corridor buffer is kept for reuse.
func (a *Agents) Remove(i int32) {
	a.checkIndex(i)
	a.Alive[i] = false
	a.Velocities[i] = common.Vec2{}
	a.Corridors[i] = a.Corridors[i][:0]
	a.CorridorCursors[i] = 0
}

func (a *Agents) checkIndex(i int32) {
	common.AssertTrue(i >= 0 && i < a.Cap(), "agent index %d out of range [0, %d)", i, a.Cap())
}

// Corridor returns the unconsumed part of agent i's corridor.
func (a *Agents) Corridor(i int32) []int32 {
	c := a.Corridors[i]
	cur := a.CorridorCursors[i]
	if int(cur) >= len(c) {
		return c[len(c):]
	}
	return c[cur:]
}

func (a *Agents) remainingCorridor(i int32) int32 {
	return int32(len(a.Corridor(i)))
}

// setCorridor replaces agent i's corridor with polys and rewinds the cursor.
// polys must not alias the agent's buffer.
func (a *Agents) setCorridor(i int32, polys []int32) {
	a.Corridors[i] = append(a.Corridors[i][:0], polys...)
	a.CorridorCursors[i] = 0
}

// trimCorridor drops the first n unconsumed polygons.
func (a *Agents) trimCorridor(i int32, n int) {
	view := a.Corridor(i)
	a.Corridors[i] = append(a.Corridors[i][:0], view[n:]...)
	a.CorridorCursors[i] = 0
}

func (a *Agents) clearCorridor(i int32) {
	a.Corridors[i] = a.Corridors[i][:0]
	a.CorridorCursors[i] = 0
}

func (a *Agents) setCorners(i int32, c pathfind.Corners) {
	a.NextCorners[i], a.NextCornerTris[i] = c.Corner1, c.Tri1
	a.NextCorners2[i], a.NextCorner2Tris[i] = c.Corner2, c.Tri2
	a.NumValidCorners[i] = c.NumValid
}
