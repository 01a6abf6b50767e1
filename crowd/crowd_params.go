package crowd

import (
	"fmt"
	"math"

	"github.com/gorustyt/crowdnav/common"
	"go.uber.org/multierr"
)

// Stuck heuristic weights.
const (
	StuckPassiveX1  = 14 ///< Passive accumulation per second.
	StuckDstX2      = 18 ///< Reward for closing in on the next corner.
	StuckCorridorX3 = 40 ///< Reward per corridor polygon consumed.
	StuckDecay      = 0.8
	StuckDanger1    = 35 ///< Try a raycast patch.
	StuckDanger2    = 45 ///< Repath when the agent has stalled.
	StuckDanger3    = 75 ///< Repath unconditionally.
	StuckHitWall    = 5
)

const (
	LookRotSpeed         = 6 ///< Default look speed, radians per second.
	CornerOffset         = 2.2
	CorridorExpectedJump = 5
	PathFreeWidth        = 6
	PathWidthPenaltyMult = 10
	PredicamentLimit     = 7
	DestinationCells     = 15
)

// Agent separation.
const (
	AgentRadius    = 2.5
	PushForce      = 10
	EscapingWeight = 20
)

// Agent bucket grid.
const (
	AgentGridCellSize   = 256
	AgentGridWorldMin   = -10000
	AgentGridWorldMax   = 10000
	AgentGridMaxPerCell = 256
)

// / Configuration parameters for a crowd agent.
type AgentParams struct {
	MaxSpeed            float32 `yaml:"max_speed"`             ///< Zero derives the terminal speed from accel and resistance.
	Accel               float32 `yaml:"accel"`                 ///< Maximum velocity change per second.
	Resistance          float32 `yaml:"resistance"`            ///< Velocity fraction lost per second. [Limit: 0 < value < 1]
	Intelligence        float32 `yaml:"intelligence"`          ///< 0 steers physically, 1 snaps to the desired velocity.
	LookSpeed           float32 `yaml:"look_speed"`            ///< Radians per second.
	MaxFrustration      int32   `yaml:"max_frustration"`       ///< Off-corridor polygons tolerated before a repath.
	ArrivalDesiredSpeed float32 `yaml:"arrival_desired_speed"` ///< Fraction of max speed kept when reaching the destination.
	ArrivalThresholdSq  float32 `yaml:"arrival_threshold_sq"`
}

func DefaultAgentParams() AgentParams {
	return AgentParams{
		MaxSpeed:            3,
		Accel:               20,
		Resistance:          0.1,
		Intelligence:        0.5,
		LookSpeed:           LookRotSpeed,
		MaxFrustration:      10,
		ArrivalDesiredSpeed: 1,
		ArrivalThresholdSq:  4,
	}
}

// TerminalSpeed is the speed at which full acceleration balances the
// resistance decay.
func (p AgentParams) TerminalSpeed() float32 {
	switch {
	case p.Resistance >= 1:
		return 0
	case p.Resistance <= 0:
		return common.MaxFloat
	}
	return p.Accel / -float32(math.Log(float64(1-p.Resistance)))
}

func (p AgentParams) maxSpeed() float32 {
	if p.MaxSpeed > 0 {
		return p.MaxSpeed
	}
	return p.TerminalSpeed()
}

type PathParams struct {
	FreeWidth        float32 `yaml:"free_width"`
	WidthPenaltyMult float32 `yaml:"width_penalty_mult"`
	CornerOffset     float32 `yaml:"corner_offset"`
	ExpectedJump     int32   `yaml:"expected_jump"` ///< Corridor lookahead when checking the agent is on path.
}

type CollisionParams struct {
	Radius         float32 `yaml:"radius"`
	PushForce      float32 `yaml:"push_force"`
	EscapingWeight float32 `yaml:"escaping_weight"`
	CellSize       float32 `yaml:"cell_size"`
	WorldMin       float32 `yaml:"world_min"`
	WorldMax       float32 `yaml:"world_max"`
	MaxPerCell     int32   `yaml:"max_per_cell"`
}

// DestinationParams bounds the random destinations picked by idle agents.
type DestinationParams struct {
	Center common.Vec2 `yaml:"center"`
	Cells  int32       `yaml:"cells"` ///< Half extent in triangle index cells.
}

type Params struct {
	Agent       AgentParams       `yaml:"agent"`
	Path        PathParams        `yaml:"path"`
	Collision   CollisionParams   `yaml:"collision"`
	Destination DestinationParams `yaml:"destination"`
}

func DefaultParams() Params {
	return Params{
		Agent: DefaultAgentParams(),
		Path: PathParams{
			FreeWidth:        PathFreeWidth,
			WidthPenaltyMult: PathWidthPenaltyMult,
			CornerOffset:     CornerOffset,
			ExpectedJump:     CorridorExpectedJump,
		},
		Collision: CollisionParams{
			Radius:         AgentRadius,
			PushForce:      PushForce,
			EscapingWeight: EscapingWeight,
			CellSize:       AgentGridCellSize,
			WorldMin:       AgentGridWorldMin,
			WorldMax:       AgentGridWorldMax,
			MaxPerCell:     AgentGridMaxPerCell,
		},
		Destination: DestinationParams{Cells: DestinationCells},
	}
}

// Validate reports every parameter outside its usable range.
func (p Params) Validate() (err error) {
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
	}
	ag := p.Agent
	check(ag.MaxSpeed >= 0, "agent.max_speed %v < 0", ag.MaxSpeed)
	check(ag.Accel > 0, "agent.accel %v <= 0", ag.Accel)
	check(ag.Resistance > 0 && ag.Resistance < 1, "agent.resistance %v not in (0, 1)", ag.Resistance)
	check(ag.Intelligence >= 0 && ag.Intelligence <= 1, "agent.intelligence %v not in [0, 1]", ag.Intelligence)
	check(ag.LookSpeed > 0, "agent.look_speed %v <= 0", ag.LookSpeed)
	check(ag.MaxFrustration >= 0, "agent.max_frustration %v < 0", ag.MaxFrustration)
	check(ag.ArrivalDesiredSpeed >= 0 && ag.ArrivalDesiredSpeed <= 1, "agent.arrival_desired_speed %v not in [0, 1]", ag.ArrivalDesiredSpeed)
	check(ag.ArrivalThresholdSq >= 0, "agent.arrival_threshold_sq %v < 0", ag.ArrivalThresholdSq)

	pp := p.Path
	check(pp.FreeWidth >= 0, "path.free_width %v < 0", pp.FreeWidth)
	check(pp.WidthPenaltyMult >= 0, "path.width_penalty_mult %v < 0", pp.WidthPenaltyMult)
	check(pp.CornerOffset >= 0, "path.corner_offset %v < 0", pp.CornerOffset)
	check(pp.ExpectedJump >= 1, "path.expected_jump %v < 1", pp.ExpectedJump)

	cp := p.Collision
	check(cp.Radius > 0, "collision.radius %v <= 0", cp.Radius)
	check(cp.PushForce >= 0, "collision.push_force %v < 0", cp.PushForce)
	check(cp.EscapingWeight > 0, "collision.escaping_weight %v <= 0", cp.EscapingWeight)
	check(cp.CellSize >= 2*cp.Radius, "collision.cell_size %v smaller than an agent", cp.CellSize)
	check(cp.WorldMax > cp.WorldMin, "collision world bounds [%v, %v] empty", cp.WorldMin, cp.WorldMax)
	check(cp.MaxPerCell >= 2, "collision.max_per_cell %v < 2", cp.MaxPerCell)

	check(p.Destination.Cells >= 0, "destination.cells %v < 0", p.Destination.Cells)
	return err
}
