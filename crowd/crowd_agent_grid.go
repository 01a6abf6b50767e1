package crowd

import (
	"math"

	"github.com/gorustyt/crowdnav/common"
)

// agentGrid buckets agents into square cells covering the whole world.
// Buckets are stored compactly: cell k holds items[offsets[k]:offsets[k+1]].
// The grid origin is jittered every rebuild along a Halton sequence so agents
// do not sit on the same cell border frame after frame.
type agentGrid struct {
	cellSize    float32
	invCellSize float32
	origin      float32
	width       int32
	height      int32
	maxPerCell  int32

	jitter common.Vec2
	frame  int

	counts     []int32
	offsets    []int32
	items      []int32
	agentCells []int32
}

func newAgentGrid(cellSize, worldMin, worldMax float32, maxPerCell int32) *agentGrid {
	common.AssertTrue(cellSize > 0, "agent grid cell size %v", cellSize)
	common.AssertTrue(worldMax > worldMin, "agent grid bounds [%v, %v]", worldMin, worldMax)
	side := int32(math.Ceil(float64((worldMax - worldMin) / cellSize)))
	g := &agentGrid{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		origin:      worldMin,
		width:       side,
		height:      side,
		maxPerCell:  maxPerCell,
	}
	g.counts = make([]int32, g.cellCount())
	g.offsets = make([]int32, g.cellCount()+1)
	return g
}

func (g *agentGrid) cellCount() int32 { return g.width * g.height }

// cellOf returns the jittered cell of p, or -1 outside the world.
func (g *agentGrid) cellOf(p common.Vec2) int32 {
	x := int32(math.Floor(float64((p[0] + g.jitter[0] - g.origin) * g.invCellSize)))
	y := int32(math.Floor(float64((p[1] + g.jitter[1] - g.origin) * g.invCellSize)))
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return -1
	}
	return y*g.width + x
}

// rebuild buckets the alive agents among the first n slots. Agents past a
// full cell are left out for this frame.
func (g *agentGrid) rebuild(a *Agents, n int32) {
	half := g.cellSize * 0.5
	g.jitter = common.Vec2{
		common.Halton(g.frame, 2)*g.cellSize - half,
		common.Halton(g.frame, 3)*g.cellSize - half,
	}
	clear(g.counts)

	g.agentCells = g.agentCells[:0]
	for i := int32(0); i < n; i++ {
		cell := int32(-1)
		if a.Alive[i] {
			cell = g.cellOf(a.Positions[i])
		}
		if cell != -1 {
			if g.counts[cell] < g.maxPerCell {
				g.counts[cell]++
			} else {
				cell = -1
			}
		}
		g.agentCells = append(g.agentCells, cell)
	}

	for k, cnt := range g.counts {
		g.offsets[k+1] = g.offsets[k] + cnt
	}
	total := g.offsets[len(g.offsets)-1]
	if int32(cap(g.items)) < total {
		g.items = make([]int32, total)
	}
	g.items = g.items[:total]

	// counts are rebuilt as fill cursors
	clear(g.counts)
	for i, cell := range g.agentCells {
		if cell == -1 {
			continue
		}
		g.items[g.offsets[cell]+g.counts[cell]] = int32(i)
		g.counts[cell]++
	}
	g.frame++
}

// cell returns the agents bucketed in cell k, in slot order.
func (g *agentGrid) cell(k int32) []int32 {
	return g.items[g.offsets[k]:g.offsets[k+1]]
}
