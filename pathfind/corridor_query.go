package pathfind

import (
	"math"

	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/common/logger"
	"github.com/gorustyt/crowdnav/navmesh"
	"go.uber.org/zap"
)

// MaxCorridorIterations caps the node expansions of a single search.
const MaxCorridorIterations = 100000

// NoStrayPenalty used as free width turns the heuristic into the plain
// centroid distance.
var NoStrayPenalty = float32(math.Inf(1))

const (
	nodeOpen   = 0x01
	nodeClosed = 0x02
)

type corridorNode struct {
	poly   int32
	parent int32
	cost   float32 // Cost from the start polygon.
	heur   float32 // Cached heuristic, valid once flags != 0.
	total  float32 // cost + heur.
	flags  uint8
	_index int //堆中移除和更新对象用
}

func (n *corridorNode) SetIndex(index int) { n._index = index }
func (n *corridorNode) GetIndex() int      { return n._index }

// CorridorQuery runs polygon corridor searches over one mesh. The node
// arrays are sized to the walkable polygon count once and reused by every
// search, so a query must not be shared between goroutines.
type CorridorQuery struct {
	mesh    *navmesh.NavMesh
	nodes   []corridorNode
	touched []int32
	open    NodeQueue[*corridorNode]
	portals []Portal
	logger  *zap.Logger

	MaxIterations int
	// Iterations of the last search, for diagnostics.
	LastIterations int
}

func NewCorridorQuery(mesh *navmesh.NavMesh, l *zap.Logger) *CorridorQuery {
	q := &CorridorQuery{
		mesh:          mesh,
		nodes:         make([]corridorNode, mesh.WalkablePolygonCount),
		touched:       make([]int32, 0, 256),
		logger:        logger.OrNop(l),
		MaxIterations: MaxCorridorIterations,
	}
	for i := range q.nodes {
		q.nodes[i] = corridorNode{poly: int32(i), parent: -1, _index: -1}
	}
	q.open = NewNodeQueue(func(a, b *corridorNode) bool { return a.total < b.total })
	return q
}

func (q *CorridorQuery) Mesh() *navmesh.NavMesh { return q.mesh }

func (q *CorridorQuery) reset() {
	q.open.Reset()
	for _, p := range q.touched {
		n := &q.nodes[p]
		n.parent = -1
		n.cost, n.heur, n.total = 0, 0, 0
		n.flags = 0
		n._index = -1
	}
	q.touched = q.touched[:0]
}

func (q *CorridorQuery) node(p int32) *corridorNode {
	n := &q.nodes[p]
	if n.flags == 0 {
		q.touched = append(q.touched, p)
	}
	return n
}

func (q *CorridorQuery) resolveHint(p common.Vec2, hint int32) int32 {
	if hint != -1 {
		return hint
	}
	return q.mesh.PolygonFromPoint(p)
}

// FindCorridor finds a walkable polygon corridor from start to end. On
// success out holds the corridor ordered start first. On failure out is not
// touched.
//
// freeWidth and strayMult shape the heuristic: when the start to end line is
// longer than three free widths, polygons whose centroid strays more than
// freeWidth from that line are penalized. Pass +Inf as freeWidth for a plain
// centroid distance heuristic.
func (q *CorridorQuery) FindCorridor(freeWidth, strayMult float32, start, end common.Vec2,
	startHint, endHint int32, out *[]int32) navmesh.Status {
	m := q.mesh
	startPoly := q.resolveHint(start, startHint)
	endPoly := q.resolveHint(end, endHint)
	if !m.IsWalkablePolygon(startPoly) || !m.IsWalkablePolygon(endPoly) {
		q.logger.Debug("find corridor: invalid polygons",
			zap.Int32("start", startPoly), zap.Int32("end", endPoly))
		return navmesh.StatusFailure | navmesh.StatusInvalidParam
	}
	if startPoly == endPoly {
		*out = append((*out)[:0], startPoly)
		return navmesh.StatusSuccess
	}

	q.reset()
	startToEnd := end.Sub(start)
	lineLen := common.Sqrt(common.LenSqr(startToEnd)) + 1
	strayCoef := float32(0)
	if lineLen > freeWidth*3 {
		strayCoef = strayMult
	}
	endCentroid := m.PolyCentroids[endPoly]

	sn := q.node(startPoly)
	sn.flags = nodeOpen
	sn.total = common.Dist(start, end)
	q.open.Offer(sn)

	iterations := 0
	defer func() { q.LastIterations = iterations }()
	for !q.open.Empty() {
		iterations++
		if iterations > q.MaxIterations {
			q.logger.Warn("find corridor: iteration limit reached",
				zap.Int32("start", startPoly), zap.Int32("end", endPoly), zap.Int("iterations", iterations))
			return navmesh.StatusFailure | navmesh.StatusOutOfNodes
		}
		best := q.open.Poll()
		best.flags &^= nodeOpen
		best.flags |= nodeClosed
		if best.poly == endPoly {
			q.reconstruct(endPoly, out)
			return navmesh.StatusSuccess
		}

		c := m.PolyCentroids[best.poly]
		s, e := m.PolyRange(best.poly)
		for k := s; k < e; k++ {
			nei := m.PolyNeighbors[k]
			if !m.IsWalkablePolygon(nei) {
				continue
			}
			nc := m.PolyCentroids[nei]
			cost := best.cost + common.Dist(c, nc)
			n := q.node(nei)
			seen := n.flags != 0
			if seen && cost >= n.cost {
				continue
			}
			if !seen {
				n.heur = common.Dist(nc, endCentroid)
				if strayCoef > 0 {
					n.heur += strayPenalty(start, end, startToEnd, lineLen, nc, freeWidth, strayCoef)
				}
			}
			n.parent = best.poly
			n.cost = cost
			n.total = cost + n.heur
			n.flags = nodeOpen
			if q.open.Contains(n) {
				q.open.Update(n)
			} else {
				q.open.Offer(n)
			}
		}
	}
	q.logger.Debug("find corridor: no path",
		zap.Int32("start", startPoly), zap.Int32("end", endPoly), zap.Int("iterations", iterations))
	return navmesh.StatusFailure | navmesh.StatusNoPath
}

// strayPenalty discourages corridors that leave the start->end line or walk
// away from the goal.
func strayPenalty(start, end, startToEnd common.Vec2, lineLen float32, c common.Vec2, freeWidth, coef float32) float32 {
	distToLine := common.Abs(common.Cross(startToEnd, c.Sub(start))) / lineLen
	progress := common.Normalize(c.Sub(start)).Dot(startToEnd) / lineLen
	stray := max(0, distToLine-freeWidth) * coef * (1 + (1 - progress))
	backtrack := max(0, common.Dist(end, c)-lineLen)
	return stray + backtrack
}

func (q *CorridorQuery) reconstruct(endPoly int32, out *[]int32) {
	res := (*out)[:0]
	for p := endPoly; p != -1; p = q.nodes[p].parent {
		res = append(res, p)
	}
	common.Reverse(res)
	*out = res
}

// CorridorCost sums the centroid distances along corridor.
func CorridorCost(mesh *navmesh.NavMesh, corridor []int32) float32 {
	var cost float32
	for i := 1; i < len(corridor); i++ {
		cost += common.Dist(mesh.PolyCentroids[corridor[i-1]], mesh.PolyCentroids[corridor[i]])
	}
	return cost
}
