package navmesh

import (
	"math"

	"github.com/gorustyt/crowdnav/common"
)

// SpatialIndex is a uniform grid over a rectangle. Cell i holds
// CellItems[CellOffsets[i]:CellOffsets[i+1]].
type SpatialIndex struct {
	CellSize   float32
	MinX, MinY float32
	MaxX, MaxY float32
	GridWidth  int32
	GridHeight int32

	CellOffsets []int32
	CellItems   []int32
}

func NewSpatialIndex(cellSize float32, bmin, bmax common.Vec2) *SpatialIndex {
	w := int32(math.Ceil(float64((bmax[0] - bmin[0]) / cellSize)))
	h := int32(math.Ceil(float64((bmax[1] - bmin[1]) / cellSize)))
	w = max(w, 1)
	h = max(h, 1)
	return &SpatialIndex{
		CellSize:    cellSize,
		MinX:        bmin[0],
		MinY:        bmin[1],
		MaxX:        bmax[0],
		MaxY:        bmax[1],
		GridWidth:   w,
		GridHeight:  h,
		CellOffsets: make([]int32, w*h+1),
	}
}

func (s *SpatialIndex) CellCount() int32 { return s.GridWidth * s.GridHeight }

// Populate registers ids [0, count) whose outline is returned by shape.
// Every cell overlapping a primitive's bounds runs the precise overlap test
// before the id is inserted.
func (s *SpatialIndex) Populate(count int32, shape func(id int32) []common.Vec2) {
	cells := make([][]int32, s.CellCount())
	for id := int32(0); id < count; id++ {
		pts := shape(id)
		if len(pts) < 3 {
			continue
		}
		bmin, bmax := common.Bounds(pts)
		x0 := max(0, int32(math.Floor(float64((bmin[0]-s.MinX)/s.CellSize))))
		x1 := min(s.GridWidth-1, int32(math.Floor(float64((bmax[0]-s.MinX)/s.CellSize))))
		y0 := max(0, int32(math.Floor(float64((bmin[1]-s.MinY)/s.CellSize))))
		y1 := min(s.GridHeight-1, int32(math.Floor(float64((bmax[1]-s.MinY)/s.CellSize))))
		for cx := x0; cx <= x1; cx++ {
			for cy := y0; cy <= y1; cy++ {
				cmin := common.Vec2{s.MinX + float32(cx)*s.CellSize, s.MinY + float32(cy)*s.CellSize}
				cmax := common.Vec2{cmin[0] + s.CellSize, cmin[1] + s.CellSize}
				if !common.OverlapBounds(bmin, bmax, cmin, cmax) || !common.ShapeOverlapsCell(pts, cmin, cmax) {
					continue
				}
				ci := cy*s.GridWidth + cx
				cells[ci] = append(cells[ci], id)
			}
		}
	}
	s.compact(cells)
}

func (s *SpatialIndex) compact(cells [][]int32) {
	total := 0
	for _, c := range cells {
		total += len(c)
	}
	s.CellItems = make([]int32, 0, total)
	for i, c := range cells {
		s.CellOffsets[i] = int32(len(s.CellItems))
		s.CellItems = append(s.CellItems, c...)
	}
	s.CellOffsets[len(cells)] = int32(len(s.CellItems))
}

func (s *SpatialIndex) offsetIDs(base int32) {
	for i := range s.CellItems {
		s.CellItems[i] += base
	}
}

// cellOf maps a point to its cell. Points on the max edges belong to the
// last row or column.
func (s *SpatialIndex) cellOf(x, y float32) (int32, bool) {
	if x < s.MinX || y < s.MinY || x > s.MaxX || y > s.MaxY {
		return -1, false
	}
	cx := min(int32((x-s.MinX)/s.CellSize), s.GridWidth-1)
	cy := min(int32((y-s.MinY)/s.CellSize), s.GridHeight-1)
	return cy*s.GridWidth + cx, true
}

// Query returns the ids registered in the cell containing p. The returned
// slice aliases the index and must not be modified.
func (s *SpatialIndex) Query(p common.Vec2) []int32 {
	if s == nil || len(s.CellItems) == 0 {
		return nil
	}
	ci, ok := s.cellOf(p[0], p[1])
	if !ok {
		return nil
	}
	return s.CellItems[s.CellOffsets[ci]:s.CellOffsets[ci+1]]
}

// QueryArea returns the deduplicated union of ids over every cell touching the rectangle.
func (s *SpatialIndex) QueryArea(minX, minY, maxX, maxY float32) []int32 {
	if s == nil || len(s.CellItems) == 0 {
		return nil
	}
	x0 := max(0, int32((minX-s.MinX)/s.CellSize))
	x1 := min(s.GridWidth-1, int32((maxX-s.MinX)/s.CellSize))
	y0 := max(0, int32((minY-s.MinY)/s.CellSize))
	y1 := min(s.GridHeight-1, int32((maxY-s.MinY)/s.CellSize))
	var res []int32
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			ci := cy*s.GridWidth + cx
			for _, id := range s.CellItems[s.CellOffsets[ci]:s.CellOffsets[ci+1]] {
				if common.IndexOf(res, id) < 0 {
					res = append(res, id)
				}
			}
		}
	}
	return res
}
