package navmesh

import (
	"errors"
	"fmt"

	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/common/rw"
)

const (
	NavMeshMagic   = 'C'<<24 | 'N'<<16 | 'A'<<8 | 'V'
	NavMeshVersion = 1
)

var (
	ErrWrongMagic   = errors.New("navmesh: wrong magic")
	ErrWrongVersion = errors.New("navmesh: wrong version")
)

func flattenVec2(v []common.Vec2) []float32 {
	res := make([]float32, 0, len(v)*2)
	for _, p := range v {
		res = append(res, p[0], p[1])
	}
	return res
}

func unflattenVec2(f []float32) []common.Vec2 {
	res := make([]common.Vec2, len(f)/2)
	for i := range res {
		res[i] = common.Vec2{f[i*2], f[i*2+1]}
	}
	return res
}

// ToBin serializes the mesh arrays little endian. Spatial indices are not
// stored; FromBin rebuilds them.
func (m *NavMesh) ToBin() []byte {
	w := rw.NewBinWriter()
	w.WriteInt32(NavMeshMagic)
	w.WriteInt32(NavMeshVersion)
	w.WriteFloat32s([]float32{m.BMin[0], m.BMin[1], m.BMax[0], m.BMax[1]})

	verts := flattenVec2(m.Vertices)
	triCentroids := flattenVec2(m.TriangleCentroids)
	polyCentroids := flattenVec2(m.PolyCentroids)
	arrays := [][]int32{
		m.Triangles, m.TriangleNeighbors, m.Polygons, m.PolyVerts, m.PolyNeighbors,
		m.PolyTris, m.TriangleToPolygon, m.Buildings, m.BuildingVerts,
	}
	w.WriteInt32(int32(len(verts)))
	w.WriteInt32(int32(len(triCentroids)))
	w.WriteInt32(int32(len(polyCentroids)))
	for _, a := range arrays {
		w.WriteInt32(int32(len(a)))
	}
	w.WriteInt32(m.WalkableTriangleCount)
	w.WriteInt32(m.WalkablePolygonCount)

	w.WriteFloat32s(verts)
	w.WriteFloat32s(triCentroids)
	w.WriteFloat32s(polyCentroids)
	for _, a := range arrays {
		w.WriteInt32s(a)
	}
	return w.GetWriteBytes()
}

// FromBin decodes data produced by ToBin and indexes the mesh.
func (m *NavMesh) FromBin(data []byte, cellSize float32) error {
	r := rw.NewBinReader(data)
	if magic := r.ReadInt32(); magic != NavMeshMagic {
		if r.Err() != nil {
			return r.Err()
		}
		return fmt.Errorf("%w: %#x", ErrWrongMagic, magic)
	}
	if version := r.ReadInt32(); version != NavMeshVersion {
		if r.Err() != nil {
			return r.Err()
		}
		return fmt.Errorf("%w: %d", ErrWrongVersion, version)
	}
	bbox := r.ReadFloat32s(4)
	var counts [12]int32
	for i := range counts {
		counts[i] = r.ReadInt32()
	}
	m.WalkableTriangleCount = r.ReadInt32()
	m.WalkablePolygonCount = r.ReadInt32()

	m.Vertices = unflattenVec2(r.ReadFloat32s(counts[0]))
	m.TriangleCentroids = unflattenVec2(r.ReadFloat32s(counts[1]))
	m.PolyCentroids = unflattenVec2(r.ReadFloat32s(counts[2]))
	arrays := []*[]int32{
		&m.Triangles, &m.TriangleNeighbors, &m.Polygons, &m.PolyVerts, &m.PolyNeighbors,
		&m.PolyTris, &m.TriangleToPolygon, &m.Buildings, &m.BuildingVerts,
	}
	for i, a := range arrays {
		*a = r.ReadInt32s(counts[3+i])
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("navmesh: decode: %w", err)
	}
	if len(bbox) == 4 {
		m.BMin, m.BMax = common.Vec2{bbox[0], bbox[1]}, common.Vec2{bbox[2], bbox[3]}
	}
	return m.Init(cellSize)
}
