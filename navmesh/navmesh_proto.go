package navmesh

import (
	"fmt"
	"math"

	"github.com/gorustyt/crowdnav/common"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the NavMesh protobuf message:
//
//	message NavMesh {
//	  repeated float  vertices = 1;             // x,y pairs
//	  repeated float  triangle_centroids = 2;
//	  repeated float  poly_centroids = 3;
//	  repeated sint32 triangles = 4;
//	  repeated sint32 triangle_neighbors = 5;
//	  repeated sint32 polygons = 6;
//	  repeated sint32 poly_verts = 7;
//	  repeated sint32 poly_neighbors = 8;
//	  repeated sint32 poly_tris = 9;
//	  repeated sint32 triangle_to_polygon = 10;
//	  repeated sint32 buildings = 11;
//	  repeated sint32 building_verts = 12;
//	  int32 walkable_triangle_count = 13;
//	  int32 walkable_polygon_count = 14;
//	}
const (
	fieldVertices protowire.Number = iota + 1
	fieldTriangleCentroids
	fieldPolyCentroids
	fieldTriangles
	fieldTriangleNeighbors
	fieldPolygons
	fieldPolyVerts
	fieldPolyNeighbors
	fieldPolyTris
	fieldTriangleToPolygon
	fieldBuildings
	fieldBuildingVerts
	fieldWalkableTriangleCount
	fieldWalkablePolygonCount
)

func (m *NavMesh) intFields() map[protowire.Number]*[]int32 {
	return map[protowire.Number]*[]int32{
		fieldTriangles:         &m.Triangles,
		fieldTriangleNeighbors: &m.TriangleNeighbors,
		fieldPolygons:          &m.Polygons,
		fieldPolyVerts:         &m.PolyVerts,
		fieldPolyNeighbors:     &m.PolyNeighbors,
		fieldPolyTris:          &m.PolyTris,
		fieldTriangleToPolygon: &m.TriangleToPolygon,
		fieldBuildings:         &m.Buildings,
		fieldBuildingVerts:     &m.BuildingVerts,
	}
}

func (m *NavMesh) vecFields() map[protowire.Number]*[]common.Vec2 {
	return map[protowire.Number]*[]common.Vec2{
		fieldVertices:          &m.Vertices,
		fieldTriangleCentroids: &m.TriangleCentroids,
		fieldPolyCentroids:     &m.PolyCentroids,
	}
}

func appendPackedFloats(b []byte, num protowire.Number, v []common.Vec2) []byte {
	if len(v) == 0 {
		return b
	}
	packed := make([]byte, 0, len(v)*8)
	for _, p := range v {
		packed = protowire.AppendFixed32(packed, math.Float32bits(p[0]))
		packed = protowire.AppendFixed32(packed, math.Float32bits(p[1]))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func appendPackedInts(b []byte, num protowire.Number, v []int32) []byte {
	if len(v) == 0 {
		return b
	}
	var packed []byte
	for _, x := range v {
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(int64(x)))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// ToProto encodes the mesh as a protobuf NavMesh message.
func (m *NavMesh) ToProto() []byte {
	var b []byte
	for num := fieldVertices; num <= fieldPolyCentroids; num++ {
		b = appendPackedFloats(b, num, *m.vecFields()[num])
	}
	ints := m.intFields()
	for num := fieldTriangles; num <= fieldBuildingVerts; num++ {
		b = appendPackedInts(b, num, *ints[num])
	}
	b = protowire.AppendTag(b, fieldWalkableTriangleCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.WalkableTriangleCount))
	b = protowire.AppendTag(b, fieldWalkablePolygonCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.WalkablePolygonCount))
	return b
}

// FromProto decodes a protobuf NavMesh message and indexes the mesh.
func (m *NavMesh) FromProto(data []byte, cellSize float32) error {
	vecs := m.vecFields()
	ints := m.intFields()
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("navmesh: proto tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case typ == protowire.BytesType && (vecs[num] != nil || ints[num] != nil):
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("navmesh: proto field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			var err error
			if dst := vecs[num]; dst != nil {
				*dst, err = decodePackedVec2(packed)
			} else {
				*ints[num], err = decodePackedInts(packed)
			}
			if err != nil {
				return fmt.Errorf("navmesh: proto field %d: %w", num, err)
			}
		case typ == protowire.VarintType && (num == fieldWalkableTriangleCount || num == fieldWalkablePolygonCount):
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("navmesh: proto field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			if num == fieldWalkableTriangleCount {
				m.WalkableTriangleCount = int32(v)
			} else {
				m.WalkablePolygonCount = int32(v)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("navmesh: proto field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return m.Init(cellSize)
}

func decodePackedVec2(b []byte) ([]common.Vec2, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("packed vec2 length %d", len(b))
	}
	res := make([]common.Vec2, 0, len(b)/8)
	for len(b) > 0 {
		x, _ := protowire.ConsumeFixed32(b)
		y, _ := protowire.ConsumeFixed32(b[4:])
		res = append(res, common.Vec2{math.Float32frombits(x), math.Float32frombits(y)})
		b = b[8:]
	}
	return res, nil
}

func decodePackedInts(b []byte) ([]int32, error) {
	var res []int32
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		res = append(res, int32(protowire.DecodeZigZag(v)))
		b = b[n:]
	}
	return res, nil
}
