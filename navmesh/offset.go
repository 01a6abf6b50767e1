package navmesh

import (
	"math"

	"github.com/gorustyt/crowdnav/common"
)

// MiterOffset pushes point, which sits on vertex vIdx of poly, outward along
// the bisector of the two polygon edges meeting there. Returns false when
// vIdx is not a vertex of poly or the bisector degenerates.
func (m *NavMesh) MiterOffset(poly, vIdx int32, point common.Vec2, offset float32) (common.Vec2, bool) {
	s, e := m.PolyRange(poly)
	for i := s; i < e; i++ {
		if m.PolyVerts[i] != vIdx {
			continue
		}
		prev := i - 1
		if i == s {
			prev = e - 1
		}
		next := i + 1
		if i == e-1 {
			next = s
		}
		a := m.Vertices[m.PolyVerts[prev]]
		c := m.Vertices[m.PolyVerts[next]]
		miter := common.Normalize(point.Sub(a)).Add(common.Normalize(point.Sub(c)))
		if common.LenSqr(miter) <= 1e-6 {
			return point, false
		}
		return point.Add(common.Normalize(miter).Mul(offset)), true
	}
	return point, false
}

// BlobCornerOffset offsets a corner lying on blob vertex vIdx. found is false
// when no blob registered near point owns vIdx.
func (m *NavMesh) BlobCornerOffset(point common.Vec2, vIdx int32, offset float32) (res common.Vec2, found bool) {
	for _, blob := range m.BlobIndex.Query(point) {
		if common.IndexOf(m.PolyVertices(blob), vIdx) < 0 {
			continue
		}
		res, _ = m.MiterOffset(blob, vIdx, point, offset)
		return res, true
	}
	return point, false
}

// ClosestBlobVertex is a diagnostic helper reporting the nearest blob vertex
// among the blobs registered in point's cell.
func (m *NavMesh) ClosestBlobVertex(point common.Vec2) (blob int32, vertex common.Vec2, dist float32) {
	blob = -1
	dist = math.MaxFloat32
	for _, b := range m.BlobIndex.Query(point) {
		for _, v := range m.PolyVertices(b) {
			if d := common.Dist(point, m.Vertices[v]); d < dist {
				dist, vertex, blob = d, m.Vertices[v], b
			}
		}
	}
	return blob, vertex, dist
}

// VertexOnTriangle returns the id of tri's vertex that coincides with p, or -1.
func (m *NavMesh) VertexOnTriangle(tri int32, p common.Vec2) int32 {
	v1, v2, v3 := m.TriVerts(tri)
	for _, v := range [3]int32{v1, v2, v3} {
		q := m.Vertices[v]
		if common.Abs(q[0]-p[0]) < 1e-5 && common.Abs(q[1]-p[1]) < 1e-5 {
			return v
		}
	}
	return -1
}
