package navmesh

import "github.com/gorustyt/crowdnav/common"

// edgeSide returns the orientation of p against the edge (i1,p1)->(i2,p2).
// The cross product is always evaluated with the lower vertex id first so
// that the two primitives sharing an edge compute the exact same value.
func edgeSide(i1, i2 int32, p1, p2, p common.Vec2) float32 {
	if i1 > i2 {
		return -((p1[0]-p2[0])*(p[1]-p2[1]) - (p1[1]-p2[1])*(p[0]-p2[0]))
	}
	return (p2[0]-p1[0])*(p[1]-p1[1]) - (p2[1]-p1[1])*(p[0]-p1[0])
}

// TestPointInsideTriangle is an index-canonical half-plane test, boundary inclusive.
func (m *NavMesh) TestPointInsideTriangle(p common.Vec2, tri int32) bool {
	v1, v2, v3 := m.TriVerts(tri)
	a, b, c := m.Vertices[v1], m.Vertices[v2], m.Vertices[v3]
	return edgeSide(v1, v2, a, b, p) >= 0 &&
		edgeSide(v2, v3, b, c, p) >= 0 &&
		edgeSide(v3, v1, c, a, p) >= 0
}

// TestPointInsidePolygon applies the same per-edge rule to a convex polygon.
func (m *NavMesh) TestPointInsidePolygon(p common.Vec2, poly int32) bool {
	ids := m.PolyVertices(poly)
	n := len(ids)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		v1, v2 := ids[i], ids[(i+1)%n]
		if edgeSide(v1, v2, m.Vertices[v1], m.Vertices[v2], p) < 0 {
			return false
		}
	}
	return true
}

func (m *NavMesh) checkTriangle(tri int32, p common.Vec2) bool {
	return m.IsWalkableTriangle(tri) && m.TestPointInsideTriangle(p, tri)
}

// Locate finds the walkable triangle containing p. The last known triangle
// and its neighbors are tried before the spatial index. Returns -1 when p is
// off the walkable mesh.
func (m *NavMesh) Locate(p common.Vec2, last int32) int32 {
	if m.checkTriangle(last, p) {
		return last
	}
	if m.IsWalkableTriangle(last) {
		for e := int32(0); e < 3; e++ {
			if n := m.TriNeighbor(last, e); m.checkTriangle(n, p) {
				return n
			}
		}
	}
	return m.TriangleFromPoint(p)
}

func (m *NavMesh) TriangleFromPoint(p common.Vec2) int32 {
	for _, tri := range m.TriangleIndex.Query(p) {
		if m.checkTriangle(tri, p) {
			return tri
		}
	}
	return -1
}

func (m *NavMesh) PolygonFromPoint(p common.Vec2) int32 {
	for _, poly := range m.PolygonIndex.Query(p) {
		if m.TestPointInsidePolygon(p, poly) {
			return poly
		}
	}
	return -1
}

// BlobFromPoint returns the obstacle polygon id containing p, or -1.
func (m *NavMesh) BlobFromPoint(p common.Vec2) int32 {
	for _, blob := range m.BlobIndex.Query(p) {
		if common.PointInPolygonWinding(p, m.PolyPoints(blob)) {
			return blob
		}
	}
	return -1
}

func (m *NavMesh) BuildingFromPoint(p common.Vec2) int32 {
	for _, b := range m.BuildingIndex.Query(p) {
		if common.PointInPolygonWinding(p, m.BuildingPoints(b)) {
			return b
		}
	}
	return -1
}

// TriangleFromPolyPoint finds the triangle of poly that contains p.
func (m *NavMesh) TriangleFromPolyPoint(p common.Vec2, poly int32) int32 {
	if poly < 0 || poly >= m.PolygonCount() {
		return -1
	}
	s, e := common.Span(m.PolyTris, poly)
	for t := s; t < e; t++ {
		if m.TestPointInsideTriangle(p, t) {
			return t
		}
	}
	return -1
}

// TrianglesToPolygons converts a triangle strip to its polygon sequence,
// collapsing consecutive duplicates.
func (m *NavMesh) TrianglesToPolygons(tris []int32, out []int32) []int32 {
	for _, t := range tris {
		if p := m.PolygonOfTriangle(t); p >= 0 {
			out = common.AppendUnique(out, p)
		}
	}
	return out
}

// PolyEdgeTo returns the slot inside PolyVerts of the edge of poly whose
// neighbor is other, or -1.
func (m *NavMesh) PolyEdgeTo(poly, other int32) int32 {
	s, e := m.PolyRange(poly)
	for k := s; k < e; k++ {
		if m.PolyNeighbors[k] == other {
			return k
		}
	}
	return -1
}

// PolyEdgeVerts returns the vertex ids of the edge stored at slot k of poly.
func (m *NavMesh) PolyEdgeVerts(poly, k int32) (int32, int32) {
	s, e := m.PolyRange(poly)
	next := k + 1
	if next == e {
		next = s
	}
	return m.PolyVerts[k], m.PolyVerts[next]
}
