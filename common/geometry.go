package common

import "math"

const segmentEps = 1e-10

// SegmentsIntersect reports whether segments p1p2 and p3p4 touch, including
// collinear overlap.
func SegmentsIntersect(p1, p2, p3, p4 Vec2) bool {
	r := p2.Sub(p1)
	s := p4.Sub(p3)
	rxs := Cross(r, s)
	qp := p3.Sub(p1)
	if Abs(rxs) < segmentEps {
		if Abs(Cross(qp, r)) >= segmentEps {
			return false
		}
		rr := r.Dot(r)
		if rr == 0 {
			return Vequal(p1, p3) || Vequal(p1, p4)
		}
		t0 := qp.Dot(r) / rr
		t1 := t0 + s.Dot(r)/rr
		return max(t0, t1) >= -segmentEps && min(t0, t1) <= 1+segmentEps
	}
	t := Cross(qp, s) / rxs
	u := Cross(qp, r) / rxs
	return t >= -segmentEps && t <= 1+segmentEps && u >= -segmentEps && u <= 1+segmentEps
}

// LineLineIntersection intersects two infinite lines given as point + direction.
func LineLineIntersection(p1, d1, p2, d2 Vec2) (Vec2, bool) {
	c := Cross(d1, d2)
	if Abs(c) < 1e-9 {
		return Vec2{}, false
	}
	t := Cross(p2.Sub(p1), d2) / c
	return p1.Add(d1.Mul(t)), true
}

// PointInTriangle is a barycentric containment test, boundary inclusive.
func PointInTriangle(p, a, b, c Vec2) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)
	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)
	denom := dot00*dot11 - dot01*dot01
	if Abs(denom) < 1e-12 {
		return false
	}
	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv
	return u >= -1e-6 && v >= -1e-6 && u+v <= 1+1e-6
}

// PointInPolygonWinding uses the winding number rule.
func PointInPolygonWinding(p Vec2, poly []Vec2) bool {
	wn := 0
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		if a[1] <= p[1] {
			if b[1] > p[1] && Cross3(a, b, p) > 0 {
				wn++
			}
		} else if b[1] <= p[1] && Cross3(a, b, p) < 0 {
			wn--
		}
	}
	return wn != 0
}

func OverlapBounds(amin, amax, bmin, bmax Vec2) bool {
	return !(amin[0] > bmax[0] || amax[0] < bmin[0] || amin[1] > bmax[1] || amax[1] < bmin[1])
}

func Bounds(pts []Vec2) (bmin, bmax Vec2) {
	bmin = Vec2{math.MaxFloat32, math.MaxFloat32}
	bmax = Vec2{-math.MaxFloat32, -math.MaxFloat32}
	for _, p := range pts {
		bmin[0] = min(bmin[0], p[0])
		bmin[1] = min(bmin[1], p[1])
		bmax[0] = max(bmax[0], p[0])
		bmax[1] = max(bmax[1], p[1])
	}
	return bmin, bmax
}

// ShapeOverlapsCell runs the precise primitive vs cell test used when
// populating spatial grids. pts is a triangle or a convex/concave ring.
func ShapeOverlapsCell(pts []Vec2, cellMin, cellMax Vec2) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	// vertex in cell
	for _, p := range pts {
		if p[0] >= cellMin[0] && p[0] <= cellMax[0] && p[1] >= cellMin[1] && p[1] <= cellMax[1] {
			return true
		}
	}
	corners := [4]Vec2{cellMin, {cellMax[0], cellMin[1]}, cellMax, {cellMin[0], cellMax[1]}}
	// cell corner in shape
	for _, c := range corners {
		if n == 3 {
			if PointInTriangle(c, pts[0], pts[1], pts[2]) {
				return true
			}
		} else if PointInPolygonWinding(c, pts) {
			return true
		}
	}
	// edge crossings
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		for j := 0; j < 4; j++ {
			if SegmentsIntersect(a, b, corners[j], corners[(j+1)%4]) {
				return true
			}
		}
	}
	// separating axes on the shape's edge normals
	for i := 0; i < n; i++ {
		e := pts[(i+1)%n].Sub(pts[i])
		axis := Vec2{-e[1], e[0]}
		sMin, sMax := float32(math.MaxFloat32), float32(-math.MaxFloat32)
		for _, p := range pts {
			d := p.Dot(axis)
			sMin = min(sMin, d)
			sMax = max(sMax, d)
		}
		cMin, cMax := float32(math.MaxFloat32), float32(-math.MaxFloat32)
		for _, c := range corners {
			d := c.Dot(axis)
			cMin = min(cMin, d)
			cMax = max(cMax, d)
		}
		if sMax < cMin || cMax < sMin {
			return false
		}
	}
	return true
}

// PolygonArea2 returns twice the signed area, positive for counter clockwise rings.
func PolygonArea2(pts []Vec2) float32 {
	var a float32
	n := len(pts)
	for i := 0; i < n; i++ {
		a += Cross(pts[i], pts[(i+1)%n])
	}
	return a
}

func Centroid(pts []Vec2) Vec2 {
	var c Vec2
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Mul(1 / float32(len(pts)))
}
