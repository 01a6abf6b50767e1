package common

import (
	"cmp"
	"math"
)

const MaxFloat = math.MaxFloat32

// / Returns the square of the value.
// / @param[in]		a	The value.
// / @return The square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// / Returns the absolute value.
// / @param[in]		a	The value.
// / @return The absolute value of the specified value.
func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// / Clamps the value to the specified range.
// / @param[in]		value			The value to clamp.
// / @param[in]		minInclusive	The minimum permitted return value.
// / @param[in]		maxInclusive	The maximum permitted return value.
// / @return The value, clamped to the specified range.
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

// / Performs a linear interpolation between two scalars. (@p a toward @p b)
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// / Maps @p v from [inMin, inMax] to [outMin, outMax].
// / When @p clamp is set the result stays inside the output range.
func Cvt(v, inMin, inMax, outMin, outMax float32, clamp bool) float32 {
	if inMax == inMin {
		return outMin
	}
	t := (v - inMin) / (inMax - inMin)
	if clamp {
		t = Clamp(t, 0, 1)
	}
	return outMin + (outMax-outMin)*t
}

func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// / Derives the 2D perp product of the two vectors. (u.x*v.y - u.y*v.x)
func Cross(u, v Vec2) float32 {
	return u[0]*v[1] - u[1]*v[0]
}

// / Derives the 2D cross product of (p2-p1) and (p3-p1).
func Cross3(p1, p2, p3 Vec2) float32 {
	return (p2[0]-p1[0])*(p3[1]-p1[1]) - (p2[1]-p1[1])*(p3[0]-p1[0])
}

// / Returns true when @p p3 lies to the right of the directed line p1->p2.
func IsToRight(p1, p2, p3 Vec2) bool {
	return Cross3(p1, p2, p3) < 0
}

// / Derives the signed area of the triangle ABC in the funnel convention.
// / Positive when C lies clockwise of AB.
func TriArea2(a, b, c Vec2) float32 {
	ax := b[0] - a[0]
	ay := b[1] - a[1]
	bx := c[0] - a[0]
	by := c[1] - a[1]
	return bx*ay - ax*by
}

func LenSqr(v Vec2) float32 {
	return v[0]*v[0] + v[1]*v[1]
}

// / Returns the square of the distance between two points.
func DistSqr(a, b Vec2) float32 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return dx*dx + dy*dy
}

// / Returns the distance between two points.
func Dist(a, b Vec2) float32 {
	return Sqrt(DistSqr(a, b))
}

// / Normalizes the vector. A zero vector stays zero.
func Normalize(v Vec2) Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v[0] / l, v[1] / l}
}

// / Performs a 'sloppy' colocation check of the specified points.
func Vequal(a, b Vec2) bool {
	return Abs(a[0]-b[0]) < 1e-6 && Abs(a[1]-b[1]) < 1e-6
}

func IsFinite(v float32) bool {
	return !math.IsInf(float64(v), 0) && !math.IsNaN(float64(v))
}

// / Derives the squared distance from @p pt to the segment pq and the
// / segment parameter of the closest point.
func DistancePtSegSqr(pt, p, q Vec2) (t float32, d float32) {
	pqx := q[0] - p[0]
	pqy := q[1] - p[1]
	dx := pt[0] - p[0]
	dy := pt[1] - p[1]
	l := pqx*pqx + pqy*pqy
	t = pqx*dx + pqy*dy
	if l > 0 {
		t /= l
	}
	t = Clamp(t, 0, 1)
	dx = p[0] + t*pqx - pt[0]
	dy = p[1] + t*pqy - pt[1]
	return t, dx*dx + dy*dy
}

// / Rotates the unit vector @p look toward @p target by at most @p maxStep radians.
func RotateToward(look, target Vec2, maxStep float32) Vec2 {
	d := Clamp(look.Dot(target), -1, 1)
	angle := float32(math.Atan2(float64(Cross(look, target)), float64(d)))
	step := Clamp(angle, -maxStep, maxStep)
	s, c := math.Sincos(float64(step))
	return Vec2{
		look[0]*float32(c) - look[1]*float32(s),
		look[0]*float32(s) + look[1]*float32(c),
	}
}

// Halton returns the index-th element of the base-b low discrepancy sequence.
func Halton(index, base int) float32 {
	result := float32(0)
	f := 1 / float32(base)
	for i := index; i > 0; i /= base {
		result += f * float32(i%base)
		f /= float32(base)
	}
	return result
}
