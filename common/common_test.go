package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedToRandomIsDeterministic(t *testing.T) {
	s1, s2 := uint64(42), uint64(42)
	for i := 0; i < 100; i++ {
		a := SeedToRandom(&s1)
		b := SeedToRandom(&s2)
		require.Equal(t, a, b)
		require.GreaterOrEqual(t, a, float32(0))
		require.Less(t, a, float32(1))
	}
	assert.Equal(t, s1, s2)
	// the next seed only depends on the low 32 bits
	assert.Equal(t, AdvanceSeed(7), AdvanceSeed(7|1<<40))
	assert.NotEqual(t, AdvanceSeed(7), AdvanceSeed(8))
}

func TestAdvanceSeedMatchesSeedToRandom(t *testing.T) {
	seed := uint64(99)
	next := AdvanceSeed(seed)
	SeedToRandom(&seed)
	assert.Equal(t, next, seed)
}

func TestPcg32(t *testing.T) {
	a, b := NewPcg32(5), NewPcg32(5)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Uint32(), b.Uint32())
	}
	for i := 0; i < 100; i++ {
		n := a.Intn(7)
		assert.True(t, n >= 0 && n < 7)
		f := a.Range(-2, 3)
		assert.True(t, f >= -2 && f < 3)
	}
}

func TestCrossAndSides(t *testing.T) {
	assert.Equal(t, float32(1), Cross(Vec2{1, 0}, Vec2{0, 1}))
	assert.True(t, IsToRight(Vec2{0, 0}, Vec2{1, 0}, Vec2{0.5, -1}))
	assert.False(t, IsToRight(Vec2{0, 0}, Vec2{1, 0}, Vec2{0.5, 1}))
	// funnel area is positive when the third point is clockwise
	assert.Greater(t, TriArea2(Vec2{0, 0}, Vec2{0, 1}, Vec2{1, 0}), float32(0))
}

func TestNormalizeZero(t *testing.T) {
	assert.Equal(t, Vec2{}, Normalize(Vec2{}))
	n := Normalize(Vec2{3, 4})
	assert.InDelta(t, 0.6, n[0], 1e-6)
	assert.InDelta(t, 0.8, n[1], 1e-6)
}

func TestCvtAndLerp(t *testing.T) {
	assert.Equal(t, float32(0.5), Cvt(2, 0, 1, 1, 0.5, true))
	assert.Equal(t, float32(0), Cvt(2, 0, 1, 1, 0.5, false))
	assert.Equal(t, float32(1.5), Lerp(1, 2, 0.5))
}

func TestRotateTowardIsRateLimited(t *testing.T) {
	look := Vec2{1, 0}
	got := RotateToward(look, Vec2{0, 1}, 0.1)
	angle := math.Atan2(float64(got[1]), float64(got[0]))
	assert.InDelta(t, 0.1, angle, 1e-5)
	assert.InDelta(t, 1, got.Len(), 1e-5)

	got = RotateToward(look, Vec2{0, -1}, 10)
	assert.InDelta(t, 0, got[0], 1e-5)
	assert.InDelta(t, -1, got[1], 1e-5)
}

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, SegmentsIntersect(Vec2{0, 0}, Vec2{2, 2}, Vec2{0, 2}, Vec2{2, 0}))
	assert.False(t, SegmentsIntersect(Vec2{0, 0}, Vec2{1, 0}, Vec2{0, 1}, Vec2{1, 1}))
	// collinear overlap
	assert.True(t, SegmentsIntersect(Vec2{0, 0}, Vec2{2, 0}, Vec2{1, 0}, Vec2{3, 0}))
	assert.False(t, SegmentsIntersect(Vec2{0, 0}, Vec2{1, 0}, Vec2{2, 0}, Vec2{3, 0}))
}

func TestHalton(t *testing.T) {
	assert.Equal(t, float32(0), Halton(0, 2))
	assert.Equal(t, float32(0.5), Halton(1, 2))
	assert.Equal(t, float32(0.25), Halton(2, 2))
	assert.InDelta(t, 1.0/3, Halton(1, 3), 1e-6)
}

func TestSliceHelpers(t *testing.T) {
	s := []int32{1, 2, 3, 2}
	assert.Equal(t, 1, IndexOf(s, 2))
	assert.Equal(t, 3, LastIndexOf(s, 2))
	assert.Equal(t, -1, IndexOf(s, 9))
	Reverse(s)
	assert.Equal(t, []int32{2, 3, 2, 1}, s)
	assert.Equal(t, []int32{1}, AppendUnique([]int32{1}, 1))
	assert.Panics(t, func() { AssertTrue(false, "bad %d", 1) })
}
