package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFNV1a32(t *testing.T) {
	// Reference values for the 32-bit FNV-1a parameters.
	assert.Equal(t, uint32(0x811c9dc5), FNV1a32(""))
	assert.Equal(t, FNV1a32("123 main st"), FNV1a32("123 main st"))
	assert.NotEqual(t, FNV1a32("123 main st"), FNV1a32("124 main st"))
}

func TestRandDeterministic(t *testing.T) {
	a := Rand(42, 8)
	b := Rand(42, 8)
	assert.Equal(t, a, b)

	c := Rand(43, 8)
	assert.NotEqual(t, a, c)

	for _, v := range a {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRandPrefixStable(t *testing.T) {
	// Drawing fewer values yields a prefix of the longer sequence.
	long := Rand(7, 10)
	short := Rand(7, 3)
	assert.Equal(t, long[:3], short)
}

func TestMoneyBand(t *testing.T) {
	base := 800000
	low, high := MoneyBand(base, 99)
	assert.Less(t, low, base)
	assert.Greater(t, high, base)

	// Spread stays within 5-12%.
	assert.GreaterOrEqual(t, float64(base-low)/float64(base), 0.049)
	assert.LessOrEqual(t, float64(high-base)/float64(base), 0.121)

	low2, high2 := MoneyBand(base, 99)
	assert.Equal(t, low, low2)
	assert.Equal(t, high, high2)
}

func TestSparkline(t *testing.T) {
	pts := Sparkline(1234)
	assert.Len(t, pts, 12)
	for _, p := range pts {
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
	}
	assert.Equal(t, pts, Sparkline(1234))
}
