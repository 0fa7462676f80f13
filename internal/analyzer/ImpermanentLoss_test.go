package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImpermanentLossZeroAtEntry(t *testing.T) {
	for _, p := range []float64{0.5, 1, 2000, 3500} {
		tick := PriceToTick(p)
		assert.InDelta(t, 0, ImpermanentLoss(p, p, tick-600, tick+600), 1e-12, "in range at %v", p)
		assert.InDelta(t, 0, ImpermanentLoss(p, p, tick+600, tick+1200), 1e-12, "below range at %v", p)
	}
}

func TestImpermanentLossNarrowRangeAbovePriceIsCapped(t *testing.T) {
	// range around 5000, entirely above both prices
	il := ImpermanentLoss(2000, 4000, 85200, 85800)
	assert.Equal(t, 1.0, il)
}

func TestImpermanentLossBounded(t *testing.T) {
	il := ImpermanentLoss(2000, 2100, PriceToTick(1000), PriceToTick(4000))
	assert.Greater(t, il, 0.0)
	assert.LessOrEqual(t, il, 1.0)
}

func TestImpermanentLossDegenerate(t *testing.T) {
	assert.Zero(t, ImpermanentLoss(0, 100, -10, 10))
	assert.Zero(t, ImpermanentLoss(100, -1, -10, 10))
	assert.Zero(t, ImpermanentLoss(100, 120, 10, 10))
	assert.Zero(t, ImpermanentLoss(100, 120, 20, 10))
	assert.Zero(t, ImpermanentLoss(math.NaN(), 120, -10, 10))
}

func TestILFactor(t *testing.T) {
	assert.Zero(t, ILFactor(1))
	assert.InDelta(t, math.Abs(2*math.Sqrt(2)/3-1), ILFactor(2), 1e-12)
	assert.Zero(t, ILFactor(0))
	assert.Zero(t, ILFactor(math.Inf(1)))
}
