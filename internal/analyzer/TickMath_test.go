package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickToPriceAtZero(t *testing.T) {
	assert.Equal(t, 1.0, TickToPrice(0))
	assert.InDelta(t, 1.0001, TickToPrice(1), 1e-12)
}

func TestTickRoundTrip(t *testing.T) {
	for _, tick := range []int{-200000, -60, 0, 1, 60, 85176, 200000} {
		got := PriceToTick(TickToPrice(tick))
		assert.InDelta(t, tick, got, 1, "tick %d", tick)
	}
}

func TestTickClamping(t *testing.T) {
	assert.Equal(t, TickToPrice(MaxTick), TickToPrice(MaxTick+1000))
	assert.Equal(t, TickToPrice(MinTick), TickToPrice(MinTick-1000))
	assert.Equal(t, MaxTick, PriceToTick(math.MaxFloat64))
}

func TestPriceToTickDegenerate(t *testing.T) {
	assert.Equal(t, 0, PriceToTick(0))
	assert.Equal(t, 0, PriceToTick(-5))
	assert.Equal(t, 0, PriceToTick(math.NaN()))
	assert.Equal(t, 0, PriceToTick(math.Inf(1)))
}

func TestTickToSqrtPrice(t *testing.T) {
	assert.InDelta(t, math.Sqrt(TickToPrice(1000)), TickToSqrtPrice(1000), 1e-9)
}

func TestSnapTicks(t *testing.T) {
	assert.Equal(t, 60, SnapTickDown(119, 60))
	assert.Equal(t, 120, SnapTickUp(61, 60))
	assert.Equal(t, -120, SnapTickDown(-61, 60))
	assert.Equal(t, -60, SnapTickUp(-119, 60))
	assert.Equal(t, 120, SnapTickUp(120, 60))
	assert.Equal(t, 7, SnapTickDown(7, 1))
}

func TestPctToTicks(t *testing.T) {
	// 1.0001^ticks ~= 1.05
	ticks := PctToTicks(0.05)
	assert.InDelta(t, 1.05, TickToPrice(ticks), 1e-3)
	assert.Equal(t, 0, PctToTicks(0))
	assert.Equal(t, 0, PctToTicks(math.NaN()))
}

func TestAmountsForLiquidity(t *testing.T) {
	a0, a1 := AmountsForLiquidity(1, 1, 0.5, 2)
	assert.InDelta(t, 0.5, a0, 1e-12)
	assert.InDelta(t, 0.5, a1, 1e-12)

	a0, a1 = AmountsForLiquidity(1, 0.4, 0.5, 2)
	assert.InDelta(t, 1.5, a0, 1e-12)
	assert.Zero(t, a1)

	a0, a1 = AmountsForLiquidity(1, 3, 0.5, 2)
	assert.Zero(t, a0)
	assert.InDelta(t, 1.5, a1, 1e-12)

	a0, a1 = AmountsForLiquidity(1, 1, 2, 0.5)
	assert.Zero(t, a0)
	assert.Zero(t, a1)

	a0, a1 = AmountsForLiquidity(0, 1, 0.5, 2)
	assert.Zero(t, a0)
	assert.Zero(t, a1)
}
