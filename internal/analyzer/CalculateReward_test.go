package analyzer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/config"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

func testParams() types.EngineParameters {
	return config.DefaultEngineParameters()
}

func newTestRewardEstimator() *RewardEstimator {
	return NewRewardEstimator(testParams(), zerolog.Nop())
}

func TestRebalanceCostWithoutValueIsGasOnly(t *testing.T) {
	pre := centeredSnapshot()
	pre.CurrentPrice = 0

	cost := newTestRewardEstimator().RebalanceCost(pre, 0.01, 0)
	assert.Equal(t, 0.01, cost.GasCost)
	assert.Equal(t, 0.01, cost.TotalCost)
	assert.Zero(t, cost.SlippageCost)
}

func TestRebalanceCostCentered(t *testing.T) {
	// value 20, 30 bps twice, no IL at the midpoint price
	cost := newTestRewardEstimator().RebalanceCost(centeredSnapshot(), 0.01, 0)
	assert.InDelta(t, 0.12, cost.SlippageCost, 1e-12)
	assert.InDelta(t, 0, cost.ILCrystallized, 1e-12)
	assert.InDelta(t, 0.13, cost.TotalCost, 1e-12)
}

func TestRebalanceBenefitBackInRange(t *testing.T) {
	pre := centeredSnapshot()
	pre.LowerTick, pre.UpperTick = 600, 1200

	post := centeredSnapshot()

	b := newTestRewardEstimator().RebalanceBenefit(pre, post, testPool(), 24)
	assert.InDelta(t, 120, b.FeeImprovement, 1e-6)
	assert.InDelta(t, 60, b.RangeImprovement, 1e-6)
	assert.Greater(t, b.CenteringBenefit, 0.0)
	assert.InDelta(t, b.FeeImprovement+b.RangeImprovement+b.CenteringBenefit, b.TotalBenefit, 1e-9)
}

func TestNetRewardIdentity(t *testing.T) {
	r := newTestRewardEstimator()
	pre := centeredSnapshot()
	pre.LowerTick, pre.UpperTick = 600, 1200
	post := centeredSnapshot()

	out := r.NetReward(pre, post, testPool(), 0.03, 24)
	assert.Equal(t, out.Benefit.TotalBenefit-out.Cost.TotalCost, out.NetReward)
	assert.Equal(t, out.NetReward > 0, out.IsProfitable)
	assert.InDelta(t, out.NetReward/out.PreValue*100, out.ROIPct, 1e-9)
}

func TestHoldRewardNoPriceMove(t *testing.T) {
	h := newTestRewardEstimator().HoldReward(centeredSnapshot(), testPool(), 0, 24)
	assert.InDelta(t, 120, h.FeesEarned, 1e-6)
	assert.InDelta(t, 0, h.ILCost, 1e-12)
	assert.InDelta(t, 120, h.NetReward, 1e-6)
}

func TestShouldRebalanceLosingTrade(t *testing.T) {
	pre := centeredSnapshot()
	pre.CurrentPrice = 0
	post := pre

	v := newTestRewardEstimator().ShouldRebalance(pre, post, testPool(), 0.01)
	assert.False(t, v.ShouldRebalance)
	assert.Equal(t, "Hold: rebalance would lose 0.010000", v.Justification)
}

func TestShouldRebalanceWhenBackInRange(t *testing.T) {
	pre := centeredSnapshot()
	pre.LowerTick, pre.UpperTick = 600, 1200
	post := centeredSnapshot()

	v := newTestRewardEstimator().ShouldRebalance(pre, post, testPool(), 0.03)
	assert.True(t, v.ShouldRebalance)
	assert.Contains(t, v.Justification, "Rebalance: net +")
	assert.InDelta(t, v.Rebalance.NetReward-v.Hold.NetReward, v.Advantage, 1e-12)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, -4, floorDiv(-7, 2))
	assert.Equal(t, 3, floorDiv(7, 2))
	assert.Equal(t, -3, floorDiv(-6, 2))
}
