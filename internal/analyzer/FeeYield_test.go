package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

func centeredSnapshot() types.PositionSnapshot {
	return types.PositionSnapshot{
		LowerTick:     -600,
		UpperTick:     600,
		Token0Balance: 10,
		Token1Balance: 10,
		CurrentTick:   0,
		CurrentPrice:  1,
	}
}

func testPool() types.PoolState {
	return types.PoolState{
		FeeTier:              types.FeeTierMedium,
		Volume24h:            100_000,
		TVL:                  1000,
		ActiveLiquidityRatio: 0.5,
	}
}

func TestPositionValue(t *testing.T) {
	p := types.PositionSnapshot{Token0Balance: 2, Token1Balance: 100, Fees0: 0.1, Fees1: 5, CurrentPrice: 50}
	assert.InDelta(t, 210, PositionValue(p, true), 1e-9)
	assert.InDelta(t, 4.2, PositionValue(p, false), 1e-9)

	p.CurrentPrice = 0
	assert.Zero(t, PositionValue(p, true))
}

func TestEstimateFeeYieldInRange(t *testing.T) {
	// share 20/500, bonus capped at 10, daily fees 300
	assert.InDelta(t, 120, EstimateFeeYield(centeredSnapshot(), testPool(), 24), 1e-6)
	assert.InDelta(t, 60, EstimateFeeYield(centeredSnapshot(), testPool(), 12), 1e-6)
}

func TestEstimateFeeYieldZeroCases(t *testing.T) {
	out := centeredSnapshot()
	out.CurrentTick = 1200
	assert.Zero(t, EstimateFeeYield(out, testPool(), 24))

	pool := testPool()
	pool.TVL = 0
	assert.Zero(t, EstimateFeeYield(centeredSnapshot(), pool, 24))

	pool = testPool()
	pool.Volume24h = 0
	assert.Zero(t, EstimateFeeYield(centeredSnapshot(), pool, 24))
}

func TestGasCostEth(t *testing.T) {
	params := testParams()
	assert.InDelta(t, 0.03, GasCostEth(50, types.ActionRebalance, params), 1e-12)
	assert.InDelta(t, 0.0006, GasCostEth(0.1, types.ActionRebalance, params), 1e-12)
	assert.Equal(t, params.MaxGasCostEth, GasCostEth(1e6, types.ActionRebalance, params))
	assert.Zero(t, GasCostEth(50, types.ActionHold, params))
}

func TestGasCostPct(t *testing.T) {
	assert.InDelta(t, 3.0, GasCostPct(0.03, 1), 1e-12)
	assert.True(t, GasCostPct(0.03, 0) > 1e300)
}

func TestMeanStdDev(t *testing.T) {
	mean, std, err := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.NoError(t, err)
	assert.InDelta(t, 5, mean, 1e-12)
	assert.InDelta(t, 2, std, 1e-12)

	_, _, err = MeanStdDev(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 3.0, Quantile(sorted, 0.5))
	assert.Equal(t, 5.0, Quantile(sorted, 1))
	assert.Zero(t, Quantile(nil, 0.5))
}
