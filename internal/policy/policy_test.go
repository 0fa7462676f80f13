package policy

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/config"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

func newTestPolicy() *Policy {
	return NewPolicy(config.DefaultEngineParameters(), zerolog.Nop())
}

func baseState() types.CanonicalState {
	return types.CanonicalState{
		CurrentPrice:     1850,
		Twap24h:          1845,
		GasGwei:          30,
		InRange:          true,
		CurrentTick:      0,
		PositionValueEth: 10,
		Position:         types.Position{LowerTick: -600, UpperTick: 600},
	}
}

func TestDynamicThreshold(t *testing.T) {
	p := newTestPolicy()
	s := baseState()
	s.Volatility24h = 0.2
	assert.InDelta(t, 3+1+0.03, p.DynamicThresholdPct(s), 1e-12)

	s.ThresholdPct = 8
	assert.InDelta(t, 8+1+0.03, p.DynamicThresholdPct(s), 1e-12)
}

func TestDetermineActionFastRejects(t *testing.T) {
	p := newTestPolicy()

	s := baseState()
	s.GasGwei = 121
	assert.Equal(t, types.ActionHold, p.DetermineAction(1, 0.95, types.RiskLow, s))

	s = baseState()
	s.PositionValueEth = 0.1 // 0.018 ETH of gas is 18% of value
	assert.Equal(t, types.ActionHold, p.DetermineAction(1, 0.95, types.RiskLow, s))

	s = baseState()
	s.PriceImpact = types.PriceImpactVeryHigh
	s.PositionValueEth = 4
	assert.Equal(t, types.ActionHold, p.DetermineAction(1, 0.95, types.RiskLow, s))

	s.PositionValueEth = 6
	assert.Equal(t, types.ActionRebalance, p.DetermineAction(1, 0.95, types.RiskLow, s))
}

func TestDetermineActionRules(t *testing.T) {
	p := newTestPolicy()
	s := baseState()

	assert.Equal(t, types.ActionRebalance, p.DetermineAction(-0.5, 0.71, types.RiskHigh, s), "confidence alone is sufficient")
	assert.Equal(t, types.ActionHold, p.DetermineAction(0.5, 0.7, types.RiskLow, s))
	assert.Equal(t, types.ActionHold, p.DetermineAction(0.02, 0.6, types.RiskLow, s))

	s.InRange = false
	assert.Equal(t, types.ActionRebalance, p.DetermineAction(0.02, 0.6, types.RiskLow, s))
	assert.Equal(t, types.ActionHold, p.DetermineAction(0.005, 0.6, types.RiskLow, s))
	assert.Equal(t, types.ActionHold, p.DetermineAction(0.02, 0.5, types.RiskLow, s))
}

func TestBuildParamsRebalance(t *testing.T) {
	p := newTestPolicy()
	s := baseState()
	s.Volatility24h = 0.2
	s.CurrentTick = 1000

	params := p.BuildParams(types.ActionRebalance, s)
	require.NotNil(t, params)
	require.NotNil(t, params.NewLowerTick)
	require.NotNil(t, params.NewUpperTick)

	assert.InDelta(t, 6.0, params.RangePercentage, 1e-12)
	assert.Equal(t, "rebalance_±6.0%", params.Reason)
	assert.Equal(t, 1000, *params.CurrentTick)
	assert.Zero(t, *params.NewLowerTick%60)
	assert.Zero(t, *params.NewUpperTick%60)
	assert.Less(t, *params.NewLowerTick, 1000)
	assert.Greater(t, *params.NewUpperTick, 1000)
	// ln(1.06)/ln(1.0001) ~ 583 ticks each side
	assert.Equal(t, 360, *params.NewLowerTick)
	assert.Equal(t, 1620, *params.NewUpperTick)
}

func TestBuildParamsDefaultsVolatility(t *testing.T) {
	params := newTestPolicy().BuildParams(types.ActionRebalance, baseState())
	require.NotNil(t, params)
	assert.InDelta(t, 6.5, params.RangePercentage, 1e-12)
}

func TestBuildParamsOtherActions(t *testing.T) {
	p := newTestPolicy()
	assert.Nil(t, p.BuildParams(types.ActionHold, baseState()))

	reduce := p.BuildParams(types.ActionReduce, baseState())
	require.NotNil(t, reduce)
	assert.Equal(t, 0.5, reduce.ReducePercentage)
	assert.Equal(t, "risk_mitigation", reduce.Reason)

	closeParams := p.BuildParams(types.ActionClose, baseState())
	require.NotNil(t, closeParams)
	assert.True(t, closeParams.CloseFullPosition)
	assert.Equal(t, "high_risk_exit", closeParams.Reason)
}
