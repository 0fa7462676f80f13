package policy

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/config"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

func newTestGate() *SafetyGate {
	return NewSafetyGate(config.DefaultEngineParameters(), zerolog.Nop())
}

func rebalanceDecision() types.Decision {
	lower, upper := -600, 600
	return types.Decision{
		Action:            types.ActionRebalance,
		Confidence:        0.85,
		Reason:            types.ReasonHeuristic,
		RiskLevel:         types.RiskLow,
		RecommendedParams: &types.RecommendedParams{NewLowerTick: &lower, NewUpperTick: &upper},
	}
}

func TestSafetyGatePasses(t *testing.T) {
	d := rebalanceDecision()
	reasons := newTestGate().Apply(&d, baseState())

	assert.Nil(t, reasons)
	assert.Equal(t, types.ActionRebalance, d.Action)
	assert.Equal(t, 0.85, d.Confidence)
}

func TestSafetyGateBlocksExtremeGas(t *testing.T) {
	s := baseState()
	s.GasGwei = 1000

	d := rebalanceDecision()
	reasons := newTestGate().Apply(&d, s)

	require.NotEmpty(t, reasons)
	assert.Contains(t, reasons, "gas_price_gwei_too_high:1000.0")
	assert.Equal(t, types.ActionHold, d.Action)
	assert.Equal(t, types.ReasonHeuristic+types.SafetyBlockedSuffix, d.Reason)
	assert.InDelta(t, 0.65, d.Confidence, 1e-12)
	assert.Nil(t, d.RecommendedParams)
	assert.Equal(t, reasons, d.Metadata["safety_block_reasons"])
}

func TestSafetyGateVetsHolds(t *testing.T) {
	s := baseState()
	hold := types.Decision{Action: types.ActionHold, Confidence: 0.5, Reason: types.ReasonHeuristic, RiskLevel: types.RiskLow}
	assert.Empty(t, newTestGate().Check(hold, s), "holds cost no gas")

	s.GasGwei = 1000
	reasons := newTestGate().Apply(&hold, s)
	assert.Equal(t, []string{"gas_price_gwei_too_high:1000.0"}, reasons)
	assert.Equal(t, types.ActionHold, hold.Action)
	assert.Equal(t, types.ReasonHeuristic+types.SafetyBlockedSuffix, hold.Reason)
}

func TestSafetyGateValueChecks(t *testing.T) {
	s := baseState()
	s.PositionValueEth = 0

	reasons := newTestGate().Check(rebalanceDecision(), s)
	assert.Contains(t, reasons, BlockNoPositionValue)
	assert.Len(t, reasons, 2, "zero value also fails the gas percentage check")

	s.PositionValueEth = 0.1
	reasons = newTestGate().Check(rebalanceDecision(), s)
	assert.Equal(t, []string{"gas_cost_pct_too_high:18.000"}, reasons)
}

func TestSafetyGateGasCostCeiling(t *testing.T) {
	s := baseState()
	s.GasGwei = 150 // 600k gas = 0.09 ETH
	s.PositionValueEth = 100

	reasons := newTestGate().Check(rebalanceDecision(), s)
	assert.Equal(t, []string{"gas_cost_eth_too_high:0.090000"}, reasons)
}

func TestSafetyGateHighRiskNeedsConfidence(t *testing.T) {
	d := rebalanceDecision()
	d.RiskLevel = types.RiskHigh
	d.Confidence = 0.75

	reasons := newTestGate().Apply(&d, baseState())
	assert.Equal(t, []string{"high_risk_low_confidence:0.750"}, reasons)
	assert.InDelta(t, 0.55, d.Confidence, 1e-12)
}

func TestSafetyGatePenaltyFloor(t *testing.T) {
	s := baseState()
	s.GasGwei = 500

	d := rebalanceDecision()
	d.Confidence = 0.1
	newTestGate().Apply(&d, s)
	assert.Equal(t, 0.05, d.Confidence)
}
