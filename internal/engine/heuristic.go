package engine

import (
	"math"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	outOfBoundsBenefitShare = 0.8
	outOfRangeBenefitShare  = 0.5
	ilPenaltyShare          = 0.5

	highImpactReward     = -0.01
	highImpactConfidence = 0.7
	gasGuardConfidence   = 0.9

	highVolatility       = 0.5
	highVolDampening     = 0.4
	highVolMultiplier    = 0.6
	elevatedVolatility   = 0.35
	elevatedVolDampening = 0.7
	elevatedVolMultplier = 0.8

	signalScalePct       = 10.0
	outOfBoundsSignalMul = 1.4
	minHeuristicConf     = 0.05
	maxHeuristicConf     = 0.9
)

// heuristic estimates the reward of a rebalance (as a fraction of position value) and a
// confidence without a trained estimator.
func (e *Engine) heuristic(c types.CanonicalState) (float64, float64) {
	gasEth := analyzer.GasCostEth(c.GasGwei, types.ActionRebalance, e.params)
	gasPct := analyzer.GasCostPct(gasEth, c.PositionValueEth)

	// ===== GUARDS =====
	if c.GasGwei > e.params.HeuristicMaxGasGwei || gasPct > e.params.MaxGasCostPct {
		if math.IsInf(gasPct, 1) {
			return -1, gasGuardConfidence
		}
		return -gasPct / 100, gasGuardConfidence
	}
	if c.HighPriceImpact() {
		return highImpactReward, highImpactConfidence
	}

	// ===== BENEFIT =====
	var benefit float64
	switch {
	case c.OutOfBounds():
		benefit = analyzer.CurrentDeviationPct(c) * outOfBoundsBenefitShare
	case !c.InRange:
		if mid := c.Position.Midpoint(); mid != 0 {
			benefit = math.Abs(float64(c.CurrentTick)-mid) / math.Abs(mid) * 100 * outOfRangeBenefitShare
		}
	}

	var feeBenefit float64
	if balances := c.Position.Token0Balance + c.Position.Token1Balance; balances > 0 && c.PoolLiquidity > 0 {
		feeRate := (c.Position.FeesEarned0 + c.Position.FeesEarned1) / balances
		feeBenefit = feeRate * (c.Volume24h / c.PoolLiquidity) * 100
	}

	ilCost := analyzer.PriceILFactor(c) * 100 * ilPenaltyShare
	pct := benefit + feeBenefit - ilCost - gasPct

	// ===== VOLATILITY DAMPENING =====
	multiplier := 1.0
	switch {
	case c.Volatility24h >= highVolatility:
		pct *= highVolDampening
		multiplier = highVolMultiplier
	case c.Volatility24h >= elevatedVolatility:
		pct *= elevatedVolDampening
		multiplier = elevatedVolMultplier
	}

	signal := math.Min(math.Abs(pct)/signalScalePct, 1)
	if c.OutOfBounds() {
		signal = math.Min(signal*outOfBoundsSignalMul, 1)
	}
	confidence := clamp(signal*multiplier, minHeuristicConf, maxHeuristicConf)

	if !isFinite(pct) {
		return 0, minHeuristicConf
	}
	return pct / 100, confidence
}
