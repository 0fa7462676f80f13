/*

This file contains the rebalance cost / benefit accounting.

A rebalance pays gas, slippage on both legs and crystallises the impermanent loss accrued
since the position was opened. It earns the difference in forecast fee yield, a bonus for
bringing an out of range position back in range, and a small credit for re-centering.

*/

package analyzer

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	bpsDenominator        = 10_000.0
	rangeImprovementShare = 0.5   // half a day of post rebalance fees
	centeringFactor       = 0.001 // credit per unit of relative centering gain
)

// RewardEstimator prices rebalances against the hold counterfactual.
type RewardEstimator struct {
	params types.EngineParameters
	log    zerolog.Logger
}

func NewRewardEstimator(params types.EngineParameters, logger zerolog.Logger) *RewardEstimator {
	return &RewardEstimator{
		params: params,
		log:    logger.With().Str("component", "reward").Logger(),
	}
}

// RebalanceCost returns the cost of closing pre and reopening. slippageBps <= 0 uses the
// configured default.
func (r *RewardEstimator) RebalanceCost(pre types.PositionSnapshot, gasCostEth, slippageBps float64) types.CostBreakdown {
	gasCostEth = nonNegative(gasCostEth)
	if slippageBps <= 0 {
		slippageBps = r.params.DefaultSlippageBps
	}

	preValue := PositionValue(pre, true)
	if preValue <= 0 {
		return types.CostBreakdown{GasCost: gasCostEth, TotalCost: gasCostEth}
	}

	// remove + add
	slippage := preValue * (slippageBps / bpsDenominator) * 2

	entryPrice := TickToPrice(floorDiv(pre.LowerTick+pre.UpperTick, 2))
	il := ImpermanentLoss(entryPrice, pre.CurrentPrice, pre.LowerTick, pre.UpperTick)
	ilCost := preValue * il

	out := types.CostBreakdown{
		GasCost:        gasCostEth,
		SlippageCost:   nonNegative(slippage),
		ILCrystallized: nonNegative(ilCost),
	}
	out.TotalCost = out.GasCost + out.SlippageCost + out.ILCrystallized
	return out
}

// RebalanceBenefit returns what moving from pre to post earns over hours.
func (r *RewardEstimator) RebalanceBenefit(pre, post types.PositionSnapshot, pool types.PoolState, hours float64) types.BenefitBreakdown {
	preYield := EstimateFeeYield(pre, pool, hours)
	postYield := EstimateFeeYield(post, pool, hours)
	feeImprovement := postYield - preYield

	var rangeImprovement float64
	if !pre.InRange() && post.InRange() {
		rangeImprovement = postYield * rangeImprovementShare
	}

	preDistance := math.Abs(float64(pre.CurrentTick) - float64(pre.LowerTick+pre.UpperTick)/2)
	postDistance := math.Abs(float64(post.CurrentTick) - float64(post.LowerTick+post.UpperTick)/2)

	var centering float64
	if postDistance < preDistance && preDistance > 0 {
		improvement := (preDistance - postDistance) / preDistance
		centering = PositionValue(pre, true) * improvement * centeringFactor
	}

	// a fee regression still offsets the other benefits
	total := feeImprovement + rangeImprovement + centering
	return types.BenefitBreakdown{
		FeeImprovement:   nonNegative(feeImprovement),
		RangeImprovement: nonNegative(rangeImprovement),
		CenteringBenefit: nonNegative(centering),
		TotalBenefit:     nonNegative(total),
	}
}

// NetReward combines cost and benefit. NetReward is exactly TotalBenefit - TotalCost.
func (r *RewardEstimator) NetReward(pre, post types.PositionSnapshot, pool types.PoolState, gasCostEth, hours float64) types.RewardBreakdown {
	if hours <= 0 {
		hours = r.params.ForecastHours
	}
	cost := r.RebalanceCost(pre, gasCostEth, 0)
	benefit := r.RebalanceBenefit(pre, post, pool, hours)

	net := benefit.TotalBenefit - cost.TotalCost
	preValue := PositionValue(pre, true)

	var roi float64
	if preValue > 0 {
		roi = net / preValue * 100
	}

	return types.RewardBreakdown{
		Cost:          cost,
		Benefit:       benefit,
		NetReward:     net,
		ROIPct:        roi,
		IsProfitable:  net > 0,
		PreValue:      preValue,
		PostValue:     PositionValue(post, true),
		ForecastHours: hours,
	}
}

// HoldReward is the outcome of leaving the position alone for hours while the price moves
// by priceChangePct percent.
func (r *RewardEstimator) HoldReward(p types.PositionSnapshot, pool types.PoolState, priceChangePct, hours float64) types.HoldReward {
	fees := EstimateFeeYield(p, pool, hours)

	newPrice := p.CurrentPrice * (1 + priceChangePct/100)
	il := ImpermanentLoss(p.CurrentPrice, newPrice, p.LowerTick, p.UpperTick)

	value := PositionValue(p, true)
	ilCost := value * il
	net := fees - ilCost
	if !isFinite(net) {
		return types.HoldReward{}
	}

	var roi float64
	if value > 0 {
		roi = net / value * 100
	}
	return types.HoldReward{
		FeesEarned: nonNegative(fees),
		ILCost:     nonNegative(ilCost),
		NetReward:  net,
		ROIPct:     roi,
	}
}

// ShouldRebalance compares the rebalance against holding for the forecast horizon with no
// price move. A rebalance must be profitable, clear the minimum ROI and beat holding.
func (r *RewardEstimator) ShouldRebalance(pre, post types.PositionSnapshot, pool types.PoolState, gasCostEth float64) types.RebalanceVerdict {
	rebalance := r.NetReward(pre, post, pool, gasCostEth, r.params.ForecastHours)
	hold := r.HoldReward(pre, pool, 0, r.params.ForecastHours)

	should := rebalance.IsProfitable &&
		rebalance.ROIPct > r.params.MinROIPct &&
		rebalance.NetReward > hold.NetReward

	verdict := types.RebalanceVerdict{
		ShouldRebalance: should,
		Rebalance:       rebalance,
		Hold:            hold,
		Advantage:       rebalance.NetReward - hold.NetReward,
		Justification:   justify(rebalance, hold, should),
	}

	r.log.Debug().
		Bool("shouldRebalance", should).
		Float64("netReward", rebalance.NetReward).
		Float64("roiPct", rebalance.ROIPct).
		Float64("holdNet", hold.NetReward).
		Msg("Rebalance verdict")

	return verdict
}

func justify(rebalance types.RewardBreakdown, hold types.HoldReward, should bool) string {
	switch {
	case should:
		return fmt.Sprintf("Rebalance: net +%.6f (%.2f%% ROI), beats hold by %.6f",
			rebalance.NetReward, rebalance.ROIPct, rebalance.NetReward-hold.NetReward)
	case !rebalance.IsProfitable:
		return fmt.Sprintf("Hold: rebalance would lose %.6f", math.Abs(rebalance.NetReward))
	default:
		return fmt.Sprintf("Hold: marginal gain not worth risk (ROI: %.2f%%)", rebalance.ROIPct)
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
