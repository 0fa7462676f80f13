/*

This file contains the default parameters for the decision engine.

The values mirror the production deployment: a mainnet pool with ETH denominated
positions, a 60 tick spacing grid, and gas prices that routinely swing between 10 and 300 gwei.

*/

package config

import (
	"time"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// DefaultEngineParameters returns a fresh copy of the baseline parameters.
func DefaultEngineParameters() types.EngineParameters {
	return types.EngineParameters{
		// --- Canonicalisation ---
		MinPoolLiquidity:     1000,
		DefaultPoolLiquidity: 1_000_000,
		DefaultGasGwei:       50,
		// Rationale: 50 gwei is a conservative mainnet median; a missing gas price should
		// never make a rebalance look cheaper than it is.
		EthPriceUSD: 0,

		// --- Gas ---
		GasLimits: map[types.Action]uint64{
			types.ActionRebalance: 600_000, // burn + collect + mint
			types.ActionReduce:    400_000,
			types.ActionClose:     500_000,
			types.ActionHold:      0,
		},
		DefaultGasLimit: 500_000,
		MaxGasCostEth:   0.5,

		// --- Features ---
		FeatureClip:  10,
		MinTickRange: 1,

		// --- Policy ---
		BaseThresholdPct:    3.0,
		PolicyMaxGasGwei:    120,
		HeuristicMaxGasGwei: 150,
		MaxGasCostPct:       12.5,
		// Rationale: paying more than 1/8 of the position in gas cannot be recovered by a
		// single day of fees in any tier.
		HighImpactMinValueEth: 5,
		TickSpacing:           60,
		ReducePercentage:      0.5,

		// --- Safety gate ---
		SafetyMaxGasGwei: 200,
		SafetyMaxGasEth:  0.05,
		// Rationale: a 600k gas rebalance at 50 gwei costs 0.03 ETH; the ceiling sits above
		// that so ordinary rebalances pass and only congested blocks are vetoed.
		HighRiskMinConfidence: 0.8,
		SafetyBlockPenalty:    0.2,
		MinConfidence:         0.05,

		// --- History ---
		HistoryCapacity:     5000,
		RecentActionsWindow: 20,
		RepeatDampening:     0.7,

		// --- Reward estimation ---
		DefaultSlippageBps:   30,
		MinROIPct:            0.1,
		ForecastHours:        24,
		DefaultFeeTier:       types.FeeTierMedium,
		ActiveLiquidityRatio: 0.3,

		// --- Estimator ---
		EstimatorTimeout:   250 * time.Millisecond,
		MinTrainingSamples: 50,
	}
}
