/*

This file contains the risk scoring types and the configurable parameters for the decision engine.

*/

package types

import "time"

// EngineParameters holds every tunable threshold, weight and default used by the
// decision pipeline. A single value is passed to each component at construction.
type EngineParameters struct {
	// --- Canonicalisation ---
	MinPoolLiquidity     float64 `json:"min_pool_liquidity" yaml:"min_pool_liquidity"`         // Floor applied to the reported pool liquidity.
	DefaultPoolLiquidity float64 `json:"default_pool_liquidity" yaml:"default_pool_liquidity"` // Used when the snapshot carries no pool liquidity.
	DefaultGasGwei       float64 `json:"default_gas_gwei" yaml:"default_gas_gwei"`             // Substituted for missing or non-finite gas prices.
	EthPriceUSD          float64 `json:"eth_price_usd" yaml:"eth_price_usd"`                   // Fallback ETH/USD rate for usd denominated snapshots, 0 = none.

	// --- Gas ---
	GasLimits       map[Action]uint64 `json:"gas_limits" yaml:"gas_limits"`               // Gas units per action.
	DefaultGasLimit uint64            `json:"default_gas_limit" yaml:"default_gas_limit"` // Gas units for an action missing from GasLimits.
	MaxGasCostEth   float64           `json:"max_gas_cost_eth" yaml:"max_gas_cost_eth"`   // Upper bound on any single gas cost estimate.

	// --- Features ---
	FeatureClip  float64 `json:"feature_clip" yaml:"feature_clip"`     // Every slot is clipped to [-FeatureClip, FeatureClip].
	MinTickRange float64 `json:"min_tick_range" yaml:"min_tick_range"` // Denominator floor for tick range ratios.

	// --- Policy ---
	BaseThresholdPct      float64 `json:"base_threshold_pct" yaml:"base_threshold_pct"`             // Starting point of the dynamic threshold when the snapshot gives none.
	PolicyMaxGasGwei      float64 `json:"policy_max_gas_gwei" yaml:"policy_max_gas_gwei"`           // Policy holds above this gas price.
	HeuristicMaxGasGwei   float64 `json:"heuristic_max_gas_gwei" yaml:"heuristic_max_gas_gwei"`     // Heuristic predicts a pure gas loss above this gas price.
	MaxGasCostPct         float64 `json:"max_gas_cost_pct" yaml:"max_gas_cost_pct"`                 // Gas as a percentage of position value that is never worth paying.
	HighImpactMinValueEth float64 `json:"high_impact_min_value_eth" yaml:"high_impact_min_value_eth"` // Smaller positions hold when price impact is high.
	TickSpacing           int     `json:"tick_spacing" yaml:"tick_spacing"`                         // Grid new bounds are snapped to.
	ReducePercentage      float64 `json:"reduce_percentage" yaml:"reduce_percentage"`               // Fraction withdrawn by a reduce action.

	// --- Safety gate ---
	SafetyMaxGasGwei      float64 `json:"safety_max_gas_gwei" yaml:"safety_max_gas_gwei"`           // Hard ceiling on gas price for any executed action.
	SafetyMaxGasEth       float64 `json:"safety_max_gas_eth" yaml:"safety_max_gas_eth"`             // Hard ceiling on the gas cost of any executed action.
	HighRiskMinConfidence float64 `json:"high_risk_min_confidence" yaml:"high_risk_min_confidence"` // High risk actions need at least this confidence.
	SafetyBlockPenalty    float64 `json:"safety_block_penalty" yaml:"safety_block_penalty"`         // Confidence removed from a blocked decision.
	MinConfidence         float64 `json:"min_confidence" yaml:"min_confidence"`                     // Lowest confidence the engine ever reports.

	// --- History ---
	HistoryCapacity     int     `json:"history_capacity" yaml:"history_capacity"`           // Decisions retained in memory.
	RecentActionsWindow int     `json:"recent_actions_window" yaml:"recent_actions_window"` // Window inspected for repeated identical actions.
	RepeatDampening     float64 `json:"repeat_dampening" yaml:"repeat_dampening"`           // Confidence multiplier when the window is uniform.

	// --- Reward estimation ---
	DefaultSlippageBps   float64 `json:"default_slippage_bps" yaml:"default_slippage_bps"`     // Slippage charged on each leg of a rebalance.
	MinROIPct            float64 `json:"min_roi_pct" yaml:"min_roi_pct"`                       // Rebalances below this ROI are not worth the execution risk.
	ForecastHours        float64 `json:"forecast_hours" yaml:"forecast_hours"`                 // Horizon for fee yield forecasts.
	DefaultFeeTier       int     `json:"default_fee_tier" yaml:"default_fee_tier"`             // Fee tier assumed when the snapshot carries no pool state.
	ActiveLiquidityRatio float64 `json:"active_liquidity_ratio" yaml:"active_liquidity_ratio"` // Share of TVL assumed active around the current tick.

	// --- Estimator ---
	EstimatorTimeout   time.Duration `json:"estimator_timeout" yaml:"estimator_timeout"`     // Budget for a single prediction.
	MinTrainingSamples int           `json:"min_training_samples" yaml:"min_training_samples"` // Records required before a dataset is considered trainable.
}

// GasLimit returns the gas units charged for an action.
func (p EngineParameters) GasLimit(a Action) uint64 {
	if limit, ok := p.GasLimits[a]; ok {
		return limit
	}
	return p.DefaultGasLimit
}

// RiskComponents are the individual sub-risks, each in [0,1].
type RiskComponents struct {
	Volatility float64 `json:"volatility"`
	Deviation  float64 `json:"deviation"`
	Range      float64 `json:"range"`
	IL         float64 `json:"il"`
	Gas        float64 `json:"gas"`
	Bounds     float64 `json:"bounds"`
}

type RiskAssessment struct {
	Level      RiskLevel      `json:"level"`
	Score      float64        `json:"score"`
	Components RiskComponents `json:"components"`
}
