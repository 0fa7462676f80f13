/*

This file contains the cost / benefit accounting types produced by the reward estimator.

*/

package types

type CostBreakdown struct {
	GasCost        float64 `json:"gas_cost"`
	SlippageCost   float64 `json:"slippage_cost"`
	ILCrystallized float64 `json:"il_crystallized"`
	TotalCost      float64 `json:"total_cost"`
}

type BenefitBreakdown struct {
	FeeImprovement   float64 `json:"fee_improvement"`
	RangeImprovement float64 `json:"range_improvement"`
	CenteringBenefit float64 `json:"centering_benefit"`
	TotalBenefit     float64 `json:"total_benefit"`
}

// RewardBreakdown is the net outcome of a rebalance; NetReward is TotalBenefit - TotalCost.
type RewardBreakdown struct {
	Cost          CostBreakdown    `json:"cost"`
	Benefit       BenefitBreakdown `json:"benefit"`
	NetReward     float64          `json:"net_reward"`
	ROIPct        float64          `json:"roi_pct"`
	IsProfitable  bool             `json:"is_profitable"`
	PreValue      float64          `json:"pre_value"`
	PostValue     float64          `json:"post_value"`
	ForecastHours float64          `json:"forecast_hours"`
}

// HoldReward is the counterfactual of leaving the position untouched.
type HoldReward struct {
	FeesEarned float64 `json:"fees_earned"`
	ILCost     float64 `json:"il_cost"`
	NetReward  float64 `json:"net_reward"`
	ROIPct     float64 `json:"roi_pct"`
}

type RebalanceVerdict struct {
	ShouldRebalance bool            `json:"should_rebalance"`
	Rebalance       RewardBreakdown `json:"rebalance"`
	Hold            HoldReward      `json:"hold"`
	Advantage       float64         `json:"advantage"`
	Justification   string          `json:"justification"`
}
