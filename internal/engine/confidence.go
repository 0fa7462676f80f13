package engine

import (
	"math"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	maxVolatilityPenalty = 0.6
	rewardScale          = 0.05
	smallRewardCutoff    = 0.01
	smallRewardFactor    = 0.3
	minEstimatorConf     = 0.05
	maxEstimatorConf     = 0.95
)

// confidence calibrates an estimator prediction: high uncertainty, high volatility and
// small rewards all lower it.
func (e *Engine) confidence(reward, uncertainty float64, c types.CanonicalState) float64 {
	if !isFinite(uncertainty) || uncertainty < 0 {
		uncertainty = 1
	}
	uncertaintyFactor := 1 / (1 + uncertainty)

	volFactor := 1 - math.Min(math.Max(c.Volatility24h, 0), maxVolatilityPenalty)

	rewardFactor := smallRewardFactor
	if math.Abs(reward) > smallRewardCutoff {
		rewardFactor = math.Min(math.Abs(reward)/rewardScale, 1)
	}

	return clamp(uncertaintyFactor*volFactor*rewardFactor, minEstimatorConf, maxEstimatorConf)
}
