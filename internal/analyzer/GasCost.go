package analyzer

import (
	"math"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const weiPerGwei = 1e9

// GasCostEth is the ETH cost of executing action at gasGwei, floored at 1 gwei and capped at
// the configured maximum.
func GasCostEth(gasGwei float64, action types.Action, params types.EngineParameters) float64 {
	if !isFinite(gasGwei) {
		gasGwei = params.DefaultGasGwei
	}
	cost := math.Max(1, gasGwei) * float64(params.GasLimit(action)) / weiPerGwei
	if params.MaxGasCostEth > 0 {
		cost = math.Min(cost, params.MaxGasCostEth)
	}
	return nonNegative(cost)
}

// GasCostPct is GasCostEth as a percentage of valueEth; +Inf when the position has no value.
func GasCostPct(gasEth, valueEth float64) float64 {
	if valueEth <= 0 || !isFinite(valueEth) {
		return math.Inf(1)
	}
	return gasEth / valueEth * 100
}
