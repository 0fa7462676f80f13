package policy

import (
	"fmt"
	"math"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	minRangeVolatility     = 0.1
	defaultRangeVolatility = 0.3
	baseRangePct           = 5.0
)

// BuildParams returns the execution parameters of action, or nil for hold.
func (p *Policy) BuildParams(action types.Action, s types.CanonicalState) *types.RecommendedParams {
	switch action {
	case types.ActionRebalance:
		return p.rebalanceParams(s)
	case types.ActionReduce:
		return &types.RecommendedParams{
			ReducePercentage: p.params.ReducePercentage,
			Reason:           "risk_mitigation",
		}
	case types.ActionClose:
		return &types.RecommendedParams{
			CloseFullPosition: true,
			Reason:            "high_risk_exit",
		}
	default:
		return nil
	}
}

// rebalanceParams centers a new range on the current tick. The half width is (1 + vol) * 5
// percent of price, converted to ticks and snapped outward to the tick spacing.
func (p *Policy) rebalanceParams(s types.CanonicalState) *types.RecommendedParams {
	vol := s.Volatility24h
	if vol <= 0 {
		vol = defaultRangeVolatility
	}
	vol = math.Max(minRangeVolatility, vol)
	rangePct := (1 + vol) * baseRangePct

	halfWidth := analyzer.PctToTicks(rangePct / 100)
	current := s.CurrentTick
	lower := analyzer.ClampTick(analyzer.SnapTickDown(current-halfWidth, p.params.TickSpacing))
	upper := analyzer.ClampTick(analyzer.SnapTickUp(current+halfWidth, p.params.TickSpacing))

	return &types.RecommendedParams{
		NewLowerTick:    &lower,
		NewUpperTick:    &upper,
		RangePercentage: rangePct,
		CurrentTick:     &current,
		Reason:          fmt.Sprintf("rebalance_±%.1f%%", rangePct),
	}
}
