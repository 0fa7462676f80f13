/*

This file contains the decision policy that turns a predicted reward, its confidence and the
assessed risk into an action.

The rules are evaluated in order and each one alone is sufficient for a rebalance. The first
rule (confidence above 0.7) subsumes the second; both are kept so that tightening the first
threshold does not silently change the others.

*/

package policy

import (
	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	volatilityThresholdWeight = 5.0
	gasThresholdDivisor       = 1000.0

	confidentRebalance   = 0.70
	thresholdConfidence  = 0.75
	strongConfidence     = 0.80
	strongRewardMin      = 0.05
	outOfRangeConfidence = 0.50
	outOfRangeRewardMin  = 0.01
)

type Policy struct {
	params types.EngineParameters
	log    zerolog.Logger
}

func NewPolicy(params types.EngineParameters, logger zerolog.Logger) *Policy {
	return &Policy{
		params: params,
		log:    logger.With().Str("component", "policy").Logger(),
	}
}

// DynamicThresholdPct raises the base threshold with volatility and gas price.
func (p *Policy) DynamicThresholdPct(s types.CanonicalState) float64 {
	base := s.ThresholdPct
	if base <= 0 {
		base = p.params.BaseThresholdPct
	}
	return base + s.Volatility24h*volatilityThresholdWeight + s.GasGwei/gasThresholdDivisor
}

// DetermineAction returns hold or rebalance. Reduce and close are never chosen here.
func (p *Policy) DetermineAction(reward, confidence float64, risk types.RiskLevel, s types.CanonicalState) types.Action {
	threshold := p.DynamicThresholdPct(s)

	// ===== FAST REJECTS =====
	if s.GasGwei > p.params.PolicyMaxGasGwei {
		p.log.Debug().Float64("gasGwei", s.GasGwei).Msg("Hold: gas price above policy ceiling")
		return types.ActionHold
	}
	gasEth := analyzer.GasCostEth(s.GasGwei, types.ActionRebalance, p.params)
	if s.PositionValueEth > 0 && gasEth/s.PositionValueEth*100 > p.params.MaxGasCostPct {
		p.log.Debug().Float64("gasEth", gasEth).Float64("valueEth", s.PositionValueEth).Msg("Hold: gas too large relative to position")
		return types.ActionHold
	}
	if s.HighPriceImpact() && s.PositionValueEth < p.params.HighImpactMinValueEth {
		p.log.Debug().Str("priceImpact", s.PriceImpact).Msg("Hold: high price impact on a small position")
		return types.ActionHold
	}

	// ===== REBALANCE RULES =====
	switch {
	case confidence > confidentRebalance:
	case confidence > thresholdConfidence && reward > threshold/100:
	case confidence > strongConfidence && reward > strongRewardMin && risk != types.RiskHigh:
	case !s.InRange && confidence > outOfRangeConfidence && reward > outOfRangeRewardMin:
	default:
		return types.ActionHold
	}

	p.log.Debug().
		Float64("reward", reward).
		Float64("confidence", confidence).
		Float64("thresholdPct", threshold).
		Msg("Rebalance rule matched")
	return types.ActionRebalance
}
