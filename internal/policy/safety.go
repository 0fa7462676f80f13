/*

This file contains the safety gate, the last veto before a decision is returned.

The gate is independent of the policy: it only looks at absolute gas and value bounds and at
the risk / confidence pair, so a policy bug cannot push an expensive action through.

*/

package policy

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// Block reason prefixes.
const (
	BlockGasPriceTooHigh   = "gas_price_gwei_too_high"
	BlockNoPositionValue   = "position_value_zero_or_missing"
	BlockGasCostTooHigh    = "gas_cost_eth_too_high"
	BlockGasCostPctTooHigh = "gas_cost_pct_too_high"
	BlockHighRiskLowConf   = "high_risk_low_confidence"
)

type SafetyGate struct {
	params types.EngineParameters
	log    zerolog.Logger
}

func NewSafetyGate(params types.EngineParameters, logger zerolog.Logger) *SafetyGate {
	return &SafetyGate{
		params: params,
		log:    logger.With().Str("component", "safety").Logger(),
	}
}

// Check returns every reason d must not be executed, or nil when it passes. The gas checks
// charge the gas limit of d's own action.
func (g *SafetyGate) Check(d types.Decision, s types.CanonicalState) []string {
	var reasons []string

	if s.GasGwei > g.params.SafetyMaxGasGwei {
		reasons = append(reasons, fmt.Sprintf("%s:%.1f", BlockGasPriceTooHigh, s.GasGwei))
	}

	value := s.PositionValueEth
	if value <= 0 || math.IsNaN(value) {
		reasons = append(reasons, BlockNoPositionValue)
	}

	gasEth := analyzer.GasCostEth(s.GasGwei, d.Action, g.params)
	if gasEth > g.params.SafetyMaxGasEth {
		reasons = append(reasons, fmt.Sprintf("%s:%.6f", BlockGasCostTooHigh, gasEth))
	}

	if pct := analyzer.GasCostPct(gasEth, value); pct > g.params.MaxGasCostPct {
		reasons = append(reasons, fmt.Sprintf("%s:%.3f", BlockGasCostPctTooHigh, pct))
	}

	if d.RiskLevel == types.RiskHigh && d.Confidence < g.params.HighRiskMinConfidence {
		reasons = append(reasons, fmt.Sprintf("%s:%.3f", BlockHighRiskLowConf, d.Confidence))
	}

	return reasons
}

// Apply vetoes d in place when Check fails: the action becomes hold, the reason is suffixed
// and the confidence penalised. Returns the block reasons, nil when d passed.
func (g *SafetyGate) Apply(d *types.Decision, s types.CanonicalState) []string {
	reasons := g.Check(*d, s)
	if len(reasons) == 0 {
		g.log.Debug().Str("action", string(d.Action)).Msg("All safety checks passed")
		return nil
	}

	g.log.Warn().
		Str("action", string(d.Action)).
		Str("reasons", strings.Join(reasons, "; ")).
		Msg("Execution blocked")

	d.Action = types.ActionHold
	d.RecommendedParams = nil
	d.Reason += types.SafetyBlockedSuffix
	d.Confidence = math.Max(g.params.MinConfidence, d.Confidence-g.params.SafetyBlockPenalty)
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
	d.Metadata["safety_block_reasons"] = reasons
	return reasons
}
