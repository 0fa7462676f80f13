/*

This file contains the risk assessment of a position in its current market.

The score is a weighted sum of six sub-risks, each normalised to [0,1]:

  - Volatility (25%): 24h volatility, 100% or more is maximal.
  - Deviation (20%): price deviation, 20% or more is maximal.
  - Range (20%): 0.5 when the position is out of range.
  - Impermanent loss (15%): IL factor against the 24h TWAP, 10% or more is maximal.
  - Gas (10%): rebalance gas against 1% of the position value.
  - Bounds (10%): how far the deviation exceeds its threshold, when flagged out of bounds.

*/

package analyzer

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	weightVolatility = 0.25
	weightDeviation  = 0.20
	weightRange      = 0.20
	weightIL         = 0.15
	weightGas        = 0.10
	weightBounds     = 0.10

	maxDeviationPct   = 20.0
	outOfRangeRisk    = 0.5
	maxILFactor       = 0.1
	gasValueShare     = 0.01
	minValueForGasEth = 1e-9

	lowRiskBelow    = 0.3
	mediumRiskBelow = 0.6
)

// RiskAssessor scores canonical market states.
type RiskAssessor struct {
	params types.EngineParameters
	log    zerolog.Logger
}

func NewRiskAssessor(params types.EngineParameters, logger zerolog.Logger) *RiskAssessor {
	return &RiskAssessor{
		params: params,
		log:    logger.With().Str("component", "risk").Logger(),
	}
}

// Assess returns the risk level, the score in [0,1] and its components.
func (r *RiskAssessor) Assess(s types.CanonicalState) types.RiskAssessment {
	var c types.RiskComponents

	c.Volatility = clamp(s.Volatility24h, 0, 1)

	dev := CurrentDeviationPct(s)
	c.Deviation = clamp(dev/maxDeviationPct, 0, 1)

	if !s.InRange {
		c.Range = outOfRangeRisk
	}

	c.IL = clamp(PriceILFactor(s)/maxILFactor, 0, 1)

	gasEth := GasCostEth(s.GasGwei, types.ActionRebalance, r.params)
	value := math.Max(minValueForGasEth, s.PositionValueEth)
	c.Gas = clamp(safeDiv(gasEth, value*gasValueShare, 1), 0, 1)

	if s.ThresholdPct > 0 && s.OutOfBounds() {
		c.Bounds = clamp((dev-s.ThresholdPct)/s.ThresholdPct, 0, 1)
	}

	score := weightVolatility*c.Volatility +
		weightDeviation*c.Deviation +
		weightRange*c.Range +
		weightIL*c.IL +
		weightGas*c.Gas +
		weightBounds*c.Bounds
	score = clamp(score, 0, 1)

	assessment := types.RiskAssessment{
		Level:      RiskLevelFor(score),
		Score:      score,
		Components: c,
	}

	r.log.Debug().
		Str("level", string(assessment.Level)).
		Float64("score", score).
		Float64("volatility", c.Volatility).
		Float64("deviation", c.Deviation).
		Float64("gas", c.Gas).
		Msg("Risk assessed")

	return assessment
}

// RiskLevelFor buckets a score: below 0.3 low, below 0.6 medium, otherwise high.
func RiskLevelFor(score float64) types.RiskLevel {
	switch {
	case score < lowRiskBelow:
		return types.RiskLow
	case score < mediumRiskBelow:
		return types.RiskMedium
	default:
		return types.RiskHigh
	}
}
