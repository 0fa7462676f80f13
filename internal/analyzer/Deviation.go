package analyzer

import (
	"math"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// DeviationFraction is |current - reference| / |reference|, 0 for a zero or non-finite reference.
func DeviationFraction(current, reference float64) float64 {
	if reference == 0 || !isFinite(reference) || !isFinite(current) {
		return 0
	}
	return nonNegative(math.Abs(current-reference) / math.Abs(reference))
}

// DeviationPct is DeviationFraction in percent.
func DeviationPct(current, reference float64) float64 {
	return DeviationFraction(current, reference) * 100
}

// IsWithinBounds reports deviationPct <= thresholdPct; non-finite inputs are out of bounds.
func IsWithinBounds(deviationPct, thresholdPct float64) bool {
	if !isFinite(deviationPct) || !isFinite(thresholdPct) {
		return false
	}
	return deviationPct <= thresholdPct
}

// CurrentDeviationPct is the explicit deviation override when present, else the deviation of
// the current price from the 24h TWAP.
func CurrentDeviationPct(s types.CanonicalState) float64 {
	if s.DeviationPct > 0 {
		return s.DeviationPct
	}
	return DeviationPct(s.CurrentPrice, s.Twap24h)
}

// PriceILFactor is the impermanent loss factor of the current price against the 24h TWAP.
func PriceILFactor(s types.CanonicalState) float64 {
	return ILFactor(safeDiv(s.CurrentPrice, s.Twap24h, 1))
}
