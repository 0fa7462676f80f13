/*

This file contains the impermanent loss formulas for full range and concentrated positions.

*/

package analyzer

import "math"

const (
	minConcentration = 1.0
	maxConcentration = 5.0
	minRangeFactor   = 0.1
)

// ImpermanentLoss returns the loss, as a fraction in [0,1], of a position opened at
// entryPrice over [lowerTick, upperTick] now that the price is currentPrice. Narrow ranges
// amplify the loss by up to 5x. Degenerate inputs yield 0.
func ImpermanentLoss(entryPrice, currentPrice float64, lowerTick, upperTick int) float64 {
	if entryPrice <= 0 || currentPrice <= 0 || !isFinite(entryPrice) || !isFinite(currentPrice) {
		return 0
	}
	if lowerTick >= upperTick {
		return 0
	}

	sqrtEntry := math.Sqrt(entryPrice)
	sqrtCurrent := math.Sqrt(currentPrice)
	sqrtLower := TickToSqrtPrice(lowerTick)
	sqrtUpper := TickToSqrtPrice(upperTick)
	if sqrtUpper <= sqrtLower || sqrtLower <= 0 {
		return 0
	}

	var il float64
	switch {
	case sqrtCurrent <= sqrtLower:
		il = math.Abs(sqrtCurrent/sqrtEntry - 1)
	case sqrtCurrent >= sqrtUpper:
		il = math.Abs(sqrtEntry/sqrtCurrent - 1)
	default:
		valueCurrent := (1/sqrtCurrent - 1/sqrtUpper) + (sqrtCurrent - sqrtLower)
		valueEntry := (1/sqrtEntry - 1/sqrtUpper) + (sqrtEntry - sqrtLower)
		if valueEntry <= 0 {
			return 0
		}
		il = math.Abs(valueCurrent/valueEntry - 1)
	}

	concentration := minConcentration
	if width := sqrtUpper - sqrtLower; width > 0 {
		rangeFactor := width / sqrtEntry
		concentration = clamp(1/math.Max(rangeFactor, minRangeFactor), minConcentration, maxConcentration)
	}

	return clamp(il*concentration, 0, 1)
}

// ILFactor is the full range impermanent loss for a price ratio r: |2*sqrt(r)/(1+r) - 1|.
// Non-positive or non-finite ratios yield 0.
func ILFactor(ratio float64) float64 {
	if ratio <= 0 || !isFinite(ratio) {
		return 0
	}
	f := math.Abs(2*math.Sqrt(ratio)/(1+ratio) - 1)
	if !isFinite(f) {
		return 0
	}
	return f
}
