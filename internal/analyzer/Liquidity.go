package analyzer

import "math"

// AmountsForLiquidity returns the token0 / token1 amounts backing liquidity L at the given
// sqrt prices. Invalid ranges yield (0, 0).
func AmountsForLiquidity(liquidity, sqrtCurrent, sqrtLower, sqrtUpper float64) (float64, float64) {
	if liquidity <= 0 || sqrtLower <= 0 || sqrtUpper <= 0 || sqrtUpper <= sqrtLower {
		return 0, 0
	}
	if !isFinite(liquidity) || !isFinite(sqrtCurrent) || !isFinite(sqrtLower) || !isFinite(sqrtUpper) {
		return 0, 0
	}

	var amount0, amount1 float64
	switch {
	case sqrtCurrent <= sqrtLower:
		// below range: all token0
		amount0 = liquidity * (1/sqrtLower - 1/sqrtUpper)
	case sqrtCurrent >= sqrtUpper:
		// above range: all token1
		amount1 = liquidity * (sqrtUpper - sqrtLower)
	default:
		amount0 = liquidity * (1/sqrtCurrent - 1/sqrtUpper)
		amount1 = liquidity * (sqrtCurrent - sqrtLower)
	}
	return nonNegative(amount0), nonNegative(amount1)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNegative(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// safeDiv returns num/den, or def when den is zero or the result is not finite.
func safeDiv(num, den, def float64) float64 {
	if den == 0 {
		return def
	}
	r := num / den
	if !isFinite(r) {
		return def
	}
	return r
}
