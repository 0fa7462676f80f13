/*

This file contains the tick / price conversions of a concentrated liquidity pool.

*/

package analyzer

import "math"

const (
	MinTick = -887272
	MaxTick = 887272

	tickBase = 1.0001
)

var logTickBase = math.Log(tickBase)

// ClampTick bounds a tick to the pool's valid range.
func ClampTick(tick int) int {
	if tick < MinTick {
		return MinTick
	}
	if tick > MaxTick {
		return MaxTick
	}
	return tick
}

// TickToPrice returns 1.0001^tick with the tick clamped to the valid range.
func TickToPrice(tick int) float64 {
	return math.Pow(tickBase, float64(ClampTick(tick)))
}

// PriceToTick returns floor(log_1.0001(price)), clamped. Non-positive or non-finite prices map to tick 0.
func PriceToTick(price float64) int {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	t := math.Floor(math.Log(price) / logTickBase)
	if t < MinTick {
		return MinTick
	}
	if t > MaxTick {
		return MaxTick
	}
	return int(t)
}

// TickToSqrtPrice returns 1.0001^(tick/2).
func TickToSqrtPrice(tick int) float64 {
	return math.Pow(tickBase, float64(ClampTick(tick))/2.0)
}

// PctToTicks converts a relative price move (0.05 = 5%) into a tick distance.
func PctToTicks(pct float64) int {
	if pct <= 0 || math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return int(math.Round(math.Log1p(pct) / logTickBase))
}

// SnapTickDown rounds tick down to the nearest multiple of spacing.
func SnapTickDown(tick, spacing int) int {
	if spacing <= 1 {
		return tick
	}
	return int(math.Floor(float64(tick)/float64(spacing))) * spacing
}

// SnapTickUp rounds tick up to the nearest multiple of spacing.
func SnapTickUp(tick, spacing int) int {
	if spacing <= 1 {
		return tick
	}
	return int(math.Ceil(float64(tick)/float64(spacing))) * spacing
}
