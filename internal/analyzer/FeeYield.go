/*

This file contains the position valuation and fee yield forecast of a concentrated position.

*/

package analyzer

import (
	"math"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	maxConcentrationBonus = 10.0
	feeTierDenominator    = 1_000_000.0
)

// PositionValue values balances plus uncollected fees. With inToken1 the result is in token1
// units (token0 priced at CurrentPrice), otherwise in token0 units. Non-positive prices yield 0.
func PositionValue(p types.PositionSnapshot, inToken1 bool) float64 {
	price := p.CurrentPrice
	if price <= 0 || !isFinite(price) {
		return 0
	}

	var total float64
	if inToken1 {
		total = p.Token0Balance*price + p.Token1Balance + p.Fees0*price + p.Fees1
	} else {
		total = p.Token0Balance + p.Token1Balance/price + p.Fees0 + p.Fees1/price
	}
	return nonNegative(total)
}

// EstimateFeeYield forecasts the fees, in token1 units, the position collects over hours.
// Out of range positions and pools without TVL or volume earn nothing.
func EstimateFeeYield(p types.PositionSnapshot, pool types.PoolState, hours float64) float64 {
	if !p.InRange() {
		return 0
	}
	if pool.TVL <= 0 || pool.Volume24h <= 0 || p.CurrentPrice <= 0 || hours <= 0 {
		return 0
	}

	value := PositionValue(p, true)
	if value <= 0 {
		return 0
	}

	activeTVL := pool.TVL * pool.ActiveLiquidityRatio
	if activeTVL <= 0 {
		return 0
	}
	share := value / activeTVL

	sqrtLower := TickToSqrtPrice(p.LowerTick)
	sqrtUpper := TickToSqrtPrice(p.UpperTick)
	sqrtCurrent := math.Sqrt(p.CurrentPrice)

	bonus := 1.0
	if width := sqrtUpper - sqrtLower; width > 0 && sqrtCurrent > 0 {
		// 2*sqrt(p) approximates the width of a full range position
		bonus = clamp(2*sqrtCurrent/width, 1, maxConcentrationBonus)
	}

	dailyFees := pool.Volume24h * float64(pool.FeeTier) / feeTierDenominator
	return nonNegative(dailyFees * share * bonus * hours / 24.0)
}
