package utils

import (
	"math"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// Canonicalize resolves a validated snapshot into ETH / gwei units with every optional
// field defaulted. The input is not modified. Returns a *types.ConfigurationError when a
// usd denominated price cannot be converted.
func (c *Converter) Canonicalize(s *types.MarketState) (types.CanonicalState, error) {
	var out types.CanonicalState
	if s == nil || s.Position == nil {
		return out, &types.ValidationError{Field: "position", Reason: "is required"}
	}

	ethUSD := numberOr(s.Extra.EthPriceUSD, 0)

	cur, err := c.ToEth(s.CurrentPrice.Float64(), s.PriceUnit, ethUSD)
	if err != nil {
		return out, err
	}
	twap1h, err := c.priceOr(s.Twap1h.Float64(), s.PriceUnit, ethUSD, cur)
	if err != nil {
		return out, err
	}
	twap24h, err := c.priceOr(s.Twap24h.Float64(), s.PriceUnit, ethUSD, cur)
	if err != nil {
		return out, err
	}
	ref, err := c.priceOr(numberOr(s.Extra.ReferencePrice, 0), s.PriceUnit, ethUSD, twap24h)
	if err != nil {
		return out, err
	}

	pos := *s.Position
	pos.Liquidity = clampNonNegative(pos.Liquidity)
	pos.Token0Balance = clampNonNegative(pos.Token0Balance)
	pos.Token1Balance = clampNonNegative(pos.Token1Balance)
	pos.FeesEarned0 = clampNonNegative(pos.FeesEarned0)
	pos.FeesEarned1 = clampNonNegative(pos.FeesEarned1)
	if pos.AgeSeconds < 0 {
		pos.AgeSeconds = 0
	}

	poolLiquidity := s.PoolLiquidity
	if !IsFinite(poolLiquidity) || poolLiquidity <= 0 {
		poolLiquidity = c.params.DefaultPoolLiquidity
	}
	poolLiquidity = math.Max(poolLiquidity, c.params.MinPoolLiquidity)

	out = types.CanonicalState{
		PoolID:         s.PoolID,
		Timestamp:      s.Time(),
		CurrentPrice:   cur,
		Twap1h:         twap1h,
		Twap24h:        twap24h,
		ReferencePrice: ref,
		Volatility1h:   clampNonNegative(s.Volatility1h),
		Volatility24h:  clampNonNegative(s.Volatility24h),
		PoolLiquidity:  poolLiquidity,
		Volume24h:      clampNonNegative(s.Volume24h),
		GasGwei:        c.ToGwei(s.GasPrice.Float64(), s.GasUnit),
		WithinBounds:   s.WithinBounds,
		PriceImpact:    s.PriceImpact,
		Position:       pos,
	}

	if s.DeviationPct != nil && IsFinite(*s.DeviationPct) && *s.DeviationPct > 0 {
		out.DeviationPct = *s.DeviationPct
	}
	switch {
	case s.ThresholdPct != nil && IsFinite(*s.ThresholdPct) && *s.ThresholdPct > 0:
		out.ThresholdPct = *s.ThresholdPct
	case numberOr(s.Extra.ThresholdPct, 0) > 0:
		out.ThresholdPct = numberOr(s.Extra.ThresholdPct, 0)
	}

	hasTick := s.Extra.CurrentTick != nil && IsFinite(s.Extra.CurrentTick.Float64())
	if hasTick {
		out.CurrentTick = int(math.Round(s.Extra.CurrentTick.Float64()))
		out.TickKnown = true
	}
	switch {
	case s.Extra.InRange != nil:
		out.InRange = *s.Extra.InRange
	case hasTick:
		out.InRange = pos.ContainsTick(out.CurrentTick)
	default:
		out.InRange = true
	}

	value, err := c.PositionValueEth(pos, s, cur)
	if err != nil {
		return out, err
	}
	out.PositionValueEth = value

	out.Pool = c.poolState(s, out.Volume24h)
	return out, nil
}

// PositionValueEth values a position's token balances in ETH. A token's ETH price comes from
// the explicit per-token price, else the current price when the token is flagged as price
// denominated, else the balance is read as already denominated in the snapshot's price unit.
func (c *Converter) PositionValueEth(pos types.Position, s *types.MarketState, currentPriceEth float64) (float64, error) {
	ethUSD := numberOr(s.Extra.EthPriceUSD, 0)

	leg := func(balance float64, explicit *types.Number, priceDenominated bool) (float64, error) {
		if p := numberOr(explicit, 0); p > 0 {
			return balance * p, nil
		}
		if priceDenominated {
			return balance * currentPriceEth, nil
		}
		return c.ToEth(balance, s.PriceUnit, ethUSD)
	}

	v0, err := leg(pos.Token0Balance, s.Extra.Token0PriceEth, s.Extra.Token0IsPriceDenominated)
	if err != nil {
		return 0, err
	}
	v1, err := leg(pos.Token1Balance, s.Extra.Token1PriceEth, s.Extra.Token1IsPriceDenominated)
	if err != nil {
		return 0, err
	}
	return clampNonNegative(v0 + v1), nil
}

func (c *Converter) poolState(s *types.MarketState, volume float64) types.PoolState {
	var pool types.PoolState
	if s.Pool != nil {
		pool = *s.Pool
	}
	if pool.FeeTier <= 0 {
		pool.FeeTier = c.params.DefaultFeeTier
	}
	if pool.Volume24h <= 0 {
		pool.Volume24h = volume
	}
	if pool.ActiveLiquidityRatio <= 0 || pool.ActiveLiquidityRatio > 1 {
		pool.ActiveLiquidityRatio = c.params.ActiveLiquidityRatio
	}
	pool.TVL = clampNonNegative(pool.TVL)
	return pool
}

// priceOr converts raw when it is positive and finite, otherwise returns fallback (already in ETH).
func (c *Converter) priceOr(raw float64, unit types.PriceUnit, ethUSD, fallback float64) (float64, error) {
	if !IsFinite(raw) || raw <= 0 {
		return fallback, nil
	}
	return c.ToEth(raw, unit, ethUSD)
}

func numberOr(n *types.Number, def float64) float64 {
	if n == nil {
		return def
	}
	return finiteOr(n.Float64(), def)
}
