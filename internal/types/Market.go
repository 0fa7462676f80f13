/*

This file contains the market snapshot handed to the engine on every decision call, and the
canonical (ETH / gwei denominated) view the analysis components compute on.

*/

package types

import (
	"encoding/json"
	"time"
)

// Price impact buckets reported by the caller's quoting layer.
const (
	PriceImpactLow      = "low"
	PriceImpactMedium   = "medium"
	PriceImpactHigh     = "high"
	PriceImpactVeryHigh = "very_high"
)

// MarketState is one observation of a pool and the position being managed in it.
type MarketState struct {
	Timestamp     float64   `json:"timestamp"` // unix seconds
	PoolID        string    `json:"poolId"`
	CurrentPrice  Number    `json:"currentPrice" validate:"finite,gt=0"`
	PriceUnit     PriceUnit `json:"priceUnit,omitempty"`
	Twap1h        Number    `json:"twap1h"`
	Twap24h       Number    `json:"twap24h"`
	Volatility1h  float64   `json:"volatility1h"`
	Volatility24h float64   `json:"volatility24h"`
	PoolLiquidity float64   `json:"poolLiquidity"`
	Volume24h     float64   `json:"volume24h"`
	GasPrice      Number    `json:"gasPrice"`
	GasUnit       GasUnit   `json:"gasUnit,omitempty"`

	DeviationPct *float64 `json:"deviationPct,omitempty"`
	ThresholdPct *float64 `json:"thresholdPct,omitempty"`
	WithinBounds *bool    `json:"withinBounds,omitempty"`
	PriceImpact  string   `json:"priceImpact,omitempty"`

	Pool     *PoolState `json:"pool,omitempty"`
	Position *Position  `json:"position" validate:"required"`
	Extra    Extra      `json:"extra"`
}

// Time returns the observation time, or the zero time when none was supplied.
func (s *MarketState) Time() time.Time {
	if s.Timestamp <= 0 {
		return time.Time{}
	}
	sec := int64(s.Timestamp)
	nsec := int64((s.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// Clone returns a copy that shares no mutable state with s.
func (s *MarketState) Clone() *MarketState {
	if s == nil {
		return nil
	}
	c := *s
	if s.Position != nil {
		p := *s.Position
		c.Position = &p
	}
	if s.Pool != nil {
		p := *s.Pool
		c.Pool = &p
	}
	if s.Extra.Signals != nil {
		c.Extra.Signals = make(map[string]any, len(s.Extra.Signals))
		for k, v := range s.Extra.Signals {
			c.Extra.Signals[k] = v
		}
	}
	return &c
}

// Extra carries the optional knobs callers attach to a snapshot. Recognised keys decode into
// typed fields; everything else lands in Signals and is preserved on re-encoding.
type Extra struct {
	Token0PriceEth           *Number `json:"token0_price_eth,omitempty"`
	Token1PriceEth           *Number `json:"token1_price_eth,omitempty"`
	EthPriceUSD              *Number `json:"eth_price_usd,omitempty"`
	CurrentTick              *Number `json:"currentTick,omitempty"`
	InRange                  *bool   `json:"inRange,omitempty"`
	ReferencePrice           *Number `json:"p_ref,omitempty"`
	ThresholdPct             *Number `json:"threshold_pct,omitempty"`
	Token0IsPriceDenominated bool    `json:"token0_is_price_denominated,omitempty"`
	Token1IsPriceDenominated bool    `json:"token1_is_price_denominated,omitempty"`

	Signals map[string]any `json:"-"`
}

var extraKnownKeys = []string{
	"token0_price_eth", "token1_price_eth", "eth_price_usd", "currentTick", "inRange",
	"p_ref", "threshold_pct", "token0_is_price_denominated", "token1_is_price_denominated",
}

func (e *Extra) UnmarshalJSON(data []byte) error {
	type plain Extra
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range extraKnownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		p.Signals = raw
	}
	*e = Extra(p)
	return nil
}

func (e Extra) MarshalJSON() ([]byte, error) {
	type plain Extra
	b, err := json.Marshal(plain(e))
	if err != nil || len(e.Signals) == 0 {
		return b, err
	}
	var merged map[string]any
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.Signals {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// CanonicalState is a MarketState with every price expressed in ETH, gas in gwei,
// optional fields resolved, and the position valued.
type CanonicalState struct {
	PoolID    string
	Timestamp time.Time

	CurrentPrice   float64
	Twap1h         float64
	Twap24h        float64
	ReferencePrice float64

	Volatility1h  float64
	Volatility24h float64
	PoolLiquidity float64
	Volume24h     float64
	GasGwei       float64

	DeviationPct float64 // explicit override in percent, 0 when absent
	ThresholdPct float64 // 0 when absent
	WithinBounds *bool
	PriceImpact  string

	CurrentTick      int
	TickKnown        bool // CurrentTick came from the snapshot rather than defaulting to 0
	InRange          bool
	Position         Position
	PositionValueEth float64
	Pool             PoolState
}

// OutOfBounds reports whether the caller explicitly flagged the price as outside its band.
func (c CanonicalState) OutOfBounds() bool {
	return c.WithinBounds != nil && !*c.WithinBounds
}

// HighPriceImpact reports whether the quoted impact bucket is high or very high.
func (c CanonicalState) HighPriceImpact() bool {
	return c.PriceImpact == PriceImpactHigh || c.PriceImpact == PriceImpactVeryHigh
}
