/*

This file contains the types for positions, which hold all the state needed for valuing
a concentrated liquidity range and deciding whether to move it.

*/

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PositionID accepts both string and numeric identifiers on the wire.
type PositionID string

func (id *PositionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PositionID(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("position id must be a string or number: %w", err)
	}
	*id = PositionID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Concentrated liquidity position
type Position struct {
	ID            PositionID `json:"id"`
	Owner         string     `json:"owner"`
	LowerTick     int        `json:"lowerTick"`
	UpperTick     int        `json:"upperTick" validate:"gtfield=LowerTick"`
	Liquidity     float64    `json:"liquidity"`
	Token0Balance float64    `json:"token0Balance"`
	Token1Balance float64    `json:"token1Balance"`
	FeesEarned0   float64    `json:"fees0"`
	FeesEarned1   float64    `json:"fees1"`
	AgeSeconds    int64      `json:"ageSeconds"`
}

// TickRange is the width of the position in ticks.
func (p Position) TickRange() int {
	r := p.UpperTick - p.LowerTick
	if r < 0 {
		return -r
	}
	return r
}

func (p Position) Midpoint() float64 {
	return float64(p.LowerTick+p.UpperTick) / 2.0
}

// ContainsTick reports whether tick lies inside [LowerTick, UpperTick].
func (p Position) ContainsTick(tick int) bool {
	return tick >= p.LowerTick && tick <= p.UpperTick
}

// PositionSnapshot is the view of a position used by the reward estimator: balances
// plus the tick and price they were observed at.
type PositionSnapshot struct {
	LowerTick     int     `json:"lower_tick"`
	UpperTick     int     `json:"upper_tick"`
	Liquidity     float64 `json:"liquidity"`
	Token0Balance float64 `json:"token0_balance"`
	Token1Balance float64 `json:"token1_balance"`
	CurrentTick   int     `json:"current_tick"`
	CurrentPrice  float64 `json:"current_price"` // token1 per token0
	Fees0         float64 `json:"fees0"`
	Fees1         float64 `json:"fees1"`
}

func (p PositionSnapshot) InRange() bool {
	return p.CurrentTick >= p.LowerTick && p.CurrentTick <= p.UpperTick
}
