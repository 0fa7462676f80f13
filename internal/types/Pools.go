/*

This file contains the pool level state used by the fee yield and reward estimation.

*/

package types

// Fee tiers in hundredths of a basis point, as quoted by the pool contract.
const (
	FeeTierLow    = 500
	FeeTierMedium = 3000
	FeeTierHigh   = 10000
)

type PoolID string

type PoolState struct {
	FeeTier              int     `json:"feeTier"`                        // e.g., 3000 for the 0.3% tier
	Volume24h            float64 `json:"volume24h"`                      // 24h swap volume in token1 terms
	TVL                  float64 `json:"tvl"`                            // Total value locked in token1 terms
	Token0Decimals       int     `json:"token0Decimals"`                 // e.g., 18
	Token1Decimals       int     `json:"token1Decimals"`                 // e.g., 6
	ActiveLiquidityRatio float64 `json:"activeLiquidityRatio,omitempty"` // Share of TVL active around the current tick, defaults to 0.3
}
