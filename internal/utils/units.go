package utils

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	weiPerEth  = 1e18
	gweiPerEth = 1e9
	weiPerGwei = 1e9

	// Magnitude cut-offs for "auto" units. Realistic ETH prices never reach 1e12 and
	// realistic gwei prices never reach 1e6, so larger values must be wei.
	autoPriceWeiThreshold = 1e12
	autoGasWeiThreshold   = 1e6
	autoGasEthThreshold   = 1e-3
)

// Converter normalises prices to ETH and gas prices to gwei.
type Converter struct {
	params         types.EngineParameters
	defaultGasGwei float64
	ethPriceUSD    float64
	log            zerolog.Logger
}

func NewConverter(params types.EngineParameters, logger zerolog.Logger) *Converter {
	gas := params.DefaultGasGwei
	if gas <= 0 || !IsFinite(gas) {
		gas = 50
	}
	return &Converter{params: params, defaultGasGwei: gas, ethPriceUSD: params.EthPriceUSD, log: logger}
}

// ToEth converts value in unit to ETH. ethPriceUSD overrides the configured ETH/USD rate
// when positive. Non-finite or negative values convert to 0.
func (c *Converter) ToEth(value float64, unit types.PriceUnit, ethPriceUSD float64) (float64, error) {
	if !IsFinite(value) || value < 0 {
		return 0, nil
	}

	switch types.PriceUnit(strings.ToLower(string(unit))) {
	case types.PriceUnitETH, "":
		return value, nil
	case types.PriceUnitWei:
		return value / weiPerEth, nil
	case types.PriceUnitGwei:
		return value / gweiPerEth, nil
	case types.PriceUnitUSD:
		rate := ethPriceUSD
		if rate <= 0 || !IsFinite(rate) {
			rate = c.ethPriceUSD
		}
		if rate <= 0 || !IsFinite(rate) {
			return 0, &types.ConfigurationError{
				Setting: "eth_price_usd",
				Reason:  "usd denominated value supplied without an ETH/USD price",
			}
		}
		return value / rate, nil
	case types.PriceUnitAuto:
		if value >= autoPriceWeiThreshold {
			return value / weiPerEth, nil
		}
		return value, nil
	default:
		c.log.Warn().Str("unit", string(unit)).Msg("Unknown price unit, treating value as ETH")
		return value, nil
	}
}

// ToGwei converts a gas price to gwei. Missing, non-positive or non-finite gas prices
// fall back to the configured default.
func (c *Converter) ToGwei(value float64, unit types.GasUnit) float64 {
	if !IsFinite(value) || value <= 0 {
		return c.defaultGasGwei
	}

	var gwei float64
	switch types.GasUnit(strings.ToLower(string(unit))) {
	case types.GasUnitGwei, "":
		gwei = value
	case types.GasUnitWei:
		gwei = value / weiPerGwei
	case types.GasUnitETH:
		gwei = value * gweiPerEth
	case types.GasUnitAuto:
		switch {
		case value >= autoGasWeiThreshold:
			gwei = value / weiPerGwei
		case value < autoGasEthThreshold:
			gwei = value * gweiPerEth
		default:
			gwei = value
		}
	default:
		c.log.Warn().Str("unit", string(unit)).Msg("Unknown gas unit, treating value as gwei")
		gwei = value
	}
	if !IsFinite(gwei) || gwei <= 0 {
		return c.defaultGasGwei
	}
	return gwei
}

// clampNonNegative maps negative and non-finite values to 0.
func clampNonNegative(v float64) float64 {
	if !IsFinite(v) || v < 0 {
		return 0
	}
	return v
}

// finiteOr returns v when finite, otherwise def.
func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
