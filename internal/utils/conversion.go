/*
This file contains common utility functions for converting between integer token amounts
and floats, particularly for exact wei handling and precision checks.
*/

package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// EthDecimals is the precision of wei amounts.
const EthDecimals = 18

// AmountToFloat64 converts an integer token amount to float64 with proper precision handling
func AmountToFloat64(amount sdkmath.Int, precision int) (float64, error) {
	if precision < 0 || precision > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, precision)
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	decAmount := sdkmath.LegacyNewDecFromInt(amount)
	factor := sdkmath.LegacyNewDec(10).Power(uint64(precision))

	result := decAmount.Quo(factor)
	resultFloat, err := result.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	if math.IsNaN(resultFloat) || math.IsInf(resultFloat, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, resultFloat)
	}

	return resultFloat, nil
}

// WeiStringToEth converts an integer wei string (e.g. "1850000000000000000000") to ETH
// without going through a lossy float parse first.
func WeiStringToEth(wei string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(wei), ",", "")
	amount, ok := sdkmath.NewIntFromString(clean)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not an integer wei amount", ErrConversionFailed, wei)
	}
	return AmountToFloat64(amount, EthDecimals)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
