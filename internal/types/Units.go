package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type PriceUnit string

const (
	PriceUnitETH  PriceUnit = "eth"
	PriceUnitWei  PriceUnit = "wei"
	PriceUnitGwei PriceUnit = "gwei"
	PriceUnitUSD  PriceUnit = "usd"
	PriceUnitAuto PriceUnit = "auto"
)

type GasUnit string

const (
	GasUnitGwei GasUnit = "gwei"
	GasUnitWei  GasUnit = "wei"
	GasUnitETH  GasUnit = "eth"
	GasUnitAuto GasUnit = "auto"
)

var ErrNotANumber = errors.New("value is not a number")

// Number is a float64 that also decodes from numeric strings such as "1,850.25" or "1.5e18".
// A string that is not a number ("NaN", "abc") decodes to 0 and is left to validation.
type Number float64

func (n Number) Float64() float64 { return float64(n) }

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := ParseNumber(s)
		if err != nil {
			f = 0
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrNotANumber, string(data))
	}
	*n = Number(f)
	return nil
}

// ParseNumber parses a decimal string, tolerating surrounding whitespace, thousands
// separators and scientific notation.
func ParseNumber(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	clean = strings.ReplaceAll(clean, "_", "")
	if clean == "" {
		return 0, fmt.Errorf("%w: empty string", ErrNotANumber)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	f, _ := d.Float64()
	return f, nil
}
