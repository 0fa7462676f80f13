package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	f, err := ParseNumber(" 1,850.5 ")
	require.NoError(t, err)
	assert.InDelta(t, 1850.5, f, 1e-12)

	f, err = ParseNumber("1.2e3")
	require.NoError(t, err)
	assert.InDelta(t, 1200, f, 1e-12)

	_, err = ParseNumber("abc")
	assert.ErrorIs(t, err, ErrNotANumber)
	_, err = ParseNumber("")
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestNumberUnmarshal(t *testing.T) {
	var v struct {
		Price Number `json:"price"`
		Gas   Number `json:"gas"`
		Tick  Number `json:"tick"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"price": "1,850.25", "gas": 30, "tick": null}`), &v))
	assert.InDelta(t, 1850.25, v.Price.Float64(), 1e-12)
	assert.InDelta(t, 30, v.Gas.Float64(), 1e-12)
	assert.Zero(t, v.Tick.Float64())
}

func TestNumberUnmarshalNonNumericStringIsZero(t *testing.T) {
	for _, raw := range []string{`"NaN"`, `"abc"`, `""`} {
		n := Number(7)
		require.NoError(t, json.Unmarshal([]byte(raw), &n), raw)
		assert.Zero(t, n.Float64(), raw)
	}

	var n Number
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
}
