/*

This file contains the decoding of one NDJSON training record into a market snapshot and a
label.

Two layouts are accepted: {"state": {..., "position": {...}}, "reward": x} and the generator
layout {"context": {...}, "position": {...}, "extra": {...}, "label": {"net_reward": x}}.
Field names may be camelCase or snake_case.

*/

package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/utils"
)

var (
	ErrMissingLabel = errors.New("missing reward/label")
	ErrMissingState = errors.New("missing state")
	ErrMissingPrice = errors.New("missing current price")
)

// Record is one usable training line.
type Record struct {
	Line   int               `json:"line"`
	Action string            `json:"action,omitempty"`
	Label  float64           `json:"label"`
	State  types.MarketState `json:"state"`
}

type object = map[string]any

const weiPerEth = 1e18

func decodeRecord(line int, raw []byte) (Record, error) {
	var rec object
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("invalid JSON: %w", err)
	}

	label, err := resolveLabel(rec)
	if err != nil {
		return Record{}, err
	}

	stateObj, ok := child(rec, "state")
	if !ok {
		stateObj, ok = child(rec, "context")
	}
	if !ok {
		return Record{}, ErrMissingState
	}

	posObj, ok := child(stateObj, "position")
	if !ok {
		posObj, ok = child(rec, "position")
	}
	if !ok {
		return Record{}, &types.ValidationError{Field: "position", Reason: "is required"}
	}

	state, err := buildState(rec, stateObj, posObj)
	if err != nil {
		return Record{}, err
	}
	if err := types.ValidateMarketState(&state); err != nil {
		return Record{}, err
	}

	action, _ := str(rec, "action")
	if action == "" {
		if lbl, ok := child(rec, "label"); ok {
			action, _ = str(lbl, "action")
		}
	}

	return Record{Line: line, Action: action, Label: label, State: state}, nil
}

// resolveLabel reads reward, else label, either of which may be a number or an object with
// net_reward / net_reward_eth.
func resolveLabel(rec object) (float64, error) {
	for _, key := range []string{"reward", "label"} {
		v, present := rec[key]
		if !present || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, nil
		}
		if obj, ok := v.(object); ok {
			if f, ok := num(obj, "net_reward", "netReward", "net_reward_eth", "netRewardEth"); ok {
				return f, nil
			}
		}
	}
	return 0, ErrMissingLabel
}

func buildState(rec, s, p object) (types.MarketState, error) {
	var out types.MarketState

	out.Timestamp, _ = num(s, "timestamp")
	if out.Timestamp == 0 {
		out.Timestamp, _ = num(rec, "timestamp")
	}
	out.PoolID, _ = str(s, "poolId", "pool_id")

	priceUnit, _ := str(s, "priceUnit", "price_unit")
	if priceUnit == "" {
		priceUnit, _ = str(rec, "priceUnit", "price_unit")
	}
	out.PriceUnit = types.PriceUnit(strings.ToLower(priceUnit))

	price, exact, err := currentPrice(s, out.PriceUnit)
	if err != nil {
		return out, err
	}
	twap1h, _ := num(s, "twap1h", "twap_1h")
	twap24h, _ := num(s, "twap24h", "twap_24h")
	if exact {
		// integer wei strings are converted here so no precision is lost in float64
		out.PriceUnit = types.PriceUnitETH
		twap1h /= weiPerEth
		twap24h /= weiPerEth
	}
	out.CurrentPrice = types.Number(price)
	out.Twap1h, out.Twap24h = types.Number(twap1h), types.Number(twap24h)

	out.Volatility1h, _ = num(s, "volatility1h", "volatility_1h")
	out.Volatility24h, _ = num(s, "volatility24h", "volatility_24h")
	out.PoolLiquidity, _ = num(s, "poolLiquidity", "pool_liquidity")
	out.Volume24h, _ = num(s, "volume24h", "volume_24h")

	gasUnit, _ := str(s, "gasUnit", "gas_unit")
	if gasUnit == "" {
		gasUnit, _ = str(rec, "gasUnit", "gas_unit")
	}
	gas, ok := num(s, "gasPrice", "gas_price")
	if !ok {
		if gas, ok = num(s, "gas_price_gwei", "gasPriceGwei"); ok {
			gasUnit = string(types.GasUnitGwei)
		}
	}
	out.GasPrice = types.Number(gas)
	out.GasUnit = types.GasUnit(strings.ToLower(gasUnit))

	if v, ok := num(s, "deviationPct", "deviation_pct"); ok {
		out.DeviationPct = &v
	}
	if v, ok := num(s, "thresholdPct", "threshold_pct"); ok {
		out.ThresholdPct = &v
	}
	if v, ok := boolean(s, "withinBounds", "within_bounds"); ok {
		out.WithinBounds = &v
	}
	out.PriceImpact, _ = str(s, "priceImpact", "price_impact")

	out.Position = buildPosition(p)

	extraObj, ok := child(s, "extra")
	if !ok {
		extraObj, ok = child(rec, "extra")
	}
	if ok {
		b, err := json.Marshal(extraObj)
		if err != nil {
			return out, fmt.Errorf("extra: %w", err)
		}
		if err := json.Unmarshal(b, &out.Extra); err != nil {
			return out, fmt.Errorf("extra: %w", err)
		}
	}
	return out, nil
}

// currentPrice returns the price and whether it was an exact wei string converted to ETH.
func currentPrice(s object, unit types.PriceUnit) (float64, bool, error) {
	keys := []string{"currentPrice", "current_price", "price"}
	if unit == types.PriceUnitWei {
		if raw, ok := str(s, keys...); ok && raw != "" {
			eth, err := utils.WeiStringToEth(raw)
			if err != nil {
				return 0, false, fmt.Errorf("current price: %w", err)
			}
			return eth, true, nil
		}
	}
	price, ok := num(s, keys...)
	if !ok {
		return 0, false, ErrMissingPrice
	}
	return price, false, nil
}

func buildPosition(p object) *types.Position {
	pos := &types.Position{}
	if raw, ok := p["id"]; ok && raw != nil {
		switch id := raw.(type) {
		case string:
			pos.ID = types.PositionID(id)
		default:
			if f, ok := toFloat(id); ok {
				pos.ID = types.PositionID(fmt.Sprintf("%.0f", f))
			}
		}
	}
	pos.Owner, _ = str(p, "owner")

	lower, _ := num(p, "lowerTick", "lower_tick", "tickLower", "tick_lower")
	upper, _ := num(p, "upperTick", "upper_tick", "tickUpper", "tick_upper")
	pos.LowerTick, pos.UpperTick = int(lower), int(upper)

	pos.Liquidity, _ = num(p, "liquidity")
	pos.Token0Balance, _ = num(p, "token0Balance", "token0_balance")
	pos.Token1Balance, _ = num(p, "token1Balance", "token1_balance")
	pos.FeesEarned0, _ = num(p, "fees0", "fees_earned_0", "feesEarned0")
	pos.FeesEarned1, _ = num(p, "fees1", "fees_earned_1", "feesEarned1")

	age, _ := num(p, "ageSeconds", "age_seconds")
	pos.AgeSeconds = int64(age)
	return pos
}

// ===== FIELD HELPERS =====

func child(m object, key string) (object, bool) {
	v, ok := m[key].(object)
	return v, ok
}

func num(m object, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, present := m[k]; present && v != nil {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func str(m object, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k].(string); ok {
			return v, true
		}
	}
	return "", false
}

func boolean(m object, keys ...string) (bool, bool) {
	for _, k := range keys {
		if v, ok := m[k].(bool); ok {
			return v, true
		}
	}
	return false, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := types.ParseNumber(x)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
