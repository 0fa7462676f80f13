package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/config"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/features"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/utils"
)

const stateLine = `{"timestamp": 1700000000, "reward": 0.012, "state": {"poolId": "p1", "current_price": 1850, "twap_24h": 1845, "volatility_24h": 0.3, "gas_price": 30, "gas_unit": "gwei", "position": {"id": 7, "lowerTick": -600, "upperTick": 600, "token0_balance": 1, "token1_balance": 2}}}`

const generatorLine = `{"timestamp": 1700000100, "action": "rebalance", "price_unit": "eth", "gas_unit": "gwei", "context": {"poolId": "0xabc", "currentPrice": 2000, "deviation_pct": 6.5, "threshold_pct": 5, "within_bounds": false, "volatility_24h": 0.4, "gas_price_gwei": 25, "pool_liquidity": 5000000, "volume_24h": 1000000}, "position": {"id": 1234, "lowerTick": 100, "upperTick": 700, "liquidity": 1000, "token0_balance": 0.5, "token1_balance": 0.5, "fees_earned_0": 0.001, "fees_earned_1": 0.001}, "extra": {"inRange": false, "currentTick": 900, "p_ref": 1878, "deviation_bps": 650}, "label": {"action": "rebalance", "net_reward": -0.004, "was_profitable": false}}`

func TestReadBothLayouts(t *testing.T) {
	res, err := NewReader(zerolog.Nop()).Read(strings.NewReader(stateLine + "\n\n" + generatorLine + "\n"))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 2, res.Total)
	assert.Empty(t, res.Errors)

	first := res.Records[0]
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, 0.012, first.Label)
	assert.Equal(t, 1850.0, first.State.CurrentPrice.Float64())
	assert.Equal(t, types.PositionID("7"), first.State.Position.ID)
	assert.Equal(t, 2.0, first.State.Position.Token1Balance)

	second := res.Records[1]
	assert.Equal(t, 3, second.Line)
	assert.Equal(t, "rebalance", second.Action)
	assert.Equal(t, -0.004, second.Label)
	assert.Equal(t, 25.0, second.State.GasPrice.Float64())
	assert.Equal(t, types.GasUnitGwei, second.State.GasUnit)
	require.NotNil(t, second.State.WithinBounds)
	assert.False(t, *second.State.WithinBounds)
	require.NotNil(t, second.State.Extra.InRange)
	assert.False(t, *second.State.Extra.InRange)
	assert.Equal(t, 1878.0, second.State.Extra.ReferencePrice.Float64())
	assert.Equal(t, 650.0, second.State.Extra.Signals["deviation_bps"])
	assert.Equal(t, 0.001, second.State.Position.FeesEarned0)
}

func TestReadSkipsBadLines(t *testing.T) {
	input := strings.Join([]string{
		`not json`,
		`{"state": {"current_price": 1, "position": {"lowerTick": 0, "upperTick": 10}}}`,
		`{"reward": 0.1}`,
		`{"reward": 0.1, "state": {"position": {"lowerTick": 0, "upperTick": 10}}}`,
		`{"reward": 0.1, "state": {"current_price": 1, "position": {"lowerTick": 10, "upperTick": 0}}}`,
		stateLine,
	}, "\n")

	res, err := NewReader(zerolog.Nop()).Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 6, res.Total)
	assert.Len(t, res.Records, 1)
	require.Len(t, res.Errors, 5)
	assert.Contains(t, res.Errors[0].Error(), "Line 1: invalid JSON")
	assert.Contains(t, res.Errors[1].Reason, "missing reward/label")
	assert.Contains(t, res.Errors[2].Reason, "missing state")
	assert.Contains(t, res.Errors[3].Reason, "missing current price")
	assert.Contains(t, res.Errors[4].Reason, "UpperTick")
}

func TestReadWeiStringPrice(t *testing.T) {
	line := `{"reward": 0.01, "state": {"priceUnit": "wei", "currentPrice": "1850000000000000000000", "twap24h": 1.845e21, "position": {"lowerTick": -60, "upperTick": 60}}}`
	res, err := NewReader(zerolog.Nop()).Read(strings.NewReader(line))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	s := res.Records[0].State
	assert.Equal(t, types.PriceUnitETH, s.PriceUnit)
	assert.InDelta(t, 1850, s.CurrentPrice.Float64(), 1e-9)
	assert.InDelta(t, 1845, s.Twap24h.Float64(), 1e-9)
}

func TestReadFileMissing(t *testing.T) {
	_, err := NewReader(zerolog.Nop()).ReadFile(filepath.Join(t.TempDir(), "absent.ndjson"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func writeDataset(t *testing.T, good, bad int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < good; i++ {
		fmt.Fprintf(&b, `{"reward": %f, "state": {"current_price": %d, "twap_24h": 1845, "position": {"lowerTick": -600, "upperTick": 600, "token0_balance": 1}}}`+"\n",
			float64(i%5-2)/100, 1800+i)
	}
	for i := 0; i < bad; i++ {
		b.WriteString("{broken\n")
	}
	path := filepath.Join(t.TempDir(), "train.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestValidateReadiness(t *testing.T) {
	r := NewReader(zerolog.Nop())

	res, err := r.ReadFile(writeDataset(t, 60, 15))
	require.NoError(t, err)
	rep := Validate(res, 50)
	assert.True(t, rep.Valid)
	assert.Equal(t, 75, rep.TotalRecords)
	assert.Equal(t, 60, rep.ValidRecords)
	assert.Equal(t, 15, rep.ErrorCount)
	assert.Len(t, rep.Errors, 10)
	assert.Equal(t, "Ready for training", rep.Message)

	res, err = r.ReadFile(writeDataset(t, 20, 0))
	require.NoError(t, err)
	rep = Validate(res, 50)
	assert.False(t, rep.Valid)
	assert.Equal(t, "Need at least 50 valid records (have 20)", rep.Message)
}

func TestSummarizeAndPairs(t *testing.T) {
	res, err := NewReader(zerolog.Nop()).ReadFile(writeDataset(t, 10, 0))
	require.NoError(t, err)

	sum, err := Summarize(res.Records)
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Count)
	assert.InDelta(t, 0, sum.Mean, 1e-12)
	assert.InDelta(t, 0.4, sum.ProfitableRate, 1e-12)
	assert.Equal(t, 10, sum.Actions["unknown"])

	_, err = Summarize(nil)
	assert.Error(t, err)

	params := config.DefaultEngineParameters()
	ex := features.NewExtractor(utils.NewConverter(params, zerolog.Nop()), params, zerolog.Nop())
	pairs := BuildPairs(res.Records, ex)
	require.Len(t, pairs, 10)
	assert.InDelta(t, 45.0/1845.0, pairs[0].Features[0], 1e-12)
	assert.Equal(t, res.Records[3].Label, pairs[3].Label)
}
