package features

import (
	"errors"
	"math"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

var ErrDivideByZero = errors.New("division by zero")

const (
	valueScale         = 1e6
	poolLiquidityScale = 1e24
	gasScaleEth        = 0.1
	urgencyFullPct     = 20.0
	minFeeValueEth     = 1e-9
)

// frame holds the intermediate values shared by several slots.
type frame struct {
	c      types.CanonicalState
	params types.EngineParameters

	currentTick float64
	lowerTick   float64
	upperTick   float64
	tickRange   float64
	midpoint    float64
}

func newFrame(c types.CanonicalState, params types.EngineParameters) *frame {
	lo := float64(c.Position.LowerTick)
	hi := float64(c.Position.UpperTick)
	return &frame{
		c:           c,
		params:      params,
		currentTick: float64(c.CurrentTick),
		lowerTick:   lo,
		upperTick:   hi,
		tickRange:   math.Max(params.MinTickRange, math.Abs(hi-lo)),
		midpoint:    (hi + lo) / 2,
	}
}

type slotFunc func(f *frame) (float64, error)

// slots is indexed like types.FeatureNames.
var slots = [types.FeatureCount]slotFunc{
	priceDev24h,
	priceDevRef,
	priceRatioRef,
	currentDeviation,
	withinBounds,
	positionInRange,
	distToLower,
	distToUpper,
	liquidityUtil,
	totalValueNormalized,
	volatility24h,
	volatilityRatio,
	feeRate,
	ilFactor,
	poolLiquidityNormalized,
	volumePerLiquidity,
	concentrationRisk,
	rangeRisk,
	gasNormalized,
	rebalanceUrgency,
}

func div(num, den float64) (float64, error) {
	if den == 0 {
		return 0, ErrDivideByZero
	}
	return num / den, nil
}

func priceDev24h(f *frame) (float64, error) {
	return analyzer.DeviationFraction(f.c.CurrentPrice, f.c.Twap24h), nil
}

func priceDevRef(f *frame) (float64, error) {
	return analyzer.DeviationFraction(f.c.CurrentPrice, f.c.ReferencePrice), nil
}

func priceRatioRef(f *frame) (float64, error) {
	return div(f.c.CurrentPrice, f.c.ReferencePrice)
}

// currentDeviation is in percent.
func currentDeviation(f *frame) (float64, error) {
	if f.c.DeviationPct > 0 {
		return f.c.DeviationPct, nil
	}
	dev, err := priceDev24h(f)
	return dev * 100, err
}

func withinBounds(f *frame) (float64, error) {
	if f.c.WithinBounds != nil && *f.c.WithinBounds {
		return 1, nil
	}
	return 0, nil
}

func positionInRange(f *frame) (float64, error) {
	r, err := div(f.currentTick-f.lowerTick, f.tickRange)
	if err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(1, r)), nil
}

func distToLower(f *frame) (float64, error) {
	return div(math.Abs(f.currentTick-f.lowerTick), math.Max(math.Abs(f.lowerTick), 1))
}

func distToUpper(f *frame) (float64, error) {
	return div(math.Abs(f.upperTick-f.currentTick), math.Max(math.Abs(f.upperTick), 1))
}

func liquidityUtil(f *frame) (float64, error) {
	return div(f.c.Position.Liquidity, f.c.PoolLiquidity)
}

func totalValueNormalized(f *frame) (float64, error) {
	return f.c.PositionValueEth / valueScale, nil
}

func volatility24h(f *frame) (float64, error) {
	return math.Max(0, f.c.Volatility24h), nil
}

func volatilityRatio(f *frame) (float64, error) {
	den := f.c.Volatility24h
	if den == 0 {
		den = 1
	}
	return div(f.c.Volatility1h, den)
}

func feeRate(f *frame) (float64, error) {
	fees := f.c.Position.FeesEarned0 + f.c.Position.FeesEarned1
	return div(fees, math.Max(minFeeValueEth, f.c.PositionValueEth))
}

func ilFactor(f *frame) (float64, error) {
	return analyzer.PriceILFactor(f.c), nil
}

func poolLiquidityNormalized(f *frame) (float64, error) {
	return f.c.PoolLiquidity / poolLiquidityScale, nil
}

func volumePerLiquidity(f *frame) (float64, error) {
	return div(f.c.Volume24h, f.c.PoolLiquidity)
}

func concentrationRisk(f *frame) (float64, error) {
	util, err := liquidityUtil(f)
	if err != nil {
		return 0, err
	}
	pir, err := positionInRange(f)
	if err != nil {
		return 0, err
	}
	return util * (1 - pir), nil
}

// rangeRisk grows as the range gets narrow relative to its distance from tick 0.
func rangeRisk(f *frame) (float64, error) {
	if f.midpoint == 0 {
		return 0, nil
	}
	r, err := div(math.Abs(f.midpoint), f.tickRange)
	if err != nil {
		return 0, err
	}
	return math.Min(1, r), nil
}

func gasNormalized(f *frame) (float64, error) {
	gas := analyzer.GasCostEth(f.c.GasGwei, types.ActionRebalance, f.params)
	return math.Min(gas/gasScaleEth, 1), nil
}

func rebalanceUrgency(f *frame) (float64, error) {
	dev, err := currentDeviation(f)
	if err != nil {
		return 0, err
	}
	return math.Min(dev/urgencyFullPct, 1), nil
}
