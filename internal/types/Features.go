package types

const FeatureCount = 20

// FeatureVector is the fixed-order input every estimator is trained and queried with.
type FeatureVector [FeatureCount]float64

func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// FeatureNames is the canonical slot order. Estimators must be trained against it.
var FeatureNames = [FeatureCount]string{
	"price_dev_24h",
	"price_dev_ref",
	"price_ratio_ref",
	"current_deviation",
	"within_bounds",
	"position_in_range",
	"dist_to_lower",
	"dist_to_upper",
	"liquidity_util",
	"total_value_normalized",
	"volatility_24h",
	"volatility_ratio",
	"fee_rate",
	"il_factor",
	"pool_liquidity_normalized",
	"volume_per_liquidity",
	"concentration_risk",
	"range_risk",
	"gas_normalized",
	"rebalance_urgency",
}

// TrainingPair is one labelled vector built from a historical record.
type TrainingPair struct {
	Features FeatureVector `json:"features"`
	Label    float64       `json:"label"`
}
