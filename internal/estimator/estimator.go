/*

This file contains the estimator capability used by the decision engine.

An estimator maps a feature vector to a predicted reward (a fraction of position value) and
an uncertainty. Any error is recovered by the engine, which falls back to its heuristic.

*/

package estimator

import (
	"context"
	"errors"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

var (
	ErrNoMembers           = errors.New("estimator has no members")
	ErrAllMembersFailed    = errors.New("every ensemble member failed")
	ErrFeatureMismatch     = errors.New("model feature names do not match the canonical order")
	ErrNonFinitePrediction = errors.New("prediction is not finite")
	ErrInsufficientSamples = errors.New("not enough training samples")
	ErrCircuitOpen         = errors.New("estimator circuit breaker is open")
)

type Prediction struct {
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
}

type Estimator interface {
	Predict(ctx context.Context, v types.FeatureVector) (Prediction, error)
}

// Fitter trains an estimator from labelled vectors.
type Fitter interface {
	Fit(ctx context.Context, pairs []types.TrainingPair) (*Model, error)
}
