/*

This file contains the standardised linear predictor and the model payload stored in
artifacts.

*/

package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const ModelVersion = "1"

// LinearMember predicts bias + sum(w_i * (x_i - mean_i) / scale_i).
type LinearMember struct {
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
	Means   []float64 `json:"means"`
	Scales  []float64 `json:"scales"`
}

func (m LinearMember) validate() error {
	if len(m.Weights) != types.FeatureCount || len(m.Means) != types.FeatureCount || len(m.Scales) != types.FeatureCount {
		return fmt.Errorf("member expects %d weights, means and scales, got %d/%d/%d",
			types.FeatureCount, len(m.Weights), len(m.Means), len(m.Scales))
	}
	return nil
}

func (m LinearMember) Predict(ctx context.Context, v types.FeatureVector) (Prediction, error) {
	if err := m.validate(); err != nil {
		return Prediction{}, err
	}
	y := m.Bias
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			x = 0
		}
		scale := m.Scales[i]
		if scale == 0 {
			scale = 1
		}
		y += m.Weights[i] * (x - m.Means[i]) / scale
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return Prediction{}, ErrNonFinitePrediction
	}
	return Prediction{Value: y}, nil
}

// Model is the artifact payload: a set of linear members trained on bootstrap samples.
type Model struct {
	Version      string         `json:"version"`
	FeatureNames []string       `json:"feature_names"`
	Members      []LinearMember `json:"members"`
	Samples      int            `json:"samples"`
	TrainedAt    time.Time      `json:"trained_at"`
}

// Validate checks the version, the feature order and every member's dimensions.
func (m *Model) Validate() error {
	if m.Version != ModelVersion {
		return fmt.Errorf("unsupported model version %q", m.Version)
	}
	if len(m.FeatureNames) != types.FeatureCount {
		return ErrFeatureMismatch
	}
	for i, name := range m.FeatureNames {
		if name != types.FeatureNames[i] {
			return fmt.Errorf("%w: slot %d is %q, want %q", ErrFeatureMismatch, i, name, types.FeatureNames[i])
		}
	}
	if len(m.Members) == 0 {
		return ErrNoMembers
	}
	for i, member := range m.Members {
		if err := member.validate(); err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}
	}
	return nil
}

// Ensemble wraps the members in an Ensemble.
func (m *Model) Ensemble(logger zerolog.Logger) *Ensemble {
	members := make([]Estimator, len(m.Members))
	for i, member := range m.Members {
		members[i] = member
	}
	return NewEnsemble(logger, members...)
}

func EncodeModel(m *Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(m, "", "  ")
}

func DecodeModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
