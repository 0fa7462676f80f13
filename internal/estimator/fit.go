/*

This file contains the ridge regression fitter used by the training command.

Each member is a ridge regression on a bootstrap resample of the training pairs with
features standardised per member. Disagreement between members is what the ensemble
reports as uncertainty.

*/

package estimator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

var ErrSingularSystem = errors.New("normal equations are singular")

const (
	defaultMembers = 5
	defaultLambda  = 1.0
	defaultSeed    = 42
	pivotEpsilon   = 1e-12
)

type RidgeFitter struct {
	Members    int
	Lambda     float64
	Seed       int64
	MinSamples int

	log zerolog.Logger
}

func NewRidgeFitter(minSamples int, logger zerolog.Logger) *RidgeFitter {
	return &RidgeFitter{
		Members:    defaultMembers,
		Lambda:     defaultLambda,
		Seed:       defaultSeed,
		MinSamples: minSamples,
		log:        logger.With().Str("component", "fitter").Logger(),
	}
}

func (f *RidgeFitter) Fit(ctx context.Context, pairs []types.TrainingPair) (*Model, error) {
	if len(pairs) == 0 || len(pairs) < f.MinSamples {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientSamples, f.MinSamples, len(pairs))
	}
	members := f.Members
	if members <= 0 {
		members = defaultMembers
	}

	rng := rand.New(rand.NewSource(f.Seed))
	model := &Model{
		Version:      ModelVersion,
		FeatureNames: make([]string, types.FeatureCount),
		Samples:      len(pairs),
		TrainedAt:    time.Now().UTC(),
	}
	copy(model.FeatureNames, types.FeatureNames[:])

	for m := 0; m < members; m++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sample := make([]types.TrainingPair, len(pairs))
		for i := range sample {
			sample[i] = pairs[rng.Intn(len(pairs))]
		}
		member, err := fitRidge(sample, f.Lambda)
		if err != nil {
			f.log.Error().Err(err).Int("member", m).Msg("Member fit failed")
			continue
		}
		model.Members = append(model.Members, member)
		f.log.Info().Int("member", m).Float64("bias", member.Bias).Msg("Member trained")
	}

	if len(model.Members) == 0 {
		return nil, ErrNoMembers
	}
	f.log.Info().
		Int("members", len(model.Members)).
		Int("samples", len(pairs)).
		Msg("Ensemble training complete")
	return model, nil
}

func fitRidge(sample []types.TrainingPair, lambda float64) (LinearMember, error) {
	n := types.FeatureCount
	member := LinearMember{
		Weights: make([]float64, n),
		Means:   make([]float64, n),
		Scales:  make([]float64, n),
	}

	// ===== STANDARDISATION =====
	column := make([]float64, len(sample))
	for j := 0; j < n; j++ {
		for i, p := range sample {
			column[i] = finiteOrZero(p.Features[j])
		}
		mean, std, err := analyzer.MeanStdDev(column)
		if err != nil {
			return member, err
		}
		if std == 0 {
			std = 1
		}
		member.Means[j] = mean
		member.Scales[j] = std
	}

	labels := make([]float64, len(sample))
	for i, p := range sample {
		labels[i] = finiteOrZero(p.Label)
	}
	bias, _, err := analyzer.MeanStdDev(labels)
	if err != nil {
		return member, err
	}
	member.Bias = bias

	// ===== NORMAL EQUATIONS (Z'Z + lambda*I) w = Z'(y - bias) =====
	a := make([][]float64, n)
	for j := range a {
		a[j] = make([]float64, n+1)
		a[j][j] = lambda
	}
	z := make([]float64, n)
	for i, p := range sample {
		for j := 0; j < n; j++ {
			z[j] = (finiteOrZero(p.Features[j]) - member.Means[j]) / member.Scales[j]
		}
		r := labels[i] - bias
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				a[j][k] += z[j] * z[k]
			}
			a[j][n] += z[j] * r
		}
	}

	w, err := solve(a)
	if err != nil {
		return member, err
	}
	member.Weights = w
	return member, nil
}

// solve runs Gauss-Jordan elimination with partial pivoting on an augmented n x (n+1) matrix.
func solve(a [][]float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < pivotEpsilon {
			return nil, ErrSingularSystem
		}
		a[col], a[pivot] = a[pivot], a[col]

		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := a[row][col] / a[col][col]
			for k := col; k <= n; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = a[i][n] / a[i][i]
	}
	return out, nil
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
