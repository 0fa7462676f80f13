package estimator

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// defaultUncertainty is reported when every member agrees exactly.
const defaultUncertainty = 0.1

// Ensemble averages its members. The uncertainty is the population standard deviation of
// the member predictions. Failing or non-finite members are skipped.
type Ensemble struct {
	members []Estimator
	log     zerolog.Logger
}

func NewEnsemble(logger zerolog.Logger, members ...Estimator) *Ensemble {
	return &Ensemble{
		members: members,
		log:     logger.With().Str("component", "ensemble").Logger(),
	}
}

func (e *Ensemble) Size() int {
	return len(e.members)
}

func (e *Ensemble) Predict(ctx context.Context, v types.FeatureVector) (Prediction, error) {
	if len(e.members) == 0 {
		return Prediction{}, ErrNoMembers
	}

	preds := make([]float64, 0, len(e.members))
	for i, m := range e.members {
		if err := ctx.Err(); err != nil {
			return Prediction{}, err
		}
		p, err := m.Predict(ctx, v)
		if err != nil {
			e.log.Debug().Err(err).Int("member", i).Msg("Member prediction skipped")
			continue
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			e.log.Debug().Int("member", i).Msg("Member prediction not finite, skipped")
			continue
		}
		preds = append(preds, p.Value)
	}

	mean, std, err := analyzer.MeanStdDev(preds)
	if err != nil {
		return Prediction{}, ErrAllMembersFailed
	}
	if std == 0 {
		std = defaultUncertainty
	}
	return Prediction{Value: mean, Uncertainty: std}, nil
}
