/*

This file contains the feature extractor that turns a market snapshot into the fixed order
vector every estimator is trained and queried with.

*/

package features

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/utils"
)

// Extractor builds feature vectors. Safe for concurrent use.
type Extractor struct {
	conv   *utils.Converter
	params types.EngineParameters
	log    zerolog.Logger
}

func NewExtractor(conv *utils.Converter, params types.EngineParameters, logger zerolog.Logger) *Extractor {
	return &Extractor{
		conv:   conv,
		params: params,
		log:    logger.With().Str("component", "features").Logger(),
	}
}

// Names returns the canonical slot order.
func Names() []string {
	out := make([]string, types.FeatureCount)
	copy(out, types.FeatureNames[:])
	return out
}

// Extract canonicalises s and builds its vector. A snapshot that cannot be canonicalised
// yields the zero vector.
func (e *Extractor) Extract(s *types.MarketState) types.FeatureVector {
	c, err := e.conv.Canonicalize(s)
	if err != nil {
		e.log.Error().Err(err).Msg("Feature extraction failed, using zero vector")
		return types.FeatureVector{}
	}
	return e.FromCanonical(c)
}

// FromCanonical builds the vector of an already canonical state. A slot that fails or is
// NaN is 0, +Inf is 1 and -Inf is 0; every slot is clipped to [-FeatureClip, FeatureClip].
func (e *Extractor) FromCanonical(c types.CanonicalState) types.FeatureVector {
	f := newFrame(c, e.params)

	var v types.FeatureVector
	for i, slot := range slots {
		val, err := slot(f)
		switch {
		case err != nil || math.IsNaN(val) || math.IsInf(val, -1):
			e.log.Debug().
				Str("feature", types.FeatureNames[i]).
				Err(err).
				Float64("value", val).
				Msg("Feature slot defaulted to 0")
			val = 0
		case math.IsInf(val, 1):
			val = 1
		}
		v[i] = clip(val, e.params.FeatureClip)
	}
	return v
}

func clip(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	return math.Max(-limit, math.Min(limit, v))
}
