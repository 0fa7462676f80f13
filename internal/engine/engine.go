/*

This file contains the decision engine, which wires the converter, feature extractor,
estimator, risk assessor, policy and safety gate into a single Decide call.

Decide never fails: any error or panic on the way produces the safe fallback decision
(hold with minimal confidence and high risk).

*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/analyzer"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/estimator"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/features"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/policy"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/state"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/utils"
)

// Prediction sources reported to observers.
const (
	SourceEstimator = "estimator"
	SourceHeuristic = "heuristic"
	SourceFallback  = "fallback"
)

const defaultBatchConcurrency = 8

var ErrInvalidParameters = errors.New("invalid engine parameters")

// Outcome describes how a decision was reached.
type Outcome struct {
	Source   string
	Blocked  bool
	Risk     types.RiskAssessment
	Duration time.Duration
}

// Observer is notified after every Decide call, fallbacks included.
type Observer interface {
	ObserveDecision(rec types.DecisionRecord, out Outcome)
}

// Engine is safe for concurrent use.
type Engine struct {
	params types.EngineParameters
	log    zerolog.Logger
	now    func() time.Time

	conv      *utils.Converter
	extractor *features.Extractor
	risk      *analyzer.RiskAssessor
	reward    *analyzer.RewardEstimator
	policy    *policy.Policy
	gate      *policy.SafetyGate
	est       estimator.Estimator
	observers []Observer

	history *state.Ring[types.DecisionRecord]
	recent  *state.Ring[types.Action]

	total        atomic.Int64
	estimatorHit atomic.Int64
	heuristicHit atomic.Int64
	blocks       atomic.Int64
	errs         atomic.Int64
	actions      map[types.Action]*atomic.Int64
}

// Config holds the dependencies for a new Engine. Estimator is optional; without it every
// decision uses the heuristic.
type Config struct {
	Params    types.EngineParameters
	Logger    zerolog.Logger
	Estimator estimator.Estimator
	Observers []Observer
	Clock     func() time.Time
}

// NewEngine creates an engine with dependency injection.
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	now := cfg.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	conv := utils.NewConverter(cfg.Params, cfg.Logger)
	e := &Engine{
		params:    cfg.Params,
		log:       cfg.Logger.With().Str("component", "engine").Logger(),
		now:       now,
		conv:      conv,
		extractor: features.NewExtractor(conv, cfg.Params, cfg.Logger),
		risk:      analyzer.NewRiskAssessor(cfg.Params, cfg.Logger),
		reward:    analyzer.NewRewardEstimator(cfg.Params, cfg.Logger),
		policy:    policy.NewPolicy(cfg.Params, cfg.Logger),
		gate:      policy.NewSafetyGate(cfg.Params, cfg.Logger),
		est:       cfg.Estimator,
		observers: cfg.Observers,
		history:   state.NewRing[types.DecisionRecord](cfg.Params.HistoryCapacity),
		recent:    state.NewRing[types.Action](cfg.Params.RecentActionsWindow),
		actions:   make(map[types.Action]*atomic.Int64, len(types.AllActions)),
	}
	for _, a := range types.AllActions {
		e.actions[a] = new(atomic.Int64)
	}

	e.log.Info().
		Bool("hasEstimator", e.est != nil).
		Int("historyCapacity", cfg.Params.HistoryCapacity).
		Int("recentWindow", cfg.Params.RecentActionsWindow).
		Msg("Decision engine created")

	return e, nil
}

// validateConfig validates the engine configuration
func validateConfig(cfg Config) error {
	p := cfg.Params
	var errs []error
	if p.HistoryCapacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: history capacity must be positive", ErrInvalidParameters))
	}
	if p.RecentActionsWindow <= 0 {
		errs = append(errs, fmt.Errorf("%w: recent actions window must be positive", ErrInvalidParameters))
	}
	if p.RepeatDampening <= 0 || p.RepeatDampening > 1 {
		errs = append(errs, fmt.Errorf("%w: repeat dampening must be in (0, 1]", ErrInvalidParameters))
	}
	if p.TickSpacing <= 0 {
		errs = append(errs, fmt.Errorf("%w: tick spacing must be positive", ErrInvalidParameters))
	}
	return errors.Join(errs...)
}

// HasEstimator reports whether predictions can come from a statistical estimator.
func (e *Engine) HasEstimator() bool {
	return e.est != nil
}

// Params returns the parameters the engine was built with.
func (e *Engine) Params() types.EngineParameters {
	return e.params
}

// Decide returns the action to take for s. It never fails.
func (e *Engine) Decide(ctx context.Context, s *types.MarketState) (d types.Decision) {
	start := e.now()
	e.total.Add(1)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("Recovered from panic during decision")
			d = e.fail(s, fmt.Errorf("panic: %v", r), start)
		}
	}()

	d, out, v, err := e.decide(ctx, s)
	if err != nil {
		return e.fail(s, err, start)
	}

	rec := e.record(s, d, v)
	out.Duration = e.now().Sub(start)
	e.notify(rec, out)
	return rec.Decision
}

// decide runs the pipeline. The returned decision has passed the safety gate but has not
// been recorded.
func (e *Engine) decide(ctx context.Context, s *types.MarketState) (types.Decision, Outcome, types.FeatureVector, error) {
	var out Outcome

	// --- Step 1: Validation & canonicalisation ---
	if err := types.ValidateMarketState(s); err != nil {
		return types.Decision{}, out, types.FeatureVector{}, err
	}
	c, err := e.conv.Canonicalize(s)
	if err != nil {
		return types.Decision{}, out, types.FeatureVector{}, err
	}

	// --- Step 2: Features ---
	v := e.extractor.FromCanonical(c)

	// --- Step 3: Prediction ---
	reward, confidence, reason, source := e.predict(ctx, v, c)
	out.Source = source

	// --- Step 4: Risk & action ---
	risk := e.risk.Assess(c)
	out.Risk = risk
	action := e.policy.DetermineAction(reward, confidence, risk.Level, c)
	params := e.policy.BuildParams(action, c)

	d := types.Decision{
		Action:            action,
		Confidence:        clamp(confidence, 0, 1),
		Score:             reward,
		ExpectedReward:    reward,
		Reason:            reason,
		RiskLevel:         risk.Level,
		RecommendedParams: params,
		Metadata: map[string]any{
			"risk_score":            risk.Score,
			"risk_components":       risk.Components,
			"timestamp":             s.Timestamp,
			"position_id":           string(s.Position.ID),
			"gas_price_gwei":        c.GasGwei,
			"position_value_eth":    c.PositionValueEth,
			"dynamic_threshold_pct": e.policy.DynamicThresholdPct(c),
			"features_used":         types.FeatureCount,
		},
		Timestamp: e.now(),
	}
	if action == types.ActionRebalance && params != nil {
		e.attachVerdict(&d, c, params)
	}

	// --- Step 5: Safety gate ---
	if reasons := e.gate.Apply(&d, c); len(reasons) > 0 {
		e.blocks.Add(1)
		out.Blocked = true
	}

	e.log.Debug().
		Str("poolId", c.PoolID).
		Str("action", string(d.Action)).
		Float64("reward", reward).
		Float64("confidence", d.Confidence).
		Str("risk", string(risk.Level)).
		Str("reason", d.Reason).
		Msg("Decision made")

	return d, out, v, nil
}

// predict returns the reward, confidence, reason and source. Estimator failures fall back
// to the heuristic.
func (e *Engine) predict(ctx context.Context, v types.FeatureVector, c types.CanonicalState) (float64, float64, string, string) {
	if e.est != nil {
		p, err := e.est.Predict(ctx, v)
		if err == nil && isFinite(p.Value) {
			e.estimatorHit.Add(1)
			return p.Value, e.confidence(p.Value, p.Uncertainty, c), types.ReasonEstimator, SourceEstimator
		}
		if err == nil {
			err = estimator.ErrNonFinitePrediction
		}
		e.log.Warn().Err(err).Msg("Estimator prediction failed, using heuristic fallback")
		reward, conf := e.heuristic(c)
		e.heuristicHit.Add(1)
		return reward, conf, types.ReasonHeuristicFallback, SourceHeuristic
	}

	reward, conf := e.heuristic(c)
	e.heuristicHit.Add(1)
	return reward, conf, types.ReasonHeuristic, SourceHeuristic
}

// attachVerdict prices the recommended rebalance against holding and stores the result in
// the decision metadata.
func (e *Engine) attachVerdict(d *types.Decision, c types.CanonicalState, params *types.RecommendedParams) {
	if params.NewLowerTick == nil || params.NewUpperTick == nil {
		return
	}
	pre := snapshotOf(c)
	post := pre
	post.LowerTick = *params.NewLowerTick
	post.UpperTick = *params.NewUpperTick

	gasEth := analyzer.GasCostEth(c.GasGwei, types.ActionRebalance, e.params)
	verdict := e.reward.ShouldRebalance(pre, post, c.Pool, gasEth)

	d.Metadata["net_reward_eth"] = verdict.Rebalance.NetReward
	d.Metadata["roi_pct"] = verdict.Rebalance.ROIPct
	d.Metadata["should_rebalance"] = verdict.ShouldRebalance
	d.Metadata["reward_justification"] = verdict.Justification
}

// snapshotOf is the reward estimator's view of the canonical position. Without an explicit
// tick the current tick is derived from the price.
func snapshotOf(c types.CanonicalState) types.PositionSnapshot {
	tick := c.CurrentTick
	if !c.TickKnown {
		tick = analyzer.PriceToTick(c.CurrentPrice)
	}
	return types.PositionSnapshot{
		LowerTick:     c.Position.LowerTick,
		UpperTick:     c.Position.UpperTick,
		Liquidity:     c.Position.Liquidity,
		Token0Balance: c.Position.Token0Balance,
		Token1Balance: c.Position.Token1Balance,
		CurrentTick:   tick,
		CurrentPrice:  c.CurrentPrice,
		Fees0:         c.Position.FeesEarned0,
		Fees1:         c.Position.FeesEarned1,
	}
}

// record counts the action, applies repeat dampening and appends to history.
func (e *Engine) record(s *types.MarketState, d types.Decision, v types.FeatureVector) types.DecisionRecord {
	if c, ok := e.actions[d.Action]; ok {
		c.Add(1)
	}
	if state.PushUniform(e.recent, d.Action) {
		d.Confidence *= e.params.RepeatDampening
		d.Metadata["repeat_dampened"] = true
		e.log.Debug().
			Str("action", string(d.Action)).
			Int("window", e.recent.Cap()).
			Msg("Recent actions uniform, confidence dampened")
	}

	rec := types.DecisionRecord{
		ID:         uuid.New().String(),
		PoolID:     s.PoolID,
		PositionID: string(s.Position.ID),
		Features:   v.Slice(),
		Decision:   d,
		RecordedAt: e.now(),
	}
	e.history.Push(rec)
	return rec
}

// fail builds the fallback decision for err and reports it to observers.
func (e *Engine) fail(s *types.MarketState, err error, start time.Time) types.Decision {
	e.errs.Add(1)
	e.log.Error().Err(err).Msg("Decision failed, returning safe fallback")

	d := Fallback(err, e.params.MinConfidence, e.now())
	if c, ok := e.actions[d.Action]; ok {
		c.Add(1)
	}

	rec := types.DecisionRecord{ID: uuid.New().String(), Decision: d, RecordedAt: d.Timestamp}
	if s != nil {
		rec.PoolID = s.PoolID
		if s.Position != nil {
			rec.PositionID = string(s.Position.ID)
		}
	}
	e.notify(rec, Outcome{
		Source:   SourceFallback,
		Risk:     types.RiskAssessment{Level: types.RiskHigh, Score: 1},
		Duration: e.now().Sub(start),
	})
	return d
}

// Fallback is the decision returned when no real decision can be made.
func Fallback(err error, confidence float64, at time.Time) types.Decision {
	return types.Decision{
		Action:     types.ActionHold,
		Confidence: confidence,
		Score:      0,
		Reason:     types.ReasonErrorPrefix + err.Error(),
		RiskLevel:  types.RiskHigh,
		Metadata: map[string]any{
			"fallback": true,
			"error":    true,
		},
		Timestamp: at,
	}
}

func (e *Engine) notify(rec types.DecisionRecord, out Outcome) {
	for _, o := range e.observers {
		o.ObserveDecision(rec, out)
	}
}

// DecideBatch decides every snapshot with at most limit calls in flight. Results keep the
// input order. limit <= 0 uses a default.
func (e *Engine) DecideBatch(ctx context.Context, states []*types.MarketState, limit int) []types.Decision {
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}
	out := make([]types.Decision, len(states))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, s := range states {
		i, s := i, s
		g.Go(func() error {
			out[i] = e.Decide(gctx, s)
			return nil
		})
	}
	_ = g.Wait()

	e.log.Debug().Int("count", len(states)).Int("limit", limit).Msg("Batch decided")
	return out
}

// History returns up to n of the newest decisions, newest first.
func (e *Engine) History(n int) []types.DecisionRecord {
	return e.history.Last(n)
}

// Explanation is the intermediate state behind a decision, for inspection.
type Explanation struct {
	Canonical        types.CanonicalState     `json:"canonical"`
	Features         map[string]float64       `json:"features"`
	Risk             types.RiskAssessment     `json:"risk"`
	DynamicThreshold float64                  `json:"dynamic_threshold_pct"`
	HeuristicReward  float64                  `json:"heuristic_reward"`
	HeuristicConf    float64                  `json:"heuristic_confidence"`
	RecommendedRebal *types.RecommendedParams `json:"recommended_rebalance,omitempty"`
	Verdict          *types.RebalanceVerdict  `json:"rebalance_verdict,omitempty"`
}

// Explain runs the analysis steps of Decide without choosing an action or touching history
// and statistics.
func (e *Engine) Explain(s *types.MarketState) (Explanation, error) {
	if err := types.ValidateMarketState(s); err != nil {
		return Explanation{}, err
	}
	c, err := e.conv.Canonicalize(s)
	if err != nil {
		return Explanation{}, err
	}

	v := e.extractor.FromCanonical(c)
	named := make(map[string]float64, types.FeatureCount)
	for i, name := range types.FeatureNames {
		named[name] = v[i]
	}

	reward, conf := e.heuristic(c)
	ex := Explanation{
		Canonical:        c,
		Features:         named,
		Risk:             e.risk.Assess(c),
		DynamicThreshold: e.policy.DynamicThresholdPct(c),
		HeuristicReward:  reward,
		HeuristicConf:    conf,
	}

	params := e.policy.BuildParams(types.ActionRebalance, c)
	if params != nil && params.NewLowerTick != nil && params.NewUpperTick != nil {
		pre := snapshotOf(c)
		post := pre
		post.LowerTick = *params.NewLowerTick
		post.UpperTick = *params.NewUpperTick
		verdict := e.reward.ShouldRebalance(pre, post, c.Pool, analyzer.GasCostEth(c.GasGwei, types.ActionRebalance, e.params))
		ex.RecommendedRebal = params
		ex.Verdict = &verdict
	}
	return ex, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
