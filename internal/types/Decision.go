package types

import "time"

type Action string

const (
	ActionHold      Action = "hold"
	ActionRebalance Action = "rebalance"
	ActionReduce    Action = "reduce"
	ActionClose     Action = "close"
)

// AllActions lists every action in a stable order.
var AllActions = []Action{ActionHold, ActionRebalance, ActionReduce, ActionClose}

func (a Action) Valid() bool {
	switch a {
	case ActionHold, ActionRebalance, ActionReduce, ActionClose:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Decision reasons. Safety vetoes append SafetyBlockedSuffix to whichever reason applied.
const (
	ReasonEstimator         = "estimator_ensemble"
	ReasonHeuristic         = "heuristic_rule_based"
	ReasonHeuristicFallback = "heuristic_fallback"
	ReasonErrorPrefix       = "error: "
	SafetyBlockedSuffix     = "_safety_blocked"
)

// RecommendedParams describes how to carry out a non-hold action.
type RecommendedParams struct {
	NewLowerTick      *int    `json:"new_lower_tick,omitempty"`
	NewUpperTick      *int    `json:"new_upper_tick,omitempty"`
	RangePercentage   float64 `json:"range_percentage,omitempty"`
	CurrentTick       *int    `json:"current_tick,omitempty"`
	ReducePercentage  float64 `json:"reduce_percentage,omitempty"`
	CloseFullPosition bool    `json:"close_full_position,omitempty"`
	Reason            string  `json:"reason,omitempty"`
}

type Decision struct {
	Action            Action             `json:"action"`
	Confidence        float64            `json:"confidence"`
	Score             float64            `json:"score"`
	ExpectedReward    float64            `json:"expectedReward"`
	Reason            string             `json:"reason"`
	RiskLevel         RiskLevel          `json:"riskLevel"`
	RecommendedParams *RecommendedParams `json:"recommendedParams,omitempty"`
	Metadata          map[string]any     `json:"metadata"`
	Timestamp         time.Time          `json:"timestamp"`
}

// DecisionRecord is a decision as kept in history and the audit store.
type DecisionRecord struct {
	ID         string    `json:"id" db:"id"`
	PoolID     string    `json:"pool_id" db:"pool_id"`
	PositionID string    `json:"position_id" db:"position_id"`
	Features   []float64 `json:"features,omitempty" db:"-"`
	Decision   Decision  `json:"decision" db:"-"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// EngineStats summarises engine activity since start.
type EngineStats struct {
	TotalDecisions     int64            `json:"total_decisions"`
	EstimatorDecisions int64            `json:"estimator_decisions"`
	HeuristicDecisions int64            `json:"heuristic_decisions"`
	SafetyBlocks       int64            `json:"safety_blocks"`
	Errors             int64            `json:"errors"`
	ActionCounts       map[Action]int64 `json:"action_counts"`
	EstimatorUsagePct  float64          `json:"estimator_usage_pct"`
	BlockRatePct       float64          `json:"block_rate_pct"`
	ErrorRatePct       float64          `json:"error_rate_pct"`
	HasEstimator       bool             `json:"has_estimator"`
	HistorySize        int              `json:"history_size"`
}
