package state

import (
	"context"
	"fmt"
	"time"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// ActionSummary aggregates stored decisions for one action.
type ActionSummary struct {
	Action        string  `db:"action" json:"action"`
	Count         int64   `db:"count" json:"count"`
	AvgConfidence float64 `db:"avg_confidence" json:"avg_confidence"`
	AvgReward     float64 `db:"avg_reward" json:"avg_expected_reward"`
	Blocked       int64   `db:"blocked" json:"safety_blocked"`
}

// ActionSummaries groups decisions recorded since the given time by action.
func (s *DecisionStore) ActionSummaries(ctx context.Context, since time.Time) ([]ActionSummary, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT action,
		       COUNT(*) AS count,
		       COALESCE(AVG(confidence), 0) AS avg_confidence,
		       COALESCE(AVG(expected_reward), 0) AS avg_reward,
		       COUNT(*) FILTER (WHERE position($2 IN reason) > 0) AS blocked
		FROM decisions
		WHERE recorded_at >= $1
		GROUP BY action
		ORDER BY action`

	var summaries []ActionSummary
	if err := s.db.SelectContext(ctx, &summaries, query, since, types.SafetyBlockedSuffix); err != nil {
		return nil, fmt.Errorf("failed to query action summaries: %w", err)
	}
	return summaries, nil
}
