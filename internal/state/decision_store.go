// ./internal/state/decision_store.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const maxRecentDecisions = 500

// DecisionStore persists decisions for audit and offline analysis.
type DecisionStore struct {
	db      *sqlx.DB
	timeout time.Duration
	log     zerolog.Logger
}

func NewDecisionStore(db *sqlx.DB, timeout time.Duration, logger zerolog.Logger) *DecisionStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DecisionStore{db: db, timeout: timeout, log: logger}
}

// Save writes one decision record. Saving the same ID twice is a no-op.
func (s *DecisionStore) Save(ctx context.Context, rec types.DecisionRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var paramsJSON []byte
	if rec.Decision.RecommendedParams != nil {
		b, err := json.Marshal(rec.Decision.RecommendedParams)
		if err != nil {
			return fmt.Errorf("failed to marshal recommended_params: %w", err)
		}
		paramsJSON = b
	}
	metadataJSON, err := json.Marshal(rec.Decision.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO decisions (
			id, recorded_at, pool_id, position_id, action, confidence, score,
			expected_reward, reason, risk_level, recommended_params, metadata, features
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.RecordedAt, rec.PoolID, rec.PositionID,
		string(rec.Decision.Action), rec.Decision.Confidence, rec.Decision.Score,
		rec.Decision.ExpectedReward, rec.Decision.Reason, string(rec.Decision.RiskLevel),
		paramsJSON, metadataJSON, pq.Array(rec.Features),
	)
	if err != nil {
		return fmt.Errorf("failed to save decision %s: %w", rec.ID, err)
	}

	s.log.Debug().
		Str("decision_id", rec.ID).
		Str("action", string(rec.Decision.Action)).
		Float64("confidence", rec.Decision.Confidence).
		Msg("Decision saved to database")
	return nil
}

// Recent returns the newest decisions, newest first.
func (s *DecisionStore) Recent(ctx context.Context, limit int) ([]types.DecisionRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 || limit > maxRecentDecisions {
		limit = 50
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT id, recorded_at, pool_id, position_id, action, confidence, score,
		       expected_reward, reason, risk_level, recommended_params, metadata, features
		FROM decisions
		ORDER BY recorded_at DESC
		LIMIT $1`

	rows, err := s.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent decisions: %w", err)
	}
	defer rows.Close()

	var records []types.DecisionRecord
	for rows.Next() {
		var (
			rec                      types.DecisionRecord
			action, riskLevel        string
			paramsJSON, metadataJSON []byte
			features                 []float64
		)
		err := rows.Scan(
			&rec.ID, &rec.RecordedAt, &rec.PoolID, &rec.PositionID, &action,
			&rec.Decision.Confidence, &rec.Decision.Score, &rec.Decision.ExpectedReward,
			&rec.Decision.Reason, &riskLevel, &paramsJSON, &metadataJSON, pq.Array(&features),
		)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to scan decision row")
			continue
		}
		rec.Decision.Action = types.Action(action)
		rec.Decision.RiskLevel = types.RiskLevel(riskLevel)
		rec.Decision.Timestamp = rec.RecordedAt
		rec.Features = features
		if len(paramsJSON) > 0 {
			var params types.RecommendedParams
			if err := json.Unmarshal(paramsJSON, &params); err == nil {
				rec.Decision.RecommendedParams = &params
			}
		}
		if len(metadataJSON) > 0 {
			_ = json.Unmarshal(metadataJSON, &rec.Decision.Metadata)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}
	return records, nil
}
