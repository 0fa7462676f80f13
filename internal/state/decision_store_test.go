package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestDecisionStoreSave(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewDecisionStore(db, time.Second, zerolog.Nop())

	lower, upper := -120, 120
	rec := types.DecisionRecord{
		ID:         "6f1c2d44-8a5b-4c1e-9d33-0f4f5a6b7c8d",
		PoolID:     "eth-usdc-3000",
		PositionID: "42",
		Features:   []float64{0.1, 0.2},
		RecordedAt: time.Now().UTC(),
		Decision: types.Decision{
			Action:            types.ActionRebalance,
			Confidence:        0.8,
			Reason:            types.ReasonHeuristic,
			RiskLevel:         types.RiskMedium,
			RecommendedParams: &types.RecommendedParams{NewLowerTick: &lower, NewUpperTick: &upper},
			Metadata:          map[string]any{"risk_score": 0.4},
		},
	}

	mock.ExpectExec("INSERT INTO decisions").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionStoreSavePropagatesError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewDecisionStore(db, time.Second, zerolog.Nop())

	mock.ExpectExec("INSERT INTO decisions").WillReturnError(errors.New("connection reset"))

	err := store.Save(context.Background(), types.DecisionRecord{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDecisionStoreRecent(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewDecisionStore(db, time.Second, zerolog.Nop())

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "recorded_at", "pool_id", "position_id", "action", "confidence", "score",
		"expected_reward", "reason", "risk_level", "recommended_params", "metadata", "features",
	}).AddRow(
		"a1", ts, "pool", "7", "rebalance", 0.82, 0.82, 0.03, "heuristic_rule_based", "low",
		[]byte(`{"new_lower_tick":-60,"new_upper_tick":60}`), []byte(`{"risk_score":0.2}`), "{0.5,1}",
	).AddRow(
		"a2", ts.Add(-time.Minute), "pool", "7", "hold", 0.3, 0.3, 0, "heuristic_rule_based", "medium",
		nil, []byte(`{}`), "{}",
	)

	mock.ExpectQuery("SELECT (.+) FROM decisions").WithArgs(10).WillReturnRows(rows)

	recs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, types.ActionRebalance, recs[0].Decision.Action)
	assert.Equal(t, types.RiskLow, recs[0].Decision.RiskLevel)
	require.NotNil(t, recs[0].Decision.RecommendedParams)
	assert.Equal(t, -60, *recs[0].Decision.RecommendedParams.NewLowerTick)
	assert.Equal(t, []float64{0.5, 1}, recs[0].Features)
	assert.InDelta(t, 0.2, recs[0].Decision.Metadata["risk_score"], 1e-12)
	assert.Nil(t, recs[1].Decision.RecommendedParams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionStoreActionSummaries(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewDecisionStore(db, time.Second, zerolog.Nop())

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"action", "count", "avg_confidence", "avg_reward", "blocked"}).
		AddRow("hold", 12, 0.41, -0.002, 3).
		AddRow("rebalance", 4, 0.77, 0.021, 0)

	mock.ExpectQuery("SELECT action").WithArgs(since, types.SafetyBlockedSuffix).WillReturnRows(rows)

	summaries, err := store.ActionSummaries(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "hold", summaries[0].Action)
	assert.Equal(t, int64(12), summaries[0].Count)
	assert.Equal(t, int64(3), summaries[0].Blocked)
	assert.InDelta(t, 0.77, summaries[1].AvgConfidence, 1e-12)
	assert.NoError(t, mock.ExpectationsWereMet())
}
