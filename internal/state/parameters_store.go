// ./internal/state/parameters_store.go
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// ParametersStore keeps versioned engine parameter sets so a running fleet can be retuned
// without a redeploy.
type ParametersStore struct {
	db      *sqlx.DB
	timeout time.Duration
	log     zerolog.Logger
}

func NewParametersStore(db *sqlx.DB, timeout time.Duration, logger zerolog.Logger) *ParametersStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ParametersStore{db: db, timeout: timeout, log: logger}
}

// Save stores a new version of the parameters, optionally making it the active set.
func (s *ParametersStore) Save(ctx context.Context, params types.EngineParameters, configName string, version int, makeActive bool) (id int64, err error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal parameters: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE engine_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE`
		if _, err = tx.ExecContext(ctx, stmtDeactivate, configName); err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	now := time.Now().UTC()
	stmt := `
		INSERT INTO engine_parameters (version, config_name, is_active, activated_at, created_at, params)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING params_id`
	if err = tx.QueryRowxContext(ctx, stmt, version, configName, makeActive, now, now, paramsJSON).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert parameters %s v%d: %w", configName, version, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit parameters: %w", err)
	}

	s.log.Info().
		Int64("params_id", id).
		Str("config_name", configName).
		Int("version", version).
		Bool("active", makeActive).
		Msg("Engine parameters saved")
	return id, nil
}

// Active loads the active parameter set for configName layered over base, so fields
// added since the set was stored keep their base values. Returns types.ErrNotFound when
// no set is active.
func (s *ParametersStore) Active(ctx context.Context, configName string, base types.EngineParameters) (types.EngineParameters, int, error) {
	if s.db == nil {
		return base, 0, fmt.Errorf("database not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT version, params
		FROM engine_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1`

	var (
		version    int
		paramsJSON []byte
	)
	if err := s.db.QueryRowxContext(ctx, query, configName).Scan(&version, &paramsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return base, 0, fmt.Errorf("active parameters for %s: %w", configName, types.ErrNotFound)
		}
		return base, 0, fmt.Errorf("failed to load active parameters for %s: %w", configName, err)
	}

	out := base
	out.GasLimits = make(map[types.Action]uint64, len(base.GasLimits))
	for k, v := range base.GasLimits {
		out.GasLimits[k] = v
	}
	if err := json.Unmarshal(paramsJSON, &out); err != nil {
		return base, 0, fmt.Errorf("failed to decode parameters for %s v%d: %w", configName, version, err)
	}
	return out, version, nil
}
