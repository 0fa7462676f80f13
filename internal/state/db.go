// ./internal/state/db.go
package state

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DBConfig holds database connection parameters.
type DBConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	DBName       string        `yaml:"dbname"`
	SSLMode      string        `yaml:"sslmode"` // "disable", "require", "verify-full", etc.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// DSN renders the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Open initializes a PostgreSQL connection pool and verifies it with a ping.
func Open(ctx context.Context, cfg DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := Ping(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("Successfully connected to the PostgreSQL database!")
	return db, nil
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS decisions (
			id UUID PRIMARY KEY,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			pool_id TEXT NOT NULL DEFAULT '',
			position_id TEXT NOT NULL DEFAULT '',
			action VARCHAR(16) NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			expected_reward DOUBLE PRECISION NOT NULL,
			reason TEXT NOT NULL,
			risk_level VARCHAR(16) NOT NULL,
			recommended_params JSONB,
			metadata JSONB,
			features DOUBLE PRECISION[]
		);
		CREATE INDEX IF NOT EXISTS idx_decisions_recorded_at ON decisions(recorded_at DESC);
		CREATE INDEX IF NOT EXISTS idx_decisions_position ON decisions(position_id, recorded_at DESC);
		CREATE INDEX IF NOT EXISTS idx_decisions_action ON decisions(action);

		CREATE TABLE IF NOT EXISTS engine_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			params JSONB NOT NULL,
			CONSTRAINT uq_engine_parameters_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_engine_parameters_config_active ON engine_parameters(config_name, is_active, activated_at DESC);
	`
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured (decisions, engine_parameters).")
	return nil
}

// Ping tests if the database connection is healthy
func Ping(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
