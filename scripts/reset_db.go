package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/config"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/logger"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/state"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	cfg, err := config.Load(os.Getenv("CLMM_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Logger = logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	if envErr != nil {
		log.Warn().Msg("Warning: .env file not found or error loading .env file. Relying on OS environment variables.")
	}
	log.Info().Msg("Starting database reset script...")

	ctx := context.Background()

	log.Info().
		Str("host", cfg.DB.Host).
		Int("port", cfg.DB.Port).
		Str("user", cfg.DB.User).
		Str("dbname", cfg.DB.DBName).
		Msg("Connecting to database")

	db, err := state.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database connection")
	}
	defer db.Close()

	log.Info().Msg("Connected to database. Attempting to drop all tables...")

	// Drop all tables - this is the "reset" part
	dropTablesQuery := `
		DROP TABLE IF EXISTS decisions CASCADE;
		DROP TABLE IF EXISTS engine_parameters CASCADE;
	`
	if _, err := db.ExecContext(ctx, dropTablesQuery); err != nil {
		log.Fatal().Err(err).Msg("Failed to drop tables")
	}
	log.Info().Msg("Successfully dropped all tables")

	log.Info().Msg("Recreating database schema...")
	if err := state.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to recreate database schema")
	}
	log.Info().Msg("Database reset complete!")
}
