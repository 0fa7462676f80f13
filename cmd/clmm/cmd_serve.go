package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/config"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/engine"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/estimator"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/metrics"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/state"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/web"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the decision HTTP API",
		Long: `Serve the decision API with Prometheus metrics.

When db.enabled is set, decisions are persisted to PostgreSQL and the active parameter set
stored there overrides the configured engine parameters.

Examples:
  clmm serve
  clmm serve --config clmm.yaml`,
		RunE: runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, root, err := setup()
	if err != nil {
		return err
	}
	root.Info().Str("version", version).Msg("Decision engine starting...")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 1. Database (optional) ---
	var (
		db    *sqlx.DB
		store *state.DecisionStore
	)
	if cfg.DB.Enabled {
		db, err = state.Open(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := state.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to ensure database schema: %w", err)
		}
		store = state.NewDecisionStore(db, cfg.DB.QueryTimeout, root)
		cfg.Engine = activeParameters(ctx, db, cfg, root)
	}

	// --- 2. Estimator (optional) ---
	est, err := loadEstimator(cfg, root)
	if err != nil {
		return err
	}

	// --- 3. Engine ---
	registry := metrics.NewRegistry(root)
	observers := []engine.Observer{registry}
	var persister *web.Persister
	if store != nil {
		persister = web.NewPersister(store, 0, registry, root)
		defer persister.Close()
		observers = append(observers, persister)
	}

	eng, err := engine.NewEngine(engine.Config{
		Params:    cfg.Engine,
		Logger:    root,
		Estimator: est,
		Observers: observers,
	})
	if err != nil {
		return err
	}

	// --- 4. Web server ---
	webCfg := web.Config{
		Port:           strconv.Itoa(cfg.Web.Port),
		Engine:         eng,
		Metrics:        registry,
		RateLimit:      cfg.Web.RateLimitPerSec,
		RateLimitBurst: cfg.Web.RateLimitBurst,
		Logger:         root,
	}
	if store != nil {
		webCfg.Store = store
		webCfg.Ping = func(ctx context.Context) error { return state.Ping(ctx, db) }
	}
	server, err := web.NewWebServer(webCfg)
	if err != nil {
		return err
	}

	root.Info().
		Int("port", cfg.Web.Port).
		Str("url", "http://localhost:"+strconv.Itoa(cfg.Web.Port)).
		Bool("estimator", est != nil).
		Bool("database", store != nil).
		Msg("Starting decision API")
	return server.Start(ctx)
}

// activeParameters returns the stored active parameter set, seeding the store with the
// configured parameters when none is active yet.
func activeParameters(ctx context.Context, db *sqlx.DB, cfg *config.Config, root zerolog.Logger) types.EngineParameters {
	ps := state.NewParametersStore(db, cfg.DB.QueryTimeout, root)
	params, ver, err := ps.Active(ctx, DEFAULT_PARAMETERS_CONFIG_NAME, cfg.Engine)
	switch {
	case err == nil:
		root.Info().Int("version", ver).Msg("Active engine parameters loaded from database")
		return params
	case errors.Is(err, types.ErrNotFound):
		root.Warn().Msg("No active engine parameters stored, saving configured defaults")
		if _, err := ps.Save(ctx, cfg.Engine, DEFAULT_PARAMETERS_CONFIG_NAME, 1, true); err != nil {
			root.Error().Err(err).Msg("Failed to save initial engine parameters")
		}
	default:
		root.Error().Err(err).Msg("Failed to load active engine parameters, using configuration")
	}
	return cfg.Engine
}

// loadEstimator returns the guarded model ensemble, or nil when no model is configured or the
// artifact does not exist. An artifact that fails verification is an error.
func loadEstimator(cfg *config.Config, root zerolog.Logger) (estimator.Estimator, error) {
	if cfg.Model.Path == "" {
		root.Info().Msg("No model configured, decisions use the heuristic")
		return nil, nil
	}

	model, err := estimator.LoadModel(cfg.Model.Path, cfg.Model.AllowUnverified, root)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			root.Warn().Str("path", cfg.Model.Path).Msg("Model artifact not found, decisions use the heuristic")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	ensemble := model.Ensemble(root)
	root.Info().
		Str("path", cfg.Model.Path).
		Int("members", ensemble.Size()).
		Int("samples", model.Samples).
		Msg("Model loaded")

	return estimator.NewGuarded(ensemble, estimator.GuardOptions{
		Timeout:        cfg.Engine.EstimatorTimeout,
		BreakerTimeout: cfg.Model.BreakerTimeout,
	}, root), nil
}
