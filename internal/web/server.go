package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/engine"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/features"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/metrics"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/state"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const (
	maxBodyBytes     = 1 << 20
	maxBatchSize     = 100
	defaultListLimit = 20
	maxListLimit     = 500
	version          = "1.0.0"
)

// Store is the optional decision audit store.
type Store interface {
	Save(ctx context.Context, rec types.DecisionRecord) error
	Recent(ctx context.Context, limit int) ([]types.DecisionRecord, error)
	ActionSummaries(ctx context.Context, since time.Time) ([]state.ActionSummary, error)
}

// Config holds the dependencies of the web server. Store, Metrics and Ping are optional.
type Config struct {
	Port           string
	Engine         *engine.Engine
	Store          Store
	Metrics        *metrics.Registry
	Ping           func(ctx context.Context) error
	RateLimit      float64 // sustained /api/decide requests per second, <= 0 disables limiting
	RateLimitBurst int
	Logger         zerolog.Logger
}

// WebServer serves the decision API.
type WebServer struct {
	router  *mux.Router
	port    string
	engine  *engine.Engine
	store   Store
	metrics *metrics.Registry
	ping    func(ctx context.Context) error
	limiter *rate.Limiter
	log     zerolog.Logger
	started time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg Config) (*WebServer, error) {
	if cfg.Engine == nil {
		return nil, errors.New("web server requires an engine")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	ws := &WebServer{
		router:  mux.NewRouter(),
		port:    cfg.Port,
		engine:  cfg.Engine,
		store:   cfg.Store,
		metrics: cfg.Metrics,
		ping:    cfg.Ping,
		limiter: rate.NewLimiter(limit, burst),
		log:     cfg.Logger.With().Str("component", "web_server").Logger(),
		started: time.Now(),
	}

	ws.setupRoutes()
	return ws, nil
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")
	if ws.metrics != nil {
		ws.router.Handle("/metrics", ws.metrics.Handler()).Methods("GET")
	}

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/decide", ws.rateLimited(ws.handleDecide)).Methods("POST")
	api.HandleFunc("/decide/batch", ws.rateLimited(ws.handleDecideBatch)).Methods("POST")
	api.HandleFunc("/explain", ws.handleExplain).Methods("POST")
	api.HandleFunc("/stats", ws.handleStats).Methods("GET")
	api.HandleFunc("/decisions", ws.handleDecisions).Methods("GET")
	api.HandleFunc("/analytics", ws.handleAnalytics).Methods("GET")
	api.HandleFunc("/features", ws.handleFeatures).Methods("GET")
	api.HandleFunc("/parameters", ws.handleParameters).Methods("GET")

	ws.router.Use(ws.requestIDMiddleware)
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Handler exposes the router, e.g. for httptest.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	ws.log.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		ws.log.Info().Msg("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := ws.engine.Stats()

	dbStatus := "disabled"
	healthy := true
	if ws.ping != nil {
		if err := ws.ping(r.Context()); err != nil {
			ws.log.Warn().Err(err).Msg("Database health check failed")
			dbStatus = "unreachable"
			healthy = false
		} else {
			dbStatus = "ok"
		}
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !healthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
			"uptime_seconds":   int64(time.Since(ws.started).Seconds()),
		},
		"component": map[string]interface{}{
			"name":    "clmm-decision-engine",
			"version": version,
		},
		"engine": map[string]interface{}{
			"has_estimator":   stats.HasEstimator,
			"total_decisions": stats.TotalDecisions,
			"error_rate_pct":  stats.ErrorRatePct,
			"database":        dbStatus,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleDecide decides a single market snapshot
func (ws *WebServer) handleDecide(w http.ResponseWriter, r *http.Request) {
	var s types.MarketState
	if err := decodeBody(w, r, &s); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid market state: "+err.Error())
		return
	}

	d := ws.engine.Decide(r.Context(), &s)
	ws.writeJSONResponse(w, http.StatusOK, d)
}

type batchRequest struct {
	States []*types.MarketState `json:"states"`
}

// handleDecideBatch decides several snapshots concurrently, preserving order
func (ws *WebServer) handleDecideBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid batch request: "+err.Error())
		return
	}
	if len(req.States) == 0 || len(req.States) > maxBatchSize {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Batch must contain between 1 and "+strconv.Itoa(maxBatchSize)+" states")
		return
	}

	decisions := ws.engine.DecideBatch(r.Context(), req.States, 0)
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"decisions": decisions,
		"count":     len(decisions),
	})
}

// handleExplain returns the analysis behind a snapshot without deciding
func (ws *WebServer) handleExplain(w http.ResponseWriter, r *http.Request) {
	var s types.MarketState
	if err := decodeBody(w, r, &s); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid market state: "+err.Error())
		return
	}

	ex, err := ws.engine.Explain(&s)
	if err != nil {
		var verr *types.ValidationError
		var cerr *types.ConfigurationError
		if errors.As(err, &verr) || errors.As(err, &cerr) {
			ws.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		ws.log.Error().Err(err).Msg("Failed to explain market state")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to explain market state")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, ex)
}

// handleStats returns engine statistics
func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, ws.engine.Stats())
}

// handleDecisions returns recent decisions from memory, or from the store with ?source=store
func (ws *WebServer) handleDecisions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= maxListLimit {
			limit = parsedLimit
		}
	}

	source := r.URL.Query().Get("source")
	var (
		records []types.DecisionRecord
		err     error
	)
	switch source {
	case "store":
		if ws.store == nil {
			ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Decision store is not configured")
			return
		}
		records, err = ws.store.Recent(r.Context(), limit)
		if err != nil {
			ws.log.Error().Err(err).Msg("Failed to get recent decisions")
			ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve decisions")
			return
		}
	default:
		source = "memory"
		records = ws.engine.History(limit)
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"decisions": records,
		"count":     len(records),
		"limit":     limit,
		"source":    source,
	})
}

// handleAnalytics returns stored decisions grouped by action over the last ?hours= (default 24)
func (ws *WebServer) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if ws.store == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Decision store is not configured")
		return
	}

	hours := 24
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		if parsed, err := strconv.Atoi(hoursStr); err == nil && parsed > 0 && parsed <= 24*90 {
			hours = parsed
		}
	}
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	summaries, err := ws.store.ActionSummaries(r.Context(), since)
	if err != nil {
		ws.log.Error().Err(err).Msg("Failed to get action summaries")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve analytics")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"since":   since,
		"hours":   hours,
		"actions": summaries,
	})
}

// handleFeatures returns the canonical feature order
func (ws *WebServer) handleFeatures(w http.ResponseWriter, r *http.Request) {
	names := features.Names()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"features": names,
		"count":    len(names),
	})
}

// handleParameters returns the parameters the engine runs with
func (ws *WebServer) handleParameters(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"parameters": ws.engine.Params(),
		"timestamp":  time.Now().UTC(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		ws.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}
