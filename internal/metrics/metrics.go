/*

This file contains the Prometheus metrics for the decision engine and its HTTP surface.

Every metric lives on the Registry's own prometheus.Registry so several registries can
coexist in one process (tests, multiple engines).

*/

package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/engine"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const namespace = "clmm"

// Registry holds all Prometheus metrics and implements engine.Observer.
type Registry struct {
	reg *prometheus.Registry
	log zerolog.Logger

	Decisions       *prometheus.CounterVec
	SafetyBlocks    prometheus.Counter
	DecisionErrors  prometheus.Counter
	DecisionLatency prometheus.Histogram
	Confidence      prometheus.Gauge
	RiskScore       prometheus.Histogram
	APIRequests     *prometheus.CounterVec
	StoreFailures   prometheus.Counter
}

// NewRegistry creates the metrics and registers them.
func NewRegistry(logger zerolog.Logger) *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		log: logger.With().Str("component", "metrics").Logger(),

		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Decisions returned, by final action and prediction source",
			},
			[]string{"action", "source"},
		),

		SafetyBlocks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "safety_blocks_total",
				Help:      "Decisions vetoed by the safety gate",
			},
		),

		DecisionErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decision_errors_total",
				Help:      "Decisions that fell back to the safe default",
			},
		),

		DecisionLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decision_latency_seconds",
				Help:      "Time spent in a single Decide call",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
			},
		),

		Confidence: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "decision_confidence",
				Help:      "Confidence of the most recent decision",
			},
		),

		RiskScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "risk_score",
				Help:      "Assessed risk score per decision (0 to 1)",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),

		APIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"endpoint", "status"},
		),

		StoreFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_failures_total",
				Help:      "Decision records that could not be persisted",
			},
		),
	}

	r.reg.MustRegister(
		r.Decisions,
		r.SafetyBlocks,
		r.DecisionErrors,
		r.DecisionLatency,
		r.Confidence,
		r.RiskScore,
		r.APIRequests,
		r.StoreFailures,
	)
	return r
}

// Gatherer exposes the underlying registry, e.g. for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveDecision records one engine decision.
func (r *Registry) ObserveDecision(rec types.DecisionRecord, out engine.Outcome) {
	r.Decisions.WithLabelValues(string(rec.Decision.Action), out.Source).Inc()
	r.DecisionLatency.Observe(out.Duration.Seconds())
	r.Confidence.Set(rec.Decision.Confidence)
	r.RiskScore.Observe(out.Risk.Score)

	if out.Blocked {
		r.SafetyBlocks.Inc()
	}
	if out.Source == engine.SourceFallback {
		r.DecisionErrors.Inc()
		r.log.Debug().Str("reason", rec.Decision.Reason).Msg("Fallback decision recorded")
	}
}

// RecordRequest counts one HTTP request.
func (r *Registry) RecordRequest(endpoint string, status int) {
	r.APIRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}
