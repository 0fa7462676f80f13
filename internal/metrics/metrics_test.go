package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/engine"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

func TestObserveDecision(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	rec := types.DecisionRecord{Decision: types.Decision{Action: types.ActionHold, Confidence: 0.42}}
	r.ObserveDecision(rec, engine.Outcome{
		Source:   engine.SourceHeuristic,
		Blocked:  true,
		Risk:     types.RiskAssessment{Score: 0.2},
		Duration: 3 * time.Millisecond,
	})
	r.ObserveDecision(rec, engine.Outcome{Source: engine.SourceFallback})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Decisions.WithLabelValues("hold", "heuristic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Decisions.WithLabelValues("hold", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SafetyBlocks))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DecisionErrors))
	assert.Equal(t, 0.42, testutil.ToFloat64(r.Confidence))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.RecordRequest("/api/decide", http.StatusOK)

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `clmm_api_requests_total{endpoint="/api/decide",status="200"} 1`)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry(zerolog.Nop())
	b := NewRegistry(zerolog.Nop())
	a.SafetyBlocks.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.SafetyBlocks))
	assert.Zero(t, testutil.ToFloat64(b.SafetyBlocks))
}
