package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/config"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/engine"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/metrics"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/state"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const calmBody = `{
	"timestamp": 1740830400,
	"poolId": "eth-usdc",
	"currentPrice": "1850",
	"priceUnit": "eth",
	"twap1h": 1848,
	"twap24h": 1845,
	"volatility1h": 0.02,
	"volatility24h": 0.05,
	"poolLiquidity": 5000000,
	"volume24h": 1000000,
	"gasPrice": 30,
	"gasUnit": "gwei",
	"position": {
		"id": 42,
		"lowerTick": -600,
		"upperTick": 600,
		"liquidity": 1000,
		"token0Balance": 2,
		"token1Balance": 3,
		"fees0": 0.01,
		"fees1": 0.04
	},
	"extra": {"currentTick": 0}
}`

type fakeStore struct {
	mu      sync.Mutex
	saved   []types.DecisionRecord
	saveErr error
}

func (f *fakeStore) Save(_ context.Context, rec types.DecisionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]types.DecisionRecord, error) {
	return []types.DecisionRecord{{ID: "stored-1", PoolID: "eth-usdc"}}, nil
}

func (f *fakeStore) ActionSummaries(_ context.Context, _ time.Time) ([]state.ActionSummary, error) {
	return []state.ActionSummary{{Action: "hold", Count: 3, AvgConfidence: 0.4}}, nil
}

type testServer struct {
	ws      *WebServer
	engine  *engine.Engine
	metrics *metrics.Registry
}

func newTestServer(t *testing.T, mutate func(*Config)) testServer {
	t.Helper()
	m := metrics.NewRegistry(zerolog.Nop())
	eng, err := engine.NewEngine(engine.Config{
		Params:    config.DefaultEngineParameters(),
		Logger:    zerolog.Nop(),
		Observers: []engine.Observer{m},
	})
	require.NoError(t, err)

	cfg := Config{Engine: eng, Metrics: m, Logger: zerolog.Nop()}
	if mutate != nil {
		mutate(&cfg)
	}
	ws, err := NewWebServer(cfg)
	require.NoError(t, err)
	return testServer{ws: ws, engine: eng, metrics: m}
}

func (ts testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.ws.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestNewWebServerRequiresEngine(t *testing.T) {
	_, err := NewWebServer(Config{Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/health", "/api/health"} {
		rr := ts.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		body := decodeJSON(t, rr)
		assert.Equal(t, "OK", body["status"])
		assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
	}
}

func TestHealthDegradedWhenDatabaseUnreachable(t *testing.T) {
	ts := newTestServer(t, func(c *Config) {
		c.Ping = func(context.Context) error { return errors.New("connection refused") }
	})

	rr := ts.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "DEGRADED", decodeJSON(t, rr)["status"])
}

func TestDecide(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(http.MethodPost, "/api/decide", calmBody)

	require.Equal(t, http.StatusOK, rr.Code)
	var d types.Decision
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, types.ActionHold, d.Action)
	assert.Equal(t, types.ReasonHeuristic, d.Reason)
	assert.Equal(t, "42", d.Metadata["position_id"])
	assert.EqualValues(t, 1, ts.engine.Stats().TotalDecisions)
}

func TestDecideMalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(http.MethodPost, "/api/decide", `{"currentPrice": 1850,`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, true, decodeJSON(t, rr)["error"])
	assert.Zero(t, ts.engine.Stats().TotalDecisions)
}

func TestDecideInvalidStateReturnsFallback(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(http.MethodPost, "/api/decide", `{"currentPrice": 0, "position": {"lowerTick": 0, "upperTick": 10}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var d types.Decision
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, types.ActionHold, d.Action)
	assert.Equal(t, types.RiskHigh, d.RiskLevel)
	assert.True(t, strings.HasPrefix(d.Reason, types.ReasonErrorPrefix))
}

func TestDecideNaNPriceReturnsFallback(t *testing.T) {
	ts := newTestServer(t, nil)
	body := strings.Replace(calmBody, `"currentPrice": "1850"`, `"currentPrice": "NaN"`, 1)
	require.NotEqual(t, calmBody, body)

	rr := ts.do(http.MethodPost, "/api/decide", body)

	require.Equal(t, http.StatusOK, rr.Code)
	var d types.Decision
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, types.ActionHold, d.Action)
	assert.Equal(t, types.RiskHigh, d.RiskLevel)
	assert.True(t, strings.HasPrefix(d.Reason, types.ReasonErrorPrefix))
	assert.EqualValues(t, 1, ts.engine.Stats().Errors)
}

func TestDecideRateLimited(t *testing.T) {
	ts := newTestServer(t, func(c *Config) {
		c.RateLimit = 0.001
		c.RateLimitBurst = 1
	})

	first := ts.do(http.MethodPost, "/api/decide", calmBody)
	second := ts.do(http.MethodPost, "/api/decide", calmBody)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestDecideBatch(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(http.MethodPost, "/api/decide/batch", `{"states": [`+calmBody+`,`+calmBody+`]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	assert.EqualValues(t, 2, body["count"])

	empty := ts.do(http.MethodPost, "/api/decide/batch", `{"states": []}`)
	assert.Equal(t, http.StatusBadRequest, empty.Code)
}

func TestExplain(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(http.MethodPost, "/api/explain", calmBody)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	assert.Len(t, body["features"], types.FeatureCount)

	bad := ts.do(http.MethodPost, "/api/explain", `{"currentPrice": 1850}`)
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)
}

func TestStatsAndDecisions(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodPost, "/api/decide", calmBody)
	ts.do(http.MethodPost, "/api/decide", calmBody)

	stats := ts.do(http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, stats.Code)
	assert.EqualValues(t, 2, decodeJSON(t, stats)["total_decisions"])

	rr := ts.do(http.MethodGet, "/api/decisions?limit=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "memory", body["source"])
}

func TestDecisionsFromStore(t *testing.T) {
	store := &fakeStore{}
	ts := newTestServer(t, func(c *Config) { c.Store = store })

	rr := ts.do(http.MethodGet, "/api/decisions?source=store", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	assert.Equal(t, "store", body["source"])
	assert.EqualValues(t, 1, body["count"])
}

func TestStoreEndpointsWithoutStore(t *testing.T) {
	ts := newTestServer(t, nil)

	assert.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodGet, "/api/decisions?source=store", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodGet, "/api/analytics", "").Code)
}

func TestAnalytics(t *testing.T) {
	ts := newTestServer(t, func(c *Config) { c.Store = &fakeStore{} })

	rr := ts.do(http.MethodGet, "/api/analytics?hours=6", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	assert.EqualValues(t, 6, body["hours"])
	assert.Len(t, body["actions"], 1)
}

func TestFeaturesAndParameters(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(http.MethodGet, "/api/features", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	assert.EqualValues(t, types.FeatureCount, body["count"])

	params := ts.do(http.MethodGet, "/api/parameters", "")
	require.Equal(t, http.StatusOK, params.Code)
	assert.Contains(t, params.Body.String(), "safety_max_gas_eth")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodPost, "/api/decide", calmBody)

	rr := ts.do(http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `clmm_decisions_total{action="hold",source="heuristic"} 1`)
	assert.Contains(t, rr.Body.String(), `clmm_api_requests_total{endpoint="/api/decide",status="200"} 1`)
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(http.MethodGet, "/api/stats", "")

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
