package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedWeather WeatherReport

func (w fixedWeather) Current(context.Context) WeatherReport { return WeatherReport(w) }

func newTestServer(t *testing.T, trained bool) (*Server, *History) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t, KindLinear)
	series := NewRawTable(synthRecords(80, "2016-01-01"))

	var arts *Artifacts
	if trained {
		_, err := Train(context.Background(), cfg, series)
		require.NoError(t, err)
		arts, err = LoadArtifacts(cfg.ArtifactDir)
		require.NoError(t, err)
	}
	hist, err := OpenHistory(filepath.Join(t.TempDir(), "decisions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { hist.Close() })

	return NewServer(cfg, series, arts, hist, fixedWeather{Condition: "Rain", TempC: 15}), hist
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec, _ := do(t, s.Router(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestServer_Sales(t *testing.T) {
	s, _ := newTestServer(t, false)
	r := s.Router()

	rec, body := do(t, r, http.MethodGet, "/api/sales?n=5")
	require.Equal(t, http.StatusOK, rec.Code)
	points := body["points"].([]any)
	require.Len(t, points, 5)
	last := points[4].(map[string]any)
	assert.Equal(t, dayKey(s.series.Dates[79]), last["date"])
	assert.InDelta(t, s.series.Columns[ColSales][79], last["sales"].(float64), 1e-9)

	rec, _ = do(t, r, http.MethodGet, "/api/sales?n=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Weather(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec, body := do(t, s.Router(), http.MethodGet, "/api/weather")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.1, body["modifier"])
	assert.Equal(t, "Rainy (high demand for grocery)", body["reason"])
}

func TestServer_SimulateUntrained(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec, body := do(t, s.Router(), http.MethodPost, "/api/simulate")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body["error"], "not trained")
}

func TestServer_SimulateRecordsDecision(t *testing.T) {
	s, hist := newTestServer(t, true)
	r := s.Router()

	rec, body := do(t, r, http.MethodPost, "/api/simulate")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decision := body["decision"].(map[string]any)
	assert.Equal(t, 1.1, decision["weather_modifier"])
	assert.Contains(t, []any{string(Promote), string(DoNotPromote)}, decision["recommendation"])
	assert.NotEmpty(t, body["summary"])
	id := body["id"].(string)

	recs, err := hist.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, id, recs[0].ID)
	assert.Equal(t, s.arts.Meta.RunID, recs[0].ModelRunID)

	rec, body = do(t, r, http.MethodGet, "/api/decisions?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["decisions"], 1)
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t, true)
	r := s.Router()
	do(t, r, http.MethodPost, "/api/simulate")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "promocast_decisions_total")
}

func TestServer_SimulateWithCondition(t *testing.T) {
	s, _ := newTestServer(t, true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"condition":"Clear"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sunny (low demand / eating out)", body["reason"])
	assert.Equal(t, 0.95, body["decision"].(map[string]any)["weather_modifier"])

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"condition":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
