package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrowatch/sentiment-etl/internal/adapter/httpapi"
	"github.com/metrowatch/sentiment-etl/internal/aggregate"
	"github.com/metrowatch/sentiment-etl/internal/domain"
	"github.com/metrowatch/sentiment-etl/internal/pipeline"
	"github.com/metrowatch/sentiment-etl/internal/store"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type mockRunner struct {
	result   pipeline.CycleResult
	readyErr error
}

func (m *mockRunner) RunCycle(_ context.Context) pipeline.CycleResult { return m.result }
func (m *mockRunner) CheckReadiness(_ context.Context) error          { return m.readyErr }

func testCorrector() *domain.Corrector {
	return domain.NewCorrector(map[string]domain.Calibration{
		domain.SourceTwitter: {AdjustmentFactor: 0.7, BaselineNegativity: -0.35},
	})
}

func newTestServer(t *testing.T, st store.Store, runner *mockRunner) *httpapi.Server {
	t.Helper()
	clock := clockwork.NewFakeClockAt(now)
	return httpapi.NewServer(":0", aggregate.New(st, clock), st, runner, testCorrector(), clock, slog.Default())
}

func seededStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AppendRecords(ctx, []domain.SentimentRecord{
		{
			ID: "twitter-aaa", Source: domain.SourceTwitter,
			Text: "Robbery near Ikeja market", RawSentiment: -0.4, AdjustedSentiment: -0.6,
			Location: "Ikeja", Timestamp: now.Add(-time.Hour), Confidence: 0.8,
			Category: domain.CategoryCrime, Language: domain.LanguageEnglish,
		},
		{
			ID: "news-bbb", Source: domain.SourceNews,
			Text: "Traffic easing in Yaba", RawSentiment: 0.1, AdjustedSentiment: 0.2,
			Location: "Yaba", Timestamp: now.Add(-2 * time.Hour), Confidence: 0.85,
			Category: domain.CategoryTraffic, Language: domain.LanguageEnglish,
		},
	}))
	require.NoError(t, s.AppendAlerts(ctx, []domain.Alert{
		{
			ID: "alert-1", Area: "Ikeja",
			Message: "Crime-related concerns significantly elevated in Ikeja (3 reports)",
			Severity: domain.SeverityHigh, Confidence: 0.81234, AlertType: domain.CategoryCrime,
			Timestamp: now.Add(-time.Hour),
		},
	}))
	return s
}

func get(t *testing.T, srv *httpapi.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func post(t *testing.T, srv *httpapi.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{})
	rec := get(t, srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{})
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)

	srv = newTestServer(t, store.NewMemoryStore(), &mockRunner{readyErr: errors.New("warming up")})
	rec := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "warming up", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{})
	rec := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAPIHealth(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{})
	rec := get(t, srv, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, now.Format(time.RFC3339), body["timestamp"])
}

func TestCurrentSentiment(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &mockRunner{})
	rec := get(t, srv, "/api/sentiment/current")

	assert.Equal(t, http.StatusOK, rec.Code)

	var status aggregate.OverallStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 2, status.TotalSources)
	assert.Equal(t, 1, status.ActiveAlerts)
	assert.InDelta(t, -0.2, status.OverallSentiment, 1e-9)
}

func TestCurrentSentiment_NoData(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{})
	rec := get(t, srv, "/api/sentiment/current")

	assert.Equal(t, http.StatusOK, rec.Code)

	var status aggregate.OverallStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "no_data", status.Status)
}

func TestAreaSentiment(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &mockRunner{})
	rec := get(t, srv, "/api/sentiment/area/Ikeja")

	assert.Equal(t, http.StatusOK, rec.Code)

	var detail aggregate.AreaDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Ikeja", detail.Area)
	assert.Equal(t, 1, detail.Sources)
	require.Len(t, detail.RecentItems, 1)
	assert.Equal(t, "twitter-aaa", detail.RecentItems[0].ID)
}

func TestAreaSentiment_UnknownArea(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &mockRunner{})
	rec := get(t, srv, "/api/sentiment/area/Atlantis")

	assert.Equal(t, http.StatusOK, rec.Code)

	var detail aggregate.AreaDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Atlantis", detail.Area)
	assert.Zero(t, detail.Sources)
	assert.Empty(t, detail.RecentItems)
}

func TestAreas(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &mockRunner{})
	rec := get(t, srv, "/api/areas")

	assert.Equal(t, http.StatusOK, rec.Code)

	var areas []aggregate.AreaSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &areas))
	require.Len(t, areas, 2)
	// Worst sentiment first.
	assert.Equal(t, "Ikeja", areas[0].Area)
	assert.Equal(t, "Yaba", areas[1].Area)
}

func TestWeeklyTrends(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &mockRunner{})
	rec := get(t, srv, "/api/trends/weekly")

	assert.Equal(t, http.StatusOK, rec.Code)

	var trends []aggregate.TrendPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trends))
	require.Len(t, trends, 1)
	assert.Equal(t, "2024-03-15", trends[0].Date)
	assert.Equal(t, 1, trends[0].Incidents)
}

func TestSources(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &mockRunner{})
	rec := get(t, srv, "/api/sources")

	assert.Equal(t, http.StatusOK, rec.Code)

	var sources []aggregate.SourceStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sources))
	require.Len(t, sources, 2)
	assert.Equal(t, "News", sources[0].Name)
	assert.InDelta(t, 50, sources[0].Percentage, 1e-9)
}

func TestActiveAlerts(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &mockRunner{})
	rec := get(t, srv, "/api/alerts/active")

	assert.Equal(t, http.StatusOK, rec.Code)

	var alerts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "alert-1", alerts[0]["id"])
	assert.Equal(t, "high", alerts[0]["severity"])
	assert.Equal(t, "crime", alerts[0]["type"])
	assert.Equal(t, "11:00", alerts[0]["time"])
	assert.InDelta(t, 0.812, alerts[0]["confidence"].(float64), 1e-9)
}

func TestResolveAlert(t *testing.T) {
	st := seededStore(t)
	srv := newTestServer(t, st, &mockRunner{})

	assert.Equal(t, http.StatusNoContent, post(t, srv, "/api/alerts/alert-1/resolve").Code)

	rec := get(t, srv, "/api/alerts/active")
	var alerts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	assert.Empty(t, alerts)

	assert.Equal(t, http.StatusNotFound, post(t, srv, "/api/alerts/nope/resolve").Code)
}

func TestRunAnalysis(t *testing.T) {
	runner := &mockRunner{result: pipeline.CycleResult{
		ProcessedItems:  18,
		AlertsGenerated: 2,
		Status:          pipeline.StatusSuccess,
		Timestamp:       now,
	}}
	srv := newTestServer(t, store.NewMemoryStore(), runner)
	rec := post(t, srv, "/api/analysis/run")

	assert.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.CycleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 18, result.ProcessedItems)
	assert.Equal(t, 2, result.AlertsGenerated)
	assert.Equal(t, pipeline.StatusSuccess, result.Status)
}

func TestBiasCorrection(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{})
	rec := get(t, srv, "/api/bias/correction/twitter")

	assert.Equal(t, http.StatusOK, rec.Code)

	var info domain.CorrectionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "twitter", info.Source)
	assert.InDelta(t, 0.7, info.AdjustmentFactor, 1e-9)
	assert.InDelta(t, -0.35, info.BaselineNegativity, 1e-9)
	assert.Contains(t, info.Description, "30%")
}

func TestBiasCorrection_UnknownSource(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{})
	rec := get(t, srv, "/api/bias/correction/carrier-pigeon")

	assert.Equal(t, http.StatusOK, rec.Code)

	var info domain.CorrectionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.InDelta(t, 1.0, info.AdjustmentFactor, 1e-9)
	assert.InDelta(t, -0.2, info.BaselineNegativity, 1e-9)
	assert.Equal(t, "Unknown bias pattern", info.Description)
}
