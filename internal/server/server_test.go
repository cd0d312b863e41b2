package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/fuellog/internal/server"
	"github.com/ogulcanaydogan/fuellog/pkg/metrics"
	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/storage"
	"github.com/ogulcanaydogan/fuellog/pkg/tracker"
)

type testServer struct {
	srv  *server.Server
	book *tracker.Logbook
}

func setupServer(t *testing.T, seed bool) testServer {
	t.Helper()
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	budget := tracker.NewBudgetManager(store, nil, logger)
	book := tracker.NewLogbook(store, budget, nil, recorder, logger)

	if seed {
		_, err = book.Import(context.Background(), []model.FuelRecord{
			{Date: model.NewDate(2025, 1, 1), OdometerKm: 1000, Liters: 40, PricePerLiter: 20, FullFill: true},
			{Date: model.NewDate(2025, 1, 15), OdometerKm: 1050, Liters: 5, PricePerLiter: 20},
			{Date: model.NewDate(2025, 2, 1), OdometerKm: 1500, Liters: 35, PricePerLiter: 20, FullFill: true},
		})
		require.NoError(t, err)
	}

	srv := server.NewServer(book, budget, server.Options{
		CORSOrigins: []string{"http://localhost:5173"},
		Gatherer:    reg,
	}, logger)
	return testServer{srv: srv, book: book}
}

func (ts testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	ts := setupServer(t, false)

	w := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_ListRecords(t *testing.T) {
	ts := setupServer(t, true)

	w := ts.do(t, http.MethodGet, "/api/v1/records", "")
	require.Equal(t, http.StatusOK, w.Code)

	var records []model.FuelRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	assert.Len(t, records, 3)
	assert.Equal(t, "2025-01-01", records[0].Date.String())
}

func TestServer_ListRecords_Filters(t *testing.T) {
	ts := setupServer(t, true)

	w := ts.do(t, http.MethodGet, "/api/v1/records?from=2025-01-10&full_only=true", "")
	require.Equal(t, http.StatusOK, w.Code)

	var records []model.FuelRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, 1500.0, records[0].OdometerKm)

	w = ts.do(t, http.MethodGet, "/api/v1/records?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/records?limit=-2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_AddRecord(t *testing.T) {
	ts := setupServer(t, true)

	body := `{"date":"2025-03-01","odometer_km":2000,"liters":30,"price_per_liter":19.5,"full_fill":true}`
	w := ts.do(t, http.MethodPost, "/api/v1/records", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var result tracker.AddResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.NotEmpty(t, result.Record.ID)
	require.NotNil(t, result.Closed)
	assert.Equal(t, 500.0, result.Closed.DistanceKm)
	l100, ok := result.Closed.LitersPer100Km.Value()
	require.True(t, ok)
	assert.InDelta(t, 6.0, l100, 1e-9)
}

func TestServer_AddRecord_Invalid(t *testing.T) {
	ts := setupServer(t, false)

	w := ts.do(t, http.MethodPost, "/api/v1/records", `{"date":"2025-03-01","odometer_km":2000,"liters":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Invalid record", resp.Error)

	w = ts.do(t, http.MethodPost, "/api/v1/records", `{"date":"01/03/2025"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/records", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_DeleteRecord(t *testing.T) {
	ts := setupServer(t, true)

	records, err := ts.book.Records(context.Background(), model.RecordFilter{})
	require.NoError(t, err)

	w := ts.do(t, http.MethodDelete, "/api/v1/records/"+records[2].ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/records/"+records[2].ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/cycles/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Cycles(t *testing.T) {
	ts := setupServer(t, true)

	w := ts.do(t, http.MethodGet, "/api/v1/cycles", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cycles []model.Cycle
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cycles))
	require.Len(t, cycles, 1)
	assert.Equal(t, 500.0, cycles[0].DistanceKm)
	assert.Equal(t, 2, cycles[0].FillsCount)

	w = ts.do(t, http.MethodGet, "/api/v1/cycles/latest", "")
	require.Equal(t, http.StatusOK, w.Code)

	var latest model.Cycle
	require.NoError(t, json.NewDecoder(w.Body).Decode(&latest))
	assert.Equal(t, "2025-02-01", latest.EndDate.String())
}

func TestServer_Cycles_Empty(t *testing.T) {
	ts := setupServer(t, false)

	w := ts.do(t, http.MethodGet, "/api/v1/cycles", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestServer_Stats(t *testing.T) {
	ts := setupServer(t, true)

	w := ts.do(t, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats tracker.Stats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 3, stats.RecordCount)
	assert.Equal(t, 1, stats.Aggregate.Overall.CycleCount)
	avg, ok := stats.Aggregate.Overall.AvgLitersPer100Km.Value()
	require.True(t, ok)
	assert.InDelta(t, 8.0, avg, 1e-9)
}

func TestServer_Months(t *testing.T) {
	ts := setupServer(t, true)

	w := ts.do(t, http.MethodGet, "/api/v1/months", "")
	require.Equal(t, http.StatusOK, w.Code)

	var months []model.MonthSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&months))
	require.Len(t, months, 2)
	assert.Equal(t, "2025-01", months[0].Key())
	assert.Equal(t, 500.0, months[1].EstimatedDistanceKm)

	w = ts.do(t, http.MethodGet, "/api/v1/months/2025/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var jan model.MonthSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&jan))
	assert.Equal(t, 2, jan.Fills)
	assert.InDelta(t, 900.0, jan.Cost, 1e-9)

	w = ts.do(t, http.MethodGet, "/api/v1/months/2025/13", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Series(t *testing.T) {
	ts := setupServer(t, true)

	w := ts.do(t, http.MethodGet, "/api/v1/series", "")
	require.Equal(t, http.StatusOK, w.Code)

	var series []model.SeriesPoint
	require.NoError(t, json.NewDecoder(w.Body).Decode(&series))
	require.Len(t, series, 1)
	assert.InDelta(t, 8.0, series[0].LitersPer100Km, 1e-9)
}

func TestServer_Budgets(t *testing.T) {
	ts := setupServer(t, false)

	w := ts.do(t, http.MethodGet, "/api/v1/budgets", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	ts := setupServer(t, true)

	w := ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fuellog_records_added_total{full_fill="true"} 2`)
}

func TestServer_CORS(t *testing.T) {
	ts := setupServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/records", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
