package tracker_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/fuellog/pkg/alerts"
	"github.com/ogulcanaydogan/fuellog/pkg/fuel"
	"github.com/ogulcanaydogan/fuellog/pkg/metrics"
	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/storage"
	"github.com/ogulcanaydogan/fuellog/pkg/tracker"
)

type fixture struct {
	book    *tracker.Logbook
	store   storage.Storage
	capture *captureNotifier
	reg     *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := newTestStore(t)
	capture := &captureNotifier{}
	notifiers := []alerts.Notifier{capture}

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	budget := tracker.NewBudgetManager(store, notifiers, testLogger())
	book := tracker.NewLogbook(store, budget, notifiers, recorder, testLogger())
	return fixture{book: book, store: store, capture: capture, reg: reg}
}

func record(date string, odo, liters, price float64, full bool) model.FuelRecord {
	d, err := model.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return model.FuelRecord{Date: d, OdometerKm: odo, Liters: liters, PricePerLiter: price, FullFill: full}
}

func TestLogbook_Add_ClosesCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.book.Add(ctx, record("2025-01-01", 1000, 40, 20, true))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Record.ID)
	assert.Nil(t, res.Closed)

	res, err = f.book.Add(ctx, record("2025-01-15", 1050, 5, 20, false))
	require.NoError(t, err)
	assert.Nil(t, res.Closed)

	res, err = f.book.Add(ctx, record("2025-02-01", 1500, 35, 20, true))
	require.NoError(t, err)
	require.NotNil(t, res.Closed)
	assert.Equal(t, 500.0, res.Closed.DistanceKm)
	l100, ok := res.Closed.LitersPer100Km.Value()
	require.True(t, ok)
	assert.InDelta(t, 8.0, l100, 1e-9)

	expected := `
# HELP fuellog_records_added_total Fuel records added, by fill type
# TYPE fuellog_records_added_total counter
fuellog_records_added_total{full_fill="false"} 1
fuellog_records_added_total{full_fill="true"} 2
`
	require.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "fuellog_records_added_total"))
	assert.Empty(t, f.capture.sent())
}

func TestLogbook_Add_Normalizes(t *testing.T) {
	f := newFixture(t)

	r := record("2025-01-01", 1000.04, 40.12345, 19.4999, true)
	r.Notes = "  E10  "
	res, err := f.book.Add(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.Record.OdometerKm)
	assert.Equal(t, 40.123, res.Record.Liters)
	assert.Equal(t, 19.5, res.Record.PricePerLiter)
	assert.Equal(t, "E10", res.Record.Notes)
}

func TestLogbook_Add_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.Add(ctx, record("2025-01-01", 1000, 0, 20, true))
	assert.ErrorIs(t, err, fuel.ErrNonPositiveLiters)

	_, err = f.book.Add(ctx, record("2025-01-01", -1, 10, 20, true))
	assert.ErrorIs(t, err, fuel.ErrNegativeOdometer)

	_, err = f.book.Add(ctx, model.FuelRecord{OdometerKm: 1, Liters: 1})
	assert.ErrorIs(t, err, fuel.ErrInvalidDate)

	records, err := f.book.Records(ctx, model.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLogbook_Add_OdometerRegressionAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.Add(ctx, record("2025-01-01", 1000, 40, 20, true))
	require.NoError(t, err)
	res, err := f.book.Add(ctx, record("2025-01-10", 900, 30, 20, true))
	require.NoError(t, err)

	require.NotNil(t, res.Closed)
	assert.True(t, res.Closed.OdometerRegression)

	sent := f.capture.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, alerts.KindDataQuality, sent[0].Kind)
	require.NotNil(t, sent[0].Cycle)
	assert.Equal(t, -100.0, sent[0].Cycle.DistanceKm)

	expected := `
# HELP fuellog_odometer_regressions_total Cycles closed with an odometer reading below their start
# TYPE fuellog_odometer_regressions_total counter
fuellog_odometer_regressions_total 1
`
	require.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "fuellog_odometer_regressions_total"))
}

func TestLogbook_Add_BackdatedFill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.Add(ctx, record("2025-01-01", 1000, 40, 20, true))
	require.NoError(t, err)
	_, err = f.book.Add(ctx, record("2025-03-01", 2000, 40, 20, true))
	require.NoError(t, err)

	// inserted between the two existing full fills
	res, err := f.book.Add(ctx, record("2025-02-01", 1400, 30, 20, true))
	require.NoError(t, err)
	require.NotNil(t, res.Closed)
	assert.Equal(t, 400.0, res.Closed.DistanceKm)

	cycles, err := f.book.Cycles(ctx)
	require.NoError(t, err)
	require.Len(t, cycles, 2)
	assert.Equal(t, 600.0, cycles[1].DistanceKm)
}

func TestLogbook_Add_TriggersBudgetAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetBudget(ctx, &model.Budget{
		Name:              "daily",
		Limit:             100,
		Period:            model.PeriodDaily,
		AlertThresholdPct: 50,
	}))

	today := model.DateOf(time.Now().UTC())
	_, err := f.book.Add(ctx, model.FuelRecord{Date: today, OdometerKm: 1000, Liters: 6, PricePerLiter: 10})
	require.NoError(t, err)

	sent := f.capture.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, alerts.KindBudget, sent[0].Kind)
	assert.Equal(t, alerts.AlertWarning, sent[0].Level)
}

func TestLogbook_Import(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.book.Import(ctx, []model.FuelRecord{
		record("2025-02-01", 1500, 35, 20, true),
		record("2025-01-01", 1000, 40, 20, true),
		record("2025-01-15", 1050, 5, 20, false),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cycles, err := f.book.Cycles(ctx)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, 40.0, cycles[0].LitersUsed)
}

func TestLogbook_Import_RejectsWholeBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.Import(ctx, []model.FuelRecord{
		record("2025-01-01", 1000, 40, 20, true),
		record("2025-01-15", 1050, -5, 20, false),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")

	records, err := f.book.Records(ctx, model.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLogbook_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.Add(ctx, record("2025-01-01", 1000, 40, 20, true))
	require.NoError(t, err)
	res, err := f.book.Add(ctx, record("2025-02-01", 1500, 35, 20, true))
	require.NoError(t, err)

	require.NoError(t, f.book.Delete(ctx, res.Record.ID))
	cycles, err := f.book.Cycles(ctx)
	require.NoError(t, err)
	assert.Empty(t, cycles)

	assert.ErrorIs(t, f.book.Delete(ctx, res.Record.ID), storage.ErrNotFound)
}

func TestLogbook_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.Import(ctx, []model.FuelRecord{
		record("2025-01-01", 1000, 40, 20, true),
		record("2025-01-15", 1050, 5, 20, false),
		record("2025-02-01", 1500, 35, 20, true),
		record("2025-03-01", 2000, 30, 20, true),
	})
	require.NoError(t, err)

	stats, err := f.book.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.RecordCount)
	require.NotNil(t, stats.Latest)
	assert.Equal(t, "2025-03-01", stats.Latest.EndDate.String())
	assert.Equal(t, 2, stats.Aggregate.Overall.CycleCount)

	avg, ok := stats.Aggregate.Overall.AvgLitersPer100Km.Value()
	require.True(t, ok)
	assert.InDelta(t, 7.0, avg, 1e-9) // mean of 8.0 and 6.0
	assert.Empty(t, stats.Anomalies)
}

func TestLogbook_Stats_Empty(t *testing.T) {
	f := newFixture(t)

	stats, err := f.book.Stats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stats.Latest)
	assert.Equal(t, model.ReasonNoCycles, stats.Aggregate.Overall.AvgLitersPer100Km.Reason())
}

func TestLogbook_MonthAndSeries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.Import(ctx, []model.FuelRecord{
		record("2025-01-01", 1000, 40, 20, true),
		record("2025-01-15", 1050, 5, 20, false),
		record("2025-02-01", 1500, 35, 20, true),
	})
	require.NoError(t, err)

	jan, err := f.book.Month(ctx, 2025, time.January)
	require.NoError(t, err)
	assert.Equal(t, 2, jan.Fills)
	assert.InDelta(t, 45.0, jan.Liters, 1e-9)
	assert.Equal(t, 0.0, jan.EstimatedDistanceKm)

	feb, err := f.book.Month(ctx, 2025, time.February)
	require.NoError(t, err)
	assert.Equal(t, 500.0, feb.EstimatedDistanceKm)
	assert.Equal(t, 1, feb.CyclesEnded)

	series, err := f.book.Series(ctx)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.InDelta(t, 8.0, series[0].LitersPer100Km, 1e-9)
}

func TestLogbook_Add_NonFinite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := record("2025-01-01", 1000, 1, 20, true)
	r.Liters = math.Inf(1)
	var err error
	require.NotPanics(t, func() { _, err = f.book.Add(ctx, r) })
	assert.ErrorIs(t, err, fuel.ErrNonPositiveLiters)

	r = record("2025-01-01", math.Inf(1), 10, 20, true)
	require.NotPanics(t, func() { _, err = f.book.Import(ctx, []model.FuelRecord{r}) })
	assert.ErrorIs(t, err, fuel.ErrNegativeOdometer)

	records, err := f.book.Records(ctx, model.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

// failingListStore stores records but fails to read them back.
type failingListStore struct {
	storage.Storage
}

func (s failingListStore) ListRecords(context.Context, model.RecordFilter) ([]model.FuelRecord, error) {
	return nil, errors.New("disk gone")
}

func TestLogbook_Add_CycleRebuildFails(t *testing.T) {
	store := failingListStore{Storage: newTestStore(t)}
	book := tracker.NewLogbook(store, nil, nil, nil, testLogger())
	ctx := context.Background()

	res, err := book.Add(ctx, record("2025-01-01", 1000, 40, 20, true))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Record.ID)
	assert.Nil(t, res.Closed)

	stored, err := store.GetRecord(ctx, res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, stored.OdometerKm)
}
