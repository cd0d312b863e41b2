package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

func TestPeriodBounds_Daily(t *testing.T) {
	start, end := model.PeriodBounds(model.PeriodDaily)
	assert.False(t, start.IsZero())
	assert.Equal(t, 24*time.Hour, end.Sub(start.Time))
	assert.Equal(t, 0, start.Hour())
}

func TestPeriodBoundsAt_Weekly(t *testing.T) {
	// Wednesday
	now := time.Date(2025, 8, 27, 15, 0, 0, 0, time.UTC)
	start, end := model.PeriodBoundsAt(model.PeriodWeekly, now)
	assert.Equal(t, "2025-08-25", start.String())
	assert.Equal(t, "2025-09-01", end.String())
}

func TestPeriodBoundsAt_WeeklySunday(t *testing.T) {
	now := time.Date(2025, 8, 31, 9, 0, 0, 0, time.UTC)
	start, _ := model.PeriodBoundsAt(model.PeriodWeekly, now)
	assert.Equal(t, "2025-08-25", start.String())
}

func TestPeriodBoundsAt_Monthly(t *testing.T) {
	now := time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC)
	start, end := model.PeriodBoundsAt(model.PeriodMonthly, now)
	assert.Equal(t, "2025-12-01", start.String())
	assert.Equal(t, "2026-01-01", end.String())
}

func TestPeriodBounds_Default(t *testing.T) {
	start, end := model.PeriodBounds("unknown")
	assert.Equal(t, 24*time.Hour, end.Sub(start.Time))
}

func TestBudgetPeriod_Valid(t *testing.T) {
	assert.True(t, model.PeriodWeekly.Valid())
	assert.False(t, model.BudgetPeriod("yearly").Valid())
}

func TestDate_JSON(t *testing.T) {
	d := model.NewDate(2025, time.January, 15)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-15"`, string(data))

	var got model.Date
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Equal(d.Time))

	assert.Error(t, json.Unmarshal([]byte(`"15/01/2025"`), &got))
}

func TestDate_SameMonth(t *testing.T) {
	d := model.NewDate(2025, time.February, 28)
	assert.True(t, d.SameMonth(2025, time.February))
	assert.False(t, d.SameMonth(2024, time.February))
}

func TestRate(t *testing.T) {
	r := model.Available(8)
	v, ok := r.Value()
	assert.True(t, ok)
	assert.Equal(t, 8.0, v)
	assert.Equal(t, model.UnavailableReason(""), r.Reason())
	assert.Equal(t, "8.00", r.Format("%.2f"))

	u := model.Unavailable(model.ReasonZeroDistance)
	_, ok = u.Value()
	assert.False(t, ok)
	assert.Equal(t, model.ReasonZeroDistance, u.Reason())
	assert.Equal(t, "n/a", u.Format("%.2f"))

	var zero model.Rate
	assert.False(t, zero.IsAvailable())
}

func TestRate_JSON(t *testing.T) {
	data, err := json.Marshal(model.Unavailable(model.ReasonNegativeDistance))
	require.NoError(t, err)
	assert.JSONEq(t, `{"available":false,"reason":"negative_distance"}`, string(data))

	data, err = json.Marshal(model.Available(0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"available":true,"value":0}`, string(data))

	var r model.Rate
	require.NoError(t, json.Unmarshal([]byte(`{"available":true,"value":6.5}`), &r))
	v, ok := r.Value()
	assert.True(t, ok)
	assert.Equal(t, 6.5, v)

	assert.Error(t, json.Unmarshal([]byte(`{"available":true}`), &r))
}

func TestAggregate_Month(t *testing.T) {
	agg := model.Aggregate{Months: []model.MonthSummary{
		{MonthTotals: model.MonthTotals{Year: 2025, Month: time.March, Liters: 30, Fills: 1}},
	}}

	got := agg.Month(2025, time.March)
	assert.Equal(t, 30.0, got.Liters)

	empty := agg.Month(2025, time.April)
	assert.Equal(t, 0, empty.Fills)
	assert.Equal(t, time.April, empty.Month)
	assert.Equal(t, "2025-04", empty.Key())
}

func TestFuelRecord_Cost(t *testing.T) {
	r := model.FuelRecord{Liters: 40, PricePerLiter: 19.5}
	assert.InDelta(t, 780.0, r.Cost(), 1e-9)
}
