package fuel_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ogulcanaydogan/fuellog/pkg/fuel"
	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

func TestValidate(t *testing.T) {
	valid := rec("2025-08-27", 210123, 43.2, 19.49, true)

	tests := []struct {
		name   string
		mutate func(*model.FuelRecord)
		want   error
	}{
		{"valid", func(*model.FuelRecord) {}, nil},
		{"zero date", func(r *model.FuelRecord) { r.Date = model.Date{} }, fuel.ErrInvalidDate},
		{"negative odometer", func(r *model.FuelRecord) { r.OdometerKm = -1 }, fuel.ErrNegativeOdometer},
		{"zero liters", func(r *model.FuelRecord) { r.Liters = 0 }, fuel.ErrNonPositiveLiters},
		{"nan liters", func(r *model.FuelRecord) { r.Liters = math.NaN() }, fuel.ErrNonPositiveLiters},
		{"negative price", func(r *model.FuelRecord) { r.PricePerLiter = -0.5 }, fuel.ErrNegativePrice},
		{"free fuel", func(r *model.FuelRecord) { r.PricePerLiter = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := fuel.Validate(r)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalize(t *testing.T) {
	r := model.FuelRecord{
		Date:          model.Date{Time: time.Date(2025, 8, 27, 18, 30, 0, 0, time.UTC)},
		OdometerKm:    210123.46,
		Liters:        43.20049,
		PricePerLiter: 19.4895,
		Notes:         "  E20 OKQ8 ",
	}

	n := fuel.Normalize(r)
	assert.Equal(t, "2025-08-27", n.Date.String())
	assert.Equal(t, 0, n.Date.Hour())
	assert.Equal(t, 210123.5, n.OdometerKm)
	assert.Equal(t, 43.2, n.Liters)
	assert.Equal(t, 19.49, n.PricePerLiter)
	assert.Equal(t, "E20 OKQ8", n.Notes)
	// input untouched
	assert.Equal(t, 210123.46, r.OdometerKm)
}

func TestNormalize_NonFinite(t *testing.T) {
	r := rec("2025-08-27", 1000, 40, 20, true)
	r.Liters = math.Inf(1)
	r.OdometerKm = math.NaN()

	var n model.FuelRecord
	assert.NotPanics(t, func() { n = fuel.Normalize(r) })
	assert.True(t, math.IsInf(n.Liters, 1))
	assert.True(t, math.IsNaN(n.OdometerKm))
	assert.ErrorIs(t, fuel.Validate(n), fuel.ErrNegativeOdometer)

	n.OdometerKm = 1000
	assert.ErrorIs(t, fuel.Validate(n), fuel.ErrNonPositiveLiters)
}

func TestSortRecords(t *testing.T) {
	records := []model.FuelRecord{
		rec("2025-02-01", 1500, 1, 1, true),
		rec("2025-01-01", 1200, 1, 1, true),
		rec("2025-01-01", 1000, 1, 1, false),
	}

	sorted := fuel.SortRecords(records)
	assert.Equal(t, 1000.0, sorted[0].OdometerKm)
	assert.Equal(t, 1200.0, sorted[1].OdometerKm)
	assert.Equal(t, 1500.0, sorted[2].OdometerKm)
	assert.Equal(t, 1500.0, records[0].OdometerKm)
}
