package fuel

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrNegativeOdometer  = errors.New("odometer must not be negative")
	ErrNonPositiveLiters = errors.New("liters must be positive")
	ErrNegativePrice     = errors.New("price per liter must not be negative")
)

// Validate checks that a record is usable by the engine.
func Validate(r model.FuelRecord) error {
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if !finite(r.OdometerKm) || r.OdometerKm < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeOdometer, r.OdometerKm)
	}
	if !finite(r.Liters) || r.Liters <= 0 {
		return fmt.Errorf("%w: %v", ErrNonPositiveLiters, r.Liters)
	}
	if !finite(r.PricePerLiter) || r.PricePerLiter < 0 {
		return fmt.Errorf("%w: %v", ErrNegativePrice, r.PricePerLiter)
	}
	return nil
}

// Normalize rounds a record to the precision the log keeps: odometer to
// 0.1 km, liters and price to three decimals.
func Normalize(r model.FuelRecord) model.FuelRecord {
	r.Date = model.DateOf(r.Date.Time)
	r.OdometerKm = round(r.OdometerKm, 1)
	r.Liters = round(r.Liters, 3)
	r.PricePerLiter = round(r.PricePerLiter, 3)
	r.Notes = strings.TrimSpace(r.Notes)
	return r
}

// SortRecords returns a copy of records ordered by date, then odometer.
func SortRecords(records []model.FuelRecord) []model.FuelRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.FuelRecord) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		switch {
		case a.OdometerKm < b.OdometerKm:
			return -1
		case a.OdometerKm > b.OdometerKm:
			return 1
		}
		return 0
	})
	return sorted
}

// round leaves non-finite values untouched so Validate can reject them.
func round(v float64, places int32) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
