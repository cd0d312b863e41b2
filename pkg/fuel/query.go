package fuel

import (
	"time"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

// LatestCycle returns the most recent cycle, or false when there is none yet.
func LatestCycle(cycles []model.Cycle) (model.Cycle, bool) {
	if len(cycles) == 0 {
		return model.Cycle{}, false
	}
	return cycles[len(cycles)-1], true
}

// MonthSummary totals the records of one month and adds the distance of
// cycles ending in it.
func MonthSummary(records []model.FuelRecord, cycles []model.Cycle, year int, month time.Month) model.MonthSummary {
	totals := model.MonthTotals{Year: year, Month: month}
	for _, r := range records {
		if !r.Date.SameMonth(year, month) {
			continue
		}
		totals.Liters += r.Liters
		totals.Cost += r.Cost()
		totals.Fills++
	}
	return withDistance(totals, cycles)
}

// ConsumptionSeries lists the consumption of every cycle that has one, in
// cycle order.
func ConsumptionSeries(cycles []model.Cycle) []model.SeriesPoint {
	points := make([]model.SeriesPoint, 0, len(cycles))
	for _, c := range cycles {
		v, ok := c.LitersPer100Km.Value()
		if !ok {
			continue
		}
		points = append(points, model.SeriesPoint{
			Date:           c.EndDate,
			LitersPer100Km: v,
			DistanceKm:     c.DistanceKm,
		})
	}
	return points
}

// Anomalies returns the cycles whose closing odometer is below their start,
// which usually means a mistyped reading.
func Anomalies(cycles []model.Cycle) []model.Cycle {
	var out []model.Cycle
	for _, c := range cycles {
		if c.OdometerRegression {
			out = append(out, c)
		}
	}
	return out
}
