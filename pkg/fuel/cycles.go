package fuel

import "github.com/ogulcanaydogan/fuellog/pkg/model"

// Reconstruct partitions records into cycles bounded by full fills.
//
// Records are sorted by (date, odometer) on a copy first. Partial fills
// before the first full fill, and everything after the last one, never close
// a cycle. N full fills yield exactly N-1 cycles.
func Reconstruct(records []model.FuelRecord) []model.Cycle {
	cycles := make([]model.Cycle, 0)

	var (
		anchor    model.FuelRecord
		anchored  bool
		sinceLast []model.FuelRecord
	)
	for _, r := range SortRecords(records) {
		sinceLast = append(sinceLast, r)
		if !r.FullFill {
			continue
		}
		if anchored {
			cycles = append(cycles, closeCycle(anchor, sinceLast))
		}
		anchor, anchored = r, true
		sinceLast = sinceLast[:0]
	}
	return cycles
}

// closeCycle builds the cycle from start to the last record of span. span
// holds every record after start, ending with the closing full fill.
func closeCycle(start model.FuelRecord, span []model.FuelRecord) model.Cycle {
	end := span[len(span)-1]

	c := model.Cycle{
		StartDate:       start.Date,
		EndDate:         end.Date,
		StartOdometerKm: start.OdometerKm,
		EndOdometerKm:   end.OdometerKm,
		DistanceKm:      end.OdometerKm - start.OdometerKm,
		FillsCount:      len(span),
	}
	for _, r := range span {
		c.LitersUsed += r.Liters
		c.CostTotal += r.Cost()
	}

	switch {
	case c.DistanceKm < 0:
		c.OdometerRegression = true
		c.LitersPer100Km = model.Unavailable(model.ReasonNegativeDistance)
		c.CostPerKm = model.Unavailable(model.ReasonNegativeDistance)
	case c.DistanceKm == 0:
		c.LitersPer100Km = model.Unavailable(model.ReasonZeroDistance)
		c.CostPerKm = model.Unavailable(model.ReasonZeroDistance)
	case c.LitersUsed <= 0:
		c.LitersPer100Km = model.Unavailable(model.ReasonNoFuel)
		c.CostPerKm = model.Unavailable(model.ReasonNoFuel)
	default:
		c.LitersPer100Km = model.Available(c.LitersUsed * 100 / c.DistanceKm)
		c.CostPerKm = model.Available(c.CostTotal / c.DistanceKm)
	}
	return c
}
