package fuel

import (
	"cmp"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

// Aggregate rolls cycles up into overall figures and summarizes records per
// calendar month.
func Aggregate(cycles []model.Cycle, records []model.FuelRecord) model.Aggregate {
	months := MonthlyTotals(records)
	summaries := make([]model.MonthSummary, 0, len(months))
	for _, m := range months {
		summaries = append(summaries, withDistance(m, cycles))
	}
	return model.Aggregate{
		Overall: Overall(cycles),
		Months:  summaries,
	}
}

// Overall averages the per-cycle rates of every cycle whose consumption is
// available. The averages are means of rates, so a short cycle weighs as
// much as a long one; WeightedLitersPer100Km gives the pooled figure.
func Overall(cycles []model.Cycle) model.Overall {
	var (
		o         model.Overall
		perCycle  []float64
		costPerKm []float64
	)
	for _, c := range cycles {
		l100, ok := c.LitersPer100Km.Value()
		if !ok {
			continue
		}
		perCycle = append(perCycle, l100)
		if cpk, ok := c.CostPerKm.Value(); ok {
			costPerKm = append(costPerKm, cpk)
		}
		o.TotalKm += c.DistanceKm
		o.TotalLiters += c.LitersUsed
		o.TotalCost += c.CostTotal
	}
	o.CycleCount = len(perCycle)

	if o.CycleCount == 0 {
		o.AvgLitersPer100Km = model.Unavailable(model.ReasonNoCycles)
		o.AvgCostPerKm = model.Unavailable(model.ReasonNoCycles)
		o.WeightedLitersPer100Km = model.Unavailable(model.ReasonNoCycles)
		return o
	}

	o.AvgLitersPer100Km = model.Available(stat.Mean(perCycle, nil))
	o.AvgCostPerKm = model.Available(stat.Mean(costPerKm, nil))
	o.WeightedLitersPer100Km = model.Available(o.TotalLiters * 100 / o.TotalKm)
	return o
}

// MonthlyTotals groups every record, full or partial, by the month of its
// date. The result is ordered by month.
func MonthlyTotals(records []model.FuelRecord) []model.MonthTotals {
	type key struct {
		year  int
		month time.Month
	}
	byMonth := make(map[key]*model.MonthTotals)
	for _, r := range records {
		k := key{r.Date.Year(), r.Date.Month()}
		m, ok := byMonth[k]
		if !ok {
			m = &model.MonthTotals{Year: k.year, Month: k.month}
			byMonth[k] = m
		}
		m.Liters += r.Liters
		m.Cost += r.Cost()
		m.Fills++
	}

	out := make([]model.MonthTotals, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b model.MonthTotals) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Month, b.Month)
	})
	return out
}

// EstimatedDistance sums the distance of cycles that ended in the month and
// returns how many there were. A cycle spanning two months counts fully
// towards its end month, and a cycle with an odometer regression adds its
// negative distance as is.
func EstimatedDistance(cycles []model.Cycle, year int, month time.Month) (km float64, count int) {
	for _, c := range cycles {
		if !c.EndDate.SameMonth(year, month) {
			continue
		}
		km += c.DistanceKm
		count++
	}
	return km, count
}

func withDistance(m model.MonthTotals, cycles []model.Cycle) model.MonthSummary {
	km, n := EstimatedDistance(cycles, m.Year, m.Month)
	return model.MonthSummary{
		MonthTotals:         m,
		EstimatedDistanceKm: km,
		CyclesEnded:         n,
	}
}
