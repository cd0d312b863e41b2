package model

import "time"

// FuelRecord is one logged refueling event.
type FuelRecord struct {
	ID            string    `json:"id" db:"id"`
	Date          Date      `json:"date" db:"date"`
	OdometerKm    float64   `json:"odometer_km" db:"odometer_km"`
	Liters        float64   `json:"liters" db:"liters"`
	PricePerLiter float64   `json:"price_per_liter" db:"price_per_liter"`
	FullFill      bool      `json:"full_fill" db:"full_fill"`
	Notes         string    `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"created_at,omitempty" db:"created_at"`
}

// Cost is the amount paid for this fill.
func (r FuelRecord) Cost() float64 {
	return r.Liters * r.PricePerLiter
}

// Cycle is the tank-to-tank interval between two consecutive full fills.
// Liters, cost and fill count cover every record after the start fill up to
// and including the end fill.
type Cycle struct {
	StartDate          Date    `json:"start_date"`
	EndDate            Date    `json:"end_date"`
	StartOdometerKm    float64 `json:"start_odometer_km"`
	EndOdometerKm      float64 `json:"end_odometer_km"`
	DistanceKm         float64 `json:"distance_km"`
	LitersUsed         float64 `json:"liters_used"`
	CostTotal          float64 `json:"cost_total"`
	FillsCount         int     `json:"fills_count"`
	LitersPer100Km     Rate    `json:"liters_per_100km"`
	CostPerKm          Rate    `json:"cost_per_km"`
	OdometerRegression bool    `json:"odometer_regression"`
}

// Overall summarizes every cycle with an available consumption rate.
type Overall struct {
	CycleCount        int     `json:"cycle_count"`
	TotalKm           float64 `json:"total_km"`
	TotalLiters       float64 `json:"total_liters"`
	TotalCost         float64 `json:"total_cost"`
	AvgLitersPer100Km Rate    `json:"avg_liters_per_100km"`
	AvgCostPerKm      Rate    `json:"avg_cost_per_km"`
	// WeightedLitersPer100Km is TotalLiters / TotalKm * 100. It differs from
	// the mean of per-cycle rates whenever cycle lengths differ.
	WeightedLitersPer100Km Rate `json:"weighted_liters_per_100km"`
}

// MonthTotals sums raw records dated in one calendar month.
type MonthTotals struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Liters float64    `json:"liters"`
	Cost   float64    `json:"cost"`
	Fills  int        `json:"fills"`
}

// MonthSummary adds the distance of cycles that ended in the month. A cycle
// spanning a month boundary counts entirely towards its end month.
type MonthSummary struct {
	MonthTotals
	EstimatedDistanceKm float64 `json:"estimated_distance_km"`
	CyclesEnded         int     `json:"cycles_ended"`
}

// Key returns the month as YYYY-MM.
func (m MonthTotals) Key() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Aggregate is the derived view over a record set and its cycles.
type Aggregate struct {
	Overall Overall        `json:"overall"`
	Months  []MonthSummary `json:"months"`
}

// Month returns the summary for year and month, or an empty summary for
// that month when nothing was recorded.
func (a Aggregate) Month(year int, month time.Month) MonthSummary {
	for _, m := range a.Months {
		if m.Year == year && m.Month == month {
			return m
		}
	}
	return MonthSummary{MonthTotals: MonthTotals{Year: year, Month: month}}
}

// SeriesPoint is one consumption measurement for charting.
type SeriesPoint struct {
	Date           Date    `json:"date"`
	LitersPer100Km float64 `json:"liters_per_100km"`
	DistanceKm     float64 `json:"distance_km"`
}

// BudgetPeriod defines the time window for a budget.
type BudgetPeriod string

const (
	PeriodDaily   BudgetPeriod = "daily"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
)

// Valid reports whether p is a known period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Budget is a fuel spending limit for a period. CurrentSpend is computed
// from stored records when the budget is read through the budget manager.
type Budget struct {
	ID                string       `json:"id" db:"id"`
	Name              string       `json:"name" db:"name"`
	Limit             float64      `json:"limit" db:"limit_amount"`
	Period            BudgetPeriod `json:"period" db:"period"`
	AlertThresholdPct float64      `json:"alert_threshold_pct" db:"alert_threshold_pct"`
	CurrentSpend      float64      `json:"current_spend"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// RecordFilter restricts which records are read. From is inclusive, To is
// exclusive; zero dates leave that side open.
type RecordFilter struct {
	From     Date `json:"from,omitempty"`
	To       Date `json:"to,omitempty"`
	FullOnly bool `json:"full_only,omitempty"`
	Limit    int  `json:"limit,omitempty"`
}

// RecordTotals holds summed liters and cost for a filtered record set.
type RecordTotals struct {
	Liters float64 `json:"liters"`
	Cost   float64 `json:"cost"`
	Count  int64   `json:"count"`
}

// PeriodBounds returns the start and end dates of the current period.
func PeriodBounds(period BudgetPeriod) (start, end Date) {
	return PeriodBoundsAt(period, time.Now().UTC())
}

// PeriodBoundsAt returns the start and end dates of the period containing now.
func PeriodBoundsAt(period BudgetPeriod, now time.Time) (start, end Date) {
	switch period {
	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = NewDate(now.Year(), now.Month(), now.Day()-weekday+1)
		end = Date{Time: start.AddDate(0, 0, 7)}
	case PeriodMonthly:
		start = NewDate(now.Year(), now.Month(), 1)
		end = Date{Time: start.AddDate(0, 1, 0)}
	default:
		start = NewDate(now.Year(), now.Month(), now.Day())
		end = Date{Time: start.AddDate(0, 0, 1)}
	}
	return start, end
}
