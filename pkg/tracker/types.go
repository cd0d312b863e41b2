package tracker

import "github.com/ogulcanaydogan/fuellog/pkg/model"

// Re-export types from model package for convenience.
type (
	FuelRecord   = model.FuelRecord
	Cycle        = model.Cycle
	Budget       = model.Budget
	BudgetPeriod = model.BudgetPeriod
	RecordFilter = model.RecordFilter
	MonthSummary = model.MonthSummary
)

// Re-export constants.
const (
	PeriodDaily   = model.PeriodDaily
	PeriodWeekly  = model.PeriodWeekly
	PeriodMonthly = model.PeriodMonthly
)

// PeriodBounds wraps model.PeriodBounds.
var PeriodBounds = model.PeriodBounds

// Stats is the overview shown after loading the whole log.
type Stats struct {
	RecordCount int             `json:"record_count"`
	Latest      *model.Cycle    `json:"latest_cycle,omitempty"`
	Aggregate   model.Aggregate `json:"aggregate"`
	Anomalies   []model.Cycle   `json:"anomalies,omitempty"`
}

// AddResult reports what storing a record changed.
type AddResult struct {
	Record FuelRecord `json:"record"`
	// Closed is the cycle this record completed, if it was a full fill
	// following another full fill.
	Closed *Cycle `json:"closed_cycle,omitempty"`
}
