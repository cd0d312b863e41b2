package alerts

import "context"

// AlertKind says what an alert is about.
type AlertKind string

const (
	KindBudget      AlertKind = "budget"       // Fuel spending against a budget
	KindDataQuality AlertKind = "data_quality" // Suspicious log entries
)

// AlertLevel indicates the severity of an alert.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"  // Approaching budget threshold, or suspect data
	AlertCritical AlertLevel = "critical" // At or near budget limit
	AlertExceeded AlertLevel = "exceeded" // Budget limit exceeded
)

// Alert is a notification sent to external systems.
type Alert struct {
	Kind    AlertKind      `json:"kind"`
	Level   AlertLevel     `json:"level"`
	Message string         `json:"message"`
	Budget  *BudgetDetails `json:"budget,omitempty"`
	Cycle   *CycleDetails  `json:"cycle,omitempty"`
}

// BudgetDetails describes the budget that crossed a threshold.
type BudgetDetails struct {
	Name         string  `json:"name"`
	Limit        float64 `json:"limit"`
	CurrentSpend float64 `json:"current_spend"`
	ThresholdPct float64 `json:"threshold_pct"`
	Period       string  `json:"period"`
}

// UsagePct returns spend as a percentage of the limit.
func (b BudgetDetails) UsagePct() float64 {
	if b.Limit <= 0 {
		return 0
	}
	return b.CurrentSpend / b.Limit * 100
}

// CycleDetails describes the cycle a data-quality alert refers to.
type CycleDetails struct {
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	StartOdometerKm float64 `json:"start_odometer_km"`
	EndOdometerKm   float64 `json:"end_odometer_km"`
	DistanceKm      float64 `json:"distance_km"`
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
