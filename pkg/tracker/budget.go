package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/fuellog/pkg/alerts"
	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/storage"
)

var (
	ErrInvalidPeriod    = errors.New("invalid budget period")
	ErrInvalidLimit     = errors.New("budget limit must be positive")
	ErrInvalidThreshold = errors.New("alert threshold must be between 0 and 100")
)

// BudgetManager checks fuel spending against budgets and dispatches alerts.
type BudgetManager struct {
	storage   storage.Storage
	notifiers []alerts.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewBudgetManager creates a budget manager.
func NewBudgetManager(store storage.Storage, notifiers []alerts.Notifier, logger *slog.Logger) *BudgetManager {
	return &BudgetManager{
		storage:   store,
		notifiers: notifiers,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Set validates and stores a budget.
func (m *BudgetManager) Set(ctx context.Context, budget *Budget) error {
	if !budget.Period.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, budget.Period)
	}
	if budget.Limit <= 0 {
		return ErrInvalidLimit
	}
	if budget.AlertThresholdPct < 0 || budget.AlertThresholdPct > 100 {
		return ErrInvalidThreshold
	}
	return m.storage.SetBudget(ctx, budget)
}

// Status returns every budget with its spend in the current period filled in.
func (m *BudgetManager) Status(ctx context.Context) ([]Budget, error) {
	budgets, err := m.storage.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	now := m.now()
	for i := range budgets {
		start, end := model.PeriodBoundsAt(budgets[i].Period, now)
		totals, err := m.storage.AggregateRecords(ctx, model.RecordFilter{From: start, To: end})
		if err != nil {
			return nil, fmt.Errorf("spend for budget %q: %w", budgets[i].Name, err)
		}
		budgets[i].CurrentSpend = totals.Cost
	}
	return budgets, nil
}

// Evaluate checks every budget and sends alerts for those past a threshold.
func (m *BudgetManager) Evaluate(ctx context.Context) error {
	budgets, err := m.Status(ctx)
	if err != nil {
		return err
	}
	for i := range budgets {
		m.checkThresholds(ctx, &budgets[i])
	}
	return nil
}

// CheckAll returns an error if any budget is exceeded.
func (m *BudgetManager) CheckAll(ctx context.Context) error {
	budgets, err := m.Status(ctx)
	if err != nil {
		return err
	}

	for _, budget := range budgets {
		if budget.CurrentSpend >= budget.Limit {
			return fmt.Errorf("budget %q exceeded: %.2f / %.2f", budget.Name, budget.CurrentSpend, budget.Limit)
		}
	}
	return nil
}

// LevelFor returns the alert level for a budget, or "" when under its threshold.
func LevelFor(budget Budget) alerts.AlertLevel {
	if budget.Limit <= 0 {
		return ""
	}
	pct := budget.CurrentSpend / budget.Limit * 100
	switch {
	case pct >= 100:
		return alerts.AlertExceeded
	case pct >= 95:
		return alerts.AlertCritical
	case pct >= budget.AlertThresholdPct:
		return alerts.AlertWarning
	}
	return ""
}

// checkThresholds evaluates a budget and dispatches alerts if thresholds are crossed.
func (m *BudgetManager) checkThresholds(ctx context.Context, budget *Budget) {
	level := LevelFor(*budget)
	if level == "" {
		return
	}

	details := &alerts.BudgetDetails{
		Name:         budget.Name,
		Limit:        budget.Limit,
		CurrentSpend: budget.CurrentSpend,
		ThresholdPct: budget.AlertThresholdPct,
		Period:       string(budget.Period),
	}
	alert := alerts.Alert{
		Kind:   alerts.KindBudget,
		Level:  level,
		Budget: details,
		Message: fmt.Sprintf("Budget %q at %.1f%% (%.2f / %.2f)",
			budget.Name, details.UsagePct(), budget.CurrentSpend, budget.Limit),
	}

	m.logger.Warn("budget threshold crossed",
		"budget", budget.Name,
		"level", level,
		"pct", details.UsagePct(),
		"spend", budget.CurrentSpend,
		"limit", budget.Limit,
	)

	dispatch(ctx, m.notifiers, alert, m.logger)
}
