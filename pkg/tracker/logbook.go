package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/fuellog/pkg/alerts"
	"github.com/ogulcanaydogan/fuellog/pkg/fuel"
	"github.com/ogulcanaydogan/fuellog/pkg/metrics"
	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/storage"
)

// Logbook stores fuel records and derives cycles and statistics from them.
// Cycles are never persisted; every read rebuilds them from the full log.
type Logbook struct {
	storage   storage.Storage
	budget    *BudgetManager
	notifiers []alerts.Notifier
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// NewLogbook creates a logbook. budget and recorder may be nil.
func NewLogbook(store storage.Storage, budget *BudgetManager, notifiers []alerts.Notifier, recorder *metrics.Recorder, logger *slog.Logger) *Logbook {
	return &Logbook{
		storage:   store,
		budget:    budget,
		notifiers: notifiers,
		metrics:   recorder,
		logger:    logger,
	}
}

// Add validates, normalizes and stores a record. If the record is a full
// fill that closes a cycle, the cycle is returned in the result.
func (l *Logbook) Add(ctx context.Context, record FuelRecord) (*AddResult, error) {
	record = fuel.Normalize(record)
	if err := fuel.Validate(record); err != nil {
		return nil, fmt.Errorf("validate record: %w", err)
	}

	if err := l.storage.AddRecord(ctx, &record); err != nil {
		return nil, fmt.Errorf("store record: %w", err)
	}
	l.metrics.RecordAdded(record.FullFill)

	result := &AddResult{Record: record}
	if record.FullFill {
		// The record is already stored; a failed rebuild only costs the
		// closed cycle in the result.
		cycles, err := l.Cycles(ctx)
		if err != nil {
			l.logger.Error("rebuild cycles failed", "id", record.ID, "error", err)
		} else if c, ok := closedBy(cycles, record); ok {
			result.Closed = &c
			l.observeCycle(ctx, c)
		}
	}

	l.logger.Info("record added",
		"id", record.ID,
		"date", record.Date.String(),
		"odometer_km", record.OdometerKm,
		"liters", record.Liters,
		"full_fill", record.FullFill,
	)

	if l.budget != nil {
		if err := l.budget.Evaluate(ctx); err != nil {
			l.logger.Error("budget evaluation failed", "error", err)
		}
	}

	return result, nil
}

// Import stores a batch of records. Every record is validated before any is
// written, so an invalid row leaves the log untouched. A storage failure
// midway keeps the rows written before it; the returned count says how many.
func (l *Logbook) Import(ctx context.Context, records []FuelRecord) (int, error) {
	normalized := make([]FuelRecord, len(records))
	for i, r := range records {
		r = fuel.Normalize(r)
		if err := fuel.Validate(r); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		r.ID = ""
		normalized[i] = r
	}

	for i := range normalized {
		if err := l.storage.AddRecord(ctx, &normalized[i]); err != nil {
			return i, fmt.Errorf("store record %d: %w", i+1, err)
		}
		l.metrics.RecordAdded(normalized[i].FullFill)
	}

	l.logger.Info("records imported", "count", len(normalized))
	return len(normalized), nil
}

// Get returns one record by ID.
func (l *Logbook) Get(ctx context.Context, id string) (*FuelRecord, error) {
	return l.storage.GetRecord(ctx, id)
}

// Records lists stored records in chronological order.
func (l *Logbook) Records(ctx context.Context, filter RecordFilter) ([]FuelRecord, error) {
	records, err := l.storage.ListRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Delete removes a record. Cycles that depended on it are rebuilt on the next read.
func (l *Logbook) Delete(ctx context.Context, id string) error {
	if err := l.storage.DeleteRecord(ctx, id); err != nil {
		return err
	}
	l.logger.Info("record deleted", "id", id)
	return nil
}

// Cycles rebuilds all tank-to-tank cycles from the stored log.
func (l *Logbook) Cycles(ctx context.Context) ([]Cycle, error) {
	records, err := l.Records(ctx, RecordFilter{})
	if err != nil {
		return nil, err
	}
	return fuel.Reconstruct(records), nil
}

// Stats loads the whole log and returns the latest cycle, overall figures,
// monthly summaries and odometer anomalies.
func (l *Logbook) Stats(ctx context.Context) (*Stats, error) {
	records, err := l.Records(ctx, RecordFilter{})
	if err != nil {
		return nil, err
	}
	cycles := fuel.Reconstruct(records)

	stats := &Stats{
		RecordCount: len(records),
		Aggregate:   fuel.Aggregate(cycles, records),
		Anomalies:   fuel.Anomalies(cycles),
	}
	if latest, ok := fuel.LatestCycle(cycles); ok {
		stats.Latest = &latest
	}
	return stats, nil
}

// Month returns the summary for one calendar month.
func (l *Logbook) Month(ctx context.Context, year int, month time.Month) (MonthSummary, error) {
	records, err := l.Records(ctx, RecordFilter{})
	if err != nil {
		return MonthSummary{}, err
	}
	return fuel.MonthSummary(records, fuel.Reconstruct(records), year, month), nil
}

// Series returns the consumption of every cycle with an available rate.
func (l *Logbook) Series(ctx context.Context) ([]model.SeriesPoint, error) {
	cycles, err := l.Cycles(ctx)
	if err != nil {
		return nil, err
	}
	return fuel.ConsumptionSeries(cycles), nil
}

func (l *Logbook) observeCycle(ctx context.Context, c Cycle) {
	l100, available := c.LitersPer100Km.Value()
	l.metrics.CycleClosed(l100, available, c.OdometerRegression)

	if !c.OdometerRegression {
		l.logger.Info("cycle closed",
			"end_date", c.EndDate.String(),
			"distance_km", c.DistanceKm,
			"liters_used", c.LitersUsed,
			"liters_per_100km", c.LitersPer100Km.Format("%.2f"),
		)
		return
	}

	l.logger.Warn("odometer went backwards",
		"start_date", c.StartDate.String(),
		"end_date", c.EndDate.String(),
		"start_odometer_km", c.StartOdometerKm,
		"end_odometer_km", c.EndOdometerKm,
	)
	dispatch(ctx, l.notifiers, alerts.Alert{
		Kind:  alerts.KindDataQuality,
		Level: alerts.AlertWarning,
		Message: fmt.Sprintf("Odometer reading %.1f km on %s is below %.1f km on %s",
			c.EndOdometerKm, c.EndDate, c.StartOdometerKm, c.StartDate),
		Cycle: &alerts.CycleDetails{
			StartDate:       c.StartDate.String(),
			EndDate:         c.EndDate.String(),
			StartOdometerKm: c.StartOdometerKm,
			EndOdometerKm:   c.EndOdometerKm,
			DistanceKm:      c.DistanceKm,
		},
	}, l.logger)
}

// closedBy finds the cycle whose end fill is record.
func closedBy(cycles []Cycle, record FuelRecord) (Cycle, bool) {
	for i := len(cycles) - 1; i >= 0; i-- {
		c := cycles[i]
		if c.EndDate.Equal(record.Date.Time) && c.EndOdometerKm == record.OdometerKm {
			return c, true
		}
	}
	return Cycle{}, false
}
