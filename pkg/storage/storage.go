package storage

import (
	"context"
	"errors"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

// ErrNotFound is returned when a record or budget does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines the persistence layer for fuel records and budgets.
type Storage interface {
	// AddRecord persists a single fuel record.
	AddRecord(ctx context.Context, record *model.FuelRecord) error

	// GetRecord retrieves a record by ID.
	GetRecord(ctx context.Context, id string) (*model.FuelRecord, error)

	// ListRecords returns records matching the filter ordered by date, then odometer.
	ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.FuelRecord, error)

	// DeleteRecord removes a record by ID.
	DeleteRecord(ctx context.Context, id string) error

	// AggregateRecords sums liters and cost of the records matching the filter.
	AggregateRecords(ctx context.Context, filter model.RecordFilter) (*model.RecordTotals, error)

	// SetBudget creates or updates a budget.
	SetBudget(ctx context.Context, budget *model.Budget) error

	// GetBudget retrieves a budget by name.
	GetBudget(ctx context.Context, name string) (*model.Budget, error)

	// ListBudgets returns all configured budgets.
	ListBudgets(ctx context.Context) ([]model.Budget, error)

	// DeleteBudget removes a budget by name.
	DeleteBudget(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}
