package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/fuellog/pkg/model"

	_ "modernc.org/sqlite"
)

const recordColumns = "id, date, odometer_km, liters, price_per_liter, full_fill, notes, created_at"

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) AddRecord(ctx context.Context, record *model.FuelRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fuel_records (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Date.String(), record.OdometerKm, record.Liters,
		record.PricePerLiter, record.FullFill, record.Notes, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert fuel record: %w", err)
	}
	return nil
}

func (s *SQLite) GetRecord(ctx context.Context, id string) (*model.FuelRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM fuel_records WHERE id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

func (s *SQLite) ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.FuelRecord, error) {
	query := "SELECT " + recordColumns + " FROM fuel_records"
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}

	// With a limit, keep the most recent records and restore ascending order afterwards.
	if filter.Limit > 0 {
		query += " ORDER BY date DESC, odometer_km DESC LIMIT ?"
		args = append(args, filter.Limit)
	} else {
		query += " ORDER BY date ASC, odometer_km ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]model.FuelRecord, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if filter.Limit > 0 {
		slices.Reverse(records)
	}
	return records, nil
}

func (s *SQLite) DeleteRecord(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM fuel_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLite) AggregateRecords(ctx context.Context, filter model.RecordFilter) (*model.RecordTotals, error) {
	query := `SELECT
		COALESCE(SUM(liters), 0),
		COALESCE(SUM(liters * price_per_liter), 0),
		COUNT(*)
	FROM fuel_records`
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}

	totals := &model.RecordTotals{}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&totals.Liters, &totals.Cost, &totals.Count,
	); err != nil {
		return nil, fmt.Errorf("aggregate records: %w", err)
	}
	return totals, nil
}

func (s *SQLite) SetBudget(ctx context.Context, budget *model.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = now
	}
	budget.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, name, limit_amount, period, alert_threshold_pct, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   limit_amount = excluded.limit_amount,
		   period = excluded.period,
		   alert_threshold_pct = excluded.alert_threshold_pct,
		   updated_at = excluded.updated_at`,
		budget.ID, budget.Name, budget.Limit, budget.Period,
		budget.AlertThresholdPct, budget.CreatedAt, budget.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

func (s *SQLite) GetBudget(ctx context.Context, name string) (*model.Budget, error) {
	var b model.Budget
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, limit_amount, period, alert_threshold_pct, created_at, updated_at
		 FROM budgets WHERE name = ?`, name,
	).Scan(&b.ID, &b.Name, &b.Limit, &b.Period, &b.AlertThresholdPct, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

func (s *SQLite) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, limit_amount, period, alert_threshold_pct, created_at, updated_at
		 FROM budgets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.Limit, &b.Period,
			&b.AlertThresholdPct, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget row: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *SQLite) DeleteBudget(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget %q: %w", name, ErrNotFound)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*model.FuelRecord, error) {
	var (
		r    model.FuelRecord
		date string
	)
	if err := row.Scan(&r.ID, &date, &r.OdometerKm, &r.Liters, &r.PricePerLiter,
		&r.FullFill, &r.Notes, &r.CreatedAt); err != nil {
		return nil, err
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	r.Date = d
	return &r, nil
}

// buildWhereClause constructs a SQL WHERE clause from a RecordFilter.
func buildWhereClause(filter model.RecordFilter) (string, []any) {
	var conditions []string
	var args []any

	if !filter.From.IsZero() {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "date < ?")
		args = append(args, filter.To.String())
	}
	if filter.FullOnly {
		conditions = append(conditions, "full_fill = 1")
	}

	return strings.Join(conditions, " AND "), args
}
