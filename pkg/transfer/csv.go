package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

// Header is the CSV column layout written by WriteCSV.
var Header = []string{"date", "odometer_km", "liters", "price_per_liter", "full_fill", "notes"}

// columnAliases maps alternative header names to canonical ones.
var columnAliases = map[string]string{
	"price_per_liter_sek": "price_per_liter",
	"odometer":            "odometer_km",
	"full":                "full_fill",
}

var ErrMissingColumn = errors.New("missing column")

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []model.FuelRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Date.String(),
			strconv.FormatFloat(r.OdometerKm, 'f', 1, 64),
			strconv.FormatFloat(r.Liters, 'f', 3, 64),
			strconv.FormatFloat(r.PricePerLiter, 'f', 3, 64),
			FormatFullFill(r.FullFill),
			r.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads records from CSV with a header row. Columns are matched by
// name, so their order does not matter and notes may be absent.
func ReadCSV(r io.Reader) ([]model.FuelRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.FuelRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		index[name] = i
	}
	for _, name := range Header[:5] {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	records := make([]model.FuelRecord, 0)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(row) {
			continue
		}

		rec, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, index map[string]int) (model.FuelRecord, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var (
		rec model.FuelRecord
		err error
	)
	if rec.Date, err = ParseDate(field("date")); err != nil {
		return rec, err
	}
	if rec.OdometerKm, err = ParseNumber(field("odometer_km")); err != nil {
		return rec, fmt.Errorf("odometer_km: %w", err)
	}
	if rec.Liters, err = ParseNumber(field("liters")); err != nil {
		return rec, fmt.Errorf("liters: %w", err)
	}
	if rec.PricePerLiter, err = ParseNumber(field("price_per_liter")); err != nil {
		return rec, fmt.Errorf("price_per_liter: %w", err)
	}
	if rec.FullFill, err = ParseFullFill(field("full_fill")); err != nil {
		return rec, err
	}
	rec.Notes = strings.TrimSpace(field("notes"))
	return rec, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
