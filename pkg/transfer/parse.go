package transfer

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

var (
	ErrEmptyValue  = errors.New("empty value")
	ErrInvalidFill = errors.New("invalid full fill value")
	ErrOutOfRange  = errors.New("number out of range")
)

// ParseNumber parses a decimal number written with either "." or "," as the
// separator, e.g. "43,2" or "19.49". Surrounding spaces are ignored.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyValue
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("parse number %q: %w", s, ErrOutOfRange)
	}
	return v, nil
}

// ParseFullFill interprets the many ways people write yes/no.
func ParseFullFill(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "full", "f", "ja":
		return true, nil
	case "n", "no", "false", "0", "partial", "nej", "":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidFill, s)
}

// FormatFullFill is the inverse of ParseFullFill for export.
func FormatFullFill(full bool) string {
	if full {
		return "yes"
	}
	return "no"
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (model.Date, error) {
	return model.ParseDate(strings.TrimSpace(s))
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("parse month %q: expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}
