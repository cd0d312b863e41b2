package transfer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

// Format names an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// Write encodes records in the given format.
func Write(w io.Writer, format Format, records []model.FuelRecord) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatYAML:
		return WriteYAML(w, records)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// Read decodes records in the given format.
func Read(r io.Reader, format Format) ([]model.FuelRecord, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// FormatFromPath guesses the format from a file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatCSV
}
