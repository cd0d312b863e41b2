package transfer

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

// yamlLog is the YAML document layout.
type yamlLog struct {
	Records []yamlRecord `yaml:"records"`
}

type yamlRecord struct {
	Date          string  `yaml:"date"`
	OdometerKm    float64 `yaml:"odometer_km"`
	Liters        float64 `yaml:"liters"`
	PricePerLiter float64 `yaml:"price_per_liter"`
	FullFill      bool    `yaml:"full_fill"`
	Notes         string  `yaml:"notes,omitempty"`
}

// WriteYAML writes records as a YAML document with a top-level records list.
func WriteYAML(w io.Writer, records []model.FuelRecord) error {
	doc := yamlLog{Records: make([]yamlRecord, 0, len(records))}
	for _, r := range records {
		doc.Records = append(doc.Records, yamlRecord{
			Date:          r.Date.String(),
			OdometerKm:    r.OdometerKm,
			Liters:        r.Liters,
			PricePerLiter: r.PricePerLiter,
			FullFill:      r.FullFill,
			Notes:         r.Notes,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// ReadYAML reads a document written by WriteYAML.
func ReadYAML(r io.Reader) ([]model.FuelRecord, error) {
	var doc yamlLog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.FuelRecord{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	records := make([]model.FuelRecord, 0, len(doc.Records))
	for i, yr := range doc.Records {
		d, err := ParseDate(yr.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		records = append(records, model.FuelRecord{
			Date:          d,
			OdometerKm:    yr.OdometerKm,
			Liters:        yr.Liters,
			PricePerLiter: yr.PricePerLiter,
			FullFill:      yr.FullFill,
			Notes:         yr.Notes,
		})
	}
	return records, nil
}
