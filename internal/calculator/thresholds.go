package calculator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/ll97/internal/models"
)

// ThresholdCategoryColumn is the category column of the threshold reference table.
const ThresholdCategoryColumn = "BuildingType"

var (
	// ErrThresholdsNotFound indicates the threshold reference file does not exist.
	ErrThresholdsNotFound = errors.New("threshold reference not found")
	// ErrInvalidThresholds indicates the reference file could not be interpreted.
	ErrInvalidThresholds = errors.New("invalid threshold reference")
)

// ThresholdTable maps building category -> period start year (as a string) ->
// emissions limit in tCO2e per ft².
type ThresholdTable map[string]map[string]float64

// LoadThresholds reads the threshold reference file. CSV is the primary format;
// .yaml and .yml files holding the same category -> start year mapping are also accepted.
func LoadThresholds(path string) (ThresholdTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrThresholdsNotFound, path)
		}
		return nil, fmt.Errorf("failed to open threshold reference %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseThresholdsYAML(f)
	default:
		return ParseThresholdsCSV(f)
	}
}

// ParseThresholdsCSV parses a table with a BuildingType column and one column per
// period start year. Blank or non-numeric limits read as 0.
func ParseThresholdsCSV(r io.Reader) (ThresholdTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrInvalidThresholds, err)
	}
	header = trimCells(header)

	categoryCol := -1
	for i, name := range header {
		if name == ThresholdCategoryColumn {
			categoryCol = i
			break
		}
	}
	if categoryCol < 0 {
		return nil, fmt.Errorf("%w: missing %q column", ErrInvalidThresholds, ThresholdCategoryColumn)
	}

	table := make(ThresholdTable)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidThresholds, err)
		}
		if categoryCol >= len(record) {
			continue
		}
		category := strings.TrimSpace(record[categoryCol])
		if category == "" {
			continue
		}

		limits := make(map[string]float64, len(header)-1)
		for i, name := range header {
			if i == categoryCol || name == "" {
				continue
			}
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			limits[name] = ParseReading(cell)
		}
		table[category] = limits
	}
	return table, nil
}

// ParseThresholdsYAML parses a document of the form
//
//	Office:
//	  "2024": 0.00846
//	  "2030": 0.00453
func ParseThresholdsYAML(r io.Reader) (ThresholdTable, error) {
	var raw map[string]map[string]float64
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return ThresholdTable{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidThresholds, err)
	}
	table := make(ThresholdTable, len(raw))
	for category, limits := range raw {
		table[strings.TrimSpace(category)] = limits
	}
	return table, nil
}

// Has reports whether the category appears in the reference table.
func (t ThresholdTable) Has(category string) bool {
	_, ok := t[category]
	return ok
}

// PerArea returns the limit per ft² for the category in the period containing year.
// Unknown categories and periods yield 0.
func (t ThresholdTable) PerArea(year int, category string) float64 {
	limits, ok := t[category]
	if !ok {
		return 0
	}
	period, ok := models.PeriodForYear(year)
	if !ok {
		return 0
	}
	return limits[period.Key()]
}

// Lookup returns the building's emissions limit for year: floor area times the
// per-ft² limit of its category. Categories missing from the table get 0,
// which leaves the building with no allowance at all.
func (t ThresholdTable) Lookup(year int, category string, area float64) float64 {
	if !t.Has(category) {
		return 0
	}
	return area * t.PerArea(year, category)
}

// Categories returns the number of categories loaded.
func (t ThresholdTable) Categories() int {
	return len(t)
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		// Strip a UTF-8 BOM that spreadsheet exports often leave on the first cell.
		out[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return out
}
