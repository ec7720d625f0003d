// Package calculator implements the LL97 emissions, energy cost, threshold and
// penalty calculations for a single building record.
package calculator

import (
	"math"
	"strconv"
	"strings"

	"github.com/stwalsh4118/ll97/internal/models"
)

// ParseReading parses a numeric cell leniently.
// Blank, non-numeric, NaN and infinite values yield 0; bad input never fails.
func ParseReading(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}

// FormatNumber renders a float with the shortest exact decimal representation.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Normalize converts raw per-fuel readings into billing units by dividing each
// reading by its energy type's conversion factor.
func Normalize(raw models.EnergyAmounts) models.EnergyAmounts {
	var out models.EnergyAmounts
	for _, e := range models.AllEnergyTypes {
		out[e] = raw[e] / e.Spec().ConversionFactor
	}
	return out
}

// ReadingsFromRow extracts the raw readings for each energy type from a joined row.
// Absent columns and unparseable cells read as 0.
func ReadingsFromRow(t *models.Table, row int) models.EnergyAmounts {
	var raw models.EnergyAmounts
	for _, e := range models.AllEnergyTypes {
		raw[e] = ParseReading(t.Value(row, e.Spec().SourceColumn))
	}
	return raw
}

// RecordFromRow builds the calculation view of a joined, cleansed row.
func RecordFromRow(t *models.Table, row int) models.BuildingRecord {
	rec := models.BuildingRecord{
		Key:       t.Value(row, models.KeyColumn),
		FloorArea: ParseReading(t.Value(row, models.FloorAreaColumn)),
		Readings:  ReadingsFromRow(t, row),
	}
	if category := strings.TrimSpace(t.Value(row, models.CategoryColumn)); category != "" {
		rec.Category = &category
	}
	return rec
}
