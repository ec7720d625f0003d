package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/ll97/internal/models"
)

func newTestLookups() Lookups {
	return NewLookups(ThresholdTable{
		"Office": {"2024": 0.001, "2030": 0.0005, "2035": 0.0004, "2040": 0.0003, "2050": 0},
	})
}

func officeRecord(kwh float64) models.BuildingRecord {
	category := "Office"
	var readings models.EnergyAmounts
	readings[models.Electricity] = kwh
	return models.BuildingRecord{
		Key:       "1000010001",
		Category:  &category,
		FloorArea: 1000,
		Readings:  readings,
	}
}

func TestPenalty(t *testing.T) {
	tests := []struct {
		name      string
		emissions float64
		threshold float64
		expected  float64
	}{
		{"under threshold", 0.5, 1.0, 0},
		{"at threshold", 1.0, 1.0, 0},
		{"over threshold", 2.0, 1.0, 268},
		{"no threshold", 3.0, 0, 804},
		{"nothing emitted", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Penalty(tt.emissions, tt.threshold), 1e-9)
		})
	}
}

func TestPenalty_MonotoneInEmissions(t *testing.T) {
	prev := Penalty(0, 5)
	for e := 0.0; e <= 20; e += 0.25 {
		p := Penalty(e, 5)
		assert.GreaterOrEqual(t, p, prev)
		assert.GreaterOrEqual(t, p, 0.0)
		prev = p
	}
}

func TestYearMetrics_EndToEnd2024(t *testing.T) {
	// Arrange
	lookups := newTestLookups()
	rec := officeRecord(1000)

	// Act
	m := lookups.YearMetrics(rec, 2024)

	// Assert
	assert.Equal(t, 2024, m.Year)
	assert.InDelta(t, 0.29, m.CarbonEmissions, 1e-9)
	assert.InDelta(t, 220.0, m.CostOfEnergy, 1e-9)
	assert.InDelta(t, 1.0, m.EmissionsThreshold, 1e-9)
	assert.Equal(t, 0.0, m.EstimatedPenalty)
}

func TestYearMetrics_UnknownCategoryPaysFullPenalty(t *testing.T) {
	lookups := newTestLookups()
	rec := officeRecord(1000)
	other := "Warehouse"
	rec.Category = &other

	m := lookups.YearMetrics(rec, 2024)

	assert.Equal(t, 0.0, m.EmissionsThreshold)
	assert.InDelta(t, 268*0.29, m.EstimatedPenalty, 1e-9)
}

func TestYearMetrics_MissingCategory(t *testing.T) {
	lookups := newTestLookups()
	rec := officeRecord(0)
	rec.Category = nil

	m := lookups.YearMetrics(rec, 2030)

	assert.Equal(t, models.Metrics{}, m.Metrics)
}

func TestYearly_CoversHorizon(t *testing.T) {
	lookups := newTestLookups()

	yearly := lookups.Yearly(officeRecord(1000))

	require.Len(t, yearly, 27)
	assert.Equal(t, 2024, yearly[0].Year)
	assert.Equal(t, 2050, yearly[26].Year)
}

func TestPeriodAverages(t *testing.T) {
	// Arrange
	lookups := newTestLookups()
	rec := officeRecord(10000)
	yearly := lookups.Yearly(rec)

	// Act
	periods := lookups.PeriodAverages(yearly)

	// Assert
	require.Len(t, periods, 5)
	labels := make([]string, 0, len(periods))
	for _, p := range periods {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"2024-2029", "2030-2034", "2035-2039", "2040-2049", "2050+"}, labels)

	// 10000 kWh * 0.00029 = 2.9 t against a 1.0 t limit.
	first := periods[0]
	assert.InDelta(t, 2.9, first.CarbonEmissions, 1e-9)
	assert.InDelta(t, 2200.0, first.CostOfEnergy, 1e-9)
	assert.InDelta(t, 1.0, first.EmissionsThreshold, 1e-9)
	assert.InDelta(t, 268*1.9, first.EstimatedPenalty, 1e-6)

	// The open-ended period only covers 2050, so it equals that year exactly.
	last := periods[4]
	assert.Equal(t, yearly[26].Metrics, last.Metrics)
}

func TestPeriodAverages_DividesSumByYearCount(t *testing.T) {
	lookups := newTestLookups()

	for _, kwh := range []float64{1000, 777777, 12345.678} {
		yearly := lookups.Yearly(officeRecord(kwh))
		byYear := make(map[int]models.Metrics, len(yearly))
		for _, ym := range yearly {
			byYear[ym.Year] = ym.Metrics
		}

		for _, p := range lookups.PeriodAverages(yearly) {
			years := p.Period.Years(lookups.HorizonEnd())
			var want [4]float64
			for _, year := range years {
				for i, v := range byYear[year].Values() {
					want[i] += v
				}
			}
			for i := range want {
				want[i] /= float64(len(years))
			}

			// Exact comparison: the averages are written out in shortest decimal form.
			assert.Equal(t, want, p.Metrics.Values(), "kwh=%v period=%s", kwh, p.Label)
		}
	}
}

func TestPeriodAverages_NoYears(t *testing.T) {
	lookups := newTestLookups()

	periods := lookups.PeriodAverages(nil)

	require.Len(t, periods, 5)
	for _, p := range periods {
		assert.Equal(t, models.Metrics{}, p.Metrics)
	}
}

func TestProject(t *testing.T) {
	lookups := newTestLookups()
	rec := officeRecord(1000)

	projection := lookups.Project(rec)

	assert.Equal(t, rec.Key, projection.Record.Key)
	assert.Len(t, projection.Yearly, 27)
	assert.Len(t, projection.Periods, 5)
}
