package calculator

import (
	"github.com/stwalsh4118/ll97/internal/models"
)

// Lookups bundles the read-only tables every calculation depends on.
// Built once per run and shared by all workers without locking.
type Lookups struct {
	CarbonIntensity RateTable
	UnitCost        RateTable
	Thresholds      ThresholdTable
}

// NewLookups builds the rate tables for the planning horizon around an already
// loaded threshold table.
func NewLookups(thresholds ThresholdTable) Lookups {
	return Lookups{
		CarbonIntensity: BuildCarbonIntensityTable(models.HorizonStartYear, models.HorizonEndYear),
		UnitCost:        BuildUnitCostTable(models.HorizonStartYear, models.HorizonEndYear),
		Thresholds:      thresholds,
	}
}

// HorizonEnd returns the last year covered by both rate tables.
func (l Lookups) HorizonEnd() int {
	end := l.CarbonIntensity.EndYear
	if l.UnitCost.EndYear < end {
		end = l.UnitCost.EndYear
	}
	return end
}

// HorizonStart returns the first year covered by both rate tables.
func (l Lookups) HorizonStart() int {
	start := l.CarbonIntensity.StartYear
	if l.UnitCost.StartYear > start {
		start = l.UnitCost.StartYear
	}
	return start
}

// YearMetrics computes the four derived metrics for one record in one year.
func (l Lookups) YearMetrics(rec models.BuildingRecord, year int) models.YearMetrics {
	consumption := Normalize(rec.Readings)
	emissions := l.CarbonIntensity.Aggregate(year, consumption)
	threshold := l.Thresholds.Lookup(year, rec.CategoryName(), rec.FloorArea)

	return models.YearMetrics{
		Year: year,
		Metrics: models.Metrics{
			CarbonEmissions:    emissions,
			CostOfEnergy:       l.UnitCost.Aggregate(year, consumption),
			EmissionsThreshold: threshold,
			EstimatedPenalty:   Penalty(emissions, threshold),
		},
	}
}

// Yearly computes the metrics for every year of the horizon, in year order.
func (l Lookups) Yearly(rec models.BuildingRecord) []models.YearMetrics {
	start, end := l.HorizonStart(), l.HorizonEnd()
	out := make([]models.YearMetrics, 0, end-start+1)
	for year := start; year <= end; year++ {
		out = append(out, l.YearMetrics(rec, year))
	}
	return out
}

// PeriodAverages averages yearly metrics over each compliance period. Years
// missing from yearly are skipped; a period with no years averages to zero.
func (l Lookups) PeriodAverages(yearly []models.YearMetrics) []models.PeriodMetrics {
	byYear := make(map[int]models.Metrics, len(yearly))
	for _, ym := range yearly {
		byYear[ym.Year] = ym.Metrics
	}

	periods := models.CompliancePeriods()
	out := make([]models.PeriodMetrics, 0, len(periods))
	for _, p := range periods {
		var sum models.Metrics
		n := 0
		for _, year := range p.Years(l.HorizonEnd()) {
			m, ok := byYear[year]
			if !ok {
				continue
			}
			sum = sum.Add(m)
			n++
		}
		avg := models.Metrics{}
		if n > 0 {
			avg = sum.Div(float64(n))
		}
		out = append(out, models.PeriodMetrics{Metrics: avg, Period: p, Label: p.Label()})
	}
	return out
}

// Project computes the full per-year and per-period projection for a record.
func (l Lookups) Project(rec models.BuildingRecord) models.Projection {
	yearly := l.Yearly(rec)
	return models.Projection{
		Record:  rec,
		Yearly:  yearly,
		Periods: l.PeriodAverages(yearly),
	}
}
