package calculator

import (
	"fmt"

	"github.com/stwalsh4118/ll97/internal/models"
)

// RateStepYear is the first year the post-2030 electricity and steam
// emissions factors apply.
const RateStepYear = 2030

// Carbon intensity factors in tCO2e per billing unit.
const (
	ElectricityIntensityBefore2030 = 0.29 / 1000.0 // tCO2e/kWh
	ElectricityIntensityFrom2030   = 0.15 / 1000.0
	NaturalGasIntensity            = 5.0 / 1000.0 // tCO2e/therm
	SteamIntensityBefore2030       = 53.6 / 1000.0 // tCO2e/Mlb
	SteamIntensityFrom2030         = 51.6 / 1000.0
	FuelOil2Intensity              = 10.24 / 1000.0 // tCO2e/gal
	FuelOil4Intensity              = 10.99 / 1000.0 // tCO2e/gal
)

// Unit costs in USD per billing unit.
const (
	ElectricityUnitCost = 0.22  // $/kWh
	NaturalGasUnitCost  = 0.997 // $/therm
	SteamUnitCost       = 35.0  // $/Mlb
	FuelOil2UnitCost    = 1.65  // $/gal
	FuelOil4UnitCost    = 1.65  // $/gal
)

// RateFunc returns the rate for an energy type in a given year.
type RateFunc func(year int, e models.EnergyType) float64

// RateTable maps year -> energy type -> rate per billing unit.
type RateTable struct {
	StartYear int
	EndYear   int
	rates     map[int]models.EnergyAmounts
}

// BuildRateTable evaluates fn for every year in [startYear, endYearInclusive].
func BuildRateTable(startYear, endYearInclusive int, fn RateFunc) RateTable {
	t := RateTable{
		StartYear: startYear,
		EndYear:   endYearInclusive,
		rates:     make(map[int]models.EnergyAmounts, endYearInclusive-startYear+1),
	}
	for year := startYear; year <= endYearInclusive; year++ {
		var row models.EnergyAmounts
		for _, e := range models.AllEnergyTypes {
			row[e] = fn(year, e)
		}
		t.rates[year] = row
	}
	return t
}

// CarbonIntensity is the RateFunc for emissions factors.
func CarbonIntensity(year int, e models.EnergyType) float64 {
	switch e {
	case models.Electricity:
		if year >= RateStepYear {
			return ElectricityIntensityFrom2030
		}
		return ElectricityIntensityBefore2030
	case models.NaturalGas:
		return NaturalGasIntensity
	case models.Steam:
		if year >= RateStepYear {
			return SteamIntensityFrom2030
		}
		return SteamIntensityBefore2030
	case models.FuelOil2:
		return FuelOil2Intensity
	case models.FuelOil4:
		return FuelOil4Intensity
	default:
		panic(fmt.Sprintf("calculator: no carbon intensity for %v", e))
	}
}

// UnitCost is the RateFunc for energy tariffs. Costs are flat across the horizon.
func UnitCost(_ int, e models.EnergyType) float64 {
	switch e {
	case models.Electricity:
		return ElectricityUnitCost
	case models.NaturalGas:
		return NaturalGasUnitCost
	case models.Steam:
		return SteamUnitCost
	case models.FuelOil2:
		return FuelOil2UnitCost
	case models.FuelOil4:
		return FuelOil4UnitCost
	default:
		panic(fmt.Sprintf("calculator: no unit cost for %v", e))
	}
}

// BuildCarbonIntensityTable builds the emissions factor table for the year span.
func BuildCarbonIntensityTable(startYear, endYearInclusive int) RateTable {
	return BuildRateTable(startYear, endYearInclusive, CarbonIntensity)
}

// BuildUnitCostTable builds the energy cost table for the year span.
func BuildUnitCostTable(startYear, endYearInclusive int) RateTable {
	return BuildRateTable(startYear, endYearInclusive, UnitCost)
}

// Year returns the rates for year.
// Requesting a year outside the built span is a programming error and panics.
func (t RateTable) Year(year int) models.EnergyAmounts {
	row, ok := t.rates[year]
	if !ok {
		panic(fmt.Sprintf("calculator: year %d outside rate table horizon [%d, %d]", year, t.StartYear, t.EndYear))
	}
	return row
}

// Rate returns the rate for one energy type in one year.
func (t RateTable) Rate(year int, e models.EnergyType) float64 {
	return t.Year(year)[e]
}

// Aggregate sums consumption[e] * rate[year][e] over every energy type.
// consumption must already be in billing units.
func (t RateTable) Aggregate(year int, consumption models.EnergyAmounts) float64 {
	rates := t.Year(year)
	total := 0.0
	for _, e := range models.AllEnergyTypes {
		total += consumption[e] * rates[e]
	}
	return total
}
