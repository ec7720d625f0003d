package models

import "fmt"

// EnergyType identifies one of the fuel types reported in the benchmarking dataset.
// The set is closed; AllEnergyTypes lists every member in report order.
type EnergyType int

const (
	Electricity EnergyType = iota
	NaturalGas
	Steam
	FuelOil2
	FuelOil4
)

// AllEnergyTypes is the fixed iteration order used for every per-type calculation.
var AllEnergyTypes = [...]EnergyType{Electricity, NaturalGas, Steam, FuelOil2, FuelOil4}

// EnergyTypeCount is the number of members of EnergyType.
const EnergyTypeCount = len(AllEnergyTypes)

// EnergySpec describes how a raw meter reading for an energy type is converted
// into the unit that emissions factors and tariffs are quoted in.
// Conversions follow the ENERGY STAR Portfolio Manager thermal conversion table.
type EnergySpec struct {
	// Name is the display name, e.g. "Natural Gas".
	Name string
	// SourceColumn is the benchmarking dataset column holding the raw reading.
	SourceColumn string
	// SourceUnit is the unit of the raw reading.
	SourceUnit string
	// BillingUnit is the unit rates are quoted in.
	BillingUnit string
	// ConversionFactor divides a raw reading to yield billing units.
	ConversionFactor float64
}

var energySpecs = [EnergyTypeCount]EnergySpec{
	Electricity: {
		Name:             "Electricity",
		SourceColumn:     "Electricity Use - Grid Purchase (kWh)",
		SourceUnit:       "kWh",
		BillingUnit:      "kWh",
		ConversionFactor: 1.0,
	},
	NaturalGas: {
		Name:             "Natural Gas",
		SourceColumn:     "Natural Gas Use (kBtu)",
		SourceUnit:       "kBtu",
		BillingUnit:      "therm",
		ConversionFactor: 100.0,
	},
	Steam: {
		Name:             "Steam",
		SourceColumn:     "District Steam Use (kBtu)",
		SourceUnit:       "kBtu",
		BillingUnit:      "Mlb",
		ConversionFactor: 1194.0,
	},
	FuelOil2: {
		Name:             "Fuel Oil 2",
		SourceColumn:     "Fuel Oil #2 Use (kBtu)",
		SourceUnit:       "kBtu",
		BillingUnit:      "gal",
		ConversionFactor: 138.0,
	},
	FuelOil4: {
		Name:             "Fuel Oil 4",
		SourceColumn:     "Fuel Oil #4 Use (kBtu)",
		SourceUnit:       "kBtu",
		BillingUnit:      "gal",
		ConversionFactor: 146.0,
	},
}

// Spec returns the conversion metadata for the energy type.
// It panics for values outside the enumeration.
func (e EnergyType) Spec() EnergySpec {
	if !e.Valid() {
		panic(fmt.Sprintf("models: unknown energy type %d", int(e)))
	}
	return energySpecs[e]
}

// Valid reports whether e is a member of the enumeration.
func (e EnergyType) Valid() bool {
	return e >= Electricity && e <= FuelOil4
}

// String returns the display name of the energy type.
func (e EnergyType) String() string {
	if !e.Valid() {
		return fmt.Sprintf("EnergyType(%d)", int(e))
	}
	return energySpecs[e].Name
}

// ParseEnergyType resolves a display name such as "Fuel Oil 2" to its EnergyType.
func ParseEnergyType(name string) (EnergyType, bool) {
	for _, e := range AllEnergyTypes {
		if energySpecs[e].Name == name {
			return e, true
		}
	}
	return 0, false
}

// EnergyAmounts holds one value per energy type, indexed by EnergyType.
type EnergyAmounts [EnergyTypeCount]float64

// Get returns the amount for the energy type.
func (a EnergyAmounts) Get(e EnergyType) float64 {
	return a[e]
}

// Map converts the amounts to a name-keyed map, mainly for JSON responses.
func (a EnergyAmounts) Map() map[string]float64 {
	out := make(map[string]float64, EnergyTypeCount)
	for _, e := range AllEnergyTypes {
		out[e.String()] = a[e]
	}
	return out
}
