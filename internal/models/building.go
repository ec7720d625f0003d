package models

// Column names shared by the covered-buildings list and the benchmarking dataset.
const (
	// KeyColumn is the normalized Borough-Block-Lot column of the joined table.
	KeyColumn = "BBL"
	// SecondaryKeyColumn is the BBL column name used by the benchmarking dataset.
	SecondaryKeyColumn = "NYC Borough, Block and Lot (BBL)"

	CategoryColumn        = "Largest Property Use Type"
	FloorAreaColumn       = "Largest Property Use Type - Gross Floor Area (ft²)"
	SecondFloorAreaColumn = "2nd Largest Property Use Type - Gross Floor Area (ft²)"
	ThirdFloorAreaColumn  = "3rd Largest Property Use Type - Gross Floor Area (ft²)"
)

// NumericColumns are coerced to floats after the join; missing or
// non-numeric cells become 0.
var NumericColumns = []string{
	Electricity.Spec().SourceColumn,
	NaturalGas.Spec().SourceColumn,
	Steam.Spec().SourceColumn,
	FuelOil2.Spec().SourceColumn,
	FuelOil4.Spec().SourceColumn,
	FloorAreaColumn,
	SecondFloorAreaColumn,
	ThirdFloorAreaColumn,
}

// BuildingRecord is the calculation view of one joined row.
// Category is nil when the building had no benchmarking match or the cell was blank.
type BuildingRecord struct {
	Category  *string
	Key       string
	FloorArea float64
	Readings  EnergyAmounts
}

// CategoryName returns the category or "" when absent.
func (b BuildingRecord) CategoryName() string {
	if b.Category == nil {
		return ""
	}
	return *b.Category
}

// Metric names, in output column order.
const (
	MetricCarbonEmissions    = "carbon_emissions"
	MetricCostOfEnergy       = "cost_of_energy"
	MetricEmissionsThreshold = "carbon_emissions_threshold"
	MetricEstimatedPenalty   = "estimated_penalty"
)

// MetricNames lists the derived metrics in output column order.
var MetricNames = []string{
	MetricCarbonEmissions,
	MetricCostOfEnergy,
	MetricEmissionsThreshold,
	MetricEstimatedPenalty,
}

// Metrics are the four derived figures for one building over one year or
// one compliance period (as a per-year average).
type Metrics struct {
	CarbonEmissions    float64 `json:"carbon_emissions"`
	CostOfEnergy       float64 `json:"cost_of_energy"`
	EmissionsThreshold float64 `json:"carbon_emissions_threshold"`
	EstimatedPenalty   float64 `json:"estimated_penalty"`
}

// Values returns the metrics in MetricNames order.
func (m Metrics) Values() [4]float64 {
	return [4]float64{m.CarbonEmissions, m.CostOfEnergy, m.EmissionsThreshold, m.EstimatedPenalty}
}

// Add returns the element-wise sum of m and o.
func (m Metrics) Add(o Metrics) Metrics {
	return Metrics{
		CarbonEmissions:    m.CarbonEmissions + o.CarbonEmissions,
		CostOfEnergy:       m.CostOfEnergy + o.CostOfEnergy,
		EmissionsThreshold: m.EmissionsThreshold + o.EmissionsThreshold,
		EstimatedPenalty:   m.EstimatedPenalty + o.EstimatedPenalty,
	}
}

// Div returns m with every metric divided by d.
func (m Metrics) Div(d float64) Metrics {
	return Metrics{
		CarbonEmissions:    m.CarbonEmissions / d,
		CostOfEnergy:       m.CostOfEnergy / d,
		EmissionsThreshold: m.EmissionsThreshold / d,
		EstimatedPenalty:   m.EstimatedPenalty / d,
	}
}

// YearMetrics are the metrics for a single calendar year.
type YearMetrics struct {
	Metrics
	Year int `json:"year"`
}

// PeriodMetrics are per-year averages over a compliance period.
type PeriodMetrics struct {
	Metrics
	Period CompliancePeriod `json:"-"`
	Label  string           `json:"period"`
}

// Projection is the full derived result for one building.
type Projection struct {
	Record  BuildingRecord
	Yearly  []YearMetrics
	Periods []PeriodMetrics
}
