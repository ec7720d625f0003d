package calculator

// PenaltyPerTonOverThreshold is the LL97 civil penalty in USD per tCO2e above the limit.
const PenaltyPerTonOverThreshold = 268.0

// Penalty returns the fine for emitting emissions against the given limit.
// Emissions at or under the limit cost nothing.
func Penalty(emissions, threshold float64) float64 {
	if emissions <= threshold {
		return 0.0
	}
	return PenaltyPerTonOverThreshold * (emissions - threshold)
}
