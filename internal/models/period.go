package models

import (
	"fmt"
	"strconv"
)

// Planning horizon covered by the rate tables.
const (
	HorizonStartYear = 2024
	HorizonEndYear   = 2050
)

// BoundaryYears are the years in which the emissions limits change.
// Each opens a compliance period that runs until the next boundary.
var BoundaryYears = []int{2024, 2030, 2035, 2040, 2050}

// CompliancePeriod is a span of years sharing one emissions limit.
// EndYear is inclusive; an open-ended period has EndYear == 0.
type CompliancePeriod struct {
	StartYear int
	EndYear   int
}

// OpenEnded reports whether the period has no upper bound.
func (p CompliancePeriod) OpenEnded() bool {
	return p.EndYear == 0
}

// Label returns "2024-2029" for bounded periods and "2050+" for the open one.
func (p CompliancePeriod) Label() string {
	if p.OpenEnded() {
		return fmt.Sprintf("%d+", p.StartYear)
	}
	return fmt.Sprintf("%d-%d", p.StartYear, p.EndYear)
}

// Key is the threshold reference column for the period, e.g. "2030".
func (p CompliancePeriod) Key() string {
	return strconv.Itoa(p.StartYear)
}

// Contains reports whether year falls within the period.
func (p CompliancePeriod) Contains(year int) bool {
	if year < p.StartYear {
		return false
	}
	return p.OpenEnded() || year <= p.EndYear
}

// Years returns the years of the period that lie inside [HorizonStartYear, horizonEnd].
// The open-ended period is clipped to horizonEnd.
func (p CompliancePeriod) Years(horizonEnd int) []int {
	end := p.EndYear
	if p.OpenEnded() || end > horizonEnd {
		end = horizonEnd
	}
	start := p.StartYear
	if start < HorizonStartYear {
		start = HorizonStartYear
	}
	if end < start {
		return nil
	}
	years := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, y)
	}
	return years
}

// CompliancePeriods returns the periods opened by BoundaryYears, in order.
func CompliancePeriods() []CompliancePeriod {
	periods := make([]CompliancePeriod, 0, len(BoundaryYears))
	for i, start := range BoundaryYears {
		p := CompliancePeriod{StartYear: start}
		if i+1 < len(BoundaryYears) {
			p.EndYear = BoundaryYears[i+1] - 1
		}
		periods = append(periods, p)
	}
	return periods
}

// PeriodStartYear returns the latest boundary year that is <= year,
// or 0 when year precedes the first boundary.
func PeriodStartYear(year int) int {
	start := 0
	for _, boundary := range BoundaryYears {
		if year < boundary {
			break
		}
		start = boundary
	}
	return start
}

// PeriodForYear returns the compliance period containing year.
// ok is false when year precedes the first boundary.
func PeriodForYear(year int) (CompliancePeriod, bool) {
	for _, p := range CompliancePeriods() {
		if p.Contains(year) {
			return p, true
		}
	}
	return CompliancePeriod{}, false
}
