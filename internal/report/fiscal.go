// Package report computes fiscal-year aggregations over the
// maintenance and usage history. The fiscal year start month is
// configurable; with the default of October, FY2026 runs from
// 2025-10-01 up to but not including 2026-10-01 and is labeled by the
// calendar year it ends in. With a January start the fiscal year and
// the calendar year coincide.
package report

import "time"

// FiscalYear returns the fiscal year label containing t. startMonth is
// the first month of the fiscal year (1..12).
func FiscalYear(t time.Time, startMonth time.Month) int {
	if startMonth == time.January {
		return t.Year()
	}
	if t.Month() >= startMonth {
		return t.Year() + 1
	}
	return t.Year()
}

// FiscalYearBounds returns the half-open UTC interval [from, to) of
// the given fiscal year label.
func FiscalYearBounds(fy int, startMonth time.Month) (from, to time.Time) {
	startYear := fy
	if startMonth != time.January {
		startYear = fy - 1
	}
	from = time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(1, 0, 0)
	return from, to
}

// MonthIndex returns the 0-based position of m within a fiscal year
// starting at startMonth, so the report's month axis can run in fiscal
// order (October first when startMonth is October).
func MonthIndex(m, startMonth time.Month) int {
	return (int(m) - int(startMonth) + 12) % 12
}

// MonthAt returns the calendar month at the given 0-based fiscal
// position. The inverse of MonthIndex.
func MonthAt(index int, startMonth time.Month) time.Month {
	return time.Month((int(startMonth)-1+index)%12 + 1)
}

// CurrentFiscalYear is FiscalYear at the given instant, split out so
// handlers pass an explicit clock and tests stay deterministic.
func CurrentFiscalYear(now time.Time, startMonth time.Month) int {
	return FiscalYear(now, startMonth)
}
