package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/vehicle-fleet-service/internal/report"
)

func TestFiscalYearOctoberStart(t *testing.T) {
	// FY2026 runs 2025-10-01 .. 2026-09-30
	assert.Equal(t, 2026, report.FiscalYear(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), time.October))
	assert.Equal(t, 2026, report.FiscalYear(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), time.October))
	assert.Equal(t, 2026, report.FiscalYear(time.Date(2026, 9, 30, 23, 59, 0, 0, time.UTC), time.October))
	assert.Equal(t, 2027, report.FiscalYear(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), time.October))
	assert.Equal(t, 2025, report.FiscalYear(time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), time.October))
}

func TestFiscalYearJanuaryStartMatchesCalendar(t *testing.T) {
	for _, m := range []time.Month{time.January, time.June, time.December} {
		assert.Equal(t, 2026, report.FiscalYear(time.Date(2026, m, 15, 0, 0, 0, 0, time.UTC), time.January))
	}
}

func TestFiscalYearBounds(t *testing.T) {
	from, to := report.FiscalYearBounds(2026, time.October)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), to)

	from, to = report.FiscalYearBounds(2026, time.January)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), to)

	// every instant inside the bounds maps back to the same label
	assert.Equal(t, 2026, report.FiscalYear(from, time.January))
	assert.Equal(t, 2026, report.FiscalYear(to.Add(-time.Second), time.January))
}

func TestMonthIndex(t *testing.T) {
	assert.Equal(t, 0, report.MonthIndex(time.October, time.October))
	assert.Equal(t, 2, report.MonthIndex(time.December, time.October))
	assert.Equal(t, 3, report.MonthIndex(time.January, time.October))
	assert.Equal(t, 11, report.MonthIndex(time.September, time.October))
	assert.Equal(t, 0, report.MonthIndex(time.January, time.January))
	assert.Equal(t, 11, report.MonthIndex(time.December, time.January))
}

func TestMonthAtInvertsMonthIndex(t *testing.T) {
	for _, start := range []time.Month{time.January, time.April, time.October} {
		for i := 0; i < 12; i++ {
			m := report.MonthAt(i, start)
			assert.Equal(t, i, report.MonthIndex(m, start))
		}
	}
}
