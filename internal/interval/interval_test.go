package interval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/vehicle-fleet-service/internal/interval"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"disjoint before", "2026-01-01", "2026-01-05", "2026-01-06", "2026-01-10", false},
		{"disjoint after", "2026-01-06", "2026-01-10", "2026-01-01", "2026-01-05", false},
		{"touching endpoints overlap", "2026-01-01", "2026-01-05", "2026-01-05", "2026-01-10", true},
		{"contained", "2026-01-03", "2026-01-04", "2026-01-01", "2026-01-10", true},
		{"containing", "2026-01-01", "2026-01-10", "2026-01-03", "2026-01-04", true},
		{"partial overlap", "2026-01-01", "2026-01-07", "2026-01-05", "2026-01-10", true},
		{"identical", "2026-01-01", "2026-01-05", "2026-01-01", "2026-01-05", true},
		{"single day vs range", "2026-01-03", "2026-01-03", "2026-01-01", "2026-01-05", true},
		{"single day outside", "2026-01-06", "2026-01-06", "2026-01-01", "2026-01-05", false},
		{"both single same day", "2026-01-03", "2026-01-03", "2026-01-03", "2026-01-03", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := interval.Overlaps(day(tc.aStart), day(tc.aEnd), day(tc.bStart), day(tc.bEnd))
			assert.Equal(t, tc.want, got)
			// the predicate is symmetric
			rev := interval.Overlaps(day(tc.bStart), day(tc.bEnd), day(tc.aStart), day(tc.aEnd))
			assert.Equal(t, tc.want, rev)
		})
	}
}

func TestDay(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 15, 9, 26, 535, time.FixedZone("X", 3*3600))
	got := interval.Day(stamp)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), got)

	// a timestamp late in a day and a date for the same day overlap
	// once both pass through Day
	late := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	assert.True(t, interval.Overlaps(interval.Day(late), interval.Day(late), day("2026-03-14"), day("2026-03-14")))
}
