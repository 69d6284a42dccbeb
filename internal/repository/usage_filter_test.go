package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/repository"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestUsageFilterMatchesDateWindow(t *testing.T) {
	now := day(2026, 7, 1)
	window := repository.UsageFilter{From: day(2026, 6, 10), To: day(2026, 6, 20)}

	cases := []struct {
		name string
		rec  model.UsageRecord
		want bool
	}{
		{
			"loan fully inside the window",
			model.UsageRecord{
				StartTime:     day(2026, 6, 12).Add(9 * time.Hour),
				PlannedReturn: ptrTime(day(2026, 6, 14)),
			},
			true,
		},
		{
			"loan straddling the window start",
			model.UsageRecord{
				StartTime:     day(2026, 6, 1),
				PlannedReturn: ptrTime(day(2026, 6, 10)),
			},
			true,
		},
		{
			"loan starting on the last window day",
			model.UsageRecord{
				StartTime:     day(2026, 6, 20).Add(23 * time.Hour),
				PlannedReturn: ptrTime(day(2026, 6, 30)),
			},
			true,
		},
		{
			"loan entirely before the window",
			model.UsageRecord{
				StartTime:     day(2026, 6, 1),
				PlannedReturn: ptrTime(day(2026, 6, 9)),
			},
			false,
		},
		{
			"loan entirely after the window",
			model.UsageRecord{
				StartTime:     day(2026, 6, 21),
				PlannedReturn: ptrTime(day(2026, 6, 25)),
			},
			false,
		},
		{
			"no planned return collapses the range to the start day",
			model.UsageRecord{StartTime: day(2026, 6, 15).Add(8 * time.Hour)},
			true,
		},
		{
			"no planned return outside the window",
			model.UsageRecord{StartTime: day(2026, 6, 25)},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, window.Matches(&tc.rec, now))
		})
	}
}

func TestUsageFilterMatchesWithoutWindow(t *testing.T) {
	now := day(2026, 7, 1)
	rec := model.UsageRecord{StartTime: day(2020, 1, 1)}
	assert.True(t, repository.UsageFilter{}.Matches(&rec, now))
}

func TestUsageFilterMatchesCombinesStatusAndWindow(t *testing.T) {
	now := day(2026, 6, 16)
	f := repository.UsageFilter{
		Status: model.UsageOverdue,
		From:   day(2026, 6, 10),
		To:     day(2026, 6, 20),
	}

	overdue := model.UsageRecord{
		StartTime:     day(2026, 6, 12),
		PlannedReturn: ptrTime(day(2026, 6, 14)),
	}
	assert.True(t, f.Matches(&overdue, now))

	returned := overdue
	returned.ReturnedAt = ptrTime(day(2026, 6, 14))
	assert.False(t, f.Matches(&returned, now), "window alone must not admit a returned loan")

	overdueOutside := model.UsageRecord{
		StartTime:     day(2026, 6, 1),
		PlannedReturn: ptrTime(day(2026, 6, 5)),
	}
	assert.False(t, f.Matches(&overdueOutside, now), "status alone must not admit a loan outside the window")
}
