package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

var clock = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func hoursFromClock(h int) *time.Time {
	t := clock.Add(time.Duration(h) * time.Hour)
	return &t
}

func TestDisplayStatus(t *testing.T) {
	cases := []struct {
		name string
		rec  model.UsageRecord
		want model.UsageStatus
	}{
		{
			"open loan without planned return",
			model.UsageRecord{StartTime: clock.Add(-time.Hour)},
			model.UsageInUse,
		},
		{
			"open loan before planned return",
			model.UsageRecord{StartTime: clock.Add(-time.Hour), PlannedReturn: hoursFromClock(2)},
			model.UsageInUse,
		},
		{
			"open loan past planned return",
			model.UsageRecord{StartTime: clock.Add(-48 * time.Hour), PlannedReturn: hoursFromClock(-1)},
			model.UsageOverdue,
		},
		{
			"planned return exactly now is not overdue",
			model.UsageRecord{StartTime: clock.Add(-time.Hour), PlannedReturn: &clock},
			model.UsageInUse,
		},
		{
			"maintenance handover never reads overdue",
			model.UsageRecord{StartTime: clock.Add(-48 * time.Hour), PlannedReturn: hoursFromClock(-1), IsMaintenance: true},
			model.UsageMaintenance,
		},
		{
			"returned wins over everything",
			model.UsageRecord{StartTime: clock.Add(-48 * time.Hour), PlannedReturn: hoursFromClock(-1), IsMaintenance: true, ReturnedAt: hoursFromClock(-2)},
			model.UsageReturned,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rec.DisplayStatus(clock))
		})
	}
}

func TestOpen(t *testing.T) {
	rec := model.UsageRecord{StartTime: clock}
	assert.True(t, rec.Open())
	rec.ReturnedAt = &clock
	assert.False(t, rec.Open())
}

func TestRangeEnd(t *testing.T) {
	rec := model.UsageRecord{StartTime: clock}
	assert.Equal(t, clock, rec.RangeEnd())

	planned := clock.Add(72 * time.Hour)
	rec.PlannedReturn = &planned
	assert.Equal(t, planned, rec.RangeEnd())
}
