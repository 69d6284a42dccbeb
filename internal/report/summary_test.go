package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/report"
)

func TestCountStatuses(t *testing.T) {
	fleet := []model.Vehicle{
		{ID: 1, Status: model.StatusAvailable},
		{ID: 2, Status: model.StatusInUse},
		{ID: 3, Status: model.StatusInUse},
		{ID: 4, Status: model.StatusMaintenance},
	}
	counts := report.CountStatuses(fleet)
	assert.Equal(t, 1, counts[model.StatusAvailable])
	assert.Equal(t, 2, counts[model.StatusInUse])
	assert.Equal(t, 1, counts[model.StatusMaintenance])
}

func TestCountStatusesZeroFillsAndDefaults(t *testing.T) {
	counts := report.CountStatuses(nil)
	assert.Len(t, counts, 3)
	for s, n := range counts {
		assert.Zero(t, n, string(s))
	}

	// a row whose status was never materialized counts as available
	counts = report.CountStatuses([]model.Vehicle{{ID: 1}})
	assert.Equal(t, 1, counts[model.StatusAvailable])
}
