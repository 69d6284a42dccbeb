package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "AB 123", model.NormalizePlate("  AB   123 "))
	assert.Equal(t, "AB 123", model.NormalizePlate("AB\t123"))
	assert.Equal(t, "", model.NormalizePlate("   "))
}

func TestPlateKey(t *testing.T) {
	// plates differing only in case or spacing collapse to one key
	assert.Equal(t, model.PlateKey("AB 123"), model.PlateKey("ab123"))
	assert.Equal(t, model.PlateKey("A B 1 2 3"), model.PlateKey("AB123"))
	assert.Equal(t, "ab123", model.PlateKey(" AB 1 23 "))
	assert.NotEqual(t, model.PlateKey("AB123"), model.PlateKey("AB124"))
}

func TestConditionValid(t *testing.T) {
	for _, c := range []model.VehicleCondition{
		model.ConditionNormal, model.ConditionLost,
		model.ConditionDisabled, model.ConditionAwaitingDisposal,
	} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, model.VehicleCondition("scrapped").Valid())
	assert.False(t, model.VehicleCondition("").Valid())
}

func TestConditionSelectable(t *testing.T) {
	assert.True(t, model.ConditionNormal.Selectable())
	assert.True(t, model.ConditionAwaitingDisposal.Selectable())
	assert.False(t, model.ConditionLost.Selectable())
	assert.False(t, model.ConditionDisabled.Selectable())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []model.VehicleStatus{
		model.StatusAvailable, model.StatusInUse, model.StatusMaintenance,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, model.VehicleStatus("reserved").Valid())
	assert.False(t, model.VehicleStatus("").Valid())
}
