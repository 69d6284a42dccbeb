package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

func TestRecomputeTotals(t *testing.T) {
	o := model.MaintenanceOrder{
		Items: []model.MaintenanceItem{
			{Description: "brake pads", Quantity: 2, UnitPriceCents: 40000},
			{Description: "labor", Quantity: 1, UnitPriceCents: 50000},
		},
	}
	o.RecomputeTotals(0.07)

	assert.Equal(t, int64(80000), o.Items[0].AmountCents)
	assert.Equal(t, int64(50000), o.Items[1].AmountCents)
	assert.Equal(t, int64(130000), o.SubtotalCents)
	assert.Equal(t, int64(9100), o.TaxCents)
	assert.Equal(t, int64(139100), o.GrandTotalCents)
	assert.Equal(t, 3, o.TotalQuantity)
}

func TestRecomputeTotalsRenumbersItems(t *testing.T) {
	o := model.MaintenanceOrder{
		Items: []model.MaintenanceItem{
			{ItemNo: 7, Quantity: 1, UnitPriceCents: 100},
			{ItemNo: 2, Quantity: 1, UnitPriceCents: 200},
			{Quantity: 1, UnitPriceCents: 300},
		},
	}
	o.RecomputeTotals(0)
	for i, it := range o.Items {
		assert.Equal(t, i+1, it.ItemNo)
	}
	assert.Equal(t, int64(600), o.SubtotalCents)
	assert.Zero(t, o.TaxCents)
	assert.Equal(t, int64(600), o.GrandTotalCents)
}

func TestRecomputeTotalsEmptyOrder(t *testing.T) {
	var o model.MaintenanceOrder
	o.RecomputeTotals(0.07)
	assert.Zero(t, o.SubtotalCents)
	assert.Zero(t, o.TaxCents)
	assert.Zero(t, o.GrandTotalCents)
	assert.Zero(t, o.TotalQuantity)
}

func TestRecomputeTotalsRoundsTaxToNearestCent(t *testing.T) {
	o := model.MaintenanceOrder{
		Items: []model.MaintenanceItem{{Quantity: 1, UnitPriceCents: 15}},
	}
	// 15 * 0.07 = 1.05, rounds to 1
	o.RecomputeTotals(0.07)
	assert.Equal(t, int64(1), o.TaxCents)

	o = model.MaintenanceOrder{
		Items: []model.MaintenanceItem{{Quantity: 1, UnitPriceCents: 50}},
	}
	// 50 * 0.07 = 3.5, rounds half up to 4
	o.RecomputeTotals(0.07)
	assert.Equal(t, int64(4), o.TaxCents)
}

func TestOrderOpen(t *testing.T) {
	var o model.MaintenanceOrder
	assert.True(t, o.Open())

	accepted := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	o.AcceptDate = &accepted
	assert.False(t, o.Open())
}
