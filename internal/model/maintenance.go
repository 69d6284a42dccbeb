package model

import (
    "math"
    "time"
)

// MaintenanceItem is one line of a work order.  Items have no
// existence outside their order: saving an order rewrites its entire
// item set, and deleting the order cascades to its items.
//
// Fields:
//  ID             – primary key identifier.
//  OrderID        – owning maintenance order.
//  ItemNo         – 1-based line number within the order.
//  Description    – what was repaired or replaced.
//  Quantity       – number of units.
//  UnitPriceCents – price per unit in the minor currency unit.
//  AmountCents    – Quantity × UnitPriceCents, recomputed on save.
type MaintenanceItem struct {
    ID             uint64 // maintenance_items.id
    OrderID        uint64 // maintenance_items.order_id
    ItemNo         int    // maintenance_items.item_no
    Description    string // maintenance_items.description
    Quantity       int    // maintenance_items.qty
    UnitPriceCents int64  // maintenance_items.unit_price_cents
    AmountCents    int64  // maintenance_items.amount_cents
}

// MaintenanceOrder is a repair work order for one vehicle.  While
// AcceptDate is nil the order is open and the vehicle resolves to
// maintenance; signing off (setting AcceptDate) closes it.  The stored
// totals are a cache of RecomputeTotals over the current item set and
// are rewritten on every save, never edited independently.
type MaintenanceOrder struct {
    ID              uint64     // maintenance_orders.id
    VehicleID       uint64     // maintenance_orders.vehicle_id
    RepairDate      *time.Time // maintenance_orders.repair_date (nullable DATE)
    AcceptDate      *time.Time // maintenance_orders.accept_date (nullable DATE)
    CenterName      string     // maintenance_orders.center_name
    Note            string     // maintenance_orders.note
    CommitteeIDs    []uint64   // maintenance_committee.user_id links
    TotalQuantity   int        // maintenance_orders.total_qty (derived)
    SubtotalCents   int64      // maintenance_orders.subtotal_cents (derived)
    TaxCents        int64      // maintenance_orders.tax_cents (derived)
    GrandTotalCents int64      // maintenance_orders.grand_total_cents (derived)
    Items           []MaintenanceItem
    CreatedAt       time.Time // maintenance_orders.created_at
    UpdatedAt       time.Time // maintenance_orders.updated_at
}

// Open reports whether the order still signals maintenance, i.e. work
// has not been accepted yet.
func (o *MaintenanceOrder) Open() bool { return o.AcceptDate == nil }

// RecomputeTotals rewrites every derived monetary field from the
// current item set.  Line amounts are Quantity × UnitPriceCents, the
// tax is the subtotal times taxRate rounded to the nearest cent, and
// the grand total is their sum.  Item numbers are renumbered 1..n so
// the stored order matches the slice order.  This must run on every
// save; the persisted totals are never a source of truth on their own.
func (o *MaintenanceOrder) RecomputeTotals(taxRate float64) {
    var subtotal int64
    var totalQty int
    for i := range o.Items {
        it := &o.Items[i]
        it.ItemNo = i + 1
        it.AmountCents = int64(it.Quantity) * it.UnitPriceCents
        subtotal += it.AmountCents
        totalQty += it.Quantity
    }
    o.SubtotalCents = subtotal
    o.TaxCents = int64(math.Round(float64(subtotal) * taxRate))
    o.GrandTotalCents = o.SubtotalCents + o.TaxCents
    o.TotalQuantity = totalQty
}
