package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

// MaintenanceRepo stores maintenance orders with their items and
// committee links.  An order's item set is replaced wholesale on every
// save, never patched; the stored totals are rewritten from the items
// at the same time so they can never drift.
type MaintenanceRepo struct {
	db *sql.DB
}

// NewMaintenanceRepo returns a new MaintenanceRepo bound to the given database.
func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{db: db} }

const orderCols = `id, vehicle_id, repair_date, accept_date, center_name, note,
	total_qty, subtotal_cents, tax_cents, grand_total_cents, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.MaintenanceOrder, error) {
	var o model.MaintenanceOrder
	var repair, accept sql.NullTime
	err := row.Scan(&o.ID, &o.VehicleID, &repair, &accept, &o.CenterName,
		&o.Note, &o.TotalQuantity, &o.SubtotalCents, &o.TaxCents,
		&o.GrandTotalCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if repair.Valid {
		t := repair.Time
		o.RepairDate = &t
	}
	if accept.Valid {
		t := accept.Time
		o.AcceptDate = &t
	}
	return &o, nil
}

// SaveTx creates or updates an order inside the given transaction.
// The caller must have run RecomputeTotals first; SaveTx persists the
// order exactly as given.  On update the existing items and committee
// links are deleted and the current sets reinserted, so the stored
// rows always mirror the order in memory.
func (r *MaintenanceRepo) SaveTx(ctx context.Context, tx *sql.Tx, o *model.MaintenanceOrder) error {
	if o.ID == 0 {
		res, err := tx.ExecContext(ctx, `INSERT INTO maintenance_orders
			(vehicle_id, repair_date, accept_date, center_name, note,
			 total_qty, subtotal_cents, tax_cents, grand_total_cents)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.VehicleID, nullableTime(o.RepairDate), nullableTime(o.AcceptDate),
			o.CenterName, o.Note, o.TotalQuantity, o.SubtotalCents,
			o.TaxCents, o.GrandTotalCents)
		if err != nil {
			return wrapStore(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrapStore(err)
		}
		o.ID = uint64(id)
	} else {
		res, err := tx.ExecContext(ctx, `UPDATE maintenance_orders SET
			vehicle_id = ?, repair_date = ?, accept_date = ?, center_name = ?,
			note = ?, total_qty = ?, subtotal_cents = ?, tax_cents = ?,
			grand_total_cents = ?
			WHERE id = ?`,
			o.VehicleID, nullableTime(o.RepairDate), nullableTime(o.AcceptDate),
			o.CenterName, o.Note, o.TotalQuantity, o.SubtotalCents,
			o.TaxCents, o.GrandTotalCents, o.ID)
		if err != nil {
			return wrapStore(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return wrapStore(err)
		} else if n == 0 {
			var one int
			if err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM maintenance_orders WHERE id = ?`, o.ID).Scan(&one); err != nil {
				return wrapStore(err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM maintenance_items WHERE order_id = ?`, o.ID); err != nil {
			return wrapStore(err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM maintenance_committee WHERE order_id = ?`, o.ID); err != nil {
			return wrapStore(err)
		}
	}

	for i := range o.Items {
		it := &o.Items[i]
		res, err := tx.ExecContext(ctx, `INSERT INTO maintenance_items
			(order_id, item_no, description, qty, unit_price_cents, amount_cents)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, it.ItemNo, it.Description, it.Quantity,
			it.UnitPriceCents, it.AmountCents)
		if err != nil {
			return wrapStore(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrapStore(err)
		}
		it.ID = uint64(id)
		it.OrderID = o.ID
	}
	for _, uid := range o.CommitteeIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO maintenance_committee
			(order_id, user_id) VALUES (?, ?)`, o.ID, uid); err != nil {
			return wrapStore(err)
		}
	}
	return nil
}

// GetByID loads an order with its items and committee links.
func (r *MaintenanceRepo) GetByID(ctx context.Context, id uint64) (*model.MaintenanceOrder, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderCols+` FROM maintenance_orders WHERE id = ?`, id))
	if err != nil {
		return nil, wrapStore(err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, order_id, item_no,
		description, qty, unit_price_cents, amount_cents
		FROM maintenance_items WHERE order_id = ? ORDER BY item_no ASC`, id)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.MaintenanceItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ItemNo, &it.Description,
			&it.Quantity, &it.UnitPriceCents, &it.AmountCents)
		if err != nil {
			return nil, wrapStore(err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}

	crows, err := r.db.QueryContext(ctx, `SELECT user_id
		FROM maintenance_committee WHERE order_id = ? ORDER BY user_id ASC`, id)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer crows.Close()
	for crows.Next() {
		var uid uint64
		if err := crows.Scan(&uid); err != nil {
			return nil, wrapStore(err)
		}
		o.CommitteeIDs = append(o.CommitteeIDs, uid)
	}
	if err := crows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return o, nil
}

// HasOpenByVehicle reports whether the vehicle has any order without
// an accept date.  One of the resolver's inputs.
func (r *MaintenanceRepo) HasOpenByVehicle(ctx context.Context, vehicleID uint64) (bool, error) {
	return hasOpenOrder(ctx, r.db, vehicleID)
}

// HasOpenByVehicleTx is HasOpenByVehicle inside a transaction, used by
// the borrow availability check while the vehicle row is locked.
func (r *MaintenanceRepo) HasOpenByVehicleTx(ctx context.Context, tx *sql.Tx, vehicleID uint64) (bool, error) {
	return hasOpenOrder(ctx, tx, vehicleID)
}

func hasOpenOrder(ctx context.Context, q querier, vehicleID uint64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM maintenance_orders
		WHERE vehicle_id = ? AND accept_date IS NULL`, vehicleID).Scan(&n)
	if err != nil {
		return false, wrapStore(err)
	}
	return n > 0, nil
}

// ListHistory returns orders newest first, most recently touched date
// leading.  The optional search terms are matched case-insensitively
// in Go against the vehicle plate, the center name, the note, the item
// descriptions and the committee member names; a row matches when any
// term appears somewhere.
func (r *MaintenanceRepo) ListHistory(ctx context.Context, vehicleID uint64, search string) ([]model.MaintenanceOrder, error) {
	query := `SELECT o.id, o.vehicle_id, o.repair_date, o.accept_date,
		o.center_name, o.note, o.total_qty, o.subtotal_cents, o.tax_cents,
		o.grand_total_cents, o.created_at, o.updated_at, v.plate,
		COALESCE(GROUP_CONCAT(DISTINCT i.description SEPARATOR ' '), ''),
		COALESCE(GROUP_CONCAT(DISTINCT cu.full_name SEPARATOR ' '), '')
		FROM maintenance_orders o
		JOIN vehicles v ON v.id = o.vehicle_id
		LEFT JOIN maintenance_items i ON i.order_id = o.id
		LEFT JOIN maintenance_committee mc ON mc.order_id = o.id
		LEFT JOIN users cu ON cu.id = mc.user_id`
	args := []any{}
	if vehicleID != 0 {
		query += ` WHERE o.vehicle_id = ?`
		args = append(args, vehicleID)
	}
	query += ` GROUP BY o.id
		ORDER BY COALESCE(o.accept_date, o.repair_date) DESC, o.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()

	terms := strings.Fields(strings.ToLower(search))
	out := make([]model.MaintenanceOrder, 0)
	for rows.Next() {
		var o model.MaintenanceOrder
		var repair, accept sql.NullTime
		var plate, itemText, committeeText string
		err := rows.Scan(&o.ID, &o.VehicleID, &repair, &accept, &o.CenterName,
			&o.Note, &o.TotalQuantity, &o.SubtotalCents, &o.TaxCents,
			&o.GrandTotalCents, &o.CreatedAt, &o.UpdatedAt, &plate,
			&itemText, &committeeText)
		if err != nil {
			return nil, wrapStore(err)
		}
		if repair.Valid {
			t := repair.Time
			o.RepairDate = &t
		}
		if accept.Valid {
			t := accept.Time
			o.AcceptDate = &t
		}
		if !matchesAnyTerm(terms, o.CenterName, o.Note, plate, itemText,
			committeeText, strconv.FormatUint(o.ID, 10)) {
			continue
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

func matchesAnyTerm(terms []string, fields ...string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(strings.Join(fields, " "))
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

// MonthTotal is an aggregated spend figure for one calendar month.
type MonthTotal struct {
	Year       int
	Month      time.Month
	OrderCount int
	TotalCents int64
}

// MonthlyTotals sums accepted orders per calendar month over
// [from, to).  Orders without an accept date are not yet spend and are
// excluded.
func (r *MaintenanceRepo) MonthlyTotals(ctx context.Context, from, to time.Time) ([]MonthTotal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		YEAR(accept_date), MONTH(accept_date), COUNT(*), SUM(grand_total_cents)
		FROM maintenance_orders
		WHERE accept_date IS NOT NULL AND accept_date >= ? AND accept_date < ?
		GROUP BY YEAR(accept_date), MONTH(accept_date)
		ORDER BY YEAR(accept_date) ASC, MONTH(accept_date) ASC`, from, to)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	out := make([]MonthTotal, 0)
	for rows.Next() {
		var m MonthTotal
		var month int
		if err := rows.Scan(&m.Year, &month, &m.OrderCount, &m.TotalCents); err != nil {
			return nil, wrapStore(err)
		}
		m.Month = time.Month(month)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

// VehicleTotal is an aggregated spend figure for one vehicle.
type VehicleTotal struct {
	VehicleID  uint64
	Plate      string
	OrderCount int
	TotalCents int64
}

// TotalsByVehicle sums accepted orders per vehicle over [from, to),
// biggest spender first.
func (r *MaintenanceRepo) TotalsByVehicle(ctx context.Context, from, to time.Time) ([]VehicleTotal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT o.vehicle_id, v.plate,
		COUNT(*), SUM(o.grand_total_cents)
		FROM maintenance_orders o
		JOIN vehicles v ON v.id = o.vehicle_id
		WHERE o.accept_date IS NOT NULL AND o.accept_date >= ? AND o.accept_date < ?
		GROUP BY o.vehicle_id, v.plate
		ORDER BY SUM(o.grand_total_cents) DESC, o.vehicle_id ASC`, from, to)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	out := make([]VehicleTotal, 0)
	for rows.Next() {
		var v VehicleTotal
		if err := rows.Scan(&v.VehicleID, &v.Plate, &v.OrderCount, &v.TotalCents); err != nil {
			return nil, wrapStore(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

// Delete removes an order; items and committee links cascade.  It
// returns the vehicle id and whether the order was still open so the
// caller knows to recompute the vehicle's status.
func (r *MaintenanceRepo) Delete(ctx context.Context, id uint64) (vehicleID uint64, wasOpen bool, err error) {
	var accept sql.NullTime
	err = r.db.QueryRowContext(ctx,
		`SELECT vehicle_id, accept_date FROM maintenance_orders WHERE id = ?`, id).
		Scan(&vehicleID, &accept)
	if err != nil {
		return 0, false, wrapStore(err)
	}
	if _, err = r.db.ExecContext(ctx,
		`DELETE FROM maintenance_orders WHERE id = ?`, id); err != nil {
		return 0, false, wrapStore(err)
	}
	return vehicleID, !accept.Valid, nil
}
