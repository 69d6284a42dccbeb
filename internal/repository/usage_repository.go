package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/vehicle-fleet-service/internal/interval"
	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

// UsageRepo stores the usage ledger.  Borrowing runs through the Tx
// methods so the availability check and the insert share one
// transaction with the vehicle row lock.
type UsageRepo struct {
	db *sql.DB
}

// NewUsageRepo returns a new UsageRepo bound to the given database.
func NewUsageRepo(db *sql.DB) *UsageRepo { return &UsageRepo{db: db} }

const usageCols = `id, vehicle_id, borrower_id, start_time, planned_return,
	returned_at, is_maintenance, purpose, created_at`

func scanUsage(row interface{ Scan(...any) error }) (*model.UsageRecord, error) {
	var u model.UsageRecord
	var planned, returned sql.NullTime
	err := row.Scan(&u.ID, &u.VehicleID, &u.BorrowerID, &u.StartTime,
		&planned, &returned, &u.IsMaintenance, &u.Purpose, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if planned.Valid {
		t := planned.Time
		u.PlannedReturn = &t
	}
	if returned.Valid {
		t := returned.Time
		u.ReturnedAt = &t
	}
	return &u, nil
}

// CreateTx inserts a new open usage record inside the given
// transaction.  The caller performs the availability check first,
// holding the vehicle row lock.
func (r *UsageRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.UsageRecord) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO usage_records
		(vehicle_id, borrower_id, start_time, planned_return, is_maintenance, purpose)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.VehicleID, u.BorrowerID, u.StartTime, nullableTime(u.PlannedReturn),
		u.IsMaintenance, u.Purpose)
	if err != nil {
		return wrapStore(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapStore(err)
	}
	u.ID = uint64(id)
	return nil
}

// OpenKinds reports which kinds of open records the vehicle currently
// has: hasMaint for open maintenance handovers, hasLoan for open
// ordinary loans.  These are two of the resolver's inputs.
func (r *UsageRepo) OpenKinds(ctx context.Context, vehicleID uint64) (hasMaint, hasLoan bool, err error) {
	return openKinds(ctx, r.db, vehicleID)
}

// OpenKindsTx is OpenKinds inside a transaction, used by the borrow
// availability check while the vehicle row is locked.
func (r *UsageRepo) OpenKindsTx(ctx context.Context, tx *sql.Tx, vehicleID uint64) (hasMaint, hasLoan bool, err error) {
	return openKinds(ctx, tx, vehicleID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func openKinds(ctx context.Context, q querier, vehicleID uint64) (bool, bool, error) {
	var maint, loan int
	err := q.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(is_maintenance = 1), 0),
		COALESCE(SUM(is_maintenance = 0), 0)
		FROM usage_records
		WHERE vehicle_id = ? AND returned_at IS NULL`, vehicleID).
		Scan(&maint, &loan)
	if err != nil {
		return false, false, wrapStore(err)
	}
	return maint > 0, loan > 0, nil
}

// GetByID loads one usage record.
func (r *UsageRepo) GetByID(ctx context.Context, id uint64) (*model.UsageRecord, error) {
	u, err := scanUsage(r.db.QueryRowContext(ctx,
		`SELECT `+usageCols+` FROM usage_records WHERE id = ?`, id))
	if err != nil {
		return nil, wrapStore(err)
	}
	return u, nil
}

// GetForUpdateTx loads a usage record under a row lock so the return
// path can decide idempotently whether the record is already closed.
func (r *UsageRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.UsageRecord, error) {
	u, err := scanUsage(tx.QueryRowContext(ctx,
		`SELECT `+usageCols+` FROM usage_records WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		return nil, wrapStore(err)
	}
	return u, nil
}

// MarkReturnedTx closes an open record by setting returned_at.  The
// caller has already verified, under the lock, that the record is open.
func (r *UsageRepo) MarkReturnedTx(ctx context.Context, tx *sql.Tx, id uint64, returnedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE usage_records SET returned_at = ? WHERE id = ?`, returnedAt, id)
	return wrapStore(err)
}

// Delete removes a usage record as an administrative correction.  It
// returns the vehicle id and whether the record was still open, so the
// caller knows to recompute the vehicle's status.
func (r *UsageRepo) Delete(ctx context.Context, id uint64) (vehicleID uint64, wasOpen bool, err error) {
	var returned sql.NullTime
	err = r.db.QueryRowContext(ctx,
		`SELECT vehicle_id, returned_at FROM usage_records WHERE id = ?`, id).
		Scan(&vehicleID, &returned)
	if err != nil {
		return 0, false, wrapStore(err)
	}
	if _, err = r.db.ExecContext(ctx,
		`DELETE FROM usage_records WHERE id = ?`, id); err != nil {
		return 0, false, wrapStore(err)
	}
	return vehicleID, !returned.Valid, nil
}

// UsageFilter narrows List.  Zero values mean "no constraint".
type UsageFilter struct {
	VehicleID  uint64
	BorrowerID uint64
	OnlyOpen   bool
	// Status filters on the display classification at query time.
	Status model.UsageStatus
	// From/To restrict to records whose occupancy range, the closed
	// interval [start, planned return or start], overlaps the window.
	// Both days are inclusive; set them together or not at all.
	From time.Time
	To   time.Time
}

// Matches reports whether a record passes the display-status and date
// window constraints.  Range comparison is day-granular on both sides
// and runs through interval.Overlaps like every other range decision
// in the service.
func (f UsageFilter) Matches(u *model.UsageRecord, now time.Time) bool {
	if f.Status != "" && u.DisplayStatus(now) != f.Status {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if !interval.Overlaps(interval.Day(u.StartTime), interval.Day(u.RangeEnd()), f.From, f.To) {
			return false
		}
	}
	return true
}

// List returns ledger rows newest first by identifier with the vehicle
// plate and borrower name joined in.  Display-status and date-window
// filtering depend on the clock or on planned returns, so they happen
// in Go after the fetch.
func (r *UsageRepo) List(ctx context.Context, f UsageFilter, now time.Time) ([]model.UsageRecord, error) {
	query := `SELECT u.id, u.vehicle_id, u.borrower_id, u.start_time,
		u.planned_return, u.returned_at, u.is_maintenance, u.purpose,
		u.created_at, v.plate, usr.full_name
		FROM usage_records u
		JOIN vehicles v ON v.id = u.vehicle_id
		JOIN users usr  ON usr.id = u.borrower_id
		WHERE 1 = 1`
	args := []any{}
	if f.VehicleID != 0 {
		query += ` AND u.vehicle_id = ?`
		args = append(args, f.VehicleID)
	}
	if f.BorrowerID != 0 {
		query += ` AND u.borrower_id = ?`
		args = append(args, f.BorrowerID)
	}
	if f.OnlyOpen {
		query += ` AND u.returned_at IS NULL`
	}
	query += ` ORDER BY u.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	out := make([]model.UsageRecord, 0)
	for rows.Next() {
		var u model.UsageRecord
		var planned, returned sql.NullTime
		err := rows.Scan(&u.ID, &u.VehicleID, &u.BorrowerID, &u.StartTime,
			&planned, &returned, &u.IsMaintenance, &u.Purpose, &u.CreatedAt,
			&u.VehiclePlate, &u.BorrowerName)
		if err != nil {
			return nil, wrapStore(err)
		}
		if planned.Valid {
			t := planned.Time
			u.PlannedReturn = &t
		}
		if returned.Valid {
			t := returned.Time
			u.ReturnedAt = &t
		}
		if !f.Matches(&u, now) {
			continue
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

// BorrowCount is a usage tally for one vehicle, used by the reports.
type BorrowCount struct {
	VehicleID uint64
	Plate     string
	Count     int
}

// TopBorrowed returns the most borrowed vehicles in the window
// [from, to), maintenance handovers excluded, busiest first.
func (r *UsageRepo) TopBorrowed(ctx context.Context, from, to time.Time, limit int) ([]BorrowCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT u.vehicle_id, v.plate, COUNT(*)
		FROM usage_records u
		JOIN vehicles v ON v.id = u.vehicle_id
		WHERE u.is_maintenance = 0 AND u.start_time >= ? AND u.start_time < ?
		GROUP BY u.vehicle_id, v.plate
		ORDER BY COUNT(*) DESC, u.vehicle_id ASC
		LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	out := make([]BorrowCount, 0)
	for rows.Next() {
		var b BorrowCount
		if err := rows.Scan(&b.VehicleID, &b.Plate, &b.Count); err != nil {
			return nil, wrapStore(err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
