package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/vehicle-fleet-service/internal/interval"
	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

// ReservationRepo stores the reservation calendar.  Date columns hold
// day-granular closed intervals.  Overlap decisions are never made in
// SQL; callers load the candidate rows for a vehicle and test them
// with interval.Overlaps so there is a single overlap rule in the
// whole system.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, vehicle_id, start_date, end_date, party_name, note, created_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var rv model.Reservation
	err := row.Scan(&rv.ID, &rv.VehicleID, &rv.StartDate, &rv.EndDate,
		&rv.PartyName, &rv.Note, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// ListByVehicleTx returns every reservation for one vehicle inside the
// given transaction.  Used by the conflict check after the vehicle row
// is locked, so no competing reservation can be inserted concurrently.
func (r *ReservationRepo) ListByVehicleTx(ctx context.Context, tx *sql.Tx, vehicleID uint64) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations
		 WHERE vehicle_id = ? ORDER BY start_date ASC`, vehicleID)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, wrapStore(err)
		}
		out = append(out, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

// CreateTx inserts a reservation inside the given transaction.  The
// caller is responsible for the overlap check; this method only writes.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rv *model.Reservation) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO reservations
		(vehicle_id, start_date, end_date, party_name, note)
		VALUES (?, ?, ?, ?, ?)`,
		rv.VehicleID, rv.StartDate, rv.EndDate, rv.PartyName, rv.Note)
	if err != nil {
		return wrapStore(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapStore(err)
	}
	rv.ID = uint64(id)
	return nil
}

// GetByID loads one reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	rv, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id))
	if err != nil {
		return nil, wrapStore(err)
	}
	return rv, nil
}

// ListWithinRange returns every reservation that overlaps the window
// [from, to], ordered by start date then vehicle id.  vehicleID zero
// means all vehicles.  The SQL pulls a superset bounded on start_date
// and the exact overlap test happens in Go.
func (r *ReservationRepo) ListWithinRange(ctx context.Context, vehicleID uint64, from, to time.Time) ([]model.Reservation, error) {
	query := `SELECT ` + reservationCols + ` FROM reservations WHERE start_date <= ?`
	args := []any{to}
	if vehicleID != 0 {
		query += ` AND vehicle_id = ?`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY start_date ASC, vehicle_id ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, wrapStore(err)
		}
		if interval.Overlaps(rv.StartDate, rv.EndDate, from, to) {
			out = append(out, *rv)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

// UpdateDetails changes party name and note on an existing
// reservation.  Dates are immutable; moving a reservation means
// deleting it and creating a new one through the conflict check.
func (r *ReservationRepo) UpdateDetails(ctx context.Context, id uint64, party, note string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET party_name = ?, note = ? WHERE id = ?`,
		party, note, id)
	if err != nil {
		return wrapStore(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapStore(err)
	}
	if n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM reservations WHERE id = ?`, id).Scan(&one); err != nil {
			return wrapStore(err)
		}
	}
	return nil
}

// Delete removes a reservation.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return wrapStore(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapStore(err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
