package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

// VehicleRepo provides persistence for the vehicle registry.  All
// timestamp fields are stored in UTC.  The status column is a
// materialized copy of the resolved status; only SetStatus and
// SetStatusTx may write it, and both are reserved for the status
// resolver.
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo returns a new VehicleRepo bound to the given database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *VehicleRepo) DB() *sql.DB { return r.db }

const vehicleCols = `id, plate, brand, model, year, color, vehicle_type,
	asset_number, chassis_number, engine_number, description, caretaker_org,
	vehicle_condition, manual_status, status, created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (*model.Vehicle, error) {
	var v model.Vehicle
	var cond, manual, status string
	err := row.Scan(&v.ID, &v.Plate, &v.Brand, &v.Model, &v.Year, &v.Color,
		&v.VehicleType, &v.AssetNumber, &v.ChassisNumber, &v.EngineNumber,
		&v.Description, &v.CaretakerOrg, &cond, &manual, &status,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Condition = model.VehicleCondition(cond)
	v.ManualStatus = model.VehicleStatus(manual)
	v.Status = model.VehicleStatus(status)
	return &v, nil
}

// Create registers a new vehicle.  The plate is normalized before
// insertion and its normalized key must be unique; when another
// vehicle already owns the key a ConflictError naming that vehicle is
// returned.  The check and the insert run in one transaction so two
// concurrent registrations of the same plate cannot both succeed (the
// unique index on plate_key backs the check at the storage level).
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	v.Plate = model.NormalizePlate(v.Plate)
	key := model.PlateKey(v.Plate)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStore(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var existing uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM vehicles WHERE plate_key = ?`, key).Scan(&existing)
	switch {
	case err == nil:
		return &ConflictError{ExistingID: existing, Reason: "plate already registered"}
	case !errors.Is(err, sql.ErrNoRows):
		return wrapStore(err)
	}

	// The status column stays at its schema default here; only the
	// resolver writes it, via SetStatus after the first refresh.
	res, err := tx.ExecContext(ctx, `INSERT INTO vehicles
		(plate, plate_key, brand, model, year, color, vehicle_type,
		 asset_number, chassis_number, engine_number, description,
		 caretaker_org, vehicle_condition, manual_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Plate, key, v.Brand, v.Model, v.Year, v.Color, v.VehicleType,
		v.AssetNumber, v.ChassisNumber, v.EngineNumber, v.Description,
		v.CaretakerOrg, string(v.Condition), string(v.ManualStatus))
	if err != nil {
		return wrapStore(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapStore(err)
	}
	v.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return wrapStore(err)
	}
	committed = true
	return nil
}

// GetByID loads a single vehicle.  sql.ErrNoRows is returned when the
// id is unknown.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRowContext(ctx,
		`SELECT `+vehicleCols+` FROM vehicles WHERE id = ?`, id))
	if err != nil {
		return nil, wrapStore(err)
	}
	return v, nil
}

// List returns every registered vehicle ordered by plate.
func (r *VehicleRepo) List(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleCols+` FROM vehicles ORDER BY plate ASC`)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	out := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, wrapStore(err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

// ListIDs returns every vehicle id.  Used by the reconciliation sweep.
func (r *VehicleRepo) ListIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM vehicles ORDER BY id ASC`)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapStore(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return ids, nil
}

// UpdateDescriptive changes the administrative fields of a vehicle:
// plate, brand, model, year, color, caretaker org, condition and
// manual status.  Registration-locked fields (asset, chassis, engine,
// type, description) and the materialized status are not touched.  A
// plate change re-checks key uniqueness.
func (r *VehicleRepo) UpdateDescriptive(ctx context.Context, v *model.Vehicle) error {
	v.Plate = model.NormalizePlate(v.Plate)
	key := model.PlateKey(v.Plate)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStore(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var existing uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM vehicles WHERE plate_key = ? AND id <> ?`,
		key, v.ID).Scan(&existing)
	switch {
	case err == nil:
		return &ConflictError{ExistingID: existing, Reason: "plate already registered"}
	case !errors.Is(err, sql.ErrNoRows):
		return wrapStore(err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE vehicles SET
		plate = ?, plate_key = ?, brand = ?, model = ?, year = ?, color = ?,
		caretaker_org = ?, vehicle_condition = ?, manual_status = ?
		WHERE id = ?`,
		v.Plate, key, v.Brand, v.Model, v.Year, v.Color, v.CaretakerOrg,
		string(v.Condition), string(v.ManualStatus), v.ID)
	if err != nil {
		return wrapStore(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapStore(err)
	}
	if n == 0 {
		// MySQL reports zero affected rows for identical values too, so
		// confirm the row exists before calling it a miss.
		var one int
		if err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM vehicles WHERE id = ?`, v.ID).Scan(&one); err != nil {
			return wrapStore(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapStore(err)
	}
	committed = true
	return nil
}

// Delete removes a vehicle from the registry.  Vehicles that are still
// referenced by usage records, reservations or maintenance orders
// cannot be deleted; ErrConflict is returned instead so the history
// stays intact.
func (r *VehicleRepo) Delete(ctx context.Context, id uint64) error {
	var refs int
	err := r.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM usage_records WHERE vehicle_id = ?) +
		(SELECT COUNT(*) FROM reservations WHERE vehicle_id = ?) +
		(SELECT COUNT(*) FROM maintenance_orders WHERE vehicle_id = ?)`,
		id, id, id).Scan(&refs)
	if err != nil {
		return wrapStore(err)
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
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

// LockTx locks a vehicle row for the duration of the transaction and
// returns its condition and manual status.  Both the reservation
// conflict check and the borrow availability check take this lock
// first, which serializes concurrent writers per vehicle.
func (r *VehicleRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (model.VehicleCondition, model.VehicleStatus, error) {
	var cond, manual string
	err := tx.QueryRowContext(ctx,
		`SELECT vehicle_condition, manual_status FROM vehicles WHERE id = ? FOR UPDATE`,
		id).Scan(&cond, &manual)
	if err != nil {
		return "", "", wrapStore(err)
	}
	return model.VehicleCondition(cond), model.VehicleStatus(manual), nil
}

// SetStatus writes the materialized status column.  Reserved for the
// status resolver; nothing else may set a vehicle's status.
func (r *VehicleRepo) SetStatus(ctx context.Context, id uint64, s model.VehicleStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET status = ? WHERE id = ?`, string(s), id)
	return wrapStore(err)
}
