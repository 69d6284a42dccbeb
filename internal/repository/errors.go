// Package repository defines error values shared by the fleet
// repositories. Sentinel values let handlers distinguish failure
// scenarios: ErrConflict marks an operation blocked by dependent
// records (e.g. deleting a vehicle that still owns ledger rows), the
// typed ConflictError carries the identifier of the record that caused
// a booking or borrow to be rejected, and ErrStoreUnavailable flags
// connectivity failures that a caller may retry with backoff. Plain
// lookup misses are reported as sql.ErrNoRows.
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a delete or update cannot proceed
// because of dependent state, such as removing a vehicle that is still
// referenced by usage, reservation or maintenance rows. Handlers
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrStoreUnavailable indicates the backing store could not be
// reached. It is the only failure class callers may retry; every
// other persistence error is fatal to the current request. Handlers
// translate it into an HTTP 503 response and must never substitute a
// default status for a failed query.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrVehicleBusy is returned when a borrow is rejected because the
// vehicle's resolved status is already in_use or maintenance.
var ErrVehicleBusy = errors.New("vehicle busy")

// ConflictError reports that an insert was rejected because an
// existing record already claims the vehicle or interval. ExistingID
// identifies the conflicting record so the caller can explain the
// rejection to a user.
type ConflictError struct {
	ExistingID uint64
	Reason     string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (conflicting record %d)", e.Reason, e.ExistingID)
}

// mysqlDuplicateEntry is ER_DUP_ENTRY, raised when an insert races a
// unique index such as vehicles.plate_key past the pre-insert check.
const mysqlDuplicateEntry = 1062

// wrapStore classifies a raw database error. Connectivity-level
// failures are wrapped so errors.Is(err, ErrStoreUnavailable) holds,
// unique-key violations are wrapped as ErrConflict, and everything
// else passes through unchanged (including sql.ErrNoRows, which keeps
// its usual meaning).
func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
