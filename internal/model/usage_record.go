package model

import "time"

// UsageStatus is the display classification of a usage record.  Only
// returned is a stored fact (ReturnedAt set); the other three are
// derived at read time from the record and the current clock.
type UsageStatus string

const (
	UsageInUse       UsageStatus = "in_use"
	UsageOverdue     UsageStatus = "overdue"
	UsageMaintenance UsageStatus = "maintenance"
	UsageReturned    UsageStatus = "returned"
)

// UsageRecord is one row of the usage ledger: an in-progress or
// completed loan, or a maintenance handover when IsMaintenance is set.
// Records are written once on borrow, mutated exactly once on return
// and otherwise immutable; administrative deletion is the only other
// change and must be followed by a status recomputation for the
// vehicle.
//
// Fields:
//  ID            – primary key identifier.
//  VehicleID     – vehicle being used.
//  BorrowerID    – borrower from the users directory.
//  StartTime     – when the vehicle was handed over.
//  PlannedReturn – agreed return time, nil when open-ended.
//  ReturnedAt    – actual return time, nil while the record is open.
//  IsMaintenance – true when the handover is to a repair shop rather
//                  than a borrower.
//  Purpose       – free text.
type UsageRecord struct {
	ID            uint64     // usage_records.id
	VehicleID     uint64     // usage_records.vehicle_id
	BorrowerID    uint64     // usage_records.borrower_id
	StartTime     time.Time  // usage_records.start_time
	PlannedReturn *time.Time // usage_records.planned_return (nullable)
	ReturnedAt    *time.Time // usage_records.returned_at (nullable)
	IsMaintenance bool       // usage_records.is_maintenance
	Purpose       string     // usage_records.purpose
	CreatedAt     time.Time  // usage_records.created_at

	// Joined display fields, populated by list queries only.
	VehiclePlate string
	BorrowerName string
}

// Open reports whether the vehicle is still out on this record.
func (u *UsageRecord) Open() bool { return u.ReturnedAt == nil }

// DisplayStatus classifies the record for presentation at the given
// instant.  Returned wins over everything, maintenance over overdue,
// and a record counts as overdue only when its planned return lies
// strictly before now.
func (u *UsageRecord) DisplayStatus(now time.Time) UsageStatus {
	if u.ReturnedAt != nil {
		return UsageReturned
	}
	if u.IsMaintenance {
		return UsageMaintenance
	}
	if u.PlannedReturn != nil && u.PlannedReturn.Before(now) {
		return UsageOverdue
	}
	return UsageInUse
}

// RangeEnd is the end of the record's occupancy interval for overlap
// checks: the planned return when one exists, otherwise the start
// itself (a single point in time).
func (u *UsageRecord) RangeEnd() time.Time {
	if u.PlannedReturn != nil {
		return *u.PlannedReturn
	}
	return u.StartTime
}
