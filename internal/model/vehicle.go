package model

import (
	"strings"
	"time"
)

// VehicleCondition is the physical/administrative state of a vehicle,
// recorded independently of its operational status.  A vehicle under
// maintenance can simultaneously be awaiting disposal; the two axes
// never collapse into each other.
type VehicleCondition string

const (
	ConditionNormal           VehicleCondition = "normal"
	ConditionLost             VehicleCondition = "lost"
	ConditionDisabled         VehicleCondition = "disabled"
	ConditionAwaitingDisposal VehicleCondition = "awaiting_disposal"
)

// Valid reports whether c is one of the known conditions.
func (c VehicleCondition) Valid() bool {
	switch c {
	case ConditionNormal, ConditionLost, ConditionDisabled, ConditionAwaitingDisposal:
		return true
	}
	return false
}

// Selectable reports whether a vehicle in this condition should be
// offered in borrow and reservation pickers.  Lost and disabled
// vehicles stay in the registry but are not offered out.
func (c VehicleCondition) Selectable() bool {
	return c != ConditionLost && c != ConditionDisabled
}

// VehicleStatus is the resolved operational status of a vehicle.  The
// value stored on the vehicle row is a materialization written only by
// the status resolver; everything else treats it as read-only.
type VehicleStatus string

const (
	StatusAvailable   VehicleStatus = "available"
	StatusInUse       VehicleStatus = "in_use"
	StatusMaintenance VehicleStatus = "maintenance"
)

// Valid reports whether s is one of the known statuses.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance:
		return true
	}
	return false
}

// Vehicle is the registry root every other record hangs off.
//
// Fields:
//  ID            – primary key identifier.
//  Plate         – license plate, normalized (single spaces, trimmed).
//  Brand         – manufacturer.
//  Model         – model name.
//  Year          – model year, 0 when unknown.
//  Color         – body color.
//  VehicleType   – sedan, van, truck and so on.
//  AssetNumber   – fixed-asset register number.
//  ChassisNumber – chassis serial.
//  EngineNumber  – engine serial.
//  Description   – free text recorded at registration.
//  CaretakerOrg  – unit responsible for the vehicle.
//  Condition     – physical/administrative condition, see VehicleCondition.
//  ManualStatus  – operator-set fallback used when no ledger or order
//                  signal applies; the resolver's last resort.
//  Status        – resolver-materialized operational status, read-only
//                  everywhere outside the resolver.
type Vehicle struct {
	ID            uint64           // vehicles.id
	Plate         string           // vehicles.plate
	Brand         string           // vehicles.brand
	Model         string           // vehicles.model
	Year          int              // vehicles.year
	Color         string           // vehicles.color
	VehicleType   string           // vehicles.vehicle_type
	AssetNumber   string           // vehicles.asset_number
	ChassisNumber string           // vehicles.chassis_number
	EngineNumber  string           // vehicles.engine_number
	Description   string           // vehicles.description
	CaretakerOrg  string           // vehicles.caretaker_org
	Condition     VehicleCondition // vehicles.vehicle_condition
	ManualStatus  VehicleStatus    // vehicles.manual_status
	Status        VehicleStatus    // vehicles.status (materialized)
	CreatedAt     time.Time        // vehicles.created_at
	UpdatedAt     time.Time        // vehicles.updated_at
}

// NormalizePlate collapses interior whitespace runs to single spaces
// and trims the ends.  This is the display form stored in
// vehicles.plate.
func NormalizePlate(plate string) string {
	return strings.Join(strings.Fields(plate), " ")
}

// PlateKey lowers the plate and strips all whitespace, producing the
// uniqueness key: "AB 123" and "ab123" identify the same vehicle.
func PlateKey(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(plate) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
