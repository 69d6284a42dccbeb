// Package queue defines message payloads exchanged over the message broker.
package queue

// VehicleStatusChangedEvent is published whenever the status resolver
// materializes a new status for a vehicle. It carries enough for
// downstream consumers to log or notify without querying the primary
// database.
type VehicleStatusChangedEvent struct {
	VehicleID uint64 `json:"vehicle_id"`
	Plate     string `json:"plate"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ChangedAt string `json:"changed_at"`
}
