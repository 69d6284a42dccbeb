// Package status resolves the authoritative operational status of a
// vehicle from its open ledger records, open maintenance orders and
// manual fallback. Nothing else in the service may decide or write a
// vehicle's status; every other component reads what this package
// materialized.
package status

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/queue"
)

// Derive computes a vehicle's status from its signals. Precedence is
// fixed: an open maintenance handover or an open work order forces
// maintenance, an open loan forces in-use, and only a vehicle with no
// open records at all falls back to the operator-set manual status.
// The function is pure; calling it twice with the same inputs always
// yields the same answer.
func Derive(openMaintUsage, openOrder, openLoan bool, manual model.VehicleStatus) model.VehicleStatus {
	switch {
	case openMaintUsage, openOrder:
		return model.StatusMaintenance
	case openLoan:
		return model.StatusInUse
	case manual.Valid():
		return manual
	default:
		return model.StatusAvailable
	}
}

// LedgerSource reports the open usage records of a vehicle.
type LedgerSource interface {
	OpenKinds(ctx context.Context, vehicleID uint64) (hasMaint, hasLoan bool, err error)
}

// OrderSource reports whether a vehicle has an open maintenance order.
type OrderSource interface {
	HasOpenByVehicle(ctx context.Context, vehicleID uint64) (bool, error)
}

// VehicleSource reads vehicles and writes the materialized status.
type VehicleSource interface {
	GetByID(ctx context.Context, id uint64) (*model.Vehicle, error)
	ListIDs(ctx context.Context) ([]uint64, error)
	SetStatus(ctx context.Context, id uint64, s model.VehicleStatus) error
}

// Cache holds resolved statuses for quick reads. Implementations must
// tolerate unavailability; a cache miss or write failure never makes a
// resolution wrong, only slower.
type Cache interface {
	Get(ctx context.Context, vehicleID uint64) (model.VehicleStatus, bool)
	Set(ctx context.Context, vehicleID uint64, s model.VehicleStatus)
	Invalidate(ctx context.Context, vehicleID uint64)
}

// Notifier publishes a status change to interested consumers.
type Notifier func(ctx context.Context, ev queue.VehicleStatusChangedEvent) error

// Resolver derives vehicle statuses from its sources and materializes
// them into the vehicle row, the cache and the event stream. cache and
// notify are optional; a nil cache skips caching and a nil notify
// skips publishing.
type Resolver struct {
	vehicles VehicleSource
	ledger   LedgerSource
	orders   OrderSource
	cache    Cache
	notify   Notifier
}

// NewResolver wires a Resolver over its sources.
func NewResolver(vehicles VehicleSource, ledger LedgerSource, orders OrderSource, cache Cache, notify Notifier) *Resolver {
	return &Resolver{vehicles: vehicles, ledger: ledger, orders: orders, cache: cache, notify: notify}
}

// Resolve computes the current status of one vehicle from live
// records. Source failures propagate; a status is never guessed from
// partial inputs.
func (r *Resolver) Resolve(ctx context.Context, vehicleID uint64) (model.VehicleStatus, error) {
	v, err := r.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	hasMaint, hasLoan, err := r.ledger.OpenKinds(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	hasOrder, err := r.orders.HasOpenByVehicle(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	return Derive(hasMaint, hasOrder, hasLoan, v.ManualStatus), nil
}

// Refresh recomputes one vehicle's status and materializes the result:
// the vehicles.status column is rewritten, the cache entry replaced,
// and a change event published when the status actually moved. It
// returns the freshly resolved status.
func (r *Resolver) Refresh(ctx context.Context, vehicleID uint64) (model.VehicleStatus, error) {
	v, err := r.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	hasMaint, hasLoan, err := r.ledger.OpenKinds(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	hasOrder, err := r.orders.HasOpenByVehicle(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	next := Derive(hasMaint, hasOrder, hasLoan, v.ManualStatus)

	if err := r.vehicles.SetStatus(ctx, vehicleID, next); err != nil {
		return "", err
	}
	if r.cache != nil {
		r.cache.Set(ctx, vehicleID, next)
	}
	if next != v.Status && r.notify != nil {
		ev := queue.VehicleStatusChangedEvent{
			VehicleID: vehicleID,
			Plate:     v.Plate,
			OldStatus: string(v.Status),
			NewStatus: string(next),
			ChangedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := r.notify(ctx, ev); err != nil {
			log.Printf("status: publish change for vehicle %d failed: %v", vehicleID, err)
		}
	}
	return next, nil
}

// Forget drops the cached status of a vehicle. Callers removing a
// vehicle from the registry use it so the cache never outlives the
// row.
func (r *Resolver) Forget(ctx context.Context, vehicleID uint64) {
	if r.cache != nil {
		r.cache.Invalidate(ctx, vehicleID)
	}
}

// Cached returns the cached status when present, otherwise resolves
// live and backfills the cache.
func (r *Resolver) Cached(ctx context.Context, vehicleID uint64) (model.VehicleStatus, error) {
	if r.cache != nil {
		if s, ok := r.cache.Get(ctx, vehicleID); ok {
			return s, nil
		}
	}
	s, err := r.Resolve(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	if r.cache != nil {
		r.cache.Set(ctx, vehicleID, s)
	}
	return s, nil
}
