package status

import (
	"context"
	"fmt"
	"log"
)

// ReconcileAll refreshes every vehicle's materialized status. It is
// the manual recovery sweep for the day the materialization drifted
// (missed refresh after a crash, direct database surgery). Per-vehicle
// failures are logged and counted rather than aborting the sweep, so
// one broken row cannot block the rest of the fleet.
func (r *Resolver) ReconcileAll(ctx context.Context) (refreshed, failed int, err error) {
	ids, err := r.vehicles.ListIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list vehicles: %w", err)
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return refreshed, failed, ctx.Err()
		}
		if _, err := r.Refresh(ctx, id); err != nil {
			log.Printf("status: reconcile vehicle %d failed: %v", id, err)
			failed++
			continue
		}
		refreshed++
	}
	return refreshed, failed, nil
}
