package report

import "github.com/iliyamo/vehicle-fleet-service/internal/model"

// CountStatuses tallies vehicles per materialized status. Every valid
// status appears in the result, zero-filled when no vehicle holds it;
// a vehicle whose status column was never materialized counts as
// available.
func CountStatuses(vehicles []model.Vehicle) map[model.VehicleStatus]int {
	counts := map[model.VehicleStatus]int{
		model.StatusAvailable:   0,
		model.StatusInUse:       0,
		model.StatusMaintenance: 0,
	}
	for i := range vehicles {
		s := vehicles[i].Status
		if !s.Valid() {
			s = model.StatusAvailable
		}
		counts[s]++
	}
	return counts
}
