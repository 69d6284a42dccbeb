package status_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/queue"
	"github.com/iliyamo/vehicle-fleet-service/internal/status"
)

func TestDerive(t *testing.T) {
	cases := []struct {
		name                           string
		openMaint, openOrder, openLoan bool
		manual                         model.VehicleStatus
		want                           model.VehicleStatus
	}{
		{"no signals manual available", false, false, false, model.StatusAvailable, model.StatusAvailable},
		{"open loan", false, false, true, model.StatusAvailable, model.StatusInUse},
		{"open maintenance usage", true, false, false, model.StatusAvailable, model.StatusMaintenance},
		{"open maintenance order", false, true, false, model.StatusAvailable, model.StatusMaintenance},
		{"maintenance beats loan", true, false, true, model.StatusAvailable, model.StatusMaintenance},
		{"order beats loan", false, true, true, model.StatusAvailable, model.StatusMaintenance},
		{"manual fallback maintenance", false, false, false, model.StatusMaintenance, model.StatusMaintenance},
		{"manual fallback in use", false, false, false, model.StatusInUse, model.StatusInUse},
		{"loan beats manual", false, false, true, model.StatusMaintenance, model.StatusInUse},
		{"invalid manual lands on available", false, false, false, "", model.StatusAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := status.Derive(tc.openMaint, tc.openOrder, tc.openLoan, tc.manual)
			assert.Equal(t, tc.want, got)
			// deterministic: same inputs, same answer
			assert.Equal(t, got, status.Derive(tc.openMaint, tc.openOrder, tc.openLoan, tc.manual))
		})
	}
}

type fakeSources struct {
	vehicles map[uint64]*model.Vehicle
	maint    map[uint64]bool
	loan     map[uint64]bool
	order    map[uint64]bool

	ledgerErr error
	orderErr  error

	written map[uint64]model.VehicleStatus
}

func newFakeSources() *fakeSources {
	return &fakeSources{
		vehicles: map[uint64]*model.Vehicle{},
		maint:    map[uint64]bool{},
		loan:     map[uint64]bool{},
		order:    map[uint64]bool{},
		written:  map[uint64]model.VehicleStatus{},
	}
}

func (f *fakeSources) GetByID(_ context.Context, id uint64) (*model.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *v
	return &cp, nil
}

func (f *fakeSources) ListIDs(_ context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(f.vehicles))
	for id := range f.vehicles {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeSources) SetStatus(_ context.Context, id uint64, s model.VehicleStatus) error {
	f.written[id] = s
	f.vehicles[id].Status = s
	return nil
}

func (f *fakeSources) OpenKinds(_ context.Context, id uint64) (bool, bool, error) {
	if f.ledgerErr != nil {
		return false, false, f.ledgerErr
	}
	return f.maint[id], f.loan[id], nil
}

func (f *fakeSources) HasOpenByVehicle(_ context.Context, id uint64) (bool, error) {
	if f.orderErr != nil {
		return false, f.orderErr
	}
	return f.order[id], nil
}

func TestResolveOpenLoanReadsInUse(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, ManualStatus: model.StatusAvailable, Status: model.StatusAvailable}
	f.loan[1] = true

	r := status.NewResolver(f, f, f, nil, nil)
	s, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInUse, s)
}

func TestResolveMaintenancePrecedesLoan(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, ManualStatus: model.StatusAvailable}
	f.loan[1] = true
	f.maint[1] = true

	r := status.NewResolver(f, f, f, nil, nil)
	s, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, s)
}

func TestResolveSourceFailurePropagates(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, ManualStatus: model.StatusAvailable}
	f.ledgerErr = errors.New("ledger down")

	r := status.NewResolver(f, f, f, nil, nil)
	_, err := r.Resolve(context.Background(), 1)
	// a failed source must surface, never turn into a default status
	require.Error(t, err)
	assert.ErrorContains(t, err, "ledger down")

	f.ledgerErr = nil
	f.orderErr = errors.New("orders down")
	_, err = r.Resolve(context.Background(), 1)
	require.Error(t, err)
}

func TestRefreshMaterializesAndNotifies(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, Plate: "AB 123", ManualStatus: model.StatusAvailable, Status: model.StatusAvailable}
	f.loan[1] = true

	var events []queue.VehicleStatusChangedEvent
	notify := func(_ context.Context, ev queue.VehicleStatusChangedEvent) error {
		events = append(events, ev)
		return nil
	}
	r := status.NewResolver(f, f, f, nil, notify)

	s, err := r.Refresh(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInUse, s)
	assert.Equal(t, model.StatusInUse, f.written[1])
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].VehicleID)
	assert.Equal(t, "AB 123", events[0].Plate)
	assert.Equal(t, string(model.StatusAvailable), events[0].OldStatus)
	assert.Equal(t, string(model.StatusInUse), events[0].NewStatus)

	// the materialized value agrees with a fresh resolution
	live, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, f.written[1], live)

	// refreshing again with no change publishes nothing further
	_, err = r.Refresh(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRefreshIgnoresNotifierFailure(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, ManualStatus: model.StatusAvailable, Status: model.StatusAvailable}
	f.maint[1] = true

	notify := func(context.Context, queue.VehicleStatusChangedEvent) error {
		return errors.New("broker down")
	}
	r := status.NewResolver(f, f, f, nil, notify)

	s, err := r.Refresh(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, s)
	assert.Equal(t, model.StatusMaintenance, f.written[1])
}

type fakeCache struct {
	entries map[uint64]model.VehicleStatus
	sets    int
}

func (f *fakeCache) Get(_ context.Context, id uint64) (model.VehicleStatus, bool) {
	s, ok := f.entries[id]
	return s, ok
}

func (f *fakeCache) Set(_ context.Context, id uint64, s model.VehicleStatus) {
	f.entries[id] = s
	f.sets++
}

func (f *fakeCache) Invalidate(_ context.Context, id uint64) {
	delete(f.entries, id)
}

func TestCachedBackfillsAndReuses(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, ManualStatus: model.StatusAvailable}
	f.loan[1] = true
	cache := &fakeCache{entries: map[uint64]model.VehicleStatus{}}

	r := status.NewResolver(f, f, f, cache, nil)

	s, err := r.Cached(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInUse, s)
	assert.Equal(t, 1, cache.sets)

	// the ledger moves on but the cached value is served until
	// invalidated or refreshed
	f.loan[1] = false
	s, err = r.Cached(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInUse, s)
	assert.Equal(t, 1, cache.sets)

	cache.Invalidate(context.Background(), 1)
	s, err = r.Cached(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, s)
}

func TestRefreshAfterRegistrationHonorsManualStatus(t *testing.T) {
	// A freshly registered row carries the schema default in status;
	// the first refresh must land it on the operator's manual status.
	f := newFakeSources()
	f.vehicles[7] = &model.Vehicle{
		ID:           7,
		Plate:        "GH 789",
		ManualStatus: model.StatusMaintenance,
		Status:       model.StatusAvailable,
	}

	r := status.NewResolver(f, f, f, nil, nil)
	s, err := r.Refresh(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, s)
	assert.Equal(t, model.StatusMaintenance, f.written[7])

	live, err := r.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, f.written[7], live, "materialized and live status must agree")
}

func TestRefreshFollowsOrderMovedBetweenVehicles(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, ManualStatus: model.StatusAvailable}
	f.vehicles[2] = &model.Vehicle{ID: 2, ManualStatus: model.StatusAvailable}
	f.order[1] = true

	r := status.NewResolver(f, f, f, nil, nil)
	_, err := r.Refresh(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, f.written[1])

	// the open order is reassigned to vehicle 2; refreshing both
	// releases the old vehicle and holds the new one
	f.order[1] = false
	f.order[2] = true
	_, err = r.Refresh(context.Background(), 1)
	require.NoError(t, err)
	_, err = r.Refresh(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, f.written[1])
	assert.Equal(t, model.StatusMaintenance, f.written[2])
}

func TestForgetDropsCacheEntry(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, ManualStatus: model.StatusAvailable}
	cache := &fakeCache{entries: map[uint64]model.VehicleStatus{1: model.StatusInUse}}

	r := status.NewResolver(f, f, f, cache, nil)
	r.Forget(context.Background(), 1)
	_, ok := cache.Get(context.Background(), 1)
	assert.False(t, ok)

	// nil cache is a no-op, not a panic
	status.NewResolver(f, f, f, nil, nil).Forget(context.Background(), 1)
}

func TestReconcileAll(t *testing.T) {
	f := newFakeSources()
	f.vehicles[1] = &model.Vehicle{ID: 1, ManualStatus: model.StatusAvailable, Status: model.StatusInUse}
	f.vehicles[2] = &model.Vehicle{ID: 2, ManualStatus: model.StatusAvailable, Status: model.StatusAvailable}
	f.order[2] = true

	r := status.NewResolver(f, f, f, nil, nil)
	refreshed, failed, err := r.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed)
	assert.Zero(t, failed)
	// vehicle 1 had a stale in_use materialization with no open records
	assert.Equal(t, model.StatusAvailable, f.written[1])
	assert.Equal(t, model.StatusMaintenance, f.written[2])
}
