package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/repository"
	"github.com/iliyamo/vehicle-fleet-service/internal/status"
)

// UsageHandler exposes the usage ledger. Borrowing checks
// availability and inserts the open record in one transaction under
// the vehicle row lock; the status resolver is refreshed after every
// committed mutation so the materialized status tracks the ledger.
type UsageHandler struct {
	UsageRepo       *repository.UsageRepo
	VehicleRepo     *repository.VehicleRepo
	MaintenanceRepo *repository.MaintenanceRepo
	UserRepo        *repository.UserRepo
	Resolver        *status.Resolver
}

// NewUsageHandler constructs a UsageHandler. All dependencies must be
// non-nil.
func NewUsageHandler(usageRepo *repository.UsageRepo, vehicleRepo *repository.VehicleRepo, maintenanceRepo *repository.MaintenanceRepo, userRepo *repository.UserRepo, resolver *status.Resolver) *UsageHandler {
	if usageRepo == nil || vehicleRepo == nil || maintenanceRepo == nil || userRepo == nil || resolver == nil {
		panic("nil dependency passed to NewUsageHandler")
	}
	return &UsageHandler{
		UsageRepo:       usageRepo,
		VehicleRepo:     vehicleRepo,
		MaintenanceRepo: maintenanceRepo,
		UserRepo:        userRepo,
		Resolver:        resolver,
	}
}

func usageJSON(u *model.UsageRecord, now time.Time) echo.Map {
	m := echo.Map{
		"id":             u.ID,
		"vehicle_id":     u.VehicleID,
		"borrower_id":    u.BorrowerID,
		"start_time":     u.StartTime.UTC().Format(time.RFC3339),
		"is_maintenance": u.IsMaintenance,
		"purpose":        u.Purpose,
		"status":         u.DisplayStatus(now),
	}
	if u.PlannedReturn != nil {
		m["planned_return"] = u.PlannedReturn.UTC().Format(time.RFC3339)
	}
	if u.ReturnedAt != nil {
		m["returned_at"] = u.ReturnedAt.UTC().Format(time.RFC3339)
	}
	if u.VehiclePlate != "" {
		m["vehicle_plate"] = u.VehiclePlate
	}
	if u.BorrowerName != "" {
		m["borrower_name"] = u.BorrowerName
	}
	return m
}

// refresh recomputes and materializes a vehicle's status after a
// committed ledger change. A failed refresh never fails the request;
// the mutation is already durable and ReconcileAll can repair the
// materialization later.
func (h *UsageHandler) refresh(c echo.Context, vehicleID uint64) {
	if _, err := h.Resolver.Refresh(c.Request().Context(), vehicleID); err != nil {
		c.Logger().Warnf("status refresh for vehicle %d failed: %v", vehicleID, err)
	}
}

// Borrow handles POST /v1/usage. It opens a ledger record for a loan
// or, with is_maintenance, a handover to a repair shop. The vehicle
// must resolve to available at the instant of the check; the check and
// the insert share a transaction holding the vehicle row lock, so two
// concurrent borrowers cannot both acquire the same vehicle.
func (h *UsageHandler) Borrow(c echo.Context) error {
	var body struct {
		VehicleID     uint64 `json:"vehicle_id"`
		BorrowerID    uint64 `json:"borrower_id"`
		StartTime     string `json:"start_time"`
		PlannedReturn string `json:"planned_return"`
		IsMaintenance bool   `json:"is_maintenance"`
		Purpose       string `json:"purpose"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.VehicleID == 0 || body.BorrowerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id and borrower_id are required"})
	}

	now := time.Now().UTC()
	start := now
	if body.StartTime != "" {
		t, err := time.Parse(time.RFC3339, body.StartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
		}
		start = t.UTC()
	}
	planned, err := parseOptionalTime(body.PlannedReturn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid planned_return"})
	}
	if planned != nil && planned.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "planned_return precedes start_time"})
	}

	ctx := c.Request().Context()
	if _, err := h.UserRepo.GetByID(ctx, body.BorrowerID); err != nil {
		return storeError(c, err)
	}

	tx, err := h.VehicleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cond, manual, err := h.VehicleRepo.LockTx(ctx, tx, body.VehicleID)
	if err != nil {
		return storeError(c, err)
	}
	if !body.IsMaintenance && !cond.Selectable() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle cannot be borrowed in its current condition"})
	}

	hasMaint, hasLoan, err := h.UsageRepo.OpenKindsTx(ctx, tx, body.VehicleID)
	if err != nil {
		return storeError(c, err)
	}
	hasOrder, err := h.MaintenanceRepo.HasOpenByVehicleTx(ctx, tx, body.VehicleID)
	if err != nil {
		return storeError(c, err)
	}
	if s := status.Derive(hasMaint, hasOrder, hasLoan, manual); s != model.StatusAvailable {
		return storeError(c, repository.ErrVehicleBusy)
	}

	u := &model.UsageRecord{
		VehicleID:     body.VehicleID,
		BorrowerID:    body.BorrowerID,
		StartTime:     start,
		PlannedReturn: planned,
		IsMaintenance: body.IsMaintenance,
		Purpose:       body.Purpose,
	}
	if err := h.UsageRepo.CreateTx(ctx, tx, u); err != nil {
		return storeError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.refresh(c, body.VehicleID)
	return c.JSON(http.StatusCreated, usageJSON(u, now))
}

// Return handles POST /v1/usage/:id/return. Returning an already
// returned record is an informational no-op, not an error: the
// response reports already_returned and leaves the stored timestamp
// untouched.
func (h *UsageHandler) Return(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid usage record id"})
	}
	var body struct {
		ReturnedAt string `json:"returned_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	now := time.Now().UTC()
	returnedAt := now
	if body.ReturnedAt != "" {
		t, err := time.Parse(time.RFC3339, body.ReturnedAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid returned_at"})
		}
		returnedAt = t.UTC()
	}

	ctx := c.Request().Context()
	tx, err := h.VehicleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	u, err := h.UsageRepo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return storeError(c, err)
	}
	if u.ReturnedAt != nil {
		// Second return of the same record; report the stored fact.
		return c.JSON(http.StatusOK, echo.Map{
			"already_returned": true,
			"record":           usageJSON(u, now),
		})
	}
	if returnedAt.Before(u.StartTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "returned_at precedes start_time"})
	}
	if err := h.UsageRepo.MarkReturnedTx(ctx, tx, id, returnedAt); err != nil {
		return storeError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	u.ReturnedAt = &returnedAt

	h.refresh(c, u.VehicleID)
	return c.JSON(http.StatusOK, echo.Map{
		"already_returned": false,
		"record":           usageJSON(u, now),
	})
}

// Delete handles DELETE /v1/usage/:id, an administrative correction.
// Deleting an open record re-resolves the vehicle, which typically
// lands it back on available.
func (h *UsageHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid usage record id"})
	}
	vehicleID, wasOpen, err := h.UsageRepo.Delete(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}
	if wasOpen {
		h.refresh(c, vehicleID)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/usage with optional vehicle_id, borrower_id,
// open, status and from/to query parameters. from/to keep records
// whose occupancy range touches the window. Rows come back newest
// first by identifier with the display classification computed at
// request time.
func (h *UsageHandler) List(c echo.Context) error {
	var f repository.UsageFilter
	if s := c.QueryParam("vehicle_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_id"})
		}
		f.VehicleID = id
	}
	if s := c.QueryParam("borrower_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid borrower_id"})
		}
		f.BorrowerID = id
	}
	f.OnlyOpen = c.QueryParam("open") == "true"
	fromS, toS := c.QueryParam("from"), c.QueryParam("to")
	if (fromS == "") != (toS == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from and to must be given together"})
	}
	if fromS != "" {
		from, err := parseDate(fromS)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
		}
		to, err := parseDate(toS)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
		}
		if to.Before(from) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
		}
		f.From, f.To = from, to
	}
	if s := c.QueryParam("status"); s != "" {
		switch st := model.UsageStatus(s); st {
		case model.UsageInUse, model.UsageOverdue, model.UsageMaintenance, model.UsageReturned:
			f.Status = st
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
		}
	}

	now := time.Now().UTC()
	records, err := h.UsageRepo.List(c.Request().Context(), f, now)
	if err != nil {
		return storeError(c, err)
	}
	out := make([]echo.Map, 0, len(records))
	for i := range records {
		out = append(out, usageJSON(&records[i], now))
	}
	return c.JSON(http.StatusOK, echo.Map{"records": out})
}
