package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-fleet-service/internal/interval"
	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/repository"
)

// ReservationHandler exposes the reservation calendar. Creation runs
// the conflict check and the insert inside one transaction holding the
// vehicle row lock, so two concurrent requests for overlapping ranges
// cannot both succeed.
type ReservationHandler struct {
	ReservationRepo *repository.ReservationRepo
	VehicleRepo     *repository.VehicleRepo
}

// NewReservationHandler constructs a ReservationHandler. Both
// repositories must be non-nil.
func NewReservationHandler(reservationRepo *repository.ReservationRepo, vehicleRepo *repository.VehicleRepo) *ReservationHandler {
	if reservationRepo == nil || vehicleRepo == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{ReservationRepo: reservationRepo, VehicleRepo: vehicleRepo}
}

func reservationJSON(rv *model.Reservation) echo.Map {
	return echo.Map{
		"id":         rv.ID,
		"vehicle_id": rv.VehicleID,
		"start_date": rv.StartDate.Format(dateLayout),
		"end_date":   rv.EndDate.Format(dateLayout),
		"party_name": rv.PartyName,
		"note":       rv.Note,
		"created_at": rv.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/reservations. The request carries a vehicle
// id, a closed day interval and a party name. A range that overlaps
// any existing reservation for the same vehicle, boundary days
// included, is rejected with 409 and the id of the reservation it
// collided with.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body struct {
		VehicleID uint64 `json:"vehicle_id"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		PartyName string `json:"party_name"`
		Note      string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.VehicleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id is required"})
	}
	if body.PartyName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_name is required"})
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date precedes start_date"})
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

	// Lock the vehicle row first; every conflicting writer for this
	// vehicle queues behind the same lock.
	cond, _, err := h.VehicleRepo.LockTx(ctx, tx, body.VehicleID)
	if err != nil {
		return storeError(c, err)
	}
	if !cond.Selectable() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle cannot be reserved in its current condition"})
	}

	existing, err := h.ReservationRepo.ListByVehicleTx(ctx, tx, body.VehicleID)
	if err != nil {
		return storeError(c, err)
	}
	for i := range existing {
		if interval.Overlaps(existing[i].StartDate, existing[i].EndDate, start, end) {
			return storeError(c, &repository.ConflictError{
				ExistingID: existing[i].ID,
				Reason:     "reservation overlaps an existing booking",
			})
		}
	}

	rv := &model.Reservation{
		VehicleID: body.VehicleID,
		StartDate: start,
		EndDate:   end,
		PartyName: body.PartyName,
		Note:      body.Note,
	}
	if err := h.ReservationRepo.CreateTx(ctx, tx, rv); err != nil {
		return storeError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	rv.CreatedAt = time.Now().UTC()
	return c.JSON(http.StatusCreated, reservationJSON(rv))
}

// List handles GET /v1/reservations?from=YYYY-MM-DD&to=YYYY-MM-DD with
// an optional vehicle_id filter, returning every reservation
// overlapping the window ordered by start date then vehicle id. The
// window defaults to the 90 days starting today.
func (h *ReservationHandler) List(c echo.Context) error {
	var vehicleID uint64
	if s := c.QueryParam("vehicle_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_id"})
		}
		vehicleID = id
	}
	now := interval.Day(time.Now())
	from := now
	to := now.AddDate(0, 0, 90)
	var err error
	if s := c.QueryParam("from"); s != "" {
		if from, err = parseDate(s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
		}
	}
	if s := c.QueryParam("to"); s != "" {
		if to, err = parseDate(s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
		}
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to precedes from"})
	}

	reservations, err := h.ReservationRepo.ListWithinRange(c.Request().Context(), vehicleID, from, to)
	if err != nil {
		return storeError(c, err)
	}
	out := make([]echo.Map, 0, len(reservations))
	for i := range reservations {
		out = append(out, reservationJSON(&reservations[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"from":         from.Format(dateLayout),
		"to":           to.Format(dateLayout),
		"reservations": out,
	})
}

// Update handles PUT /v1/reservations/:id. Only the party name and
// note can change; moving the dates means deleting and rebooking
// through the conflict check.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		PartyName string `json:"party_name"`
		Note      string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PartyName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_name is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.ReservationRepo.GetByID(ctx, id); err != nil {
		return storeError(c, err)
	}
	if err := h.ReservationRepo.UpdateDetails(ctx, id, body.PartyName, body.Note); err != nil {
		return storeError(c, err)
	}
	rv, err := h.ReservationRepo.GetByID(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, reservationJSON(rv))
}

// Delete handles DELETE /v1/reservations/:id. Cancelling a plan has no
// effect on vehicle status; reservations never feed the resolver.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.ReservationRepo.Delete(c.Request().Context(), id); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
