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

// MaintenanceHandler exposes maintenance work orders. Saving an order
// replaces its whole item set and recomputes every derived total
// before anything is written, so the stored figures always agree with
// the stored items. Opening or accepting an order changes what the
// vehicle resolves to, so every committed save refreshes the status.
type MaintenanceHandler struct {
	MaintenanceRepo *repository.MaintenanceRepo
	VehicleRepo     *repository.VehicleRepo
	UserRepo        *repository.UserRepo
	Resolver        *status.Resolver
	TaxRate         float64
}

// NewMaintenanceHandler constructs a MaintenanceHandler. taxRate is
// the fraction applied to the subtotal, e.g. 0.07 for seven percent.
func NewMaintenanceHandler(maintenanceRepo *repository.MaintenanceRepo, vehicleRepo *repository.VehicleRepo, userRepo *repository.UserRepo, resolver *status.Resolver, taxRate float64) *MaintenanceHandler {
	if maintenanceRepo == nil || vehicleRepo == nil || userRepo == nil || resolver == nil {
		panic("nil dependency passed to NewMaintenanceHandler")
	}
	return &MaintenanceHandler{
		MaintenanceRepo: maintenanceRepo,
		VehicleRepo:     vehicleRepo,
		UserRepo:        userRepo,
		Resolver:        resolver,
		TaxRate:         taxRate,
	}
}

type maintenanceItemBody struct {
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type maintenanceBody struct {
	VehicleID    uint64                `json:"vehicle_id"`
	RepairDate   string                `json:"repair_date"`
	AcceptDate   string                `json:"accept_date"`
	CenterName   string                `json:"center_name"`
	Note         string                `json:"note"`
	CommitteeIDs []uint64              `json:"committee_ids"`
	Items        []maintenanceItemBody `json:"items"`
}

func maintenanceJSON(o *model.MaintenanceOrder) echo.Map {
	items := make([]echo.Map, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		items = append(items, echo.Map{
			"item_no":          it.ItemNo,
			"description":      it.Description,
			"quantity":         it.Quantity,
			"unit_price_cents": it.UnitPriceCents,
			"amount_cents":     it.AmountCents,
		})
	}
	m := echo.Map{
		"id":                o.ID,
		"vehicle_id":        o.VehicleID,
		"center_name":       o.CenterName,
		"note":              o.Note,
		"committee_ids":     o.CommitteeIDs,
		"open":              o.Open(),
		"total_quantity":    o.TotalQuantity,
		"subtotal_cents":    o.SubtotalCents,
		"tax_cents":         o.TaxCents,
		"grand_total_cents": o.GrandTotalCents,
		"items":             items,
	}
	if o.RepairDate != nil {
		m["repair_date"] = o.RepairDate.Format(dateLayout)
	}
	if o.AcceptDate != nil {
		m["accept_date"] = o.AcceptDate.Format(dateLayout)
	}
	return m
}

func (h *MaintenanceHandler) orderFromBody(c echo.Context, body *maintenanceBody, id uint64) (*model.MaintenanceOrder, error) {
	if body.VehicleID == 0 {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id is required"})
	}
	repair, err := parseOptionalDate(body.RepairDate)
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair_date"})
	}
	accept, err := parseOptionalDate(body.AcceptDate)
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid accept_date"})
	}
	if repair != nil && accept != nil && accept.Before(*repair) {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "accept_date precedes repair_date"})
	}
	items := make([]model.MaintenanceItem, 0, len(body.Items))
	for _, it := range body.Items {
		if it.Quantity <= 0 {
			return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "item quantity must be positive"})
		}
		if it.UnitPriceCents < 0 {
			return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "item unit price cannot be negative"})
		}
		items = append(items, model.MaintenanceItem{
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	ctx := c.Request().Context()
	if _, err := h.VehicleRepo.GetByID(ctx, body.VehicleID); err != nil {
		return nil, storeError(c, err)
	}
	for _, uid := range body.CommitteeIDs {
		if _, err := h.UserRepo.GetByID(ctx, uid); err != nil {
			return nil, storeError(c, err)
		}
	}

	o := &model.MaintenanceOrder{
		ID:           id,
		VehicleID:    body.VehicleID,
		RepairDate:   repair,
		AcceptDate:   accept,
		CenterName:   body.CenterName,
		Note:         body.Note,
		CommitteeIDs: body.CommitteeIDs,
		Items:        items,
	}
	o.RecomputeTotals(h.TaxRate)
	return o, nil
}

func (h *MaintenanceHandler) save(c echo.Context, o *model.MaintenanceOrder) error {
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
	if err := h.MaintenanceRepo.SaveTx(ctx, tx, o); err != nil {
		return storeError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if _, err := h.Resolver.Refresh(ctx, o.VehicleID); err != nil {
		c.Logger().Warnf("status refresh for vehicle %d failed: %v", o.VehicleID, err)
	}
	return nil
}

// Create handles POST /v1/maintenance. An order without an accept
// date is open and flips its vehicle to maintenance as soon as the
// resolver refreshes.
func (h *MaintenanceHandler) Create(c echo.Context) error {
	var body maintenanceBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, errResp := h.orderFromBody(c, &body, 0)
	if o == nil {
		return errResp
	}
	if err := h.save(c, o); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, maintenanceJSON(o))
}

// Update handles PUT /v1/maintenance/:id. The stored item set and
// committee links are replaced with the ones in the request; setting
// an accept date here is how an order is closed.
func (h *MaintenanceHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	prev, err := h.MaintenanceRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}
	var body maintenanceBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, errResp := h.orderFromBody(c, &body, id)
	if o == nil {
		return errResp
	}
	if err := h.save(c, o); err != nil {
		return err
	}
	// Reassigning an order takes its maintenance signal along; the
	// vehicle it used to sit on needs its status rederived too.
	if prev.VehicleID != o.VehicleID {
		if _, err := h.Resolver.Refresh(c.Request().Context(), prev.VehicleID); err != nil {
			c.Logger().Warnf("status refresh for vehicle %d failed: %v", prev.VehicleID, err)
		}
	}
	return c.JSON(http.StatusOK, maintenanceJSON(o))
}

// Get handles GET /v1/maintenance/:id with items and committee links.
func (h *MaintenanceHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	o, err := h.MaintenanceRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, maintenanceJSON(o))
}

// List handles GET /v1/maintenance with optional vehicle_id and q
// query parameters. Orders come back most recently touched first; any
// search term matching the plate, center name, note, item descriptions
// or committee member names keeps the row.
func (h *MaintenanceHandler) List(c echo.Context) error {
	var vehicleID uint64
	if s := c.QueryParam("vehicle_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_id"})
		}
		vehicleID = id
	}
	orders, err := h.MaintenanceRepo.ListHistory(c.Request().Context(), vehicleID, c.QueryParam("q"))
	if err != nil {
		return storeError(c, err)
	}
	out := make([]echo.Map, 0, len(orders))
	for i := range orders {
		out = append(out, maintenanceJSON(&orders[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// Delete handles DELETE /v1/maintenance/:id. Items and committee
// links cascade; deleting an open order re-resolves the vehicle.
func (h *MaintenanceHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	vehicleID, wasOpen, err := h.MaintenanceRepo.Delete(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	if wasOpen {
		if _, err := h.Resolver.Refresh(ctx, vehicleID); err != nil {
			c.Logger().Warnf("status refresh for vehicle %d failed: %v", vehicleID, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
