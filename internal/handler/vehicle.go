package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/repository"
	"github.com/iliyamo/vehicle-fleet-service/internal/status"
)

// VehicleHandler exposes the vehicle registry. The status field in
// every response is the resolver-materialized value; the handler never
// computes or writes a status itself except by asking the resolver to
// refresh.
type VehicleHandler struct {
	VehicleRepo *repository.VehicleRepo
	Resolver    *status.Resolver
}

// NewVehicleHandler constructs a VehicleHandler. Both dependencies
// must be non-nil.
func NewVehicleHandler(vehicleRepo *repository.VehicleRepo, resolver *status.Resolver) *VehicleHandler {
	if vehicleRepo == nil || resolver == nil {
		panic("nil dependency passed to NewVehicleHandler")
	}
	return &VehicleHandler{VehicleRepo: vehicleRepo, Resolver: resolver}
}

type vehicleBody struct {
	Plate         string `json:"plate"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Year          int    `json:"year"`
	Color         string `json:"color"`
	VehicleType   string `json:"vehicle_type"`
	AssetNumber   string `json:"asset_number"`
	ChassisNumber string `json:"chassis_number"`
	EngineNumber  string `json:"engine_number"`
	Description   string `json:"description"`
	CaretakerOrg  string `json:"caretaker_org"`
	Condition     string `json:"condition"`
	ManualStatus  string `json:"manual_status"`
}

func vehicleJSON(v *model.Vehicle) echo.Map {
	return echo.Map{
		"id":             v.ID,
		"plate":          v.Plate,
		"brand":          v.Brand,
		"model":          v.Model,
		"year":           v.Year,
		"color":          v.Color,
		"vehicle_type":   v.VehicleType,
		"asset_number":   v.AssetNumber,
		"chassis_number": v.ChassisNumber,
		"engine_number":  v.EngineNumber,
		"description":    v.Description,
		"caretaker_org":  v.CaretakerOrg,
		"condition":      v.Condition,
		"manual_status":  v.ManualStatus,
		"status":         v.Status,
		"selectable":     v.Condition.Selectable(),
		"created_at":     v.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":     v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Register handles POST /v1/vehicles. The plate is normalized and its
// key must be unique; registering a plate that only differs in case or
// spacing from an existing one returns 409 with the existing id.
func (h *VehicleHandler) Register(c echo.Context) error {
	var body vehicleBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if model.NormalizePlate(body.Plate) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plate is required"})
	}
	cond := model.VehicleCondition(body.Condition)
	if body.Condition == "" {
		cond = model.ConditionNormal
	}
	if !cond.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid condition"})
	}
	manual := model.VehicleStatus(body.ManualStatus)
	if body.ManualStatus == "" {
		manual = model.StatusAvailable
	}
	if !manual.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid manual status"})
	}

	v := &model.Vehicle{
		Plate:         body.Plate,
		Brand:         body.Brand,
		Model:         body.Model,
		Year:          body.Year,
		Color:         body.Color,
		VehicleType:   body.VehicleType,
		AssetNumber:   body.AssetNumber,
		ChassisNumber: body.ChassisNumber,
		EngineNumber:  body.EngineNumber,
		Description:   body.Description,
		CaretakerOrg:  body.CaretakerOrg,
		Condition:     cond,
		ManualStatus:  manual,
	}
	ctx := c.Request().Context()
	if err := h.VehicleRepo.Create(ctx, v); err != nil {
		return storeError(c, err)
	}
	// First materialization of the derived status; a fresh registry
	// row has no ledger entries, so this lands on the manual status.
	if s, err := h.Resolver.Refresh(ctx, v.ID); err == nil {
		v.Status = s
	} else {
		c.Logger().Warnf("status refresh after vehicle %d registration failed: %v", v.ID, err)
	}
	return c.JSON(http.StatusCreated, vehicleJSON(v))
}

// List handles GET /v1/vehicles and returns the registry ordered by
// plate.
func (h *VehicleHandler) List(c echo.Context) error {
	vehicles, err := h.VehicleRepo.List(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	out := make([]echo.Map, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, vehicleJSON(&vehicles[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicles": out})
}

// Get handles GET /v1/vehicles/:id.
func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	v, err := h.VehicleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, vehicleJSON(v))
}

// Update handles PUT /v1/vehicles/:id. Only the administrative fields
// can change; serial numbers recorded at registration stay fixed. A
// manual status change triggers a resolver refresh so the
// materialized status follows immediately.
func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	ctx := c.Request().Context()
	v, err := h.VehicleRepo.GetByID(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	var body vehicleBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if model.NormalizePlate(body.Plate) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plate is required"})
	}
	cond := model.VehicleCondition(body.Condition)
	if !cond.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid condition"})
	}
	manual := model.VehicleStatus(body.ManualStatus)
	if !manual.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid manual status"})
	}

	v.Plate = body.Plate
	v.Brand = body.Brand
	v.Model = body.Model
	v.Year = body.Year
	v.Color = body.Color
	v.CaretakerOrg = body.CaretakerOrg
	v.Condition = cond
	manualChanged := v.ManualStatus != manual
	v.ManualStatus = manual

	if err := h.VehicleRepo.UpdateDescriptive(ctx, v); err != nil {
		return storeError(c, err)
	}
	if manualChanged {
		if s, err := h.Resolver.Refresh(ctx, id); err == nil {
			v.Status = s
		} else {
			c.Logger().Warnf("status refresh after vehicle %d update failed: %v", id, err)
		}
	}
	return c.JSON(http.StatusOK, vehicleJSON(v))
}

// Delete handles DELETE /v1/vehicles/:id. Vehicles with any ledger,
// reservation or maintenance history cannot be removed.
func (h *VehicleHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	ctx := c.Request().Context()
	if err := h.VehicleRepo.Delete(ctx, id); err != nil {
		return storeError(c, err)
	}
	h.Resolver.Forget(ctx, id)
	return c.NoContent(http.StatusNoContent)
}
