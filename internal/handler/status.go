package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-fleet-service/internal/status"
)

// StatusHandler exposes the resolver directly: a live resolution for
// one vehicle and the fleet-wide reconciliation sweep.
type StatusHandler struct {
	Resolver *status.Resolver
}

// NewStatusHandler constructs a StatusHandler.
func NewStatusHandler(resolver *status.Resolver) *StatusHandler {
	if resolver == nil {
		panic("nil resolver passed to NewStatusHandler")
	}
	return &StatusHandler{Resolver: resolver}
}

// Resolve handles GET /v1/vehicles/:id/status. By default it resolves
// from live records, bypassing cache and materialization, so the
// answer reflects the ledger at this instant; ?cached=true accepts the
// cached value when one is present. A source failure is reported as a
// failure; the handler never substitutes a default status.
func (h *StatusHandler) Resolve(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	resolve := h.Resolver.Resolve
	if c.QueryParam("cached") == "true" {
		resolve = h.Resolver.Cached
	}
	s, err := resolve(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicle_id": id, "status": s})
}

// Refresh handles POST /v1/vehicles/:id/status/refresh, recomputing
// and materializing one vehicle's status on demand.
func (h *StatusHandler) Refresh(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	s, err := h.Resolver.Refresh(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicle_id": id, "status": s})
}

// ReconcileAll handles POST /v1/status/reconcile, the manual recovery
// sweep over the whole fleet. Per-vehicle failures do not stop the
// sweep; the response reports how many refreshes succeeded and failed.
func (h *StatusHandler) ReconcileAll(c echo.Context) error {
	refreshed, failed, err := h.Resolver.ReconcileAll(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"refreshed": refreshed,
		"failed":    failed,
	})
}
