package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/vehicle-fleet-service/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that have no dependencies on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterVehicles registers the vehicle registry endpoints and the
// per-vehicle status operations under /v1/vehicles.
func RegisterVehicles(e *echo.Echo, v *handler.VehicleHandler, s *handler.StatusHandler) {
	g := e.Group("/v1/vehicles")
	// Register a new vehicle; the plate key must be unique fleet-wide.
	g.POST("", v.Register)
	// List the registry ordered by plate, materialized status included.
	g.GET("", v.List)
	// Fetch one vehicle by id.
	g.GET("/:id", v.Get)
	// Update the administrative fields of a vehicle.
	g.PUT("/:id", v.Update)
	// Remove a vehicle that has no history yet.
	g.DELETE("/:id", v.Delete)
	// Resolve the status from live records, bypassing the materialization.
	g.GET("/:id/status", s.Resolve)
	// Recompute and materialize the status on demand.
	g.POST("/:id/status/refresh", s.Refresh)
}

// RegisterReservations registers the reservation calendar endpoints
// under /v1/reservations.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler) {
	g := e.Group("/v1/reservations")
	// Book a vehicle over a closed day interval; overlaps are rejected.
	g.POST("", r.Create)
	// Browse reservations overlapping a date window.
	g.GET("", r.List)
	// Change the party name or note of an existing booking.
	g.PUT("/:id", r.Update)
	// Cancel a booking.
	g.DELETE("/:id", r.Delete)
}

// RegisterUsage registers the usage ledger endpoints under /v1/usage.
func RegisterUsage(e *echo.Echo, u *handler.UsageHandler) {
	g := e.Group("/v1/usage")
	// Borrow a vehicle or hand it to a repair shop (is_maintenance).
	g.POST("", u.Borrow)
	// List ledger rows with optional vehicle, borrower and status filters.
	g.GET("", u.List)
	// Return an outstanding vehicle; a repeated return is a no-op.
	g.POST("/:id/return", u.Return)
	// Administrative correction: drop a ledger row entirely.
	g.DELETE("/:id", u.Delete)
}

// RegisterMaintenance registers the work order endpoints under
// /v1/maintenance.
func RegisterMaintenance(e *echo.Echo, m *handler.MaintenanceHandler) {
	g := e.Group("/v1/maintenance")
	// Open a new work order; without an accept date it keeps the vehicle
	// in maintenance.
	g.POST("", m.Create)
	// List order history, optionally filtered by vehicle or search terms.
	g.GET("", m.List)
	// Fetch one order with its items and committee links.
	g.GET("/:id", m.Get)
	// Replace an order's fields, items and committee; setting accept_date
	// closes it.
	g.PUT("/:id", m.Update)
	// Delete an order; its items and committee links cascade.
	g.DELETE("/:id", m.Delete)
}

// RegisterUsers registers the borrower directory under /v1/users.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler) {
	g := e.Group("/v1/users")
	g.POST("", u.Create)
	g.GET("", u.List)
}

// RegisterReports registers fiscal-year reporting endpoints and the
// fleet-wide status reconciliation sweep.
func RegisterReports(e *echo.Echo, r *handler.ReportHandler, s *handler.StatusHandler) {
	g := e.Group("/v1/reports")
	// Monthly maintenance spend over a fiscal year.
	g.GET("/maintenance", r.MaintenanceSummary)
	// Maintenance spend per vehicle over a fiscal year.
	g.GET("/maintenance/vehicles", r.MaintenanceByVehicle)
	// Most borrowed vehicles of a fiscal year.
	g.GET("/top-borrowed", r.TopBorrowed)
	// Vehicle counts per materialized status.
	g.GET("/fleet-status", r.FleetStatus)
	// Manual recovery sweep re-materializing every vehicle's status.
	e.POST("/v1/status/reconcile", s.ReconcileAll)
}
