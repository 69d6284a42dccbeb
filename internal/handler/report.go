package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/report"
	"github.com/iliyamo/vehicle-fleet-service/internal/repository"
)

// ReportHandler aggregates the maintenance and usage history by
// fiscal year. The fiscal start month comes from configuration; every
// window is computed from it with explicit, testable boundaries.
type ReportHandler struct {
	MaintenanceRepo  *repository.MaintenanceRepo
	UsageRepo        *repository.UsageRepo
	VehicleRepo      *repository.VehicleRepo
	FiscalStartMonth time.Month
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(maintenanceRepo *repository.MaintenanceRepo, usageRepo *repository.UsageRepo, vehicleRepo *repository.VehicleRepo, fiscalStartMonth time.Month) *ReportHandler {
	if maintenanceRepo == nil || usageRepo == nil || vehicleRepo == nil {
		panic("nil repository passed to NewReportHandler")
	}
	return &ReportHandler{
		MaintenanceRepo:  maintenanceRepo,
		UsageRepo:        usageRepo,
		VehicleRepo:      vehicleRepo,
		FiscalStartMonth: fiscalStartMonth,
	}
}

// fiscalWindow resolves the fy query parameter, defaulting to the
// fiscal year containing today.
func (h *ReportHandler) fiscalWindow(c echo.Context) (fy int, from, to time.Time, err error) {
	fy = report.CurrentFiscalYear(time.Now().UTC(), h.FiscalStartMonth)
	if s := c.QueryParam("fy"); s != "" {
		fy, err = strconv.Atoi(s)
		if err != nil || fy < 1900 || fy > 3000 {
			return 0, time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid fiscal year")
		}
	}
	from, to = report.FiscalYearBounds(fy, h.FiscalStartMonth)
	return fy, from, to, nil
}

// MaintenanceSummary handles GET /v1/reports/maintenance?fy=2026.
// Accepted orders are bucketed per calendar month; the months axis
// always runs the full fiscal year in fiscal order, zero-filled where
// nothing was spent.
func (h *ReportHandler) MaintenanceSummary(c echo.Context) error {
	fy, from, to, err := h.fiscalWindow(c)
	if err != nil {
		return err
	}
	totals, err := h.MaintenanceRepo.MonthlyTotals(c.Request().Context(), from, to)
	if err != nil {
		return storeError(c, err)
	}

	months := make([]echo.Map, 12)
	for i := 0; i < 12; i++ {
		months[i] = echo.Map{
			"month":       int(report.MonthAt(i, h.FiscalStartMonth)),
			"order_count": 0,
			"total_cents": int64(0),
		}
	}
	var yearTotal int64
	var yearOrders int
	for _, t := range totals {
		idx := report.MonthIndex(t.Month, h.FiscalStartMonth)
		months[idx]["order_count"] = t.OrderCount
		months[idx]["total_cents"] = t.TotalCents
		yearTotal += t.TotalCents
		yearOrders += t.OrderCount
	}
	return c.JSON(http.StatusOK, echo.Map{
		"fiscal_year": fy,
		"from":        from.Format(dateLayout),
		"to":          to.AddDate(0, 0, -1).Format(dateLayout),
		"months":      months,
		"order_count": yearOrders,
		"total_cents": yearTotal,
	})
}

// MaintenanceByVehicle handles GET /v1/reports/maintenance/vehicles,
// accepted spend per vehicle for the fiscal year, biggest first.
func (h *ReportHandler) MaintenanceByVehicle(c echo.Context) error {
	fy, from, to, err := h.fiscalWindow(c)
	if err != nil {
		return err
	}
	totals, err := h.MaintenanceRepo.TotalsByVehicle(c.Request().Context(), from, to)
	if err != nil {
		return storeError(c, err)
	}
	out := make([]echo.Map, 0, len(totals))
	for _, t := range totals {
		out = append(out, echo.Map{
			"vehicle_id":  t.VehicleID,
			"plate":       t.Plate,
			"order_count": t.OrderCount,
			"total_cents": t.TotalCents,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"fiscal_year": fy,
		"vehicles":    out,
	})
}

// FleetStatus handles GET /v1/reports/fleet-status, the count of
// vehicles per materialized status across the whole registry.
func (h *ReportHandler) FleetStatus(c echo.Context) error {
	vehicles, err := h.VehicleRepo.List(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	counts := report.CountStatuses(vehicles)
	return c.JSON(http.StatusOK, echo.Map{
		"total":       len(vehicles),
		"available":   counts[model.StatusAvailable],
		"in_use":      counts[model.StatusInUse],
		"maintenance": counts[model.StatusMaintenance],
	})
}

// TopBorrowed handles GET /v1/reports/top-borrowed?fy=2026&limit=10,
// the most borrowed vehicles of the fiscal year.
func (h *ReportHandler) TopBorrowed(c echo.Context) error {
	fy, from, to, err := h.fiscalWindow(c)
	if err != nil {
		return err
	}
	limit := 10
	if s := c.QueryParam("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
	}
	counts, err := h.UsageRepo.TopBorrowed(c.Request().Context(), from, to, limit)
	if err != nil {
		return storeError(c, err)
	}
	out := make([]echo.Map, 0, len(counts))
	for _, b := range counts {
		out = append(out, echo.Map{
			"vehicle_id": b.VehicleID,
			"plate":      b.Plate,
			"count":      b.Count,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"fiscal_year": fy,
		"vehicles":    out,
	})
}
