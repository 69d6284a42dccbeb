package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-fleet-service/internal/repository"
)

// dateLayout is the wire format for day-granular fields.
const dateLayout = "2006-01-02"

// paramID parses the :id path parameter. Zero ids are rejected.
func paramID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD value into a UTC midnight timestamp.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// parseOptionalTime parses an RFC 3339 timestamp, returning nil when
// the value is empty.
func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// storeError translates repository failures into the JSON error
// responses every handler shares: conflicts become 409, missing rows
// 404, an unreachable store 503 with a retryable hint, and anything
// else a plain 500.
func storeError(c echo.Context, err error) error {
	var conflict *repository.ConflictError
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       conflict.Reason,
			"existing_id": conflict.ExistingID,
		})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflicting records exist"})
	case errors.Is(err, repository.ErrVehicleBusy):
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle is not available"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":     "storage unavailable",
			"retryable": true,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
