package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
	"github.com/iliyamo/vehicle-fleet-service/internal/repository"
)

// UserHandler exposes the borrower directory.
type UserHandler struct {
	UserRepo *repository.UserRepo
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(userRepo *repository.UserRepo) *UserHandler {
	if userRepo == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{UserRepo: userRepo}
}

// Create handles POST /v1/users. Names are trimmed and must be unique.
func (h *UserHandler) Create(c echo.Context) error {
	var body struct {
		FullName string `json:"full_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.FullName)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name is required"})
	}
	u := &model.User{FullName: name}
	if err := h.UserRepo.Create(c.Request().Context(), u); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": u.ID, "full_name": u.FullName})
}

// List handles GET /v1/users.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.UserRepo.List(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, echo.Map{"id": u.ID, "full_name": u.FullName})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}
