package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"smsguard/internal/middleware"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct{}

// NewUserHandler creates a user handler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}
