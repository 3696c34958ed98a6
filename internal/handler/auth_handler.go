package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"smsguard/internal/auth"
	"smsguard/internal/errors"
	"smsguard/internal/logger"
	"smsguard/internal/model"
	"smsguard/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{authService: authService, log: log}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// MessageResponse is a body carrying only a human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_FAILED")
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return badRequest(errors.ErrPasswordTooLong.Error(), "VALIDATION_FAILED")
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fail(c, h.log, err, false)
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Message: "user registered successfully",
		Token:   token,
		User:    user,
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_FAILED")
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, h.log, err, false)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Message: "login successful",
		Token:   token,
		User:    user,
	})
}

// Logout godoc
// @Summary Logout user
// @Description Tokens are stateless; the client is expected to discard its token.
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}
