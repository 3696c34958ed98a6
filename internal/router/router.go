package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"smsguard/internal/config"
	"smsguard/internal/handler"
	"smsguard/internal/logger"
	"smsguard/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth *handler.AuthHandler
	Scan *handler.ScanHandler
	User *handler.UserHandler
}

// Register wires routes and middleware. gate protects every route that needs
// an authenticated user.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *logger.Logger,
	gate echo.MiddlewareFunc,
	h Handlers,
) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestContext())
	e.Use(middleware.AccessLog(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)

	// Secured routes
	api.GET("/me", h.User.Me, gate)

	scans := api.Group("/checkmessage", gate)
	scans.POST("", h.Scan.CheckMessage)
	scans.GET("", h.Scan.ListScans)
	scans.GET("/stats", h.Scan.Stats)
	scans.GET("/:id", h.Scan.GetScan)
	scans.DELETE("/:id", h.Scan.DeleteScan)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
