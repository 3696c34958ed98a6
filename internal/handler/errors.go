package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smsguard/internal/errors"
	"smsguard/internal/logger"
)

// fail converts a service error into the JSON error body. Server-side
// failures are logged with their cause; the client only sees the mapped message.
func fail(c echo.Context, log *logger.Logger, err error, exposeDetails bool) error {
	httpErr := errors.MapErrorToHTTP(err, exposeDetails)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		log.Error(c.Request().Context(), "request failed",
			zap.String("path", c.Path()),
			zap.String("code", httpErr.Code),
			zap.Error(err))
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
