package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"smsguard/internal/logger"
)

// RequestContext copies the request id assigned by echo's RequestID
// middleware into the request context so service-level logs carry it.
// It must run after echomw.RequestID.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
			}
			return next(c)
		}
	}
}

// AccessLog writes one structured entry per request.
func AccessLog(log *logger.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			ctx := c.Request().Context()
			switch {
			case v.Status >= 500:
				log.Error(ctx, "request", append(fields, zap.Error(v.Error))...)
			case v.Error != nil:
				log.Warn(ctx, "request", append(fields, zap.Error(v.Error))...)
			default:
				log.Info(ctx, "request", fields...)
			}
			return nil
		},
	})
}
