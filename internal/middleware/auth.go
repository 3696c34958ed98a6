// Package middleware holds the echo middleware specific to this service.
package middleware

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smsguard/internal/auth"
	apperrors "smsguard/internal/errors"
	"smsguard/internal/logger"
	"smsguard/internal/model"
	"smsguard/internal/service"
)

// UserContextKey is the echo context key under which the gate stores the
// authenticated *model.User.
const UserContextKey = "user"

// AuthGate rejects requests without a valid bearer token for an existing
// user. Every rejection carries the same body so callers cannot tell a bad
// token from a deleted account.
func AuthGate(jwtService *auth.JWTService, users service.UserService, log *logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.Nop()
	}
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  UserContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.Verify(token)
			if err != nil {
				return nil, apperrors.ErrUnauthenticated
			}
			user, err := users.GetUser(c.Request().Context(), claims.User.ID)
			if err != nil {
				return nil, err
			}
			if user == nil {
				return nil, apperrors.ErrUnauthenticated
			}
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, apperrors.ErrPersistence) {
				log.Error(c.Request().Context(), "resolve authenticated user", zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError,
					apperrors.MapErrorToHTTP(err, false).ToErrorResponse())
			}
			return echo.NewHTTPError(http.StatusUnauthorized,
				apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated, false).ToErrorResponse())
		},
	})
}

// CurrentUser returns the user stored by AuthGate, or nil outside the gate.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(UserContextKey).(*model.User)
	return user
}
