package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smsguard/internal/auth"
	apperrors "smsguard/internal/errors"
	"smsguard/internal/logger"
	"smsguard/internal/model"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newGatedServer(jwtService *auth.JWTService, users *MockUserService, reached *bool) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/checkmessage", AuthGate(jwtService, users, logger.Nop()))
	g.GET("", func(c echo.Context) error {
		*reached = true
		user := CurrentUser(c)
		if user == nil {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": user.ID})
	})
	return e
}

func doRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/checkmessage", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthGate_Rejections(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	otherService := auth.NewJWTService("other-secret", time.Hour)
	expiredService := auth.NewJWTService("test-secret", -time.Minute)

	valid, err := jwtService.Issue(42)
	require.NoError(t, err)
	forged, err := otherService.Issue(42)
	require.NoError(t, err)
	expired, err := expiredService.Issue(42)
	require.NoError(t, err)

	tests := []struct {
		name      string
		header    string
		setupMock func(*MockUserService)
	}{
		{name: "missing header", header: ""},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "bearer without token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong signing key", header: "Bearer " + forged},
		{name: "expired token", header: "Bearer " + expired},
		{
			name:   "user no longer exists",
			header: "Bearer " + valid,
			setupMock: func(m *MockUserService) {
				m.On("GetUser", mock.Anything, uint(42)).Return(nil, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserService)
			if tt.setupMock != nil {
				tt.setupMock(users)
			}
			reached := false
			e := newGatedServer(jwtService, users, &reached)

			rec := doRequest(e, tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, reached)
			body := decodeError(t, rec)
			assert.Equal(t, "not authorized", body.Error)
			assert.Equal(t, "UNAUTHENTICATED", body.Code)
			users.AssertExpectations(t)
			if tt.setupMock == nil {
				users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAuthGate_StoreFailure(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	token, err := jwtService.Issue(42)
	require.NoError(t, err)

	users := new(MockUserService)
	users.On("GetUser", mock.Anything, uint(42)).
		Return(nil, apperrors.Persistence("find user by id", errors.New("too many connections")))

	reached := false
	rec := doRequest(newGatedServer(jwtService, users, &reached), "Bearer "+token)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, reached)
	body := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, rec.Body.String(), "too many connections")
}

func TestAuthGate_Success(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	token, err := jwtService.Issue(42)
	require.NoError(t, err)

	users := new(MockUserService)
	users.On("GetUser", mock.Anything, uint(42)).Return(&model.User{ID: 42, Email: "a@b.c"}, nil).Once()

	reached := false
	rec := doRequest(newGatedServer(jwtService, users, &reached), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.JSONEq(t, `{"id":42}`, rec.Body.String())
	users.AssertNumberOfCalls(t, "GetUser", 1)
}

func TestCurrentUser_OutsideGate(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, CurrentUser(c))
}

func TestRequestContext(t *testing.T) {
	e := echo.New()
	e.Use(echomw.RequestID(), RequestContext())

	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = logger.RequestID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), seen)
}
