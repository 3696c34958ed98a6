package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when a request carries no usable credentials.
	ErrUnauthenticated = errors.New("not authorized")
	// ErrDuplicateIdentity is returned when registering an email that is already taken.
	ErrDuplicateIdentity = errors.New("user already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMessageRequired is returned when a scan request has no message text.
	ErrMessageRequired = errors.New("message content is required for prediction")
	// ErrMessageTooLong is returned when message text exceeds model.MaxMessageBytes.
	ErrMessageTooLong = errors.New("message is too long")
	// ErrPasswordTooLong is returned when a password exceeds the bcrypt input limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	// ErrScanNotFound is returned when a scan does not exist or belongs to another user.
	ErrScanNotFound = errors.New("scan not found")
	// ErrPersistence is returned when the storage layer fails.
	ErrPersistence = errors.New("persistence error")
	// ErrUpstreamRejected is returned when the classifier answered with a failure.
	ErrUpstreamRejected = errors.New("classifier rejected the request")
	// ErrUpstreamUnavailable is returned when the classifier could not be reached.
	ErrUpstreamUnavailable = errors.New("classifier unavailable")
)

// UpstreamError carries diagnostics about a failed classifier call.
// Kind is either ErrUpstreamRejected or ErrUpstreamUnavailable.
type UpstreamError struct {
	Kind       error
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%v: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Is matches the error kind so callers can use errors.Is(err, ErrUpstreamRejected).
func (e *UpstreamError) Is(target error) bool {
	return target == e.Kind
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Details returns the diagnostic payload attached to upstream error responses.
func (e *UpstreamError) Details() interface{} {
	if e.StatusCode != 0 {
		return map[string]interface{}{
			"status": e.StatusCode,
			"body":   e.Body,
		}
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return nil
}

// Persistence wraps a storage failure so it maps to ErrPersistence while
// keeping the driver error available for logging.
func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    interface{}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Upstream details are
// attached only when exposeDetails is set.
func MapErrorToHTTP(err error, exposeDetails bool) *HTTPError {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrDuplicateIdentity):
		return NewHTTPError(http.StatusConflict, ErrDuplicateIdentity.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrMessageRequired):
		return NewHTTPError(http.StatusBadRequest, ErrMessageRequired.Error(), "MESSAGE_REQUIRED")
	case errors.Is(err, ErrMessageTooLong):
		return NewHTTPError(http.StatusBadRequest, ErrMessageTooLong.Error(), "MESSAGE_TOO_LONG")
	case errors.Is(err, ErrPasswordTooLong):
		return NewHTTPError(http.StatusBadRequest, ErrPasswordTooLong.Error(), "VALIDATION_FAILED")
	case errors.Is(err, ErrScanNotFound):
		return NewHTTPError(http.StatusNotFound, ErrScanNotFound.Error(), "SCAN_NOT_FOUND")
	case errors.Is(err, ErrUpstreamRejected):
		httpErr := NewHTTPError(http.StatusBadGateway,
			"failed to get a valid response from the spam classifier", "UPSTREAM_REJECTED")
		if exposeDetails && errors.As(err, &upstream) {
			httpErr.Details = upstream.Details()
		}
		return httpErr
	case errors.Is(err, ErrUpstreamUnavailable):
		httpErr := NewHTTPError(http.StatusServiceUnavailable,
			"spam classifier is currently unavailable", "UPSTREAM_UNAVAILABLE")
		if exposeDetails && errors.As(err, &upstream) {
			httpErr.Details = upstream.Details()
		}
		return httpErr
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
