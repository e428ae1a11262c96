package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klfajardo/registro-evento-chile/internal/model"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Error codes, sent in the message field
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NO_ENCONTRADO"
	CodeNotPaid        = "NO_PAGADO"
	CodeRoleNotAllowed = "ROL_NO_PERMITIDO"
	CodeTimeout        = "TIMEOUT"
	CodeBackend        = "ERROR_BACKEND"
	CodeFallback       = "ERROR_RESPALDO"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an error code and detail
type httpError struct {
	status int
	code   string
	detail string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.detail
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Message: he.code, Error: he.detail})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, CodeInvalidRequest, err.Error()}
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, CodeNotFound, err.Error()}
	case errors.Is(err, model.ErrPaymentRequired):
		return &httpError{http.StatusForbidden, CodeNotPaid, err.Error()}
	case errors.Is(err, model.ErrRoleNotAllowed):
		return &httpError{http.StatusForbidden, CodeRoleNotAllowed, err.Error()}
	case errors.Is(err, model.ErrTimeout):
		return &httpError{http.StatusGatewayTimeout, CodeTimeout, err.Error()}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusUnauthorized, CodeUnauthorized, "invalid or missing admin token"}
	case errors.Is(err, model.ErrFallbackWrite):
		return &httpError{http.StatusInternalServerError, CodeFallback, err.Error()}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusInternalServerError, CodeBackend, err.Error()}

	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "internal server error"}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, "internal server error"}
}
