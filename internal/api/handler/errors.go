package handler

import (
	"encoding/json"
	"net/http"

	"github.com/klfajardo/registro-evento-chile/internal/api/apierr"
)

// Re-export from apierr for convenience
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// maxBodyBytes bounds request bodies; bulk imports are the largest
const maxBodyBytes = 8 << 20

// decode reads a JSON request body into dst
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}
