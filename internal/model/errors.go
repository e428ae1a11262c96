package model

import "errors"

// Common errors used across the application
var (
	// ErrValidation marks missing or malformed required input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when no attendee matches the lookup key
	ErrNotFound = errors.New("not found")

	// ErrPaymentRequired is returned when a badge print is attempted before payment
	ErrPaymentRequired = errors.New("payment required")

	// ErrStoreUnavailable marks a failure talking to the remote record store.
	// Write operations degrade to the fallback log on this error.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrTimeout is returned when a bounded wait on the store expires
	ErrTimeout = errors.New("timeout waiting for record store")

	// ErrFallbackWrite is returned when the local fallback log cannot be written
	ErrFallbackWrite = errors.New("fallback log write failed")

	// ErrRoleNotAllowed is returned when the station's role may not perform an operation
	ErrRoleNotAllowed = errors.New("role not allowed")

	// ErrUnauthorized is returned when the shared admin secret does not match
	ErrUnauthorized = errors.New("unauthorized")
)
