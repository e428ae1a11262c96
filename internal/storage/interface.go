package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/klfajardo/registro-evento-chile/internal/model"
)

// Fields is the dynamic field map of a stored record
type Fields = map[string]any

// Record is a stored record with its store-assigned handle
type Record struct {
	ID     string
	Fields Fields
}

// Store is the record store adapter over named collections.
// Every method returns an error satisfying errors.Is(err, model.ErrStoreUnavailable)
// when the backend cannot be reached.
type Store interface {
	// FindOne returns the first record matching p, or model.ErrNotFound.
	// Implementations request a single result instead of scanning.
	FindOne(ctx context.Context, collection string, p Predicate) (*Record, error)

	// ListAll returns every record of the collection, projected to fields when given
	ListAll(ctx context.Context, collection string, fields ...string) ([]Record, error)

	// Create stores a new record and returns it with its assigned handle
	Create(ctx context.Context, collection string, fields Fields) (*Record, error)

	// Update writes the given fields onto an existing record and returns the result
	Update(ctx context.Context, collection, id string, fields Fields) (*Record, error)
}

// Predicate is an equality match on one field, optionally case-insensitive
type Predicate struct {
	Field      string
	Value      string
	IgnoreCase bool
}

// Equals matches records whose field equals value exactly
func Equals(field, value string) Predicate {
	return Predicate{Field: field, Value: value}
}

// EqualsFold matches records whose field equals value ignoring case
func EqualsFold(field, value string) Predicate {
	return Predicate{Field: field, Value: value, IgnoreCase: true}
}

// Match evaluates the predicate against a field map
func (p Predicate) Match(fields Fields) bool {
	v, ok := fields[p.Field]
	if !ok || v == nil {
		return false
	}
	s := fmt.Sprint(v)
	if p.IgnoreCase {
		return strings.EqualFold(s, p.Value)
	}
	return s == p.Value
}

// Project returns a copy of fields restricted to names. No names copies everything.
func Project(fields Fields, names ...string) Fields {
	out := make(Fields, len(fields))
	if len(names) == 0 {
		for k, v := range fields {
			out[k] = v
		}
		return out
	}
	for _, n := range names {
		if v, ok := fields[n]; ok {
			out[n] = v
		}
	}
	return out
}

// UnavailableError wraps a backend failure (network, auth, rate limit)
type UnavailableError struct {
	Op  string
	Err error
}

// Unavailable wraps err as a store failure for op
func Unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", model.ErrStoreUnavailable, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, model.ErrStoreUnavailable) true
func (e *UnavailableError) Is(target error) bool {
	return target == model.ErrStoreUnavailable
}

// IsUnavailable reports whether err is a store failure
func IsUnavailable(err error) bool {
	return errors.Is(err, model.ErrStoreUnavailable)
}
