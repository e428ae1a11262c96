// Package ids generates the synthetic attendee identifiers
package ids

import "github.com/google/uuid"

// Generator produces new synthetic identifiers
type Generator interface {
	// New returns an identifier that has never been issued before
	New() string
}

// UUIDGenerator issues random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// New returns a fresh v4 UUID string
func (g *UUIDGenerator) New() string {
	return uuid.NewString()
}
