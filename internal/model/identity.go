package model

import (
	"fmt"
	"strings"
)

// NormalizeIdentity canonicalizes an identity key (DNI) for equality matching.
// Keys differing only in surrounding whitespace or letter case normalize to the
// same value.
func NormalizeIdentity(raw string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", fmt.Errorf("%w: dni is required", ErrValidation)
	}
	return key, nil
}
