// Package uuidutil centralizes entity-ID generation and validation on top
// of github.com/google/uuid so no caller hand-rolls its own generator.
package uuidutil

import "github.com/google/uuid"

// New returns a fresh random (v4) UUID string.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s parses as a UUID in any of the canonical forms
// google/uuid accepts. Handler-facing input should also be checked against
// validation.UUIDValid for the exact 8-4-4-4-12 hex form the wire protocol
// requires.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
