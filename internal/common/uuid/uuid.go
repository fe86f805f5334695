// Package uuid wraps github.com/google/uuid with UUIDv7 (time-ordered) as
// the default version, so identifiers sort by creation time in the store.
package uuid

import (
	"github.com/google/uuid"
)

// UUID is aliased from github.com/google/uuid.UUID.
type UUID = uuid.UUID

// Nil is the zero UUID.
var Nil = uuid.Nil

// New returns a new UUIDv7. Panics if generation fails.
func New() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// NewRandom returns a new UUIDv7 and any generation error.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// Parse parses s into a UUID.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// MustParse parses s and panics when it is not a valid UUID.
func MustParse(s string) UUID {
	return uuid.MustParse(s)
}

// IsUUIDv7 reports whether id is version 7.
func IsUUIDv7(id UUID) bool {
	return id.Version() == uuid.Version(7)
}
