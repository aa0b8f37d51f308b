package store

import (
	"github.com/google/uuid"
)

// IDGenerator produces catalog entry ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 entry ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SetIDGenerator replaces the entry id generator. A nil generator
// restores the UUIDv7 default.
func (s *Store) SetIDGenerator(g IDGenerator) {
	if g == nil {
		g = UUIDv7Generator{}
	}
	s.ids = g
}
