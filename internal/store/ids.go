package store

import "github.com/google/uuid"

// ImportIDGenerator produces the id recorded for each import.
type ImportIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 import ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so import ids sort
// by creation time, which keeps `incompat show --imports` readable.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
