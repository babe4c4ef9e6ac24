package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator assigns identifiers to routines at registration, used for
// trace correlation. Implemented by UUIDv7Generator (production) and
// SequentialGenerator (tests, golden traces).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator produces time-ordered UUIDs.
//
// UUIDv7 keeps IDs sortable by creation time, which makes raw trace dumps
// readable without joining against the clock.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequentialGenerator produces "prefix-1", "prefix-2", ... deterministically.
// Used by the harness and tests so traces are stable across runs.
type SequentialGenerator struct {
	Prefix string
	n      int
}

// Generate returns the next sequential ID.
func (g *SequentialGenerator) Generate() string {
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "unit"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n)
}
