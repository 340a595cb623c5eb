package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues sortable identifiers for accounts, transfers and
// outbox events.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
