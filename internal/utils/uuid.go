package utils

import "github.com/google/uuid"

// UUIDGenerator issues time-ordered identifiers for trace ids and push
// batches.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a version 7 UUID, or a random one when the clock source
// fails.
func (g *UUIDGenerator) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Valid reports whether s is a well-formed UUID.
func (g *UUIDGenerator) Valid(s string) bool {
	return uuid.Validate(s) == nil
}
