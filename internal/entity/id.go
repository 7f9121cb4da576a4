package entity

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID for an entity.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// MustID generates a new ULID and panics on entropy failure.
// crypto/rand only fails when the platform randomness source is broken.
func MustID() string {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}
