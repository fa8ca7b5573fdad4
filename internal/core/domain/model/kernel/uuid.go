package kernel

import (
	"fmt"

	"harvestlog/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned when validating a zero-value UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID, NewOrderedUUID or UUIDFromString")

// UUID is an identifier value object wrapping github.com/google/uuid.
// The zero value is invalid.
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random (version 4) identifier.
func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// NewOrderedUUID generates a time-ordered (version 7) identifier, so ids minted
// later in a session sort after earlier ones. Falls back to a random UUID if the
// time-based generator fails.
//
// Example:
//
//	orderID := kernel.NewOrderedUUID()
//	fmt.Println(orderID) // 01927f3e-7c1a-7b6e-9a3d-5f0c2b1d4e8a
func NewOrderedUUID() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return NewUUID()
	}
	return UUID{id: id}
}

// UUIDFromString parses the canonical textual form of a UUID.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}

	parsed := UUID{id: id}
	if err = parsed.Validate(); err != nil {
		return UUID{}, err
	}
	return parsed, nil
}

func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying google/uuid value for persistence adapters.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual compares two identifiers by value.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate rejects the nil UUID.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
