package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborview/hotel-backend/internal/domain"
)

// Type classifies a room for pricing purposes.
type Type string

const (
	TypeSingle Type = "single"
	TypeDouble Type = "double"
	TypeSuite  Type = "suite"
)

// IsValid returns true if the room type is recognized.
func (t Type) IsValid() bool {
	switch t {
	case TypeSingle, TypeDouble, TypeSuite:
		return true
	}
	return false
}

// DefaultNightlyRate returns the standard nightly rate for the room type.
func (t Type) DefaultNightlyRate() decimal.Decimal {
	switch t {
	case TypeDouble:
		return decimal.NewFromInt(1500000)
	case TypeSuite:
		return decimal.NewFromInt(2500000)
	default:
		return decimal.NewFromInt(1000000)
	}
}

// ParseType converts a string to a Type, returning an error if invalid.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid room type: %s", s))
	}
	return t, nil
}

// Room is the aggregate root for the room domain.
type Room struct {
	id        uuid.UUID
	number    string
	roomType  Type
	status    Status
	price     decimal.Decimal
	createdAt time.Time
	updatedAt time.Time
}

// NewRoom creates a new Room with status=available and the default nightly
// rate for its type.
func NewRoom(number string, roomType Type) (*Room, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.NewValidationError("room number is required")
	}
	if !roomType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid room type: %s", roomType))
	}

	now := time.Now().UTC()
	return &Room{
		id:        uuid.New(),
		number:    number,
		roomType:  roomType,
		status:    StatusAvailable,
		price:     roomType.DefaultNightlyRate(),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Room from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	number string,
	roomType Type,
	status Status,
	price decimal.Decimal,
	createdAt time.Time,
	updatedAt time.Time,
) *Room {
	return &Room{
		id:        id,
		number:    number,
		roomType:  roomType,
		status:    status,
		price:     price,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the room's unique identifier.
func (r *Room) ID() uuid.UUID { return r.id }

// Number returns the unique human-facing room number.
func (r *Room) Number() string { return r.number }

// RoomType returns the room's type.
func (r *Room) RoomType() Type { return r.roomType }

// Status returns the current housekeeping status.
func (r *Room) Status() Status { return r.status }

// Price returns the current nightly rate.
func (r *Room) Price() decimal.Decimal { return r.price }

// CreatedAt returns the creation timestamp.
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// ChangeStatus transitions the room to the target status, enforcing the
// housekeeping state machine.
func (r *Room) ChangeStatus(target Status) error {
	if !r.status.CanTransitionTo(target) {
		return domain.NewInvalidTransitionError(string(r.status), string(target))
	}
	r.status = target
	r.updatedAt = time.Now().UTC()
	return nil
}

// ForceStatus sets the status without consulting the transition table. Used
// only for admin overrides that are explicitly allowed to bypass the rules.
func (r *Room) ForceStatus(target Status) {
	r.status = target
	r.updatedAt = time.Now().UTC()
}

// ChangeType updates the room type without touching the nightly rate.
func (r *Room) ChangeType(target Type) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid room type: %s", target))
	}
	r.roomType = target
	r.updatedAt = time.Now().UTC()
	return nil
}

// ChangePrice updates the nightly rate.
func (r *Room) ChangePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.NewValidationError("room price cannot be negative")
	}
	r.price = price
	r.updatedAt = time.Now().UTC()
	return nil
}
