package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborview/hotel-backend/internal/domain"
)

// CreationSource records which surface created a booking.
type CreationSource string

const (
	SourceStaff CreationSource = "staff"
	SourceGuest CreationSource = "guest"
)

const maxGuestNameLen = 100

// Booking is the aggregate root for the reservation domain.
type Booking struct {
	id              uuid.UUID
	reference       string
	guestName       string
	roomID          uuid.UUID
	checkInDate     time.Time
	checkOutDate    time.Time
	status          Status
	createdByUserID *uuid.UUID
	creationSource  CreationSource
	price           decimal.Decimal
	createdAt       time.Time
	updatedAt       time.Time
}

// NewBooking creates a new Booking aggregate with status=upcoming. Date
// validation against the current day is the lifecycle engine's concern; the
// aggregate only enforces invariants that hold independent of wall-clock time.
func NewBooking(
	reference string,
	guestName string,
	roomID uuid.UUID,
	checkInDate time.Time,
	checkOutDate time.Time,
	price decimal.Decimal,
	source CreationSource,
	createdByUserID *uuid.UUID,
) (*Booking, error) {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return nil, domain.NewValidationError("guest name is required")
	}
	if len(guestName) > maxGuestNameLen {
		return nil, domain.NewValidationError(
			fmt.Sprintf("guest name must be %d characters or less", maxGuestNameLen))
	}
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}

	checkInDate = DateOnly(checkInDate)
	checkOutDate = DateOnly(checkOutDate)
	if !checkOutDate.After(checkInDate) {
		return nil, domain.NewValidationError("check-out date must be after check-in date")
	}
	if price.IsNegative() {
		return nil, domain.NewValidationError("booking price cannot be negative")
	}
	if source != SourceStaff && source != SourceGuest {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid creation source: %s", source))
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		reference:       reference,
		guestName:       guestName,
		roomID:          roomID,
		checkInDate:     checkInDate,
		checkOutDate:    checkOutDate,
		status:          StatusUpcoming,
		createdByUserID: createdByUserID,
		creationSource:  source,
		price:           price,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	reference string,
	guestName string,
	roomID uuid.UUID,
	checkInDate time.Time,
	checkOutDate time.Time,
	status Status,
	createdByUserID *uuid.UUID,
	creationSource CreationSource,
	price decimal.Decimal,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		reference:       reference,
		guestName:       guestName,
		roomID:          roomID,
		checkInDate:     checkInDate,
		checkOutDate:    checkOutDate,
		status:          status,
		createdByUserID: createdByUserID,
		creationSource:  creationSource,
		price:           price,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the human-facing booking reference.
func (b *Booking) Reference() string { return b.reference }

// GuestName returns the display name the reservation was made under.
func (b *Booking) GuestName() string { return b.guestName }

// RoomID returns the reserved room's identifier.
func (b *Booking) RoomID() uuid.UUID { return b.roomID }

// CheckInDate returns the scheduled (or effective) check-in date.
func (b *Booking) CheckInDate() time.Time { return b.checkInDate }

// CheckOutDate returns the scheduled (or effective) check-out date.
func (b *Booking) CheckOutDate() time.Time { return b.checkOutDate }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// CreatedByUserID returns the guest account that self-served the booking, or
// nil for staff-created bookings.
func (b *Booking) CreatedByUserID() *uuid.UUID { return b.createdByUserID }

// CreationSource returns which surface created the booking.
func (b *Booking) CreationSource() CreationSource { return b.creationSource }

// Price returns the total stay price.
func (b *Booking) Price() decimal.Decimal { return b.price }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsOwnedBy reports whether the booking was self-served by the given guest
// account.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.createdByUserID != nil && *b.createdByUserID == userID
}

// CheckIn transitions the booking to checked_in. When the effective date is
// earlier than the scheduled check-in date (early check-in), the check-in date
// is lowered to the effective date.
func (b *Booking) CheckIn(effectiveDate time.Time) error {
	if !b.status.CanTransitionTo(StatusCheckedIn) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCheckedIn))
	}
	effectiveDate = DateOnly(effectiveDate)
	if effectiveDate.Before(b.checkInDate) {
		b.checkInDate = effectiveDate
	}
	b.status = StatusCheckedIn
	b.updatedAt = time.Now().UTC()
	return nil
}

// CheckOut transitions the booking to checked_out, shortening the check-out
// date and replacing the price in one step. The date ordering invariant is
// preserved because the caller computes the desired checkout as at least one
// night after check-in.
func (b *Booking) CheckOut(desiredCheckout time.Time, newPrice decimal.Decimal) error {
	if !b.status.CanTransitionTo(StatusCheckedOut) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCheckedOut))
	}
	desiredCheckout = DateOnly(desiredCheckout)
	if !desiredCheckout.After(b.checkInDate) {
		return domain.NewValidationError("check-out date must be after check-in date")
	}
	b.status = StatusCheckedOut
	b.checkOutDate = desiredCheckout
	b.price = newPrice
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled. A cancelled booking never
// occupied the room, so there is no room side effect.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}
