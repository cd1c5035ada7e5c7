package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows a booking listing. Nil fields are ignored.
type ListFilter struct {
	Status    *Status
	GuestName string
	FromDate  *time.Time
	ToDate    *time.Time
}

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its human-facing reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// ReferenceExists reports whether a booking with the given reference exists.
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	// FindBlockingOverlaps retrieves bookings for the room whose status blocks
	// availability and whose half-open date range intersects [checkIn, checkOut).
	// excludeID, when non-nil, removes one booking from consideration.
	FindBlockingOverlaps(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*Booking, error)

	// List retrieves bookings matching the filter, ordered by check-in date.
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)

	// ListByUser retrieves bookings self-served by the given guest account,
	// newest check-in first.
	ListByUser(ctx context.Context, userID uuid.UUID, status *Status) ([]*Booking, error)

	// ListCheckedOut retrieves checked-out bookings whose stay intersects the
	// closed date window. Nil bounds widen the window; a nil roomID spans all
	// rooms.
	ListCheckedOut(ctx context.Context, roomID *uuid.UUID, start, end *time.Time) ([]*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// UpdateGuarded persists changes to an existing booking with an optimistic
	// concurrency guard: the update is conditioned on the status value the
	// caller originally read. Zero affected rows surface as a conflict error.
	UpdateGuarded(ctx context.Context, b *Booking, expected Status) error

	// MarkNoShows transitions upcoming bookings whose check-in date has passed
	// to no_show, returning the number of rows changed.
	MarkNoShows(ctx context.Context, today time.Time) (int64, error)

	// MarkOverstays transitions checked-in bookings whose check-out date has
	// passed to overstay, returning the number of rows changed.
	MarkOverstays(ctx context.Context, today time.Time) (int64, error)
}
