package application

import (
	"context"

	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/domain/room"
)

// UnitOfWork runs a function against booking and room repositories bound to a
// single transaction. Either every write inside fn commits or none do, so a
// booking can never flip status without its room side effect (and vice versa)
// being visible to other callers.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(bookings booking.Repository, rooms room.Repository) error) error
}
