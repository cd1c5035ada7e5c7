package room

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a room listing. Nil fields are ignored.
type ListFilter struct {
	Status *Status
	Type   *Type
}

// Repository defines the persistence contract for room aggregates.
type Repository interface {
	// FindByID retrieves a room by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByNumber retrieves a room by its human-facing number.
	FindByNumber(ctx context.Context, number string) (*Room, error)

	// NumberExists reports whether a room with the given number already exists.
	NumberExists(ctx context.Context, number string) (bool, error)

	// List retrieves rooms matching the filter, ordered by room number.
	List(ctx context.Context, filter ListFilter) ([]*Room, error)

	// Save persists a new room.
	Save(ctx context.Context, r *Room) error

	// Update persists changes to an existing room.
	Update(ctx context.Context, r *Room) error

	// UpdateStatus sets only the room's housekeeping status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
