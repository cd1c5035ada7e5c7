package room

import (
	"fmt"

	"github.com/harborview/hotel-backend/internal/domain"
)

// Status represents the housekeeping state of a room.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
	StatusDirty       Status = "dirty"
	StatusCleaning    Status = "cleaning"
)

// validTransitions defines the state machine for room status transitions.
// A status may always transition to itself (no-op).
var validTransitions = map[Status][]Status{
	StatusAvailable:   {StatusOccupied, StatusMaintenance, StatusDirty},
	StatusOccupied:    {StatusAvailable, StatusDirty},
	StatusMaintenance: {StatusAvailable},
	StatusDirty:       {StatusCleaning, StatusAvailable},
	StatusCleaning:    {StatusAvailable, StatusDirty},
}

// IsValid returns true if the status is a recognized room status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target
// is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return s.IsValid()
	}
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsAllowedForRole returns true if the given role may set this status through
// the housekeeping workflow. Cleaners may not claim a room as occupied or put
// it under maintenance; every other combination is permitted. System-initiated
// transitions during check-in/out bypass this filter.
func (s Status) IsAllowedForRole(role domain.Role) bool {
	if role != domain.RoleCleaner {
		return true
	}
	return s != StatusOccupied && s != StatusMaintenance
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid room status: %s", s))
	}
	return status, nil
}
