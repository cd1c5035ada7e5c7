package booking

import (
	"fmt"

	"github.com/harborview/hotel-backend/internal/domain"
)

// Status represents the current state of a reservation in its lifecycle.
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
	StatusOverstay   Status = "overstay"
)

// validTransitions defines the state machine for booking status transitions.
// NoShow and Overstay are reached automatically by the reconciler when
// calendar dates lapse, but they participate in the table so that manual
// follow-ups (late check-in of a no-show guest) remain well-defined.
var validTransitions = map[Status][]Status{
	StatusUpcoming:   {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:  {StatusCheckedOut, StatusOverstay},
	StatusCheckedOut: {},
	StatusCancelled:  {},
	StatusNoShow:     {StatusCheckedIn, StatusCancelled},
	StatusOverstay:   {StatusCheckedOut},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target
// is allowed. A status may always transition to itself (no-op).
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

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsActive returns true if the room should be physically occupied under this status.
func (s Status) IsActive() bool {
	return s == StatusCheckedIn || s == StatusOverstay
}

// BlocksAvailability returns true if bookings in this status count against the
// room's schedule for overlap purposes.
func (s Status) BlocksAvailability() bool {
	switch s {
	case StatusUpcoming, StatusCheckedIn, StatusOverstay:
		return true
	}
	return false
}

// BlockingStatuses returns the set of statuses that block availability.
func BlockingStatuses() []Status {
	return []Status{StatusUpcoming, StatusCheckedIn, StatusOverstay}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", s))
	}
	return status, nil
}
