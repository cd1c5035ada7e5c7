package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so the transport layer can map it to a
// status code in exactly one place.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindRoomUnavailable
	KindInvalidTransition
	KindConflict
	KindUnauthorized
	KindForbidden
	KindInternal
)

// Error is the typed error returned by domain and application code for rule
// violations. Infrastructure failures are wrapped with %w instead.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError reports caller-supplied input that violates a precondition.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports a missing entity. It is also used deliberately for
// failed ownership checks so callers cannot probe for existence.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s '%s' not found", entity, id)}
}

// NewRoomUnavailableError reports a room failing the schedule or readiness check.
func NewRoomUnavailableError(message string) *Error {
	return &Error{Kind: KindRoomUnavailable, Message: message}
}

// NewInvalidTransitionError reports an illegal lifecycle move.
func NewInvalidTransitionError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewConflictError reports a lost optimistic-concurrency race.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewUnauthorizedError reports a missing or invalid credential.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewForbiddenError reports an authenticated caller lacking permission.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewInternalError reports an infrastructure-level failure that is not
// user-actionable.
func NewInternalError(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}

// IsKind reports whether err is a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
