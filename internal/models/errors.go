package models

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or malformed input, caught before any
// write. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// DuplicateBookingError is returned when a user already holds an unpaid
// booking for the same destination or event.
type DuplicateBookingError struct {
	UserID   string
	TargetID string
}

func (e *DuplicateBookingError) Error() string {
	return fmt.Sprintf("user %s already has a pending booking for %s", e.UserID, e.TargetID)
}

// InvalidTransitionError reports an illegal state machine edge. It is a
// hard contract violation, never retried.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

// InvariantViolationError reports a caller error that would break a core
// invariant, e.g. a payment amount differing from the booking total.
type InvariantViolationError struct {
	Message string
}

func (e *InvariantViolationError) Error() string {
	return e.Message
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConcurrentModificationError reports that a conditional write found the
// row in a different state than the one the caller observed. The caller
// may re-read and retry.
type ConcurrentModificationError struct {
	Entity string
	ID     string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Entity, e.ID)
}

// TransientError wraps a store or network failure. It is the only error
// class a caller may retry, and only for idempotent operations.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a TransientError anywhere in its chain.
func IsRetryable(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
