package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "contact_email is required",
		(&ValidationError{Field: "contact_email", Message: "is required"}).Error())
	assert.Equal(t, "bad input",
		(&ValidationError{Message: "bad input"}).Error())

	assert.Contains(t,
		(&DuplicateBookingError{UserID: "u1", TargetID: "destination d1"}).Error(),
		"already has a pending booking")

	assert.Equal(t, "booking cannot transition from completed to cancelled",
		(&InvalidTransitionError{Entity: "booking", From: "completed", To: "cancelled"}).Error())

	assert.Equal(t, "booking b1 not found",
		(&NotFoundError{Entity: "booking", ID: "b1"}).Error())

	assert.Equal(t, "payment p1 was modified concurrently",
		(&ConcurrentModificationError{Entity: "payment", ID: "p1"}).Error())
}

func TestIsRetryable(t *testing.T) {
	base := fmt.Errorf("connection reset")
	transient := &TransientError{Op: "get booking", Err: base}

	assert.True(t, IsRetryable(transient))
	assert.True(t, IsRetryable(fmt.Errorf("outer: %w", transient)))
	assert.False(t, IsRetryable(base))
	assert.False(t, IsRetryable(&InvalidTransitionError{Entity: "booking"}))
	assert.False(t, IsRetryable(nil))

	// TransientError unwraps to its cause
	assert.True(t, errors.Is(transient, base))
}
