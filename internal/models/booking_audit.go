package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventType represents the type of lifecycle event being audited
type BookingEventType string

const (
	BookingEventCreated         BookingEventType = "booking_created"
	BookingEventConfirmed       BookingEventType = "booking_confirmed"
	BookingEventCompleted       BookingEventType = "booking_completed"
	BookingEventCancelled       BookingEventType = "booking_cancelled"
	BookingEventPaymentCreated  BookingEventType = "payment_created"
	BookingEventPaymentChanged  BookingEventType = "payment_status_changed"
	BookingEventProofUploaded   BookingEventType = "proof_uploaded"
	BookingEventMirrorFailed    BookingEventType = "payment_mirror_failed"
	BookingEventLinkFailed      BookingEventType = "payment_link_failed"
)

// BookingEventSource identifies where the event originated
type BookingEventSource string

const (
	BookingSourceUser   BookingEventSource = "user"
	BookingSourceSystem BookingEventSource = "system"
)

// BookingAudit is an append-only record of a booking lifecycle event.
// Audit writes are best-effort: a failed write is logged, never surfaced
// to the user-facing operation.
type BookingAudit struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookingID string    `json:"booking_id" db:"booking_id"`
	PaymentID *string   `json:"payment_id,omitempty" db:"payment_id"`

	EventType   BookingEventType   `json:"event_type" db:"event_type"`
	EventSource BookingEventSource `json:"event_source" db:"event_source"`

	FromStatus *string `json:"from_status,omitempty" db:"from_status"`
	ToStatus   *string `json:"to_status,omitempty" db:"to_status"`

	// PaymentStatusSnapshot records what the linked payment reported at
	// the time of the event, for later reconciliation.
	PaymentStatusSnapshot *string `json:"payment_status_snapshot,omitempty" db:"payment_status_snapshot"`

	Note *string `json:"note,omitempty" db:"note"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
