package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
// Matches PostgreSQL ENUM: booking_status
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus represents the settlement state of a booking's payment
// Matches PostgreSQL ENUM: payment_status
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// bookingTransitions holds the legal edges of the booking state machine.
// cancelled and completed are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// paymentTransitions holds the legal edges of the payment state machine.
// No edge ever goes backward.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusProcessing: {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted:  {PaymentStatusRefunded},
}

// CanTransitionTo reports whether the booking status may move to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further booking transitions are allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// CanTransitionTo reports whether the payment status may move to target.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further payment transitions are allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// BookingDetails is the denormalized display bag stored as JSONB.
// The lifecycle logic never interprets its contents, only stores and
// echoes them back.
type BookingDetails map[string]interface{}

// Value implements the driver.Valuer interface
func (d BookingDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface
func (d *BookingDetails) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("booking_details: expected []byte from database")
	}
	return json.Unmarshal(b, d)
}

// Booking represents a user's request to reserve a destination visit or
// an event ticket for a date and party size.
type Booking struct {
	ID            string  `json:"id" db:"id"`
	UserID        *string `json:"user_id,omitempty" db:"user_id"`
	DestinationID *string `json:"destination_id,omitempty" db:"destination_id"`
	EventID       *string `json:"event_id,omitempty" db:"event_id"`

	NumberOfPeople int     `json:"number_of_people" db:"number_of_people"`
	TotalPrice     float64 `json:"total_price" db:"total_price"`

	BookingDate   time.Time  `json:"booking_date" db:"booking_date"`
	PreferredDate *time.Time `json:"preferred_date,omitempty" db:"preferred_date"`

	ContactName  string `json:"contact_name" db:"contact_name"`
	ContactEmail string `json:"contact_email" db:"contact_email"`
	ContactPhone string `json:"contact_phone" db:"contact_phone"`

	Status        BookingStatus `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentID     *string       `json:"payment_id,omitempty" db:"payment_id"`

	PaymentProofURL        *string    `json:"payment_proof_url,omitempty" db:"payment_proof_url"`
	PaymentProofUploadedAt *time.Time `json:"payment_proof_uploaded_at,omitempty" db:"payment_proof_uploaded_at"`

	ConfirmationDate   *time.Time `json:"confirmation_date,omitempty" db:"confirmation_date"`
	CancellationDate   *time.Time `json:"cancellation_date,omitempty" db:"cancellation_date"`
	CancellationReason *string    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CompletionDate     *time.Time `json:"completion_date,omitempty" db:"completion_date"`

	BookingDetails BookingDetails `json:"booking_details,omitempty" db:"booking_details"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanBeCancelled reports whether the booking is still in a cancellable state.
func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// IsDestinationBooking reports whether the booking targets a destination
// rather than an event. Bookings with neither reference are legacy rows
// that must be tolerated on reads but are never created here.
func (b *Booking) IsDestinationBooking() bool {
	return b.DestinationID != nil && *b.DestinationID != ""
}

// IsEventBooking reports whether the booking targets an event.
func (b *Booking) IsEventBooking() bool {
	return b.EventID != nil && *b.EventID != ""
}

// CreateBookingRequest represents the request to create a booking.
// total_price arrives already computed; this core never recomputes it.
type CreateBookingRequest struct {
	DestinationID  *string        `json:"destination_id,omitempty"`
	EventID        *string        `json:"event_id,omitempty"`
	NumberOfPeople int            `json:"number_of_people" binding:"required,min=1"`
	TotalPrice     float64        `json:"total_price"`
	PreferredDate  *time.Time     `json:"preferred_date,omitempty"`
	ContactName    string         `json:"contact_name" binding:"required"`
	ContactEmail   string         `json:"contact_email" binding:"required"`
	ContactPhone   string         `json:"contact_phone" binding:"required"`
	BookingDetails BookingDetails `json:"booking_details,omitempty"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	hasDestination := r.DestinationID != nil && *r.DestinationID != ""
	hasEvent := r.EventID != nil && *r.EventID != ""
	if !hasDestination && !hasEvent {
		return &ValidationError{Field: "destination_id", Message: "either destination_id or event_id is required"}
	}
	if hasDestination && hasEvent {
		return &ValidationError{Field: "destination_id", Message: "destination_id and event_id are mutually exclusive"}
	}
	if r.NumberOfPeople < 1 {
		return &ValidationError{Field: "number_of_people", Message: "must be at least 1"}
	}
	if r.TotalPrice < 0 {
		return &ValidationError{Field: "total_price", Message: "must not be negative"}
	}
	if strings.TrimSpace(r.ContactName) == "" {
		return &ValidationError{Field: "contact_name", Message: "is required"}
	}
	email := strings.TrimSpace(r.ContactEmail)
	if email == "" {
		return &ValidationError{Field: "contact_email", Message: "is required"}
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Field: "contact_email", Message: fmt.Sprintf("%q is not a valid email address", email)}
	}
	if strings.TrimSpace(r.ContactPhone) == "" {
		return &ValidationError{Field: "contact_phone", Message: "is required"}
	}
	return nil
}

// CancelBookingRequest represents the request to cancel a booking
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BookingUpdate carries a partial field merge for an existing booking.
// Nil pointers leave the stored value untouched. total_price is absent
// on purpose: it is fixed at creation and never rewritten.
type BookingUpdate struct {
	Status                 *BookingStatus
	PaymentStatus          *PaymentStatus
	PaymentID              *string
	PaymentProofURL        *string
	PaymentProofUploadedAt *time.Time
	ConfirmationDate       *time.Time
	CancellationDate       *time.Time
	CancellationReason     *string
	CompletionDate         *time.Time
	PreferredDate          *time.Time
	ContactName            *string
	ContactEmail           *string
	ContactPhone           *string
	BookingDetails         BookingDetails
}

// IsEmpty reports whether the update carries no fields at all.
func (u *BookingUpdate) IsEmpty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.PaymentID == nil &&
		u.PaymentProofURL == nil && u.PaymentProofUploadedAt == nil &&
		u.ConfirmationDate == nil && u.CancellationDate == nil &&
		u.CancellationReason == nil && u.CompletionDate == nil &&
		u.PreferredDate == nil && u.ContactName == nil &&
		u.ContactEmail == nil && u.ContactPhone == nil &&
		u.BookingDetails == nil
}
