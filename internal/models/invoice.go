package models

import "time"

// CatalogSummary is the denormalized name/location pair read from the
// destinations or events tables for display.
type CatalogSummary struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Location *string `json:"location,omitempty" db:"location"`
}

// InvoiceView is the read-only billing projection of a booking and its
// payment. It is assembled on demand and never persisted.
type InvoiceView struct {
	BookingID      string     `json:"booking_id"`
	BookingDate    time.Time  `json:"booking_date"`
	PreferredDate  *time.Time `json:"preferred_date,omitempty"`
	NumberOfPeople int        `json:"number_of_people"`
	TotalPrice     float64    `json:"total_price"`

	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`

	BookingStatus BookingStatus `json:"booking_status"`

	// PaymentStatus is resolved from the Payment row when one is linked;
	// the booking's cached copy is advisory only.
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod string        `json:"payment_method"`
	PaymentID     *string       `json:"payment_id,omitempty"`

	ItemType     string  `json:"item_type"` // "destination", "event" or "unknown"
	ItemName     string  `json:"item_name"`
	ItemLocation *string `json:"item_location,omitempty"`

	IssuedAt time.Time `json:"issued_at"`
}
