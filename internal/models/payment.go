package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// PaymentDetails is the JSONB bag on a payment row. It accumulates proof
// metadata and completion timestamps; updates merge into it rather than
// replacing it, so existing keys survive.
type PaymentDetails map[string]interface{}

// Value implements the driver.Valuer interface
func (d PaymentDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface
func (d *PaymentDetails) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("payment_details: expected []byte from database")
	}
	return json.Unmarshal(b, d)
}

// Payment tracks settlement of a booking's total price. The portal only
// records a pointer to an externally hosted payment page and a manually
// uploaded proof; no gateway API is called.
type Payment struct {
	ID        string        `json:"id" db:"id"`
	BookingID string        `json:"booking_id" db:"booking_id"`
	Amount    float64       `json:"amount" db:"amount"`
	Status    PaymentStatus `json:"status" db:"status"`

	PaymentMethod           string  `json:"payment_method" db:"payment_method"`
	PaymentGateway          *string `json:"payment_gateway,omitempty" db:"payment_gateway"`
	PaymentGatewayReference *string `json:"payment_gateway_reference,omitempty" db:"payment_gateway_reference"`

	PaymentDetails PaymentDetails `json:"payment_details,omitempty" db:"payment_details"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GatewayInfo carries the externally hosted payment page pointer recorded
// on payment creation.
type GatewayInfo struct {
	Method           string  `json:"payment_method"`
	Gateway          *string `json:"payment_gateway,omitempty"`
	GatewayReference *string `json:"payment_gateway_reference,omitempty"`
}

// DefaultPaymentMethod is used when the caller does not name one, and by
// the invoice projection's synthetic placeholder.
const DefaultPaymentMethod = "Online Payment"

// SyntheticPayment returns the read-side placeholder used when a booking
// has no payment row linked yet. It must never be persisted.
func SyntheticPayment(bookingID string, amount float64) *Payment {
	return &Payment{
		BookingID:     bookingID,
		Amount:        amount,
		Status:        PaymentStatusPending,
		PaymentMethod: DefaultPaymentMethod,
	}
}
