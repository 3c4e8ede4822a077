package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates the number has too few or too many digits
	ErrInvalidLength = errors.New("phone number must have between 7 and 15 digits")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits and an optional leading +")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// phoneRegex matches an optional leading + followed by digits only
var phoneRegex = regexp.MustCompile(`^\+?\d+$`)

// PhoneValidator validates contact phone numbers. Bookings come from
// travellers worldwide, so it accepts any E.164-shaped number rather
// than one country's mobile plan.
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a contact phone number.
// Accepts formats like +94771234567, 0771234567, (033) 225-4789.
// Returns the sanitized number (digits with optional leading +) and an
// error if invalid.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	digits := strings.TrimPrefix(sanitized, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return "", ErrInvalidLength
	}

	return sanitized, nil
}

// Sanitize removes common separators from a phone number, keeping a
// single leading + if present
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = strings.TrimSpace(phone)

	hasPlus := strings.HasPrefix(phone, "+")

	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")

	if hasPlus {
		return "+" + phone
	}
	return phone
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}

// MustValidate validates and panics if invalid (use for testing only)
func (v *PhoneValidator) MustValidate(phone string) string {
	sanitized, err := v.Validate(phone)
	if err != nil {
		panic(fmt.Sprintf("invalid phone number %s: %v", phone, err))
	}
	return sanitized
}
