package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

// bookingColumns is the full column list scanned into models.Booking.
const bookingColumns = `id, user_id, destination_id, event_id,
	number_of_people, total_price, booking_date, preferred_date,
	contact_name, contact_email, contact_phone,
	status, payment_status, payment_id,
	payment_proof_url, payment_proof_uploaded_at,
	confirmation_date, cancellation_date, cancellation_reason, completion_date,
	booking_details, created_at, updated_at`

// uniqPendingBookingConstraint is the partial unique index backing the
// duplicate-booking guard at the store.
const uniqPendingBookingConstraint = "uniq_pending_booking"

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking row. A unique violation on the pending
// partial index surfaces as DuplicateBookingError.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, destination_id, event_id,
			number_of_people, total_price, booking_date, preferred_date,
			contact_name, contact_email, contact_phone,
			status, payment_status, booking_details
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRowContext(
		ctx, query,
		booking.ID, booking.UserID, booking.DestinationID, booking.EventID,
		booking.NumberOfPeople, booking.TotalPrice, booking.BookingDate, booking.PreferredDate,
		booking.ContactName, booking.ContactEmail, booking.ContactPhone,
		booking.Status, booking.PaymentStatus, booking.BookingDetails,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, uniqPendingBookingConstraint) {
			userID := ""
			if booking.UserID != nil {
				userID = *booking.UserID
			}
			return &models.DuplicateBookingError{UserID: userID, TargetID: bookingTarget(booking.DestinationID, booking.EventID)}
		}
		return &models.TransientError{Op: "create booking", Err: err}
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "booking", ID: bookingID}
		}
		return nil, &models.TransientError{Op: "get booking", Err: err}
	}

	return &booking, nil
}

// GetByUserID retrieves all bookings for a user, newest first
func (r *BookingRepository) GetByUserID(ctx context.Context, userID string) ([]models.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC`, bookingColumns)

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, &models.TransientError{Op: "list bookings", Err: err}
	}

	return bookings, nil
}

// FindPendingForTarget looks for an unpaid booking by the same user for
// the same destination or event. Returns nil when none exists. This is
// the fast-path duplicate guard; the partial unique index is the
// authoritative one.
func (r *BookingRepository) FindPendingForTarget(ctx context.Context, userID string, destinationID, eventID *string) (*models.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE user_id = $1
		  AND payment_status = 'pending'
		  AND status <> 'cancelled'
		  AND (
			($2::text IS NOT NULL AND destination_id = $2)
			OR ($3::text IS NOT NULL AND event_id = $3)
		  )
		LIMIT 1`, bookingColumns)

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, userID, destinationID, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &models.TransientError{Op: "duplicate booking check", Err: err}
	}

	return &booking, nil
}

// UpdateFields applies a partial field merge and returns the updated row.
// A status field is only written while the row is still in a live state;
// cancelled and completed rows refuse it at the statement level, so a
// stale caller cannot revive a terminal booking.
func (r *BookingRepository) UpdateFields(ctx context.Context, bookingID string, update *models.BookingUpdate) (*models.Booking, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{bookingID}
	guard := ""

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		add("status", *update.Status)
		guard = " AND status NOT IN ('cancelled', 'completed')"
	}
	if update.PaymentStatus != nil {
		add("payment_status", *update.PaymentStatus)
	}
	if update.PaymentID != nil {
		add("payment_id", *update.PaymentID)
	}
	if update.PaymentProofURL != nil {
		add("payment_proof_url", *update.PaymentProofURL)
	}
	if update.PaymentProofUploadedAt != nil {
		add("payment_proof_uploaded_at", *update.PaymentProofUploadedAt)
	}
	if update.ConfirmationDate != nil {
		add("confirmation_date", *update.ConfirmationDate)
	}
	if update.CancellationDate != nil {
		add("cancellation_date", *update.CancellationDate)
	}
	if update.CancellationReason != nil {
		add("cancellation_reason", *update.CancellationReason)
	}
	if update.CompletionDate != nil {
		add("completion_date", *update.CompletionDate)
	}
	if update.PreferredDate != nil {
		add("preferred_date", *update.PreferredDate)
	}
	if update.ContactName != nil {
		add("contact_name", *update.ContactName)
	}
	if update.ContactEmail != nil {
		add("contact_email", *update.ContactEmail)
	}
	if update.ContactPhone != nil {
		add("contact_phone", *update.ContactPhone)
	}
	if update.BookingDetails != nil {
		add("booking_details", update.BookingDetails)
	}

	query := fmt.Sprintf(`
		UPDATE bookings
		SET %s
		WHERE id = $1%s
		RETURNING %s`, strings.Join(set, ", "), guard, bookingColumns)

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "booking", ID: bookingID}
		}
		return nil, &models.TransientError{Op: "update booking", Err: err}
	}

	return &booking, nil
}

// Confirm moves a pending booking to confirmed and stamps the
// confirmation date. Returns the number of rows affected; zero means the
// booking was not in the expected prior state (or does not exist).
func (r *BookingRepository) Confirm(ctx context.Context, bookingID string) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'confirmed', confirmation_date = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	return r.exec(ctx, "confirm booking", query, bookingID)
}

// Complete moves a confirmed booking to completed.
func (r *BookingRepository) Complete(ctx context.Context, bookingID string) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', completion_date = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'confirmed'
	`
	return r.exec(ctx, "complete booking", query, bookingID)
}

// Cancel cancels a booking still in a cancellable state. The state check
// runs inside the same statement, so stale in-memory reads cannot cancel
// a completed booking.
func (r *BookingRepository) Cancel(ctx context.Context, bookingID string, reason string) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled',
			cancellation_reason = $2,
			cancellation_date = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`
	return r.exec(ctx, "cancel booking", query, bookingID, reason)
}

// SetPaymentLink records the payment id on a booking after payment
// creation.
func (r *BookingRepository) SetPaymentLink(ctx context.Context, bookingID, paymentID string) (int64, error) {
	query := `
		UPDATE bookings
		SET payment_id = $2, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, "link payment", query, bookingID, paymentID)
}

// MirrorPaymentStatus refreshes the booking's cached copy of the payment
// status. The Payment row remains the source of truth for readers.
func (r *BookingRepository) MirrorPaymentStatus(ctx context.Context, bookingID string, status models.PaymentStatus) (int64, error) {
	query := `
		UPDATE bookings
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, "mirror payment status", query, bookingID, status)
}

func (r *BookingRepository) exec(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &models.TransientError{Op: op, Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, &models.TransientError{Op: op, Err: err}
	}

	return rows, nil
}

// isUniqueViolation reports whether err is a Postgres unique violation,
// optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func bookingTarget(destinationID, eventID *string) string {
	if destinationID != nil && *destinationID != "" {
		return "destination " + *destinationID
	}
	if eventID != nil && *eventID != "" {
		return "event " + *eventID
	}
	return "unknown target"
}
