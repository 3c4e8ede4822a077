package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

const paymentColumns = `id, booking_id, amount, status,
	payment_method, payment_gateway, payment_gateway_reference,
	payment_details, created_at, updated_at`

// PaymentRepository handles database operations for the payments table
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment row
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (
			id, booking_id, amount, status,
			payment_method, payment_gateway, payment_gateway_reference,
			payment_details
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING created_at, updated_at
	`

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	err := r.db.QueryRowContext(
		ctx, query,
		payment.ID, payment.BookingID, payment.Amount, payment.Status,
		payment.PaymentMethod, payment.PaymentGateway, payment.PaymentGatewayReference,
		payment.PaymentDetails,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		return &models.TransientError{Op: "create payment", Err: err}
	}

	return nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)

	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, query, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "payment", ID: paymentID}
		}
		return nil, &models.TransientError{Op: "get payment", Err: err}
	}

	return &payment, nil
}

// GetByBookingID retrieves the payment linked to a booking. Returns nil
// when no payment row exists yet; a booking normally has exactly one.
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM payments
		WHERE booking_id = $1
		ORDER BY created_at
		LIMIT 1`, paymentColumns)

	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, query, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &models.TransientError{Op: "get payment by booking", Err: err}
	}

	return &payment, nil
}

// TransitionStatus performs a conditional status transition. The expected
// prior states are checked inside the statement itself, so a stale
// in-memory copy cannot drive an illegal edge. The details argument is
// merged into payment_details; existing keys survive unless overwritten.
// Returns the updated payment, or zero rows via ErrNoRows mapping when
// the row was not in any of the expected states.
func (r *PaymentRepository) TransitionStatus(ctx context.Context, paymentID string, from []models.PaymentStatus, to models.PaymentStatus, details models.PaymentDetails) (*models.Payment, int64, error) {
	expected := make([]string, len(from))
	for i, s := range from {
		expected[i] = string(s)
	}

	query := fmt.Sprintf(`
		UPDATE payments
		SET status = $2,
			payment_details = COALESCE(payment_details, '{}'::jsonb) || COALESCE($3, '{}'::jsonb),
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
		RETURNING %s`, paymentColumns)

	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, query, paymentID, to, details, pq.Array(expected))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, &models.TransientError{Op: "transition payment", Err: err}
	}

	return &payment, 1, nil
}
