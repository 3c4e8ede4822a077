package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/metrics"
	"github.com/ceylontrails/tourism-backend/internal/models"
)

// PaymentService is the payment tracker: one payment per booking, the
// payment status state machine, proof metadata accumulation. Every
// transition is validated against the persisted state inside the write
// itself, so a stale read cannot drive an illegal edge.
type PaymentService struct {
	payments PaymentStore
	bookings BookingStore
	logger   *logrus.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(payments PaymentStore, bookings BookingStore, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		logger:   logger,
	}
}

// CreatePayment creates the payment row for a booking. The amount must
// equal the booking's total_price; a mismatch is a caller error.
func (s *PaymentService) CreatePayment(ctx context.Context, bookingID string, amount float64, info models.GatewayInfo) (*models.Payment, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if amount != booking.TotalPrice {
		return nil, &models.InvariantViolationError{
			Message: fmt.Sprintf("payment amount %.2f does not match booking total %.2f", amount, booking.TotalPrice),
		}
	}

	method := strings.TrimSpace(info.Method)
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	payment := &models.Payment{
		BookingID:               bookingID,
		Amount:                  amount,
		Status:                  models.PaymentStatusPending,
		PaymentMethod:           method,
		PaymentGateway:          info.Gateway,
		PaymentGatewayReference: info.GatewayReference,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"booking_id": bookingID,
		"amount":     amount,
	}).Info("payment created")

	return payment, nil
}

// GetPayment fetches a payment by id
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return s.payments.GetByID(ctx, paymentID)
}

// GetPaymentForBooking returns the payment linked to a booking, or nil
// when none exists yet.
func (s *PaymentService) GetPaymentForBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	return s.payments.GetByBookingID(ctx, bookingID)
}

// MarkProcessing records an uploaded proof of payment and moves the
// payment from pending to processing. Proof metadata merges into
// payment_details; earlier keys survive.
func (s *PaymentService) MarkProcessing(ctx context.Context, paymentID, proofURL string) (*models.Payment, error) {
	if strings.TrimSpace(proofURL) == "" {
		return nil, &models.ValidationError{Field: "proof_url", Message: "is required"}
	}

	details := models.PaymentDetails{
		"proof_url":         proofURL,
		"proof_uploaded_at": time.Now().Format(time.RFC3339),
	}
	return s.transition(ctx, paymentID, models.PaymentStatusProcessing, details)
}

// MarkCompleted settles the payment, from pending or processing.
func (s *PaymentService) MarkCompleted(ctx context.Context, paymentID string) (*models.Payment, error) {
	details := models.PaymentDetails{
		"completed_at": time.Now().Format(time.RFC3339),
	}
	return s.transition(ctx, paymentID, models.PaymentStatusCompleted, details)
}

// MarkFailed records a failed settlement, from pending or processing.
func (s *PaymentService) MarkFailed(ctx context.Context, paymentID, reason string) (*models.Payment, error) {
	details := models.PaymentDetails{
		"failed_at": time.Now().Format(time.RFC3339),
	}
	if strings.TrimSpace(reason) != "" {
		details["failure_reason"] = reason
	}
	return s.transition(ctx, paymentID, models.PaymentStatusFailed, details)
}

// MarkRefunded records a refund. Only a completed payment can be
// refunded.
func (s *PaymentService) MarkRefunded(ctx context.Context, paymentID string) (*models.Payment, error) {
	details := models.PaymentDetails{
		"refunded_at": time.Now().Format(time.RFC3339),
	}
	return s.transition(ctx, paymentID, models.PaymentStatusRefunded, details)
}

// transition re-reads the persisted status, validates the edge, then
// writes conditionally on the status it just observed. Zero rows on the
// conditional write means another request moved the payment in between.
func (s *PaymentService) transition(ctx context.Context, paymentID string, to models.PaymentStatus, details models.PaymentDetails) (*models.Payment, error) {
	current, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(to) {
		return nil, &models.InvalidTransitionError{
			Entity: "payment",
			From:   string(current.Status),
			To:     string(to),
		}
	}

	updated, rows, err := s.payments.TransitionStatus(ctx, paymentID, []models.PaymentStatus{current.Status}, to, details)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, &models.ConcurrentModificationError{Entity: "payment", ID: paymentID}
	}

	metrics.IncPaymentTransition(string(current.Status), string(to))
	s.logger.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"from":       current.Status,
		"to":         to,
	}).Info("payment status changed")

	return updated, nil
}
