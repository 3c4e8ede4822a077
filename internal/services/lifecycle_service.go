package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

// LifecycleService is the only component that touches bookings and
// payments in one logical operation. It creates the pair, keeps the
// booking's cached payment_status refreshed, and records the audit
// trail. The mirror write and the payment write are not atomic; the
// Payment row is the source of truth whenever both are available.
type LifecycleService struct {
	ledger   *BookingService
	tracker  *PaymentService
	bookings BookingStore
	payments PaymentStore
	audits   AuditStore
	logger   *logrus.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	ledger *BookingService,
	tracker *PaymentService,
	bookings BookingStore,
	payments PaymentStore,
	audits AuditStore,
	logger *logrus.Logger,
) *LifecycleService {
	return &LifecycleService{
		ledger:   ledger,
		tracker:  tracker,
		bookings: bookings,
		payments: payments,
		audits:   audits,
		logger:   logger,
	}
}

// PlaceBooking runs the full creation flow: booking row, payment row,
// cross-link. A failed link write is logged and audited but does not
// fail the request; readers resolve payment state through the Payment.
func (s *LifecycleService) PlaceBooking(ctx context.Context, userID string, req *models.CreateBookingRequest, info models.GatewayInfo) (*models.Booking, *models.Payment, error) {
	booking, err := s.ledger.CreateBooking(ctx, userID, req)
	if err != nil {
		return nil, nil, err
	}
	s.audit(ctx, booking.ID, nil, models.BookingEventCreated, models.BookingSourceUser, nil, strPtr(string(booking.Status)), nil, nil)

	payment, err := s.tracker.CreatePayment(ctx, booking.ID, booking.TotalPrice, info)
	if err != nil {
		// The booking exists without a payment row; the invoice path
		// falls back to a synthetic pending payment until one appears.
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("payment creation failed after booking creation")
		return booking, nil, err
	}
	s.audit(ctx, booking.ID, &payment.ID, models.BookingEventPaymentCreated, models.BookingSourceSystem, nil, strPtr(string(payment.Status)), nil, nil)

	rows, err := s.bookings.SetPaymentLink(ctx, booking.ID, payment.ID)
	if err != nil || rows == 0 {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"payment_id": payment.ID,
		}).Warn("payment link write failed; payment remains resolvable by booking_id")
		s.audit(ctx, booking.ID, &payment.ID, models.BookingEventLinkFailed, models.BookingSourceSystem, nil, nil, nil, nil)
	} else {
		booking.PaymentID = &payment.ID
	}

	return booking, payment, nil
}

// CancelBooking cancels the booking. Cancellation and payment state are
// decoupled on purpose: an in-flight payment is left exactly as it is,
// and its status at cancel time is recorded for reconciliation.
func (s *LifecycleService) CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	before, err := s.ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.ledger.CancelBooking(ctx, bookingID, reason)
	if err != nil {
		return nil, err
	}

	var snapshot *string
	var paymentID *string
	if payment, perr := s.payments.GetByBookingID(ctx, bookingID); perr == nil && payment != nil {
		snapshot = strPtr(string(payment.Status))
		paymentID = &payment.ID
	}
	s.audit(ctx, bookingID, paymentID, models.BookingEventCancelled, models.BookingSourceUser,
		strPtr(string(before.Status)), strPtr(string(models.BookingStatusCancelled)), snapshot, &reason)

	return booking, nil
}

// UploadPaymentProof records a manually uploaded proof of payment: the
// payment moves to processing, the proof pointer is stamped on the
// booking and the cached payment_status is refreshed.
func (s *LifecycleService) UploadPaymentProof(ctx context.Context, bookingID, proofURL string) (*models.Booking, *models.Payment, error) {
	payment, err := s.resolvePayment(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.tracker.MarkProcessing(ctx, payment.ID, proofURL)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	booking, err := s.ledger.UpdateBooking(ctx, bookingID, &models.BookingUpdate{
		PaymentProofURL:        &proofURL,
		PaymentProofUploadedAt: &now,
	})
	if err != nil {
		return nil, nil, err
	}

	booking = s.mirror(ctx, booking, updated.Status)
	s.audit(ctx, bookingID, &updated.ID, models.BookingEventProofUploaded, models.BookingSourceUser,
		nil, strPtr(string(updated.Status)), nil, &proofURL)

	return booking, updated, nil
}

// CompletePayment settles the booking's payment (the portal's "simulate
// payment" action also lands here), mirrors the status and confirms a
// still-pending booking.
func (s *LifecycleService) CompletePayment(ctx context.Context, bookingID string) (*models.Booking, *models.Payment, error) {
	payment, err := s.resolvePayment(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.tracker.MarkCompleted(ctx, payment.ID)
	if err != nil {
		return nil, nil, err
	}
	s.audit(ctx, bookingID, &updated.ID, models.BookingEventPaymentChanged, models.BookingSourceSystem,
		strPtr(string(payment.Status)), strPtr(string(updated.Status)), nil, nil)

	booking, err := s.ledger.ConfirmBooking(ctx, bookingID)
	if err != nil {
		return nil, updated, err
	}
	s.audit(ctx, bookingID, &updated.ID, models.BookingEventConfirmed, models.BookingSourceSystem,
		nil, strPtr(string(booking.Status)), nil, nil)

	booking = s.mirror(ctx, booking, updated.Status)
	return booking, updated, nil
}

// FailPayment marks the booking's payment failed and mirrors the status.
func (s *LifecycleService) FailPayment(ctx context.Context, bookingID, reason string) (*models.Booking, *models.Payment, error) {
	return s.paymentTransition(ctx, bookingID, func(paymentID string) (*models.Payment, error) {
		return s.tracker.MarkFailed(ctx, paymentID, reason)
	})
}

// RefundPayment marks the booking's completed payment refunded and
// mirrors the status. The booking itself is not touched: refund policy
// on cancelled bookings is a product decision this core does not make.
func (s *LifecycleService) RefundPayment(ctx context.Context, bookingID string) (*models.Booking, *models.Payment, error) {
	return s.paymentTransition(ctx, bookingID, func(paymentID string) (*models.Payment, error) {
		return s.tracker.MarkRefunded(ctx, paymentID)
	})
}

// ResolvePaymentStatus returns the authoritative payment status: the
// Payment row when one exists, the booking's cached copy otherwise.
func (s *LifecycleService) ResolvePaymentStatus(booking *models.Booking, payment *models.Payment) models.PaymentStatus {
	if payment != nil {
		return payment.Status
	}
	return booking.PaymentStatus
}

func (s *LifecycleService) paymentTransition(ctx context.Context, bookingID string, apply func(paymentID string) (*models.Payment, error)) (*models.Booking, *models.Payment, error) {
	payment, err := s.resolvePayment(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	updated, err := apply(payment.ID)
	if err != nil {
		return nil, nil, err
	}
	s.audit(ctx, bookingID, &updated.ID, models.BookingEventPaymentChanged, models.BookingSourceSystem,
		strPtr(string(payment.Status)), strPtr(string(updated.Status)), nil, nil)

	booking, err := s.ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, updated, err
	}
	booking = s.mirror(ctx, booking, updated.Status)

	return booking, updated, nil
}

// resolvePayment finds the payment for a booking: through the link when
// set, by booking_id otherwise (the link write is best-effort).
func (s *LifecycleService) resolvePayment(ctx context.Context, bookingID string) (*models.Payment, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentID != nil && *booking.PaymentID != "" {
		payment, err := s.payments.GetByID(ctx, *booking.PaymentID)
		if err == nil {
			return payment, nil
		}
	}

	payment, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, &models.NotFoundError{Entity: "payment for booking", ID: bookingID}
	}

	return payment, nil
}

// mirror refreshes the booking's cached payment_status. Failure is
// logged and audited, never surfaced: the Payment row already carries
// the true state and every read path prefers it.
func (s *LifecycleService) mirror(ctx context.Context, booking *models.Booking, status models.PaymentStatus) *models.Booking {
	rows, err := s.bookings.MirrorPaymentStatus(ctx, booking.ID, status)
	if err != nil || rows == 0 {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id":     booking.ID,
			"payment_status": status,
		}).Warn("payment status mirror write failed; booking copy is stale")
		s.audit(ctx, booking.ID, booking.PaymentID, models.BookingEventMirrorFailed, models.BookingSourceSystem,
			strPtr(string(booking.PaymentStatus)), strPtr(string(status)), nil, nil)
		return booking
	}

	booking.PaymentStatus = status
	return booking
}

func (s *LifecycleService) audit(ctx context.Context, bookingID string, paymentID *string, event models.BookingEventType, source models.BookingEventSource, from, to, snapshot, note *string) {
	entry := &models.BookingAudit{
		BookingID:             bookingID,
		PaymentID:             paymentID,
		EventType:             event,
		EventSource:           source,
		FromStatus:            from,
		ToStatus:              to,
		PaymentStatusSnapshot: snapshot,
		Note:                  note,
	}
	if err := s.audits.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": bookingID,
			"event_type": event,
		}).Warn("audit write failed")
	}
}

func strPtr(s string) *string {
	return &s
}
