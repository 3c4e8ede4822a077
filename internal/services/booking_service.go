package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/metrics"
	"github.com/ceylontrails/tourism-backend/internal/models"
)

// BookingService is the booking ledger: it owns booking creation with
// duplicate suppression, generic field merges and the booking status
// state machine. Cross-entity operations live in LifecycleService.
type BookingService struct {
	store  BookingStore
	logger *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(store BookingStore, logger *logrus.Logger) *BookingService {
	return &BookingService{
		store:  store,
		logger: logger,
	}
}

// CreateBooking validates the request, runs the duplicate guard and
// persists the booking with status=pending, payment_status=pending.
// The supplied total_price is stored as-is and never recomputed.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, req *models.CreateBookingRequest) (*models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &models.ValidationError{Field: "user_id", Message: "is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Fast-path duplicate guard. The partial unique index on bookings is
	// the authoritative check; this read just produces a friendlier error
	// before the insert.
	existing, err := s.store.FindPendingForTarget(ctx, userID, req.DestinationID, req.EventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.IncDuplicateGuard()
		return nil, &models.DuplicateBookingError{
			UserID:   userID,
			TargetID: targetLabel(req.DestinationID, req.EventID),
		}
	}

	booking := &models.Booking{
		UserID:         &userID,
		DestinationID:  req.DestinationID,
		EventID:        req.EventID,
		NumberOfPeople: req.NumberOfPeople,
		TotalPrice:     req.TotalPrice,
		BookingDate:    time.Now(),
		PreferredDate:  req.PreferredDate,
		ContactName:    strings.TrimSpace(req.ContactName),
		ContactEmail:   strings.TrimSpace(req.ContactEmail),
		ContactPhone:   strings.TrimSpace(req.ContactPhone),
		Status:         models.BookingStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
		BookingDetails: req.BookingDetails,
	}

	if err := s.store.Create(ctx, booking); err != nil {
		var dup *models.DuplicateBookingError
		if errors.As(err, &dup) {
			metrics.IncDuplicateGuard()
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"user_id":     userID,
		"total_price": booking.TotalPrice,
	}).Info("booking created")

	return booking, nil
}

// GetBooking fetches a booking by id
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.store.GetByID(ctx, bookingID)
}

// ListUserBookings returns a user's bookings, newest first
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.store.GetByUserID(ctx, userID)
}

// UpdateBooking applies a partial field merge. A status carried in the
// update is held to the same state machine as the dedicated transition
// operations: terminal bookings and illegal edges reject with
// InvalidTransitionError, and the store refuses the write if the row
// reached a terminal state after our read.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID string, update *models.BookingUpdate) (*models.Booking, error) {
	if update == nil || update.IsEmpty() {
		return s.store.GetByID(ctx, bookingID)
	}

	if update.Status != nil {
		current, err := s.store.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if *update.Status == current.Status {
			// Writing the status it already has is a no-op; drop the
			// column so the store-side terminal guard cannot refuse an
			// otherwise valid merge.
			trimmed := *update
			trimmed.Status = nil
			update = &trimmed
			if update.IsEmpty() {
				return current, nil
			}
		} else if !current.Status.CanTransitionTo(*update.Status) {
			return nil, &models.InvalidTransitionError{
				Entity: "booking",
				From:   string(current.Status),
				To:     string(*update.Status),
			}
		}
	}

	booking, err := s.store.UpdateFields(ctx, bookingID, update)
	if err != nil {
		var notFound *models.NotFoundError
		if update.Status != nil && errors.As(err, &notFound) {
			// The row existed at our read; the terminal guard saw a
			// state that moved underneath us.
			return nil, s.concurrentOrGone(ctx, bookingID)
		}
		return nil, err
	}
	return booking, nil
}

// CancelBooking cancels a booking still in pending or confirmed state.
// Cancellation is a status change, never a deletion, and terminal states
// reject it with InvalidTransitionError.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &models.ValidationError{Field: "reason", Message: "is required"}
	}

	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.CanBeCancelled() {
		return nil, &models.InvalidTransitionError{
			Entity: "booking",
			From:   string(booking.Status),
			To:     string(models.BookingStatusCancelled),
		}
	}

	rows, err := s.store.Cancel(ctx, bookingID, reason)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// The state moved between our read and the conditional write.
		return nil, s.concurrentOrGone(ctx, bookingID)
	}

	metrics.IncBookingCancelled()
	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"reason":     reason,
	}).Info("booking cancelled")

	return s.store.GetByID(ctx, bookingID)
}

// ConfirmBooking moves a pending booking to confirmed. An already
// confirmed booking is returned unchanged; terminal states reject.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	rows, err := s.store.Confirm(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		booking, err := s.store.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.Status == models.BookingStatusConfirmed {
			return booking, nil
		}
		return nil, &models.InvalidTransitionError{
			Entity: "booking",
			From:   string(booking.Status),
			To:     string(models.BookingStatusConfirmed),
		}
	}

	return s.store.GetByID(ctx, bookingID)
}

// CompleteBooking moves a confirmed booking to the terminal completed
// state.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	rows, err := s.store.Complete(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		booking, err := s.store.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return nil, &models.InvalidTransitionError{
			Entity: "booking",
			From:   string(booking.Status),
			To:     string(models.BookingStatusCompleted),
		}
	}

	return s.store.GetByID(ctx, bookingID)
}

func (s *BookingService) concurrentOrGone(ctx context.Context, bookingID string) error {
	if _, err := s.store.GetByID(ctx, bookingID); err != nil {
		return err
	}
	return &models.ConcurrentModificationError{Entity: "booking", ID: bookingID}
}

func targetLabel(destinationID, eventID *string) string {
	if destinationID != nil && *destinationID != "" {
		return "destination " + *destinationID
	}
	if eventID != nil && *eventID != "" {
		return "event " + *eventID
	}
	return "unknown target"
}
