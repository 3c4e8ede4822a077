package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

// InvoiceService assembles the read-only billing projection. It performs
// no writes: the synthetic pending-payment placeholder it may return is
// never persisted.
type InvoiceService struct {
	bookings BookingStore
	payments PaymentStore
	catalog  CatalogStore
	logger   *logrus.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(bookings BookingStore, payments PaymentStore, catalog CatalogStore, logger *logrus.Logger) *InvoiceService {
	return &InvoiceService{
		bookings: bookings,
		payments: payments,
		catalog:  catalog,
		logger:   logger,
	}
}

// AssembleInvoice builds the invoice view for a booking. Payment state
// is resolved through the Payment row when one exists; the booking's
// cached payment_status is used only when no payment row is reachable.
func (s *InvoiceService) AssembleInvoice(ctx context.Context, bookingID string) (*models.InvoiceView, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	payment := s.findPayment(ctx, booking)
	if payment == nil {
		payment = models.SyntheticPayment(booking.ID, booking.TotalPrice)
		payment.Status = booking.PaymentStatus
	}

	itemType, name, location := s.describeItem(ctx, booking)

	var paymentID *string
	if payment.ID != "" {
		paymentID = &payment.ID
	}

	return &models.InvoiceView{
		BookingID:      booking.ID,
		BookingDate:    booking.BookingDate,
		PreferredDate:  booking.PreferredDate,
		NumberOfPeople: booking.NumberOfPeople,
		TotalPrice:     booking.TotalPrice,
		ContactName:    booking.ContactName,
		ContactEmail:   booking.ContactEmail,
		ContactPhone:   booking.ContactPhone,
		BookingStatus:  booking.Status,
		PaymentStatus:  payment.Status,
		PaymentMethod:  payment.PaymentMethod,
		PaymentID:      paymentID,
		ItemType:       itemType,
		ItemName:       name,
		ItemLocation:   location,
		IssuedAt:       time.Now(),
	}, nil
}

func (s *InvoiceService) findPayment(ctx context.Context, booking *models.Booking) *models.Payment {
	if booking.PaymentID != nil && *booking.PaymentID != "" {
		if payment, err := s.payments.GetByID(ctx, *booking.PaymentID); err == nil {
			return payment
		}
	}

	payment, err := s.payments.GetByBookingID(ctx, booking.ID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("payment lookup failed during invoice assembly")
		return nil
	}
	return payment
}

// describeItem resolves the booked item's display name and location,
// preferring the denormalized booking_details bag over a catalog
// lookup. Display resolution never fails the invoice.
func (s *InvoiceService) describeItem(ctx context.Context, booking *models.Booking) (itemType, name string, location *string) {
	itemType = "unknown"
	name = "Unknown"

	if booking.IsDestinationBooking() {
		itemType = "destination"
	} else if booking.IsEventBooking() {
		itemType = "event"
	}

	if n, ok := detailString(booking.BookingDetails, "name", "destination_name", "event_name", "title"); ok {
		name = n
	}
	if l, ok := detailString(booking.BookingDetails, "location", "destination_location", "event_location"); ok {
		location = &l
	}
	if name != "Unknown" && location != nil {
		return itemType, name, location
	}

	summary := s.lookupCatalog(ctx, booking)
	if summary != nil {
		if name == "Unknown" {
			name = summary.Name
		}
		if location == nil {
			location = summary.Location
		}
	}

	return itemType, name, location
}

func (s *InvoiceService) lookupCatalog(ctx context.Context, booking *models.Booking) *models.CatalogSummary {
	var summary *models.CatalogSummary
	var err error

	switch {
	case booking.IsDestinationBooking():
		summary, err = s.catalog.GetDestination(ctx, *booking.DestinationID)
	case booking.IsEventBooking():
		summary, err = s.catalog.GetEvent(ctx, *booking.EventID)
	default:
		return nil
	}

	if err != nil {
		var nf *models.NotFoundError
		if !errors.As(err, &nf) {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("catalog lookup failed during invoice assembly")
		}
		return nil
	}

	return summary
}

func detailString(details models.BookingDetails, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := details[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
