package services

import (
	"context"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

// BookingStore is the persistence surface the lifecycle services need
// for bookings. Implemented by database.BookingRepository.
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Booking, error)
	FindPendingForTarget(ctx context.Context, userID string, destinationID, eventID *string) (*models.Booking, error)
	UpdateFields(ctx context.Context, bookingID string, update *models.BookingUpdate) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID string) (int64, error)
	Complete(ctx context.Context, bookingID string) (int64, error)
	Cancel(ctx context.Context, bookingID string, reason string) (int64, error)
	SetPaymentLink(ctx context.Context, bookingID, paymentID string) (int64, error)
	MirrorPaymentStatus(ctx context.Context, bookingID string, status models.PaymentStatus) (int64, error)
}

// PaymentStore is the persistence surface for payments. Implemented by
// database.PaymentRepository.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, paymentID string) (*models.Payment, error)
	GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error)
	TransitionStatus(ctx context.Context, paymentID string, from []models.PaymentStatus, to models.PaymentStatus, details models.PaymentDetails) (*models.Payment, int64, error)
}

// ItineraryStore is the persistence surface for itineraries and their
// ordered destinations. Implemented by database.ItineraryRepository.
type ItineraryStore interface {
	Create(ctx context.Context, itinerary *models.Itinerary) error
	GetByID(ctx context.Context, itineraryID string) (*models.Itinerary, error)
	GetByShareCode(ctx context.Context, code string) (*models.Itinerary, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Itinerary, error)
	Update(ctx context.Context, itinerary *models.Itinerary) error
	Delete(ctx context.Context, itineraryID string) error
	AddDestination(ctx context.Context, dest *models.ItineraryDestination) error
	RemoveDestination(ctx context.Context, destinationRowID string) error
	ListDestinations(ctx context.Context, itineraryID string) ([]models.ItineraryDestination, error)
}

// CatalogStore is the read-only lookup surface into the destinations and
// events tables. Implemented by database.CatalogRepository.
type CatalogStore interface {
	GetDestination(ctx context.Context, destinationID string) (*models.CatalogSummary, error)
	GetEvent(ctx context.Context, eventID string) (*models.CatalogSummary, error)
}

// AuditStore records append-only lifecycle events. Implemented by
// database.BookingAuditRepository.
type AuditStore interface {
	Log(ctx context.Context, audit *models.BookingAudit) error
}

// ItineraryCache caches public share-code lookups. Implemented by
// cache.ItineraryCache; a nil cache disables caching.
type ItineraryCache interface {
	Get(ctx context.Context, code string) (*models.ItineraryWithDestinations, error)
	Set(ctx context.Context, code string, itinerary *models.ItineraryWithDestinations) error
	Invalidate(ctx context.Context, code string) error
}
