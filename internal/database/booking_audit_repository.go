package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

// BookingAuditRepository handles the append-only booking_audits table
type BookingAuditRepository struct {
	db     DB
	logger *logrus.Logger
}

// NewBookingAuditRepository creates a new booking audit repository
func NewBookingAuditRepository(db DB, logger *logrus.Logger) *BookingAuditRepository {
	return &BookingAuditRepository{
		db:     db,
		logger: logger,
	}
}

// Log creates a new booking audit entry. Audit rows are append-only and
// never updated or deleted.
func (r *BookingAuditRepository) Log(ctx context.Context, audit *models.BookingAudit) error {
	if audit == nil {
		return fmt.Errorf("audit entry cannot be nil")
	}

	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO booking_audits (
			id, booking_id, payment_id,
			event_type, event_source,
			from_status, to_status, payment_status_snapshot,
			note, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := r.db.ExecContext(ctx, query,
		audit.ID, audit.BookingID, audit.PaymentID,
		audit.EventType, audit.EventSource,
		audit.FromStatus, audit.ToStatus, audit.PaymentStatusSnapshot,
		audit.Note, audit.CreatedAt,
	)

	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"event_type": audit.EventType,
			"booking_id": audit.BookingID,
		}).Error("failed to write booking audit entry")
		return &models.TransientError{Op: "log booking audit", Err: err}
	}

	return nil
}

// GetByBookingID returns a booking's audit trail, oldest first
func (r *BookingAuditRepository) GetByBookingID(ctx context.Context, bookingID string) ([]models.BookingAudit, error) {
	query := `
		SELECT id, booking_id, payment_id,
			event_type, event_source,
			from_status, to_status, payment_status_snapshot,
			note, created_at
		FROM booking_audits
		WHERE booking_id = $1
		ORDER BY created_at
	`

	audits := []models.BookingAudit{}
	if err := r.db.SelectContext(ctx, &audits, query, bookingID); err != nil {
		return nil, &models.TransientError{Op: "list booking audits", Err: err}
	}

	return audits, nil
}
