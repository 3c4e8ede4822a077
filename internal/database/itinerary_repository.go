package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

const itineraryColumns = `id, user_id, title, description, is_public, share_code, created_at, updated_at`

const destinationColumns = `id, itinerary_id, destination_id, name, start_date, end_date, notes, position, created_at`

const uniqItineraryPositionConstraint = "uniq_itinerary_position"

// ItineraryRepository handles database operations for itineraries and
// their ordered destinations
type ItineraryRepository struct {
	db DB
}

// NewItineraryRepository creates a new ItineraryRepository
func NewItineraryRepository(db DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

// Create inserts a new itinerary with no destinations
func (r *ItineraryRepository) Create(ctx context.Context, itinerary *models.Itinerary) error {
	query := `
		INSERT INTO itineraries (id, user_id, title, description, is_public)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	if itinerary.ID == "" {
		itinerary.ID = uuid.New().String()
	}

	err := r.db.QueryRowContext(
		ctx, query,
		itinerary.ID, itinerary.UserID, itinerary.Title, itinerary.Description, itinerary.IsPublic,
	).Scan(&itinerary.CreatedAt, &itinerary.UpdatedAt)

	if err != nil {
		return &models.TransientError{Op: "create itinerary", Err: err}
	}

	return nil
}

// GetByID retrieves an itinerary by ID
func (r *ItineraryRepository) GetByID(ctx context.Context, itineraryID string) (*models.Itinerary, error) {
	query := fmt.Sprintf(`SELECT %s FROM itineraries WHERE id = $1`, itineraryColumns)

	var itinerary models.Itinerary
	err := r.db.GetContext(ctx, &itinerary, query, itineraryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "itinerary", ID: itineraryID}
		}
		return nil, &models.TransientError{Op: "get itinerary", Err: err}
	}

	return &itinerary, nil
}

// GetByShareCode retrieves a public itinerary by its share code. A code
// on a now-private itinerary resolves to not found, never to the data.
func (r *ItineraryRepository) GetByShareCode(ctx context.Context, code string) (*models.Itinerary, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM itineraries
		WHERE share_code = $1 AND is_public = TRUE`, itineraryColumns)

	var itinerary models.Itinerary
	err := r.db.GetContext(ctx, &itinerary, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "itinerary", ID: code}
		}
		return nil, &models.TransientError{Op: "get itinerary by share code", Err: err}
	}

	return &itinerary, nil
}

// GetByUserID retrieves all itineraries owned by a user, newest first
func (r *ItineraryRepository) GetByUserID(ctx context.Context, userID string) ([]models.Itinerary, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM itineraries
		WHERE user_id = $1
		ORDER BY created_at DESC`, itineraryColumns)

	itineraries := []models.Itinerary{}
	if err := r.db.SelectContext(ctx, &itineraries, query, userID); err != nil {
		return nil, &models.TransientError{Op: "list itineraries", Err: err}
	}

	return itineraries, nil
}

// Update rewrites title, description, visibility and (when issuing one)
// the share code in a single statement.
func (r *ItineraryRepository) Update(ctx context.Context, itinerary *models.Itinerary) error {
	query := `
		UPDATE itineraries
		SET title = $2, description = $3, is_public = $4,
			share_code = COALESCE(share_code, $5),
			updated_at = NOW()
		WHERE id = $1
		RETURNING share_code, updated_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		itinerary.ID, itinerary.Title, itinerary.Description, itinerary.IsPublic, itinerary.ShareCode,
	).Scan(&itinerary.ShareCode, &itinerary.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.NotFoundError{Entity: "itinerary", ID: itinerary.ID}
		}
		return &models.TransientError{Op: "update itinerary", Err: err}
	}

	return nil
}

// Delete removes the itinerary; the store cascades the destination rows.
func (r *ItineraryRepository) Delete(ctx context.Context, itineraryID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM itineraries WHERE id = $1`, itineraryID)
	if err != nil {
		return &models.TransientError{Op: "delete itinerary", Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &models.TransientError{Op: "delete itinerary", Err: err}
	}
	if rows == 0 {
		return &models.NotFoundError{Entity: "itinerary", ID: itineraryID}
	}

	return nil
}

// AddDestination appends a destination with position = current max + 1.
// The position is computed inside the INSERT itself, so two concurrent
// appends cannot both read the same max; if they still collide on the
// unique (itinerary_id, position) index, the insert is retried once.
func (r *ItineraryRepository) AddDestination(ctx context.Context, dest *models.ItineraryDestination) error {
	query := `
		INSERT INTO itinerary_destinations (
			id, itinerary_id, destination_id, name, start_date, end_date, notes, position
		)
		SELECT $1, $2, $3, $4, $5, $6, $7,
			COALESCE(MAX(position) + 1, 0)
		FROM itinerary_destinations
		WHERE itinerary_id = $2
		RETURNING position, created_at
	`

	if dest.ID == "" {
		dest.ID = uuid.New().String()
	}

	insert := func() error {
		return r.db.QueryRowContext(
			ctx, query,
			dest.ID, dest.ItineraryID, dest.DestinationID, dest.Name,
			dest.StartDate, dest.EndDate, dest.Notes,
		).Scan(&dest.Position, &dest.CreatedAt)
	}

	err := insert()
	if err != nil && isUniqueViolation(err, uniqItineraryPositionConstraint) {
		err = insert()
	}
	if err != nil {
		return &models.TransientError{Op: "add itinerary destination", Err: err}
	}

	return nil
}

// RemoveDestination deletes one destination row. Remaining positions are
// not renumbered; gaps are harmless.
func (r *ItineraryRepository) RemoveDestination(ctx context.Context, destinationRowID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM itinerary_destinations WHERE id = $1`, destinationRowID)
	if err != nil {
		return &models.TransientError{Op: "remove itinerary destination", Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &models.TransientError{Op: "remove itinerary destination", Err: err}
	}
	if rows == 0 {
		return &models.NotFoundError{Entity: "itinerary destination", ID: destinationRowID}
	}

	return nil
}

// ListDestinations returns the itinerary's destinations in ascending
// position order, with insertion time as the tie-breaker for any legacy
// rows that predate the unique index.
func (r *ItineraryRepository) ListDestinations(ctx context.Context, itineraryID string) ([]models.ItineraryDestination, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM itinerary_destinations
		WHERE itinerary_id = $1
		ORDER BY position, created_at`, destinationColumns)

	destinations := []models.ItineraryDestination{}
	if err := r.db.SelectContext(ctx, &destinations, query, itineraryID); err != nil {
		return nil, &models.TransientError{Op: "list itinerary destinations", Err: err}
	}

	return destinations, nil
}
