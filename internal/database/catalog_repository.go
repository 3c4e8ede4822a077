package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

// CatalogRepository provides read-only lookups into the destinations and
// events tables for invoice denormalization. This core never writes to
// either table.
type CatalogRepository struct {
	db DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetDestination fetches the display summary of a destination
func (r *CatalogRepository) GetDestination(ctx context.Context, destinationID string) (*models.CatalogSummary, error) {
	query := `SELECT id, name, location FROM destinations WHERE id = $1`

	var summary models.CatalogSummary
	err := r.db.GetContext(ctx, &summary, query, destinationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "destination", ID: destinationID}
		}
		return nil, &models.TransientError{Op: "get destination", Err: err}
	}

	return &summary, nil
}

// ListDestinations returns destination summaries ordered by name
func (r *CatalogRepository) ListDestinations(ctx context.Context, limit, offset int) ([]models.CatalogSummary, error) {
	query := `SELECT id, name, location FROM destinations ORDER BY name LIMIT $1 OFFSET $2`

	summaries := []models.CatalogSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, limit, offset); err != nil {
		return nil, &models.TransientError{Op: "list destinations", Err: err}
	}

	return summaries, nil
}

// ListEvents returns event summaries ordered by name
func (r *CatalogRepository) ListEvents(ctx context.Context, limit, offset int) ([]models.CatalogSummary, error) {
	query := `SELECT id, name, location FROM events ORDER BY name LIMIT $1 OFFSET $2`

	summaries := []models.CatalogSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, limit, offset); err != nil {
		return nil, &models.TransientError{Op: "list events", Err: err}
	}

	return summaries, nil
}

// GetEvent fetches the display summary of an event
func (r *CatalogRepository) GetEvent(ctx context.Context, eventID string) (*models.CatalogSummary, error) {
	query := `SELECT id, name, location FROM events WHERE id = $1`

	var summary models.CatalogSummary
	err := r.db.GetContext(ctx, &summary, query, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "event", ID: eventID}
		}
		return nil, &models.TransientError{Op: "get event", Err: err}
	}

	return &summary, nil
}
