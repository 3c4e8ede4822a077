package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/models"
	"github.com/ceylontrails/tourism-backend/internal/utils"
)

// ItineraryService is the itinerary sequencer: ordered destination
// collections with atomic position assignment, and lazily issued share
// codes for public access.
type ItineraryService struct {
	store  ItineraryStore
	cache  ItineraryCache
	logger *logrus.Logger
}

// NewItineraryService creates a new ItineraryService. The cache may be
// nil, which disables share-code caching.
func NewItineraryService(store ItineraryStore, cache ItineraryCache, logger *logrus.Logger) *ItineraryService {
	return &ItineraryService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// CreateItinerary inserts a private itinerary with no destinations
func (s *ItineraryService) CreateItinerary(ctx context.Context, userID string, req *models.CreateItineraryRequest) (*models.Itinerary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &models.ValidationError{Field: "user_id", Message: "is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	itinerary := &models.Itinerary{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		IsPublic:    false,
	}

	if err := s.store.Create(ctx, itinerary); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"itinerary_id": itinerary.ID,
		"user_id":      userID,
	}).Info("itinerary created")

	return itinerary, nil
}

// GetItinerary returns the itinerary and its destinations in ascending
// position order.
func (s *ItineraryService) GetItinerary(ctx context.Context, itineraryID string) (*models.ItineraryWithDestinations, error) {
	itinerary, err := s.store.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, err
	}

	destinations, err := s.store.ListDestinations(ctx, itineraryID)
	if err != nil {
		return nil, err
	}

	return &models.ItineraryWithDestinations{
		Itinerary:    *itinerary,
		Destinations: destinations,
	}, nil
}

// ListUserItineraries returns a user's itineraries, newest first
func (s *ItineraryService) ListUserItineraries(ctx context.Context, userID string) ([]models.Itinerary, error) {
	return s.store.GetByUserID(ctx, userID)
}

// AddDestination appends a destination to the itinerary; the position is
// assigned store-side as current max + 1.
func (s *ItineraryService) AddDestination(ctx context.Context, itineraryID string, req *models.AddDestinationRequest) (*models.ItineraryDestination, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	itinerary, err := s.store.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, err
	}

	dest := &models.ItineraryDestination{
		ItineraryID:   itinerary.ID,
		DestinationID: req.DestinationID,
		Name:          strings.TrimSpace(req.Name),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Notes:         req.Notes,
	}

	if err := s.store.AddDestination(ctx, dest); err != nil {
		return nil, err
	}

	s.invalidateShareCode(ctx, itinerary)
	return dest, nil
}

// RemoveDestination deletes one destination entry. Positions of the
// remaining entries are left alone.
func (s *ItineraryService) RemoveDestination(ctx context.Context, itineraryID, destinationRowID string) error {
	itinerary, err := s.store.GetByID(ctx, itineraryID)
	if err != nil {
		return err
	}

	if err := s.store.RemoveDestination(ctx, destinationRowID); err != nil {
		return err
	}

	s.invalidateShareCode(ctx, itinerary)
	return nil
}

// UpdateItinerary rewrites title, description and visibility. The first
// transition to public issues a share code; it is never regenerated, and
// going private keeps it for later re-publishing.
func (s *ItineraryService) UpdateItinerary(ctx context.Context, itineraryID string, req *models.UpdateItineraryRequest) (*models.Itinerary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	itinerary, err := s.store.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, err
	}

	itinerary.Title = strings.TrimSpace(req.Title)
	itinerary.Description = req.Description
	if req.IsPublic != nil {
		itinerary.IsPublic = *req.IsPublic
	}

	if itinerary.IsPublic && itinerary.ShareCode == nil {
		code := utils.GenerateShareCode()
		itinerary.ShareCode = &code
	}

	if err := s.store.Update(ctx, itinerary); err != nil {
		return nil, err
	}

	// Drop any cached copy: the content changed, or the itinerary just
	// went private and must stop resolving by code.
	s.invalidateShareCode(ctx, itinerary)

	s.logger.WithFields(logrus.Fields{
		"itinerary_id": itinerary.ID,
		"is_public":    itinerary.IsPublic,
	}).Info("itinerary updated")

	return itinerary, nil
}

// DeleteItinerary removes the itinerary and, through the store's
// cascade, its destinations.
func (s *ItineraryService) DeleteItinerary(ctx context.Context, itineraryID string) error {
	itinerary, err := s.store.GetByID(ctx, itineraryID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, itineraryID); err != nil {
		return err
	}

	s.invalidateShareCode(ctx, itinerary)
	return nil
}

// GetItineraryByShareCode resolves a public itinerary by its share code.
// A code on a now-private itinerary resolves to not found. Results are
// served read-through from the cache when one is configured.
func (s *ItineraryService) GetItineraryByShareCode(ctx context.Context, code string) (*models.ItineraryWithDestinations, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &models.ValidationError{Field: "share_code", Message: "is required"}
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.WithError(err).Warn("share code cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	itinerary, err := s.store.GetByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}

	destinations, err := s.store.ListDestinations(ctx, itinerary.ID)
	if err != nil {
		return nil, err
	}

	result := &models.ItineraryWithDestinations{
		Itinerary:    *itinerary,
		Destinations: destinations,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, code, result); err != nil {
			s.logger.WithError(err).Warn("share code cache write failed")
		}
	}

	return result, nil
}

func (s *ItineraryService) invalidateShareCode(ctx context.Context, itinerary *models.Itinerary) {
	if s.cache == nil || itinerary.ShareCode == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, *itinerary.ShareCode); err != nil {
		s.logger.WithError(err).WithField("itinerary_id", itinerary.ID).Warn("share code cache invalidation failed")
	}
}
