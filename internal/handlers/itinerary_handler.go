package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/middleware"
	"github.com/ceylontrails/tourism-backend/internal/models"
	"github.com/ceylontrails/tourism-backend/internal/services"
)

// ItineraryHandler handles itinerary HTTP requests
type ItineraryHandler struct {
	itineraries *services.ItineraryService
	logger      *logrus.Logger
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(itineraries *services.ItineraryService, logger *logrus.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		itineraries: itineraries,
		logger:      logger,
	}
}

// ItineraryResponse is the detail view: the itinerary, its ordered
// destinations and the derived trip length.
type ItineraryResponse struct {
	*models.ItineraryWithDestinations
	TripLengthDays int `json:"trip_length_days"`
}

// CreateItinerary handles POST /api/v1/itineraries
func (h *ItineraryHandler) CreateItinerary(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	itinerary, err := h.itineraries.CreateItinerary(c.Request.Context(), userCtx.UserID.String(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"itinerary_id": itinerary.ID,
		"user_id":      userCtx.UserID,
	}).Info("itinerary created")

	c.JSON(http.StatusCreated, itinerary)
}

// ListItineraries handles GET /api/v1/itineraries
func (h *ItineraryHandler) ListItineraries(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	itineraries, err := h.itineraries.ListUserItineraries(c.Request.Context(), userCtx.UserID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"itineraries": itineraries,
		"count":       len(itineraries),
	})
}

// GetItinerary handles GET /api/v1/itineraries/:id
func (h *ItineraryHandler) GetItinerary(c *gin.Context) {
	itinerary, ok := h.ownedItinerary(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ItineraryResponse{
		ItineraryWithDestinations: itinerary,
		TripLengthDays:            itinerary.TripLengthDays(),
	})
}

// UpdateItinerary handles PUT /api/v1/itineraries/:id
func (h *ItineraryHandler) UpdateItinerary(c *gin.Context) {
	itinerary, ok := h.ownedItinerary(c)
	if !ok {
		return
	}

	var req models.UpdateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	updated, err := h.itineraries.UpdateItinerary(c.Request.Context(), itinerary.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteItinerary handles DELETE /api/v1/itineraries/:id
func (h *ItineraryHandler) DeleteItinerary(c *gin.Context) {
	itinerary, ok := h.ownedItinerary(c)
	if !ok {
		return
	}

	if err := h.itineraries.DeleteItinerary(c.Request.Context(), itinerary.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Itinerary deleted"})
}

// AddDestination handles POST /api/v1/itineraries/:id/destinations
func (h *ItineraryHandler) AddDestination(c *gin.Context) {
	itinerary, ok := h.ownedItinerary(c)
	if !ok {
		return
	}

	var req models.AddDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	destination, err := h.itineraries.AddDestination(c.Request.Context(), itinerary.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, destination)
}

// RemoveDestination handles DELETE /api/v1/itineraries/:id/destinations/:destinationId
func (h *ItineraryHandler) RemoveDestination(c *gin.Context) {
	itinerary, ok := h.ownedItinerary(c)
	if !ok {
		return
	}

	destinationRowID := c.Param("destinationId")
	if _, err := uuid.Parse(destinationRowID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid destination id format",
		})
		return
	}

	if err := h.itineraries.RemoveDestination(c.Request.Context(), itinerary.ID, destinationRowID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Destination removed"})
}

// GetSharedItinerary handles GET /api/v1/shared/:code. It is the only
// unauthenticated itinerary read and serves public itineraries only.
func (h *ItineraryHandler) GetSharedItinerary(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Share code is required",
		})
		return
	}

	itinerary, err := h.itineraries.GetItineraryByShareCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ItineraryResponse{
		ItineraryWithDestinations: itinerary,
		TripLengthDays:            itinerary.TripLengthDays(),
	})
}

// ownedItinerary loads the itinerary named in the path and verifies the
// caller owns it. Foreign itineraries read as not found.
func (h *ItineraryHandler) ownedItinerary(c *gin.Context) (*models.ItineraryWithDestinations, bool) {
	userCtx := middleware.MustGetUserContext(c)

	itineraryID := c.Param("id")
	if _, err := uuid.Parse(itineraryID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid itinerary id format",
		})
		return nil, false
	}

	itinerary, err := h.itineraries.GetItinerary(c.Request.Context(), itineraryID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	if itinerary.UserID != userCtx.UserID.String() {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "itinerary " + itineraryID + " not found",
		})
		return nil, false
	}

	return itinerary, true
}
