package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ceylontrails/tourism-backend/internal/database"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CatalogHandler serves public read-only destination and event listings
type CatalogHandler struct {
	catalog *database.CatalogRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *database.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListDestinations handles GET /api/v1/destinations
func (h *CatalogHandler) ListDestinations(c *gin.Context) {
	limit, offset := pagination(c)

	destinations, err := h.catalog.ListDestinations(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"destinations": destinations,
		"count":        len(destinations),
	})
}

// ListEvents handles GET /api/v1/events
func (h *CatalogHandler) ListEvents(c *gin.Context) {
	limit, offset := pagination(c)

	events, err := h.catalog.ListEvents(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// GetDestination handles GET /api/v1/destinations/:id
func (h *CatalogHandler) GetDestination(c *gin.Context) {
	destinationID := c.Param("id")
	if _, err := uuid.Parse(destinationID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid destination id format",
		})
		return
	}

	destination, err := h.catalog.GetDestination(c.Request.Context(), destinationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, destination)
}

// GetEvent handles GET /api/v1/events/:id
func (h *CatalogHandler) GetEvent(c *gin.Context) {
	eventID := c.Param("id")
	if _, err := uuid.Parse(eventID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid event id format",
		})
		return
	}

	event, err := h.catalog.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
