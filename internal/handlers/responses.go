package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondError maps domain errors onto HTTP statuses. Unknown errors are
// logged and reported as internal; their text is not leaked to clients.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *models.ValidationError
		duplicateErr  *models.DuplicateBookingError
		transitionErr *models.InvalidTransitionError
		invariantErr  *models.InvariantViolationError
		notFoundErr   *models.NotFoundError
		concurrentErr *models.ConcurrentModificationError
		transientErr  *models.TransientError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Error(),
		})
	case errors.As(err, &duplicateErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "duplicate_booking",
			Message: "You already have a pending booking for this destination or event",
			Code:    "DUPLICATE_BOOKING",
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "invalid_transition",
			Message: transitionErr.Error(),
			Code:    "INVALID_TRANSITION",
		})
	case errors.As(err, &invariantErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invariant_violation",
			Message: invariantErr.Error(),
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
		})
	case errors.As(err, &concurrentErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "concurrent_modification",
			Message: "The record was modified by another request. Please retry.",
			Code:    "CONCURRENT_MODIFICATION",
		})
	case errors.As(err, &transientErr):
		logrus.WithError(err).Error("transient store failure")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "service_unavailable",
			Message: "A backing service is temporarily unavailable. Please retry.",
		})
	default:
		logrus.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
		})
	}
}
