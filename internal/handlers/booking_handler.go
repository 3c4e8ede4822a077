package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/database"
	"github.com/ceylontrails/tourism-backend/internal/middleware"
	"github.com/ceylontrails/tourism-backend/internal/models"
	"github.com/ceylontrails/tourism-backend/internal/services"
	"github.com/ceylontrails/tourism-backend/pkg/validator"
)

// BookingHandler handles booking lifecycle HTTP requests
type BookingHandler struct {
	lifecycle *services.LifecycleService
	bookings  *services.BookingService
	invoices  *services.InvoiceService
	audits    *database.BookingAuditRepository
	phones    *validator.PhoneValidator
	logger    *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	lifecycle *services.LifecycleService,
	bookings *services.BookingService,
	invoices *services.InvoiceService,
	audits *database.BookingAuditRepository,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		lifecycle: lifecycle,
		bookings:  bookings,
		invoices:  invoices,
		audits:    audits,
		phones:    validator.NewPhoneValidator(),
		logger:    logger,
	}
}

// PlaceBookingRequest represents the booking creation request. The payment
// fields describe how the caller intends to pay; they seed the payment row
// created alongside the booking.
type PlaceBookingRequest struct {
	models.CreateBookingRequest
	PaymentMethod    string  `json:"payment_method"`
	PaymentGateway   *string `json:"payment_gateway,omitempty"`
	GatewayReference *string `json:"payment_gateway_reference,omitempty"`
}

// PlaceBookingResponse pairs the created booking with its payment record.
type PlaceBookingResponse struct {
	Booking *models.Booking `json:"booking"`
	Payment *models.Payment `json:"payment"`
}

// PlaceBooking handles POST /api/v1/bookings
func (h *BookingHandler) PlaceBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req PlaceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	// Normalize the contact phone; bookings arrive with numbers in
	// every national convention.
	phone, err := h.phones.Validate(req.ContactPhone)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
		return
	}
	req.ContactPhone = phone

	info := models.GatewayInfo{
		Method:           req.PaymentMethod,
		Gateway:          req.PaymentGateway,
		GatewayReference: req.GatewayReference,
	}

	booking, payment, err := h.lifecycle.PlaceBooking(c.Request.Context(), userCtx.UserID.String(), &req.CreateBookingRequest, info)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"user_id":    userCtx.UserID,
	}).Info("booking placed")

	c.JSON(http.StatusCreated, PlaceBookingResponse{Booking: booking, Payment: payment})
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookings, err := h.bookings.ListUserBookings(c.Request.Context(), userCtx.UserID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "A cancellation reason is required",
		})
		return
	}

	cancelled, err := h.lifecycle.CancelBooking(c.Request.Context(), booking.ID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

// UploadProofRequest carries the URL of an already-uploaded payment proof.
type UploadProofRequest struct {
	ProofURL string `json:"proof_url" binding:"required"`
}

// UploadPaymentProof handles POST /api/v1/bookings/:id/payment-proof
func (h *BookingHandler) UploadPaymentProof(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	var req UploadProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "proof_url is required",
		})
		return
	}

	updated, payment, err := h.lifecycle.UploadPaymentProof(c.Request.Context(), booking.ID, req.ProofURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": updated,
		"payment": payment,
	})
}

// CompletePayment handles POST /api/v1/bookings/:id/complete-payment
func (h *BookingHandler) CompletePayment(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	updated, payment, err := h.lifecycle.CompletePayment(c.Request.Context(), booking.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": updated,
		"payment": payment,
	})
}

// FailPaymentRequest carries the failure reason recorded on the payment.
type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// FailPayment handles POST /api/v1/bookings/:id/fail-payment
func (h *BookingHandler) FailPayment(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	var req FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "A failure reason is required",
		})
		return
	}

	updated, payment, err := h.lifecycle.FailPayment(c.Request.Context(), booking.ID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": updated,
		"payment": payment,
	})
}

// RefundPayment handles POST /api/v1/bookings/:id/refund
func (h *BookingHandler) RefundPayment(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	updated, payment, err := h.lifecycle.RefundPayment(c.Request.Context(), booking.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": updated,
		"payment": payment,
	})
}

// GetInvoice handles GET /api/v1/bookings/:id/invoice
func (h *BookingHandler) GetInvoice(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	invoice, err := h.invoices.AssembleInvoice(c.Request.Context(), booking.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// GetBookingEvents handles GET /api/v1/bookings/:id/events. It returns the
// append-only lifecycle trail in chronological order.
func (h *BookingHandler) GetBookingEvents(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	events, err := h.audits.GetByBookingID(c.Request.Context(), booking.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// ownedBooking loads the booking named in the path and verifies the caller
// owns it. Foreign bookings are reported as not found rather than forbidden
// so booking IDs cannot be enumerated.
func (h *BookingHandler) ownedBooking(c *gin.Context) (*models.Booking, bool) {
	userCtx := middleware.MustGetUserContext(c)

	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid booking id format",
		})
		return nil, false
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	if booking.UserID == nil || *booking.UserID != userCtx.UserID.String() {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "booking " + bookingID + " not found",
		})
		return nil, false
	}

	return booking, true
}
