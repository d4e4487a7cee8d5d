package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shinasport/terminal-booking-backend/internal/database"
	"github.com/shinasport/terminal-booking-backend/internal/middleware"
	"github.com/shinasport/terminal-booking-backend/internal/models"
	"github.com/shinasport/terminal-booking-backend/internal/services"
)

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	bookings       *database.BookingRepository
	bookingService *services.BookingService
	receipts       *services.ReceiptService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookings *database.BookingRepository,
	bookingService *services.BookingService,
	receipts *services.ReceiptService,
) *BookingHandler {
	return &BookingHandler{
		bookings:       bookings,
		bookingService: bookingService,
		receipts:       receipts,
	}
}

// List handles GET /api/bookings
func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.bookings.ListBookings(database.ListBookingsLimit)
	if err != nil {
		log.Printf("Failed to list bookings: %v", err)
		internalError(c, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, bookingViews(bookings))
}

// Create handles POST /api/bookings. An authenticated caller becomes the
// booking's owner; anonymous creation is allowed and leaves the owner unset.
func (h *BookingHandler) Create(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		if fields := missingBookingFields(&input); len(fields) > 0 {
			validationError(c, fields)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	booking, err := input.ToBooking()
	if err != nil {
		fieldError(c, "departureDate", err.Error())
		return
	}

	if userCtx, ok := middleware.GetUserContext(c); ok {
		booking.UserID = uuid.NullUUID{UUID: userCtx.UserID, Valid: true}
	}

	created, err := h.bookingService.Create(booking)
	if err != nil {
		if errors.Is(err, services.ErrReferenceConflict) {
			fieldError(c, "reference", "Booking reference already exists")
			return
		}
		log.Printf("Failed to create booking: %v", err)
		internalError(c, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, created.View())
}

// GetByReference handles GET /api/bookings/:reference
func (h *BookingHandler) GetByReference(c *gin.Context) {
	booking, err := h.lookupBooking(c)
	if err != nil || booking == nil {
		return
	}

	c.JSON(http.StatusOK, booking.View())
}

// Search handles GET /api/bookings/search. All provided filters are combined;
// each matches as a case-insensitive substring.
func (h *BookingHandler) Search(c *gin.Context) {
	filters := database.BookingFilters{
		Reference: strings.TrimSpace(c.Query("reference")),
		Passport:  strings.TrimSpace(c.Query("passport")),
		IDNumber:  strings.TrimSpace(c.Query("id_number")),
	}

	if filters.Empty() {
		fieldError(c, "search", "Provide at least one of reference, passport, id_number")
		return
	}

	bookings, err := h.bookings.SearchBookings(filters)
	if err != nil {
		log.Printf("Failed to search bookings: %v", err)
		internalError(c, "Failed to search bookings")
		return
	}

	c.JSON(http.StatusOK, bookingViews(bookings))
}

// ReceiptPDF handles GET /api/bookings/:reference/receipt/pdf
func (h *BookingHandler) ReceiptPDF(c *gin.Context) {
	booking, err := h.lookupBooking(c)
	if err != nil || booking == nil {
		return
	}

	if !h.receipts.Enabled() {
		c.JSON(http.StatusNotImplemented, gin.H{"detail": "PDF receipt rendering is not enabled"})
		return
	}

	pdfBytes, filename, err := h.receipts.Render(booking)
	if err != nil {
		log.Printf("Failed to render receipt for %s: %v", booking.Reference, err)
		internalError(c, "Failed to render receipt")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// lookupBooking resolves the :reference path param; it writes the error
// response itself, so callers only continue on a non-nil booking.
func (h *BookingHandler) lookupBooking(c *gin.Context) (*models.Booking, error) {
	reference := c.Param("reference")

	booking, err := h.bookings.GetBookingByReference(reference)
	if err != nil {
		log.Printf("Failed to load booking %q: %v", reference, err)
		internalError(c, "Failed to load booking")
		return nil, err
	}
	if booking == nil {
		notFound(c, "booking")
		return nil, nil
	}

	return booking, nil
}

func bookingViews(bookings []models.Booking) []models.BookingView {
	views := make([]models.BookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, bookings[i].View())
	}
	return views
}

func missingBookingFields(input *models.BookingInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(input.OriginPort) == "" {
		fields["originPort"] = "This field is required"
	}
	if strings.TrimSpace(input.DestinationPort) == "" {
		fields["destinationPort"] = "This field is required"
	}
	if strings.TrimSpace(input.DepartureDate) == "" {
		fields["departureDate"] = "This field is required"
	}
	switch input.DocumentType {
	case "", models.DocumentPassengerTicket, models.DocumentCargoBoardingCard:
	default:
		fields["documentType"] = "Must be PASSENGER_TICKET or CARGO_BOARDING_CARD"
	}
	return fields
}
