package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shinasport/terminal-booking-backend/internal/database"
)

// CarrierHandler handles carrier lookup-table HTTP requests. The contract
// mirrors PortHandler.
type CarrierHandler struct {
	carriers *database.CarrierRepository
}

// NewCarrierHandler creates a new carrier handler
func NewCarrierHandler(carriers *database.CarrierRepository) *CarrierHandler {
	return &CarrierHandler{carriers: carriers}
}

// List handles GET /api/carriers
func (h *CarrierHandler) List(c *gin.Context) {
	carriers, err := h.carriers.ListCarriers()
	if err != nil {
		log.Printf("Failed to list carriers: %v", err)
		internalError(c, "Failed to list carriers")
		return
	}
	c.JSON(http.StatusOK, carriers)
}

// Create handles POST /api/carriers
func (h *CarrierHandler) Create(c *gin.Context) {
	req, ok := bindLookupRequest(c)
	if !ok {
		return
	}

	carrier, err := h.carriers.CreateCarrier(req.Code, req.Name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			fieldError(c, "code", "Carrier code already exists")
			return
		}
		log.Printf("Failed to create carrier: %v", err)
		internalError(c, "Failed to create carrier")
		return
	}

	c.JSON(http.StatusCreated, carrier)
}

// Get handles GET /api/carriers/:id
func (h *CarrierHandler) Get(c *gin.Context) {
	id, ok := lookupID(c, "carrier")
	if !ok {
		return
	}

	carrier, err := h.carriers.GetCarrierByID(id)
	if err != nil {
		log.Printf("Failed to load carrier %d: %v", id, err)
		internalError(c, "Failed to load carrier")
		return
	}
	if carrier == nil {
		notFound(c, "carrier")
		return
	}

	c.JSON(http.StatusOK, carrier)
}

// Update handles PUT and PATCH /api/carriers/:id
func (h *CarrierHandler) Update(c *gin.Context) {
	id, ok := lookupID(c, "carrier")
	if !ok {
		return
	}

	current, err := h.carriers.GetCarrierByID(id)
	if err != nil {
		log.Printf("Failed to load carrier %d: %v", id, err)
		internalError(c, "Failed to update carrier")
		return
	}
	if current == nil {
		notFound(c, "carrier")
		return
	}

	code, name, ok := bindLookupUpdate(c, current.Code, current.Name)
	if !ok {
		return
	}

	if err := h.carriers.UpdateCarrier(id, code, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound(c, "carrier")
			return
		}
		if database.IsUniqueViolation(err) {
			fieldError(c, "code", "Carrier code already exists")
			return
		}
		log.Printf("Failed to update carrier %d: %v", id, err)
		internalError(c, "Failed to update carrier")
		return
	}

	updated, err := h.carriers.GetCarrierByID(id)
	if err != nil || updated == nil {
		log.Printf("Failed to reload carrier %d: %v", id, err)
		internalError(c, "Failed to update carrier")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/carriers/:id
func (h *CarrierHandler) Delete(c *gin.Context) {
	id, ok := lookupID(c, "carrier")
	if !ok {
		return
	}

	if err := h.carriers.DeleteCarrier(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound(c, "carrier")
			return
		}
		log.Printf("Failed to delete carrier %d: %v", id, err)
		internalError(c, "Failed to delete carrier")
		return
	}

	c.Status(http.StatusNoContent)
}
