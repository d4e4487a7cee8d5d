package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shinasport/terminal-booking-backend/internal/database"
)

// PortHandler handles port lookup-table HTTP requests
type PortHandler struct {
	ports *database.PortRepository
}

// NewPortHandler creates a new port handler
func NewPortHandler(ports *database.PortRepository) *PortHandler {
	return &PortHandler{ports: ports}
}

// LookupRequest is the payload for creating or fully replacing a lookup row
type LookupRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// LookupPatchRequest is the partial-update payload for a lookup row
type LookupPatchRequest struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
}

// List handles GET /api/ports
func (h *PortHandler) List(c *gin.Context) {
	ports, err := h.ports.ListPorts()
	if err != nil {
		log.Printf("Failed to list ports: %v", err)
		internalError(c, "Failed to list ports")
		return
	}
	c.JSON(http.StatusOK, ports)
}

// Create handles POST /api/ports
func (h *PortHandler) Create(c *gin.Context) {
	req, ok := bindLookupRequest(c)
	if !ok {
		return
	}

	port, err := h.ports.CreatePort(req.Code, req.Name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			fieldError(c, "code", "Port code already exists")
			return
		}
		log.Printf("Failed to create port: %v", err)
		internalError(c, "Failed to create port")
		return
	}

	c.JSON(http.StatusCreated, port)
}

// Get handles GET /api/ports/:id
func (h *PortHandler) Get(c *gin.Context) {
	id, ok := lookupID(c, "port")
	if !ok {
		return
	}

	port, err := h.ports.GetPortByID(id)
	if err != nil {
		log.Printf("Failed to load port %d: %v", id, err)
		internalError(c, "Failed to load port")
		return
	}
	if port == nil {
		notFound(c, "port")
		return
	}

	c.JSON(http.StatusOK, port)
}

// Update handles PUT /api/ports/:id (full replace) and PATCH /api/ports/:id
// (partial)
func (h *PortHandler) Update(c *gin.Context) {
	id, ok := lookupID(c, "port")
	if !ok {
		return
	}

	current, err := h.ports.GetPortByID(id)
	if err != nil {
		log.Printf("Failed to load port %d: %v", id, err)
		internalError(c, "Failed to update port")
		return
	}
	if current == nil {
		notFound(c, "port")
		return
	}

	code, name, ok := bindLookupUpdate(c, current.Code, current.Name)
	if !ok {
		return
	}

	if err := h.ports.UpdatePort(id, code, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound(c, "port")
			return
		}
		if database.IsUniqueViolation(err) {
			fieldError(c, "code", "Port code already exists")
			return
		}
		log.Printf("Failed to update port %d: %v", id, err)
		internalError(c, "Failed to update port")
		return
	}

	updated, err := h.ports.GetPortByID(id)
	if err != nil || updated == nil {
		log.Printf("Failed to reload port %d: %v", id, err)
		internalError(c, "Failed to update port")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/ports/:id
func (h *PortHandler) Delete(c *gin.Context) {
	id, ok := lookupID(c, "port")
	if !ok {
		return
	}

	if err := h.ports.DeletePort(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound(c, "port")
			return
		}
		log.Printf("Failed to delete port %d: %v", id, err)
		internalError(c, "Failed to delete port")
		return
	}

	c.Status(http.StatusNoContent)
}

// lookupID parses the numeric :id path param, writing a 404 for the given
// resource type when it is not a number.
func lookupID(c *gin.Context, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c, resource)
		return 0, false
	}
	return id, true
}

// bindLookupRequest binds and validates a create/PUT body where both fields
// are required
func bindLookupRequest(c *gin.Context) (*LookupRequest, bool) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := map[string]string{}
		if strings.TrimSpace(req.Code) == "" {
			fields["code"] = "This field is required"
		}
		if strings.TrimSpace(req.Name) == "" {
			fields["name"] = "This field is required"
		}
		if len(fields) == 0 {
			fields["body"] = "Invalid request body"
		}
		validationError(c, fields)
		return nil, false
	}

	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	return &req, true
}

// bindLookupUpdate merges the request body over the current values. PUT
// requires both fields; PATCH keeps the current value for any absent field.
func bindLookupUpdate(c *gin.Context, currentCode, currentName string) (code, name string, ok bool) {
	if c.Request.Method == http.MethodPut {
		req, bound := bindLookupRequest(c)
		if !bound {
			return "", "", false
		}
		return req.Code, req.Name, true
	}

	var req LookupPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, map[string]string{"body": "Invalid request body"})
		return "", "", false
	}

	code, name = currentCode, currentName
	if req.Code != nil {
		code = strings.TrimSpace(*req.Code)
	}
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if code == "" {
		fieldError(c, "code", "This field may not be blank")
		return "", "", false
	}
	if name == "" {
		fieldError(c, "name", "This field may not be blank")
		return "", "", false
	}

	return code, name, true
}
