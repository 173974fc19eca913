package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/slotbook/service-booking/internal/application"
	"github.com/slotbook/service-booking/internal/domain/catalog"
	"github.com/slotbook/service-booking/pkg/response"
)

// ServiceHandler serves the service catalog and slot availability.
type ServiceHandler struct {
	catalog *catalog.Catalog
	booking *application.BookingService
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(cat *catalog.Catalog, booking *application.BookingService) *ServiceHandler {
	return &ServiceHandler{catalog: cat, booking: booking}
}

// RegisterRoutes registers the catalog routes on the given router group.
func (h *ServiceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/services", h.ListServices)
	r.GET("/services/:id", h.GetService)
	r.GET("/services/:id/slots", h.GetSlots)
}

// ListServices handles GET /api/services
func (h *ServiceHandler) ListServices(c *gin.Context) {
	response.Success(c, h.catalog.List())
}

// GetService handles GET /api/services/:id
func (h *ServiceHandler) GetService(c *gin.Context) {
	svc, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, svc)
}

// GetSlots handles GET /api/services/:id/slots?date=YYYY-MM-DD
func (h *ServiceHandler) GetSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, "Date parameter required")
		return
	}

	slots, err := h.booking.SlotsFor(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, slots)
}
