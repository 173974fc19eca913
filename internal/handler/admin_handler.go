package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/slotbook/service-booking/internal/application"
	"github.com/slotbook/service-booking/pkg/response"
)

// AdminHandler serves the operator endpoints for processor onboarding.
type AdminHandler struct {
	connect *application.ConnectService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(connect *application.ConnectService) *AdminHandler {
	return &AdminHandler{connect: connect}
}

// RegisterRoutes registers the admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/admin/connect/status", h.Status)
	r.POST("/admin/connect/onboard", h.Onboard)
	r.POST("/admin/connect/dashboard", h.Dashboard)
}

// Status handles GET /api/admin/connect/status
func (h *AdminHandler) Status(c *gin.Context) {
	status, err := h.connect.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}

// Onboard handles POST /api/admin/connect/onboard
func (h *AdminHandler) Onboard(c *gin.Context) {
	result, err := h.connect.Onboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Dashboard handles POST /api/admin/connect/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	url, err := h.connect.DashboardLink(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}
