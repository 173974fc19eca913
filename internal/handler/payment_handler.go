package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/slotbook/service-booking/internal/adapter"
	"github.com/slotbook/service-booking/internal/application"
	"github.com/slotbook/service-booking/pkg/response"
)

// PaymentHandler serves saved payment methods and the gateway webhook.
type PaymentHandler struct {
	payments *application.PaymentService
	booking  *application.BookingService
	stripe   adapter.StripeAdapter
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments *application.PaymentService, booking *application.BookingService, stripe adapter.StripeAdapter, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, booking: booking, stripe: stripe, logger: logger}
}

// RegisterRoutes registers the payment routes on the given router group.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/payments/methods", h.ListMethods)
	r.DELETE("/payments/methods/:id", h.DetachMethod)
	r.POST("/payments/webhook", h.Webhook)
}

// ListMethods handles GET /api/payments/methods?email=
func (h *PaymentHandler) ListMethods(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "Email parameter required")
		return
	}

	methods, err := h.payments.ListSavedMethods(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, methods)
}

// DetachMethod handles DELETE /api/payments/methods/:id
func (h *PaymentHandler) DetachMethod(c *gin.Context) {
	if err := h.payments.DetachMethod(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Webhook handles POST /api/payments/webhook. The raw body is verified
// against the Stripe-Signature header before any parsing; unknown event
// types are acknowledged without action so the gateway stops retrying.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "Unable to read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		response.BadRequest(c, "Missing Stripe-Signature header")
		return
	}

	event, err := h.stripe.VerifyWebhook(payload, signature)
	if err != nil {
		h.logger.Warn("webhook signature rejected", zap.Error(err))
		response.Error(c, err)
		return
	}

	if err := h.booking.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"received": true})
}
