package application

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/slotbook/service-booking/internal/adapter"
	bookingDomain "github.com/slotbook/service-booking/internal/domain/booking"
	"github.com/slotbook/service-booking/internal/domain/catalog"
	"github.com/slotbook/service-booking/internal/domain/schedule"
	"github.com/slotbook/service-booking/internal/events"
	"github.com/slotbook/service-booking/pkg/domain"
	"github.com/slotbook/service-booking/pkg/metrics"
)

const dateLayout = "2006-01-02"

// GuestInput is an incoming guest in a booking creation request. Guest ids
// are assigned server-side.
type GuestInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
}

// CreateBookingRequest is the DTO for creating a booking.
type CreateBookingRequest struct {
	ServiceID       string       `json:"serviceId" binding:"required"`
	Date            string       `json:"date" binding:"required"`
	TimeSlot        string       `json:"timeSlot" binding:"required"`
	Guests          []GuestInput `json:"guests"`
	Notes           string       `json:"notes"`
	SavePaymentInfo bool         `json:"savePaymentInfo"`
}

// GuestDTO is the API representation of a booking guest.
type GuestDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// PaymentDTO is the API representation of the embedded payment info.
type PaymentDTO struct {
	Status                string `json:"status"`
	StripePaymentIntentID string `json:"stripePaymentIntentId,omitempty"`
	StripeCustomerID      string `json:"stripeCustomerId,omitempty"`
	AmountInCents         int64  `json:"amountInCents"`
	Currency              string `json:"currency"`
	ReceiptURL            string `json:"receiptUrl,omitempty"`
}

// BookingDTO is the API representation of a booking.
type BookingDTO struct {
	ID        string     `json:"id"`
	ServiceID string     `json:"serviceId"`
	Date      string     `json:"date"`
	TimeSlot  string     `json:"timeSlot"`
	Guests    []GuestDTO `json:"guests"`
	Status    string     `json:"status"`
	Payment   PaymentDTO `json:"payment"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CreateBookingResponse pairs the created booking with the client-side
// payment continuation token.
type CreateBookingResponse struct {
	Booking      BookingDTO `json:"booking"`
	ClientSecret string     `json:"clientSecret"`
}

// BookingService orchestrates the booking lifecycle: creation, cancellation
// and webhook-driven payment transitions. It is the only writer to the
// booking repository.
type BookingService struct {
	repo      bookingDomain.Repository
	catalog   *catalog.Catalog
	stripe    adapter.StripeAdapter
	hours     schedule.BusinessHours
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. publisher and metrics may
// be nil.
func NewBookingService(
	repo bookingDomain.Repository,
	cat *catalog.Catalog,
	stripe adapter.StripeAdapter,
	hours schedule.BusinessHours,
	publisher *events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		catalog:   cat,
		stripe:    stripe,
		hours:     hours,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Create validates the request, opens a payment intent and persists a
// pending booking. A gateway failure aborts the whole operation; nothing is
// persisted (fail closed).
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	svc, err := s.catalog.Get(req.ServiceID)
	if err != nil {
		return nil, domain.NewValidationError("Service not found")
	}
	if len(req.Guests) == 0 {
		return nil, domain.NewValidationError("At least one guest is required")
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return nil, domain.NewValidationError("Invalid date, expected YYYY-MM-DD")
	}

	totalAmount := svc.PriceInCents * int64(len(req.Guests))

	guests := make([]bookingDomain.Guest, len(req.Guests))
	for i, g := range req.Guests {
		guests[i] = bookingDomain.Guest{
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Email:     g.Email,
			Phone:     g.Phone,
		}
	}

	b := bookingDomain.NewBooking(req.ServiceID, req.Date, req.TimeSlot, guests, req.Notes, totalAmount, svc.Currency)

	s.logger.Info("creating booking",
		zap.String("booking_id", b.ID()),
		zap.String("service_id", req.ServiceID),
		zap.Int("guest_count", len(req.Guests)),
		zap.Int64("amount_cents", totalAmount),
	)

	primary := req.Guests[0]
	customerID, err := s.stripe.FindOrCreateCustomer(ctx, primary.Email, primary.FirstName+" "+primary.LastName)
	if err != nil {
		s.gatewayError("resolve_customer", err)
		return nil, err
	}

	intentID, clientSecret, err := s.stripe.CreatePaymentIntent(ctx, adapter.CreateIntentRequest{
		AmountInCents: totalAmount,
		Currency:      svc.Currency,
		CustomerID:    customerID,
		Metadata: map[string]string{
			"bookingId":  b.ID(),
			"serviceId":  req.ServiceID,
			"guestCount": strconv.Itoa(len(req.Guests)),
		},
		SaveForFutureUse: req.SavePaymentInfo,
	})
	if err != nil {
		s.gatewayError("create_payment_intent", err)
		return nil, err
	}

	b.AttachPaymentIntent(intentID, customerID)

	if err := s.repo.Save(ctx, b); err != nil {
		s.logger.Error("failed to persist booking", zap.String("booking_id", b.ID()), zap.Error(err))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}
	s.publisher.Publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:     b.ID(),
		ServiceID:     b.ServiceID(),
		Date:          b.Date(),
		TimeSlot:      b.TimeSlot(),
		GuestCount:    len(guests),
		AmountInCents: totalAmount,
		Currency:      svc.Currency,
		OccurredAt:    time.Now().UTC(),
	})

	return &CreateBookingResponse{
		Booking:      toBookingDTO(b),
		ClientSecret: clientSecret,
	}, nil
}

// Cancel cancels a booking, refunding through the gateway first when the
// booking is paid. A refund failure aborts the cancellation and leaves the
// booking unchanged.
func (s *BookingService) Cancel(ctx context.Context, id string) (*BookingDTO, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := b.CanCancel(); err != nil {
		return nil, err
	}

	refunded := false
	payment := b.Payment()
	if payment.Status == bookingDomain.PaymentPaid {
		if payment.StripePaymentIntentID == "" {
			// A paid booking must carry its intent; cancelling without a
			// refund would strand the customer's money.
			return nil, domain.NewInvalidStateError(string(bookingDomain.PaymentPaid), string(bookingDomain.PaymentRefunded))
		}
		if err := s.stripe.CreateRefund(ctx, payment.StripePaymentIntentID); err != nil {
			s.gatewayError("create_refund", err)
			return nil, err
		}
		b.MarkRefunded()
		refunded = true
	}

	if err := b.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", id),
		zap.Bool("refunded", refunded),
	)
	if s.metrics != nil {
		s.metrics.BookingsCancelled.Inc()
	}
	s.publisher.Publish(ctx, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:  id,
		Refunded:   refunded,
		OccurredAt: time.Now().UTC(),
	})

	dto := toBookingDTO(b)
	return &dto, nil
}

// HandleWebhookEvent routes a verified gateway event to the matching
// transition. Unrecognized event types are acknowledged and ignored.
func (s *BookingService) HandleWebhookEvent(ctx context.Context, event adapter.WebhookEvent) error {
	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues(event.Type).Inc()
	}

	switch event.Type {
	case adapter.EventPaymentSucceeded:
		return s.HandlePaymentSucceeded(ctx, event.IntentID, event.BookingID, event.ReceiptURL)
	case adapter.EventPaymentFailed:
		return s.HandlePaymentFailed(ctx, event.IntentID, event.BookingID)
	default:
		s.logger.Debug("ignoring unhandled webhook event type", zap.String("type", event.Type))
		return nil
	}
}

// HandlePaymentSucceeded confirms the booking referenced by a successful
// payment. A missing booking or a stale notification is a no-op, not an
// error: the event itself was verified and processed.
func (s *BookingService) HandlePaymentSucceeded(ctx context.Context, intentID, bookingID, receiptURL string) error {
	b, ok := s.lookupForWebhook(ctx, bookingID, intentID)
	if !ok {
		return nil
	}

	if !b.ConfirmPayment(receiptURL) {
		s.logger.Info("discarding stale payment success",
			zap.String("booking_id", bookingID),
			zap.String("status", string(b.Status())),
		)
		return nil
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return err
	}

	s.logger.Info("booking confirmed",
		zap.String("booking_id", bookingID),
		zap.String("payment_intent_id", intentID),
	)
	s.publisher.Publish(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingID:  bookingID,
		IntentID:   intentID,
		ReceiptURL: receiptURL,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// HandlePaymentFailed marks the payment failed while leaving the booking
// pending so the customer can retry. Stale notifications (payment no longer
// processing) are discarded.
func (s *BookingService) HandlePaymentFailed(ctx context.Context, intentID, bookingID string) error {
	b, ok := s.lookupForWebhook(ctx, bookingID, intentID)
	if !ok {
		return nil
	}

	if !b.FailPayment() {
		s.logger.Info("discarding stale payment failure",
			zap.String("booking_id", bookingID),
			zap.String("payment_status", string(b.Payment().Status)),
		)
		return nil
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return err
	}

	s.logger.Info("booking payment failed",
		zap.String("booking_id", bookingID),
		zap.String("payment_intent_id", intentID),
	)
	s.publisher.Publish(ctx, events.BookingPaymentFailed, events.BookingPaymentFailedEvent{
		BookingID:  bookingID,
		IntentID:   intentID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// GetByID retrieves a booking by id.
func (s *BookingService) GetByID(ctx context.Context, id string) (*BookingDTO, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// GetByEmail retrieves every booking whose guest list contains the email.
func (s *BookingService) GetByEmail(ctx context.Context, email string) ([]BookingDTO, error) {
	bookings, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos, nil
}

// SlotsFor returns the day's time slots for a service, marking slots taken
// by existing non-cancelled bookings as unavailable. Day-off dates yield an
// empty sequence.
func (s *BookingService) SlotsFor(ctx context.Context, serviceID, date string) ([]schedule.TimeSlot, error) {
	if _, err := s.catalog.Get(serviceID); err != nil {
		return nil, err
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, domain.NewValidationError("Invalid date, expected YYYY-MM-DD")
	}

	slots := s.hours.Slots(day)
	if len(slots) == 0 {
		return []schedule.TimeSlot{}, nil
	}

	existing, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool)
	for _, b := range existing {
		if b.ServiceID() == serviceID && b.Status() != bookingDomain.StatusCancelled {
			taken[b.TimeSlot()] = true
		}
	}

	for i := range slots {
		if taken[slots[i].Time] {
			slots[i].Available = false
		}
	}
	return slots, nil
}

// lookupForWebhook resolves the booking a webhook refers to. Missing
// references are logged and skipped.
func (s *BookingService) lookupForWebhook(ctx context.Context, bookingID, intentID string) (*bookingDomain.Booking, bool) {
	if bookingID == "" {
		s.logger.Warn("webhook event without booking reference",
			zap.String("payment_intent_id", intentID),
		)
		return nil, false
	}

	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		s.logger.Warn("no booking found for webhook event, skipping",
			zap.String("booking_id", bookingID),
			zap.String("payment_intent_id", intentID),
		)
		return nil, false
	}
	return b, true
}

func (s *BookingService) gatewayError(operation string, err error) {
	s.logger.Error("payment gateway call failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.GatewayErrors.WithLabelValues(operation).Inc()
	}
}

// toBookingDTO maps a domain Booking to its API representation.
func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	domainGuests := b.Guests()
	guests := make([]GuestDTO, len(domainGuests))
	for i, g := range domainGuests {
		guests[i] = GuestDTO{
			ID:        g.ID,
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Email:     g.Email,
			Phone:     g.Phone,
		}
	}

	p := b.Payment()
	return BookingDTO{
		ID:        b.ID(),
		ServiceID: b.ServiceID(),
		Date:      b.Date(),
		TimeSlot:  b.TimeSlot(),
		Guests:    guests,
		Status:    string(b.Status()),
		Payment: PaymentDTO{
			Status:                string(p.Status),
			StripePaymentIntentID: p.StripePaymentIntentID,
			StripeCustomerID:      p.StripeCustomerID,
			AmountInCents:         p.AmountInCents,
			Currency:              p.Currency,
			ReceiptURL:            p.ReceiptURL,
		},
		Notes:     b.Notes(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}
