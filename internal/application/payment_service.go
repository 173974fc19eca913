package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/slotbook/service-booking/internal/adapter"
)

// PaymentService exposes saved payment method management for returning
// customers. All state lives in the gateway; this service only translates.
type PaymentService struct {
	stripe adapter.StripeAdapter
	logger *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(stripe adapter.StripeAdapter, logger *zap.Logger) *PaymentService {
	return &PaymentService{stripe: stripe, logger: logger}
}

// ListSavedMethods returns the saved cards of the customer behind an email.
// An email with no customer yields an empty list, not an error.
func (s *PaymentService) ListSavedMethods(ctx context.Context, email string) ([]adapter.PaymentMethod, error) {
	customerID, found, err := s.stripe.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !found {
		return []adapter.PaymentMethod{}, nil
	}

	methods, err := s.stripe.ListPaymentMethods(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return methods, nil
}

// DetachMethod removes a saved payment method.
func (s *PaymentService) DetachMethod(ctx context.Context, paymentMethodID string) error {
	if err := s.stripe.DetachPaymentMethod(ctx, paymentMethodID); err != nil {
		return err
	}
	s.logger.Info("payment method detached", zap.String("payment_method_id", paymentMethodID))
	return nil
}
