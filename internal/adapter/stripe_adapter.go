package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Webhook event types this service reacts to. All other types are
// acknowledged and ignored.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// CreateIntentRequest carries the parameters for opening a payment intent.
// Metadata must include the booking id so the later webhook can resolve the
// booking without a separate lookup table.
type CreateIntentRequest struct {
	AmountInCents    int64
	Currency         string
	CustomerID       string
	Metadata         map[string]string
	SaveForFutureUse bool
}

// PaymentMethod is a saved card for a returning customer.
type PaymentMethod struct {
	ID        string `json:"id"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"expMonth"`
	ExpYear   int    `json:"expYear"`
	IsDefault bool   `json:"isDefault"`
}

// AccountStatus is the onboarding state of the connected processor account.
type AccountStatus struct {
	AccountID        string `json:"accountId"`
	ChargesEnabled   bool   `json:"chargesEnabled"`
	PayoutsEnabled   bool   `json:"payoutsEnabled"`
	DetailsSubmitted bool   `json:"detailsSubmitted"`
	OnboardingURL    string `json:"onboardingUrl,omitempty"`
}

// WebhookEvent is a verified payment notification with the booking
// reference extracted from the intent metadata.
type WebhookEvent struct {
	ID         string
	Type       string
	IntentID   string
	BookingID  string
	ReceiptURL string
}

// StripeAdapter is the Anti-Corruption Layer interface for the payment
// processor. It decouples the booking domain from the external Stripe API.
type StripeAdapter interface {
	// FindCustomerByEmail looks up an existing customer. found is false when
	// no customer matches; that is not an error.
	FindCustomerByEmail(ctx context.Context, email string) (customerID string, found bool, err error)

	// FindOrCreateCustomer resolves the customer for an email, creating one
	// when absent.
	FindOrCreateCustomer(ctx context.Context, email, name string) (customerID string, err error)

	// CreatePaymentIntent opens a payment intent and returns its id plus the
	// client-side continuation secret.
	CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (intentID, clientSecret string, err error)

	// CreateRefund refunds a captured payment intent in full.
	CreateRefund(ctx context.Context, intentID string) error

	// ListPaymentMethods lists the saved cards of a customer.
	ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error)

	// DetachPaymentMethod removes a saved payment method.
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error

	// VerifyWebhook checks the signature header against the raw payload and
	// parses the event. Fails with a SignatureError on mismatch.
	VerifyWebhook(payload []byte, signatureHeader string) (WebhookEvent, error)

	// RetrieveAccount fetches the onboarding status of a connected account.
	RetrieveAccount(ctx context.Context, accountID string) (AccountStatus, error)

	// CreateAccount creates a standard connected account.
	CreateAccount(ctx context.Context) (accountID string, err error)

	// CreateAccountLink creates an onboarding link for a connected account.
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (url string, err error)

	// CreateLoginLink creates a dashboard login link for a connected account.
	CreateLoginLink(ctx context.Context, accountID string) (url string, err error)
}

// MockWebhookSecret is the shared secret of the mock adapter.
const MockWebhookSecret = "whsec_mock"

// MockStripeAdapter is a development/testing implementation of
// StripeAdapter. It simulates processor behavior without a Stripe account.
type MockStripeAdapter struct {
	logger *zap.Logger

	mu        sync.Mutex
	customers map[string]string
	refunded  map[string]bool
}

// NewMockStripeAdapter creates a new mock adapter for development.
func NewMockStripeAdapter(logger *zap.Logger) *MockStripeAdapter {
	return &MockStripeAdapter{
		logger:    logger,
		customers: make(map[string]string),
		refunded:  make(map[string]bool),
	}
}

// FindCustomerByEmail returns a previously created mock customer, if any.
func (m *MockStripeAdapter) FindCustomerByEmail(ctx context.Context, email string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.customers[email]
	return id, ok, nil
}

// FindOrCreateCustomer returns a stable mock customer id per email.
func (m *MockStripeAdapter) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.customers[email]; ok {
		return id, nil
	}
	id := fmt.Sprintf("cus_mock_%s", uuid.New().String()[:8])
	m.customers[email] = id

	m.logger.Info("[MOCK STRIPE] customer created",
		zap.String("customer_id", id),
		zap.String("email", email),
	)
	return id, nil
}

// CreatePaymentIntent simulates opening a payment intent.
func (m *MockStripeAdapter) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (string, string, error) {
	intentID := fmt.Sprintf("pi_mock_%s", uuid.New().String()[:8])
	clientSecret := fmt.Sprintf("%s_secret_mock", intentID)

	m.logger.Info("[MOCK STRIPE] PaymentIntent created",
		zap.String("payment_intent_id", intentID),
		zap.Int64("amount_cents", req.AmountInCents),
		zap.String("currency", req.Currency),
		zap.String("customer_id", req.CustomerID),
		zap.String("booking_id", req.Metadata["bookingId"]),
	)
	return intentID, clientSecret, nil
}

// CreateRefund simulates refunding a payment intent.
func (m *MockStripeAdapter) CreateRefund(ctx context.Context, intentID string) error {
	m.mu.Lock()
	m.refunded[intentID] = true
	m.mu.Unlock()

	m.logger.Info("[MOCK STRIPE] refund created",
		zap.String("payment_intent_id", intentID),
	)
	return nil
}

// ListPaymentMethods returns a single mock card.
func (m *MockStripeAdapter) ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error) {
	return []PaymentMethod{
		{
			ID:       fmt.Sprintf("pm_mock_%s", uuid.New().String()[:8]),
			Brand:    "visa",
			Last4:    "4242",
			ExpMonth: 12,
			ExpYear:  time.Now().Year() + 2,
		},
	}, nil
}

// DetachPaymentMethod simulates removing a saved payment method.
func (m *MockStripeAdapter) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	m.logger.Info("[MOCK STRIPE] payment method detached",
		zap.String("payment_method_id", paymentMethodID),
	)
	return nil
}

// VerifyWebhook verifies against the mock shared secret using the real
// signature scheme, so the webhook path is exercised end to end in
// development.
func (m *MockStripeAdapter) VerifyWebhook(payload []byte, signatureHeader string) (WebhookEvent, error) {
	if err := VerifyWebhookSignature(payload, signatureHeader, MockWebhookSecret, DefaultSignatureTolerance); err != nil {
		return WebhookEvent{}, err
	}
	return parseWebhookEvent(payload)
}

// RetrieveAccount returns a fully onboarded mock account.
func (m *MockStripeAdapter) RetrieveAccount(ctx context.Context, accountID string) (AccountStatus, error) {
	return AccountStatus{
		AccountID:        accountID,
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
		DetailsSubmitted: true,
	}, nil
}

// CreateAccount simulates creating a standard connected account.
func (m *MockStripeAdapter) CreateAccount(ctx context.Context) (string, error) {
	id := fmt.Sprintf("acct_mock_%s", uuid.New().String()[:8])
	m.logger.Info("[MOCK STRIPE] connected account created", zap.String("account_id", id))
	return id, nil
}

// CreateAccountLink simulates creating an onboarding link.
func (m *MockStripeAdapter) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	return fmt.Sprintf("https://connect.stripe.example/onboard/%s", accountID), nil
}

// CreateLoginLink simulates creating a dashboard login link.
func (m *MockStripeAdapter) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	return fmt.Sprintf("https://connect.stripe.example/dashboard/%s", accountID), nil
}
