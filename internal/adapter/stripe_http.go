package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/slotbook/service-booking/pkg/domain"
)

const stripeAPIBase = "https://api.stripe.com"

// HTTPStripeAdapter talks to the Stripe REST API with form-encoded requests.
type HTTPStripeAdapter struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	client        *http.Client
	logger        *zap.Logger
}

// NewHTTPStripeAdapter creates the production Stripe adapter.
func NewHTTPStripeAdapter(secretKey, webhookSecret string, logger *zap.Logger) *HTTPStripeAdapter {
	return &HTTPStripeAdapter{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       stripeAPIBase,
		client:        &http.Client{Timeout: 30 * time.Second},
		logger:        logger,
	}
}

type stripeCustomer struct {
	ID string `json:"id"`
}

type stripeCustomerList struct {
	Data []stripeCustomer `json:"data"`
}

type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type stripeCard struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

type stripePaymentMethod struct {
	ID   string     `json:"id"`
	Card stripeCard `json:"card"`
}

type stripePaymentMethodList struct {
	Data []stripePaymentMethod `json:"data"`
}

type stripeAccount struct {
	ID               string `json:"id"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

type stripeLink struct {
	URL string `json:"url"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// FindCustomerByEmail looks up an existing customer by email.
func (a *HTTPStripeAdapter) FindCustomerByEmail(ctx context.Context, email string) (string, bool, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("limit", "1")

	var list stripeCustomerList
	if err := a.do(ctx, http.MethodGet, "/v1/customers?"+q.Encode(), nil, &list); err != nil {
		return "", false, err
	}
	if len(list.Data) == 0 {
		return "", false, nil
	}
	return list.Data[0].ID, true, nil
}

// FindOrCreateCustomer resolves the customer for an email, creating one
// when absent.
func (a *HTTPStripeAdapter) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	id, found, err := a.FindCustomerByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if found {
		return id, nil
	}

	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	var customer stripeCustomer
	if err := a.do(ctx, http.MethodPost, "/v1/customers", form, &customer); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// CreatePaymentIntent opens a payment intent with automatic payment methods.
func (a *HTTPStripeAdapter) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (string, string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountInCents, 10))
	form.Set("currency", req.Currency)
	form.Set("customer", req.CustomerID)
	form.Set("automatic_payment_methods[enabled]", "true")
	if req.SaveForFutureUse {
		form.Set("setup_future_usage", "off_session")
	}
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent stripeIntent
	if err := a.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return "", "", err
	}
	return intent.ID, intent.ClientSecret, nil
}

// CreateRefund refunds the payment intent in full.
func (a *HTTPStripeAdapter) CreateRefund(ctx context.Context, intentID string) error {
	form := url.Values{}
	form.Set("payment_intent", intentID)
	return a.do(ctx, http.MethodPost, "/v1/refunds", form, nil)
}

// ListPaymentMethods lists the saved cards of a customer.
func (a *HTTPStripeAdapter) ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error) {
	q := url.Values{}
	q.Set("customer", customerID)
	q.Set("type", "card")

	var list stripePaymentMethodList
	if err := a.do(ctx, http.MethodGet, "/v1/payment_methods?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}

	methods := make([]PaymentMethod, len(list.Data))
	for i, pm := range list.Data {
		methods[i] = PaymentMethod{
			ID:       pm.ID,
			Brand:    pm.Card.Brand,
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		}
	}
	return methods, nil
}

// DetachPaymentMethod removes a saved payment method.
func (a *HTTPStripeAdapter) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	return a.do(ctx, http.MethodPost, fmt.Sprintf("/v1/payment_methods/%s/detach", paymentMethodID), url.Values{}, nil)
}

// VerifyWebhook checks the signature header and parses the event payload.
func (a *HTTPStripeAdapter) VerifyWebhook(payload []byte, signatureHeader string) (WebhookEvent, error) {
	if err := VerifyWebhookSignature(payload, signatureHeader, a.webhookSecret, DefaultSignatureTolerance); err != nil {
		return WebhookEvent{}, err
	}
	return parseWebhookEvent(payload)
}

// RetrieveAccount fetches the onboarding status of a connected account.
func (a *HTTPStripeAdapter) RetrieveAccount(ctx context.Context, accountID string) (AccountStatus, error) {
	var account stripeAccount
	if err := a.do(ctx, http.MethodGet, "/v1/accounts/"+accountID, nil, &account); err != nil {
		return AccountStatus{}, err
	}
	return AccountStatus{
		AccountID:        account.ID,
		ChargesEnabled:   account.ChargesEnabled,
		PayoutsEnabled:   account.PayoutsEnabled,
		DetailsSubmitted: account.DetailsSubmitted,
	}, nil
}

// CreateAccount creates a standard connected account with card payments and
// transfers requested.
func (a *HTTPStripeAdapter) CreateAccount(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("type", "standard")
	form.Set("capabilities[card_payments][requested]", "true")
	form.Set("capabilities[transfers][requested]", "true")

	var account stripeAccount
	if err := a.do(ctx, http.MethodPost, "/v1/accounts", form, &account); err != nil {
		return "", err
	}
	return account.ID, nil
}

// CreateAccountLink creates an onboarding link for a connected account.
func (a *HTTPStripeAdapter) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("refresh_url", refreshURL)
	form.Set("return_url", returnURL)
	form.Set("type", "account_onboarding")

	var link stripeLink
	if err := a.do(ctx, http.MethodPost, "/v1/account_links", form, &link); err != nil {
		return "", err
	}
	return link.URL, nil
}

// CreateLoginLink creates a dashboard login link for a connected account.
func (a *HTTPStripeAdapter) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	var link stripeLink
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/login_links", accountID), url.Values{}, &link); err != nil {
		return "", err
	}
	return link.URL, nil
}

// do executes one API call. Non-2xx responses surface as GatewayError with
// the upstream message passed through.
func (a *HTTPStripeAdapter) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return domain.NewGatewayError(err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+a.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("stripe request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return domain.NewGatewayError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr stripeError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		message := apiErr.Error.Message
		if message == "" {
			message = fmt.Sprintf("stripe returned status %d", resp.StatusCode)
		}
		a.logger.Error("stripe API error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return domain.NewGatewayError(message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewGatewayError("failed to decode stripe response: " + err.Error())
	}
	return nil
}
