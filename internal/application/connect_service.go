package application

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/slotbook/service-booking/internal/adapter"
	"github.com/slotbook/service-booking/pkg/domain"
)

// OnboardingResult pairs the onboarding link with the account it targets.
type OnboardingResult struct {
	URL       string `json:"url"`
	AccountID string `json:"accountId"`
}

// ConnectService handles processor account onboarding for the admin view.
// An account created during onboarding is remembered for the process
// lifetime; operators persist the id via configuration afterwards.
type ConnectService struct {
	stripe adapter.StripeAdapter
	appURL string
	logger *zap.Logger

	mu        sync.Mutex
	accountID string
}

// NewConnectService creates a new ConnectService. accountID is the
// configured connected account id and may be empty.
func NewConnectService(stripe adapter.StripeAdapter, accountID, appURL string, logger *zap.Logger) *ConnectService {
	return &ConnectService{
		stripe:    stripe,
		appURL:    appURL,
		logger:    logger,
		accountID: accountID,
	}
}

// Status reports the onboarding state of the connected account, or a
// not_configured placeholder when no account exists yet.
func (s *ConnectService) Status(ctx context.Context) (adapter.AccountStatus, error) {
	s.mu.Lock()
	accountID := s.accountID
	s.mu.Unlock()

	if accountID == "" {
		return adapter.AccountStatus{AccountID: "not_configured"}, nil
	}
	return s.stripe.RetrieveAccount(ctx, accountID)
}

// Onboard creates the connected account when absent and returns an
// onboarding link pointing back at the admin page.
func (s *ConnectService) Onboard(ctx context.Context) (OnboardingResult, error) {
	s.mu.Lock()
	accountID := s.accountID
	s.mu.Unlock()

	if accountID == "" {
		created, err := s.stripe.CreateAccount(ctx)
		if err != nil {
			return OnboardingResult{}, err
		}
		accountID = created

		s.mu.Lock()
		s.accountID = accountID
		s.mu.Unlock()

		s.logger.Info("connected account created", zap.String("account_id", accountID))
	}

	adminURL := s.appURL + "/admin"
	link, err := s.stripe.CreateAccountLink(ctx, accountID, adminURL, adminURL)
	if err != nil {
		return OnboardingResult{}, err
	}
	return OnboardingResult{URL: link, AccountID: accountID}, nil
}

// DashboardLink returns a login link for the connected account's dashboard.
func (s *ConnectService) DashboardLink(ctx context.Context) (string, error) {
	s.mu.Lock()
	accountID := s.accountID
	s.mu.Unlock()

	if accountID == "" {
		return "", domain.NewValidationError("No connect account configured")
	}
	return s.stripe.CreateLoginLink(ctx, accountID)
}
