package payment

import (
	"context"
	"time"
)

// MockProvider fabricates intents locally and accepts every payment.
// It is selected when no gateway credentials are configured.
type MockProvider struct {
	publicKey string
	now       func() time.Time
}

func NewMockProvider(publicKey string) *MockProvider {
	if publicKey == "" {
		publicKey = DefaultPublicKey
	}
	return &MockProvider{publicKey: publicKey, now: time.Now}
}

func (p *MockProvider) Name() string      { return ModeMock }
func (p *MockProvider) PublicKey() string { return p.publicKey }

func (p *MockProvider) CreateIntent(_ context.Context, amount float64, currency string) (*Intent, error) {
	log.WithField("amount", amount).Debug("Payment gateway not configured, using mock intent")
	return MockIntent(amount, currency, p.now()), nil
}

func (p *MockProvider) Verify(_ context.Context, req VerifyRequest) (*Verification, error) {
	return mockVerification(req.PaymentID, p.now()), nil
}
