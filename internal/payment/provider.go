// Package payment creates payment intents with the configured gateway and verifies
// the signatures the checkout returns.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLevel aligns the package logger with the application log level
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// MockOrderPrefix marks intent ids that were fabricated locally rather than by the gateway
const MockOrderPrefix = "order_mock_"

// DefaultPublicKey is handed to clients when no gateway key is configured
const DefaultPublicKey = "rzp_test_123456"

// ErrVerificationFailed is returned when a payment signature does not match
var ErrVerificationFailed = errors.New("payment verification failed")

// Intent is a payment order the client completes with the gateway checkout
type Intent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

// VerifyRequest is what the gateway checkout hands back after payment
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verification is the outcome of a successful verify
type Verification struct {
	PaymentID string `json:"payment_id"`
	Mode      string `json:"mode"`
	Message   string `json:"message"`
}

const (
	ModeMock    = "mock"
	ModeGateway = "gateway"
)

// Provider is a payment gateway capability, chosen once at startup
type Provider interface {
	// Name identifies the provider in logs
	Name() string
	// PublicKey is the key the client side checkout is opened with
	PublicKey() string
	// CreateIntent registers a payment of amount (major units) in currency
	CreateIntent(ctx context.Context, amount float64, currency string) (*Intent, error)
	// Verify checks the signature of a completed payment
	Verify(ctx context.Context, req VerifyRequest) (*Verification, error)
}

// ToMinorUnits converts a major unit amount to minor units
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// IsMockOrder reports whether id was fabricated by MockIntent
func IsMockOrder(id string) bool {
	return strings.HasPrefix(id, MockOrderPrefix)
}

// MockIntent builds a local intent identified by the creation time
func MockIntent(amount float64, currency string, now time.Time) *Intent {
	return &Intent{
		ID:       fmt.Sprintf("%s%d", MockOrderPrefix, now.UnixMilli()),
		Amount:   ToMinorUnits(amount),
		Currency: currency,
	}
}

// mockVerification accepts the payment and tags it as mock
func mockVerification(paymentID string, now time.Time) *Verification {
	if paymentID == "" {
		paymentID = fmt.Sprintf("mock_payment_%d", now.UnixMilli())
	}
	return &Verification{
		PaymentID: paymentID,
		Mode:      ModeMock,
		Message:   "Payment verified successfully (mock)",
	}
}

// NewProvider selects the gateway when both credentials are present, else the mock provider
func NewProvider(cfg RazorpayConfig) Provider {
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		log.WithField("provider", "razorpay").Info("Payment gateway configured")
		return NewRazorpayProvider(cfg)
	}
	log.WithField("provider", ModeMock).Warn("Payment gateway credentials missing, using mock payments")
	return NewMockProvider(cfg.KeyID)
}
