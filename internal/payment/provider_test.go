package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1700000000123)

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1099), ToMinorUnits(10.99))
	assert.Equal(t, int64(1010), ToMinorUnits(10.1))
	assert.Equal(t, int64(2500), ToMinorUnits(25))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider("")
	p.now = func() time.Time { return fixedNow }

	assert.Equal(t, DefaultPublicKey, p.PublicKey())

	intent, err := p.CreateIntent(context.Background(), 25.5, "INR")
	require.NoError(t, err)
	assert.Equal(t, "order_mock_1700000000123", intent.ID)
	assert.Equal(t, int64(2550), intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.True(t, IsMockOrder(intent.ID))

	t.Run("accepts any signature and tags mock", func(t *testing.T) {
		v, err := p.Verify(context.Background(), VerifyRequest{OrderID: intent.ID, Signature: "garbage"})
		require.NoError(t, err)
		assert.Equal(t, ModeMock, v.Mode)
		assert.Equal(t, "mock_payment_1700000000123", v.PaymentID)
	})

	t.Run("keeps the supplied payment id", func(t *testing.T) {
		v, err := p.Verify(context.Background(), VerifyRequest{OrderID: "order_real", PaymentID: "pay_1"})
		require.NoError(t, err)
		assert.Equal(t, "pay_1", v.PaymentID)
		assert.Equal(t, ModeMock, v.Mode)
	})
}

func newFakeGateway(t *testing.T, handler http.HandlerFunc) (*RazorpayProvider, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewRazorpayProvider(RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_secret",
		APIURL:    server.URL + "/",
	})
	p.now = func() time.Time { return fixedNow }
	return p, server
}

func TestRazorpayCreateIntent(t *testing.T) {
	t.Run("creates gateway order in minor units", func(t *testing.T) {
		p, _ := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/orders", r.URL.Path)

			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)
			assert.Equal(t, "rzp_secret", pass)

			var body struct {
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
				Receipt  string `json:"receipt"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(1099), body.Amount)
			assert.Equal(t, "INR", body.Currency)
			assert.True(t, strings.HasPrefix(body.Receipt, "receipt_"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"order_Gw123","amount":1099,"currency":"INR"}`))
		})

		intent, err := p.CreateIntent(context.Background(), 10.99, "INR")
		require.NoError(t, err)
		assert.Equal(t, "order_Gw123", intent.ID)
		assert.Equal(t, int64(1099), intent.Amount)
		assert.False(t, IsMockOrder(intent.ID))
	})

	t.Run("falls back to mock intent on gateway error", func(t *testing.T) {
		p, _ := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
		})

		intent, err := p.CreateIntent(context.Background(), 12, "INR")
		require.NoError(t, err)
		assert.Equal(t, "order_mock_1700000000123", intent.ID)
		assert.Equal(t, int64(1200), intent.Amount)
		assert.Equal(t, "INR", intent.Currency)
	})

	t.Run("falls back when the gateway is unreachable", func(t *testing.T) {
		p, server := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {})
		server.Close()

		intent, err := p.CreateIntent(context.Background(), 1, "INR")
		require.NoError(t, err)
		assert.True(t, IsMockOrder(intent.ID))
	})
}

func TestRazorpayVerify(t *testing.T) {
	p, _ := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("verify must not call the gateway")
	})

	t.Run("valid signature", func(t *testing.T) {
		sig := sign("rzp_secret", "order_Gw123", "pay_9")
		v, err := p.Verify(context.Background(), VerifyRequest{OrderID: "order_Gw123", PaymentID: "pay_9", Signature: sig})
		require.NoError(t, err)
		assert.Equal(t, ModeGateway, v.Mode)
		assert.Equal(t, "pay_9", v.PaymentID)
	})

	t.Run("tampered signature", func(t *testing.T) {
		sig := sign("other_secret", "order_Gw123", "pay_9")
		_, err := p.Verify(context.Background(), VerifyRequest{OrderID: "order_Gw123", PaymentID: "pay_9", Signature: sig})
		assert.True(t, errors.Is(err, ErrVerificationFailed))
	})

	t.Run("signature for another payment", func(t *testing.T) {
		sig := sign("rzp_secret", "order_Gw123", "pay_8")
		_, err := p.Verify(context.Background(), VerifyRequest{OrderID: "order_Gw123", PaymentID: "pay_9", Signature: sig})
		assert.True(t, errors.Is(err, ErrVerificationFailed))
	})

	t.Run("mock prefix always succeeds", func(t *testing.T) {
		v, err := p.Verify(context.Background(), VerifyRequest{OrderID: "order_mock_42", Signature: "not-a-signature"})
		require.NoError(t, err)
		assert.Equal(t, ModeMock, v.Mode)
	})
}

// sign computes the gateway's HMAC-SHA256 of "orderId|paymentId"
func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewProviderSelection(t *testing.T) {
	assert.Equal(t, ModeMock, NewProvider(RazorpayConfig{}).Name())
	assert.Equal(t, ModeMock, NewProvider(RazorpayConfig{KeyID: "rzp_test_key"}).Name())

	p := NewProvider(RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "s", APIURL: "http://gateway.invalid"})
	assert.Equal(t, "razorpay", p.Name())
	assert.Equal(t, "rzp_test_key", p.PublicKey())
}
