package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/franciscosanchezn/freshbite-api/internal/payment"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DefaultCurrency is used when a payment request names none
const DefaultCurrency = "INR"

type PaymentController struct {
	provider payment.Provider
}

func NewPaymentController(provider payment.Provider) *PaymentController {
	return &PaymentController{provider: provider}
}

// Key godoc
// @Summary Checkout key
// @Description Public key the client opens the gateway checkout with
// @Tags payment
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/payment/key [get]
func (pc *PaymentController) Key(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key": pc.provider.PublicKey()})
}

type createIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreateOrder godoc
// @Summary Create a payment order
// @Description Registers the amount with the gateway. Without credentials, or when the gateway fails, a mock order prefixed order_mock_ is returned.
// @Tags payment
// @Accept json
// @Produce json
// @Param payment body createIntentRequest true "Amount in major units and currency"
// @Success 200 {object} payment.Intent
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/payment/create-order [post]
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Amount must be greater than zero"))
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	intent, err := pc.provider.CreateIntent(c.Request.Context(), req.Amount, currency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// Verify godoc
// @Summary Verify a payment
// @Description Mock orders always verify. Gateway orders must carry a valid signature.
// @Tags payment
// @Accept json
// @Produce json
// @Param payment body payment.VerifyRequest true "Checkout result"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/payment/verify [post]
func (pc *PaymentController) Verify(c *gin.Context) {
	var req payment.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := pc.provider.Verify(c.Request.Context(), req)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"user_id":  middleware.UserID(c),
			"order_id": req.OrderID,
		}).Warn("Payment verification rejected")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"payment_id": result.PaymentID,
		"mode":       result.Mode,
		"message":    result.Message,
	})
}
