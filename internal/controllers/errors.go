package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/franciscosanchezn/freshbite-api/internal/payment"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
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

// errorMapping pairs a domain error with its API code and HTTP status
type errorMapping struct {
	kind   error
	code   string
	status int
}

var errorMappings = []errorMapping{
	{services.ErrValidation, models.ErrValidationFailed, http.StatusBadRequest},
	{services.ErrInvalidStatus, models.ErrInvalidStatus, http.StatusBadRequest},
	{services.ErrNoAddress, models.ErrAddressRequired, http.StatusBadRequest},
	{services.ErrEmptyCart, models.ErrCartEmpty, http.StatusBadRequest},
	{services.ErrLimitExceeded, models.ErrAddressLimitExceeded, http.StatusBadRequest},
	{payment.ErrVerificationFailed, models.ErrPaymentVerification, http.StatusBadRequest},
	{services.ErrNotFound, models.ErrNotFound, http.StatusNotFound},
	{services.ErrConflict, models.ErrConflict, http.StatusConflict},
	{services.ErrInvalidCredentials, models.ErrInvalidCredentials, http.StatusUnauthorized},
}

// respondError writes the API error for err. Unknown errors are logged and reported
// as a generic server error so driver and provider details never reach clients.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			c.JSON(m.status, models.NewAPIError(m.code, err.Error()))
			return
		}
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method":  c.Request.Method,
		"path":    c.FullPath(),
		"user_id": middleware.UserID(c),
	}).Error("Request failed")
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Server error"))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, message))
}

// pathID parses a numeric path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}
