package services

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLevel aligns the package logger with the application log level
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Domain errors returned by the services. Callers match them with errors.Is;
// the wrapped message is safe to show to end users.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrLimitExceeded      = errors.New("limit exceeded")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNoAddress          = errors.New("please add a delivery address before placing an order")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// domainError keeps a user facing message while still matching a sentinel with errors.Is
type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}
