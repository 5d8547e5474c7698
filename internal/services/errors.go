package services

import (
	"errors"
	"strings"

	"gestorbanco/internal/models"
	"gestorbanco/internal/session"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
)

var (
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrUnauthorized         = errors.New("not authorized")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrOperationNotFound    = errors.New("operation not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrCustomerExists       = errors.New("customer already exists")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidIban          = errors.New("invalid iban")
)

// Re-exported so callers can match every ledger and auth failure from this package.
var (
	ErrConflictingUpdate = store.ErrConflictingUpdate
	ErrInvalidPassword   = validator.ErrInvalidPassword
	ErrInvalidRole       = models.ErrInvalidRole
	ErrTooManyAttempts   = session.ErrTooManyAttempts
)

// CustomerExistsError names the unique fields already in use.
type CustomerExistsError struct {
	Fields []string
}

func (e *CustomerExistsError) Error() string {
	return "customer already exists with the same " + strings.Join(e.Fields, ", ")
}

func (e *CustomerExistsError) Is(target error) bool {
	return target == ErrCustomerExists
}
