package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gestorbanco/internal/money"
	"gestorbanco/internal/validator"
)

var (
	errInvalidReference = errors.New("invalid reference")
	errMissingSession   = errors.New("session missing from request context")
)

// ref reads an encrypted identifier from the query string or form.
func (h *Handler) ref(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return "", validator.Invalid(name, "is required")
	}
	plain, err := h.codec.Decrypt(raw)
	if err != nil {
		return "", errInvalidReference
	}
	return plain, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := money.Parse(raw)
	if err != nil {
		return decimal.Zero, validator.Invalid(field, err.Error())
	}
	if !amount.IsPositive() {
		return decimal.Zero, validator.Invalid(field, "must be greater than 0")
	}
	return amount, nil
}

// parseBalance accepts an empty value as zero.
func parseBalance(field, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	amount, err := money.Parse(raw)
	if err != nil {
		return decimal.Zero, validator.Invalid(field, err.Error())
	}
	return amount, nil
}

// parseDate reads yyyy-mm-dd. An empty value yields the zero time.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, validator.Invalid(field, "must be a date formatted yyyy-mm-dd")
	}
	return t, nil
}

func parseNumber(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, validator.Invalid(field, "must be a number")
	}
	return n, nil
}

func parseInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func formatCode(code int64) string {
	return strconv.FormatInt(code, 10)
}

func parseCode(raw string) (int64, error) {
	code, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || code <= 0 {
		return 0, errInvalidReference
	}
	return code, nil
}
