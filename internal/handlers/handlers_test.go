package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lib/pq"

	"gestorbanco/internal/auth"
	"gestorbanco/internal/services"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrAuthenticationFailed, http.StatusUnauthorized},
		{auth.ErrTokenExpired, http.StatusUnauthorized},
		{services.ErrTooManyAttempts, http.StatusTooManyRequests},
		{services.ErrUnauthorized, http.StatusForbidden},
		{validator.Invalid("nif", "is required"), http.StatusBadRequest},
		{errInvalidReference, http.StatusBadRequest},
		{services.ErrInvalidIban, http.StatusBadRequest},
		{fmt.Errorf("withdraw: %w", services.ErrInsufficientFunds), http.StatusBadRequest},
		{services.ErrUserAlreadyExists, http.StatusConflict},
		{&services.CustomerExistsError{Fields: []string{"email"}}, http.StatusConflict},
		{store.ErrConflictingUpdate, http.StatusConflict},
		{services.ErrAccountNotFound, http.StatusNotFound},
		{store.ErrNotFound, http.StatusNotFound},
		{&store.StorageError{Op: "get", Err: &pq.Error{Code: "40001"}}, http.StatusServiceUnavailable},
		{&store.StorageError{Op: "get", Err: errors.New("syntax")}, http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestErrorViewHidesServerErrors(t *testing.T) {
	h := newTestHandler(t, testDeps{})
	req := httptest.NewRequest(http.MethodGet, "/showCuentasView", nil)
	rec := httptest.NewRecorder()
	h.respondErrorView(rec, req, errors.New("pq: password authentication failed"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var view errorView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Detail != "" || view.Path != "/showCuentasView" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestErrorViewListsInvalidFields(t *testing.T) {
	h := newTestHandler(t, testDeps{})
	req := httptest.NewRequest(http.MethodPost, "/actAddCliente", nil)
	rec := httptest.NewRecorder()
	h.respondErrorView(rec, req, validator.Invalid("email", "must be a valid email"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var view errorView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Fields) != 1 || view.Fields[0].Field != "email" {
		t.Fatalf("unexpected fields %+v", view.Fields)
	}
}
