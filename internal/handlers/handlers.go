package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gestorbanco/internal/auth"
	"gestorbanco/internal/middleware"
	"gestorbanco/internal/models"
	"gestorbanco/internal/money"
	"gestorbanco/internal/services"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

type errorView struct {
	Message string                 `json:"message"`
	Detail  string                 `json:"detail"`
	Path    string                 `json:"path"`
	Fields  []validator.FieldError `json:"fields,omitempty"`
}

// respondErrorView renders a failed form flow. Server errors are logged and only a
// generic message is returned.
func (h *Handler) respondErrorView(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	view := errorView{Message: http.StatusText(status), Path: r.URL.Path}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		view.Detail = err.Error()
	}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		view.Fields = verr.Fields
	}
	respondJSON(w, status, view)
}

func statusFor(err error) int {
	var verr *validator.ValidationError
	var serr *store.StorageError
	switch {
	case errors.Is(err, services.ErrAuthenticationFailed),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.As(err, &verr),
		errors.Is(err, errInvalidReference),
		errors.Is(err, services.ErrInvalidPassword),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidIban),
		errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUserAlreadyExists),
		errors.Is(err, services.ErrCustomerExists),
		errors.Is(err, services.ErrConflictingUpdate):
		return http.StatusConflict
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrOperationNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &serr):
		if serr.Retryable() {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func actor(r *http.Request) string {
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		return id.Username
	}
	return ""
}

type accountView struct {
	Ref       string             `json:"ref"`
	Number    string             `json:"number"`
	Type      models.AccountType `json:"type"`
	CreatedOn string             `json:"created_on"`
	Balance   string             `json:"balance"`
	Version   int                `json:"version"`
}

type customerView struct {
	Ref       string `json:"ref"`
	NIF       string `json:"nif"`
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	BirthYear int    `json:"birth_year"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Version   int    `json:"version"`
}

type operationView struct {
	Ref           string               `json:"ref"`
	Code          int64                `json:"code"`
	Description   string               `json:"description"`
	Type          models.OperationType `json:"type"`
	Date          string               `json:"date"`
	Amount        string               `json:"amount"`
	Counterpart   string               `json:"counterpart,omitempty"`
	AccountNumber string               `json:"account_number"`
}

func (h *Handler) accountViews(accounts []models.Account) ([]accountView, error) {
	out := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		ref, err := h.codec.Encrypt(a.Number)
		if err != nil {
			return nil, err
		}
		out = append(out, accountView{
			Ref:       ref,
			Number:    a.Number,
			Type:      a.Type,
			CreatedOn: a.CreatedOn.Format(time.DateOnly),
			Balance:   money.Format(a.Balance),
			Version:   a.Version,
		})
	}
	return out, nil
}

func (h *Handler) customerViews(customers []models.Customer) ([]customerView, error) {
	out := make([]customerView, 0, len(customers))
	for _, c := range customers {
		ref, err := h.codec.Encrypt(c.NIF)
		if err != nil {
			return nil, err
		}
		out = append(out, customerView{
			Ref:       ref,
			NIF:       c.NIF,
			Nombre:    c.Nombre,
			Apellidos: c.Apellidos,
			BirthYear: c.BirthYear,
			Address:   c.Address,
			Email:     c.Email,
			Phone:     c.Phone,
			Version:   c.Version,
		})
	}
	return out, nil
}

func (h *Handler) operationViews(operations []models.Operation) ([]operationView, error) {
	out := make([]operationView, 0, len(operations))
	for _, op := range operations {
		ref, err := h.codec.Encrypt(formatCode(op.Code))
		if err != nil {
			return nil, err
		}
		view := operationView{
			Ref:           ref,
			Code:          op.Code,
			Description:   op.Description,
			Type:          op.Type,
			Date:          op.Date.Format(time.DateOnly),
			Amount:        money.Format(op.Amount),
			AccountNumber: op.AccountNumber,
		}
		if op.Counterpart != nil {
			view.Counterpart = *op.Counterpart
		}
		out = append(out, view)
	}
	return out, nil
}
