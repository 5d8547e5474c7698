package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gestorbanco/internal/models"
	"gestorbanco/internal/services"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
)

var accountTypes = []models.AccountType{models.AccountSavings, models.AccountChecking, models.AccountBusiness}

func (h *Handler) ShowCuentasView(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.accountViews(accounts)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cuentas": views})
}

// ActSearchCuenta filters by number substring and type, ordered by creation date.
func (h *Handler) ActSearchCuenta(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.AccountFilter{
		Number:    strings.TrimSpace(query.Get("numCuenta")),
		Ascending: !strings.EqualFold(query.Get("orden"), "desc"),
	}
	if raw := query.Get("tipo"); raw != "" {
		t, err := models.ParseAccountType(raw)
		if err != nil {
			h.respondErrorView(w, r, validator.Invalid("tipo", err.Error()))
			return
		}
		filter.Type = t
	}
	accounts, err := h.accounts.Search(r.Context(), filter)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.accountViews(accounts)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cuentas": views})
}

func (h *Handler) NewCuentasView(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.customerViews(customers)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"tipos":    accountTypes,
		"clientes": views,
	})
}

// ShowCuentasMod returns the account with its holders and the customers that could
// be added as holders.
func (h *Handler) ShowCuentasMod(w http.ResponseWriter, r *http.Request) {
	number, err := h.ref(r, "numCuenta")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	account, err := h.accounts.GetByNumber(r.Context(), number)
	if err != nil {
		h.respondErrorView(w, r, accountLookupErr(err))
		return
	}
	holders, err := h.holders.ListByAccount(r.Context(), number)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	others, err := h.holders.ListNotInAccount(r.Context(), number)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	acctViews, err := h.accountViews([]models.Account{account})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	holderViews, err := h.customerViews(holders)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	otherViews, err := h.customerViews(others)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"cuenta":      acctViews[0],
		"titulares":   holderViews,
		"disponibles": otherViews,
		"tipos":       accountTypes,
	})
}

func (h *Handler) ShowClienteCuentas(w http.ResponseWriter, r *http.Request) {
	nif, err := h.ref(r, "nif")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	customer, err := h.customers.Get(r.Context(), nif)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	accounts, err := h.accounts.ListByCustomer(r.Context(), customer.ID)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	custViews, err := h.customerViews([]models.Customer{customer})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.accountViews(accounts)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"cliente": custViews[0],
		"cuentas": views,
	})
}

func (h *Handler) ActAddCuenta(w http.ResponseWriter, r *http.Request) {
	accountType, err := models.ParseAccountType(r.FormValue("tipo"))
	if err != nil {
		h.respondErrorView(w, r, validator.Invalid("tipo", err.Error()))
		return
	}
	createdOn, err := parseDate("fechaCreacion", r.FormValue("fechaCreacion"))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	balance, err := parseBalance("saldo", r.FormValue("saldo"))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	account, err := h.ledger.CreateAccount(r.Context(), services.CreateAccountRequest{
		Type:           accountType,
		CreatedOn:      createdOn,
		InitialBalance: balance,
		HolderNIF:      strings.ToUpper(strings.TrimSpace(r.FormValue("nif"))),
		Actor:          actor(r),
	})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.accountViews([]models.Account{account})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, views[0])
}

func (h *Handler) ActModCuenta(w http.ResponseWriter, r *http.Request) {
	number, err := h.ref(r, "numCuenta")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	accountType, err := models.ParseAccountType(r.FormValue("tipo"))
	if err != nil {
		h.respondErrorView(w, r, validator.Invalid("tipo", err.Error()))
		return
	}
	createdOn, err := parseDate("fechaCreacion", r.FormValue("fechaCreacion"))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	if createdOn.IsZero() {
		h.respondErrorView(w, r, validator.Invalid("fechaCreacion", "is required"))
		return
	}
	version, err := parseNumber("version", r.FormValue("version"))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	err = h.ledger.UpdateAccount(r.Context(), services.UpdateAccountRequest{
		Number:    number,
		Type:      accountType,
		CreatedOn: createdOn,
		Version:   version,
		Actor:     actor(r),
	})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) ActDropCuenta(w http.ResponseWriter, r *http.Request) {
	number, err := h.ref(r, "numCuenta")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	if err := h.ledger.DeleteAccount(r.Context(), number, actor(r)); err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ActAddClienteCuenta(w http.ResponseWriter, r *http.Request) {
	number, err := h.ref(r, "numCuenta")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	nif := strings.ToUpper(strings.TrimSpace(r.FormValue("nif")))
	if nif == "" {
		h.respondErrorView(w, r, validator.Invalid("nif", "is required"))
		return
	}
	if err := h.ledger.AddHolder(r.Context(), number, nif, actor(r)); err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

func (h *Handler) ActDropClienteCuenta(w http.ResponseWriter, r *http.Request) {
	number, err := h.ref(r, "numCuenta")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	nif, err := h.ref(r, "nif")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	if err := h.ledger.RemoveHolder(r.Context(), number, nif, actor(r)); err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "unlinked"})
}

func accountLookupErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return services.ErrAccountNotFound
	}
	return err
}
