package handlers

import (
	"errors"
	"net/http"

	"gestorbanco/internal/models"
	"gestorbanco/internal/money"
	"gestorbanco/internal/services"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
)

var operationTypes = []models.OperationType{
	models.OperationDeposit,
	models.OperationWithdrawal,
	models.OperationTransferIn,
	models.OperationTransferOut,
}

// ShowOperacionesView lists the account's operations, newest first, next to the
// stored balance and the balance implied by the operations.
func (h *Handler) ShowOperacionesView(w http.ResponseWriter, r *http.Request) {
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
	operations, err := h.operations.ListByAccount(r.Context(), number)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	total, err := h.operations.SignedTotal(r.Context(), number)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	if !total.Equal(account.Balance) {
		h.logger.Warn("balance differs from operations", "account", number, "balance", money.Format(account.Balance), "operations", money.Format(total))
	}
	acctViews, err := h.accountViews([]models.Account{account})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.operationViews(operations)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"cuenta":         acctViews[0],
		"operaciones":    views,
		"saldoCalculado": money.Format(total),
	})
}

func (h *Handler) NewOperacionView(w http.ResponseWriter, r *http.Request) {
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
	views, err := h.accountViews([]models.Account{account})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"cuenta": views[0],
		"tipos":  operationTypes,
	})
}

func (h *Handler) OperacionDetails(w http.ResponseWriter, r *http.Request) {
	code, err := h.operationCode(r)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	op, err := h.operations.GetByCode(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		err = services.ErrOperationNotFound
	}
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.operationViews([]models.Operation{op})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views[0])
}

func (h *Handler) AddOperacion(w http.ResponseWriter, r *http.Request) {
	number, err := h.ref(r, "numCuenta")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	opType, err := models.ParseOperationType(r.FormValue("tipo"))
	if err != nil {
		h.respondErrorView(w, r, validator.Invalid("tipo", err.Error()))
		return
	}
	amount, err := parseAmount("cantidad", r.FormValue("cantidad"))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	date, err := parseDate("fecha", r.FormValue("fecha"))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	op, err := h.ledger.AddOperation(r.Context(), services.AddOperationRequest{
		AccountNumber: number,
		Type:          opType,
		Amount:        amount,
		Description:   r.FormValue("descripcion"),
		Date:          date,
		Counterpart:   r.FormValue("cuentaDestino"),
		Actor:         actor(r),
	})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.operationViews([]models.Operation{op})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, views[0])
}

func (h *Handler) ActDropOperacion(w http.ResponseWriter, r *http.Request) {
	code, err := h.operationCode(r)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	op, err := h.ledger.DeleteOperation(r.Context(), code, actor(r))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.operationViews([]models.Operation{op})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views[0])
}

func (h *Handler) operationCode(r *http.Request) (int64, error) {
	raw, err := h.ref(r, "codigo")
	if err != nil {
		return 0, err
	}
	return parseCode(raw)
}
