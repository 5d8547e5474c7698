package handlers

import (
	"net/http"

	"gestorbanco/internal/websocket"
)

const maxAuditPage = 100000

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	if limit > 500 {
		limit = 500
	}
	page := parseInt(query.Get("page"), 1)
	if page > maxAuditPage {
		page = maxAuditPage
	}
	offset := (page - 1) * limit
	rows, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// WSBalances streams balance updates for one account. The account must exist.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	number, err := h.ref(r, "numCuenta")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	if _, err := h.accounts.GetByNumber(r.Context(), number); err != nil {
		h.respondErrorView(w, r, accountLookupErr(err))
		return
	}
	websocket.ServeWS(w, r, h.upgrader, h.hub, number)
}
