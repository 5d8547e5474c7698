package handlers

import (
	"net/http"
	"strings"

	"gestorbanco/internal/models"
	"gestorbanco/internal/services"
	"gestorbanco/internal/store"
)

func (h *Handler) ShowClientesView(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	h.respondCustomers(w, r, customers)
}

// ActSearchCliente filters on any combination of fields. orden is birth_year or
// apellidos; dir=desc reverses it.
func (h *Handler) ActSearchCliente(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sortBy, err := services.ParseCustomerSort(query.Get("orden"))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	customers, err := h.customers.Search(r.Context(), services.CustomerQuery{
		Filter: store.CustomerFilter{
			Nombre:    strings.TrimSpace(query.Get("nombre")),
			Apellidos: strings.TrimSpace(query.Get("apellidos")),
			Email:     strings.TrimSpace(query.Get("email")),
			Phone:     strings.TrimSpace(query.Get("telefono")),
			NIF:       strings.TrimSpace(query.Get("nif")),
		},
		Sort:       sortBy,
		Descending: strings.EqualFold(query.Get("dir"), "desc"),
	})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	h.respondCustomers(w, r, customers)
}

func (h *Handler) ShowClienteMod(w http.ResponseWriter, r *http.Request) {
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
	views, err := h.customerViews([]models.Customer{customer})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views[0])
}

func (h *Handler) ActAddCliente(w http.ResponseWriter, r *http.Request) {
	customer, err := customerFromForm(r)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	created, err := h.customers.Create(r.Context(), customer, actor(r))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.customerViews([]models.Customer{created})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, views[0])
}

// ActModCliente updates the customer referenced by ref. The form's nif may change.
func (h *Handler) ActModCliente(w http.ResponseWriter, r *http.Request) {
	current, err := h.ref(r, "ref")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	customer, err := customerFromForm(r)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	version, err := parseNumber("version", r.FormValue("version"))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	customer.Version = version
	updated, err := h.customers.Update(r.Context(), current, customer, actor(r))
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	views, err := h.customerViews([]models.Customer{updated})
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views[0])
}

func (h *Handler) ActDropCliente(w http.ResponseWriter, r *http.Request) {
	nif, err := h.ref(r, "nif")
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	if err := h.customers.Delete(r.Context(), nif, actor(r)); err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) respondCustomers(w http.ResponseWriter, r *http.Request, customers []models.Customer) {
	views, err := h.customerViews(customers)
	if err != nil {
		h.respondErrorView(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"clientes": views})
}

func customerFromForm(r *http.Request) (models.Customer, error) {
	birthYear, err := parseNumber("anioNacimiento", r.FormValue("anioNacimiento"))
	if err != nil {
		return models.Customer{}, err
	}
	return models.Customer{
		NIF:       r.FormValue("nif"),
		Nombre:    r.FormValue("nombre"),
		Apellidos: r.FormValue("apellidos"),
		BirthYear: birthYear,
		Address:   r.FormValue("direccion"),
		Email:     r.FormValue("email"),
		Phone:     r.FormValue("telefono"),
	}, nil
}
