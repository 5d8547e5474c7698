package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	gws "github.com/gorilla/websocket"

	"gestorbanco/internal/auth"
	"gestorbanco/internal/config"
	"gestorbanco/internal/middleware"
	"gestorbanco/internal/models"
	"gestorbanco/internal/session"
	"gestorbanco/internal/websocket"
)

type Handler struct {
	cfg        config.Config
	logger     *slog.Logger
	codec      *auth.Codec
	tokens     *auth.TokenService
	sessions   session.Store
	users      UserReader
	auth       AuthService
	ledger     LedgerService
	customers  CustomerService
	accounts   AccountReader
	holders    HolderReader
	operations OperationReader
	audit      AuditReader
	hub        *websocket.Hub
	upgrader   *gws.Upgrader
}

func New(cfg config.Config, logger *slog.Logger, codec *auth.Codec, tokens *auth.TokenService, sessions session.Store, users UserReader, authService AuthService, ledger LedgerService, customers CustomerService, accounts AccountReader, holders HolderReader, operations OperationReader, audit AuditReader, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:        cfg,
		logger:     logger,
		codec:      codec,
		tokens:     tokens,
		sessions:   sessions,
		users:      users,
		auth:       authService,
		ledger:     ledger,
		customers:  customers,
		accounts:   accounts,
		holders:    holders,
		operations: operations,
		audit:      audit,
		hub:        hub,
		upgrader:   websocket.NewUpgrader(cfg.AllowedOrigins),
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(middleware.Recoverer(h.logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(h.cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.SameSiteLax)

	// Public routes never verify the jwt cookie.
	router.Get("/", h.Root)
	router.Get("/showLogin", h.ShowLogin)
	router.With(middleware.Sessions(h.sessions, h.cfg.SecureCookies, h.logger)).Post("/actlogin", h.ActLogin)
	router.Get("/logout", h.Logout)
	router.Post("/register-secret", h.RegisterSecret)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authenticate := middleware.Authenticate(h.tokens, h.users, h.logger)
	router.Group(func(r chi.Router) {
		r.Use(authenticate, middleware.RequireAuthenticated)
		r.Get("/index", h.Index)

		r.Get("/showCuentasView", h.ShowCuentasView)
		r.Get("/actSearchCuenta", h.ActSearchCuenta)
		r.Get("/newCuentasView", h.NewCuentasView)
		r.Get("/showCuentasMod", h.ShowCuentasMod)
		r.Get("/showClienteCuentas", h.ShowClienteCuentas)
		r.Post("/actAddCuenta", h.ActAddCuenta)
		r.Post("/actModCuenta", h.ActModCuenta)
		r.Post("/actDropCuenta", h.ActDropCuenta)
		r.Post("/actAddClienteCuenta", h.ActAddClienteCuenta)
		r.Post("/actDropClienteCuenta", h.ActDropClienteCuenta)

		r.Get("/showOperacionesView", h.ShowOperacionesView)
		r.Get("/newOperacionView", h.NewOperacionView)
		r.Get("/operacionDetails", h.OperacionDetails)
		r.Post("/addOperacion", h.AddOperacion)

		r.Get("/showClientesView", h.ShowClientesView)
		r.Get("/actSearchCliente", h.ActSearchCliente)
		r.Get("/showClienteMod", h.ShowClienteMod)
		r.Post("/actAddCliente", h.ActAddCliente)
		r.Post("/actModCliente", h.ActModCliente)
		r.Post("/actDropCliente", h.ActDropCliente)

		r.Get("/ws/balances", h.WSBalances)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate, middleware.RequireRole(models.RoleAdmin))
		r.Post("/actDropOperacion", h.ActDropOperacion)
		r.Get("/admin/audit", h.ListAuditLogs)
	})
	return router
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
