package handlers

import (
	"net/http"

	"gestorbanco/internal/middleware"
	"gestorbanco/internal/services"
	"gestorbanco/internal/session"
)

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/showLogin", http.StatusFound)
}

func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	respondJSON(w, http.StatusOK, map[string]any{
		"view":   "login",
		"error":  query.Has("error"),
		"logout": query.Has("logout"),
	})
}

// ActLogin checks the form credentials. The session's failed-attempt counter is
// saved whatever the outcome.
func (h *Handler) ActLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.respondErrorView(w, r, errMissingSession)
		return
	}
	token, loginErr := h.auth.Login(r.Context(), sess, r.FormValue("username"), r.FormValue("password"))
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.logger.Error("save session", "error", err)
	}
	if loginErr != nil {
		h.respondErrorView(w, r, loginErr)
		return
	}
	h.setTokenCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]string{"username": r.FormValue("username")})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("delete session", "error", err)
		}
	}
	h.clearCookie(w, middleware.TokenCookie)
	h.clearCookie(w, session.CookieName)
	http.Redirect(w, r, "/showLogin?logout", http.StatusFound)
}

// RegisterSecret logs the new user in through the jwt cookie and answers in plain text.
func (h *Handler) RegisterSecret(w http.ResponseWriter, r *http.Request) {
	token, err := h.auth.Register(r.Context(), services.RegisterRequest{
		Secret:    r.FormValue("secret"),
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		Nombre:    r.FormValue("nombre"),
		Apellidos: r.FormValue("apellidos"),
		Email:     r.FormValue("email"),
		Role:      r.FormValue("role"),
	})
	if err != nil {
		status := statusFor(err)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			h.logger.Error("register failed", "error", err)
			message = http.StatusText(status)
		}
		respondText(w, status, message)
		return
	}
	h.setTokenCookie(w, token)
	respondText(w, http.StatusCreated, "registered")
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"username": id.Username,
		"role":     id.Role,
	})
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
	})
}
