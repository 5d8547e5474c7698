package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gestorbanco/internal/session"
)

const sessionKey contextKey = "session"

func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok
}

// Sessions loads the caller's session from store, starting a new one when the
// SESSION cookie is missing or unknown. Handlers persist changes themselves.
func Sessions(store session.Store, secure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
				loaded, err := store.Load(r.Context(), cookie.Value)
				switch {
				case err == nil:
					sess = loaded
				case errors.Is(err, session.ErrNotFound):
				default:
					logger.Error("load session", "error", err)
					writeError(w, http.StatusServiceUnavailable, "session store unavailable")
					return
				}
			}
			if sess == nil {
				sess = session.New()
				http.SetCookie(w, &http.Cookie{
					Name:     session.CookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
