package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gestorbanco/internal/auth"
	"gestorbanco/internal/models"
)

// TokenCookie carries the signed token on every request.
const TokenCookie = "jwt"

type contextKey string

const identityKey contextKey = "identity"

type Identity struct {
	Username string
	Role     models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// Authenticate resolves the identity behind the jwt cookie. Requests without the
// cookie pass through anonymously; a cookie that fails verification ends the chain
// with 401.
func Authenticate(tokens *auth.TokenService, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			username, err := tokens.Verify(cookie.Value)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "token expired"
				}
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, msg)
				return
			}
			user, err := users.GetByUsername(r.Context(), username)
			if err != nil {
				logger.Warn("token subject not resolved", "username", username, "error", err)
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !tokens.IsValid(cookie.Value, user.Username) {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := WithIdentity(r.Context(), Identity{Username: user.Username, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
