package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fluxstudio/fluxstudio-go/internal/model"
	"github.com/fluxstudio/fluxstudio-go/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// Policy says what SessionAuth does when a request carries no usable session.
type Policy int

const (
	// AuthRequired rejects the request.
	AuthRequired Policy = iota
	// AuthOptional lets the request through anonymously.
	AuthOptional
)

// SessionResolver turns a raw session token into an identity.
type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (model.Identity, error)
}

// SessionAuth returns middleware that resolves the session cookie and attaches
// the identity to the request context. It never writes to the session store.
func SessionAuth(resolver SessionResolver, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := CookieValue(r.Header.Get("Cookie"), SessionCookieName)
			if token == "" {
				if policy == AuthRequired {
					writeJSONError(w, http.StatusUnauthorized, "Authentication required")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			identity, err := resolver.Authenticate(r.Context(), token)
			if err != nil {
				kind := service.KindOf(err)
				if kind != service.KindUnauthenticated {
					slog.Error("session lookup failed", "path", r.URL.Path, "error", err)
				}
				if policy == AuthOptional {
					next.ServeHTTP(w, r)
					return
				}
				if kind == service.KindUnauthenticated {
					writeJSONError(w, http.StatusUnauthorized, "Session expired or invalid")
					return
				}
				writeJSONError(w, http.StatusInternalServerError, "Authentication failed")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
