package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/logger"
)

type authUserCtxKey struct{}

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateAccessToken(token string) (*user.TokenClaims, error)
}

// DefaultAdmin is the identity injected when authentication is disabled.
var DefaultAdmin = user.User{
	ID:    "00000000-0000-0000-0000-000000000000",
	Email: "admin@localhost",
	Name:  "Admin",
	Role:  user.RoleAdmin,
}

// publicPaths are exempt from authentication.
var publicPaths = map[string]bool{
	"/health":             true,
	"/metrics":            true,
	"/api/v1/auth/login":  true,
	"/api/v1/auth/signup": true,
}

// Auth returns middleware that validates JWT credentials.
// When authEnabled is false, DefaultAdmin is injected into every request.
func Auth(v TokenValidator, authEnabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authEnabled {
				u := DefaultAdmin
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &u)))
				return
			}

			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// Browsers cannot set headers on the websocket upgrade.
			var token string
			if r.URL.Path == "/ws" {
				token = r.URL.Query().Get("token")
				if token == "" {
					writeError(w, http.StatusUnauthorized, "authorization required")
					return
				}
			} else {
				header := r.Header.Get("Authorization")
				if header == "" {
					writeError(w, http.StatusUnauthorized, "authorization required")
					return
				}
				token = strings.TrimPrefix(header, "Bearer ")
				if token == header {
					writeError(w, http.StatusUnauthorized, "invalid authorization header")
					return
				}
			}

			claims, err := v.ValidateAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			u := &user.User{
				ID:    claims.UserID,
				Email: claims.Email,
				Name:  claims.Name,
				Role:  claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// WithUser returns a copy of ctx carrying u as the authenticated user. Log
// records written with the context are tagged with the user's ID.
func WithUser(ctx context.Context, u *user.User) context.Context {
	if u != nil {
		ctx = logger.WithUserID(ctx, u.ID)
	}
	return context.WithValue(ctx, authUserCtxKey{}, u)
}

// UserFromContext returns the authenticated user from the request context.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(authUserCtxKey{}).(*user.User)
	return u
}

// AuthUserCtxKeyForTest returns the context key used for storing the auth user.
// Exported only for use in tests that need to inject a user into the context.
func AuthUserCtxKeyForTest() any {
	return authUserCtxKey{}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
