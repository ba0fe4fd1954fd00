package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/user"
)

// RequireRole returns middleware that admits only callers holding one of
// roles. A missing identity is 401; a wrong role is 403 and is logged.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	allowed := make(map[user.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			switch {
			case u == nil:
				writeError(w, http.StatusUnauthorized, "authorization required")
			case !allowed[u.Role]:
				slog.WarnContext(r.Context(), "role denied",
					"role", u.Role, "method", r.Method, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, "insufficient permissions")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireAdmin guards the routes that manage clients, employees and settings.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(user.RoleAdmin)(next)
}
