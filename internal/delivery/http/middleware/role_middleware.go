package middleware

import (
	"net/http"
	"slices"

	"storefront/internal/auth"
	"storefront/pkg/utils"
)

// RequireRole lets the request through only for the given roles.
// MUST be used AFTER the auth middleware.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.FromContext(r.Context())
			if !id.IsAuthenticated() {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: please sign in")
				return
			}
			if !slices.Contains(roles, id.Role) {
				utils.WriteError(w, http.StatusForbidden, "Forbidden: insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
