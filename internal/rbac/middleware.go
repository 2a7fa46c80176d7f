package rbac

import (
	"encoding/json"
	"net/http"
)

var defaultChecker = NewChecker(nil)

// Require enforces a single permission on the role in the request context.
func Require(perm string) func(http.Handler) http.Handler {
	return RequireWith(defaultChecker, perm)
}

func RequireWith(c *Checker, perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !c.Has(role, perm) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"msg": "Access denied"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
