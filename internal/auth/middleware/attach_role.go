package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/mind-engage/mindengage-tasks/internal/account"
	"github.com/mind-engage/mindengage-tasks/internal/apperr"
	"github.com/mind-engage/mindengage-tasks/internal/rbac"
)

// RoleSource looks up the stored account behind a token subject.
type RoleSource interface {
	Get(ctx context.Context, id string) (account.Account, error)
}

// AttachRoleFromStore replaces the claimed role with the stored one. Tokens
// whose account no longer exists are rejected.
func AttachRoleFromStore(src RoleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			a, err := src.Get(ctx, sub)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, string(a.Role))))
			case errors.Is(err, apperr.ErrNotFound):
				deny(w, http.StatusUnauthorized, "Token is not valid")
			default:
				log.Printf("auth: role lookup for %s failed: %v", sub, err)
				deny(w, http.StatusInternalServerError, "Server error")
			}
		})
	}
}
