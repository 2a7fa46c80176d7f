package auth

import (
	"context"

	"github.com/mind-engage/mindengage-tasks/internal/account"
	"github.com/mind-engage/mindengage-tasks/internal/rbac"
)

type ctxKey string

const ctxKeySub ctxKey = "sub"

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// PrincipalFromContext returns the authenticated caller; ok is false when
// the request never went through JWTMiddleware.
func PrincipalFromContext(ctx context.Context) (account.Principal, bool) {
	sub := SubjectFromContext(ctx)
	if sub == "" {
		return account.Principal{}, false
	}
	return account.Principal{ID: sub, Role: account.Role(rbac.RoleFromContext(ctx))}, true
}
