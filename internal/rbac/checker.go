package rbac

import (
	"context"
	"strings"
)

// grants is one role's permission list split into exact names and
// "area:*" prefixes.
type grants struct {
	all      bool
	exact    map[string]struct{}
	prefixes []string
}

func compile(perms []string) grants {
	g := grants{exact: make(map[string]struct{}, len(perms))}
	for _, p := range perms {
		switch {
		case p == "*":
			g.all = true
		case strings.HasSuffix(p, "*"):
			g.prefixes = append(g.prefixes, strings.TrimSuffix(p, "*"))
		default:
			g.exact[p] = struct{}{}
		}
	}
	return g
}

func (g grants) allows(perm string) bool {
	if g.all {
		return true
	}
	if _, ok := g.exact[perm]; ok {
		return true
	}
	for _, pre := range g.prefixes {
		if strings.HasPrefix(perm, pre) {
			return true
		}
	}
	return false
}

// Checker answers whether an account role (student or teacher) holds a
// permission. Unknown roles hold nothing.
type Checker struct {
	roles map[string]grants
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	c := &Checker{roles: make(map[string]grants, len(rp))}
	for role, perms := range rp {
		c.roles[role] = compile(perms)
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	g, ok := c.roles[role]
	return ok && g.allows(perm)
}

type roleKey struct{}

// WithRole stores the caller's account role for Require.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
