package account

import "slices"

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool { return r == RoleTeacher || r == RoleStudent }

// Principal is the authenticated caller as asserted by the token.
type Principal struct {
	ID   string
	Role Role
}

type Account struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Role         Role     `json:"role"`
	RollNo       string   `json:"rollNo,omitempty"` // students only
	Class        string   `json:"class,omitempty"`
	Points       int64    `json:"points"`
	Badges       []string `json:"badges"`
	CreatedAt    int64    `json:"created_at,omitempty"`
}

// HasBadge reports whether the badge is already held.
func (a Account) HasBadge(b string) bool { return slices.Contains(a.Badges, b) }

// Profile is the account as shown to its owner.
type Profile struct {
	Username string   `json:"username"`
	Role     Role     `json:"role"`
	RollNo   string   `json:"rollNo,omitempty"`
	Points   int64    `json:"points"`
	Badges   []string `json:"badges"`
}

func (a Account) Profile() Profile {
	badges := a.Badges
	if badges == nil {
		badges = []string{}
	}
	return Profile{Username: a.Username, Role: a.Role, RollNo: a.RollNo, Points: a.Points, Badges: badges}
}
