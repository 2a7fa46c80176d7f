// Package ledger accrues points and badges on a student account from a
// grading outcome. It is applied after the roster write and persisted
// separately from the assignment.
package ledger

import (
	"context"

	"github.com/mind-engage/mindengage-tasks/internal/account"
)

// Outcome is the part of a grading result the ledger consumes.
type Outcome struct {
	AssignmentTitle string
	Score           int
}

// Change describes what Apply did to an account.
type Change struct {
	PointsAdded  int64  `json:"points_added"`
	BadgeAwarded string `json:"badge_awarded,omitempty"`
}

// BadgeFor is the badge earned by a perfect score on an assignment.
func BadgeFor(title string) string { return title + " Master" }

// Apply adds the new score (not a delta) to points and awards the mastery
// badge once on a perfect score.
func Apply(a *account.Account, o Outcome) Change {
	ch := Change{PointsAdded: int64(o.Score)}
	a.Points += ch.PointsAdded
	if o.Score == 100 {
		b := BadgeFor(o.AssignmentTitle)
		if !a.HasBadge(b) {
			a.Badges = append(a.Badges, b)
			ch.BadgeAwarded = b
		}
	}
	return ch
}

// Writer persists the ledger fields of an account.
type Writer interface {
	SaveLedger(ctx context.Context, id string, points int64, badges []string) error
}

// Record applies the outcome to a and persists it with w. On a write
// failure a is left updated in memory and the error is returned.
func Record(ctx context.Context, w Writer, a *account.Account, o Outcome) (Change, error) {
	ch := Apply(a, o)
	if err := w.SaveLedger(ctx, a.ID, a.Points, a.Badges); err != nil {
		return ch, err
	}
	return ch, nil
}
