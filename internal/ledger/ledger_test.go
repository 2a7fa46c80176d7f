package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-tasks/internal/account"
)

func TestApplyAddsScoreEachTime(t *testing.T) {
	a := &account.Account{ID: "u1", Points: 10}
	ch := Apply(a, Outcome{AssignmentTitle: "Fractions", Score: 50})
	assert.EqualValues(t, 50, ch.PointsAdded)
	assert.Empty(t, ch.BadgeAwarded)
	Apply(a, Outcome{AssignmentTitle: "Fractions", Score: 50})
	assert.EqualValues(t, 110, a.Points)
	assert.Empty(t, a.Badges)
}

func TestApplyAwardsBadgeOnce(t *testing.T) {
	a := &account.Account{ID: "u1", Badges: []string{"Other Master"}}
	ch := Apply(a, Outcome{AssignmentTitle: "Fractions", Score: 100})
	assert.Equal(t, "Fractions Master", ch.BadgeAwarded)

	ch = Apply(a, Outcome{AssignmentTitle: "Fractions", Score: 100})
	assert.Empty(t, ch.BadgeAwarded)
	assert.Equal(t, []string{"Other Master", "Fractions Master"}, a.Badges)
	assert.EqualValues(t, 200, a.Points)
}

func TestApplyNoBadgeBelowPerfect(t *testing.T) {
	a := &account.Account{}
	Apply(a, Outcome{AssignmentTitle: "Fractions", Score: 99})
	assert.False(t, a.HasBadge(BadgeFor("Fractions")))
}

type failingWriter struct{ err error }

func (f failingWriter) SaveLedger(context.Context, string, int64, []string) error { return f.err }

func TestRecordPersists(t *testing.T) {
	ctx := context.Background()
	store := account.NewInMemoryStore()
	require.NoError(t, store.Create(ctx, account.Account{ID: "u1", Username: "ada", Role: account.RoleStudent, RollNo: "R1"}))
	a, err := store.Get(ctx, "u1")
	require.NoError(t, err)

	_, err = Record(ctx, store, &a, Outcome{AssignmentTitle: "Maps", Score: 100})
	require.NoError(t, err)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 100, got.Points)
	assert.Equal(t, []string{"Maps Master"}, got.Badges)
}

func TestRecordWriteFailure(t *testing.T) {
	boom := errors.New("disk full")
	a := &account.Account{ID: "u1"}
	ch, err := Record(context.Background(), failingWriter{err: boom}, a, Outcome{AssignmentTitle: "Maps", Score: 40})
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 40, ch.PointsAdded)
}
