package assignment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
)

type Store interface {
	// Create persists the assignment and its whole roster, or nothing.
	Create(ctx context.Context, a Assignment) error
	Get(ctx context.Context, id string) (Assignment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Assignment, error)
	ListByRollNo(ctx context.Context, rollNo string) ([]Assignment, error)
	// SaveRosterEntry overwrites an existing entry. It never adds one.
	SaveRosterEntry(ctx context.Context, assignmentID string, e RosterEntry) error
}

type memoryStore struct {
	mu          sync.RWMutex
	assignments map[string]Assignment
}

func NewInMemoryStore() Store {
	return &memoryStore{assignments: map[string]Assignment{}}
}

func (m *memoryStore) Create(_ context.Context, a Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[a.ID]; ok {
		return fmt.Errorf("assignment %q: %w", a.ID, apperr.ErrConflict)
	}
	m.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return Assignment{}, fmt.Errorf("assignment %q: %w", id, apperr.ErrNotFound)
	}
	return cloneAssignment(a), nil
}

func (m *memoryStore) ListByOwner(_ context.Context, ownerID string) ([]Assignment, error) {
	return m.list(func(a Assignment) bool { return a.OwnerID == ownerID }), nil
}

func (m *memoryStore) ListByRollNo(_ context.Context, rollNo string) ([]Assignment, error) {
	return m.list(func(a Assignment) bool { _, ok := a.Roster[rollNo]; return ok }), nil
}

func (m *memoryStore) list(keep func(Assignment) bool) []Assignment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Assignment{}
	for _, a := range m.assignments {
		if keep(a) {
			out = append(out, cloneAssignment(a))
		}
	}
	sortNewestFirst(out)
	return out
}

func (m *memoryStore) SaveRosterEntry(_ context.Context, assignmentID string, e RosterEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[assignmentID]
	if !ok {
		return fmt.Errorf("assignment %q: %w", assignmentID, apperr.ErrNotFound)
	}
	if _, ok := a.Roster[e.RollNo]; !ok {
		return fmt.Errorf("roster entry %q: %w", e.RollNo, apperr.ErrNotFound)
	}
	a.Roster[e.RollNo] = e
	return nil
}

func cloneAssignment(a Assignment) Assignment {
	roster := make(map[string]RosterEntry, len(a.Roster))
	for k, v := range a.Roster {
		roster[k] = v
	}
	a.Roster = roster
	a.Resources = append([]Resource(nil), a.Resources...)
	return a
}

func sortNewestFirst(as []Assignment) {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].CreatedAt != as[j].CreatedAt {
			return as[i].CreatedAt > as[j].CreatedAt
		}
		return as[i].ID < as[j].ID
	})
}
