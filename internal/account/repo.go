package account

import (
	"context"
	"fmt"
	"sync"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
)

type Store interface {
	Create(ctx context.Context, a Account) error
	Get(ctx context.Context, id string) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByRollNo(ctx context.Context, rollNo string) (Account, error)
	// SaveLedger persists points and badges only.
	SaveLedger(ctx context.Context, id string, points int64, badges []string) error
	// Usernames resolves ids to usernames; unknown ids are omitted.
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
}

type memoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewInMemoryStore() Store {
	return &memoryStore{accounts: map[string]Account{}}
}

func (m *memoryStore) Create(_ context.Context, a Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.accounts {
		if x.Username == a.Username {
			return fmt.Errorf("username %q: %w", a.Username, apperr.ErrConflict)
		}
		if a.RollNo != "" && x.RollNo == a.RollNo {
			return fmt.Errorf("roll number %q: %w", a.RollNo, apperr.ErrConflict)
		}
	}
	a.Badges = append([]string(nil), a.Badges...)
	m.accounts[a.ID] = a
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, fmt.Errorf("account %q: %w", id, apperr.ErrNotFound)
	}
	return clone(a), nil
}

func (m *memoryStore) GetByUsername(_ context.Context, username string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return clone(a), nil
		}
	}
	return Account{}, fmt.Errorf("username %q: %w", username, apperr.ErrNotFound)
}

func (m *memoryStore) GetByRollNo(_ context.Context, rollNo string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if rollNo != "" && a.RollNo == rollNo {
			return clone(a), nil
		}
	}
	return Account{}, fmt.Errorf("roll number %q: %w", rollNo, apperr.ErrNotFound)
}

func (m *memoryStore) SaveLedger(_ context.Context, id string, points int64, badges []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("account %q: %w", id, apperr.ErrNotFound)
	}
	a.Points = points
	a.Badges = append([]string(nil), badges...)
	m.accounts[id] = a
	return nil
}

func (m *memoryStore) Usernames(_ context.Context, ids []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			out[id] = a.Username
		}
	}
	return out, nil
}

func clone(a Account) Account {
	a.Badges = append([]string(nil), a.Badges...)
	return a
}
