package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

// MockTokenStore implements store.TokenStore for testing. It counts
// writes so tests can assert that an operation left the ledger alone.
type MockTokenStore struct {
	SaveFn    func(ctx context.Context, token *domain.Token) error
	SaveAllFn func(ctx context.Context, tokens []*domain.Token) error
	LockFn    func(ctx context.Context, userID int64) error

	mu     sync.Mutex
	tokens map[int64]*domain.Token
	nextID int64
	writes int
	locked []int64
}

// NewMockTokenStore creates an empty ledger.
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{tokens: make(map[int64]*domain.Token)}
}

var _ store.TokenStore = (*MockTokenStore)(nil)

// Save implements the TokenStore interface
func (m *MockTokenStore) Save(ctx context.Context, token *domain.Token) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.Value == token.Value {
			return store.ErrDuplicate
		}
	}

	m.writes++
	m.nextID++
	token.ID = m.nextID
	stored := *token
	m.tokens[token.ID] = &stored
	return nil
}

// SaveAll implements the TokenStore interface
func (m *MockTokenStore) SaveAll(ctx context.Context, tokens []*domain.Token) error {
	if m.SaveAllFn != nil {
		return m.SaveAllFn(ctx, tokens)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range tokens {
		stored, ok := m.tokens[t.ID]
		if !ok {
			return store.ErrTokenNotFound
		}
		stored.Revoked = t.Revoked
		stored.Expired = t.Expired
	}
	m.writes++
	return nil
}

// LockUser implements the TokenStore interface
func (m *MockTokenStore) LockUser(ctx context.Context, userID int64) error {
	if m.LockFn != nil {
		if err := m.LockFn(ctx, userID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = append(m.locked, userID)
	return nil
}

// FindAllValid implements the TokenStore interface
func (m *MockTokenStore) FindAllValid(ctx context.Context, userID int64) ([]*domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Token
	for _, t := range m.tokens {
		if t.UserID == userID && !t.Revoked && !t.Expired {
			found := *t
			out = append(out, &found)
		}
	}
	return out, nil
}

// FindByValue implements the TokenStore interface
func (m *MockTokenStore) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.Value == value {
			found := *t
			return &found, nil
		}
	}
	return nil, store.ErrTokenNotFound
}

// ExpireElapsed implements the TokenStore interface
func (m *MockTokenStore) ExpireElapsed(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, t := range m.tokens {
		if !t.Revoked && !t.Expired && !t.ExpiresAt.After(now) {
			t.Expired = true
			n++
		}
	}
	if n > 0 {
		m.writes++
	}
	return n, nil
}

// WithTx returns the same store.
func (m *MockTokenStore) WithTx(*sql.Tx) store.TokenStore {
	return m
}

// All returns a copy of every entry of the user.
func (m *MockTokenStore) All(userID int64) []*domain.Token {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Token
	for _, t := range m.tokens {
		if t.UserID == userID {
			found := *t
			out = append(out, &found)
		}
	}
	return out
}

// Locked returns the user IDs passed to LockUser, in call order.
func (m *MockTokenStore) Locked() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.locked...)
}

// Writes is the number of successful write calls so far.
func (m *MockTokenStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
