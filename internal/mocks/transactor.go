package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/tasktracker-api/internal/store"
)

// MockTransactor runs the function directly with a nil transaction.
// The in-memory stores ignore the transaction, so nothing is rolled back
// when fn fails.
type MockTransactor struct {
	RunFn func(ctx context.Context, fn store.TxFn) error

	Calls int
}

var _ store.Transactor = (*MockTransactor)(nil)

// RunInTransaction implements store.Transactor.
func (m *MockTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	m.Calls++
	if m.RunFn != nil {
		return m.RunFn(ctx, fn)
	}
	return fn(ctx, (*sql.Tx)(nil))
}
