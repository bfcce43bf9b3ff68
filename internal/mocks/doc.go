// Package mocks provides in-memory implementations of the store, ledger,
// hashing and transaction collaborators for unit tests.
//
// Each mock keeps its data in maps guarded by a mutex, so it behaves like
// a small working store by default. Function fields (CreateFn, SaveFn, ...)
// override individual methods when a test needs a specific failure.
//
// Usage:
//
//	users := mocks.NewMockUserStore()
//	users.CreateFn = func(ctx context.Context, u *domain.User) error {
//	    return store.ErrEmailExists
//	}
//
// WithTx on every mock returns the same instance, and MockTransactor calls
// its function with a nil *sql.Tx.
package mocks
