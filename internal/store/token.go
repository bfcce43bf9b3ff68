package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
)

// TokenStore is the ledger of issued access tokens. Entries are never
// deleted, only flagged revoked or expired.
type TokenStore interface {
	// Save inserts a new ledger entry and sets its ID.
	Save(ctx context.Context, token *domain.Token) error

	// SaveAll writes the revoked and expired flags of existing entries.
	SaveAll(ctx context.Context, tokens []*domain.Token) error

	// LockUser blocks other transactions from changing the user's ledger
	// until the current transaction ends. It must run inside a transaction.
	// Returns ErrUserNotFound if the user does not exist.
	LockUser(ctx context.Context, userID int64) error

	// FindAllValid returns the user's entries that are neither revoked nor expired.
	FindAllValid(ctx context.Context, userID int64) ([]*domain.Token, error)

	// FindByValue returns the entry for a token string.
	// Returns ErrTokenNotFound if the value was never recorded.
	FindByValue(ctx context.Context, value string) (*domain.Token, error)

	// ExpireElapsed flags every live entry whose ExpiresAt is not after now
	// as expired and returns how many entries changed.
	ExpireElapsed(ctx context.Context, now time.Time) (int64, error)

	// WithTx returns a new TokenStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TokenStore
}
