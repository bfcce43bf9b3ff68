package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

const tokenColumns = `id, user_id, value, token_type, revoked, expired, expires_at, created_at`

// PostgresTokenStore implements the store.TokenStore ledger
// using a PostgreSQL database as the storage backend.
type PostgresTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTokenStore creates a new PostgreSQL implementation of the TokenStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTokenStore(db store.DBTX, logger *slog.Logger) *PostgresTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "token_store")),
	}
}

// Ensure PostgresTokenStore implements store.TokenStore interface
var _ store.TokenStore = (*PostgresTokenStore)(nil)

// WithTx implements store.TokenStore.WithTx
func (s *PostgresTokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return &PostgresTokenStore{db: tx, logger: s.logger}
}

// Save implements store.TokenStore.Save
func (s *PostgresTokenStore) Save(ctx context.Context, token *domain.Token) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tokens (user_id, value, token_type, revoked, expired, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		token.UserID,
		token.Value,
		string(token.Type),
		token.Revoked,
		token.Expired,
		token.ExpiresAt,
		token.CreatedAt,
	).Scan(&token.ID)
	if err != nil {
		log.Error("failed to save token",
			slog.String("error", err.Error()),
			slog.Int64("user_id", token.UserID))
		return MapError(err)
	}

	log.Debug("token saved",
		slog.Int64("token_id", token.ID),
		slog.Int64("user_id", token.UserID))
	return nil
}

// SaveAll implements store.TokenStore.SaveAll
func (s *PostgresTokenStore) SaveAll(ctx context.Context, tokens []*domain.Token) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, token := range tokens {
		result, err := s.db.ExecContext(ctx,
			`UPDATE tokens SET revoked = $1, expired = $2 WHERE id = $3`,
			token.Revoked, token.Expired, token.ID,
		)
		if err != nil {
			log.Error("failed to update token flags",
				slog.String("error", err.Error()),
				slog.Int64("token_id", token.ID))
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrTokenNotFound); err != nil {
			return err
		}
	}

	log.Debug("token flags saved", slog.Int("count", len(tokens)))
	return nil
}

// LockUser implements store.TokenStore.LockUser by taking a row lock on
// the owning user.
func (s *PostgresTokenStore) LockUser(ctx context.Context, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrUserNotFound
		}
		log.Error("failed to lock user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return MapError(err)
	}
	return nil
}

// FindAllValid implements store.TokenStore.FindAllValid
func (s *PostgresTokenStore) FindAllValid(ctx context.Context, userID int64) ([]*domain.Token, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens
		WHERE user_id = $1 AND revoked = FALSE AND expired = FALSE
		ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		log.Error("failed to query valid tokens",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tokens := make([]*domain.Token, 0)
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tokens, nil
}

// FindByValue implements store.TokenStore.FindByValue
func (s *PostgresTokenStore) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	token, err := scanToken(s.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE value = $1`, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTokenNotFound
		}
		log.Error("failed to find token", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return token, nil
}

// ExpireElapsed implements store.TokenStore.ExpireElapsed
func (s *PostgresTokenStore) ExpireElapsed(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE tokens SET expired = TRUE WHERE expired = FALSE AND revoked = FALSE AND expires_at <= $1`,
		now.UTC(),
	)
	if err != nil {
		log.Error("failed to expire elapsed tokens", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

func scanToken(row rowScanner) (*domain.Token, error) {
	var token domain.Token
	var tokenType string
	if err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Value,
		&tokenType,
		&token.Revoked,
		&token.Expired,
		&token.ExpiresAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	token.Type = domain.TokenType(tokenType)
	return &token, nil
}
