package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenStore implements the store.TokenStore ledger with gorm.
type TokenStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTokenStore creates a gorm-backed TokenStore.
func NewTokenStore(db *gorm.DB, logger *slog.Logger) *TokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{db: db, logger: logger.With(slog.String("component", "token_store"))}
}

var _ store.TokenStore = (*TokenStore)(nil)

// WithTx implements store.TokenStore.WithTx
func (s *TokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return &TokenStore{db: withTx(s.db, tx), logger: s.logger}
}

// Save implements store.TokenStore.Save
func (s *TokenStore) Save(ctx context.Context, token *domain.Token) error {
	m := tokenFromDomain(token)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return mapError(err, store.ErrTokenNotFound)
	}
	token.ID = m.ID
	return nil
}

// SaveAll implements store.TokenStore.SaveAll
func (s *TokenStore) SaveAll(ctx context.Context, tokens []*domain.Token) error {
	for _, token := range tokens {
		res := s.db.WithContext(ctx).Model(&tokenModel{}).
			Where("id = ?", token.ID).
			Updates(map[string]interface{}{
				"revoked": token.Revoked,
				"expired": token.Expired,
			})
		if res.Error != nil {
			return mapError(res.Error, store.ErrTokenNotFound)
		}
		if res.RowsAffected == 0 {
			return store.ErrTokenNotFound
		}
	}
	return nil
}

// LockUser implements store.TokenStore.LockUser. The pool holds a single
// connection, so transactions never overlap and only existence is checked.
func (s *TokenStore) LockUser(ctx context.Context, userID int64) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return mapError(err, store.ErrUserNotFound)
	}
	if n == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// FindAllValid implements store.TokenStore.FindAllValid
func (s *TokenStore) FindAllValid(ctx context.Context, userID int64) ([]*domain.Token, error) {
	var models []tokenModel
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ? AND expired = ?", userID, false, false).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, mapError(err, store.ErrTokenNotFound)
	}

	tokens := make([]*domain.Token, 0, len(models))
	for i := range models {
		tokens = append(tokens, models[i].toDomain())
	}
	return tokens, nil
}

// FindByValue implements store.TokenStore.FindByValue
func (s *TokenStore) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	var m tokenModel
	if err := s.db.WithContext(ctx).First(&m, "value = ?", value).Error; err != nil {
		return nil, mapError(err, store.ErrTokenNotFound)
	}
	return m.toDomain(), nil
}

// ExpireElapsed implements store.TokenStore.ExpireElapsed
func (s *TokenStore) ExpireElapsed(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&tokenModel{}).
		Where("expired = ? AND revoked = ? AND expires_at <= ?", false, false, now.UTC()).
		Update("expired", true)
	if res.Error != nil {
		return 0, mapError(res.Error, store.ErrTokenNotFound)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("expired elapsed tokens",
		slog.Int64("count", res.RowsAffected))
	return res.RowsAffected, nil
}
