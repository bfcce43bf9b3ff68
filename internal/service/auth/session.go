package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

const bearerPrefix = "Bearer "

// TokenPair is the credential pair handed to a client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// SessionService issues and rotates sessions against the user store and
// the token ledger.
type SessionService struct {
	users  store.UserStore
	tokens store.TokenStore
	tx     store.Transactor
	jwt    JWTService
	hasher PasswordHasher
	now    func() time.Time
	logger *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(
	users store.UserStore,
	tokens store.TokenStore,
	tx store.Transactor,
	jwtService JWTService,
	hasher PasswordHasher,
	logger *slog.Logger,
) (*SessionService, error) {
	if users == nil {
		return nil, fmt.Errorf("users cannot be nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("tokens cannot be nil")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx cannot be nil")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwtService cannot be nil")
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionService{
		users:  users,
		tokens: tokens,
		tx:     tx,
		jwt:    jwtService,
		hasher: hasher,
		now:    time.Now,
		logger: logger.With("component", "session_service"),
	}, nil
}

// Register creates the account and opens its first session.
// A taken email surfaces as store.ErrEmailExists.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, domain.NewValidationError("password", "password cannot be empty", domain.ErrEmptyContent)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := domain.NewUser(in.Name, in.Email, hash, role)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		p, err := s.issue(ctx, s.tokens.WithTx(tx), user)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return pair, nil
}

// Authenticate checks the credentials, revokes every live access token of
// the user and opens a new session. Revocation and issuance commit together.
func (s *SessionService) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("authentication failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		log.Debug("authentication failed: password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	var pair *TokenPair
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tokens := s.tokens.WithTx(tx)
		if err := s.revokeAll(ctx, tokens, user.ID); err != nil {
			return err
		}
		p, err := s.issue(ctx, tokens, user)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("user authenticated", "user_id", user.ID)
	return pair, nil
}

// Refresh mints a new access token from the refresh token in authHeader and
// returns it with the same refresh token. A missing or unusable refresh
// token yields (nil, nil) without touching the stores. A correctly signed
// token naming an unknown user yields store.ErrUserNotFound.
func (s *SessionService) Refresh(ctx context.Context, authHeader string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	refreshToken, ok := BearerToken(authHeader)
	if !ok {
		return nil, nil
	}

	subject, err := s.jwt.ExtractSubject(ctx, refreshToken)
	if err != nil {
		log.Debug("refresh ignored: unreadable token")
		return nil, nil
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}

	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil || claims.Subject != user.Email || claims.UserID != user.ID {
		log.Debug("refresh ignored: token not valid for user", "user_id", user.ID)
		return nil, nil
	}

	var pair *TokenPair
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tokens := s.tokens.WithTx(tx)
		if err := s.revokeAll(ctx, tokens, user.ID); err != nil {
			return err
		}
		access, err := s.saveAccessToken(ctx, tokens, user)
		if err != nil {
			return err
		}
		pair = &TokenPair{AccessToken: access, RefreshToken: refreshToken}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("access token refreshed", "user_id", user.ID)
	return pair, nil
}

// ValidateAccessToken resolves the user behind an access token. The token
// must verify, be live in the ledger and name an existing user.
func (s *SessionService) ValidateAccessToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwt.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	entry, err := s.tokens.FindByValue(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !entry.IsValid(s.now()) {
		return nil, ErrTokenRevoked
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.Email != claims.Subject || entry.UserID != user.ID {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func (s *SessionService) issue(ctx context.Context, tokens store.TokenStore, user *domain.User) (*TokenPair, error) {
	access, err := s.saveAccessToken(ctx, tokens, user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh.Value}, nil
}

func (s *SessionService) saveAccessToken(ctx context.Context, tokens store.TokenStore, user *domain.User) (string, error) {
	access, err := s.jwt.GenerateToken(ctx, user)
	if err != nil {
		return "", err
	}
	if err := tokens.Save(ctx, domain.NewBearerToken(user.ID, access.Value, access.ExpiresAt)); err != nil {
		return "", fmt.Errorf("failed to record access token: %w", err)
	}
	return access.Value, nil
}

// revokeAll retires every live ledger entry of the user. With nothing live
// it writes nothing.
func (s *SessionService) revokeAll(ctx context.Context, tokens store.TokenStore, userID int64) error {
	// Concurrent logins of the same user queue here, so each one sees the
	// token the previous one issued.
	if err := tokens.LockUser(ctx, userID); err != nil {
		return err
	}
	live, err := tokens.FindAllValid(ctx, userID)
	if err != nil {
		return err
	}
	if len(live) == 0 {
		return nil
	}
	for _, t := range live {
		t.Revoke()
	}
	if err := tokens.SaveAll(ctx, live); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("revoked tokens", "user_id", userID, "count", len(live))
	return nil
}

// IsAuthError reports whether err means the caller is not authenticated.
func IsAuthError(err error) bool {
	for _, target := range []error{
		ErrInvalidCredentials, ErrInvalidToken, ErrExpiredToken, ErrTokenRevoked,
		ErrInvalidRefreshToken, ErrExpiredRefreshToken, ErrWrongTokenType, ErrMissingToken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
