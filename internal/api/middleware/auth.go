package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasktracker-api/internal/api/shared"
	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/service/auth"
)

// TokenValidator resolves the user behind an access token.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware requires a live bearer access token on every request.
type AuthMiddleware struct {
	validator TokenValidator
	logger    *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(validator TokenValidator, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		validator: validator,
		logger:    logger.With("component", "auth_middleware"),
	}
}

// Authenticate validates the Authorization header and adds the user ID to
// the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		token, ok := auth.BearerToken(authHeader)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		user, err := m.validator.ValidateAccessToken(r.Context(), token)
		if err != nil {
			switch {
			case auth.IsAuthError(err):
				msg := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Token expired"
				} else if errors.Is(err, auth.ErrTokenRevoked) {
					msg = "Token revoked"
				}
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, msg, err)
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		ctx := shared.SetUserID(r.Context(), user.ID)
		log := logger.FromContextOrDefault(ctx, m.logger).With("user_id", user.ID)
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
