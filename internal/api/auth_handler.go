package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasktracker-api/internal/api/shared"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/service/auth"
)

// SessionService is the part of auth.SessionService the handlers use.
type SessionService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.TokenPair, error)
	Authenticate(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, authHeader string) (*auth.TokenPair, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	sessions SessionService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(sessions SessionService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.sessions.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pair)
}

// Authenticate handles POST /auth/authenticate.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.sessions.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pair)
}

// RefreshToken handles POST /auth/refresh-token. The refresh token is read
// from the Authorization header; when it is absent or unusable the response
// is 204 with no body.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	pair, err := h.sessions.Refresh(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}
	if pair == nil {
		log.Debug("refresh request produced no tokens")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pair)
}
