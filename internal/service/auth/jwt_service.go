package auth

import (
	"context"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the user.
	GenerateToken(ctx context.Context, user *domain.User) (*SignedToken, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrWrongTokenType for a refresh token.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed JWT refresh token for the user.
	// Refresh tokens have a longer lifetime and are used to obtain new access tokens.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (*SignedToken, error)

	// ValidateRefreshToken validates the provided refresh token string and extracts the claims.
	// Returns ErrWrongTokenType for an access token.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// ExtractSubject returns the subject of a correctly signed token without
	// checking its expiry or type.
	ExtractSubject(ctx context.Context, tokenString string) (string, error)
}

// SignedToken is a freshly minted token.
type SignedToken struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the identifier of the user the token was issued for.
	UserID int64 `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token ("access" or "refresh").
	TokenType string `json:"type,omitempty"`

	// Subject is the user's email address.
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
