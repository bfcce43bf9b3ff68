package auth

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func at(t time.Time) func() time.Time { return func() time.Time { return t } }

func testUser() *domain.User {
	return &domain.User{ID: 7, Name: "Ann", Email: "ann@example.com", Role: domain.RoleUser}
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret, at(fixedTime))
	ctx := context.Background()

	signed, err := svc.GenerateToken(ctx, testUser())
	require.NoError(t, err)
	require.NotEmpty(t, signed.Value)
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), signed.ExpiresAt.Unix())

	claims, err := svc.ValidateToken(ctx, signed.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, signed.ID, claims.ID)

	again, err := svc.GenerateToken(ctx, testUser())
	require.NoError(t, err)
	assert.NotEqual(t, signed.Value, again.Value, "token IDs make every token distinct")
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gen := newTestJWTService(t, testSecret, at(fixedTime))
	access, err := gen.GenerateToken(ctx, testUser())
	require.NoError(t, err)
	refresh, err := gen.GenerateRefreshToken(ctx, testUser())
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{"valid", gen, access.Value, nil},
		{"expired", newTestJWTService(t, testSecret, at(fixedTime.Add(3*time.Hour))), access.Value, ErrExpiredToken},
		{"within clock skew", newTestJWTService(t, testSecret, at(fixedTime.Add(time.Hour+30*time.Second))), access.Value, nil},
		{"wrong secret", newTestJWTService(t, "another-secret-that-is-long-enough-xx", at(fixedTime)), access.Value, ErrInvalidToken},
		{"malformed", gen, "this.is.not.a.valid.jwt.token", ErrInvalidToken},
		{"refresh token", gen, refresh.Value, ErrWrongTokenType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.svc.ValidateToken(ctx, tc.token)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gen := newTestJWTService(t, testSecret, at(fixedTime))
	access, err := gen.GenerateToken(ctx, testUser())
	require.NoError(t, err)
	refresh, err := gen.GenerateRefreshToken(ctx, testUser())
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{"valid", gen, refresh.Value, nil},
		{"outlives access token", newTestJWTService(t, testSecret, at(fixedTime.Add(3*time.Hour))), refresh.Value, nil},
		{"expired", newTestJWTService(t, testSecret, at(fixedTime.Add(48*time.Hour))), refresh.Value, ErrExpiredRefreshToken},
		{"wrong secret", newTestJWTService(t, "another-secret-that-is-long-enough-xx", at(fixedTime)), refresh.Value, ErrInvalidRefreshToken},
		{"access token", gen, access.Value, ErrWrongTokenType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			claims, err := tc.svc.ValidateRefreshToken(ctx, tc.token)
			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, TokenTypeRefresh, claims.TokenType)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestExtractSubject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gen := newTestJWTService(t, testSecret, at(fixedTime))
	refresh, err := gen.GenerateRefreshToken(ctx, testUser())
	require.NoError(t, err)

	later := newTestJWTService(t, testSecret, at(fixedTime.Add(72*time.Hour)))
	subject, err := later.ExtractSubject(ctx, refresh.Value)
	require.NoError(t, err, "expiry is not checked")
	assert.Equal(t, "ann@example.com", subject)

	other := newTestJWTService(t, "another-secret-that-is-long-enough-xx", at(fixedTime))
	_, err = other.ExtractSubject(ctx, refresh.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = gen.ExtractSubject(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
