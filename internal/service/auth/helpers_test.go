package auth

import (
	"testing"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/config"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-that-is-32-chars-long"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

func newTestJWTService(t *testing.T, secret string, now func() time.Time) *hmacJWTService {
	t.Helper()
	cfg := testAuthConfig()
	cfg.JWTSecret = secret
	svc, err := newHMACJWTService(cfg, now)
	require.NoError(t, err)
	return svc
}
