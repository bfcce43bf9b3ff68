package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/tasktracker-api/internal/config"
	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(name string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", ShutdownTimeoutSeconds: 1},
		Database: config.DatabaseConfig{
			Driver:       driverSQLite,
			URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
			MaxOpenConns: 1,
		},
		Auth: config.AuthConfig{
			JWTSecret:                   "app-test-secret-with-at-least-32-chars",
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 120,
			BcryptCost:                  4,
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	_, log := logger.NewTestLogger()
	app, err := newApplication(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app.setupRouter()
}

type client struct {
	t      *testing.T
	router http.Handler
}

func (c client) call(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c client) register(name, role string) auth.TokenPair {
	c.t.Helper()

	rec := c.call(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "pw-" + name,
		"role":     role,
	})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())

	var pair auth.TokenPair
	require.NoError(c.t, json.NewDecoder(rec.Body).Decode(&pair))
	return pair
}

func TestNewApplication_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "mysql" }},
		{"short secret", func(c *config.Config) { c.Auth.JWTSecret = "short" }},
		{"unreachable redis", func(c *config.Config) {
			c.RateLimit.RequestsPerMinute = 5
			c.RateLimit.RedisAddr = "127.0.0.1:1"
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig("bad_" + strings.ReplaceAll(tc.name, " ", "_"))
			tc.mutate(cfg)

			_, log := logger.NewTestLogger()
			var (
				app *application
				err error
			)
			require.NotPanics(t, func() {
				app, err = newApplication(context.Background(), cfg, log)
			})
			assert.Error(t, err)
			assert.Nil(t, app)
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	c := client{t: t, router: newTestApp(t, testConfig("health"))}
	rec := c.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	c := client{t: t, router: newTestApp(t, testConfig("lifecycle"))}
	admin := c.register("Admin", "ADMIN")
	worker := c.register("Worker", "USER")
	other := c.register("Other", "USER")

	rec := c.call(http.MethodGet, "/api/v1/tasks", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The worker registered second, so it has id 2.
	rec = c.call(http.MethodPost, "/api/v1/tasks", admin.AccessToken, map[string]interface{}{
		"executor_id": 2,
		"title":       "Write release notes",
		"priority":    "high",
		"status":      "pending",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task domain.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
	assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
	taskPath := fmt.Sprintf("/api/v1/tasks/%d", task.ID)

	rec = c.call(http.MethodPut, taskPath+"/status", other.AccessToken, map[string]string{"status": "COMPLETED"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.call(http.MethodPut, taskPath+"/status", worker.AccessToken, map[string]string{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.call(http.MethodPost, taskPath+"/comments", worker.AccessToken, map[string]string{"text": "drafted"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.call(http.MethodGet, taskPath, other.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
	assert.Equal(t, domain.TaskStatusInProgress, task.Status)
	require.Len(t, task.Comments, 1)
	assert.Equal(t, "drafted", task.Comments[0].Text)

	rec = c.call(http.MethodGet, "/api/v1/tasks/connection?first=1", other.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasNextPage":false`)

	rec = c.call(http.MethodDelete, taskPath, admin.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.call(http.MethodGet, taskPath+"/summary", admin.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionRotationOverHTTP(t *testing.T) {
	t.Parallel()

	c := client{t: t, router: newTestApp(t, testConfig("sessions"))}
	first := c.register("Ann", "USER")

	rec := c.call(http.MethodPost, "/api/v1/auth/authenticate", "", map[string]string{
		"email": "ann@example.com", "password": "pw-Ann",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var second auth.TokenPair
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&second))

	rec = c.call(http.MethodGet, "/api/v1/tasks", first.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "login revokes earlier access tokens")

	rec = c.call(http.MethodGet, "/api/v1/tasks", second.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.call(http.MethodPost, "/api/v1/auth/refresh-token", second.RefreshToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var third auth.TokenPair
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&third))
	assert.Equal(t, second.RefreshToken, third.RefreshToken)

	rec = c.call(http.MethodGet, "/api/v1/tasks", second.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = c.call(http.MethodGet, "/api/v1/tasks", third.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.call(http.MethodPost, "/api/v1/auth/refresh-token", third.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "an access token is not a refresh token")
}

func TestAuthRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig("ratelimit")
	cfg.RateLimit.RequestsPerMinute = 2
	c := client{t: t, router: newTestApp(t, cfg)}

	body := map[string]string{"email": "nobody@example.com", "password": "x"}
	for i := 0; i < 2; i++ {
		rec := c.call(http.MethodPost, "/api/v1/auth/authenticate", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := c.call(http.MethodPost, "/api/v1/auth/authenticate", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = c.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "only auth routes are limited")
}

func TestAuthRateLimit_ForwardedHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		trust     bool
		wantThird int
	}{
		{"headers ignored by default", false, http.StatusTooManyRequests},
		{"headers honored when trusted", true, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig("forwarded_" + strings.ReplaceAll(tc.name, " ", "_"))
			cfg.RateLimit.RequestsPerMinute = 2
			cfg.RateLimit.TrustProxyHeaders = tc.trust
			router := newTestApp(t, cfg)

			send := func(i int) int {
				body := strings.NewReader(`{"email":"nobody@example.com","password":"x"}`)
				req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/authenticate", body)
				req.RemoteAddr = "192.0.2.10:4000"
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)
				return rec.Code
			}

			assert.Equal(t, http.StatusUnauthorized, send(0))
			assert.Equal(t, http.StatusUnauthorized, send(1))
			assert.Equal(t, tc.wantThird, send(2))
		})
	}
}
