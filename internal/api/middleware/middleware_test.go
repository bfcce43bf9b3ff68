package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/tasktracker-api/internal/api/shared"
	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/platform/ratelimit"
	"github.com/phrazzld/tasktracker-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	user *domain.User
	err  error
	got  string
}

func (s *stubValidator) ValidateAccessToken(_ context.Context, token string) (*domain.User, error) {
	s.got = token
	return s.user, s.err
}

func TestTrace(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewTestLogger()
	var seen string
	h := Trace(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get(TraceHeader))
	logger.AssertLogField(t, buf, "trace_id", seen)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		validator  *stubValidator
		wantStatus int
		wantUserID int64
	}{
		{"missing header", "", &stubValidator{}, http.StatusUnauthorized, 0},
		{"wrong scheme", "Basic abc", &stubValidator{}, http.StatusUnauthorized, 0},
		{"revoked", "Bearer tok", &stubValidator{err: auth.ErrTokenRevoked}, http.StatusUnauthorized, 0},
		{"expired", "Bearer tok", &stubValidator{err: auth.ErrExpiredToken}, http.StatusUnauthorized, 0},
		{"store failure", "Bearer tok", &stubValidator{err: errors.New("db down")}, http.StatusInternalServerError, 0},
		{"valid", "Bearer tok", &stubValidator{user: &domain.User{ID: 5}}, http.StatusOK, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var userID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID, _ = shared.GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			NewAuthMiddleware(tc.validator, nil).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantUserID, userID)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, "tok", tc.validator.got)
			}
		})
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimit(ratelimit.NewMemoryLimiter(2))(ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/authenticate", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodPost, "/", nil)
	other.RemoteAddr = "10.1.1.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	RateLimit(failingLimiter{})(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
