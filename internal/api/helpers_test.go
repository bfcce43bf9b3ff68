package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasktracker-api/internal/api/shared"
	"github.com/phrazzld/tasktracker-api/internal/config"
	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/events"
	"github.com/phrazzld/tasktracker-api/internal/mocks"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/service"
	"github.com/phrazzld/tasktracker-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	users    *mocks.MockUserStore
	tokens   *mocks.MockTokenStore
	sessions *auth.SessionService
	tasks    service.TaskService
	admin    *domain.User
	executor *domain.User
	outsider *domain.User
}

// newTestEnv wires the handlers over in-memory stores. Authenticated routes
// read the acting user from the X-Test-User header instead of a token.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	_, log := logger.NewTestLogger()
	env := &testEnv{
		users:  mocks.NewMockUserStore(),
		tokens: mocks.NewMockTokenStore(),
	}

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "handler-test-secret-that-is-long-enough",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	})
	require.NoError(t, err)

	env.sessions, err = auth.NewSessionService(env.users, env.tokens, &mocks.MockTransactor{},
		jwtService, &mocks.MockPasswordHasher{}, log)
	require.NoError(t, err)

	env.tasks, err = service.NewTaskService(mocks.NewMockTaskStore(), env.users,
		events.NewInMemoryEventEmitter(log), log)
	require.NoError(t, err)

	env.admin = env.users.Seed("Admin", "admin@example.com", domain.RoleAdmin)
	env.executor = env.users.Seed("Exec", "exec@example.com", domain.RoleUser)
	env.outsider = env.users.Seed("Out", "out@example.com", domain.RoleUser)

	authHandler := NewAuthHandler(env.sessions, log)
	taskHandler := NewTaskHandler(env.tasks, log)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/authenticate", authHandler.Authenticate)
	r.Post("/auth/refresh-token", authHandler.RefreshToken)
	r.Group(func(r chi.Router) {
		r.Use(testUserMiddleware)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks/connection", taskHandler.Connection)
		r.Get("/tasks/filter", taskHandler.FilterTasks)
		r.Get("/tasks/executor/{executorID}", taskHandler.ListByExecutor)
		r.Get("/tasks/author/{authorID}", taskHandler.ListByAuthor)
		r.Get("/tasks/status/{status}", taskHandler.ListByStatus)
		r.Get("/tasks/{taskID}", taskHandler.GetTask)
		r.Get("/tasks/{taskID}/summary", taskHandler.GetSummary)
		r.Put("/tasks/{taskID}", taskHandler.UpdateTask)
		r.Put("/tasks/{taskID}/status", taskHandler.UpdateStatus)
		r.Post("/tasks/{taskID}/comments", taskHandler.AddComment)
		r.Delete("/tasks/{taskID}", taskHandler.DeleteTask)
	})
	env.router = r
	return env
}

func testUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id int64
		if v := r.Header.Get("X-Test-User"); v != "" {
			_ = json.Unmarshal([]byte(v), &id)
		}
		if id > 0 {
			r = r.WithContext(shared.SetUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (e *testEnv) do(t *testing.T, method, path string, asUser int64, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = bytes.NewBufferString(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(b)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if asUser > 0 {
		b, _ := json.Marshal(asUser)
		req.Header.Set("X-Test-User", string(b))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}
