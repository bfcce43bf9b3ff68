package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/pagination"
	"github.com/phrazzld/tasktracker-api/internal/service"
	"github.com/phrazzld/tasktracker-api/internal/service/auth"
	"github.com/phrazzld/tasktracker-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"revoked token", auth.ErrTokenRevoked, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("%w: task 3", service.ErrForbidden), http.StatusForbidden},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"wrapped user not found", service.NewTaskServiceError("op", "msg", store.ErrUserNotFound), http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"invalid status", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"invalid cursor", pagination.ErrInvalidCursor, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage_HidesInternals(t *testing.T) {
	t.Parallel()

	err := errors.New(`pq: relation "tasks" does not exist at /srv/app/store.go`)
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(err))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Task not found", GetSafeErrorMessage(store.ErrTaskNotFound))

	v := domain.NewValidationError("status", "must be one of PENDING, IN_PROGRESS, COMPLETED", domain.ErrInvalidStatus)
	assert.Equal(t, "status: must be one of PENDING, IN_PROGRESS, COMPLETED", GetSafeErrorMessage(v))
}
