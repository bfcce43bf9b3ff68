package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasktracker-api/internal/api/shared"
	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/service/auth"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

// getPathID extracts a positive integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrInvalidID)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// getPageRequest reads the zero-based page and size query parameters.
func getPageRequest(r *http.Request) (store.PageRequest, error) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		return store.PageRequest{}, err
	}
	if page < 0 {
		return store.PageRequest{}, domain.NewValidationError("page", "must not be negative", domain.ErrValidation)
	}
	size, err := queryInt(r, "size", store.DefaultPageSize)
	if err != nil {
		return store.PageRequest{}, err
	}
	if size < 1 || size > store.MaxPageSize {
		return store.PageRequest{}, domain.NewValidationError("size", "must be between 1 and 100", domain.ErrValidation)
	}
	return store.PageRequest{Page: page, Size: size}, nil
}

// requireUserID returns the authenticated user's ID or writes a 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return 0, false
	}
	return userID, true
}

// decodeAndValidate decodes the body into v and validates it, writing a 400
// on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		HandleValidationError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleValidationError(w, r, err)
		return false
	}
	return true
}

func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
