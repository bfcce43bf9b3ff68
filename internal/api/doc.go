// Package api provides the HTTP handlers of the task tracker.
//
// Handlers decode and validate the request, call one service method and
// translate the result. Errors are mapped to status codes in one place
// (MapErrorToStatusCode) so every endpoint reports the same failure the
// same way; only sanitized messages reach the client.
package api
