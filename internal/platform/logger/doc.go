// Package logger provides structured logging for the application using the
// standard library log/slog package. It configures the JSON handler from
// server configuration and carries request-scoped loggers in a context.
package logger
