package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
)

// AuditLogHandler writes every task event to the structured log.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates an AuditLogHandler.
func NewAuditLogHandler(logger *slog.Logger) *AuditLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogHandler{logger: logger.With("component", "audit")}
}

var _ EventHandler = (*AuditLogHandler)(nil)

// HandleEvent implements EventHandler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.Int64("task_id", event.TaskID),
		slog.Int64("actor_id", event.ActorID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if len(event.Payload) > 0 {
		attrs = append(attrs, slog.String("payload", string(event.Payload)))
	}

	logger.FromContextOrDefault(ctx, h.logger).Info("task event", attrs...)
	return nil
}
