package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a kind of task mutation.
type EventType string

// Task lifecycle event types.
const (
	TaskCreated       EventType = "task.created"
	TaskUpdated       EventType = "task.updated"
	TaskStatusChanged EventType = "task.status_changed"
	TaskCommentAdded  EventType = "task.comment_added"
	TaskDeleted       EventType = "task.deleted"
)

// TaskEvent records a single mutation of a task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type    EventType `json:"type"`
	TaskID  int64     `json:"task_id"`
	ActorID int64     `json:"actor_id"`

	// Payload holds type-specific details serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates a TaskEvent. A nil payload is left empty.
func NewTaskEvent(eventType EventType, taskID, actorID int64, payload interface{}) (*TaskEvent, error) {
	event := &TaskEvent{
		ID:         uuid.New(),
		Type:       eventType,
		TaskID:     taskID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Payload = payloadBytes
	}

	return event, nil
}

// StatusChange is the payload of TaskStatusChanged.
type StatusChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CommentAdded is the payload of TaskCommentAdded.
type CommentAdded struct {
	CommentID int64 `json:"comment_id"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
