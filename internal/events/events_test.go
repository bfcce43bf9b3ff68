package events

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestNewTaskEvent(t *testing.T) {
	t.Parallel()

	event, err := NewTaskEvent(TaskStatusChanged, 4, 2, StatusChange{From: "PENDING", To: "COMPLETED"})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, TaskStatusChanged, event.Type)
	assert.Equal(t, int64(4), event.TaskID)
	assert.Equal(t, int64(2), event.ActorID)
	assert.False(t, event.OccurredAt.IsZero())

	var change StatusChange
	require.NoError(t, event.UnmarshalPayload(&change))
	assert.Equal(t, "COMPLETED", change.To)

	bare, err := NewTaskEvent(TaskDeleted, 4, 2, nil)
	require.NoError(t, err)
	assert.Empty(t, bare.Payload)

	_, err = NewTaskEvent(TaskUpdated, 1, 1, make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	_, log := logger.NewTestLogger()

	t.Run("no handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(log)
		event, err := NewTaskEvent(TaskCreated, 1, 1, nil)
		require.NoError(t, err)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("all handlers run and first error wins", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(log)
		event, err := NewTaskEvent(TaskCreated, 1, 1, nil)
		require.NoError(t, err)

		firstErr := errors.New("first")
		h1, h2, h3 := &mockHandler{}, &mockHandler{}, &mockHandler{}
		h1.On("HandleEvent", mock.Anything, event).Return(nil).Once()
		h2.On("HandleEvent", mock.Anything, event).Return(firstErr).Once()
		h3.On("HandleEvent", mock.Anything, event).Return(errors.New("second")).Once()

		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)
		emitter.RegisterHandler(h3)

		assert.ErrorIs(t, emitter.EmitEvent(context.Background(), event), firstErr)
		h1.AssertExpectations(t)
		h2.AssertExpectations(t)
		h3.AssertExpectations(t)
	})
}

func TestAuditLogHandler(t *testing.T) {
	t.Parallel()

	ctx, buf := logger.NewLogCaptureContext()
	handler := NewAuditLogHandler(nil)

	event, err := NewTaskEvent(TaskCommentAdded, 7, 3, CommentAdded{CommentID: 11})
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(ctx, event))

	logger.AssertLogContains(t, buf, "task event")
	logger.AssertLogField(t, buf, "event_type", "task.comment_added")
	logger.AssertLogField(t, buf, "task_id", float64(7))
	logger.AssertLogContains(t, buf, `comment_id`)
}
