package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/events"
	"github.com/phrazzld/tasktracker-api/internal/pagination"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

// TaskInput carries the writable fields of a task. Priority and Status are
// enum names; parsing ignores case.
type TaskInput struct {
	ExecutorID  int64
	Title       string
	Description string
	Priority    string
	Status      string
}

// TaskService is the access-controlled task lifecycle.
type TaskService interface {
	// Create stores a new task written by authorID.
	Create(ctx context.Context, in TaskInput, authorID int64) (*domain.Task, error)

	// Update overwrites every writable field. Gated by the permission rule.
	Update(ctx context.Context, taskID int64, in TaskInput, actorID int64) (*domain.Task, error)

	// UpdateStatus changes the status only. Gated by the permission rule.
	UpdateStatus(ctx context.Context, taskID int64, status string, actorID int64) (*domain.Task, error)

	// AddComment appends a comment. Gated by the permission rule.
	AddComment(ctx context.Context, taskID, actorID int64, text string) (*domain.Comment, error)

	// Delete removes the task and its comments. Gated by the permission rule.
	Delete(ctx context.Context, taskID, actorID int64) error

	GetTask(ctx context.Context, taskID int64) (*domain.Task, error)
	GetSummary(ctx context.Context, taskID int64) (*domain.TaskSummary, error)
	ListAll(ctx context.Context, page store.PageRequest) (*store.TaskPage, error)
	ListByExecutor(ctx context.Context, executorID int64, page store.PageRequest) (*store.TaskPage, error)
	ListByAuthor(ctx context.Context, authorID int64, page store.PageRequest) (*store.TaskPage, error)
	ListByStatus(ctx context.Context, status string, page store.PageRequest) (*store.TaskPage, error)

	// Filter lists tasks matching both optional predicates. An empty
	// status or priority matches any value.
	Filter(ctx context.Context, status, priority string, page store.PageRequest) (*store.TaskPage, error)

	// Connection returns a forward page of all tasks ordered by ID.
	Connection(ctx context.Context, first int, after *string) (*pagination.Connection[*domain.Task], error)
}

type taskServiceImpl struct {
	tasks     store.TaskStore
	users     store.UserStore
	emitter   events.EventEmitter
	paginator *pagination.Paginator[*domain.Task]
	logger    *slog.Logger
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, NewTaskServiceError("create_service", "tasks cannot be nil", store.ErrInvalidEntity)
	}
	if users == nil {
		return nil, NewTaskServiceError("create_service", "users cannot be nil", store.ErrInvalidEntity)
	}
	if emitter == nil {
		return nil, NewTaskServiceError("create_service", "emitter cannot be nil", store.ErrInvalidEntity)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:     tasks,
		users:     users,
		emitter:   emitter,
		paginator: pagination.NewPaginator[*domain.Task](tasks.ListAfter, func(t *domain.Task) int64 { return t.ID }),
		logger:    logger.With("component", "task_service"),
	}, nil
}

// Create implements TaskService.
func (s *taskServiceImpl) Create(ctx context.Context, in TaskInput, authorID int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.ExecutorID); err != nil {
		return nil, err
	}

	priority, status, err := parseEnums(in)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(authorID, in.ExecutorID, in.Title, in.Description, priority, status)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}
	task.Comments = []domain.Comment{}

	log.Info("task created", "task_id", task.ID, "author_id", authorID, "executor_id", task.ExecutorID)
	s.emit(ctx, events.TaskCreated, task.ID, authorID, nil)
	return task, nil
}

// Update implements TaskService.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	taskID int64,
	in TaskInput,
	actorID int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.users.GetByID(ctx, in.ExecutorID); err != nil {
		return nil, err
	}
	actor, task, err := s.authorize(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	priority, status, err := parseEnums(in)
	if err != nil {
		return nil, err
	}

	updated := *task
	updated.ExecutorID = in.ExecutorID
	updated.Title = strings.TrimSpace(in.Title)
	updated.Description = in.Description
	updated.Priority = priority
	updated.Status = status
	updated.UpdatedAt = time.Now().UTC()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, &updated); err != nil {
		return nil, NewTaskServiceError("update_task", "failed to save task", err)
	}

	log.Info("task updated", "task_id", taskID, "actor_id", actor.ID)
	s.emit(ctx, events.TaskUpdated, taskID, actor.ID, nil)
	return &updated, nil
}

// UpdateStatus implements TaskService.
func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	taskID int64,
	status string,
	actorID int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	actor, task, err := s.authorize(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	newStatus, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}

	previous := task.Status
	if err := task.UpdateStatus(newStatus); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewTaskServiceError("update_status", "failed to save task", err)
	}

	log.Info("task status changed",
		"task_id", taskID,
		"actor_id", actor.ID,
		"from", previous,
		"to", newStatus)
	s.emit(ctx, events.TaskStatusChanged, taskID, actor.ID,
		events.StatusChange{From: string(previous), To: string(newStatus)})
	return task, nil
}

// AddComment implements TaskService.
func (s *taskServiceImpl) AddComment(
	ctx context.Context,
	taskID, actorID int64,
	text string,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	actor, task, err := s.authorize(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	comment, err := domain.NewComment(task.ID, actor.ID, text)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.CreateComment(ctx, comment); err != nil {
		return nil, NewTaskServiceError("add_comment", "failed to save comment", err)
	}

	log.Info("comment added", "task_id", taskID, "comment_id", comment.ID, "actor_id", actor.ID)
	s.emit(ctx, events.TaskCommentAdded, taskID, actor.ID, events.CommentAdded{CommentID: comment.ID})
	return comment, nil
}

// Delete implements TaskService.
func (s *taskServiceImpl) Delete(ctx context.Context, taskID, actorID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	actor, _, err := s.authorize(ctx, taskID, actorID)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", "task_id", taskID, "actor_id", actor.ID)
	s.emit(ctx, events.TaskDeleted, taskID, actor.ID, nil)
	return nil
}

// GetTask implements TaskService.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	logger.FromContextOrDefault(ctx, s.logger).Debug("fetching task", "task_id", taskID)
	return s.tasks.GetByID(ctx, taskID)
}

// GetSummary implements TaskService.
func (s *taskServiceImpl) GetSummary(ctx context.Context, taskID int64) (*domain.TaskSummary, error) {
	return s.tasks.GetSummary(ctx, taskID)
}

// ListAll implements TaskService.
func (s *taskServiceImpl) ListAll(ctx context.Context, page store.PageRequest) (*store.TaskPage, error) {
	return s.list(ctx, store.TaskFilter{}, page)
}

// ListByExecutor implements TaskService.
func (s *taskServiceImpl) ListByExecutor(
	ctx context.Context,
	executorID int64,
	page store.PageRequest,
) (*store.TaskPage, error) {
	return s.list(ctx, store.TaskFilter{ExecutorID: &executorID}, page)
}

// ListByAuthor implements TaskService.
func (s *taskServiceImpl) ListByAuthor(
	ctx context.Context,
	authorID int64,
	page store.PageRequest,
) (*store.TaskPage, error) {
	return s.list(ctx, store.TaskFilter{AuthorID: &authorID}, page)
}

// ListByStatus implements TaskService.
func (s *taskServiceImpl) ListByStatus(
	ctx context.Context,
	status string,
	page store.PageRequest,
) (*store.TaskPage, error) {
	parsed, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.TaskFilter{Status: &parsed}, page)
}

// Filter implements TaskService.
func (s *taskServiceImpl) Filter(
	ctx context.Context,
	status, priority string,
	page store.PageRequest,
) (*store.TaskPage, error) {
	var filter store.TaskFilter
	if status != "" {
		parsed, err := domain.ParseTaskStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &parsed
	}
	if priority != "" {
		parsed, err := domain.ParseTaskPriority(priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = &parsed
	}
	return s.list(ctx, filter, page)
}

// Connection implements TaskService.
func (s *taskServiceImpl) Connection(
	ctx context.Context,
	first int,
	after *string,
) (*pagination.Connection[*domain.Task], error) {
	return s.paginator.Page(ctx, first, after)
}

func (s *taskServiceImpl) list(
	ctx context.Context,
	filter store.TaskFilter,
	page store.PageRequest,
) (*store.TaskPage, error) {
	logger.FromContextOrDefault(ctx, s.logger).Debug("listing tasks",
		"page", page.Page,
		"size", page.Size)
	return s.tasks.List(ctx, filter, page.Normalize())
}

// authorize resolves the actor and the task and applies the permission rule.
func (s *taskServiceImpl) authorize(
	ctx context.Context,
	taskID, actorID int64,
) (*domain.User, *domain.Task, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanModify(task) {
		logger.FromContextOrDefault(ctx, s.logger).Debug("task mutation denied",
			"task_id", taskID,
			"actor_id", actorID,
			"role", actor.Role)
		return nil, nil, fmt.Errorf("%w: task %d", ErrForbidden, taskID)
	}
	return actor, task, nil
}

// emit publishes a lifecycle event. The mutation has already happened, so
// failures are only logged.
func (s *taskServiceImpl) emit(
	ctx context.Context,
	eventType events.EventType,
	taskID, actorID int64,
	payload interface{},
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(eventType, taskID, actorID, payload)
	if err != nil {
		log.Error("failed to build task event", "error", err, "event_type", eventType)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit task event",
			"error", err,
			"event_type", eventType,
			"task_id", taskID)
	}
}

func parseEnums(in TaskInput) (domain.TaskPriority, domain.TaskStatus, error) {
	priority, err := domain.ParseTaskPriority(in.Priority)
	if err != nil {
		return "", "", err
	}
	status, err := domain.ParseTaskStatus(in.Status)
	if err != nil {
		return "", "", err
	}
	return priority, status, nil
}
