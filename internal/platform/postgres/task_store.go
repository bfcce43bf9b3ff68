package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

// commentTaskFK is the default name Postgres gives comments.task_id's
// foreign key.
const commentTaskFK = "comments_task_id_fkey"

const taskColumns = `id, author_id, executor_id, title, description, priority, status, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the author or executor does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (author_id, executor_id, title, description, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.AuthorID,
		task.ExecutorID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("author_id", task.AuthorID),
			slog.Int64("executor_id", task.ExecutorID))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.Int64("author_id", task.AuthorID),
		slog.Int64("executor_id", task.ExecutorID))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// The returned task carries its comments ordered by creation time.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("retrieving task by ID", slog.Int64("task_id", id))

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to retrieve task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	comments, err := s.commentsFor(ctx, id)
	if err != nil {
		log.Error("failed to retrieve task comments",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}
	task.Comments = comments

	return task, nil
}

// GetSummary implements store.TaskStore.GetSummary
func (s *PostgresTaskStore) GetSummary(ctx context.Context, id int64) (*domain.TaskSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var summary domain.TaskSummary
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, status FROM tasks WHERE id = $1`, id,
	).Scan(&summary.ID, &summary.Title, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to retrieve task summary",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}
	summary.Status = domain.TaskStatus(status)
	return &summary, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update", slog.String("error", err.Error()))
		return err
	}

	task.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE tasks
		SET executor_id = $1, title = $2, description = $3, priority = $4, status = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.ExecutorID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task updated", slog.Int64("task_id", task.ID))
	return nil
}

// Delete implements store.TaskStore.Delete
// Comments go with the task through ON DELETE CASCADE.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task deleted", slog.Int64("task_id", id))
	return nil
}

// CreateComment implements store.TaskStore.CreateComment
func (s *PostgresTaskStore) CreateComment(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO comments (task_id, author_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		comment.TaskID,
		comment.AuthorID,
		comment.Text,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID)
	if err != nil {
		// The task may have been deleted after the caller loaded it.
		if IsForeignKeyViolation(err) && constraintName(err) == commentTaskFK {
			log.Warn("comment references a missing task",
				slog.Int64("task_id", comment.TaskID))
			return fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
		}
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.Int64("task_id", comment.TaskID))
		return MapError(err)
	}

	log.Debug("comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("task_id", comment.TaskID))
	return nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	page store.PageRequest,
) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	page = page.Normalize()

	where, args := buildTaskFilter(filter)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM tasks%s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		taskColumns, where, len(args)+1, len(args)+2,
	)
	tasks, err := s.queryTasks(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, err
	}

	return &store.TaskPage{Tasks: tasks, Page: page.Page, Size: page.Size, Total: total}, nil
}

// ListAfter implements store.TaskStore.ListAfter
func (s *PostgresTaskStore) ListAfter(ctx context.Context, afterID int64, limit int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id > $1 ORDER BY id ASC LIMIT $2`
	tasks, err := s.queryTasks(ctx, query, afterID, limit)
	if err != nil {
		log.Error("failed to list tasks after cursor",
			slog.String("error", err.Error()),
			slog.Int64("after_id", afterID))
		return nil, err
	}
	return tasks, nil
}

// buildTaskFilter renders the set fields of filter as a WHERE clause with
// positional parameters.
func buildTaskFilter(filter store.TaskFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Status != nil {
		add("status", string(*filter.Status))
	}
	if filter.Priority != nil {
		add("priority", string(*filter.Priority))
	}
	if filter.AuthorID != nil {
		add("author_id", *filter.AuthorID)
	}
	if filter.ExecutorID != nil {
		add("executor_id", *filter.ExecutorID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

func (s *PostgresTaskStore) commentsFor(ctx context.Context, taskID int64) ([]domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, author_id, text, created_at, updated_at
		FROM comments
		WHERE task_id = $1
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return comments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var priority, status string
	if err := row.Scan(
		&task.ID,
		&task.AuthorID,
		&task.ExecutorID,
		&task.Title,
		&task.Description,
		&priority,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	return &task, nil
}
