package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/tasktracker-api/internal/domain"
)

// Page size bounds for offset listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TaskFilter narrows a task listing. A nil field matches any value; set
// fields are combined with AND.
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AuthorID   *int64
	ExecutorID *int64
}

// PageRequest selects one page of an offset listing. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request into the supported range.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	switch {
	case p.Size <= 0:
		p.Size = DefaultPageSize
	case p.Size > MaxPageSize:
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows preceding the page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// TaskPage is one page of tasks ordered by ascending ID.
type TaskPage struct {
	Tasks []*domain.Task
	Page  int
	Size  int
	Total int64
}

// TotalPages is the number of pages needed to cover Total.
func (p *TaskPage) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// TaskStore defines the interface for task and comment persistence.
type TaskStore interface {
	// Create saves a new task and sets its ID.
	// Returns ErrInvalidEntity if the author or executor does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its comments ordered by creation.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// GetSummary retrieves the ID, title and status of a task.
	// Returns ErrTaskNotFound if the task does not exist.
	GetSummary(ctx context.Context, id int64) (*domain.TaskSummary, error)

	// Update overwrites the executor, title, description, priority and status.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and, by cascade, its comments.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// CreateComment saves a new comment and sets its ID.
	CreateComment(ctx context.Context, comment *domain.Comment) error

	// List returns the requested page of tasks matching filter, ordered by
	// ascending ID. Comments are not loaded.
	List(ctx context.Context, filter TaskFilter, page PageRequest) (*TaskPage, error)

	// ListAfter returns up to limit tasks with ID greater than afterID,
	// ordered by ascending ID. Comments are not loaded.
	ListAfter(ctx context.Context, afterID int64, limit int) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
