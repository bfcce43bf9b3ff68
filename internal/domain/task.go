package domain

import (
	"errors"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task. Any status may follow any
// other; only the right to change it is restricted.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// TaskPriority ranks a task.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// Common validation errors for Task
var (
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrEmptyTaskAuthor   = errors.New("task author cannot be empty")
	ErrEmptyTaskExecutor = errors.New("task executor cannot be empty")
)

// ParseTaskStatus converts a status name into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", NewValidationError(
			"status",
			"must be one of PENDING, IN_PROGRESS, COMPLETED",
			ErrInvalidStatus,
		)
	}
	return status, nil
}

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// ParseTaskPriority converts a priority name into a TaskPriority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	priority := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	if !priority.IsValid() {
		return "", NewValidationError(
			"priority",
			"must be one of LOW, MEDIUM, HIGH",
			ErrInvalidPriority,
		)
	}
	return priority, nil
}

// IsValid reports whether p is a known priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work assigned by an author to an executor.
// Comments are populated by the store on single-task reads and are
// ordered by creation time.
type Task struct {
	ID          int64        `json:"id"`
	AuthorID    int64        `json:"author_id"`
	ExecutorID  int64        `json:"executor_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Comments    []Comment    `json:"comments"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskSummary is the short projection of a task.
type TaskSummary struct {
	ID     int64      `json:"id"`
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
}

// NewTask creates a new Task. Status and priority are taken as given.
func NewTask(
	authorID, executorID int64,
	title, description string,
	priority TaskPriority,
	status TaskStatus,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		AuthorID:    authorID,
		ExecutorID:  executorID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Priority:    priority,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.AuthorID <= 0 {
		return NewValidationError("author_id", ErrEmptyTaskAuthor.Error(), ErrInvalidID)
	}

	if t.ExecutorID <= 0 {
		return NewValidationError("executor_id", ErrEmptyTaskExecutor.Error(), ErrInvalidID)
	}

	if t.Title == "" {
		return NewValidationError("title", ErrEmptyTaskTitle.Error(), ErrEmptyContent)
	}

	if !t.Priority.IsValid() {
		return NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH", ErrInvalidPriority)
	}

	if !t.Status.IsValid() {
		return NewValidationError(
			"status",
			"must be one of PENDING, IN_PROGRESS, COMPLETED",
			ErrInvalidStatus,
		)
	}

	return nil
}

// UpdateStatus sets a new status and bumps UpdatedAt.
func (t *Task) UpdateStatus(status TaskStatus) error {
	if !status.IsValid() {
		return NewValidationError(
			"status",
			"must be one of PENDING, IN_PROGRESS, COMPLETED",
			ErrInvalidStatus,
		)
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Summary returns the short projection of the task.
func (t *Task) Summary() TaskSummary {
	return TaskSummary{ID: t.ID, Title: t.Title, Status: t.Status}
}
