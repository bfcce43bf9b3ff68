package domain

import (
	"strings"
	"time"
)

// Comment is a note left on a task. It belongs to exactly one task and is
// deleted with it.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	AuthorID  int64     `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewComment creates a new Comment on taskID written by authorID.
func NewComment(taskID, authorID int64, text string) (*Comment, error) {
	now := time.Now().UTC()
	comment := &Comment{
		TaskID:    taskID,
		AuthorID:  authorID,
		Text:      strings.TrimSpace(text),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.TaskID <= 0 {
		return NewValidationError("task_id", "must be a positive ID", ErrInvalidID)
	}
	if c.AuthorID <= 0 {
		return NewValidationError("author_id", "must be a positive ID", ErrInvalidID)
	}
	if c.Text == "" {
		return NewValidationError("text", "comment text cannot be empty", ErrEmptyContent)
	}
	return nil
}
