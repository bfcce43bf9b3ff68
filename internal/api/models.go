package api

import (
	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=1,max=72"`
	Role     string `json:"role"     validate:"required"`
}

// AuthenticateRequest defines the payload for the login endpoint.
type AuthenticateRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TaskRequest defines the payload for creating or replacing a task.
type TaskRequest struct {
	ExecutorID  int64  `json:"executor_id" validate:"required,gt=0"`
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Priority    string `json:"priority"    validate:"required"`
	Status      string `json:"status"      validate:"required"`
}

// StatusRequest defines the payload for the status endpoint.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CommentRequest defines the payload for adding a comment.
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// TaskPageResponse is one page of an offset listing.
type TaskPageResponse struct {
	Tasks         []*domain.Task `json:"tasks"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int            `json:"total_pages"`
}

func pageToResponse(p *store.TaskPage) TaskPageResponse {
	tasks := p.Tasks
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return TaskPageResponse{
		Tasks:         tasks,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages(),
	}
}
