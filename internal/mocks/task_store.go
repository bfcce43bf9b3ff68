package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. Listings are
// ordered by ascending ID like the real stores.
type MockTaskStore struct {
	UpdateFn func(ctx context.Context, task *domain.Task) error
	DeleteFn func(ctx context.Context, id int64) error

	mu            sync.Mutex
	tasks         map[int64]*domain.Task
	comments      map[int64][]domain.Comment
	nextID        int64
	nextCommentID int64
}

// NewMockTaskStore creates an empty task store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks:    make(map[int64]*domain.Task),
		comments: make(map[int64][]domain.Comment),
	}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	task.ID = m.nextID
	stored := *task
	stored.Comments = nil
	m.tasks[task.ID] = &stored
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	found := *t
	found.Comments = append([]domain.Comment{}, m.comments[id]...)
	return &found, nil
}

// GetSummary implements the TaskStore interface
func (m *MockTaskStore) GetSummary(ctx context.Context, id int64) (*domain.TaskSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	summary := t.Summary()
	return &summary, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	stored.ExecutorID = task.ExecutorID
	stored.Title = task.Title
	stored.Description = task.Description
	stored.Priority = task.Priority
	stored.Status = task.Status
	stored.UpdatedAt = task.UpdatedAt
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	delete(m.comments, id)
	return nil
}

// CreateComment implements the TaskStore interface
func (m *MockTaskStore) CreateComment(ctx context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[comment.TaskID]; !ok {
		return store.ErrInvalidEntity
	}
	m.nextCommentID++
	comment.ID = m.nextCommentID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	m.comments[comment.TaskID] = append(m.comments[comment.TaskID], *comment)
	return nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter, page store.PageRequest) (*store.TaskPage, error) {
	page = page.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Task
	for _, t := range m.sorted() {
		if matches(t, filter) {
			matched = append(matched, t)
		}
	}

	result := &store.TaskPage{
		Tasks: []*domain.Task{},
		Page:  page.Page,
		Size:  page.Size,
		Total: int64(len(matched)),
	}
	for i := page.Offset(); i < len(matched) && i < page.Offset()+page.Size; i++ {
		found := *matched[i]
		result.Tasks = append(result.Tasks, &found)
	}
	return result, nil
}

// ListAfter implements the TaskStore interface
func (m *MockTaskStore) ListAfter(ctx context.Context, afterID int64, limit int) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*domain.Task{}
	for _, t := range m.sorted() {
		if len(out) == limit {
			break
		}
		if t.ID > afterID {
			found := *t
			out = append(out, &found)
		}
	}
	return out, nil
}

// WithTx returns the same store.
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}

func (m *MockTaskStore) sorted() []*domain.Task {
	out := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matches(t *domain.Task, f store.TaskFilter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.AuthorID != nil && t.AuthorID != *f.AuthorID {
		return false
	}
	if f.ExecutorID != nil && t.ExecutorID != *f.ExecutorID {
		return false
	}
	return true
}
