package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStore implements store.TaskStore with gorm.
type TaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTaskStore creates a gorm-backed TaskStore.
func NewTaskStore(db *gorm.DB, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{db: db, logger: logger.With(slog.String("component", "task_store"))}
}

var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: withTx(s.db, tx), logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	m := taskFromDomain(task)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return mapError(err, store.ErrTaskNotFound)
	}

	task.ID = m.ID
	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.Int64("author_id", task.AuthorID),
		slog.Int64("executor_id", task.ExecutorID))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var m taskModel
	err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}

	task := m.toDomain()
	if task.Comments == nil {
		task.Comments = []domain.Comment{}
	}
	return task, nil
}

// GetSummary implements store.TaskStore.GetSummary
func (s *TaskStore) GetSummary(ctx context.Context, id int64) (*domain.TaskSummary, error) {
	var m taskModel
	err := s.db.WithContext(ctx).Select("id", "title", "status").First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}
	return &domain.TaskSummary{ID: m.ID, Title: m.Title, Status: domain.TaskStatus(m.Status)}, nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	task.UpdatedAt = time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&taskModel{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"executor_id": task.ExecutorID,
			"title":       task.Title,
			"description": task.Description,
			"priority":    string(task.Priority),
			"status":      string(task.Status),
			"updated_at":  task.UpdatedAt,
		})
	if res.Error != nil {
		return mapError(res.Error, store.ErrTaskNotFound)
	}
	if res.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&taskModel{}, "id = ?", id)
	if res.Error != nil {
		return mapError(res.Error, store.ErrTaskNotFound)
	}
	if res.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// CreateComment implements store.TaskStore.CreateComment
func (s *TaskStore) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if err := comment.Validate(); err != nil {
		return err
	}

	m := commentFromDomain(comment)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return mapError(err, store.ErrTaskNotFound)
	}
	comment.ID = m.ID
	return nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	page store.PageRequest,
) (*store.TaskPage, error) {
	page = page.Normalize()
	query := applyFilter(s.db.WithContext(ctx).Model(&taskModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}

	var models []taskModel
	err := applyFilter(s.db.WithContext(ctx), filter).
		Order("id ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}

	return &store.TaskPage{Tasks: toDomainTasks(models), Page: page.Page, Size: page.Size, Total: total}, nil
}

// ListAfter implements store.TaskStore.ListAfter
func (s *TaskStore) ListAfter(ctx context.Context, afterID int64, limit int) ([]*domain.Task, error) {
	var models []taskModel
	err := s.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}
	return toDomainTasks(models), nil
}

func applyFilter(db *gorm.DB, filter store.TaskFilter) *gorm.DB {
	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		db = db.Where("priority = ?", string(*filter.Priority))
	}
	if filter.AuthorID != nil {
		db = db.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.ExecutorID != nil {
		db = db.Where("executor_id = ?", *filter.ExecutorID)
	}
	return db
}

func toDomainTasks(models []taskModel) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(models))
	for i := range models {
		tasks = append(tasks, models[i].toDomain())
	}
	return tasks
}
