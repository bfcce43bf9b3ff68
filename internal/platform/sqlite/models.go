package sqlite

import (
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
)

type userModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(10);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

type taskModel struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	AuthorID    int64          `gorm:"not null;index"`
	Author      *userModel     `gorm:"foreignKey:AuthorID"`
	ExecutorID  int64          `gorm:"not null;index"`
	Executor    *userModel     `gorm:"foreignKey:ExecutorID"`
	Title       string         `gorm:"not null"`
	Description string         `gorm:"not null;default:''"`
	Priority    string         `gorm:"type:varchar(10);not null"`
	Status      string         `gorm:"type:varchar(20);not null;index"`
	Comments    []commentModel `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskModel) TableName() string { return "tasks" }

type commentModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	TaskID    int64      `gorm:"not null;index"`
	AuthorID  int64      `gorm:"not null"`
	Author    *userModel `gorm:"foreignKey:AuthorID"`
	Text      string     `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (commentModel) TableName() string { return "comments" }

type tokenModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	UserID    int64      `gorm:"not null;index"`
	User      *userModel `gorm:"foreignKey:UserID"`
	Value     string     `gorm:"not null;uniqueIndex"`
	TokenType string     `gorm:"type:varchar(10);not null;default:BEARER"`
	Revoked   bool       `gorm:"not null;default:false"`
	Expired   bool       `gorm:"not null;default:false"`
	ExpiresAt time.Time  `gorm:"not null"`
	CreatedAt time.Time
}

func (tokenModel) TableName() string { return "tokens" }

func userFromDomain(u *domain.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func taskFromDomain(t *domain.Task) *taskModel {
	return &taskModel{
		ID:          t.ID,
		AuthorID:    t.AuthorID,
		ExecutorID:  t.ExecutorID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m *taskModel) toDomain() *domain.Task {
	task := &domain.Task{
		ID:          m.ID,
		AuthorID:    m.AuthorID,
		ExecutorID:  m.ExecutorID,
		Title:       m.Title,
		Description: m.Description,
		Priority:    domain.TaskPriority(m.Priority),
		Status:      domain.TaskStatus(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if m.Comments != nil {
		task.Comments = make([]domain.Comment, 0, len(m.Comments))
		for i := range m.Comments {
			task.Comments = append(task.Comments, *m.Comments[i].toDomain())
		}
	}
	return task
}

func commentFromDomain(c *domain.Comment) *commentModel {
	return &commentModel{
		ID:        c.ID,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *commentModel) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        m.ID,
		TaskID:    m.TaskID,
		AuthorID:  m.AuthorID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func tokenFromDomain(t *domain.Token) *tokenModel {
	return &tokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Value:     t.Value,
		TokenType: string(t.Type),
		Revoked:   t.Revoked,
		Expired:   t.Expired,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}

func (m *tokenModel) toDomain() *domain.Token {
	return &domain.Token{
		ID:        m.ID,
		UserID:    m.UserID,
		Value:     m.Value,
		Type:      domain.TokenType(m.TokenType),
		Revoked:   m.Revoked,
		Expired:   m.Expired,
		ExpiresAt: m.ExpiresAt.UTC(),
		CreatedAt: m.CreatedAt.UTC(),
	}
}
