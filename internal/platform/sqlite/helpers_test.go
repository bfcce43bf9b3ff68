package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("%s_%d", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := OpenMemory(name, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, s *UserStore, email string, role domain.Role) *domain.User {
	t.Helper()

	user, err := domain.NewUser("user "+email, email, "hash", role)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), user))
	return user
}

func seedTask(t *testing.T, s *TaskStore, authorID, executorID int64, status domain.TaskStatus, priority domain.TaskPriority) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(authorID, executorID, "task", "", priority, status)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), task))
	return task
}
