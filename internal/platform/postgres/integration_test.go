//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/domain"
	"github.com/phrazzld/tasktracker-api/internal/platform/postgres"
	"github.com/phrazzld/tasktracker-api/internal/store"
	"github.com/phrazzld/tasktracker-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoresAgainstPostgres(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		tokens := postgres.NewPostgresTokenStore(tx, nil)

		author, err := domain.NewUser("Author", "author-it@example.com", "hash", domain.RoleAdmin)
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, author))
		executor, err := domain.NewUser("Exec", "exec-it@example.com", "hash", domain.RoleUser)
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, executor))

		dup, err := domain.NewUser("Dup", "author-it@example.com", "hash", domain.RoleUser)
		require.NoError(t, err)

		// A failed insert aborts a PostgreSQL transaction, so probe it
		// behind a savepoint.
		_, err = tx.ExecContext(ctx, "SAVEPOINT dup")
		require.NoError(t, err)
		assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)
		_, err = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT dup")
		require.NoError(t, err)

		task, err := domain.NewTask(author.ID, executor.ID, "Integrate", "", domain.TaskPriorityLow, domain.TaskStatusPending)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))

		comment, err := domain.NewComment(task.ID, executor.ID, "first")
		require.NoError(t, err)
		require.NoError(t, tasks.CreateComment(ctx, comment))

		found, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, found.Comments, 1)
		assert.Equal(t, "first", found.Comments[0].Text)

		status := domain.TaskStatusPending
		page, err := tasks.List(ctx, store.TaskFilter{Status: &status, ExecutorID: &executor.ID}, store.PageRequest{Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)

		live := domain.NewBearerToken(executor.ID, "live-token-it", time.Now().Add(time.Hour))
		stale := domain.NewBearerToken(executor.ID, "stale-token-it", time.Now().Add(-time.Minute))
		require.NoError(t, tokens.Save(ctx, live))
		require.NoError(t, tokens.Save(ctx, stale))

		n, err := tokens.ExpireElapsed(ctx, time.Now())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))

		valid, err := tokens.FindAllValid(ctx, executor.ID)
		require.NoError(t, err)
		require.Len(t, valid, 1)
		assert.Equal(t, "live-token-it", valid[0].Value)

		require.NoError(t, tasks.Delete(ctx, task.ID))
		_, err = tasks.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}
