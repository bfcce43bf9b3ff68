//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds each setup step against the database.
const TestTimeout = 10 * time.Second

// migrateOnce guards goose, which keeps its settings in package state.
var migrateOnce sync.Mutex

// GetTestDatabaseURL returns DATABASE_URL, or "" when integration tests
// should be skipped.
func GetTestDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// Open connects to the test database and migrates it to the latest schema.
// The test is skipped when no database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open database connection")
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Minute)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "database ping failed for %s", maskDatabaseURL(dbURL))

	migrateOnce.Lock()
	defer migrateOnce.Unlock()

	_, log := logger.NewTestLogger()
	require.NoError(t, postgres.Migrate(ctx, db, "up", log), "failed to apply migrations")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// can write freely without affecting each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// maskDatabaseURL hides the password of a connection URL.
func maskDatabaseURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[unparseable database URL]"
	}
	if parsed.User == nil {
		return dbURL
	}
	if _, ok := parsed.User.Password(); ok {
		parsed.User = url.UserPassword(parsed.User.Username(), "xxxxx")
	}
	return parsed.String()
}
