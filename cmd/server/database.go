package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/config"
	"github.com/phrazzld/tasktracker-api/internal/platform/postgres"
	"github.com/phrazzld/tasktracker-api/internal/platform/sqlite"
	"github.com/phrazzld/tasktracker-api/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// stores groups the persistence collaborators of one database driver.
type stores struct {
	db         *sql.DB
	users      store.UserStore
	tasks      store.TaskStore
	tokens     store.TokenStore
	transactor store.Transactor
}

// openPostgres establishes a connection to PostgreSQL and configures the pool.
func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(max(1, cfg.MaxOpenConns/2))
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", "driver", driverPostgres)
	return db, nil
}

// openStores builds the stores for the configured driver.
func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	switch cfg.Driver {
	case driverPostgres:
		db, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &stores{
			db:         db,
			users:      postgres.NewPostgresUserStore(db, logger),
			tasks:      postgres.NewPostgresTaskStore(db, logger),
			tokens:     postgres.NewPostgresTokenStore(db, logger),
			transactor: store.NewSQLTransactor(db),
		}, nil

	case driverSQLite:
		gdb, err := sqlite.Open(cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		db, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		return &stores{
			db:         db,
			users:      sqlite.NewUserStore(gdb, logger),
			tasks:      sqlite.NewTaskStore(gdb, logger),
			tokens:     sqlite.NewTokenStore(gdb, logger),
			transactor: store.NewSQLTransactor(db),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
