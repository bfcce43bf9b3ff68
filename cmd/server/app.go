package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/config"
	"github.com/phrazzld/tasktracker-api/internal/events"
	"github.com/phrazzld/tasktracker-api/internal/platform/ratelimit"
	"github.com/phrazzld/tasktracker-api/internal/service"
	"github.com/phrazzld/tasktracker-api/internal/service/auth"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	stores *stores

	sessions *auth.SessionService
	tasks    service.TaskService
	sweeper  *auth.TokenSweeper

	// limiter is nil when rate limiting is disabled.
	limiter ratelimit.Limiter

	closers []func()
}

// newApplication wires every dependency for cfg. On error the partially
// built application is cleaned up before returning.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}
	ready := false
	defer func() {
		if !ready {
			app.cleanup()
		}
	}()

	var err error
	app.stores, err = openStores(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db := app.stores.db
	app.closers = append(app.closers, func() { _ = db.Close() })

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	app.sessions, err = auth.NewSessionService(
		app.stores.users,
		app.stores.tokens,
		app.stores.transactor,
		jwtService,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewAuditLogHandler(logger))

	app.tasks, err = service.NewTaskService(app.stores.tasks, app.stores.users, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	if err := app.setupRateLimiter(); err != nil {
		return nil, err
	}

	app.sweeper = auth.NewTokenSweeper(
		app.stores.tokens,
		time.Duration(cfg.Auth.TokenSweepIntervalMinutes)*time.Minute,
		logger,
	)
	app.sweeper.Start()
	app.closers = append(app.closers, app.sweeper.Stop)

	logger.Info("application initialized",
		"driver", cfg.Database.Driver,
		"rate_limit_per_minute", cfg.RateLimit.RequestsPerMinute)
	ready = true
	return app, nil
}

func (app *application) setupRateLimiter() error {
	cfg := app.config.RateLimit
	switch {
	case cfg.RequestsPerMinute <= 0:
		return nil
	case cfg.RedisAddr != "":
		client, err := ratelimit.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		app.limiter = ratelimit.NewRedisLimiter(client, cfg.RequestsPerMinute)
	default:
		app.limiter = ratelimit.NewMemoryLimiter(cfg.RequestsPerMinute)
	}
	return nil
}

// cleanup releases resources in reverse order of acquisition.
func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}
