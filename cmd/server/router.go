package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/tasktracker-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasktracker-api/internal/api/middleware"
	"github.com/phrazzld/tasktracker-api/internal/api/shared"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// RealIP rewrites RemoteAddr from client-supplied headers, which the rate
	// limiter keys on.
	if app.config.RateLimit.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	authHandler := api.NewAuthHandler(app.sessions, app.logger)
	taskHandler := api.NewTaskHandler(app.tasks, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.sessions, app.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if app.limiter != nil {
				r.Use(apiMiddleware.RateLimit(app.limiter))
			}
			r.Post("/register", authHandler.Register)
			r.Post("/authenticate", authHandler.Authenticate)
			r.Post("/refresh-token", authHandler.RefreshToken)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/connection", taskHandler.Connection)
			r.Get("/filter", taskHandler.FilterTasks)
			r.Get("/executor/{executorID}", taskHandler.ListByExecutor)
			r.Get("/author/{authorID}", taskHandler.ListByAuthor)
			r.Get("/status/{status}", taskHandler.ListByStatus)

			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Get("/summary", taskHandler.GetSummary)
				r.Put("/status", taskHandler.UpdateStatus)
				r.Post("/comments", taskHandler.AddComment)
			})
		})
	})

	r.Get("/health", app.health)

	return r
}

// health reports whether the database answers a ping.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.stores.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
