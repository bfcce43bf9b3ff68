package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasktracker-api/internal/api/shared"
	"github.com/phrazzld/tasktracker-api/internal/platform/logger"
	"github.com/phrazzld/tasktracker-api/internal/service"
	"github.com/phrazzld/tasktracker-api/internal/store"
)

// defaultConnectionSize is used when a connection request omits first.
const defaultConnectionSize = 10

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

func toInput(req TaskRequest) service.TaskInput {
	return service.TaskInput{
		ExecutorID:  req.ExecutorID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	}
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), toInput(req), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// UpdateTask handles PUT /tasks/{taskID}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := getPathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.Update(r.Context(), taskID, toInput(req), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateStatus handles PUT /tasks/{taskID}/status
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := getPathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req StatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), taskID, req.Status, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// AddComment handles POST /tasks/{taskID}/comments
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := getPathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.tasks.AddComment(r.Context(), taskID, userID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add comment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, comment)
}

// DeleteTask handles DELETE /tasks/{taskID}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := getPathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.tasks.Delete(r.Context(), taskID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTask handles GET /tasks/{taskID}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// GetSummary handles GET /tasks/{taskID}/summary
func (h *TaskHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.tasks.GetSummary(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task summary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// ListTasks handles GET /tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.respondPage(w, r, func(page store.PageRequest) (*store.TaskPage, error) {
		return h.tasks.ListAll(r.Context(), page)
	})
}

// FilterTasks handles GET /tasks/filter?status=&priority=
func (h *TaskHandler) FilterTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.respondPage(w, r, func(page store.PageRequest) (*store.TaskPage, error) {
		return h.tasks.Filter(r.Context(), q.Get("status"), q.Get("priority"), page)
	})
}

// ListByExecutor handles GET /tasks/executor/{executorID}
func (h *TaskHandler) ListByExecutor(w http.ResponseWriter, r *http.Request) {
	executorID, err := getPathID(r, "executorID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondPage(w, r, func(page store.PageRequest) (*store.TaskPage, error) {
		return h.tasks.ListByExecutor(r.Context(), executorID, page)
	})
}

// ListByAuthor handles GET /tasks/author/{authorID}
func (h *TaskHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := getPathID(r, "authorID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondPage(w, r, func(page store.PageRequest) (*store.TaskPage, error) {
		return h.tasks.ListByAuthor(r.Context(), authorID, page)
	})
}

// ListByStatus handles GET /tasks/status/{status}
func (h *TaskHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := chiParam(r, "status")
	h.respondPage(w, r, func(page store.PageRequest) (*store.TaskPage, error) {
		return h.tasks.ListByStatus(r.Context(), status, page)
	})
}

// Connection handles GET /tasks/connection?first=&after=
func (h *TaskHandler) Connection(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	first, err := queryInt(r, "first", defaultConnectionSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var after *string
	if r.URL.Query().Has("after") {
		v := r.URL.Query().Get("after")
		after = &v
	}

	conn, err := h.tasks.Connection(r.Context(), first, after)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	log.Debug("served task connection", "first", first, "edges", len(conn.Edges))
	shared.RespondWithJSON(w, r, http.StatusOK, conn)
}

func (h *TaskHandler) respondPage(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(store.PageRequest) (*store.TaskPage, error),
) {
	page, err := getPageRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := fetch(page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(result))
}
