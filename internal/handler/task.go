package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/service"
)

// TaskHandler serves the task CRUD endpoints.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleCreate stores a new task.
// POST /add
// Request:  {"task":"...","description":"...","priority":"urgent|non-urgent"}
// Response: the stored task
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	task, err := h.tasks.Create(r.Context(), in)
	if err != nil {
		h.writeWriteError(w, "create task", err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleList returns every task ordered by creation time.
// GET /tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		slog.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// HandleGet returns one task.
// GET /task/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Task not found")
			return
		}
		slog.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleUpdate replaces the mutable fields of a task.
// PUT /task/{id}
// Request:  {"task":"...","description":"...","priority":"urgent|non-urgent"}
// Response: the updated task
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	task, err := h.tasks.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeWriteError(w, "update task", err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleDelete removes a task.
// DELETE /task/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Task not found")
			return
		}
		slog.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeMessage(w, http.StatusOK, "Task deleted successfully")
}

// writeWriteError maps errors from create and update. Validation failures
// are 500 with the validation message.
func (h *TaskHandler) writeWriteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
