package handler_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/todo-api/internal/handler"
)

func createTask(t *testing.T, baseURL string, body map[string]string) handler.TaskDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/add", body, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /add: expected 200, got %d", resp.StatusCode)
	}
	return decodeBody[handler.TaskDTO](t, resp)
}

func TestHandleCreate(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})

	task := createTask(t, srv.URL, map[string]string{
		"task": "Buy milk", "description": "2 liters", "priority": "urgent", "userId": "ignored",
	})

	if task.ID == "" {
		t.Fatal("expected _id to be set")
	}
	if task.Task != "Buy milk" || task.Description != "2 liters" || task.Priority != "urgent" {
		t.Fatalf("unexpected task %+v", task)
	}
	created, err := time.Parse(time.RFC3339, task.CreatedAt)
	if err != nil {
		t.Fatalf("parse createdAt %q: %v", task.CreatedAt, err)
	}
	if created.IsZero() {
		t.Fatal("expected createdAt to be set")
	}
	if task.UpdatedAt == "" {
		t.Fatal("expected updatedAt to be set")
	}
}

func TestHandleCreate_ValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})

	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad priority", map[string]string{"task": "A", "description": "B", "priority": "high"}},
		{"missing description", map[string]string{"task": "A", "priority": "urgent"}},
		{"missing task", map[string]string{"description": "B", "priority": "urgent"}},
		{"title too long", map[string]string{"task": strings.Repeat("x", 101), "description": "B", "priority": "urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/add", tt.body, nil)
			if resp.StatusCode != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", resp.StatusCode)
			}
			body := decodeBody[map[string]string](t, resp)
			if body["error"] == "" {
				t.Fatal("expected an error message")
			}
		})
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/tasks", nil, nil)
	if tasks := decodeBody[[]handler.TaskDTO](t, resp); len(tasks) != 0 {
		t.Fatalf("expected no tasks to be stored, got %d", len(tasks))
	}
}

func TestHandleCreate_MalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})

	resp, err := http.Post(srv.URL+"/add", "application/json", strings.NewReader("[1,2"))
	if err != nil {
		t.Fatalf("POST /add: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleList(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/tasks", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if tasks := decodeBody[[]handler.TaskDTO](t, resp); tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected an empty array, got %v", tasks)
	}

	first := createTask(t, srv.URL, map[string]string{"task": "First", "description": "1", "priority": "urgent"})
	second := createTask(t, srv.URL, map[string]string{"task": "Second", "description": "2", "priority": "non-urgent"})

	resp = doJSON(t, http.MethodGet, srv.URL+"/tasks", nil, nil)
	tasks := decodeBody[[]handler.TaskDTO](t, resp)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Fatalf("expected creation order, got %s, %s", tasks[0].ID, tasks[1].ID)
	}
}

func TestHandleGet(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})
	created := createTask(t, srv.URL, map[string]string{"task": "Read", "description": "a book", "priority": "non-urgent"})

	resp := doJSON(t, http.MethodGet, srv.URL+"/task/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decodeBody[handler.TaskDTO](t, resp)
	if got != created {
		t.Fatalf("expected %+v, got %+v", created, got)
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})

	for _, id := range []string{"00000000-0000-0000-0000-000000000000", "not-an-id"} {
		resp := doJSON(t, http.MethodGet, srv.URL+"/task/"+id, nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("id %q: expected 404, got %d", id, resp.StatusCode)
		}
		body := decodeBody[map[string]string](t, resp)
		if body["message"] != "Task not found" {
			t.Fatalf("id %q: unexpected message %q", id, body["message"])
		}
	}
}

func TestHandleUpdate(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})
	created := createTask(t, srv.URL, map[string]string{"task": "Old", "description": "old", "priority": "urgent"})

	resp := doJSON(t, http.MethodPut, srv.URL+"/task/"+created.ID, map[string]string{
		"task": "New", "description": "new", "priority": "non-urgent",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	updated := decodeBody[handler.TaskDTO](t, resp)
	if updated.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, updated.ID)
	}
	if updated.Task != "New" || updated.Description != "new" || updated.Priority != "non-urgent" {
		t.Fatalf("unexpected task %+v", updated)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Fatalf("createdAt changed from %s to %s", created.CreatedAt, updated.CreatedAt)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/task/"+created.ID, nil, nil)
	if got := decodeBody[handler.TaskDTO](t, resp); got.Task != "New" {
		t.Fatalf("expected persisted update, got %+v", got)
	}
}

func TestHandleUpdate_Errors(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})
	created := createTask(t, srv.URL, map[string]string{"task": "Keep", "description": "me", "priority": "urgent"})

	resp := doJSON(t, http.MethodPut, srv.URL+"/task/00000000-0000-0000-0000-000000000000", map[string]string{
		"task": "X", "description": "Y", "priority": "urgent",
	}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing task: expected 404, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/task/00000000-0000-0000-0000-000000000000", map[string]string{
		"task": "X", "description": "Y", "priority": "low",
	}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing task with invalid body: expected 404, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/task/"+created.ID, map[string]string{
		"task": "X", "description": "Y", "priority": "low",
	}, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("invalid priority: expected 500, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/task/"+created.ID, nil, nil)
	if got := decodeBody[handler.TaskDTO](t, resp); got != created {
		t.Fatalf("expected task to be unchanged, got %+v", got)
	}
}

func TestHandleDelete(t *testing.T) {
	srv, _ := newTestServer(t, handler.RouteOptions{})
	created := createTask(t, srv.URL, map[string]string{"task": "Gone", "description": "soon", "priority": "urgent"})

	resp := doJSON(t, http.MethodDelete, srv.URL+"/task/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["message"] != "Task deleted successfully" {
		t.Fatalf("unexpected message %q", body["message"])
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/task/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/task/"+created.ID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}
