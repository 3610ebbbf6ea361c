package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/todo-api/internal/handler"
	"github.com/msomdec/todo-api/internal/repository/sqlite"
	"github.com/msomdec/todo-api/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServices(t *testing.T) (*service.AuthService, *service.TaskService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	// Use cost 4 for fast tests.
	return service.NewAuthService(db.Users(), testJWTSecret, 4, 24*time.Hour),
		service.NewTaskService(db.Tasks()),
		db
}

// newTestServer mounts every route on a fresh database.
func newTestServer(t *testing.T, opts handler.RouteOptions) (*httptest.Server, *service.AuthService) {
	t.Helper()
	auth, tasks, db := newTestServices(t)
	if opts.Store == nil {
		opts.Store = db
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, tasks, opts)

	srv := httptest.NewServer(handler.Wrap(mux, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, auth
}

func doJSON(t *testing.T, method, url string, body any, header http.Header) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func authHeader(token string) http.Header {
	return http.Header{"Authorization": {token}}
}
