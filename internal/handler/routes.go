package handler

import (
	"net/http"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/service"
)

// RouteOptions carries the optional collaborators of RegisterRoutes.
// A nil Limiter disables rate limiting and a nil Metrics disables /metrics.
type RouteOptions struct {
	Store   Pinger
	Limiter service.RateLimiter
	Metrics *Metrics
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, tasks *service.TaskService, opts RouteOptions) {
	authHandler := NewAuthHandler(auth)
	taskHandler := NewTaskHandler(tasks)

	handle := func(pattern string, h http.Handler) {
		if opts.Metrics != nil {
			h = opts.Metrics.Instrument(pattern, h)
		}
		mux.Handle(pattern, h)
	}
	limited := func(pattern string, h http.HandlerFunc) {
		if opts.Limiter == nil {
			handle(pattern, h)
			return
		}
		var onLimited func()
		if opts.Metrics != nil {
			onLimited = opts.Metrics.rateLimitedHook(pattern)
		}
		handle(pattern, RateLimit(opts.Limiter, onLimited, h))
	}

	// Auth routes.
	limited("POST /register", authHandler.HandleRegister)
	limited("POST /login", authHandler.HandleLogin)

	// Task routes.
	handle("POST /add", http.HandlerFunc(taskHandler.HandleCreate))
	handle("GET /tasks", http.HandlerFunc(taskHandler.HandleList))
	handle("GET /task/{id}", http.HandlerFunc(taskHandler.HandleGet))
	handle("PUT /task/{id}", http.HandlerFunc(taskHandler.HandleUpdate))
	handle("DELETE /task/{id}", http.HandlerFunc(taskHandler.HandleDelete))

	// Admin routes.
	handle("GET /admin-dashboard", Authenticate(auth, Authorize(domain.RoleAdmin, http.HandlerFunc(HandleAdminDashboard))))

	// Operational routes.
	if opts.Store != nil {
		mux.Handle("GET /healthz", HandleHealthz(opts.Store))
	}
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
}

// Wrap applies the middleware every response goes through.
func Wrap(h http.Handler, allowedOrigins []string) http.Handler {
	return RequestLogger(SecurityHeaders(CORS(allowedOrigins, h)))
}
