package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/service"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the caller decoded from a verified token.
type Identity struct {
	UserID string
	Role   domain.Role
}

// IdentityFromContext extracts the authenticated caller from the request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// Authenticate verifies the token in the Authorization header and attaches
// the caller's Identity to the request context. The header carries the raw
// token; a "Bearer " prefix is accepted as well.
func Authenticate(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := identify(auth, r)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthenticated) {
				slog.Warn("token validation failed", "error", err, "path", r.URL.Path)
			}
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize only lets requests through whose identity has exactly role.
// It must run after Authenticate.
func Authorize(role domain.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasRole(r.Context(), role) {
			writeAuthError(w, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identify(auth *service.AuthService, r *http.Request) (Identity, error) {
	token := tokenFromHeader(r.Header.Get("Authorization"))
	if token == "" {
		return Identity{}, domain.ErrUnauthenticated
	}
	claims, err := auth.ValidateToken(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.ID, Role: claims.Role}, nil
}

// writeAuthError maps authentication failures: no token 401, wrong role 403,
// anything else 400.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Access denied. No token.")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Access denied. Not authorized.")
	default:
		writeError(w, http.StatusBadRequest, "Invalid token.")
	}
}

func hasRole(ctx context.Context, role domain.Role) bool {
	id, ok := IdentityFromContext(ctx)
	return ok && id.Role == role
}

func tokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return header
}

// SecurityHeaders sets conservative headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// CORS allows browser clients from allowedOrigins ("*" allows any) and
// answers preflight requests directly.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := slices.Contains(allowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		h := w.Header()
		switch {
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(allowedOrigins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// RequestLogger logs one line per request and tags the response with a request id.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		slog.Info("request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency", time.Since(start),
			"client_ip", clientIP(r),
		)
	})
}

// RateLimit rejects requests with 429 once the client's budget is spent.
// onLimited, if non-nil, is called for every rejected request.
func RateLimit(limiter service.RateLimiter, onLimited func(), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow("ip:" + clientIP(r)) {
			if onLimited != nil {
				onLimited()
			}
			writeError(w, http.StatusTooManyRequests, "Too many requests.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}
