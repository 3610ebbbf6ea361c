package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/service"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleRegister creates an account.
// POST /register
// Request:  {"name":"...","email":"...","password":"...","role":"user|admin"}
// Response: 201 {"message":"User registered successfully"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	_, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			writeMessage(w, http.StatusBadRequest, "Email already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("register user", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

// HandleLogin checks credentials and issues a token.
// POST /login
// Request:  {"email":"...","password":"..."}
// Response: {"token":"...","user":{"id","name","email","role"}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeMessage(w, http.StatusBadRequest, "Invalid email or password")
			return
		}
		slog.Error("login user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserDTO(user),
	})
}

// HandleAdminDashboard greets administrators. Authenticate and Authorize
// guard it, so reaching it means the caller is an admin.
// GET /admin-dashboard
func HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if id, ok := IdentityFromContext(r.Context()); ok {
		slog.Debug("admin panel accessed", "user_id", id.UserID)
	}
	writeMessage(w, http.StatusOK, "Welcome to the Admin Panel")
}
