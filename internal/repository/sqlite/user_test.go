package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/todo-api/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()

	user := &domain.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hashedpw",
		Role:         domain.RoleUser,
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected user ID to be set after create")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()

	user1 := &domain.User{Name: "User 1", Email: "dup@example.com", PasswordHash: "hash1", Role: domain.RoleUser}
	if err := repo.Create(ctx, user1); err != nil {
		t.Fatalf("Create user1: %v", err)
	}

	user2 := &domain.User{Name: "User 2", Email: "dup@example.com", PasswordHash: "hash2", Role: domain.RoleAdmin}
	err := repo.Create(ctx, user2)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()

	user := &domain.User{Name: "By ID", Email: "byid@example.com", PasswordHash: "hash", Role: domain.RoleAdmin}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if found.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, found.Email)
	}
	if found.Name != user.Name {
		t.Fatalf("expected name %q, got %q", user.Name, found.Name)
	}
	if found.Role != domain.RoleAdmin {
		t.Fatalf("expected role admin, got %q", found.Role)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestDB(t).Users()

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()

	user := &domain.User{Name: "By Email", Email: "byemail@example.com", PasswordHash: "hash", Role: domain.RoleUser}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByEmail(ctx, "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, found.ID)
	}
	if found.PasswordHash != "hash" {
		t.Fatalf("expected stored hash, got %q", found.PasswordHash)
	}
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	repo := newTestDB(t).Users()

	_, err := repo.GetByEmail(context.Background(), "nonexistent@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
