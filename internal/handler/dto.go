package handler

import (
	"github.com/msomdec/todo-api/internal/domain"
)

// isoMillis renders timestamps the way the web client has always received them.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// UserDTO is the public projection of a user. The password hash never leaves the server.
type UserDTO struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// TaskDTO is the JSON representation of a task.
type TaskDTO struct {
	ID          string          `json:"_id"`
	Task        string          `json:"task"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Task:        t.Task,
		Description: t.Description,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt.UTC().Format(isoMillis),
		UpdatedAt:   t.UpdatedAt.UTC().Format(isoMillis),
	}
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}
