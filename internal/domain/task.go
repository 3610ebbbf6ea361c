package domain

import (
	"context"
	"time"
)

type Priority string

const (
	PriorityUrgent    Priority = "urgent"
	PriorityNonUrgent Priority = "non-urgent"
)

func (p Priority) Valid() bool {
	return p == PriorityUrgent || p == PriorityNonUrgent
}

// Task is a single todo item.
type Task struct {
	ID          string
	Task        string
	Description string
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskRepository defines persistence operations for tasks.
// Update replaces Task, Description and Priority of the record identified by
// task.ID and refreshes the timestamps on task from the stored record.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	List(ctx context.Context) ([]Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
}
