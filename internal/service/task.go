package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/msomdec/todo-api/internal/domain"
)

// TaskInput carries the mutable fields of a task.
type TaskInput struct {
	Task        string          `json:"task" validate:"required,max=100"`
	Description string          `json:"description" validate:"required"`
	Priority    domain.Priority `json:"priority" validate:"required,oneof=urgent non-urgent"`
}

// TaskService validates task writes and delegates to the store.
type TaskService struct {
	tasks    domain.TaskRepository
	validate *validator.Validate
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{
		tasks:    tasks,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create validates input and stores a new task.
func (s *TaskService) Create(ctx context.Context, in TaskInput) (*domain.Task, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Task:        in.Task,
		Description: in.Description,
		Priority:    in.Priority,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// List returns every task.
func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GetByID returns a task by ID.
func (s *TaskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// Update replaces the mutable fields of an existing task. A missing task is
// ErrNotFound whatever the input; invalid input is rejected before any write.
func (s *TaskService) Update(ctx context.Context, id string, in TaskInput) (*domain.Task, error) {
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          id,
		Task:        in.Task,
		Description: in.Description,
		Priority:    in.Priority,
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

func (s *TaskService) validateInput(in TaskInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate task: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%w: task validation failed: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}
