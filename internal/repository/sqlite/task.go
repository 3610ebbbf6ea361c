package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/msomdec/todo-api/internal/domain"
)

// TaskRepository implements domain.TaskRepository using SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite-backed TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db.SqlDB}
}

const taskColumns = `id, task, description, priority, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	id := uuid.NewString()
	ts := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		id, task.Task, task.Description, string(task.Priority), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	task.ID = id
	task.CreatedAt = ts
	task.UpdatedAt = ts
	return nil
}

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM todos ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM todos WHERE id = ?`, id), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query task by id: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET task = ?, description = ?, priority = ?, updated_at = ? WHERE id = ?`,
		task.Task, task.Description, string(task.Priority), now(), task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	stored, err := r.GetByID(ctx, task.ID)
	if err != nil {
		return err
	}
	*task = *stored
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner, t *domain.Task) error {
	var priority string
	if err := row.Scan(&t.ID, &t.Task, &t.Description, &priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return err
	}
	t.Priority = domain.Priority(priority)
	return nil
}
