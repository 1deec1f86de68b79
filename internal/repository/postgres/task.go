package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
)

type taskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetOrNone(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT id, url, description, deleted, created_at, updated_at
		FROM tasks WHERE id = $1 AND deleted = false`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.URL, &task.Description, &task.Deleted, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := r.GetOrNone(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `INSERT INTO tasks (id, url, description, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, false, $4, $5)
		RETURNING created_at, updated_at`
	task.Touch(time.Now())
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.URL, task.Description, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, url, description, deleted, created_at, updated_at
		FROM tasks WHERE deleted = false ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.URL, &task.Description, &task.Deleted, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
