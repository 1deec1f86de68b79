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

const userTaskColumns = `id, shift_id, task_id, member_id, task_date, status, report_url, uploaded_at, is_repeated, deleted, created_at, updated_at`

type userTaskRepository struct {
	db DBTX
}

func NewUserTaskRepository(db DBTX) repository.UserTaskRepository {
	return &userTaskRepository{db: db}
}

func scanUserTask(row interface{ Scan(...any) error }) (*models.UserTask, error) {
	t := &models.UserTask{}
	err := row.Scan(
		&t.ID, &t.ShiftID, &t.TaskID, &t.MemberID, &t.TaskDate, &t.Status,
		&t.ReportURL, &t.UploadedAt, &t.IsRepeated, &t.Deleted, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *userTaskRepository) getOne(ctx context.Context, query string, args ...any) (*models.UserTask, error) {
	t, err := scanUserTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user task: %w", err)
	}
	return t, nil
}

func (r *userTaskRepository) GetOrNone(ctx context.Context, id uuid.UUID) (*models.UserTask, error) {
	return r.getOne(ctx, `SELECT `+userTaskColumns+` FROM user_tasks WHERE id = $1 AND deleted = false`, id)
}

func (r *userTaskRepository) Get(ctx context.Context, id uuid.UUID) (*models.UserTask, error) {
	t, err := r.GetOrNone(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("user task %s: %w", id, models.ErrNotFound)
	}
	return t, nil
}

func (r *userTaskRepository) GetByMemberAndDate(ctx context.Context, memberID uuid.UUID, date time.Time) (*models.UserTask, error) {
	return r.getOne(ctx,
		`SELECT `+userTaskColumns+` FROM user_tasks WHERE member_id = $1 AND task_date = $2 AND deleted = false`,
		memberID, date.Format(time.DateOnly))
}

func (r *userTaskRepository) ListByDate(ctx context.Context, date time.Time, status models.UserTaskStatus) ([]*models.UserTask, error) {
	query := `SELECT ` + userTaskColumns + ` FROM user_tasks
		WHERE task_date = $1 AND status = $2 AND deleted = false`

	rows, err := r.db.QueryContext(ctx, query, date.Format(time.DateOnly), status)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.UserTask
	for rows.Next() {
		t, err := scanUserTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create stores a new assignment. A task without a report gets a placeholder
// report_url derived from its id.
func (r *userTaskRepository) Create(ctx context.Context, t *models.UserTask) (*models.UserTask, error) {
	query := `
		INSERT INTO user_tasks (id, shift_id, task_id, member_id, task_date, status, report_url, uploaded_at, is_repeated, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, $11)
		RETURNING created_at, updated_at`

	t.Touch(time.Now())
	if t.Status == "" {
		t.Status = models.UserTaskStatusNew
	}
	if t.ReportURL == "" {
		t.ReportURL = models.PlaceholderReportURL(t.ID)
	}

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.ShiftID, t.TaskID, t.MemberID, t.TaskDate, t.Status,
		t.ReportURL, t.UploadedAt, t.IsRepeated, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user task: %w", err)
	}
	return t, nil
}

func (r *userTaskRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.UserTaskStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_tasks SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2 AND deleted = false`,
		id, from, to, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to change user task status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *userTaskRepository) Update(ctx context.Context, id uuid.UUID, t *models.UserTask) (*models.UserTask, error) {
	query := `
		UPDATE user_tasks
		SET status = $2, report_url = $3, uploaded_at = $4, is_repeated = $5, updated_at = $6
		WHERE id = $1 AND deleted = false
		RETURNING created_at, updated_at`

	t.ID = id
	t.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Status, t.ReportURL, t.UploadedAt, t.IsRepeated, t.UpdatedAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user task %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user task: %w", err)
	}
	return t, nil
}
