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

const shiftColumns = `id, status, sequence_number, started_at, finished_at, title, final_message, tasks, deleted, created_at, updated_at`

type shiftRepository struct {
	db DBTX
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db DBTX) repository.ShiftRepository {
	return &shiftRepository{db: db}
}

func scanShift(row interface{ Scan(...any) error }) (*models.Shift, error) {
	shift := &models.Shift{}
	var tasks []byte
	err := row.Scan(
		&shift.ID,
		&shift.Status,
		&shift.SequenceNumber,
		&shift.StartedAt,
		&shift.FinishedAt,
		&shift.Title,
		&shift.FinalMessage,
		&tasks,
		&shift.Deleted,
		&shift.CreatedAt,
		&shift.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	shift.Tasks = tasks
	return shift, nil
}

func (r *shiftRepository) GetOrNone(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1 AND deleted = false`

	shift, err := scanShift(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

func (r *shiftRepository) Get(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	shift, err := r.GetOrNone(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, fmt.Errorf("shift %s: %w", id, models.ErrNotFound)
	}
	return shift, nil
}

func (r *shiftRepository) Create(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	query := `
		INSERT INTO shifts (id, status, started_at, finished_at, title, final_message, tasks, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9)
		RETURNING sequence_number, created_at, updated_at`

	shift.Touch(time.Now())

	err := r.db.QueryRowContext(ctx, query,
		shift.ID,
		shift.Status,
		shift.StartedAt,
		shift.FinishedAt,
		shift.Title,
		shift.FinalMessage,
		string(shift.Tasks),
		shift.CreatedAt,
		shift.UpdatedAt,
	).Scan(&shift.SequenceNumber, &shift.CreatedAt, &shift.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}

	return shift, nil
}

func (r *shiftRepository) Update(ctx context.Context, id uuid.UUID, shift *models.Shift) (*models.Shift, error) {
	query := `
		UPDATE shifts
		SET status = $2, started_at = $3, finished_at = $4, title = $5, final_message = $6, tasks = $7, updated_at = $8
		WHERE id = $1 AND deleted = false
		RETURNING sequence_number, created_at, updated_at`

	shift.ID = id
	shift.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		shift.ID,
		shift.Status,
		shift.StartedAt,
		shift.FinishedAt,
		shift.Title,
		shift.FinalMessage,
		string(shift.Tasks),
		shift.UpdatedAt,
	).Scan(&shift.SequenceNumber, &shift.CreatedAt, &shift.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("shift %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update shift: %w", err)
	}

	return shift, nil
}

func (r *shiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shifts SET deleted = true, updated_at = $2 WHERE id = $1 AND deleted = false`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("shift %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *shiftRepository) GetWithUsers(ctx context.Context, id uuid.UUID) (*models.ShiftWithUsers, error) {
	shift, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT DISTINCT ` + prefixed("u", userColumns) + `
		FROM users u
		INNER JOIN requests r ON r.user_id = u.id
		WHERE r.shift_id = $1 AND r.deleted = false AND u.deleted = false`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift users: %w", err)
	}
	defer rows.Close()

	result := &models.ShiftWithUsers{Shift: *shift, Users: []models.User{}}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift user: %w", err)
		}
		result.Users = append(result.Users, *user)
	}
	return result, rows.Err()
}

func (r *shiftRepository) ListAllRequests(ctx context.Context, id uuid.UUID, status *models.RequestStatus) ([]*models.RequestWithUser, error) {
	return listRequests(ctx, r.db, repository.RequestFilters{ShiftID: &id, Status: status})
}
