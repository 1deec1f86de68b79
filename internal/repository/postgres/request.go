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

const requestColumns = `id, user_id, shift_id, status, numbers_lombaryers, deleted, created_at, updated_at`

type requestRepository struct {
	db DBTX
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db DBTX) repository.RequestRepository {
	return &requestRepository{db: db}
}

func scanRequest(row interface{ Scan(...any) error }) (*models.Request, error) {
	request := &models.Request{}
	err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.ShiftID,
		&request.Status,
		&request.NumbersLombaryers,
		&request.Deleted,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *requestRepository) GetOrNone(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 AND deleted = false`

	request, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return request, nil
}

func (r *requestRepository) Get(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	request, err := r.GetOrNone(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("request %s: %w", id, models.ErrNotFound)
	}
	return request, nil
}

func (r *requestRepository) Create(ctx context.Context, request *models.Request) (*models.Request, error) {
	query := `
		INSERT INTO requests (id, user_id, shift_id, status, numbers_lombaryers, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7)
		RETURNING created_at, updated_at`

	request.Touch(time.Now())
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}

	err := r.db.QueryRowContext(ctx, query,
		request.ID,
		request.UserID,
		request.ShiftID,
		request.Status,
		request.NumbersLombaryers,
		request.CreatedAt,
		request.UpdatedAt,
	).Scan(&request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return request, nil
}

func (r *requestRepository) Update(ctx context.Context, id uuid.UUID, request *models.Request) (*models.Request, error) {
	query := `
		UPDATE requests
		SET user_id = $2, shift_id = $3, status = $4, numbers_lombaryers = $5, updated_at = $6
		WHERE id = $1 AND deleted = false
		RETURNING created_at, updated_at`

	request.ID = id
	request.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		request.ID,
		request.UserID,
		request.ShiftID,
		request.Status,
		request.NumbersLombaryers,
		request.UpdatedAt,
	).Scan(&request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	return request, nil
}

func (r *requestRepository) List(ctx context.Context, filters repository.RequestFilters) ([]*models.RequestWithUser, error) {
	return listRequests(ctx, r.db, filters)
}

func (r *requestRepository) GetByUserAndShift(ctx context.Context, userID, shiftID uuid.UUID) ([]*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests
		WHERE user_id = $1 AND shift_id = $2 AND deleted = false
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// listRequests joins requests with their users and, when present, the member
// row for the same shift. No ordering is applied.
func listRequests(ctx context.Context, db DBTX, filters repository.RequestFilters) ([]*models.RequestWithUser, error) {
	query := `
		SELECT r.id AS request_id, r.user_id, r.shift_id, r.status,
			u.name, u.surname, u.date_of_birth, u.city, u.phone_number AS phone,
			m.status AS member_status
		FROM requests r
		INNER JOIN users u ON u.id = r.user_id
		LEFT JOIN members m ON m.user_id = r.user_id AND m.shift_id = r.shift_id AND m.deleted = false
		WHERE r.deleted = false AND u.deleted = false`
	var args []any
	argIdx := 1

	if filters.ShiftID != nil {
		query += fmt.Sprintf(" AND r.shift_id = $%d", argIdx)
		args = append(args, *filters.ShiftID)
		argIdx++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND r.status = $%d", argIdx)
		args = append(args, *filters.Status)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	result := []*models.RequestWithUser{}
	for rows.Next() {
		item := &models.RequestWithUser{}
		if err := rows.Scan(
			&item.RequestID, &item.UserID, &item.ShiftID, &item.Status,
			&item.Name, &item.Surname, &item.DateOfBirth, &item.City, &item.PhoneNumber,
			&item.MemberStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
