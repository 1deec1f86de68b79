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

const memberColumns = `id, status, user_id, shift_id, numbers_lombaryers, deleted, created_at, updated_at`

type memberRepository struct {
	db DBTX
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db DBTX) repository.MemberRepository {
	return &memberRepository{db: db}
}

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.ID,
		&member.Status,
		&member.UserID,
		&member.ShiftID,
		&member.NumbersLombaryers,
		&member.Deleted,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) getOne(ctx context.Context, query string, args ...any) (*models.Member, error) {
	member, err := scanMember(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

func (r *memberRepository) GetOrNone(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return r.getOne(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1 AND deleted = false`, id)
}

func (r *memberRepository) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, err := r.GetOrNone(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member %s: %w", id, models.ErrNotFound)
	}
	return member, nil
}

func (r *memberRepository) GetByUserAndShift(ctx context.Context, userID, shiftID uuid.UUID) (*models.Member, error) {
	return r.getOne(ctx,
		`SELECT `+memberColumns+` FROM members WHERE user_id = $1 AND shift_id = $2 AND deleted = false`,
		userID, shiftID)
}

func (r *memberRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Member, error) {
	query := `
		SELECT ` + prefixed("m", memberColumns) + `
		FROM members m
		INNER JOIN shifts s ON s.id = m.shift_id
		WHERE m.user_id = $1 AND m.status = $2 AND s.status = $3
			AND m.deleted = false AND s.deleted = false
		ORDER BY s.started_at DESC
		LIMIT 1`
	return r.getOne(ctx, query, userID, models.MemberStatusActive, models.ShiftStatusStarted)
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	query := `
		INSERT INTO members (id, status, user_id, shift_id, numbers_lombaryers, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7)
		RETURNING created_at, updated_at`

	member.Touch(time.Now())
	if member.Status == "" {
		member.Status = models.MemberStatusActive
	}

	err := r.db.QueryRowContext(ctx, query,
		member.ID,
		member.Status,
		member.UserID,
		member.ShiftID,
		member.NumbersLombaryers,
		member.CreatedAt,
		member.UpdatedAt,
	).Scan(&member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return member, nil
}

func (r *memberRepository) Update(ctx context.Context, id uuid.UUID, member *models.Member) (*models.Member, error) {
	query := `
		UPDATE members
		SET status = $2, numbers_lombaryers = $3, updated_at = $4
		WHERE id = $1 AND deleted = false
		RETURNING user_id, shift_id, created_at, updated_at`

	member.ID = id
	member.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		member.ID,
		member.Status,
		member.NumbersLombaryers,
		member.UpdatedAt,
	).Scan(&member.UserID, &member.ShiftID, &member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}
