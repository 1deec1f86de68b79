package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
)

const userColumns = `id, name, surname, date_of_birth, city, phone_number, telegram_id, numbers_lombaryers, deleted, created_at, updated_at`

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

// prefixed qualifies every column in a comma separated list with a table alias
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Surname,
		&user.DateOfBirth,
		&user.City,
		&user.PhoneNumber,
		&user.TelegramID,
		&user.NumbersLombaryers,
		&user.Deleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` AND deleted = false`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetOrNone(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := r.GetOrNone(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return user, nil
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return r.getOne(ctx, "telegram_id = $1", telegramID)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, surname, date_of_birth, city, phone_number, telegram_id, numbers_lombaryers, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, $10)
		RETURNING created_at, updated_at`

	user.Touch(time.Now())

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Surname,
		user.DateOfBirth,
		user.City,
		user.PhoneNumber,
		user.TelegramID,
		user.NumbersLombaryers,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $2, surname = $3, date_of_birth = $4, city = $5, phone_number = $6,
			telegram_id = $7, numbers_lombaryers = $8, updated_at = $9
		WHERE id = $1 AND deleted = false
		RETURNING created_at, updated_at`

	user.ID = id
	user.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Surname,
		user.DateOfBirth,
		user.City,
		user.PhoneNumber,
		user.TelegramID,
		user.NumbersLombaryers,
		user.UpdatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}
