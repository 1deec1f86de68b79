package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/lomaya/internal/models"
)

// Store groups the repositories and owns the transaction scope.
// Repositories obtained from the Store passed to WithTx share one transaction.
type Store interface {
	Shifts() ShiftRepository
	Users() UserRepository
	Requests() RequestRepository
	Members() MemberRepository
	Tasks() TaskRepository
	UserTasks() UserTaskRepository

	// WithTx runs fn inside a transaction. The transaction is committed when
	// fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// ShiftRepository defines the interface for shift data operations
type ShiftRepository interface {
	GetOrNone(ctx context.Context, id uuid.UUID) (*models.Shift, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) (*models.Shift, error)
	Update(ctx context.Context, id uuid.UUID, shift *models.Shift) (*models.Shift, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetWithUsers(ctx context.Context, id uuid.UUID) (*models.ShiftWithUsers, error)
	ListAllRequests(ctx context.Context, id uuid.UUID, status *models.RequestStatus) ([]*models.RequestWithUser, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetOrNone(ctx context.Context, id uuid.UUID) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, user *models.User) (*models.User, error)
}

// RequestRepository defines the interface for request data operations
type RequestRepository interface {
	GetOrNone(ctx context.Context, id uuid.UUID) (*models.Request, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Request, error)
	Create(ctx context.Context, request *models.Request) (*models.Request, error)
	Update(ctx context.Context, id uuid.UUID, request *models.Request) (*models.Request, error)
	List(ctx context.Context, filters RequestFilters) ([]*models.RequestWithUser, error)
	GetByUserAndShift(ctx context.Context, userID, shiftID uuid.UUID) ([]*models.Request, error)
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	GetOrNone(ctx context.Context, id uuid.UUID) (*models.Member, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Member, error)
	GetByUserAndShift(ctx context.Context, userID, shiftID uuid.UUID) (*models.Member, error)
	// GetActiveByUser returns the user's active membership in a started shift.
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Member, error)
	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	Update(ctx context.Context, id uuid.UUID, member *models.Member) (*models.Member, error)
}

// TaskRepository defines the interface for task definitions
type TaskRepository interface {
	GetOrNone(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
}

// UserTaskRepository defines the interface for daily task assignments
type UserTaskRepository interface {
	GetOrNone(ctx context.Context, id uuid.UUID) (*models.UserTask, error)
	Get(ctx context.Context, id uuid.UUID) (*models.UserTask, error)
	GetByMemberAndDate(ctx context.Context, memberID uuid.UUID, date time.Time) (*models.UserTask, error)
	ListByDate(ctx context.Context, date time.Time, status models.UserTaskStatus) ([]*models.UserTask, error)
	Create(ctx context.Context, task *models.UserTask) (*models.UserTask, error)
	Update(ctx context.Context, id uuid.UUID, task *models.UserTask) (*models.UserTask, error)
	// TransitionStatus moves the task to status to only while it is still in
	// status from. It reports false when the row was changed in between.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.UserTaskStatus) (bool, error)
}

// RequestFilters represents filters for querying requests.
// A nil field does not restrict the result.
type RequestFilters struct {
	ShiftID *uuid.UUID
	Status  *models.RequestStatus
}
