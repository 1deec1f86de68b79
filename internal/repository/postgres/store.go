package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Kerhoff/lomaya/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type store struct {
	db DBTX
	// conn is nil for stores bound to a transaction
	conn *sql.DB
}

// NewStore creates a Store backed by the given database
func NewStore(db *sql.DB) repository.Store {
	return &store{db: db, conn: db}
}

func (s *store) Shifts() repository.ShiftRepository       { return NewShiftRepository(s.db) }
func (s *store) Users() repository.UserRepository         { return NewUserRepository(s.db) }
func (s *store) Requests() repository.RequestRepository   { return NewRequestRepository(s.db) }
func (s *store) Members() repository.MemberRepository     { return NewMemberRepository(s.db) }
func (s *store) Tasks() repository.TaskRepository         { return NewTaskRepository(s.db) }
func (s *store) UserTasks() repository.UserTaskRepository { return NewUserTaskRepository(s.db) }

func (s *store) WithTx(ctx context.Context, fn func(repository.Store) error) (err error) {
	if s.conn == nil {
		// already inside a transaction
		return fn(s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(&store{db: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
