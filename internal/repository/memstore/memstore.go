// Package memstore is an in-memory repository.Store. It enforces the same
// uniqueness constraints as the SQL schema and reports violations as
// *pq.Error values, so callers see the same errors as with PostgreSQL.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
)

type state struct {
	shifts    map[uuid.UUID]models.Shift
	users     map[uuid.UUID]models.User
	requests  map[uuid.UUID]models.Request
	members   map[uuid.UUID]models.Member
	tasks     map[uuid.UUID]models.Task
	userTasks map[uuid.UUID]models.UserTask
	sequence  int
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		shifts:    cloneMap(s.shifts),
		users:     cloneMap(s.users),
		requests:  cloneMap(s.requests),
		members:   cloneMap(s.members),
		tasks:     cloneMap(s.tasks),
		userTasks: cloneMap(s.userTasks),
		sequence:  s.sequence,
	}
}

// Store keeps every table in maps guarded by one mutex
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state
	now  func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		data: &state{
			shifts:    map[uuid.UUID]models.Shift{},
			users:     map[uuid.UUID]models.User{},
			requests:  map[uuid.UUID]models.Request{},
			members:   map[uuid.UUID]models.Member{},
			tasks:     map[uuid.UUID]models.Task{},
			userTasks: map[uuid.UUID]models.UserTask{},
		},
		now: time.Now,
	}
}

func (s *Store) Shifts() repository.ShiftRepository       { return shiftRepo{s} }
func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Requests() repository.RequestRepository   { return requestRepo{s} }
func (s *Store) Members() repository.MemberRepository     { return memberRepo{s} }
func (s *Store) Tasks() repository.TaskRepository         { return taskRepo{s} }
func (s *Store) UserTasks() repository.UserTaskRepository { return userTaskRepo{s} }

// WithTx serializes transactions and restores the previous state when fn fails.
// Writes made outside WithTx while a transaction runs are not isolated.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		p := recover()
		if err != nil || p != nil {
			s.mu.Lock()
			s.data = snapshot
			s.mu.Unlock()
		}
		if p != nil {
			panic(p)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(txStore{s})
}

// txStore is the view handed to WithTx callbacks; nested calls join the
// running transaction.
type txStore struct {
	*Store
}

func (t txStore) WithTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(t)
}

// MemberCount returns the number of live members, for assertions in tests
func (s *Store) MemberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.data.members {
		if !m.Deleted {
			n++
		}
	}
	return n
}

func uniqueViolation(constraint string) error {
	return &pq.Error{
		Code:       "23505",
		Message:    fmt.Sprintf("duplicate key value violates unique constraint %q", constraint),
		Constraint: constraint,
	}
}

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entity, id, models.ErrNotFound)
}

func foreignKeyViolation(constraint string) error {
	return &pq.Error{
		Code:       "23503",
		Message:    fmt.Sprintf("insert or update violates foreign key constraint %q", constraint),
		Constraint: constraint,
	}
}
