package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/lomaya/internal/models"
)

// CreateUser registers a participant. Phone number and Telegram id must be
// unique; a duplicate fails with models.ErrConflict.
func (s *Service) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user, err := s.store.Users().Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", translateDBError(err))
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"telegram_id": user.TelegramID,
	}).Info("User created")
	return user, nil
}

// CreateTask stores a reusable task definition
func (s *Service) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task, err := s.store.Tasks().Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", translateDBError(err))
	}
	return task, nil
}

// ListTasks returns every task definition
func (s *Service) ListTasks(ctx context.Context) ([]*models.Task, error) {
	return s.store.Tasks().List(ctx)
}
