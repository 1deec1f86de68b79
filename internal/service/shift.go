package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/lomaya/internal/models"
)

// CreateShift validates and stores a new shift
func (s *Service) CreateShift(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	if shift.Status == "" {
		shift.Status = models.ShiftStatusPreparing
	}
	if err := shift.Validate(); err != nil {
		return nil, err
	}

	shift, err := s.store.Shifts().Create(ctx, shift)
	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", translateDBError(err))
	}

	s.logger.WithFields(logrus.Fields{
		"shift_id": shift.ID,
		"title":    shift.Title,
	}).Info("Shift created")
	return shift, nil
}

// GetShift returns a shift or models.ErrNotFound
func (s *Service) GetShift(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	return s.store.Shifts().Get(ctx, id)
}

// UpdateShift replaces the editable fields of a shift
func (s *Service) UpdateShift(ctx context.Context, id uuid.UUID, shift *models.Shift) (*models.Shift, error) {
	if err := shift.Validate(); err != nil {
		return nil, err
	}
	shift, err := s.store.Shifts().Update(ctx, id, shift)
	if err != nil {
		return nil, fmt.Errorf("failed to update shift %s: %w", id, translateDBError(err))
	}
	return shift, nil
}

// GetShiftWithUsers returns a shift along with every user who applied to it
func (s *Service) GetShiftWithUsers(ctx context.Context, id uuid.UUID) (*models.ShiftWithUsers, error) {
	return s.store.Shifts().GetWithUsers(ctx, id)
}

// ListShiftRequests returns the requests of one shift, optionally restricted
// to a single status
func (s *Service) ListShiftRequests(ctx context.Context, id uuid.UUID, status *models.RequestStatus) ([]*models.RequestWithUser, error) {
	if _, err := s.store.Shifts().Get(ctx, id); err != nil {
		return nil, err
	}
	requests, err := s.store.Shifts().ListAllRequests(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests of shift %s: %w", id, err)
	}
	return requests, nil
}

// ParticipationByTelegramID returns the user behind a Telegram account and
// the started shift they are an active member of. Either may be nil.
func (s *Service) ParticipationByTelegramID(ctx context.Context, telegramID int64) (*models.User, *models.Shift, error) {
	user, err := s.store.Users().GetByTelegramID(ctx, telegramID)
	if err != nil || user == nil {
		return nil, nil, err
	}
	member, err := s.store.Members().GetActiveByUser(ctx, user.ID)
	if err != nil || member == nil {
		return user, nil, err
	}
	shift, err := s.store.Shifts().GetOrNone(ctx, member.ShiftID)
	if err != nil {
		return user, nil, err
	}
	return user, shift, nil
}
