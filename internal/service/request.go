package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
)

// DeclineReason is the optional text sent to a user whose request is declined
type DeclineReason struct {
	Message string `json:"decline_message" validate:"max=400"`
}

// ApproveRequest approves a pending request and makes the user a member of
// the shift. Approving a request twice fails with models.ErrConflict and
// leaves exactly one member.
func (s *Service) ApproveRequest(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	var (
		request *models.Request
		user    *models.User
		shift   *models.Shift
	)

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		request, err = tx.Requests().Get(ctx, id)
		if err != nil {
			return err
		}
		if !request.ShiftID.Valid {
			return fmt.Errorf("request %s has no shift: %w", id, models.ErrInvalidStateTransition)
		}
		if err := request.Approve(); err != nil {
			return err
		}

		if request, err = tx.Requests().Update(ctx, id, request); err != nil {
			return err
		}

		existing, err := tx.Members().GetByUserAndShift(ctx, request.UserID, request.ShiftID.UUID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("user %s is already a member of shift %s: %w",
				request.UserID, request.ShiftID.UUID, models.ErrConflict)
		}
		if _, err := tx.Members().Create(ctx, models.NewMember(request.UserID, request.ShiftID.UUID)); err != nil {
			return translateDBError(err)
		}

		if user, err = tx.Users().Get(ctx, request.UserID); err != nil {
			return err
		}
		shift, err = tx.Shifts().GetOrNone(ctx, request.ShiftID.UUID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve request %s: %w", id, err)
	}

	requestTransitions.WithLabelValues(string(models.RequestStatusApproved)).Inc()
	membersCreated.Inc()
	fields := logrus.Fields{
		"request_id": request.ID,
		"user_id":    request.UserID,
		"shift_id":   request.ShiftID.UUID,
	}
	s.logger.WithFields(fields).Info("Request approved")

	s.notify(ctx, user.TelegramID, approvedMessage(user, shift), fields)
	return request, nil
}

// DeclineRequest declines a request and tells the user why. A nil reason or
// an empty message sends the default text.
func (s *Service) DeclineRequest(ctx context.Context, id uuid.UUID, reason *DeclineReason) (*models.Request, error) {
	var (
		request *models.Request
		user    *models.User
	)

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		request, err = tx.Requests().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := request.Decline(s.policy.AllowDeclineApproved); err != nil {
			return err
		}
		if request, err = tx.Requests().Update(ctx, id, request); err != nil {
			return err
		}
		user, err = tx.Users().Get(ctx, request.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decline request %s: %w", id, err)
	}

	requestTransitions.WithLabelValues(string(models.RequestStatusDeclined)).Inc()
	fields := logrus.Fields{
		"request_id": request.ID,
		"user_id":    request.UserID,
	}
	s.logger.WithFields(fields).Info("Request declined")

	s.notify(ctx, user.TelegramID, declinedMessage(reason), fields)
	return request, nil
}

// ListRequests returns requests joined with their users' profiles
func (s *Service) ListRequests(ctx context.Context, filters repository.RequestFilters) ([]*models.RequestWithUser, error) {
	requests, err := s.store.Requests().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// CreateRequest registers a user's application to a shift. A user who
// already has a pending or approved request for the shift gets the new one
// recorded as a repeated request.
func (s *Service) CreateRequest(ctx context.Context, userID, shiftID uuid.UUID) (*models.Request, error) {
	var request *models.Request

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().Get(ctx, userID); err != nil {
			return err
		}
		if _, err := tx.Shifts().Get(ctx, shiftID); err != nil {
			return err
		}

		previous, err := tx.Requests().GetByUserAndShift(ctx, userID, shiftID)
		if err != nil {
			return err
		}
		status := models.RequestStatusPending
		for _, p := range previous {
			if p.Status == models.RequestStatusPending || p.Status == models.RequestStatusApproved {
				status = models.RequestStatusRepeatedRequest
				break
			}
		}

		request, err = tx.Requests().Create(ctx, &models.Request{
			UserID:  userID,
			ShiftID: uuid.NullUUID{UUID: shiftID, Valid: true},
			Status:  status,
		})
		return translateDBError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": request.ID,
		"user_id":    userID,
		"shift_id":   shiftID,
		"status":     request.Status,
	}).Info("Request created")
	return request, nil
}
