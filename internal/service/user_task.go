package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
)

// AssignTask gives a member a task for the given date
func (s *Service) AssignTask(ctx context.Context, memberID, taskID uuid.UUID, date time.Time) (*models.UserTask, error) {
	var userTask *models.UserTask

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		member, err := tx.Members().Get(ctx, memberID)
		if err != nil {
			return err
		}
		if _, err := tx.Tasks().Get(ctx, taskID); err != nil {
			return err
		}
		userTask, err = tx.UserTasks().Create(ctx, &models.UserTask{
			ShiftID:  member.ShiftID,
			TaskID:   taskID,
			MemberID: memberID,
			TaskDate: date,
			Status:   models.UserTaskStatusNew,
		})
		return translateDBError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}
	return userTask, nil
}

// SubmitReport records a report for a user task and puts it under review
func (s *Service) SubmitReport(ctx context.Context, id uuid.UUID, reportURL string) (*models.UserTask, error) {
	reportURL = strings.TrimSpace(reportURL)
	if reportURL == "" {
		return nil, fmt.Errorf("report url is empty: %w", models.ErrValidation)
	}

	var userTask *models.UserTask
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		if userTask, err = tx.UserTasks().Get(ctx, id); err != nil {
			return err
		}
		return s.sendReport(ctx, tx, userTask, reportURL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit report for user task %s: %w", id, err)
	}
	return userTask, nil
}

// SubmitReportForTelegramUser finds the task of the given day for the member
// behind a Telegram account and records the report for it
func (s *Service) SubmitReportForTelegramUser(ctx context.Context, telegramID int64, reportURL string, date time.Time) (*models.UserTask, error) {
	reportURL = strings.TrimSpace(reportURL)
	if reportURL == "" {
		return nil, fmt.Errorf("report url is empty: %w", models.ErrValidation)
	}

	var userTask *models.UserTask
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByTelegramID(ctx, telegramID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("telegram user %d: %w", telegramID, models.ErrNotFound)
		}
		member, err := tx.Members().GetActiveByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if member == nil {
			return fmt.Errorf("no active shift for user %s: %w", user.ID, models.ErrNotFound)
		}
		userTask, err = tx.UserTasks().GetByMemberAndDate(ctx, member.ID, date)
		if err != nil {
			return err
		}
		if userTask == nil {
			return fmt.Errorf("no task on %s for member %s: %w", date.Format(time.DateOnly), member.ID, models.ErrNotFound)
		}
		return s.sendReport(ctx, tx, userTask, reportURL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}
	return userTask, nil
}

func (s *Service) sendReport(ctx context.Context, tx repository.Store, userTask *models.UserTask, reportURL string) error {
	if err := userTask.SendReport(reportURL, s.now()); err != nil {
		return err
	}
	if _, err := tx.UserTasks().Update(ctx, userTask.ID, userTask); err != nil {
		return translateDBError(err)
	}

	reportTransitions.WithLabelValues(string(userTask.Status)).Inc()
	s.logger.WithFields(logrus.Fields{
		"user_task_id": userTask.ID,
		"member_id":    userTask.MemberID,
	}).Info("Report submitted")
	return nil
}

// ApproveReport accepts a report under review and credits the member
func (s *Service) ApproveReport(ctx context.Context, id uuid.UUID) (*models.UserTask, error) {
	return s.reviewReport(ctx, id, true)
}

// DeclineReport rejects a report under review; the member may send a new one
func (s *Service) DeclineReport(ctx context.Context, id uuid.UUID) (*models.UserTask, error) {
	return s.reviewReport(ctx, id, false)
}

func (s *Service) reviewReport(ctx context.Context, id uuid.UUID, approved bool) (*models.UserTask, error) {
	var (
		userTask *models.UserTask
		member   *models.Member
		user     *models.User
	)

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		if userTask, err = tx.UserTasks().Get(ctx, id); err != nil {
			return err
		}
		if err := userTask.Review(approved); err != nil {
			return err
		}
		if userTask, err = tx.UserTasks().Update(ctx, id, userTask); err != nil {
			return err
		}
		if member, err = tx.Members().Get(ctx, userTask.MemberID); err != nil {
			return err
		}
		if approved {
			member.NumbersLombaryers++
			if member, err = tx.Members().Update(ctx, member.ID, member); err != nil {
				return err
			}
		}
		user, err = tx.Users().Get(ctx, member.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to review report for user task %s: %w", id, err)
	}

	reportTransitions.WithLabelValues(string(userTask.Status)).Inc()
	fields := logrus.Fields{
		"user_task_id": userTask.ID,
		"member_id":    member.ID,
		"status":       userTask.Status,
	}
	s.logger.WithFields(fields).Info("Report reviewed")

	text := reportDeclinedMessage(userTask.TaskDate)
	if approved {
		text = reportApprovedMessage(userTask.TaskDate, member.NumbersLombaryers)
	}
	s.notify(ctx, user.TelegramID, text, fields)
	return userTask, nil
}
