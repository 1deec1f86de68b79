package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
)

// StartTaskScheduler runs a background loop that hands out the day's tasks
// at every tick. It blocks until the context is cancelled, so it should be
// launched in a separate goroutine.
func (s *Service) StartTaskScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Task scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Task scheduler stopped")
			return
		case <-ticker.C:
			s.DispatchDailyTasks(ctx, s.now())
		}
	}
}

// DispatchDailyTasks moves every new task of the given day to wait_report and
// sends the task description to the member. Tasks that changed status after
// the list was read are left alone. It returns the number of tasks
// dispatched.
func (s *Service) DispatchDailyTasks(ctx context.Context, day time.Time) int {
	userTasks, err := s.store.UserTasks().ListByDate(ctx, day, models.UserTaskStatusNew)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get new user tasks")
		return 0
	}

	dispatched := 0
	for _, ut := range userTasks {
		var (
			user  *models.User
			task  *models.Task
			moved bool
		)
		err := s.store.WithTx(ctx, func(tx repository.Store) error {
			member, err := tx.Members().Get(ctx, ut.MemberID)
			if err != nil {
				return err
			}
			if user, err = tx.Users().Get(ctx, member.UserID); err != nil {
				return err
			}
			if task, err = tx.Tasks().Get(ctx, ut.TaskID); err != nil {
				return err
			}
			// the member may have reported since the list was read
			moved, err = tx.UserTasks().TransitionStatus(ctx, ut.ID,
				models.UserTaskStatusNew, models.UserTaskStatusWaitReport)
			return err
		})
		if err != nil {
			s.logger.WithField("user_task_id", ut.ID).WithError(err).Error("Failed to dispatch user task")
			continue
		}
		if !moved {
			s.logger.WithField("user_task_id", ut.ID).Debug("User task left new before dispatch, skipped")
			continue
		}

		dispatched++
		s.notify(ctx, user.TelegramID, taskMessage(task), logrus.Fields{"user_task_id": ut.ID})
	}
	return dispatched
}
