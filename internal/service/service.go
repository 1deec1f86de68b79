package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/lomaya/internal/repository"
)

// Notifier delivers a text message to a user of the external messenger
type Notifier interface {
	Notify(ctx context.Context, telegramID int64, text string) error
}

// Policy holds the workflow switches that are not fixed business rules.
type Policy struct {
	// AllowDeclineApproved lets admins decline a request that was already
	// approved. The member created on approval is kept.
	AllowDeclineApproved bool
	// NotifyTimeout bounds a single notifier call. Zero means no extra limit.
	NotifyTimeout time.Duration
}

// Service is the workflow layer on top of the repositories. Status changes
// are persisted in one transaction before any notification is sent.
type Service struct {
	store    repository.Store
	notifier Notifier
	logger   *logrus.Logger
	policy   Policy
	now      func() time.Time
}

// New creates a new Service with all required dependencies.
func New(store repository.Store, notifier Notifier, logger *logrus.Logger, policy Policy) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		policy:   policy,
		now:      time.Now,
	}
}

// notify sends text to the user and only logs a failure: the status change it
// reports is already committed.
func (s *Service) notify(ctx context.Context, telegramID int64, text string, fields logrus.Fields) {
	if s.notifier == nil {
		return
	}
	if s.policy.NotifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.policy.NotifyTimeout)
		defer cancel()
	}
	if err := s.notifier.Notify(ctx, telegramID, text); err != nil {
		notificationFailures.Inc()
		s.logger.WithFields(fields).WithField("telegram_id", telegramID).WithError(err).
			Warn("Failed to deliver notification")
	}
}
