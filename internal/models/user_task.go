package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserTaskStatus represents the review state of a daily task report
type UserTaskStatus string

const (
	UserTaskStatusNew         UserTaskStatus = "new"
	UserTaskStatusUnderReview UserTaskStatus = "under_review"
	UserTaskStatusApproved    UserTaskStatus = "approved"
	UserTaskStatusDeclined    UserTaskStatus = "declined"
	UserTaskStatusWaitReport  UserTaskStatus = "wait_report"
)

// Valid reports whether s is one of the known user task statuses
func (s UserTaskStatus) Valid() bool {
	switch s {
	case UserTaskStatusNew, UserTaskStatusUnderReview, UserTaskStatusApproved,
		UserTaskStatusDeclined, UserTaskStatusWaitReport:
		return true
	}
	return false
}

// UnmarshalText rejects unknown statuses
func (s *UserTaskStatus) UnmarshalText(text []byte) error {
	v := UserTaskStatus(text)
	if !v.Valid() {
		return fmt.Errorf("unknown user task status %q: %w", text, ErrValidation)
	}
	*s = v
	return nil
}

// unreportedPrefix marks report_url values assigned before any report exists.
// The column is unique and not null, so the placeholder carries the row id.
const unreportedPrefix = "unreported:"

// UserTask is a task assigned to a member for one date
type UserTask struct {
	Base
	ShiftID    uuid.UUID      `json:"shift_id" db:"shift_id"`
	TaskID     uuid.UUID      `json:"task_id" db:"task_id"`
	MemberID   uuid.UUID      `json:"member_id" db:"member_id"`
	TaskDate   time.Time      `json:"task_date" db:"task_date"`
	Status     UserTaskStatus `json:"status" db:"status"`
	ReportURL  string         `json:"report_url" db:"report_url"`
	UploadedAt *time.Time     `json:"uploaded_at" db:"uploaded_at"`
	IsRepeated bool           `json:"is_repeated" db:"is_repeated"`
}

// PlaceholderReportURL returns the report_url stored until a report arrives
func PlaceholderReportURL(id uuid.UUID) string {
	return unreportedPrefix + id.String()
}

// HasReport returns true once a report has been uploaded
func (t *UserTask) HasReport() bool {
	return t.UploadedAt != nil && !strings.HasPrefix(t.ReportURL, unreportedPrefix)
}

// SendReport records a report and puts the task under review.
// It only accepts reports for new, waiting or previously declined tasks.
func (t *UserTask) SendReport(reportURL string, now time.Time) error {
	switch t.Status {
	case UserTaskStatusNew, UserTaskStatusWaitReport, UserTaskStatusDeclined:
	default:
		return ErrCannotAcceptReport
	}
	t.Status = UserTaskStatusUnderReview
	t.ReportURL = reportURL
	t.UploadedAt = &now
	return nil
}

// Review settles a report that is under review
func (t *UserTask) Review(approved bool) error {
	if t.Status != UserTaskStatusUnderReview {
		return fmt.Errorf("user task %s is %q, nothing to review: %w", t.ID, t.Status, ErrInvalidStateTransition)
	}
	if approved {
		t.Status = UserTaskStatusApproved
	} else {
		t.Status = UserTaskStatusDeclined
	}
	return nil
}
