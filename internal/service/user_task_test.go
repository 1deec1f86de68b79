package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
	"github.com/Kerhoff/lomaya/internal/repository/memstore"
	"github.com/Kerhoff/lomaya/pkg/logger"
)

type memberFixture struct {
	user   *models.User
	shift  *models.Shift
	member *models.Member
	task   *models.Task
}

func (f *fixture) member(t *testing.T) memberFixture {
	t.Helper()
	ctx := context.Background()
	user := f.user(t, "Светлана")
	shift := f.shift(t, models.ShiftStatusStarted)
	request := f.request(t, user, shift)
	if _, err := f.svc.ApproveRequest(ctx, request.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	member, err := f.store.Members().GetByUserAndShift(ctx, user.ID, shift.ID)
	if err != nil || member == nil {
		t.Fatalf("member: %v, %v", member, err)
	}
	task, err := f.svc.CreateTask(ctx, &models.Task{
		URL:         "https://example.com/tasks/" + uuid.NewString() + ".png",
		Description: "Сделай зарядку " + uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return memberFixture{user: user, shift: shift, member: member, task: task}
}

func TestSubmitReportFromNew(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	m := f.member(t)

	ut, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, f.svc.now())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if ut.Status != models.UserTaskStatusNew || ut.HasReport() {
		t.Fatalf("unexpected new user task %+v", ut)
	}

	got, err := f.svc.SubmitReport(ctx, ut.ID, "  https://example.com/report.jpg ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Status != models.UserTaskStatusUnderReview || got.ReportURL != "https://example.com/report.jpg" {
		t.Fatalf("unexpected user task %+v", got)
	}
	if got.UploadedAt == nil || !got.UploadedAt.Equal(f.svc.now()) {
		t.Fatalf("expected uploaded_at to be set, got %v", got.UploadedAt)
	}
}

func TestSubmitReportUnderReviewIsRejected(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	m := f.member(t)

	ut, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, f.svc.now())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.SubmitReport(ctx, ut.ID, "https://example.com/first.jpg"); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err = f.svc.SubmitReport(ctx, ut.ID, "https://example.com/second.jpg")
	if !errors.Is(err, models.ErrCannotAcceptReport) {
		t.Fatalf("expected ErrCannotAcceptReport, got %v", err)
	}
	stored, _ := f.store.UserTasks().Get(ctx, ut.ID)
	if stored.Status != models.UserTaskStatusUnderReview || stored.ReportURL != "https://example.com/first.jpg" {
		t.Fatalf("user task changed after rejected report: %+v", stored)
	}
}

func TestSubmitReportValidation(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()

	if _, err := f.svc.SubmitReport(ctx, uuid.New(), "   "); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.SubmitReport(ctx, uuid.New(), "https://example.com/x.jpg"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitReportDuplicateURLConflicts(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	m := f.member(t)

	today := f.svc.now()
	first, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, today)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	second, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.SubmitReport(ctx, first.ID, "https://example.com/same.jpg"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.svc.SubmitReport(ctx, second.ID, "https://example.com/same.jpg"); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	stored, _ := f.store.UserTasks().Get(ctx, second.ID)
	if stored.Status != models.UserTaskStatusNew {
		t.Fatalf("expected rollback to new, got %q", stored.Status)
	}
}

func TestAssignTaskTwiceSameDayConflicts(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	m := f.member(t)

	if _, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, f.svc.now()); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, f.svc.now()); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := f.svc.AssignTask(ctx, uuid.New(), m.task.ID, f.svc.now()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown member, got %v", err)
	}
}

func TestSubmitReportForTelegramUser(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	m := f.member(t)
	today := f.svc.now()

	if _, err := f.svc.SubmitReportForTelegramUser(ctx, m.user.TelegramID, "https://example.com/a.jpg", today); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a task, got %v", err)
	}

	ut, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, today)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, err := f.svc.SubmitReportForTelegramUser(ctx, m.user.TelegramID, "https://example.com/a.jpg", today)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.ID != ut.ID || got.Status != models.UserTaskStatusUnderReview {
		t.Fatalf("unexpected user task %+v", got)
	}

	if _, err := f.svc.SubmitReportForTelegramUser(ctx, 42, "https://example.com/b.jpg", today); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown telegram user, got %v", err)
	}
}

func TestReviewReport(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	m := f.member(t)
	today := f.svc.now()

	ut, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, today)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.ApproveReport(ctx, ut.ID); !errors.Is(err, models.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition before any report, got %v", err)
	}

	if _, err := f.svc.SubmitReport(ctx, ut.ID, "https://example.com/1.jpg"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	declined, err := f.svc.DeclineReport(ctx, ut.ID)
	if err != nil {
		t.Fatalf("decline report: %v", err)
	}
	if declined.Status != models.UserTaskStatusDeclined {
		t.Fatalf("expected declined, got %q", declined.Status)
	}

	if _, err := f.svc.SubmitReport(ctx, ut.ID, "https://example.com/2.jpg"); err != nil {
		t.Fatalf("resubmit after decline: %v", err)
	}
	approved, err := f.svc.ApproveReport(ctx, ut.ID)
	if err != nil {
		t.Fatalf("approve report: %v", err)
	}
	if approved.Status != models.UserTaskStatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}

	member, _ := f.store.Members().Get(ctx, m.member.ID)
	if member.NumbersLombaryers != 1 {
		t.Fatalf("expected counter 1, got %d", member.NumbersLombaryers)
	}

	sent := f.notifier.messages()
	last := sent[len(sent)-1]
	if last.telegramID != m.user.TelegramID || !strings.Contains(last.text, "Суммарное количество ломбарьерчиков: 1") {
		t.Fatalf("unexpected last notification %+v", last)
	}
}

func TestDispatchDailyTasks(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	m := f.member(t)
	today := f.svc.now()

	ut, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, today)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, today.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("assign tomorrow: %v", err)
	}
	before := len(f.notifier.messages())

	if n := f.svc.DispatchDailyTasks(ctx, today); n != 1 {
		t.Fatalf("expected 1 dispatched task, got %d", n)
	}
	stored, _ := f.store.UserTasks().Get(ctx, ut.ID)
	if stored.Status != models.UserTaskStatusWaitReport {
		t.Fatalf("expected wait_report, got %q", stored.Status)
	}

	sent := f.notifier.messages()[before:]
	if len(sent) != 1 || !strings.Contains(sent[0].text, m.task.Description) {
		t.Fatalf("expected task message, got %+v", sent)
	}

	if n := f.svc.DispatchDailyTasks(ctx, today); n != 0 {
		t.Fatalf("second dispatch must be a no-op, got %d", n)
	}
}

// interleavingStore runs afterList once the outer ListByDate returns, to
// simulate a write landing between the dispatcher's read and its update
type interleavingStore struct {
	*memstore.Store
	afterList func()
}

func (s interleavingStore) UserTasks() repository.UserTaskRepository {
	return listHook{UserTaskRepository: s.Store.UserTasks(), after: s.afterList}
}

type listHook struct {
	repository.UserTaskRepository
	after func()
}

func (h listHook) ListByDate(ctx context.Context, date time.Time, status models.UserTaskStatus) ([]*models.UserTask, error) {
	tasks, err := h.UserTaskRepository.ListByDate(ctx, date, status)
	if err == nil && h.after != nil {
		h.after()
	}
	return tasks, err
}

func TestDispatchDailyTasksKeepsReportSentMeanwhile(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	m := f.member(t)
	today := f.svc.now()

	ut, err := f.svc.AssignTask(ctx, m.member.ID, m.task.ID, today)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	dispatcher := New(interleavingStore{
		Store: f.store,
		afterList: func() {
			if _, err := f.svc.SubmitReport(ctx, ut.ID, "https://example.com/early.jpg"); err != nil {
				t.Errorf("submit: %v", err)
			}
		},
	}, f.notifier, logger.Discard(), Policy{})
	before := len(f.notifier.messages())

	if n := dispatcher.DispatchDailyTasks(ctx, today); n != 0 {
		t.Fatalf("expected nothing dispatched, got %d", n)
	}

	stored, _ := f.store.UserTasks().Get(ctx, ut.ID)
	if stored.Status != models.UserTaskStatusUnderReview {
		t.Fatalf("expected under_review, got %q", stored.Status)
	}
	if stored.ReportURL != "https://example.com/early.jpg" || stored.UploadedAt == nil {
		t.Fatalf("report was lost: %+v", stored)
	}
	if sent := f.notifier.messages()[before:]; len(sent) != 0 {
		t.Fatalf("expected no task message, got %+v", sent)
	}
}

func TestStartTaskSchedulerStopsOnCancel(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.svc.StartTaskScheduler(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
