package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
)

func newMock(t *testing.T) (*store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db).(*store), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var requestListColumns = []string{
	"request_id", "user_id", "shift_id", "status",
	"name", "surname", "date_of_birth", "city", "phone", "member_status",
}

func TestRequestGetOrNoneAndGet(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`FROM requests WHERE id = \$1 AND deleted = false`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	got, err := s.Requests().GetOrNone(ctx, id)
	if err != nil || got != nil {
		t.Fatalf("GetOrNone = %v, %v; want nil, nil", got, err)
	}

	mock.ExpectQuery(`FROM requests WHERE id = \$1 AND deleted = false`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := s.Requests().Get(ctx, id); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}

	now := time.Now()
	userID, shiftID := uuid.New(), uuid.New()
	mock.ExpectQuery(`FROM requests WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "shift_id", "status", "numbers_lombaryers", "deleted", "created_at", "updated_at",
		}).AddRow(id.String(), userID.String(), shiftID.String(), "approved", nil, false, now, now))
	got, err = s.Requests().Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.RequestStatusApproved || !got.ShiftID.Valid || got.ShiftID.UUID != shiftID {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.NumbersLombaryers != nil {
		t.Fatalf("expected NULL counter, got %v", *got.NumbersLombaryers)
	}

	expectationsMet(t, mock)
}

func TestListRequestsArguments(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	shiftID := uuid.New()
	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM requests r\s+INNER JOIN users u .* WHERE r\.deleted = false AND u\.deleted = false$`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(requestListColumns).
			AddRow(uuid.NewString(), uuid.NewString(), shiftID.String(), "pending",
				"Анна", "Иванова", dob, "Москва", "+79000000000", nil).
			AddRow(uuid.NewString(), uuid.NewString(), shiftID.String(), "approved",
				"Борис", "Петров", dob, "Казань", "+79000000001", "active"))

	all, err := s.Requests().List(ctx, repository.RequestFilters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}
	if all[0].MemberStatus != nil {
		t.Fatalf("expected NULL member status, got %v", *all[0].MemberStatus)
	}
	if all[1].MemberStatus == nil || *all[1].MemberStatus != models.MemberStatusActive {
		t.Fatalf("expected active member status, got %v", all[1].MemberStatus)
	}

	status := models.RequestStatusApproved
	mock.ExpectQuery(`WHERE r\.deleted = false AND u\.deleted = false AND r\.shift_id = \$1 AND r\.status = \$2$`).
		WithArgs(shiftID, "approved").
		WillReturnRows(sqlmock.NewRows(requestListColumns))

	filtered, err := s.Shifts().ListAllRequests(ctx, shiftID, &status)
	if err != nil {
		t.Fatalf("ListAllRequests: %v", err)
	}
	if filtered == nil || len(filtered) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", filtered)
	}

	mock.ExpectQuery(`AND r.status = \$1$`).
		WithArgs("declined").
		WillReturnRows(sqlmock.NewRows(requestListColumns))
	declined := models.RequestStatusDeclined
	if _, err := s.Requests().List(ctx, repository.RequestFilters{Status: &declined}); err != nil {
		t.Fatalf("List by status: %v", err)
	}

	expectationsMet(t, mock)
}

func TestMemberCreateUniqueViolation(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO members`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "_user_shift_uc"})

	_, err := s.Members().Create(context.Background(), models.NewMember(uuid.New(), uuid.New()))
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		t.Fatalf("expected *pq.Error, got %v", err)
	}
	if pqErr.Code.Name() != "unique_violation" || pqErr.Constraint != "_user_shift_uc" {
		t.Fatalf("unexpected pq error %+v", pqErr)
	}

	expectationsMet(t, mock)
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM members WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := s.WithTx(ctx, func(tx repository.Store) error {
		// nested calls join the running transaction
		return tx.WithTx(ctx, func(inner repository.Store) error {
			_, err := inner.Members().GetOrNone(ctx, id)
			return err
		})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	if err := s.WithTx(ctx, func(repository.Store) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestUserTaskCreateAssignsPlaceholder(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO user_tasks`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	ut, err := s.UserTasks().Create(context.Background(), &models.UserTask{
		ShiftID:  uuid.New(),
		TaskID:   uuid.New(),
		MemberID: uuid.New(),
		TaskDate: now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ut.Status != models.UserTaskStatusNew {
		t.Fatalf("expected new, got %q", ut.Status)
	}
	if ut.ReportURL != models.PlaceholderReportURL(ut.ID) || ut.HasReport() {
		t.Fatalf("expected placeholder report url, got %q", ut.ReportURL)
	}

	expectationsMet(t, mock)
}

func TestShiftDeleteMissing(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE shifts SET deleted = true`).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Shifts().Delete(context.Background(), id); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUserTaskTransitionStatus(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(`UPDATE user_tasks SET status = \$3, updated_at = \$4 WHERE id = \$1 AND status = \$2`).
		WithArgs(id, "new", "wait_report", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	moved, err := s.UserTasks().TransitionStatus(ctx, id, models.UserTaskStatusNew, models.UserTaskStatusWaitReport)
	if err != nil || !moved {
		t.Fatalf("TransitionStatus = %v, %v; want true, nil", moved, err)
	}

	mock.ExpectExec(`UPDATE user_tasks SET status = \$3`).
		WithArgs(id, "new", "wait_report", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	moved, err = s.UserTasks().TransitionStatus(ctx, id, models.UserTaskStatusNew, models.UserTaskStatusWaitReport)
	if err != nil || moved {
		t.Fatalf("TransitionStatus = %v, %v; want false, nil", moved, err)
	}

	expectationsMet(t, mock)
}
