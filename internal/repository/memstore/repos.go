package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
)

type shiftRepo struct{ s *Store }

func (r shiftRepo) GetOrNone(_ context.Context, id uuid.UUID) (*models.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shift, ok := r.s.data.shifts[id]
	if !ok || shift.Deleted {
		return nil, nil
	}
	return &shift, nil
}

func (r shiftRepo) Get(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	shift, _ := r.GetOrNone(ctx, id)
	if shift == nil {
		return nil, notFound("shift", id)
	}
	return shift, nil
}

func (r shiftRepo) Create(_ context.Context, shift *models.Shift) (*models.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shift.Touch(r.s.now())
	r.s.data.sequence++
	shift.SequenceNumber = r.s.data.sequence
	r.s.data.shifts[shift.ID] = *shift
	return shift, nil
}

func (r shiftRepo) Update(_ context.Context, id uuid.UUID, shift *models.Shift) (*models.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.data.shifts[id]
	if !ok || old.Deleted {
		return nil, notFound("shift", id)
	}
	shift.ID = id
	shift.SequenceNumber = old.SequenceNumber
	shift.CreatedAt = old.CreatedAt
	shift.UpdatedAt = r.s.now()
	r.s.data.shifts[id] = *shift
	return shift, nil
}

func (r shiftRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shift, ok := r.s.data.shifts[id]
	if !ok || shift.Deleted {
		return notFound("shift", id)
	}
	shift.Deleted = true
	shift.UpdatedAt = r.s.now()
	r.s.data.shifts[id] = shift
	return nil
}

func (r shiftRepo) GetWithUsers(ctx context.Context, id uuid.UUID) (*models.ShiftWithUsers, error) {
	shift, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := &models.ShiftWithUsers{Shift: *shift, Users: []models.User{}}
	seen := map[uuid.UUID]bool{}
	for _, req := range r.s.data.requests {
		if req.Deleted || !req.ShiftID.Valid || req.ShiftID.UUID != id || seen[req.UserID] {
			continue
		}
		user, ok := r.s.data.users[req.UserID]
		if !ok || user.Deleted {
			continue
		}
		seen[req.UserID] = true
		result.Users = append(result.Users, user)
	}
	return result, nil
}

func (r shiftRepo) ListAllRequests(ctx context.Context, id uuid.UUID, status *models.RequestStatus) ([]*models.RequestWithUser, error) {
	return r.s.listRequests(repository.RequestFilters{ShiftID: &id, Status: status}), nil
}

type userRepo struct{ s *Store }

func (r userRepo) GetOrNone(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.data.users[id]
	if !ok || user.Deleted {
		return nil, nil
	}
	return &user, nil
}

func (r userRepo) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, _ := r.GetOrNone(ctx, id)
	if user == nil {
		return nil, notFound("user", id)
	}
	return user, nil
}

func (r userRepo) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.data.users {
		if !user.Deleted && user.TelegramID == telegramID {
			return &user, nil
		}
	}
	return nil, nil
}

func (r userRepo) checkUnique(user *models.User) error {
	for _, other := range r.s.data.users {
		if other.ID == user.ID {
			continue
		}
		if other.PhoneNumber == user.PhoneNumber {
			return uniqueViolation("users_phone_number_key")
		}
		if other.TelegramID == user.TelegramID {
			return uniqueViolation("users_telegram_id_key")
		}
	}
	return nil
}

func (r userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.Touch(r.s.now())
	if err := r.checkUnique(user); err != nil {
		return nil, err
	}
	r.s.data.users[user.ID] = *user
	return user, nil
}

func (r userRepo) Update(_ context.Context, id uuid.UUID, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.data.users[id]
	if !ok || old.Deleted {
		return nil, notFound("user", id)
	}
	user.ID = id
	if err := r.checkUnique(user); err != nil {
		return nil, err
	}
	user.CreatedAt = old.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.data.users[id] = *user
	return user, nil
}

type requestRepo struct{ s *Store }

func (r requestRepo) GetOrNone(_ context.Context, id uuid.UUID) (*models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.data.requests[id]
	if !ok || req.Deleted {
		return nil, nil
	}
	return &req, nil
}

func (r requestRepo) Get(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	req, _ := r.GetOrNone(ctx, id)
	if req == nil {
		return nil, notFound("request", id)
	}
	return req, nil
}

func (r requestRepo) Create(_ context.Context, req *models.Request) (*models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[req.UserID]; !ok {
		return nil, foreignKeyViolation("requests_user_id_fkey")
	}
	req.Touch(r.s.now())
	if req.Status == "" {
		req.Status = models.RequestStatusPending
	}
	r.s.data.requests[req.ID] = *req
	return req, nil
}

func (r requestRepo) Update(_ context.Context, id uuid.UUID, req *models.Request) (*models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.data.requests[id]
	if !ok || old.Deleted {
		return nil, notFound("request", id)
	}
	req.ID = id
	req.CreatedAt = old.CreatedAt
	req.UpdatedAt = r.s.now()
	r.s.data.requests[id] = *req
	return req, nil
}

func (r requestRepo) List(_ context.Context, filters repository.RequestFilters) ([]*models.RequestWithUser, error) {
	return r.s.listRequests(filters), nil
}

func (r requestRepo) GetByUserAndShift(_ context.Context, userID, shiftID uuid.UUID) ([]*models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Request
	for _, req := range sortedByCreation(r.s.data.requests, func(req models.Request) models.Base { return req.Base }) {
		if !req.Deleted && req.UserID == userID && req.ShiftID.Valid && req.ShiftID.UUID == shiftID {
			req := req
			out = append(out, &req)
		}
	}
	return out, nil
}

func (s *Store) listRequests(filters repository.RequestFilters) []*models.RequestWithUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.RequestWithUser{}
	for _, req := range sortedByCreation(s.data.requests, func(req models.Request) models.Base { return req.Base }) {
		if req.Deleted {
			continue
		}
		if filters.ShiftID != nil && (!req.ShiftID.Valid || req.ShiftID.UUID != *filters.ShiftID) {
			continue
		}
		if filters.Status != nil && req.Status != *filters.Status {
			continue
		}
		user, ok := s.data.users[req.UserID]
		if !ok || user.Deleted {
			continue
		}
		item := &models.RequestWithUser{
			RequestID:   req.ID,
			UserID:      req.UserID,
			ShiftID:     req.ShiftID,
			Status:      req.Status,
			Name:        user.Name,
			Surname:     user.Surname,
			DateOfBirth: user.DateOfBirth,
			City:        user.City,
			PhoneNumber: user.PhoneNumber,
		}
		if req.ShiftID.Valid {
			for _, m := range s.data.members {
				if !m.Deleted && m.UserID == req.UserID && m.ShiftID == req.ShiftID.UUID {
					status := m.Status
					item.MemberStatus = &status
				}
			}
		}
		out = append(out, item)
	}
	return out
}

type memberRepo struct{ s *Store }

func (r memberRepo) GetOrNone(_ context.Context, id uuid.UUID) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.data.members[id]
	if !ok || m.Deleted {
		return nil, nil
	}
	return &m, nil
}

func (r memberRepo) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	m, _ := r.GetOrNone(ctx, id)
	if m == nil {
		return nil, notFound("member", id)
	}
	return m, nil
}

func (r memberRepo) GetByUserAndShift(_ context.Context, userID, shiftID uuid.UUID) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.data.members {
		if !m.Deleted && m.UserID == userID && m.ShiftID == shiftID {
			return &m, nil
		}
	}
	return nil, nil
}

func (r memberRepo) GetActiveByUser(_ context.Context, userID uuid.UUID) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var (
		found  *models.Member
		latest time.Time
	)
	for _, m := range r.s.data.members {
		if m.Deleted || m.UserID != userID || m.Status != models.MemberStatusActive {
			continue
		}
		shift, ok := r.s.data.shifts[m.ShiftID]
		if !ok || shift.Deleted || shift.Status != models.ShiftStatusStarted {
			continue
		}
		if found == nil || shift.StartedAt.After(latest) {
			m := m
			found, latest = &m, shift.StartedAt
		}
	}
	return found, nil
}

func (r memberRepo) Create(_ context.Context, m *models.Member) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.data.members {
		if other.UserID == m.UserID && other.ShiftID == m.ShiftID {
			return nil, uniqueViolation("_user_shift_uc")
		}
	}
	m.Touch(r.s.now())
	if m.Status == "" {
		m.Status = models.MemberStatusActive
	}
	r.s.data.members[m.ID] = *m
	return m, nil
}

func (r memberRepo) Update(_ context.Context, id uuid.UUID, m *models.Member) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.data.members[id]
	if !ok || old.Deleted {
		return nil, notFound("member", id)
	}
	m.ID = id
	m.UserID = old.UserID
	m.ShiftID = old.ShiftID
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = r.s.now()
	r.s.data.members[id] = *m
	return m, nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) GetOrNone(_ context.Context, id uuid.UUID) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tasks[id]
	if !ok || t.Deleted {
		return nil, nil
	}
	return &t, nil
}

func (r taskRepo) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, _ := r.GetOrNone(ctx, id)
	if t == nil {
		return nil, notFound("task", id)
	}
	return t, nil
}

func (r taskRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.data.tasks {
		if other.URL == t.URL {
			return nil, uniqueViolation("tasks_url_key")
		}
		if other.Description == t.Description {
			return nil, uniqueViolation("tasks_description_key")
		}
	}
	t.Touch(r.s.now())
	r.s.data.tasks[t.ID] = *t
	return t, nil
}

func (r taskRepo) List(_ context.Context) ([]*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Task
	for _, t := range sortedByCreation(r.s.data.tasks, func(t models.Task) models.Base { return t.Base }) {
		if !t.Deleted {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

type userTaskRepo struct{ s *Store }

func (r userTaskRepo) GetOrNone(_ context.Context, id uuid.UUID) (*models.UserTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.userTasks[id]
	if !ok || t.Deleted {
		return nil, nil
	}
	return &t, nil
}

func (r userTaskRepo) Get(ctx context.Context, id uuid.UUID) (*models.UserTask, error) {
	t, _ := r.GetOrNone(ctx, id)
	if t == nil {
		return nil, notFound("user task", id)
	}
	return t, nil
}

func (r userTaskRepo) GetByMemberAndDate(_ context.Context, memberID uuid.UUID, date time.Time) (*models.UserTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := date.Format(time.DateOnly)
	for _, t := range r.s.data.userTasks {
		if !t.Deleted && t.MemberID == memberID && t.TaskDate.Format(time.DateOnly) == day {
			return &t, nil
		}
	}
	return nil, nil
}

func (r userTaskRepo) ListByDate(_ context.Context, date time.Time, status models.UserTaskStatus) ([]*models.UserTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := date.Format(time.DateOnly)
	var out []*models.UserTask
	for _, t := range sortedByCreation(r.s.data.userTasks, func(t models.UserTask) models.Base { return t.Base }) {
		if !t.Deleted && t.Status == status && t.TaskDate.Format(time.DateOnly) == day {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r userTaskRepo) checkUnique(t *models.UserTask) error {
	day := t.TaskDate.Format(time.DateOnly)
	for _, other := range r.s.data.userTasks {
		if other.ID == t.ID {
			continue
		}
		if other.ReportURL == t.ReportURL {
			return uniqueViolation("user_tasks_report_url_key")
		}
		if other.ShiftID == t.ShiftID && other.MemberID == t.MemberID && other.TaskDate.Format(time.DateOnly) == day {
			return uniqueViolation("_member_task_uc")
		}
	}
	return nil
}

func (r userTaskRepo) Create(_ context.Context, t *models.UserTask) (*models.UserTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.Touch(r.s.now())
	if t.Status == "" {
		t.Status = models.UserTaskStatusNew
	}
	if t.ReportURL == "" {
		t.ReportURL = models.PlaceholderReportURL(t.ID)
	}
	if err := r.checkUnique(t); err != nil {
		return nil, err
	}
	r.s.data.userTasks[t.ID] = *t
	return t, nil
}

func (r userTaskRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.UserTaskStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.userTasks[id]
	if !ok || t.Deleted || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.UpdatedAt = r.s.now()
	r.s.data.userTasks[id] = t
	return true, nil
}

func (r userTaskRepo) Update(_ context.Context, id uuid.UUID, t *models.UserTask) (*models.UserTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.data.userTasks[id]
	if !ok || old.Deleted {
		return nil, notFound("user task", id)
	}
	t.ID = id
	if err := r.checkUnique(t); err != nil {
		return nil, err
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = r.s.now()
	r.s.data.userTasks[id] = *t
	return t, nil
}

// sortedByCreation returns the rows of a table ordered by creation time and
// then id, so repeated reads return the same order
func sortedByCreation[T any](rows map[uuid.UUID]T, base func(T) models.Base) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := base(out[i]), base(out[j])
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}
