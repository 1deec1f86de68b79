package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Kerhoff/lomaya/internal/models"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.ListTasks(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	s.respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL         string `json:"url" validate:"required,url,max=150"`
		Description string `json:"description" validate:"required,max=150"`
	}
	if !s.decodeRequired(w, r, &req) {
		return
	}

	task, err := s.svc.CreateTask(r.Context(), &models.Task{URL: req.URL, Description: req.Description})
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID uuid.UUID `json:"member_id" validate:"required"`
		TaskID   uuid.UUID `json:"task_id" validate:"required"`
		TaskDate string    `json:"task_date" validate:"required"`
	}
	if !s.decodeRequired(w, r, &req) {
		return
	}
	date, err := parseDate(req.TaskDate)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	userTask, err := s.svc.AssignTask(r.Context(), req.MemberID, req.TaskID, date)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, userTask)
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	var req struct {
		ReportURL string `json:"report_url" validate:"required,url,max=4096"`
	}
	if !s.decodeRequired(w, r, &req) {
		return
	}

	userTask, err := s.svc.SubmitReport(r.Context(), id, req.ReportURL)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, userTask)
}

func (s *Server) handleApproveReport(w http.ResponseWriter, r *http.Request) {
	s.reviewReport(w, r, true)
}

func (s *Server) handleDeclineReport(w http.ResponseWriter, r *http.Request) {
	s.reviewReport(w, r, false)
}

func (s *Server) reviewReport(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := pathID(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	review := s.svc.DeclineReport
	if approve {
		review = s.svc.ApproveReport
	}
	userTask, err := review(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, userTask)
}
