package api

import (
	"encoding/json"
	"net/http"

	"github.com/Kerhoff/lomaya/internal/models"
)

type shiftRequest struct {
	Status       models.ShiftStatus `json:"status"`
	StartedAt    string             `json:"started_at" validate:"required"`
	FinishedAt   string             `json:"finished_at" validate:"required"`
	Title        string             `json:"title" validate:"required,max=100"`
	FinalMessage string             `json:"final_message" validate:"max=400"`
	Tasks        json.RawMessage    `json:"tasks"`
}

func (req *shiftRequest) toModel() (*models.Shift, error) {
	started, err := parseDate(req.StartedAt)
	if err != nil {
		return nil, err
	}
	finished, err := parseDate(req.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &models.Shift{
		Status:       req.Status,
		StartedAt:    started,
		FinishedAt:   finished,
		Title:        req.Title,
		FinalMessage: req.FinalMessage,
		Tasks:        req.Tasks,
	}, nil
}

func (s *Server) handleCreateShift(w http.ResponseWriter, r *http.Request) {
	var req shiftRequest
	if !s.decodeRequired(w, r, &req) {
		return
	}
	shift, err := req.toModel()
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	shift, err = s.svc.CreateShift(r.Context(), shift)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, shift)
}

func (s *Server) handleGetShift(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	shift, err := s.svc.GetShift(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, shift)
}

func (s *Server) handleUpdateShift(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	var req shiftRequest
	if !s.decodeRequired(w, r, &req) {
		return
	}
	shift, err := req.toModel()
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	shift, err = s.svc.UpdateShift(r.Context(), id, shift)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, shift)
}

func (s *Server) handleGetShiftUsers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	shift, err := s.svc.GetShiftWithUsers(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, shift)
}

func (s *Server) handleListShiftRequests(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	status, err := statusQuery(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	requests, err := s.svc.ListShiftRequests(r.Context(), id, status)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, requests)
}
