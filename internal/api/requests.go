package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/repository"
	"github.com/Kerhoff/lomaya/internal/service"
)

type createRequestRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	ShiftID uuid.UUID `json:"shift_id" validate:"required"`
}

func (s *Server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	request, err := s.svc.ApproveRequest(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, request)
}

func (s *Server) handleDeclineRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	var reason *service.DeclineReason
	var body service.DeclineReason
	switch err := s.decodeJSON(r, &body); {
	case err == nil:
		reason = &body
	case errors.Is(err, io.EOF):
	default:
		s.respondDomainError(w, err)
		return
	}

	request, err := s.svc.DeclineRequest(r.Context(), id, reason)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, request)
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	status, err := statusQuery(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	filters := repository.RequestFilters{Status: status}

	if raw := r.URL.Query().Get("shift_id"); raw != "" {
		shiftID, err := uuid.Parse(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "shift_id must be a UUID")
			return
		}
		filters.ShiftID = &shiftID
	}

	requests, err := s.svc.ListRequests(r.Context(), filters)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, requests)
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if !s.decodeRequired(w, r, &req) {
		return
	}

	request, err := s.svc.CreateRequest(r.Context(), req.UserID, req.ShiftID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, request)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required,max=100"`
		Surname     string `json:"surname" validate:"required,max=100"`
		DateOfBirth string `json:"date_of_birth" validate:"required"`
		City        string `json:"city" validate:"required,max=50"`
		PhoneNumber string `json:"phone_number" validate:"required,numeric,max=11"`
		TelegramID  int64  `json:"telegram_id" validate:"required"`
	}
	if !s.decodeRequired(w, r, &req) {
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	user, err := s.svc.CreateUser(r.Context(), &models.User{
		Name:        req.Name,
		Surname:     req.Surname,
		DateOfBirth: dob,
		City:        req.City,
		PhoneNumber: req.PhoneNumber,
		TelegramID:  req.TelegramID,
	})
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, user)
}

// decodeRequired decodes a mandatory body and writes the error response
// itself. The caller should return immediately when it reports false.
func (s *Server) decodeRequired(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := s.decodeJSON(r, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "request body is empty")
	default:
		s.respondDomainError(w, err)
	}
	return false
}
