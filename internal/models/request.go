package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents where a request is in the review process
type RequestStatus string

const (
	RequestStatusPending         RequestStatus = "pending"
	RequestStatusApproved        RequestStatus = "approved"
	RequestStatusDeclined        RequestStatus = "declined"
	RequestStatusRepeatedRequest RequestStatus = "repeated request"
	RequestStatusExcluded        RequestStatus = "excluded"
)

// RequestStatuses lists every status in declaration order
var RequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusDeclined,
	RequestStatusRepeatedRequest,
	RequestStatusExcluded,
}

// Valid reports whether s is one of the known request statuses
func (s RequestStatus) Valid() bool {
	for _, v := range RequestStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseRequestStatus converts a wire tag into a RequestStatus
func ParseRequestStatus(raw string) (RequestStatus, error) {
	s := RequestStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown request status %q: %w", raw, ErrValidation)
	}
	return s, nil
}

// UnmarshalText rejects unknown statuses
func (s *RequestStatus) UnmarshalText(text []byte) error {
	v, err := ParseRequestStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Request is a user's application to join a shift
type Request struct {
	Base
	UserID            uuid.UUID     `json:"user_id" db:"user_id"`
	ShiftID           uuid.NullUUID `json:"shift_id" db:"shift_id"`
	Status            RequestStatus `json:"status" db:"status"`
	NumbersLombaryers *int          `json:"numbers_lombaryers" db:"numbers_lombaryers"`
}

// Approve moves a pending request to approved. An already approved request is
// left as is so the caller can detect the duplicate through member creation.
func (r *Request) Approve() error {
	switch r.Status {
	case RequestStatusPending:
		r.Status = RequestStatusApproved
		return nil
	case RequestStatusApproved:
		return nil
	}
	return fmt.Errorf("request %s is %q, cannot approve: %w", r.ID, r.Status, ErrInvalidStateTransition)
}

// Decline moves a pending request to declined. Declining an approved request
// is only possible when fromApproved is set.
func (r *Request) Decline(fromApproved bool) error {
	switch {
	case r.Status == RequestStatusPending,
		r.Status == RequestStatusApproved && fromApproved:
		r.Status = RequestStatusDeclined
		return nil
	}
	return fmt.Errorf("request %s is %q, cannot decline: %w", r.ID, r.Status, ErrInvalidStateTransition)
}

// RequestWithUser is a request joined with the profile of the user who sent it
type RequestWithUser struct {
	RequestID    uuid.UUID     `json:"request_id" db:"request_id"`
	UserID       uuid.UUID     `json:"user_id" db:"user_id"`
	ShiftID      uuid.NullUUID `json:"shift_id" db:"shift_id"`
	Status       RequestStatus `json:"request_status" db:"status"`
	Name         string        `json:"name" db:"name"`
	Surname      string        `json:"surname" db:"surname"`
	DateOfBirth  time.Time     `json:"date_of_birth" db:"date_of_birth"`
	City         string        `json:"city" db:"city"`
	PhoneNumber  string        `json:"phone_number" db:"phone"`
	MemberStatus *MemberStatus `json:"user_status" db:"member_status"`
}
